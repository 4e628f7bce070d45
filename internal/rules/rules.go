// Package rules holds the RGAA rule modules. Every module is constructed
// with a fixed model.Mode; its entry points normalize the input collection
// to element views and run one decision function for both modes.
package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

// LinkBase is the prefix of every rule reference link.
const LinkBase = "https://accessibilite.numerique.gouv.fr/methode/criteres-et-tests/#"

// Rule identifiers, in the canonical "RGAA - N.N.N" form.
const (
	RuleImageAlt        = "RGAA - 1.1.1"
	RuleAreaAlt         = "RGAA - 1.1.2"
	RuleSVGLabel        = "RGAA - 1.1.5"
	RuleFrameTitle      = "RGAA - 2.1.1"
	RuleFrameRelevance  = "RGAA - 2.2.1"
	RuleContrastSmall   = "RGAA - 3.2.1"
	RuleContrastSmallB  = "RGAA - 3.2.2"
	RuleContrastLarge   = "RGAA - 3.2.3"
	RuleContrastLargeB  = "RGAA - 3.2.4"
	RuleLinkLabel       = "RGAA - 6.2.1"
	RuleDoctype         = "RGAA - 8.1.1"
	RuleDoctypeFirst    = "RGAA - 8.1.3"
	RuleLang            = "RGAA - 8.3"
	RuleTitle           = "RGAA - 8.5"
	RuleHeadingOrder    = "RGAA - 9.1.1"
	RuleHeadingMarkup   = "RGAA - 9.1.3"
	RuleFieldLabel      = "RGAA - 11.1.1"
	RuleFieldLabelMatch = "RGAA - 11.1.2"
)

// definition ties a rule id to its reference anchor and message.
type definition struct {
	rule    string
	anchor  string
	message string
}

func (d definition) at(el string) model.Violation {
	return model.Violation{
		Element:  el,
		Rule:     d.rule,
		RuleLink: LinkBase + d.anchor,
		Message:  d.message,
	}
}

func define(rule, message string) definition {
	return definition{rule: rule, anchor: strings.TrimPrefix(rule, "RGAA - "), message: message}
}

// ErrUnsupportedMode is matched by every UnsupportedModeError.
var ErrUnsupportedMode = errors.New("unsupported mode")

// UnsupportedModeError is returned when a rule module was built with a mode
// other than dom or virtual.
type UnsupportedModeError struct {
	Rule string
	Mode model.Mode
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("rules: %s: unsupported mode %q", e.Rule, string(e.Mode))
}

func (e *UnsupportedModeError) Is(target error) bool {
	return target == ErrUnsupportedMode
}

// Collection is the input of an element rule. Only the side matching the
// module mode is read.
type Collection[V element.Viewer] struct {
	DOM     []*goquery.Selection
	Virtual []V
}

// views normalizes the side of c selected by mode, keeping input order.
func views[V element.Viewer](module string, mode model.Mode, c Collection[V]) ([]element.View, error) {
	switch mode {
	case model.ModeDOM:
		out := make([]element.View, 0, len(c.DOM))
		for i, sel := range c.DOM {
			out = append(out, element.FromSelection(sel, i))
		}
		return out, nil
	case model.ModeVirtual:
		out := make([]element.View, 0, len(c.Virtual))
		for i, v := range c.Virtual {
			out = append(out, v.View(i))
		}
		return out, nil
	default:
		return nil, &UnsupportedModeError{Rule: module, Mode: mode}
	}
}

// ContrastCollection is the input of the contrast rules.
type ContrastCollection struct {
	DOM     []element.DOMContrastPair
	Virtual []element.VirtualContrast
}

// DocumentCollection is the input of the document metadata rules.
type DocumentCollection struct {
	DOM     []element.DOMDocument
	Virtual []element.VirtualDocument
}

func documentViews(module string, mode model.Mode, c DocumentCollection) ([]element.DocumentView, error) {
	switch mode {
	case model.ModeDOM:
		out := make([]element.DocumentView, 0, len(c.DOM))
		for _, d := range c.DOM {
			out = append(out, d.DocumentView())
		}
		return out, nil
	case model.ModeVirtual:
		out := make([]element.DocumentView, 0, len(c.Virtual))
		for _, d := range c.Virtual {
			out = append(out, d.DocumentView())
		}
		return out, nil
	default:
		return nil, &UnsupportedModeError{Rule: module, Mode: mode}
	}
}

// nonEmpty reports whether the attribute is present with a non-empty value.
func nonEmpty(v element.View, name string) bool {
	return v.Value(name) != ""
}

func trimmed(v element.View, name string) bool {
	return strings.TrimSpace(v.Value(name)) != ""
}

// parseLevel reads a leading decimal integer the way parseInt(s, 10) does:
// leading whitespace and a sign are allowed, trailing garbage is ignored.
func parseLevel(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\f\v")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	n, digits := 0, 0
	for digits < len(s) && s[digits] >= '0' && s[digits] <= '9' {
		if n < 1<<20 {
			n = n*10 + int(s[digits]-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
