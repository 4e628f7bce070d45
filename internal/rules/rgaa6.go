package rules

import (
	"strings"

	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

var linkLabel = define(RuleLinkLabel, "Each link must have a label (text or alternative)")

// RGAA6 checks link labels (topic 6).
type RGAA6 struct {
	mode model.Mode
}

func NewRGAA6(mode model.Mode) *RGAA6 {
	return &RGAA6{mode: mode}
}

// CheckLinks reports links with no accessible name. Links whose href
// contains a fragment marker are skipped.
func (r *RGAA6) CheckLinks(c Collection[element.VirtualLink]) ([]model.Violation, error) {
	vs, err := views("RGAA6", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, v := range vs {
		if strings.Contains(v.Value(element.AttrHref), "#") {
			continue
		}
		if !hasLinkLabel(v) {
			out = append(out, linkLabel.at(v.Markup))
		}
	}
	return out, nil
}

func hasLinkLabel(v element.View) bool {
	switch {
	case trimmed(v, element.AttrAriaLabel):
		return true
	case nonEmpty(v, element.AttrAriaLabelledBy):
		return true
	case trimmed(v, element.AttrTitle):
		return true
	}
	return strings.TrimSpace(v.TextContent) != ""
}
