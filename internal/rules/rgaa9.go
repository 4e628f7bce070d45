package rules

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

var (
	headingOrder  = define(RuleHeadingOrder, "The hierarchy between headings must be relevant")
	headingMarkup = define(RuleHeadingMarkup, `Each heading must be structured with a <hx> tag or with role="heading" and aria-level attributes`)

	headingTag = regexp.MustCompile(`(?i)^h[1-6]$`)
)

// RGAA9 checks the heading outline (topic 9).
type RGAA9 struct {
	mode model.Mode
}

func NewRGAA9(mode model.Mode) *RGAA9 {
	return &RGAA9{mode: mode}
}

type heading struct {
	view  element.View
	level int
}

// CheckHierarchy reports every heading whose level differs from the
// previous heading's by more than one. Headings are ordered by index; those
// without a usable level take no part.
func (r *RGAA9) CheckHierarchy(c Collection[element.VirtualHeading]) ([]model.Violation, error) {
	vs, err := views("RGAA9", r.mode, c)
	if err != nil {
		return nil, err
	}

	var hs []heading
	for _, v := range vs {
		if lvl := headingLevel(v); lvl > 0 {
			hs = append(hs, heading{view: v, level: lvl})
		}
	}
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].view.Index < hs[j].view.Index })

	var out []model.Violation
	for i := 1; i < len(hs); i++ {
		if diff := hs[i].level - hs[i-1].level; diff > 1 || diff < -1 {
			out = append(out, headingOrder.at(hs[i].view.Markup))
		}
	}
	return out, nil
}

// CheckStructure reports elements that are neither h1-h6 nor role="heading"
// with an aria-level of at least 1.
func (r *RGAA9) CheckStructure(c Collection[element.VirtualHeading]) ([]model.Violation, error) {
	vs, err := views("RGAA9", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, v := range vs {
		if !validHeading(v) {
			out = append(out, headingMarkup.at(v.Markup))
		}
	}
	return out, nil
}

// headingLevel returns 0 when v carries no level.
func headingLevel(v element.View) int {
	if headingTag.MatchString(v.TagName) {
		n, _ := strconv.Atoi(v.TagName[1:])
		return n
	}
	if v.Value(element.AttrRole) != "heading" {
		return 0
	}
	n, ok := parseLevel(v.Value(element.AttrAriaLevel))
	if !ok {
		return 0
	}
	return n
}

func validHeading(v element.View) bool {
	if headingTag.MatchString(v.TagName) {
		return true
	}
	if v.Value(element.AttrRole) != "heading" {
		return false
	}
	n, ok := parseLevel(v.Value(element.AttrAriaLevel))
	return ok && n >= 1
}
