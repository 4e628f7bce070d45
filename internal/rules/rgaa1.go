package rules

import (
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

var (
	imageAlt = define(RuleImageAlt, "img elements should have alt, aria-label, title or aria-labelledby")
	areaAlt  = define(RuleAreaAlt, "Area element should have alt or aria-label")
	svgLabel = define(RuleSVGLabel, "SVG element with role img should have aria-label or aria-labelledby")
)

// RGAA1 checks text alternatives of images (topic 1).
type RGAA1 struct {
	mode model.Mode
}

func NewRGAA1(mode model.Mode) *RGAA1 {
	return &RGAA1{mode: mode}
}

// CheckImages evaluates img (1.1.1), area (1.1.2) and svg role="img"
// (1.1.5) elements. Other elements in the collection are ignored.
func (r *RGAA1) CheckImages(c Collection[element.VirtualImage]) ([]model.Violation, error) {
	vs, err := views("RGAA1", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, v := range vs {
		if d, bad := imageViolation(v); bad {
			out = append(out, d.at(v.Markup))
		}
	}
	return out, nil
}

func imageViolation(v element.View) (definition, bool) {
	switch v.Kind {
	case element.KindImage:
		labelled := nonEmpty(v, element.AttrAlt) || nonEmpty(v, element.AttrTitle) ||
			nonEmpty(v, element.AttrAriaLabel) || nonEmpty(v, element.AttrAriaLabelledBy)
		return imageAlt, !labelled
	case element.KindArea:
		labelled := nonEmpty(v, element.AttrAlt) || nonEmpty(v, element.AttrAriaLabel)
		return areaAlt, !labelled
	case element.KindSVG:
		if v.Value(element.AttrRole) != "img" {
			return definition{}, false
		}
		labelled := nonEmpty(v, element.AttrAriaLabel) || nonEmpty(v, element.AttrAriaLabelledBy)
		return svgLabel, !labelled
	}
	return definition{}, false
}
