package rules

import (
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

var (
	fieldLabel     = define(RuleFieldLabel, "Form field should have an accessible label (aria-labelledby, aria-label, label[for], title, or adjacent button with hidden label)")
	labelMismatch  = define(RuleFieldLabelMatch, "Label[for] attribute does not match the field id")
	labelMissingID = define(RuleFieldLabelMatch, "Form field referenced by label[for] must have a matching id attribute")
)

// RGAA11 checks form field labelling (topic 11). Label lookups are
// resolved when the field is normalized, see element.FromSelection.
type RGAA11 struct {
	mode model.Mode
}

func NewRGAA11(mode model.Mode) *RGAA11 {
	return &RGAA11{mode: mode}
}

// CheckLabels reports fields with no accessible label (11.1.1).
func (r *RGAA11) CheckLabels(c Collection[element.VirtualFormField]) ([]model.Violation, error) {
	vs, err := views("RGAA11", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, v := range vs {
		if !isLabelled(v) {
			out = append(out, fieldLabel.at(v.Markup))
		}
	}
	return out, nil
}

// CheckLabelLinks reports label[for] references that do not resolve to the
// field id (11.1.2), including same-form labels pointing at a missing id.
// Both messages can fire for one field.
func (r *RGAA11) CheckLabelLinks(c Collection[element.VirtualFormField]) ([]model.Violation, error) {
	vs, err := views("RGAA11", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, v := range vs {
		ref := v.LabelForID
		if v.OrphanLabelFor != "" {
			ref = v.OrphanLabelFor
		} else if !v.HasLabelFor {
			continue
		}
		id := v.Value(element.AttrID)
		if ref != "" && ref != id {
			out = append(out, labelMismatch.at(v.Markup))
		}
		if id == "" {
			out = append(out, labelMissingID.at(v.Markup))
		}
	}
	return out, nil
}

func isLabelled(v element.View) bool {
	aria := nonEmpty(v, element.AttrAriaLabelledBy) || nonEmpty(v, element.AttrAriaLabel)
	if aria || v.HasLabelFor || nonEmpty(v, element.AttrTitle) {
		return true
	}
	validButton := v.HasAdjacentButton && v.AdjacentButtonHasValidLabel
	return validButton && v.HasHiddenLabel
}
