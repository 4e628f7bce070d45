package rules

import (
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
)

var (
	docDoctype      = definition{rule: RuleDoctype, anchor: "8.1", message: "Document (Page) should have a doctype"}
	docDoctypeFirst = define(RuleDoctypeFirst, "Document (Page) doctype should be first")
	docLang         = define(RuleLang, "Document (Page) should have a lang attribute")
	docTitle        = define(RuleTitle, "Document (Page) should have a title")
)

// RGAA8 checks document metadata (topic 8). Violations carry the page URL
// as their element.
type RGAA8 struct {
	mode model.Mode
}

func NewRGAA8(mode model.Mode) *RGAA8 {
	return &RGAA8{mode: mode}
}

// CheckDoctype reports a missing doctype (8.1.1) and a doctype that is not
// the first node of the document (8.1.3). A missing doctype is also not
// first, so both fire for it.
func (r *RGAA8) CheckDoctype(c DocumentCollection) ([]model.Violation, error) {
	return r.each(c, func(d element.DocumentView) []definition {
		var out []definition
		if !d.HasDoctype {
			out = append(out, docDoctype)
		}
		if !d.DoctypeFirst {
			out = append(out, docDoctypeFirst)
		}
		return out
	})
}

// CheckLang reports a missing or empty lang on the root element.
func (r *RGAA8) CheckLang(c DocumentCollection) ([]model.Violation, error) {
	return r.each(c, func(d element.DocumentView) []definition {
		if d.Lang == "" {
			return []definition{docLang}
		}
		return nil
	})
}

// CheckTitle reports an empty document title.
func (r *RGAA8) CheckTitle(c DocumentCollection) ([]model.Violation, error) {
	return r.each(c, func(d element.DocumentView) []definition {
		if d.Title == "" {
			return []definition{docTitle}
		}
		return nil
	})
}

func (r *RGAA8) each(c DocumentCollection, check func(element.DocumentView) []definition) ([]model.Violation, error) {
	docs, err := documentViews("RGAA8", r.mode, c)
	if err != nil {
		return nil, err
	}
	var out []model.Violation
	for _, d := range docs {
		for _, def := range check(d) {
			out = append(out, def.at(d.URL))
		}
	}
	return out, nil
}
