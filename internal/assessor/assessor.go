// Package assessor runs the RGAA rule modules over one page and turns the
// raw violations into a grouped, canonically ordered RuleResultMap.
package assessor

import (
	"context"
	"errors"
	"fmt"

	"github.com/raysh454/rgaalint/internal/dictionary"
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/logging"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/rules"
)

// ErrNilConfig is returned by New when no config is supplied.
var ErrNilConfig = errors.New("assessor: nil config")

// Input is everything one evaluation reads: one collection per concern
// and the mode used to read them.
type Input struct {
	Mode              model.Mode
	Documents         rules.DocumentCollection
	CustomBannedWords []string

	Images     rules.Collection[element.VirtualImage]
	Frames     rules.Collection[element.VirtualFrame]
	Links      rules.Collection[element.VirtualLink]
	Contrasts  rules.ContrastCollection
	FormFields rules.Collection[element.VirtualFormField]
	Headings   rules.Collection[element.VirtualHeading]
}

// Assessor evaluates pages. It keeps no state between runs and is safe for
// concurrent use.
type Assessor struct {
	cfg    *Config
	dict   *dictionary.Dictionary
	logger logging.Logger
}

func New(cfg *Config, logger logging.Logger) (*Assessor, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	dict := cfg.Dictionary
	if dict == nil {
		dict = dictionary.Default()
	}
	return &Assessor{
		cfg:    cfg,
		dict:   dict,
		logger: logging.OrNop(logger).With(logging.Field{Key: "component", Value: "assessor"}),
	}, nil
}

// Dictionary returns the rule table the assessor was built with.
func (a *Assessor) Dictionary() *dictionary.Dictionary {
	return a.dict
}

// check is one rule entry point bound to its input.
type check struct {
	name string
	run  func() ([]model.Violation, error)
}

// Run evaluates every rule module against in. The first rule error aborts
// the run and no partial result is returned. ctx is only consulted between
// rule invocations.
func (a *Assessor) Run(ctx context.Context, in Input) (*model.RuleResultMap, error) {
	if !in.Mode.Valid() {
		return nil, &rules.UnsupportedModeError{Rule: "assessor", Mode: in.Mode}
	}

	banned := append(append([]string{}, a.cfg.BannedWords...), in.CustomBannedWords...)
	r1 := rules.NewRGAA1(in.Mode)
	r2 := rules.NewRGAA2(in.Mode)
	r3 := rules.NewRGAA3(in.Mode)
	r6 := rules.NewRGAA6(in.Mode)
	r8 := rules.NewRGAA8(in.Mode)
	r9 := rules.NewRGAA9(in.Mode)
	r11 := rules.NewRGAA11(in.Mode)

	checks := []check{
		{"images", func() ([]model.Violation, error) { return r1.CheckImages(in.Images) }},
		{"frame titles", func() ([]model.Violation, error) { return r2.CheckFrameTitles(in.Frames) }},
		{"frame title relevance", func() ([]model.Violation, error) { return r2.CheckFrameTitleRelevance(in.Frames, banned) }},
		{"contrasts", func() ([]model.Violation, error) { return r3.CheckContrasts(in.Contrasts) }},
		{"links", func() ([]model.Violation, error) { return r6.CheckLinks(in.Links) }},
		{"doctype", func() ([]model.Violation, error) { return r8.CheckDoctype(in.Documents) }},
		{"lang", func() ([]model.Violation, error) { return r8.CheckLang(in.Documents) }},
		{"title", func() ([]model.Violation, error) { return r8.CheckTitle(in.Documents) }},
		{"heading hierarchy", func() ([]model.Violation, error) { return r9.CheckHierarchy(in.Headings) }},
		{"heading structure", func() ([]model.Violation, error) { return r9.CheckStructure(in.Headings) }},
		{"field labels", func() ([]model.Violation, error) { return r11.CheckLabels(in.FormFields) }},
		{"field label links", func() ([]model.Violation, error) { return r11.CheckLabelLinks(in.FormFields) }},
	}

	var all []model.Violation
	for _, c := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vs, err := c.run()
		if err != nil {
			return nil, fmt.Errorf("assessor: %s: %w", c.name, err)
		}
		all = append(all, vs...)
	}

	result := GroupViolations(all)
	for _, rule := range result.Keys() {
		if !a.dict.Contains(rule) {
			a.logger.Warn("rule missing from dictionary", logging.Field{Key: "rule", Value: rule})
		}
	}
	a.logger.Debug("assessment complete",
		logging.Field{Key: "mode", Value: in.Mode.String()},
		logging.Field{Key: "violations", Value: len(all)},
		logging.Field{Key: "rules", Value: result.Len()})
	return result, nil
}
