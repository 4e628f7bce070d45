package collector

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/raysh454/rgaalint/internal/assessor"
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/rules"
)

//go:embed extract.js
var extractScript string

// VirtualPage is a plain-data capture of one page, as produced by the
// extraction script or posted by a client that rendered the page itself.
type VirtualPage struct {
	URL        string                     `json:"url"`
	Document   element.VirtualDocument    `json:"document"`
	Images     []element.VirtualImage     `json:"images"`
	Frames     []element.VirtualFrame     `json:"frames"`
	Links      []element.VirtualLink      `json:"links"`
	Headings   []element.VirtualHeading   `json:"headings"`
	FormFields []element.VirtualFormField `json:"formFields"`
	Contrasts  []element.VirtualContrast  `json:"contrasts"`
}

// Input converts the capture into a virtual-mode assessor input.
func (p *VirtualPage) Input(bannedWords []string) *assessor.Input {
	doc := p.Document
	if doc.URL == "" {
		doc.URL = p.URL
	}
	return &assessor.Input{
		Mode:              model.ModeVirtual,
		CustomBannedWords: bannedWords,
		Documents:         rules.DocumentCollection{Virtual: []element.VirtualDocument{doc}},
		Images:            rules.Collection[element.VirtualImage]{Virtual: p.Images},
		Frames:            rules.Collection[element.VirtualFrame]{Virtual: p.Frames},
		Links:             rules.Collection[element.VirtualLink]{Virtual: p.Links},
		Headings:          rules.Collection[element.VirtualHeading]{Virtual: p.Headings},
		FormFields:        rules.Collection[element.VirtualFormField]{Virtual: p.FormFields},
		Contrasts:         rules.ContrastCollection{Virtual: p.Contrasts},
	}
}

// Evaluator renders a URL and evaluates a script in it.
// webclient.ChromedpClient implements it.
type Evaluator interface {
	Evaluate(ctx context.Context, url, script string, res any) error
}

// Capture renders url with ev and extracts a VirtualPage using computed
// styles, so colours set by stylesheets are taken into account.
func Capture(ctx context.Context, ev Evaluator, url string) (*VirtualPage, error) {
	var page VirtualPage
	if err := ev.Evaluate(ctx, url, extractScript, &page); err != nil {
		return nil, fmt.Errorf("collector: capture %s: %w", url, err)
	}
	if page.URL == "" {
		page.URL = url
	}
	return &page, nil
}
