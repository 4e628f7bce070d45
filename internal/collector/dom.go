// Package collector turns a page into the typed element collections the
// assessor reads: parsed HTML for dom mode, a browser capture for virtual
// mode.
package collector

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/raysh454/rgaalint/internal/assessor"
	"github.com/raysh454/rgaalint/internal/element"
	"github.com/raysh454/rgaalint/internal/model"
	"github.com/raysh454/rgaalint/internal/rules"
)

// FromHTML parses body and collects every element the rules look at.
// pageURL is reported as the element of document-level violations.
func FromHTML(body []byte, pageURL string) (*assessor.Input, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("collector: parse html: %w", err)
	}
	if u, err := url.Parse(pageURL); err == nil && pageURL != "" {
		doc.Url = u
	}
	return FromDocument(doc, pageURL), nil
}

// FromDocument collects from an already parsed document.
func FromDocument(doc *goquery.Document, pageURL string) *assessor.Input {
	return &assessor.Input{
		Mode:       model.ModeDOM,
		Documents:  rules.DocumentCollection{DOM: []element.DOMDocument{{Doc: doc, URL: pageURL}}},
		Images:     rules.Collection[element.VirtualImage]{DOM: each(doc.FindMatcher(selImages))},
		Frames:     rules.Collection[element.VirtualFrame]{DOM: each(doc.FindMatcher(selFrames))},
		Links:      rules.Collection[element.VirtualLink]{DOM: each(doc.FindMatcher(selLinks))},
		Headings:   rules.Collection[element.VirtualHeading]{DOM: each(doc.FindMatcher(selHeadings))},
		FormFields: rules.Collection[element.VirtualFormField]{DOM: each(doc.FindMatcher(selFormFields))},
		Contrasts:  rules.ContrastCollection{DOM: contrastPairs(doc)},
	}
}

func each(s *goquery.Selection) []*goquery.Selection {
	out := make([]*goquery.Selection, 0, s.Length())
	s.Each(func(_ int, el *goquery.Selection) { out = append(out, el) })
	return out
}

// contrastPairs pairs every element with text of its own with the nearest
// element painting a background, falling back to body.
func contrastPairs(doc *goquery.Document) []element.DOMContrastPair {
	body := doc.Find("body").First()
	var out []element.DOMContrastPair
	doc.FindMatcher(selText).Each(func(_ int, s *goquery.Selection) {
		if !hasOwnText(s.Get(0)) {
			return
		}
		bg := body
		for cur := s; cur.Length() > 0 && goquery.NodeName(cur) != "body"; cur = cur.Parent() {
			st := element.InlineStyle(cur)
			if st["background-color"] != "" || st["background"] != "" {
				bg = cur
				break
			}
		}
		out = append(out, element.DOMContrastPair{Background: bg, Foreground: s})
	})
	return out
}

func hasOwnText(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return true
		}
	}
	return false
}
