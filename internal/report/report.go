// Package report maps audit results to the per-page report structure,
// computes topic compliance and renders HTML, JSON and console output.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/raysh454/rgaalint/internal/model"
)

// Issue is one offending element of a rule group.
type Issue struct {
	Element string `json:"element"`
}

// RuleReport is the rendered form of one rule group.
type RuleReport struct {
	Rule          string  `json:"-"`
	Message       string  `json:"message"`
	RuleLink      string  `json:"ruleLink"`
	Issues        []Issue `json:"issues"`
	HasDomElement bool    `json:"hasDomElement"`
}

// PageReport holds the rule groups of one page, in result order.
type PageReport struct {
	URL   string
	Rules []RuleReport
}

// IssueCount is the number of issues over all rules of the page.
func (p PageReport) IssueCount() int {
	n := 0
	for _, r := range p.Rules {
		n += len(r.Issues)
	}
	return n
}

// Rule returns the group for rule, if the page has one.
func (p PageReport) Rule(rule string) (RuleReport, bool) {
	for _, r := range p.Rules {
		if r.Rule == rule {
			return r, true
		}
	}
	return RuleReport{}, false
}

// PageReports encodes as a JSON object keyed by page URL, each page an
// object keyed by rule id. Order is preserved both ways.
type PageReports []PageReport

// MapResults converts page results into reports. Message and link come
// from the first violation of each group. A URL seen twice keeps its first
// position and takes the later result.
func MapResults(results []model.PageResult) PageReports {
	var out PageReports
	pos := make(map[string]int)
	for _, res := range results {
		page := PageReport{URL: res.URL}
		res.Result.Each(func(rule string, vs []model.Violation) {
			rr := RuleReport{Rule: rule, Issues: make([]Issue, 0, len(vs))}
			if len(vs) > 0 {
				rr.Message = vs[0].Message
				rr.RuleLink = vs[0].RuleLink
			}
			for _, v := range vs {
				rr.Issues = append(rr.Issues, Issue{Element: v.Element})
				if strings.TrimSpace(v.Element) != "" {
					rr.HasDomElement = true
				}
			}
			page.Rules = append(page.Rules, rr)
		})
		if i, ok := pos[res.URL]; ok {
			out[i] = page
			continue
		}
		pos[res.URL] = len(out)
		out = append(out, page)
	}
	return out
}

func (p PageReports) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, page := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, page.URL); err != nil {
			return nil, err
		}
		buf.WriteByte('{')
		for j, r := range page.Rules {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(&buf, r.Rule); err != nil {
				return nil, err
			}
			if r.Issues == nil {
				r.Issues = []Issue{}
			}
			val, err := json.Marshal(r)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, k string) error {
	key, err := json.Marshal(k)
	if err != nil {
		return err
	}
	buf.Write(key)
	buf.WriteByte(':')
	return nil
}

func (p *PageReports) UnmarshalJSON(data []byte) error {
	var pages PageReports
	err := decodeObject(json.NewDecoder(bytes.NewReader(data)), func(url string, dec *json.Decoder) error {
		page := PageReport{URL: url}
		err := decodeObject(dec, func(rule string, dec *json.Decoder) error {
			var r RuleReport
			if err := dec.Decode(&r); err != nil {
				return fmt.Errorf("report: decode %q: %w", rule, err)
			}
			r.Rule = rule
			page.Rules = append(page.Rules, r)
			return nil
		})
		if err != nil {
			return err
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return err
	}
	*p = pages
	return nil
}

// decodeObject walks one JSON object, calling fn with each key while the
// decoder is positioned on the value.
func decodeObject(dec *json.Decoder, fn func(key string, dec *json.Decoder) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("report: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("report: expected string key, got %v", tok)
		}
		if err := fn(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
