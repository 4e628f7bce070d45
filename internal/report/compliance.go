package report

import (
	"math"

	"github.com/raysh454/rgaalint/internal/dictionary"
)

// ComplianceEntry is the compliance of one RGAA topic.
type ComplianceEntry struct {
	Compliance    bool     `json:"compliance"`
	CriteriaCount int      `json:"criteriaCount"`
	Percentage    int      `json:"percentage"`
	RuleInError   []string `json:"ruleInError"`
}

// ComputeCompliance scores every topic of dict over all pages. A topic is
// non-compliant as soon as one of its rules has an issue on any page;
// RuleInError lists each offending rule once, in first-seen order.
// Topics without errors are 100% even when none of their rules ran.
func ComputeCompliance(reports PageReports, dict *dictionary.Dictionary) map[string]ComplianceEntry {
	if dict == nil {
		dict = dictionary.Default()
	}
	out := make(map[string]ComplianceEntry)
	inError := make(map[string]map[string]bool)

	for _, topic := range dict.Topics() {
		out[topic] = ComplianceEntry{
			Compliance:    true,
			CriteriaCount: len(dict.SubRules(topic)),
			Percentage:    100,
			RuleInError:   []string{},
		}
		inError[topic] = make(map[string]bool)
	}

	for _, page := range reports {
		for _, r := range page.Rules {
			if len(r.Issues) == 0 || !dict.Contains(r.Rule) {
				continue
			}
			topic, _ := dict.TopicOf(r.Rule)
			if inError[topic][r.Rule] {
				continue
			}
			inError[topic][r.Rule] = true
			e := out[topic]
			e.Compliance = false
			e.RuleInError = append(e.RuleInError, r.Rule)
			e.Percentage = percentage(e.CriteriaCount, len(e.RuleInError))
			out[topic] = e
		}
	}
	return out
}

func percentage(count, errs int) int {
	if count == 0 {
		return 100
	}
	return int(math.Round(float64(count-errs) / float64(count) * 100))
}
