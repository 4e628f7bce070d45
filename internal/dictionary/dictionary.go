// Package dictionary maps RGAA topics to the sub-rules this tool checks.
package dictionary

import (
	"slices"
	"strconv"
	"strings"
)

// Dictionary is an immutable topic -> sub-rule table. Rule ids are the full
// "RGAA - N.N.N" form.
type Dictionary struct {
	topics []string
	rules  map[string][]string
	owner  map[string]string
}

// Entry is one topic and its sub-rules, as passed to New.
type Entry struct {
	Topic string
	Rules []string
}

// New builds a dictionary. Topics keep the given order; a rule listed under
// several topics belongs to the first.
func New(entries ...Entry) *Dictionary {
	d := &Dictionary{rules: make(map[string][]string), owner: make(map[string]string)}
	for _, e := range entries {
		if _, seen := d.rules[e.Topic]; !seen {
			d.topics = append(d.topics, e.Topic)
		}
		d.rules[e.Topic] = append(d.rules[e.Topic], e.Rules...)
		for _, r := range e.Rules {
			if _, ok := d.owner[r]; !ok {
				d.owner[r] = e.Topic
			}
		}
	}
	return d
}

// Default returns the table of the rules implemented in package rules.
func Default() *Dictionary {
	return New(
		Entry{"1", rgaa("1.1.1", "1.1.2", "1.1.5")},
		Entry{"2", rgaa("2.1.1", "2.2.1")},
		Entry{"3", rgaa("3.2.1", "3.2.2", "3.2.3", "3.2.4")},
		Entry{"6", rgaa("6.2.1")},
		Entry{"8", rgaa("8.1.1", "8.1.3", "8.3", "8.5")},
		Entry{"9", rgaa("9.1.1", "9.1.3")},
		Entry{"11", rgaa("11.1.1", "11.1.2")},
	)
}

func rgaa(nums ...string) []string {
	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = "RGAA - " + n
	}
	return out
}

// Topics returns the topic numbers in table order.
func (d *Dictionary) Topics() []string {
	return slices.Clone(d.topics)
}

// SubRules returns the rule ids of topic, or nil for an unknown topic.
func (d *Dictionary) SubRules(topic string) []string {
	return slices.Clone(d.rules[topic])
}

// TopicOf returns the topic owning rule. Rules missing from the table fall
// back to the leading number of their id.
func (d *Dictionary) TopicOf(rule string) (string, bool) {
	if t, ok := d.owner[rule]; ok {
		return t, true
	}
	_, num, ok := strings.Cut(rule, "- ")
	if !ok {
		return "", false
	}
	head, _, _ := strings.Cut(strings.TrimSpace(num), ".")
	if _, err := strconv.Atoi(head); err != nil {
		return "", false
	}
	return head, false
}

// Contains reports whether rule is listed in the table.
func (d *Dictionary) Contains(rule string) bool {
	_, ok := d.owner[rule]
	return ok
}
