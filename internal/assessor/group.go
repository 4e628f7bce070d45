package assessor

import (
	"sort"
	"strconv"
	"strings"

	"github.com/raysh454/rgaalint/internal/model"
)

// GroupViolations groups vs by rule, keeping first-seen order inside each
// group, and keys the result in canonical rule order. Rules without
// violations never appear.
func GroupViolations(vs []model.Violation) *model.RuleResultMap {
	groups := make(map[string][]model.Violation)
	var seen []string
	for _, v := range vs {
		if _, ok := groups[v.Rule]; !ok {
			seen = append(seen, v.Rule)
		}
		groups[v.Rule] = append(groups[v.Rule], v)
	}

	out := model.NewRuleResultMap()
	for _, rule := range SortRuleKeys(seen) {
		out.Set(rule, groups[rule])
	}
	return out
}

// SortRuleKeys returns keys in canonical order without modifying the input.
// Parsable keys are sorted among the positions they occupy, equal ones
// keeping their relative order; unparsable keys stay where they are.
func SortRuleKeys(keys []string) []string {
	out := append([]string(nil), keys...)
	var slots []int
	var parsable []string
	for i, k := range keys {
		if _, ok := ParseRuleKey(k); ok {
			slots = append(slots, i)
			parsable = append(parsable, k)
		}
	}
	sort.SliceStable(parsable, func(i, j int) bool {
		return CompareRuleKeys(parsable[i], parsable[j]) < 0
	})
	for i, slot := range slots {
		out[slot] = parsable[i]
	}
	return out
}

// ParseRuleKey parses the dotted number after the last "- " of a rule id:
// "RGAA - 11.1.2" gives [11 1 2]. ok is false when any part is not a
// number.
func ParseRuleKey(rule string) (parts []int, ok bool) {
	i := strings.LastIndex(rule, "- ")
	if i < 0 {
		return nil, false
	}
	num := strings.TrimSpace(rule[i+2:])
	if num == "" {
		return nil, false
	}
	for _, p := range strings.Split(num, ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
	}
	return parts, true
}

// CompareRuleKeys orders two rule ids by their numeric tuples, padding the
// shorter with zeros. It returns 0 when either side does not parse, so it
// only orders parsable keys.
func CompareRuleKeys(a, b string) int {
	pa, okA := ParseRuleKey(a)
	pb, okB := ParseRuleKey(b)
	if !okA || !okB {
		return 0
	}
	for i := 0; i < max(len(pa), len(pb)); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}
