package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RuleResultMap maps a canonical rule id to the violations recorded for it.
// Unlike a Go map it keeps its keys in a fixed order, which the assessor sets
// to the canonical rule order. JSON encoding preserves that order.
type RuleResultMap struct {
	keys   []string
	groups map[string][]Violation
}

// NewRuleResultMap returns an empty map.
func NewRuleResultMap() *RuleResultMap {
	return &RuleResultMap{groups: make(map[string][]Violation)}
}

// Set stores vs under rule. A new rule is appended at the end of the key order.
func (m *RuleResultMap) Set(rule string, vs []Violation) {
	if m.groups == nil {
		m.groups = make(map[string][]Violation)
	}
	if _, ok := m.groups[rule]; !ok {
		m.keys = append(m.keys, rule)
	}
	m.groups[rule] = vs
}

// Get returns the violations recorded for rule.
func (m *RuleResultMap) Get(rule string) ([]Violation, bool) {
	if m == nil {
		return nil, false
	}
	vs, ok := m.groups[rule]
	return vs, ok
}

// Keys returns a copy of the rule ids in order.
func (m *RuleResultMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len is the number of rule groups.
func (m *RuleResultMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Count is the total number of violations over all groups.
func (m *RuleResultMap) Count() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, k := range m.keys {
		n += len(m.groups[k])
	}
	return n
}

// Each calls fn for every group in key order.
func (m *RuleResultMap) Each(fn func(rule string, vs []Violation)) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		fn(k, m.groups[k])
	}
}

// MarshalJSON encodes the map as a JSON object with keys in order.
func (m *RuleResultMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if m != nil {
		for i, k := range m.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			vs := m.groups[k]
			if vs == nil {
				vs = []Violation{}
			}
			val, err := json.Marshal(vs)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping keys in document order.
func (m *RuleResultMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("rule result map: expected object, got %v", tok)
	}

	m.keys = nil
	m.groups = make(map[string][]Violation)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("rule result map: expected string key, got %v", tok)
		}
		var vs []Violation
		if err := dec.Decode(&vs); err != nil {
			return fmt.Errorf("rule result map: decode %q: %w", key, err)
		}
		m.Set(key, vs)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
