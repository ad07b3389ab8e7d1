package domain

import "strings"

// OrderField is one key of an ORDER BY clause.
type OrderField struct {
	Field string
	Desc  bool
}

// ParseOrdering parses an ordering query value such as "-price_per_night,title".
// Keys outside allowed are dropped silently. When nothing valid remains the
// fallback ordering is returned.
func ParseOrdering(raw string, allowed []string, fallback []OrderField) []OrderField {
	var out []OrderField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if name == "" || !contains(allowed, name) {
			continue
		}
		out = append(out, OrderField{Field: name, Desc: desc})
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// SearchTerms splits a free-text search value into its whitespace- or
// comma-separated terms. Every term must match for a row to be returned.
func SearchTerms(q string) []string {
	return strings.FieldsFunc(q, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
