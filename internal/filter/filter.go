// Package filter decides whether catalog items pass a set of active filter
// criteria.
package filter

import (
	"strings"
)

// All is the wildcard filter value that matches every item.
const All = "all"

// Mode selects how an item value is compared to a filter value.
type Mode int

const (
	// Contains splits the item value on "/" and matches any part exactly.
	Contains Mode = iota
	// Exact compares the whole item value verbatim.
	Exact
)

// SplitBySlash splits a multi-value field such as "美国 / 英国" into its parts.
// Whitespace around each part is trimmed and empty parts are dropped.
func SplitBySlash(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Matches reports whether itemValue satisfies filterValue under mode.
func Matches(itemValue, filterValue string, mode Mode) bool {
	if filterValue == All {
		return true
	}
	if itemValue == "" {
		return false
	}
	if mode == Exact {
		return itemValue == filterValue
	}
	for _, part := range SplitBySlash(itemValue) {
		if part == filterValue {
			return true
		}
	}
	return false
}
