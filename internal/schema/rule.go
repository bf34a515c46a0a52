// Package schema holds the per-category field rules for catalog records and
// the evaluator that checks a record against them.
//
// Every rule of every field is evaluated; a record that violates several
// rules reports all of them. Fields that are not part of the category schema
// are tolerated and reported as warnings only.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the type of check a Rule performs.
type Kind int

// Rule kinds.
const (
	KindRequired Kind = iota
	KindString
	KindRange
	KindURLOrPath
	KindDate
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindRequired:
		return "required"
	case KindString:
		return "string"
	case KindRange:
		return "range"
	case KindURLOrPath:
		return "url"
	case KindDate:
		return "date"
	case KindEnum:
		return "enum"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Rule is a single declarative check on one field.
type Rule struct {
	Kind    Kind
	Min     float64
	Max     float64
	Allowed []string
}

// FieldRules binds a field name to the rules applied to it, in order.
type FieldRules struct {
	Field string
	Rules []Rule
}

// Required fails on absent, null or empty-string values.
func Required() Rule { return Rule{Kind: KindRequired} }

// String fails on present values that are not text.
func String() Rule { return Rule{Kind: KindString} }

// Range coerces the value to a number and checks the inclusive bounds.
func Range(minimum, maximum float64) Rule {
	return Rule{Kind: KindRange, Min: minimum, Max: maximum}
}

// URLOrPath accepts local paths starting with "/" or absolute URLs.
func URLOrPath() Rule { return Rule{Kind: KindURLOrPath} }

// Date accepts any parseable calendar date.
func Date() Rule { return Rule{Kind: KindDate} }

// Enum restricts the value to the allowed set.
func Enum(allowed ...string) Rule {
	return Rule{Kind: KindEnum, Allowed: allowed}
}

// message renders the human-readable violation for field.
func (r Rule) message(field string) string {
	switch r.Kind {
	case KindRequired:
		return field + " is required"
	case KindString:
		return field + " must be a string"
	case KindRange:
		return fmt.Sprintf("%s must be a number between %g and %g", field, r.Min, r.Max)
	case KindURLOrPath:
		return field + " must be a valid URL or path"
	case KindDate:
		return field + " must be a valid date"
	case KindEnum:
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(r.Allowed, ", "))
	}
	return field + " is invalid"
}
