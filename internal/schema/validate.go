package schema

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// dateLayouts are the accepted spellings of a calendar date.
var dateLayouts = []string{
	model.DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006/01/02",
	"2006/1/2",
	"2006-01",
	"2006",
}

// Result is the outcome of validating one record.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Err returns a *ValidationError when the result is not valid.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: slices.Clone(r.Errors)}
}

// ValidationError carries every violated rule of a rejected record.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Validator evaluates records against a Table. It is safe for concurrent use.
type Validator struct {
	table Table
	urls  *validator.Validate
}

// New creates a Validator for the given table. A nil table selects DefaultTable.
func New(table Table) *Validator {
	if table == nil {
		table = DefaultTable
	}
	return &Validator{
		table: table,
		urls:  validator.New(),
	}
}

// Table returns the rules the validator evaluates.
func (v *Validator) Table() Table {
	return v.table
}

// Validate checks record against the rules of category c.
func (v *Validator) Validate(c model.Category, record model.Record) Result {
	rules, ok := v.table[c]
	if !ok {
		return Result{Errors: []string{fmt.Sprintf("unknown category: %s", c)}}
	}

	var errs []string
	for _, fr := range rules {
		value, present := record[fr.Field]
		for _, rule := range fr.Rules {
			if !v.check(rule, value, present) {
				errs = append(errs, rule.message(fr.Field))
			}
		}
	}

	return Result{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: v.unknownFields(c, record),
	}
}

// unknownFields lists payload fields outside the category schema, sorted.
func (v *Validator) unknownFields(c model.Category, record model.Record) []string {
	known := v.table.Fields(c)
	var unknown []string
	for field := range record {
		if !known[field] {
			unknown = append(unknown, "unknown field: "+field)
		}
	}
	slices.Sort(unknown)
	return unknown
}

func (v *Validator) check(rule Rule, value any, present bool) bool {
	empty := !present || value == nil || value == ""

	switch rule.Kind {
	case KindRequired:
		return !empty
	case KindString:
		if !present || value == nil {
			return true
		}
		_, isText := value.(string)
		return isText
	case KindRange:
		if empty {
			return true
		}
		n, ok := model.ToNumber(value)
		return ok && n >= rule.Min && n <= rule.Max
	case KindURLOrPath:
		if empty {
			return true
		}
		s, isText := value.(string)
		return isText && v.urlOrPath(s)
	case KindDate:
		if empty {
			return true
		}
		s, isText := value.(string)
		return isText && IsDate(s)
	case KindEnum:
		if empty {
			return true
		}
		s, isText := value.(string)
		return isText && slices.Contains(rule.Allowed, s)
	}
	return true
}

func (v *Validator) urlOrPath(s string) bool {
	if strings.HasPrefix(s, "/") {
		return true
	}
	return v.urls.Var(s, "url") == nil
}

// IsDate reports whether s parses as a calendar date in one of the accepted layouts.
func IsDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
