package model

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Field names shared by every category.
const (
	FieldID        = "id"
	FieldTitle     = "title"
	FieldCover     = "cover"
	FieldRating    = "rating"
	FieldYear      = "year"
	FieldCountry   = "country"
	FieldAddedDate = "addedDate"
	FieldNotes     = "notes"
	FieldStatus    = "status"
)

// Category-specific field names.
const (
	FieldAuthor   = "author"
	FieldArtist   = "artist"
	FieldDirector = "director"
	FieldSeasons  = "seasons"
)

// DateLayout is the layout of addedDate values.
const DateLayout = "2006-01-02"

// Record is a single catalog item as stored on disk. Optional fields vary by
// category, so the record keeps the decoded JSON object and exposes typed
// accessors on top of it.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// ID returns the record identifier.
func (r Record) ID() string {
	return r.String(FieldID)
}

// Has reports whether the field is present and not null.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

// String returns the textual form of a field, or "" when absent.
// Numbers are formatted without a trailing fraction when integral.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Number coerces a field to a number. The second result is false when the
// field is absent or cannot be read as a number.
func (r Record) Number(field string) (float64, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return 0, false
	}
	return ToNumber(v)
}

// ToNumber coerces a decoded JSON value to a number.
func ToNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Merge returns a copy of r with every field of patch laid over it.
// The identifier of r is kept.
func (r Record) Merge(patch Record) Record {
	merged := r.Clone()
	if merged == nil {
		merged = Record{}
	}
	for k, v := range patch {
		if k == FieldID {
			continue
		}
		merged[k] = v
	}
	if id, ok := r[FieldID]; ok {
		merged[FieldID] = id
	}
	return merged
}
