package schema

import (
	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// Table maps each category to its field rules.
type Table map[model.Category][]FieldRules

// Bounds shared by all categories.
const (
	MinYear   = 1000
	MaxYear   = 2100
	MinRating = 1
	MaxRating = 10
)

// common returns the optional fields every category carries.
func common() []FieldRules {
	return []FieldRules{
		{Field: model.FieldRating, Rules: []Rule{Range(MinRating, MaxRating)}},
		{Field: model.FieldYear, Rules: []Rule{Range(MinYear, MaxYear)}},
		{Field: model.FieldCountry, Rules: []Rule{String()}},
		{Field: model.FieldAddedDate, Rules: []Rule{Date()}},
		{Field: model.FieldNotes, Rules: []Rule{String()}},
	}
}

func title() FieldRules {
	return FieldRules{Field: model.FieldTitle, Rules: []Rule{Required(), String()}}
}

// DefaultTable is the schema of the catalog collections.
var DefaultTable = Table{
	model.CategoryBooks: append([]FieldRules{
		title(),
		{Field: model.FieldAuthor, Rules: []Rule{Required(), String()}},
		{Field: model.FieldCover, Rules: []Rule{URLOrPath()}},
		{Field: model.FieldStatus, Rules: []Rule{Enum(model.BookStatuses...)}},
	}, common()...),
	model.CategoryMovies: append([]FieldRules{
		title(),
		{Field: model.FieldCover, Rules: []Rule{Required(), URLOrPath()}},
		{Field: model.FieldDirector, Rules: []Rule{String()}},
		{Field: model.FieldStatus, Rules: []Rule{Enum(model.WatchStatuses...)}},
	}, common()...),
	model.CategorySeries: append([]FieldRules{
		title(),
		{Field: model.FieldCover, Rules: []Rule{Required(), URLOrPath()}},
		{Field: model.FieldDirector, Rules: []Rule{String()}},
		{Field: model.FieldSeasons, Rules: []Rule{Range(1, 100)}},
		{Field: model.FieldStatus, Rules: []Rule{Enum(model.WatchStatuses...)}},
	}, common()...),
	model.CategoryMusic: append([]FieldRules{
		title(),
		{Field: model.FieldArtist, Rules: []Rule{Required(), String()}},
		{Field: model.FieldCover, Rules: []Rule{URLOrPath()}},
	}, common()...),
}

// Fields returns the set of field names known for the category, including the identifier.
func (t Table) Fields(c model.Category) map[string]bool {
	rules := t[c]
	fields := make(map[string]bool, len(rules)+1)
	fields[model.FieldID] = true
	for _, fr := range rules {
		fields[fr.Field] = true
	}
	return fields
}
