package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr error
	}{
		{"books", "books", CategoryBooks, nil},
		{"movies", "movies", CategoryMovies, nil},
		{"series", "series", CategorySeries, nil},
		{"music", "music", CategoryMusic, nil},
		{"surrounding whitespace", " music ", CategoryMusic, nil},
		{"singular form is unknown", "book", "", ErrUnknownCategory},
		{"empty", "", "", ErrUnknownCategory},
		{"games", "games", "", ErrUnknownCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			got, err := ParseCategory(tt.input)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseCategory(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategory_IDPrefix(t *testing.T) {
	want := map[Category]string{
		CategoryBooks:  "book",
		CategoryMovies: "movie",
		CategorySeries: "series",
		CategoryMusic:  "music",
	}

	for _, c := range Categories {
		if got := c.IDPrefix(); got != want[c] {
			t.Errorf("%s.IDPrefix() = %q, want %q", c, got, want[c])
		}
	}
}

func TestCategory_Statuses(t *testing.T) {
	if got := CategoryBooks.Statuses(); len(got) != 3 || got[2] != StatusWantToRead {
		t.Errorf("books statuses = %v", got)
	}
	if got := CategorySeries.Statuses(); len(got) != 3 || got[0] != StatusWatching {
		t.Errorf("series statuses = %v", got)
	}
	if got := CategoryMusic.Statuses(); got != nil {
		t.Errorf("music statuses = %v, want nil", got)
	}
}

func TestRecord_String(t *testing.T) {
	var r Record
	if err := json.Unmarshal([]byte(`{"title":"沙丘","year":2021,"rating":8.5,"notes":null}`), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tests := []struct {
		field string
		want  string
	}{
		{FieldTitle, "沙丘"},
		{FieldYear, "2021"},
		{FieldRating, "8.5"},
		{FieldNotes, ""},
		{FieldCountry, ""},
	}

	for _, tt := range tests {
		if got := r.String(tt.field); got != tt.want {
			t.Errorf("String(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}
}

func TestToNumber(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{"float", 7.0, 7, true},
		{"int", 3, 3, true},
		{"numeric string", " 1999 ", 1999, true},
		{"empty string", "", 0, false},
		{"text", "soon", 0, false},
		{"bool", true, 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToNumber(tt.value)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ToNumber(%v) = (%v, %v), want (%v, %v)", tt.value, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRecord_Merge(t *testing.T) {
	// Arrange
	existing := Record{FieldID: "book-1", FieldTitle: "Old", FieldAuthor: "A", FieldRating: 6.0}
	patch := Record{FieldID: "book-99", FieldTitle: "New", FieldNotes: "re-read"}

	// Act
	merged := existing.Merge(patch)

	// Assert
	if merged.ID() != "book-1" {
		t.Errorf("ID = %q, want book-1", merged.ID())
	}
	if merged.String(FieldTitle) != "New" {
		t.Errorf("title = %q, want New", merged.String(FieldTitle))
	}
	if merged.String(FieldAuthor) != "A" {
		t.Errorf("author = %q, want A", merged.String(FieldAuthor))
	}
	if merged.String(FieldNotes) != "re-read" {
		t.Errorf("notes = %q, want re-read", merged.String(FieldNotes))
	}
	if existing.String(FieldTitle) != "Old" {
		t.Error("Merge() must not mutate the receiver")
	}
}
