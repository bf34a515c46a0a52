// Package store persists one ordered collection of records per category.
package store

import (
	"context"
	"errors"

	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// Store errors.
var (
	ErrInvalidCategory = errors.New("invalid category")
	ErrCorrupt         = errors.New("collection file is not a JSON array of objects")
)

// Store reads and writes whole category collections. Writers race at the
// collection level: the last Save wins.
type Store interface {
	// Load returns the collection of a category in stored order. A category
	// that has never been saved loads as an empty collection.
	Load(ctx context.Context, c model.Category) ([]model.Record, error)

	// Save replaces the collection of a category.
	Save(ctx context.Context, c model.Category, records []model.Record) error
}

func cloneAll(records []model.Record) []model.Record {
	out := make([]model.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
