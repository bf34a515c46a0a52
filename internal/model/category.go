// Package model defines data structures used throughout the application.
package model

import (
	"errors"
	"strings"
)

// ErrUnknownCategory is returned when a category name is not one of the known kinds.
var ErrUnknownCategory = errors.New("unknown category")

// Category identifies one of the catalog collections.
type Category string

// Known categories.
const (
	CategoryBooks  Category = "books"
	CategoryMovies Category = "movies"
	CategorySeries Category = "series"
	CategoryMusic  Category = "music"
)

// Status values for books.
const (
	StatusReading    = "reading"
	StatusCompleted  = "completed"
	StatusWantToRead = "want-to-read"
)

// Status values for movies and series.
const (
	StatusWatching    = "watching"
	StatusWantToWatch = "want-to-watch"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryBooks, CategoryMovies, CategorySeries, CategoryMusic}

// BookStatuses is the allowed status set for books.
var BookStatuses = []string{StatusReading, StatusCompleted, StatusWantToRead}

// WatchStatuses is the allowed status set for movies and series.
var WatchStatuses = []string{StatusWatching, StatusCompleted, StatusWantToWatch}

// ParseCategory resolves a category name, failing with ErrUnknownCategory.
func ParseCategory(name string) (Category, error) {
	c := Category(strings.TrimSpace(name))
	if !c.Valid() {
		return "", ErrUnknownCategory
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryBooks, CategoryMovies, CategorySeries, CategoryMusic:
		return true
	}
	return false
}

// IDPrefix returns the prefix used for generated identifiers.
func (c Category) IDPrefix() string {
	switch c {
	case CategoryBooks:
		return "book"
	case CategoryMovies:
		return "movie"
	case CategorySeries:
		return "series"
	case CategoryMusic:
		return "music"
	}
	return ""
}

// Statuses returns the allowed status values, or nil if the category has no status.
func (c Category) Statuses() []string {
	switch c {
	case CategoryBooks:
		return BookStatuses
	case CategoryMovies, CategorySeries:
		return WatchStatuses
	}
	return nil
}

// FileName returns the name of the JSON file holding the collection.
func (c Category) FileName() string {
	return string(c) + ".json"
}

func (c Category) String() string {
	return string(c)
}
