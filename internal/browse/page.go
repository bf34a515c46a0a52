// Package browse keeps the live filter and sort state of one catalog page and
// applies it to the page's items.
package browse

import (
	"github.com/vyrodovalexey/media-catalog/internal/filter"
	"github.com/vyrodovalexey/media-catalog/internal/model"
)

// Dimension names.
const (
	DimensionAdded   = "added"
	DimensionYear    = "year"
	DimensionCountry = "country"
	DimensionStatus  = "status"
)

var (
	addedDimension = filter.Dimension{
		Name:   DimensionAdded,
		Field:  model.FieldAddedDate,
		Mode:   filter.Exact,
		Derive: filter.YearPrefix,
	}
	yearDimension    = filter.Dimension{Name: DimensionYear, Field: model.FieldYear, Mode: filter.Exact}
	countryDimension = filter.Dimension{Name: DimensionCountry, Field: model.FieldCountry, Mode: filter.Contains}
	statusDimension  = filter.Dimension{Name: DimensionStatus, Field: model.FieldStatus, Mode: filter.Contains}
)

// Dimensions returns the filter dimensions of the catalog page for c.
func Dimensions(c model.Category) []filter.Dimension {
	switch c {
	case model.CategoryBooks:
		return []filter.Dimension{addedDimension, countryDimension, statusDimension}
	case model.CategoryMovies, model.CategorySeries:
		return []filter.Dimension{addedDimension, yearDimension, countryDimension, statusDimension}
	case model.CategoryMusic:
		return []filter.Dimension{addedDimension, yearDimension, countryDimension}
	}
	return nil
}
