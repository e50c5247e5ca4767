package recommend

import (
	"github.com/kailas-cloud/propdex/internal/db/filter"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
)

// Index projection fields the prefilter can target. Age is deliberately not
// prefiltered: the projection omits unknown build years, and a numeric
// condition would exclude those candidates outright instead of applying the
// imputation default. passingFilters enforces it after retrieval.
const (
	fieldPropertyType = "property_type"
	fieldBeds         = "beds"
	fieldBaths        = "baths"
	fieldSqft         = "sqft"
)

// indexFilters translates the hard preference filters into index prefilter
// conditions so retrieval slots aren't wasted on excluded candidates.
func indexFilters(f domrec.Filters) (filter.Expression, error) {
	var must []filter.Condition

	if f.PropertyType != "" {
		cond, err := filter.NewMatch(fieldPropertyType, string(f.PropertyType))
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}
	if f.MinBeds != nil {
		cond, err := atLeast(fieldBeds, float64(*f.MinBeds))
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}
	if f.MinBaths != nil {
		cond, err := atLeast(fieldBaths, *f.MinBaths)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}
	if f.MinSqft != nil {
		cond, err := atLeast(fieldSqft, *f.MinSqft)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, cond)
	}

	if len(must) == 0 {
		return filter.Expression{}, nil
	}
	return filter.NewExpression(must, nil, nil)
}

func atLeast(field string, bound float64) (filter.Condition, error) {
	r, err := filter.NewRangeFilter(nil, &bound, nil, nil)
	if err != nil {
		return filter.Condition{}, err
	}
	return filter.NewRange(field, r)
}
