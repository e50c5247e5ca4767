package propdex

import (
	"time"

	dombatch "github.com/kailas-cloud/propdex/internal/domain/batch"
	domexp "github.com/kailas-cloud/propdex/internal/domain/explain"
	"github.com/kailas-cloud/propdex/internal/domain/location"
	"github.com/kailas-cloud/propdex/internal/domain/property"
	domrec "github.com/kailas-cloud/propdex/internal/domain/recommend"
	"github.com/kailas-cloud/propdex/internal/domain/score"
	domval "github.com/kailas-cloud/propdex/internal/domain/valuation"
)

func toInternalRecord(p Property) (property.Record, error) {
	loc, err := location.New(
		p.Location.Latitude, p.Location.Longitude,
		p.Location.Address, p.Location.City, p.Location.State,
		toInternalAttrs(p.Location.Attributes),
	)
	if err != nil {
		return property.Record{}, err
	}
	return property.New(p.ID, property.Type(p.Type), p.Beds, p.Baths, p.Sqft, p.YearBuilt, p.LotSize, loc)
}

func fromInternalRecord(rec property.Record) Property {
	loc := rec.Location()
	p := Property{
		ID:    rec.ID(),
		Type:  PropertyType(rec.PropertyType()),
		Beds:  rec.Beds(),
		Baths: rec.Baths(),
		Sqft:  rec.Sqft(),
		Location: Location{
			Latitude:   loc.Latitude(),
			Longitude:  loc.Longitude(),
			Address:    loc.Address(),
			City:       loc.City(),
			State:      loc.State(),
			Attributes: fromInternalAttrs(loc.Attrs()),
		},
	}
	if v, ok := rec.YearBuilt(); ok {
		p.YearBuilt = &v
	}
	if v, ok := rec.LotSize(); ok {
		p.LotSize = &v
	}
	return p
}

func toInternalAttrs(a LocationAttributes) location.Attributes {
	return location.Attributes{
		SchoolRating:   a.SchoolRating,
		CrimeRate:      a.CrimeRate,
		FloodRisk:      a.FloodRisk,
		EarthquakeRisk: a.EarthquakeRisk,
		HurricaneRisk:  a.HurricaneRisk,
		WildfireRisk:   a.WildfireRisk,
		TornadoRisk:    a.TornadoRisk,
		Schools1KM:     a.Schools1KM,
		Schools3KM:     a.Schools3KM,
		Hospitals1KM:   a.Hospitals1KM,
		Hospitals3KM:   a.Hospitals3KM,
		Transit1KM:     a.Transit1KM,
		Transit3KM:     a.Transit3KM,
		PricePerSqft:   a.PricePerSqft,
		PriceTrend1Y:   a.PriceTrend1Y,
		DemandScore:    a.DemandScore,
		SupplyScore:    a.SupplyScore,
	}
}

func fromInternalAttrs(a location.Attributes) LocationAttributes {
	return LocationAttributes{
		SchoolRating:   a.SchoolRating,
		CrimeRate:      a.CrimeRate,
		FloodRisk:      a.FloodRisk,
		EarthquakeRisk: a.EarthquakeRisk,
		HurricaneRisk:  a.HurricaneRisk,
		WildfireRisk:   a.WildfireRisk,
		TornadoRisk:    a.TornadoRisk,
		Schools1KM:     a.Schools1KM,
		Schools3KM:     a.Schools3KM,
		Hospitals1KM:   a.Hospitals1KM,
		Hospitals3KM:   a.Hospitals3KM,
		Transit1KM:     a.Transit1KM,
		Transit3KM:     a.Transit3KM,
		PricePerSqft:   a.PricePerSqft,
		PriceTrend1Y:   a.PriceTrend1Y,
		DemandScore:    a.DemandScore,
		SupplyScore:    a.SupplyScore,
	}
}

func toInternalFilters(f RecommendFilters) domrec.Filters {
	return domrec.Filters{
		PropertyType: property.Type(f.PropertyType),
		MinBeds:      f.MinBeds,
		MinBaths:     f.MinBaths,
		MinSqft:      f.MinSqft,
		MaxAgeYears:  f.MaxAgeYears,
	}
}

func fromInternalValuation(res domval.Result) Valuation {
	low, high := res.Band()
	return Valuation{
		PropertyID:   res.PropertyID(),
		Value:        res.Value(),
		RangeLow:     low,
		RangeHigh:    high,
		Uncertainty:  res.Uncertainty(),
		PricePerSqft: res.PricePerSqft(),
		Confidence:   res.Confidence(),
		ModelVersion: res.ModelVersion(),
		ValuedAt:     time.UnixMilli(res.ValuedAt()).UTC(),
	}
}

func fromInternalScore(res score.Result, modelVersion string) Score {
	return Score{
		Overall:      res.Overall(),
		Components:   res.ComponentMap(),
		Weights:      res.Weights().Map(),
		Defaulted:    res.DefaultedComponents(),
		ModelVersion: modelVersion,
	}
}

func fromInternalExplanation(exp domexp.Explanation) Explanation {
	return Explanation{
		Kind:         ExplanationKind(exp.Kind()),
		BaseValue:    exp.BaseValue(),
		FinalValue:   exp.FinalValue(),
		Positive:     fromInternalAttributions(exp.Positive()),
		Negative:     fromInternalAttributions(exp.Negative()),
		Residual:     exp.Residual(),
		ModelVersion: exp.ModelVersion(),
	}
}

func fromInternalAttributions(attrs []domexp.Attribution) []Attribution {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attribution, len(attrs))
	for i, a := range attrs {
		out[i] = Attribution{
			Feature:      a.Feature,
			Value:        a.Value,
			FeatureValue: a.FeatureValue,
			Description:  a.Description,
		}
	}
	return out
}

func fromInternalRecommendations(recs []domrec.Recommendation) []Recommendation {
	if len(recs) == 0 {
		return nil
	}
	out := make([]Recommendation, len(recs))
	for i, r := range recs {
		out[i] = Recommendation{
			PropertyID: r.PropertyID(),
			Similarity: r.Similarity(),
			Confidence: r.Confidence(),
			Rank:       r.Rank(),
			Reason:     r.Reason(),
		}
	}
	return out
}

func fromBatchResults(results []dombatch.Result) []BatchResult {
	out := make([]BatchResult, len(results))
	for i, r := range results {
		out[i] = BatchResult{
			ID:  r.ID(),
			OK:  r.OK(),
			Err: r.Err(),
		}
	}
	return out
}
