package recommend

import (
	"math"

	"github.com/kailas-cloud/propdex/internal/domain/feature"
	dominter "github.com/kailas-cloud/propdex/internal/domain/interaction"
	"github.com/kailas-cloud/propdex/internal/domain/property"
)

// Normalization spans for the characteristic deltas. A full-span difference
// in any one characteristic costs a quarter of the similarity.
const (
	bedsSpan  = 5.0
	bathsSpan = 4.0
	sqftSpan  = 3000.0
	ageSpan   = 50.0
)

// contentSimilarity measures how alike two properties are:
// 1 minus the mean of the normalized beds, baths, sqft, and age deltas,
// clamped to [0, 1]. Missing build years fall back to the imputation default
// so the age delta stays defined.
func contentSimilarity(seed, cand property.Record, params feature.Params) float64 {
	beds := math.Abs(float64(seed.Beds()-cand.Beds())) / bedsSpan
	baths := math.Abs(seed.Baths()-cand.Baths()) / bathsSpan
	sqft := math.Abs(seed.Sqft()-cand.Sqft()) / sqftSpan
	age := math.Abs(float64(yearBuiltOrDefault(seed, params)-yearBuiltOrDefault(cand, params))) / ageSpan

	sim := 1 - (beds+baths+sqft+age)/4
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

func yearBuiltOrDefault(rec property.Record, params feature.Params) int {
	if year, ok := rec.YearBuilt(); ok {
		return year
	}
	return params.DefaultYearBuilt()
}

// collabScores derives the collaborative signal: per candidate, the summed
// engagement weight contributed by users who also interacted with the seed,
// min-max normalized across the candidate set. Returns nil when the signal
// carries no information (empty seed profile or a flat score distribution),
// which degrades ranking to content-only.
func collabScores(seed dominter.Profile, profiles []dominter.Profile) []float64 {
	if len(seed) == 0 || len(profiles) == 0 {
		return nil
	}

	raw := make([]float64, len(profiles))
	for i, p := range profiles {
		var sum float64
		for user := range seed {
			sum += p[user]
		}
		raw[i] = sum
	}

	lo, hi := raw[0], raw[0]
	for _, v := range raw[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return nil
	}

	for i := range raw {
		raw[i] = (raw[i] - lo) / (hi - lo)
	}
	return raw
}

// locationSimilarity decays linearly with distance and never drops below the
// floor, so every in-radius candidate stays rankable. A zero radius only ever
// sees exact-point matches, which score 1.
func locationSimilarity(distanceMeters, radiusKM float64) float64 {
	if radiusKM <= 0 {
		return 1
	}
	sim := 1 - distanceMeters/(radiusKM*1000)
	if sim < minLocationSimilarity {
		return minLocationSimilarity
	}
	return sim
}
