package model

import (
	"math/rand"

	"github.com/kailas-cloud/propdex/internal/domain/feature"
)

// SyntheticPopulationSize is the default synthetic training set size.
const SyntheticPopulationSize = 1000

const syntheticNoise = 0.08

// SyntheticPopulation draws a seeded training set over plausible property
// ranges whose target is the heuristic value surface with relative noise.
// It backs forest training until the catalog holds enough priced samples.
func SyntheticPopulation(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	samples := make([][]float64, n)
	targets := make([]float64, n)
	for i := 0; i < n; i++ {
		x := make([]float64, feature.Dim)
		x[0] = float64(1 + rng.Intn(6))          // beds
		x[1] = 1 + float64(rng.Intn(6))*0.5      // baths
		x[2] = 500 + rng.Float64()*3000          // sqft
		x[3] = float64(rng.Intn(80))             // age
		x[4] = 0.05 + rng.Float64()*1.2          // lot acres
		x[5] = rng.Float64()                     // norm_school
		x[6] = rng.Float64()                     // norm_crime_inv
		x[7] = 0.4 + rng.Float64()*0.6           // norm_flood_inv
		x[8] = rng.Float64() * 0.8               // norm_hospital_access
		x[9] = rng.Float64() * 0.8               // norm_employer_access
		x[10] = 60 + rng.Float64()*240           // area $/sqft
		samples[i] = x

		value := heuristicValue(x[idxSqft], x[idxAge], x[idxSchool], x[idxCrimeInv], x[idxAreaPrice])
		targets[i] = value * (1 + rng.NormFloat64()*syntheticNoise)
	}
	return samples, targets
}
