package model

import (
	"fmt"
	"math/bits"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// MaxExactFeatures bounds the coalition enumeration; 2^n model evaluations
// are memoized per explanation.
const MaxExactFeatures = 16

// ExactShapley decomposes an artifact's value estimate for x against the
// baseline into per-feature Shapley attributions. Features outside a
// coalition take their baseline value; every coalition's value is evaluated
// once and combined with exact factorial weights, so
// base + sum(phi) == Predict(x) up to float error.
func ExactShapley(a Artifact, x, baseline []float64) (base float64, phi []float64, err error) {
	n := len(x)
	if n == 0 || n != len(baseline) {
		return 0, nil, domain.NewComputation("shapley",
			fmt.Sprintf("input dim %d, baseline dim %d", n, len(baseline)))
	}
	if n > MaxExactFeatures {
		return 0, nil, domain.NewComputation("shapley",
			fmt.Sprintf("%d features exceed the exact enumeration limit %d", n, MaxExactFeatures))
	}

	masks := 1 << n
	values := make([]float64, masks)
	probe := make([]float64, n)
	for mask := 0; mask < masks; mask++ {
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				probe[i] = x[i]
			} else {
				probe[i] = baseline[i]
			}
		}
		v, _, perr := a.Predict(probe)
		if perr != nil {
			return 0, nil, perr
		}
		values[mask] = v
	}

	// weight[s] = s!(n-s-1)!/n! for a coalition of size s.
	weight := make([]float64, n)
	for s := 0; s < n; s++ {
		weight[s] = 1 / (float64(n) * binomial(n-1, s))
	}

	phi = make([]float64, n)
	for i := 0; i < n; i++ {
		bit := 1 << i
		for mask := 0; mask < masks; mask++ {
			if mask&bit != 0 {
				continue
			}
			w := weight[bits.OnesCount(uint(mask))]
			phi[i] += w * (values[mask|bit] - values[mask])
		}
	}
	return values[0], phi, nil
}

func binomial(n, k int) float64 {
	if k > n-k {
		k = n - k
	}
	out := 1.0
	for i := 0; i < k; i++ {
		out = out * float64(n-i) / float64(i+1)
	}
	return out
}
