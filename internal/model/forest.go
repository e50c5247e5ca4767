// Package model implements the valuation artifacts: bagged regression trees
// with ensemble uncertainty, the deterministic heuristic fallback, the
// versioned artifact registry and the exact Shapley attribution core.
package model

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// Artifact is a versioned valuation model. Predict is pure: identical inputs
// always yield identical outputs for the same artifact.
type Artifact interface {
	// Version identifies the trained artifact.
	Version() string
	// Predict returns the value estimate and its uncertainty for an ordered
	// feature vector.
	Predict(features []float64) (value, uncertainty float64, err error)
}

type node struct {
	feature   int // split feature index, -1 marks a leaf
	threshold float64
	left      int
	right     int
	value     float64 // leaf prediction
}

type tree struct {
	nodes []node
}

func (t tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.feature < 0 {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Forest is a bagged ensemble of regression trees. The point estimate is the
// mean of the per-tree predictions and the uncertainty their standard
// deviation scaled by the calibration factor.
type Forest struct {
	trees       []tree
	inputDim    int
	calibration float64
	version     string
	samples     int
}

// Version identifies the trained artifact.
func (f *Forest) Version() string { return f.version }

// Trees returns the ensemble size.
func (f *Forest) Trees() int { return len(f.trees) }

// Samples returns the training set size the forest was fitted on.
func (f *Forest) Samples() int { return f.samples }

// InputDim returns the expected feature vector length.
func (f *Forest) InputDim() int { return f.inputDim }

// Predict returns the ensemble mean and calibrated ensemble spread.
func (f *Forest) Predict(features []float64) (float64, float64, error) {
	if len(features) != f.inputDim {
		return 0, 0, domain.NewComputation("predict",
			fmt.Sprintf("input has %d features, model expects %d", len(features), f.inputDim))
	}
	preds := make([]float64, len(f.trees))
	var sum float64
	for i, t := range f.trees {
		preds[i] = t.predict(features)
		sum += preds[i]
	}
	mean := sum / float64(len(f.trees))
	var ss float64
	for _, p := range preds {
		d := p - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(f.trees)))
	return mean, std * f.calibration, nil
}
