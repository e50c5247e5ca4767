package model

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/kailas-cloud/propdex/internal/domain"
)

// MinTrainSamples is the smallest real data set worth fitting on; below it
// callers fall back to the synthetic population.
const MinTrainSamples = 50

// TrainConfig holds the forest hyperparameters. The seed fixes every source
// of training randomness, so training is reproducible.
type TrainConfig struct {
	Trees       int
	MaxDepth    int
	MinLeaf     int
	Seed        int64
	Calibration float64
	Version     string
}

// DefaultTrainConfig returns the production hyperparameters for a version.
func DefaultTrainConfig(version string) TrainConfig {
	return TrainConfig{
		Trees:       100,
		MaxDepth:    10,
		MinLeaf:     2,
		Seed:        42,
		Calibration: 1.0,
		Version:     version,
	}
}

// TrainForest fits a bagged regression forest. Each tree is grown on a
// bootstrap resample with variance-reduction splits over a random subset of
// ceil(dim/3) features per node.
func TrainForest(cfg TrainConfig, samples [][]float64, targets []float64) (*Forest, error) {
	if cfg.Trees <= 0 || cfg.MaxDepth <= 0 || cfg.MinLeaf <= 0 {
		return nil, domain.NewComputation("train", "non-positive hyperparameter")
	}
	if cfg.Version == "" {
		return nil, domain.NewComputation("train", "empty model version")
	}
	if cfg.Calibration <= 0 {
		cfg.Calibration = 1.0
	}
	n := len(samples)
	if n != len(targets) {
		return nil, domain.NewComputation("train",
			fmt.Sprintf("%d samples but %d targets", n, len(targets)))
	}
	if n < 2*cfg.MinLeaf {
		return nil, domain.NewComputation("train", fmt.Sprintf("too few samples: %d", n))
	}
	dim := len(samples[0])
	if dim == 0 {
		return nil, domain.NewComputation("train", "zero-dimensional samples")
	}
	for i, s := range samples {
		if len(s) != dim {
			return nil, domain.NewComputation("train",
				fmt.Sprintf("sample %d has %d features, want %d", i, len(s), dim))
		}
	}

	tr := &trainer{
		cfg:     cfg,
		samples: samples,
		targets: targets,
		dim:     dim,
		split:   (dim + 2) / 3,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	trees := make([]tree, cfg.Trees)
	for i := range trees {
		trees[i] = tr.growTree()
	}
	return &Forest{
		trees:       trees,
		inputDim:    dim,
		calibration: cfg.Calibration,
		version:     cfg.Version,
		samples:     n,
	}, nil
}

type trainer struct {
	cfg     TrainConfig
	samples [][]float64
	targets []float64
	dim     int
	split   int // features considered per split
	rng     *rand.Rand
	nodes   []node
}

func (tr *trainer) growTree() tree {
	n := len(tr.samples)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = tr.rng.Intn(n)
	}
	tr.nodes = tr.nodes[:0]
	tr.buildNode(idx, 0)
	out := make([]node, len(tr.nodes))
	copy(out, tr.nodes)
	return tree{nodes: out}
}

// buildNode appends the subtree for idx and returns its root position.
func (tr *trainer) buildNode(idx []int, depth int) int {
	mean, sse := tr.meanSSE(idx)
	pos := len(tr.nodes)
	tr.nodes = append(tr.nodes, node{feature: -1, value: mean})

	if depth >= tr.cfg.MaxDepth || len(idx) < 2*tr.cfg.MinLeaf || sse <= 1e-12 {
		return pos
	}
	feat, threshold, ok := tr.bestSplit(idx, sse)
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if tr.samples[i][feat] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	tr.nodes[pos].feature = feat
	tr.nodes[pos].threshold = threshold
	l := tr.buildNode(left, depth+1)
	r := tr.buildNode(right, depth+1)
	tr.nodes[pos].left = l
	tr.nodes[pos].right = r
	return pos
}

func (tr *trainer) meanSSE(idx []int) (float64, float64) {
	var sum float64
	for _, i := range idx {
		sum += tr.targets[i]
	}
	mean := sum / float64(len(idx))
	var sse float64
	for _, i := range idx {
		d := tr.targets[i] - mean
		sse += d * d
	}
	return mean, sse
}

// bestSplit scans a random feature subset for the split minimizing the
// children's summed squared error. Candidate thresholds are midpoints
// between adjacent distinct values.
func (tr *trainer) bestSplit(idx []int, parentSSE float64) (int, float64, bool) {
	bestScore := parentSSE
	bestFeat, bestThreshold := -1, 0.0
	order := make([]int, len(idx))

	for _, feat := range tr.rng.Perm(tr.dim)[:tr.split] {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return tr.samples[order[a]][feat] < tr.samples[order[b]][feat]
		})

		var sumL, ssqL float64
		var sumR, ssqR float64
		for _, i := range order {
			sumR += tr.targets[i]
			ssqR += tr.targets[i] * tr.targets[i]
		}

		n := len(order)
		for s := 1; s < n; s++ {
			y := tr.targets[order[s-1]]
			sumL += y
			ssqL += y * y
			sumR -= y
			ssqR -= y * y
			if s < tr.cfg.MinLeaf || n-s < tr.cfg.MinLeaf {
				continue
			}
			lo := tr.samples[order[s-1]][feat]
			hi := tr.samples[order[s]][feat]
			if lo == hi {
				continue
			}
			// SSE = sum(y^2) - n*mean^2 per side.
			score := ssqL - sumL*sumL/float64(s) + ssqR - sumR*sumR/float64(n-s)
			if score < bestScore {
				bestScore = score
				bestFeat = feat
				bestThreshold = (lo + hi) / 2
			}
		}
	}
	if bestFeat < 0 {
		return 0, 0, false
	}
	return bestFeat, bestThreshold, true
}
