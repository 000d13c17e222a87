// Package isolation implements a seeded isolation forest for multivariate
// outlier scoring.
//
// Each tree is grown on a random subsample by recursively picking a random
// feature and a uniform split value between the node's minimum and maximum
// for that feature. Points that are isolated after few splits are unusual;
// the anomaly score is s = 2^(-E[h(x)] / c(psi)) where E[h(x)] is the mean
// path length over all trees and c(psi) the expected path length of an
// unsuccessful binary search tree lookup over psi points. Scores close to 1
// indicate outliers, scores well below 0.5 indicate inliers.
package isolation

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

// eulerGamma is the Euler–Mascheroni constant used in the harmonic number approximation
const eulerGamma = 0.5772156649

// seedStream is the fixed second PCG word; only Config.Seed varies between runs
const seedStream = 0x9e3779b97f4a7c15

// Default forest parameters
const (
	DefaultTrees         = 100
	DefaultSampleSize    = 256
	DefaultContamination = 0.1
	DefaultSeed          = 42
)

var (
	// ErrTooFewSamples is returned when fewer than two rows are supplied
	ErrTooFewSamples = errors.New("isolation: at least two samples are required")

	// ErrInvalidShape is returned for empty or ragged feature rows
	ErrInvalidShape = errors.New("isolation: rows must share a non-zero feature count")

	// ErrInvalidContamination is returned when contamination is outside (0, 0.5]
	ErrInvalidContamination = errors.New("isolation: contamination must be in (0, 0.5]")
)

// Config controls forest construction. Zero values select the defaults.
type Config struct {
	Trees         int     // number of isolation trees
	SampleSize    int     // rows per tree, capped at the dataset size
	Contamination float64 // expected share of outliers, used by Detect
	Seed          uint64  // RNG seed; identical seeds give identical forests
}

// DefaultConfig returns the default forest configuration
func DefaultConfig() Config {
	return Config{
		Trees:         DefaultTrees,
		SampleSize:    DefaultSampleSize,
		Contamination: DefaultContamination,
		Seed:          DefaultSeed,
	}
}

func (c Config) withDefaults() Config {
	if c.Trees <= 0 {
		c.Trees = DefaultTrees
	}
	if c.SampleSize <= 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.Contamination == 0 {
		c.Contamination = DefaultContamination
	}
	return c
}

// node is either an internal split or a leaf holding the number of
// subsample rows that reached it.
type node struct {
	feature int
	split   float64
	left    *node
	right   *node
	size    int
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

// Forest is a fitted isolation forest
type Forest struct {
	trees      []*node
	sampleSize int
	dims       int
}

// Fit grows an isolation forest over data, one row per observation
func Fit(data [][]float64, cfg Config) (*Forest, error) {
	cfg = cfg.withDefaults()

	n := len(data)
	if n < 2 {
		return nil, ErrTooFewSamples
	}
	dims := len(data[0])
	if dims == 0 {
		return nil, ErrInvalidShape
	}
	for i := range data {
		if len(data[i]) != dims {
			return nil, fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalidShape, i, len(data[i]), dims)
		}
	}

	psi := min(cfg.SampleSize, n)
	maxDepth := int(math.Ceil(math.Log2(float64(psi))))
	rng := rand.New(rand.NewPCG(cfg.Seed, seedStream))

	f := &Forest{
		trees:      make([]*node, cfg.Trees),
		sampleSize: psi,
		dims:       dims,
	}
	for t := range f.trees {
		sample := rng.Perm(n)[:psi]
		f.trees[t] = grow(data, sample, 0, maxDepth, rng)
	}

	return f, nil
}

// featureRange is a candidate split feature with its bounds inside a node
type featureRange struct {
	feature int
	lo, hi  float64
}

// grow recursively partitions idx until isolation or the depth limit
func grow(data [][]float64, idx []int, depth, maxDepth int, rng *rand.Rand) *node {
	if depth >= maxDepth || len(idx) <= 1 {
		return &node{size: len(idx)}
	}

	// Only features that vary inside the node can split it
	dims := len(data[idx[0]])
	candidates := make([]featureRange, 0, dims)
	for feature := range dims {
		lo, hi := data[idx[0]][feature], data[idx[0]][feature]
		for _, i := range idx[1:] {
			v := data[i][feature]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi > lo {
			candidates = append(candidates, featureRange{feature: feature, lo: lo, hi: hi})
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(idx)}
	}

	c := candidates[rng.IntN(len(candidates))]
	split := c.lo + rng.Float64()*(c.hi-c.lo)

	// In-place partition: [0, mid) goes left
	mid := 0
	for i := range idx {
		if data[idx[i]][c.feature] < split {
			idx[i], idx[mid] = idx[mid], idx[i]
			mid++
		}
	}

	return &node{
		feature: c.feature,
		split:   split,
		left:    grow(data, idx[:mid], depth+1, maxDepth, rng),
		right:   grow(data, idx[mid:], depth+1, maxDepth, rng),
	}
}

// pathLength returns the adjusted isolation depth of x in one tree
func pathLength(x []float64, n *node) float64 {
	depth := 0.0
	for !n.isLeaf() {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return depth + AveragePathLength(n.size)
}

// Score returns the anomaly score of x in (0, 1]
func (f *Forest) Score(x []float64) float64 {
	if len(x) != f.dims {
		return math.NaN()
	}
	total := 0.0
	for _, tree := range f.trees {
		total += pathLength(x, tree)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/AveragePathLength(f.sampleSize))
}

// Scores returns the anomaly score of every row
func (f *Forest) Scores(data [][]float64) []float64 {
	scores := make([]float64, len(data))
	for i := range data {
		scores[i] = f.Score(data[i])
	}
	return scores
}

// AveragePathLength is c(n), the mean path length of an unsuccessful
// search in a binary search tree built from n points.
func AveragePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}

// Percentile returns the q-quantile (0..1) of values using linear
// interpolation between closest ranks. Empty input yields NaN.
func Percentile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	q = math.Max(0, math.Min(1, q))
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// Result is the outcome of Detect
type Result struct {
	Scores    []float64
	Threshold float64
	Outliers  []bool
}

// Detect fits a forest on data and flags rows whose score exceeds the
// (1 - contamination) percentile of all scores.
func Detect(data [][]float64, cfg Config) (Result, error) {
	cfg = cfg.withDefaults()
	if cfg.Contamination <= 0 || cfg.Contamination > 0.5 {
		return Result{}, ErrInvalidContamination
	}

	forest, err := Fit(data, cfg)
	if err != nil {
		return Result{}, err
	}

	scores := forest.Scores(data)
	threshold := Percentile(scores, 1-cfg.Contamination)
	outliers := make([]bool, len(scores))
	for i, s := range scores {
		outliers[i] = s > threshold
	}

	return Result{Scores: scores, Threshold: threshold, Outliers: outliers}, nil
}
