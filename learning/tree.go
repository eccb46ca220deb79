package learning

import (
	"gonum.org/v1/gonum/floats"
	"math"
	"math/rand"
	"sort"
)

// Node is a node of a binary decision tree. Internal nodes send rows with x[Feature] <= Threshold to Left and all
// other rows to Right. Leaves carry a class distribution, or a single value for regression trees.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
	Value     []float64
}

// find returns the leaf that x falls into.
func (n *Node) find(x []float64) *Node {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n
}

// depth is the length of the longest path from n to a leaf.
func (n *Node) depth() int {
	if n.Leaf {
		return 0
	}
	l, r := n.Left.depth(), n.Right.depth()
	if l > r {
		return l + 1
	}
	return r + 1
}

type criterion int

const (
	giniCriterion criterion = iota
	entropyCriterion
	mseCriterion
)

func criterionOf(name string) criterion {
	if name == "entropy" {
		return entropyCriterion
	}
	return giniCriterion
}

// Entropy is the Shannon entropy (in bits) of a vector of class counts.
func Entropy(c []float64) float64 {
	n := floats.Sum(c)
	if n == 0 {
		return 0
	}
	var h float64
	for _, v := range c {
		if v > 0 {
			p := v / n
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Gini is the Gini impurity of a vector of class counts.
func Gini(c []float64) float64 {
	n := floats.Sum(c)
	if n == 0 {
		return 0
	}
	g := 1.0
	for _, v := range c {
		p := v / n
		g -= p * p
	}
	return g
}

// maxFeaturesOf resolves a max_features setting against the number of features.
func maxFeaturesOf(name string, d int) int {
	var m int
	switch name {
	case "sqrt":
		m = int(math.Sqrt(float64(d)))
	case "log2":
		m = int(math.Log2(float64(d)))
	default:
		m = d
	}
	if m < 1 {
		m = 1
	}
	if m > d {
		m = d
	}
	return m
}

// treeBuilder grows CART trees. Classification trees split on class counts of y; regression trees (mseCriterion)
// split on the variance of target.
type treeBuilder struct {
	rows     [][]float64
	y        []int
	target   []float64
	nClasses int

	criterion       criterion
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
	// random draws one threshold per feature uniformly between the feature's extremes, as in extremely randomised
	// trees, instead of searching every threshold.
	random bool
	rng    *rand.Rand

	// leafValue overrides the value stored in regression leaves.
	leafValue func(idx []int) []float64
}

// stats accumulates what a criterion needs to score a set of rows.
type stats struct {
	counts     []float64
	sum, sumSq float64
	n          float64
}

func (b *treeBuilder) newStats() stats {
	if b.criterion == mseCriterion {
		return stats{}
	}
	return stats{counts: make([]float64, b.nClasses)}
}

func (b *treeBuilder) add(s *stats, i int, sign float64) {
	s.n += sign
	if b.criterion == mseCriterion {
		t := b.target[i]
		s.sum += sign * t
		s.sumSq += sign * t * t
		return
	}
	s.counts[b.y[i]] += sign
}

func (b *treeBuilder) impurity(s stats) float64 {
	switch b.criterion {
	case mseCriterion:
		if s.n == 0 {
			return 0
		}
		m := s.sum / s.n
		v := s.sumSq/s.n - m*m
		if v < 0 {
			return 0
		}
		return v
	case entropyCriterion:
		return Entropy(s.counts)
	default:
		return Gini(s.counts)
	}
}

func (s stats) clone() stats {
	c := s
	if s.counts != nil {
		c.counts = make([]float64, len(s.counts))
		copy(c.counts, s.counts)
	}
	return c
}

func (b *treeBuilder) leaf(idx []int, s stats) *Node {
	if b.criterion == mseCriterion {
		if b.leafValue != nil {
			return &Node{Leaf: true, Value: b.leafValue(idx)}
		}
		return &Node{Leaf: true, Value: []float64{s.sum / s.n}}
	}
	v := make([]float64, b.nClasses)
	copy(v, s.counts)
	floats.Scale(1/s.n, v)
	return &Node{Leaf: true, Value: v}
}

// build grows a tree over the rows in idx.
func (b *treeBuilder) build(idx []int) *Node {
	return b.grow(idx, 0)
}

func (b *treeBuilder) grow(idx []int, depth int) *Node {
	s := b.newStats()
	for _, i := range idx {
		b.add(&s, i, 1)
	}
	parent := b.impurity(s)

	if (b.maxDepth > 0 && depth >= b.maxDepth) ||
		len(idx) < b.minSamplesSplit ||
		len(idx) < 2*b.minSamplesLeaf ||
		parent <= 1e-12 {
		return b.leaf(idx, s)
	}

	feature, threshold, ok := b.bestSplit(idx, s)
	if !ok {
		return b.leaf(idx, s)
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return b.leaf(idx, s)
	}

	return &Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      b.grow(left, depth+1),
		Right:     b.grow(right, depth+1),
	}
}

// bestSplit searches at least maxFeatures non-constant features, in random order, for the split with the lowest
// weighted impurity.
func (b *treeBuilder) bestSplit(idx []int, total stats) (int, float64, bool) {
	d := len(b.rows[0])
	var (
		bestFeature   int
		bestThreshold float64
		bestScore     = math.Inf(1)
		found         bool
		visited       int
	)

	for _, f := range b.rng.Perm(d) {
		if visited >= b.maxFeatures {
			break
		}
		var (
			threshold float64
			score     float64
			ok        bool
			constant  bool
		)
		if b.random {
			threshold, score, ok, constant = b.randomSplit(idx, f, total)
		} else {
			threshold, score, ok, constant = b.exactSplit(idx, f, total)
		}
		if constant {
			continue
		}
		visited++
		if ok && score < bestScore {
			bestFeature, bestThreshold, bestScore, found = f, threshold, score, true
		}
	}
	return bestFeature, bestThreshold, found
}

func (b *treeBuilder) exactSplit(idx []int, f int, total stats) (float64, float64, bool, bool) {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Slice(sorted, func(i, j int) bool {
		return b.rows[sorted[i]][f] < b.rows[sorted[j]][f]
	})
	if b.rows[sorted[0]][f] == b.rows[sorted[len(sorted)-1]][f] {
		return 0, 0, false, true
	}

	var (
		left          = b.newStats()
		right         = total.clone()
		n             = float64(len(idx))
		bestScore     = math.Inf(1)
		bestThreshold float64
		ok            bool
	)
	for k := 0; k < len(sorted)-1; k++ {
		i := sorted[k]
		b.add(&left, i, 1)
		b.add(&right, i, -1)

		v, next := b.rows[i][f], b.rows[sorted[k+1]][f]
		if v == next {
			continue
		}
		if int(left.n) < b.minSamplesLeaf || int(right.n) < b.minSamplesLeaf {
			continue
		}
		score := (left.n*b.impurity(left) + right.n*b.impurity(right)) / n
		if score < bestScore {
			bestScore = score
			bestThreshold = v + (next-v)/2
			if bestThreshold == next {
				bestThreshold = v
			}
			ok = true
		}
	}
	return bestThreshold, bestScore, ok, false
}

func (b *treeBuilder) randomSplit(idx []int, f int, total stats) (float64, float64, bool, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		v := b.rows[i][f]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return 0, 0, false, true
	}

	threshold := lo + b.rng.Float64()*(hi-lo)
	if threshold >= hi {
		threshold = lo
	}
	left, right := b.newStats(), b.newStats()
	for _, i := range idx {
		if b.rows[i][f] <= threshold {
			b.add(&left, i, 1)
		} else {
			b.add(&right, i, 1)
		}
	}
	if int(left.n) < b.minSamplesLeaf || int(right.n) < b.minSamplesLeaf {
		return 0, 0, false, false
	}
	return threshold, (left.n*b.impurity(left) + right.n*b.impurity(right)) / total.n, true, false
}
