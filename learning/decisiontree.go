package learning

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math/rand"
)

// TreeParams are the hyperparameters of a single decision tree.
type TreeParams struct {
	// Criterion is either gini or entropy.
	Criterion string `mapstructure:"criterion"`
	// MaxDepth of zero grows the tree until its leaves are pure.
	MaxDepth        int `mapstructure:"max_depth"`
	MinSamplesSplit int `mapstructure:"min_samples_split"`
	MinSamplesLeaf  int `mapstructure:"min_samples_leaf"`
	// MaxFeatures is one of all, sqrt or log2.
	MaxFeatures string `mapstructure:"max_features"`
}

func defaultTreeParams() TreeParams {
	return TreeParams{
		Criterion:       "gini",
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxFeatures:     "all",
	}
}

func (p TreeParams) validate() error {
	if p.Criterion != "gini" && p.Criterion != "entropy" {
		return errors.Errorf("unknown criterion %q", p.Criterion)
	}
	switch p.MaxFeatures {
	case "all", "sqrt", "log2":
	default:
		return errors.Errorf("unknown max_features %q", p.MaxFeatures)
	}
	if p.MaxDepth < 0 || p.MinSamplesSplit < 1 || p.MinSamplesLeaf < 1 {
		return errors.New("tree size limits must be positive")
	}
	return nil
}

// DecisionTree is a CART classification tree.
type DecisionTree struct {
	Params   TreeParams
	Seed     int64
	NClasses int
	Root     *Node
}

// NewDecisionTree creates an unfitted decision tree.
func NewDecisionTree(p TreeParams, seed int64) *DecisionTree {
	return &DecisionTree{Params: p, Seed: seed}
}

func (t *DecisionTree) builder(rows [][]float64, y []int, nClasses int, rng *rand.Rand) *treeBuilder {
	return &treeBuilder{
		rows:            rows,
		y:               y,
		nClasses:        nClasses,
		criterion:       criterionOf(t.Params.Criterion),
		maxDepth:        t.Params.MaxDepth,
		minSamplesSplit: t.Params.MinSamplesSplit,
		minSamplesLeaf:  t.Params.MinSamplesLeaf,
		maxFeatures:     maxFeaturesOf(t.Params.MaxFeatures, len(rows[0])),
		rng:             rng,
	}
}

func (t *DecisionTree) Fit(X mat.Matrix, y []int, nClasses int) error {
	if err := t.Params.validate(); err != nil {
		return err
	}
	rows := rowsOf(X)
	if len(rows) == 0 || len(rows) != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", len(rows), len(y))
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	t.NClasses = nClasses
	t.Root = t.builder(rows, y, nClasses, rand.New(rand.NewSource(t.Seed))).build(idx)
	return nil
}

func (t *DecisionTree) PredictProba(X mat.Matrix) *mat.Dense {
	rows := rowsOf(X)
	p := mat.NewDense(len(rows), t.NClasses, nil)
	for i, row := range rows {
		p.SetRow(i, t.Root.find(row).Value)
	}
	return p
}

// Depth of the fitted tree.
func (t *DecisionTree) Depth() int {
	return t.Root.depth()
}
