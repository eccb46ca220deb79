package learning

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math/rand"
)

// ForestParams are the hyperparameters of a random forest or of extremely randomised trees.
type ForestParams struct {
	NEstimators     int    `mapstructure:"n_estimators"`
	Criterion       string `mapstructure:"criterion"`
	MaxDepth        int    `mapstructure:"max_depth"`
	MinSamplesSplit int    `mapstructure:"min_samples_split"`
	MaxFeatures     string `mapstructure:"max_features"`
}

func defaultForestParams() ForestParams {
	return ForestParams{
		NEstimators:     10,
		Criterion:       "gini",
		MinSamplesSplit: 2,
		MaxFeatures:     "sqrt",
	}
}

// RandomForest averages the class distributions of many decision trees. A random forest grows each tree on a
// bootstrap sample with exhaustive split search; extremely randomised trees use every row and draw split thresholds
// at random.
type RandomForest struct {
	Params ForestParams
	Seed   int64
	// Bootstrap resamples the training rows for each tree.
	Bootstrap bool
	// Random draws split thresholds at random.
	Random   bool
	NClasses int
	Trees    []*Node
}

// NewRandomForest creates an unfitted random forest.
func NewRandomForest(p ForestParams, seed int64) *RandomForest {
	return &RandomForest{Params: p, Seed: seed, Bootstrap: true}
}

// NewExtraTrees creates an unfitted ensemble of extremely randomised trees.
func NewExtraTrees(p ForestParams, seed int64) *RandomForest {
	return &RandomForest{Params: p, Seed: seed, Random: true}
}

func (f *RandomForest) Fit(X mat.Matrix, y []int, nClasses int) error {
	tp := TreeParams{
		Criterion:       f.Params.Criterion,
		MaxDepth:        f.Params.MaxDepth,
		MinSamplesSplit: f.Params.MinSamplesSplit,
		MinSamplesLeaf:  1,
		MaxFeatures:     f.Params.MaxFeatures,
	}
	if err := tp.validate(); err != nil {
		return err
	}
	if f.Params.NEstimators < 1 {
		return errors.Errorf("n_estimators must be positive, got %d", f.Params.NEstimators)
	}
	rows := rowsOf(X)
	if len(rows) == 0 || len(rows) != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", len(rows), len(y))
	}

	rng := rand.New(rand.NewSource(f.Seed))
	proto := DecisionTree{Params: tp}
	f.NClasses = nClasses
	f.Trees = make([]*Node, f.Params.NEstimators)
	for t := range f.Trees {
		idx := make([]int, len(rows))
		for i := range idx {
			if f.Bootstrap {
				idx[i] = rng.Intn(len(rows))
			} else {
				idx[i] = i
			}
		}
		b := proto.builder(rows, y, nClasses, rand.New(rand.NewSource(rng.Int63())))
		b.random = f.Random
		f.Trees[t] = b.build(idx)
	}
	return nil
}

func (f *RandomForest) PredictProba(X mat.Matrix) *mat.Dense {
	rows := rowsOf(X)
	p := mat.NewDense(len(rows), f.NClasses, nil)
	for i, row := range rows {
		out := p.RawRowView(i)
		for _, tree := range f.Trees {
			for c, v := range tree.find(row).Value {
				out[c] += v
			}
		}
	}
	normalizeRows(p)
	return p
}
