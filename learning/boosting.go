package learning

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math"
	"math/rand"
)

// BoostingParams are the hyperparameters of gradient boosting.
type BoostingParams struct {
	NEstimators     int     `mapstructure:"n_estimators"`
	LearningRate    float64 `mapstructure:"learning_rate"`
	MaxDepth        int     `mapstructure:"max_depth"`
	Subsample       float64 `mapstructure:"subsample"`
	MinSamplesSplit int     `mapstructure:"min_samples_split"`
}

func defaultBoostingParams() BoostingParams {
	return BoostingParams{
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		Subsample:       1,
		MinSamplesSplit: 2,
	}
}

// GradientBoosting fits an additive model of regression trees to the multinomial deviance. Each stage grows one
// tree per class on the residuals of the current softmax probabilities and sets each leaf with a single Newton step.
type GradientBoosting struct {
	Params   BoostingParams
	Seed     int64
	NClasses int
	// Prior holds the initial log-odds of each class.
	Prior []float64
	// Stages holds one tree per class for every boosting iteration.
	Stages [][]*Node
}

// NewGradientBoosting creates an unfitted gradient boosting classifier.
func NewGradientBoosting(p BoostingParams, seed int64) *GradientBoosting {
	return &GradientBoosting{Params: p, Seed: seed}
}

func (g *GradientBoosting) Fit(X mat.Matrix, y []int, nClasses int) error {
	p := g.Params
	if p.NEstimators < 1 || p.LearningRate <= 0 || p.MaxDepth < 0 || p.MinSamplesSplit < 1 {
		return errors.Errorf("invalid boosting parameters %+v", p)
	}
	if p.Subsample <= 0 || p.Subsample > 1 {
		return errors.Errorf("subsample must be in (0, 1], got %v", p.Subsample)
	}
	rows := rowsOf(X)
	n := len(rows)
	if n == 0 || n != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", n, len(y))
	}

	rng := rand.New(rand.NewSource(g.Seed))
	k := nClasses
	g.NClasses = k
	g.Prior = make([]float64, k)
	for c, v := range counts(y, k) {
		g.Prior[c] = math.Log(math.Max(v/float64(n), 1e-6))
	}
	g.Stages = nil

	F := make([][]float64, n)
	for i := range F {
		F[i] = make([]float64, k)
		copy(F[i], g.Prior)
	}
	P := make([][]float64, n)
	for i := range P {
		P[i] = make([]float64, k)
	}
	residual := make([]float64, n)

	scale := 1.0
	if k > 1 {
		scale = float64(k-1) / float64(k)
	}
	newton := func(idx []int) []float64 {
		var num, den float64
		for _, i := range idx {
			r := residual[i]
			num += r
			den += math.Abs(r) * (1 - math.Abs(r))
		}
		if den < 1e-12 {
			return []float64{0}
		}
		return []float64{scale * num / den}
	}

	sampleSize := int(p.Subsample * float64(n))
	if sampleSize < 1 {
		sampleSize = 1
	}

	for m := 0; m < p.NEstimators; m++ {
		for i := range F {
			copy(P[i], F[i])
			softmax(P[i])
		}

		var sample []int
		if sampleSize < n {
			sample = rng.Perm(n)[:sampleSize]
		} else {
			sample = make([]int, n)
			for i := range sample {
				sample[i] = i
			}
		}

		stage := make([]*Node, k)
		for c := 0; c < k; c++ {
			for i := range residual {
				target := 0.0
				if y[i] == c {
					target = 1
				}
				residual[i] = target - P[i][c]
			}
			b := &treeBuilder{
				rows:            rows,
				target:          residual,
				criterion:       mseCriterion,
				maxDepth:        p.MaxDepth,
				minSamplesSplit: p.MinSamplesSplit,
				minSamplesLeaf:  1,
				maxFeatures:     len(rows[0]),
				rng:             rand.New(rand.NewSource(rng.Int63())),
				leafValue:       newton,
			}
			stage[c] = b.build(sample)
			for i, row := range rows {
				F[i][c] += p.LearningRate * stage[c].find(row).Value[0]
			}
		}
		g.Stages = append(g.Stages, stage)
	}
	return nil
}

func (g *GradientBoosting) PredictProba(X mat.Matrix) *mat.Dense {
	rows := rowsOf(X)
	p := mat.NewDense(len(rows), g.NClasses, nil)
	for i, row := range rows {
		f := p.RawRowView(i)
		copy(f, g.Prior)
		for _, stage := range g.Stages {
			for c, tree := range stage {
				f[c] += g.Params.LearningRate * tree.find(row).Value[0]
			}
		}
		softmax(f)
	}
	return p
}
