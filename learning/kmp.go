package learning

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math/rand"
)

// KMPParams are the hyperparameters of the KMeans to logistic regression pipeline.
type KMPParams struct {
	NClusters int     `mapstructure:"n_clusters"`
	C         float64 `mapstructure:"C"`
	MaxIter   int     `mapstructure:"max_iter"`
}

func defaultKMPParams() KMPParams {
	return KMPParams{
		NClusters: 8,
		C:         1,
		MaxIter:   200,
	}
}

// KMeansLogistic standardises its input, clusters it, and classifies rows by a logistic regression over their
// (standardised) distances to each cluster centroid.
type KMeansLogistic struct {
	Params    KMPParams
	Seed      int64
	NClasses  int
	Scaler    StandardScaler
	Clusters  KMeans
	Distances StandardScaler
	Logistic  LogisticRegression
}

// NewKMeansLogistic creates an unfitted pipeline.
func NewKMeansLogistic(p KMPParams, seed int64) *KMeansLogistic {
	return &KMeansLogistic{Params: p, Seed: seed}
}

func (k *KMeansLogistic) features(X mat.Matrix) [][]float64 {
	d := k.Clusters.Transform(k.Scaler.Transform(X))
	return k.Distances.Transform(mat.NewDense(len(d), len(d[0]), flatten(d)))
}

func flatten(rows [][]float64) []float64 {
	var data []float64
	for _, r := range rows {
		data = append(data, r...)
	}
	return data
}

func (k *KMeansLogistic) Fit(X mat.Matrix, y []int, nClasses int) error {
	p := k.Params
	if p.NClusters < 1 || p.C <= 0 || p.MaxIter < 1 {
		return errors.Errorf("invalid kmp parameters %+v", p)
	}
	n, _ := X.Dims()
	if n == 0 || n != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", n, len(y))
	}

	rng := rand.New(rand.NewSource(k.Seed))
	k.NClasses = nClasses
	k.Scaler.Fit(X)
	k.Clusters = KMeans{K: p.NClusters, MaxIter: 100}
	k.Clusters.Fit(k.Scaler.Transform(X), rng)

	d := k.Clusters.Transform(k.Scaler.Transform(X))
	k.Distances.Fit(mat.NewDense(len(d), len(d[0]), flatten(d)))

	k.Logistic = LogisticRegression{C: p.C, LearningRate: 0.5, MaxIter: p.MaxIter}
	k.Logistic.Fit(k.features(X), y, nClasses)
	return nil
}

func (k *KMeansLogistic) PredictProba(X mat.Matrix) *mat.Dense {
	rows := k.features(X)
	p := mat.NewDense(len(rows), k.NClasses, nil)
	for i, row := range rows {
		k.Logistic.Proba(row, p.RawRowView(i))
	}
	return p
}
