package eval

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
	"sort"
	"strings"
)

// Metric names a scoring function used while hillclimbing.
type Metric string

const (
	F1           Metric = "f1"
	AUC          Metric = "auc"
	RMSE         Metric = "rmse"
	Accuracy     Metric = "accuracy"
	CrossEntropy Metric = "xentropy"
)

// Metrics lists the accepted metric names.
var Metrics = []Metric{F1, AUC, RMSE, Accuracy, CrossEntropy}

// UnmarshalText accepts only the names in Metrics.
func (m *Metric) UnmarshalText(b []byte) error {
	for _, v := range Metrics {
		if string(v) == string(b) {
			*m = v
			return nil
		}
	}
	names := make([]string, len(Metrics))
	for i, v := range Metrics {
		names[i] = string(v)
	}
	return errors.Errorf("invalid metric %q (choose from %s)", string(b), strings.Join(names, ", "))
}

// Scorer scores class probabilities against true class indices. Larger scores are always better, so loss based
// measures are negated.
type Scorer interface {
	Score(y []int, proba mat.Matrix) float64
	Name() string
}

type accuracyScorer struct{}
type f1Scorer struct{}
type aucScorer struct{}
type rmseScorer struct{}
type crossEntropyScorer struct{}

var (
	// AccuracyScorer is the fraction of rows whose most probable class is correct.
	AccuracyScorer = accuracyScorer{}
	// F1Scorer is the f-measure of the positive (largest) class for binary problems, and the macro average otherwise.
	F1Scorer = f1Scorer{}
	// AUCScorer is the area under the ROC curve, macro averaged one-vs-rest for more than two classes.
	AUCScorer = aucScorer{}
	// RMSEScorer is the negated root mean squared error between probabilities and one-hot targets.
	RMSEScorer = rmseScorer{}
	// CrossEntropyScorer is the negated mean log loss.
	CrossEntropyScorer = crossEntropyScorer{}
)

var scorers = map[Metric]Scorer{
	Accuracy:     AccuracyScorer,
	F1:           F1Scorer,
	AUC:          AUCScorer,
	RMSE:         RMSEScorer,
	CrossEntropy: CrossEntropyScorer,
}

// ScorerFor returns the scorer for a metric.
func ScorerFor(m Metric) (Scorer, error) {
	if s, ok := scorers[m]; ok {
		return s, nil
	}
	return nil, errors.Errorf("no scorer for metric %q", string(m))
}

// Argmax returns the most probable class of every row. Ties go to the lower class index.
func Argmax(proba mat.Matrix) []int {
	n, k := proba.Dims()
	pred := make([]int, n)
	row := make([]float64, k)
	for i := 0; i < n; i++ {
		mat.Row(row, i, proba)
		pred[i] = floats.MaxIdx(row)
	}
	return pred
}

func (accuracyScorer) Name() string {
	return string(Accuracy)
}

func (accuracyScorer) Score(y []int, proba mat.Matrix) float64 {
	return AccuracyScore(y, Argmax(proba))
}

func (f1Scorer) Name() string {
	return string(F1)
}

func (f1Scorer) Score(y []int, proba mat.Matrix) float64 {
	_, k := proba.Dims()
	pred := Argmax(proba)
	if k == 2 {
		return classScores(y, pred, 1).f1
	}
	var sum float64
	for c := 0; c < k; c++ {
		sum += classScores(y, pred, c).f1
	}
	return sum / float64(k)
}

func (aucScorer) Name() string {
	return string(AUC)
}

func (aucScorer) Score(y []int, proba mat.Matrix) float64 {
	n, k := proba.Dims()
	col := make([]float64, n)
	if k == 2 {
		mat.Col(col, 1, proba)
		return rocAUC(y, col, 1)
	}
	var (
		sum   float64
		count int
	)
	for c := 0; c < k; c++ {
		mat.Col(col, c, proba)
		if v := rocAUC(y, col, c); !math.IsNaN(v) {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	return sum / float64(count)
}

// rocAUC computes the Mann-Whitney statistic of the scores of the positive class, using mid-ranks for ties. It
// returns NaN when either class is absent.
func rocAUC(y []int, score []float64, positive int) float64 {
	n := len(y)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return score[idx[a]] < score[idx[b]]
	})

	var (
		rankSum float64
		nPos    float64
	)
	for i := 0; i < n; {
		j := i
		for j+1 < n && score[idx[j+1]] == score[idx[i]] {
			j++
		}
		rank := float64(i+j)/2 + 1
		for l := i; l <= j; l++ {
			if y[idx[l]] == positive {
				rankSum += rank
				nPos++
			}
		}
		i = j + 1
	}
	nNeg := float64(n) - nPos
	if nPos == 0 || nNeg == 0 {
		return math.NaN()
	}
	return (rankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
}

func (rmseScorer) Name() string {
	return string(RMSE)
}

func (rmseScorer) Score(y []int, proba mat.Matrix) float64 {
	n, k := proba.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		for c := 0; c < k; c++ {
			target := 0.0
			if y[i] == c {
				target = 1
			}
			d := proba.At(i, c) - target
			sum += d * d
		}
	}
	return -math.Sqrt(sum / float64(n*k))
}

func (crossEntropyScorer) Name() string {
	return string(CrossEntropy)
}

func (crossEntropyScorer) Score(y []int, proba mat.Matrix) float64 {
	const eps = 1e-15
	n, _ := proba.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		p := math.Min(math.Max(proba.At(i, y[i]), eps), 1-eps)
		sum += math.Log(p)
	}
	return sum / float64(n)
}
