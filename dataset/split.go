package dataset

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math"
	"math/rand"
)

// Split is a train/test partition of a dataset.
type Split struct {
	XTrain, XTest *mat.Dense
	YTrain, YTest []float64
}

// TrainTestSplit randomly partitions X and y, placing ceil(testSize*n) rows in the test set. Both partitions are
// clamped to contain at least one row, so that tiny datasets with a large test fraction still leave something to
// train on.
func TrainTestSplit(X mat.Matrix, y []float64, testSize float64, rng *rand.Rand) (Split, error) {
	n, _ := X.Dims()
	if n != len(y) {
		return Split{}, errors.Errorf("%d rows but %d labels", n, len(y))
	}
	if testSize <= 0 || testSize >= 1 {
		return Split{}, errors.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	if n < 2 {
		return Split{}, errors.Errorf("cannot split %d samples", n)
	}

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	if nTest < 1 {
		nTest = 1
	}

	perm := rng.Perm(n)
	test, train := perm[:nTest], perm[nTest:]
	return Split{
		XTrain: Rows(X, train),
		XTest:  Rows(X, test),
		YTrain: Labels(y, train),
		YTest:  Labels(y, test),
	}, nil
}

// Rows copies the rows of X at idx into a new matrix. idx must not be empty.
func Rows(X mat.Matrix, idx []int) *mat.Dense {
	_, d := X.Dims()
	m := mat.NewDense(len(idx), d, nil)
	for i, r := range idx {
		for j := 0; j < d; j++ {
			m.Set(i, j, X.At(r, j))
		}
	}
	return m
}

// Labels selects the entries of y at idx.
func Labels(y []float64, idx []int) []float64 {
	l := make([]float64, len(idx))
	for i, r := range idx {
		l[i] = y[r]
	}
	return l
}

// Classes selects the entries of y at idx.
func Classes(y []int, idx []int) []int {
	l := make([]int, len(idx))
	for i, r := range idx {
		l[i] = y[r]
	}
	return l
}
