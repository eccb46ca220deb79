package learning

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"math"
)

// StandardScaler centres each feature on its training mean and divides by its training standard deviation.
// Constant features are only centred.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit learns the per-feature mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) {
	n, d := X.Dims()
	s.Mean = make([]float64, d)
	s.Scale = make([]float64, d)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		mean := stat.Mean(col, nil)
		std := math.Sqrt(stat.Moment(2, col, nil))
		s.Mean[j] = mean
		s.Scale[j] = std
		if std == 0 || math.IsNaN(std) {
			s.Scale[j] = 1
		}
	}
}

// Transform returns the scaled rows of X.
func (s *StandardScaler) Transform(X mat.Matrix) [][]float64 {
	rows := rowsOf(X)
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = (v - s.Mean[j]) / s.Scale[j]
		}
	}
	return out
}
