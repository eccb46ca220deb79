package learning

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
)

// rowsOf returns the rows of X. Rows of a *mat.Dense are views into its backing data and must not be modified.
func rowsOf(X mat.Matrix) [][]float64 {
	n, d := X.Dims()
	rows := make([][]float64, n)
	if dense, ok := X.(*mat.Dense); ok {
		for i := range rows {
			rows[i] = dense.RawRowView(i)
		}
		return rows
	}
	for i := range rows {
		rows[i] = make([]float64, d)
		mat.Row(rows[i], i, X)
	}
	return rows
}

// normalizeRows rescales each row of p to sum to one. Rows summing to zero (or to something non-finite) become
// uniform.
func normalizeRows(p *mat.Dense) {
	n, k := p.Dims()
	for i := 0; i < n; i++ {
		row := p.RawRowView(i)
		s := floats.Sum(row)
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			for j := range row {
				row[j] = 1 / float64(k)
			}
			continue
		}
		floats.Scale(1/s, row)
	}
}

// counts returns the number of rows of each class.
func counts(y []int, nClasses int) []float64 {
	c := make([]float64, nClasses)
	for _, v := range y {
		c[v]++
	}
	return c
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softmax converts the scores in z into probabilities in place.
func softmax(z []float64) {
	m := floats.Max(z)
	var s float64
	for i, v := range z {
		z[i] = math.Exp(v - m)
		s += z[i]
	}
	floats.Scale(1/s, z)
}
