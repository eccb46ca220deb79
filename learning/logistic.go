package learning

import (
	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is a multinomial logistic regression with an L2 penalty of strength 1/C, trained by full batch
// gradient descent.
type LogisticRegression struct {
	C            float64
	LearningRate float64
	MaxIter      int
	// Weights holds one row per class with the intercept as its final element.
	Weights [][]float64
}

// Fit trains over the given rows, whose class indices lie in [0, nClasses).
func (l *LogisticRegression) Fit(rows [][]float64, y []int, nClasses int) {
	n, d := len(rows), len(rows[0])
	l.Weights = make([][]float64, nClasses)
	grad := make([][]float64, nClasses)
	for c := range l.Weights {
		l.Weights[c] = make([]float64, d+1)
		grad[c] = make([]float64, d+1)
	}
	lambda := 1 / (l.C * float64(n))
	p := make([]float64, nClasses)

	for it := 0; it < l.MaxIter; it++ {
		for c := range grad {
			for j := range grad[c] {
				grad[c][j] = 0
			}
		}
		for i, x := range rows {
			l.scores(x, p)
			softmax(p)
			for c := range p {
				e := p[c]
				if y[i] == c {
					e--
				}
				floats.AddScaled(grad[c][:d], e, x)
				grad[c][d] += e
			}
		}
		for c, w := range l.Weights {
			floats.Scale(1/float64(n), grad[c])
			floats.AddScaled(grad[c][:d], lambda, w[:d])
			floats.AddScaled(w, -l.LearningRate, grad[c])
		}
	}
}

func (l *LogisticRegression) scores(x []float64, out []float64) {
	for c, w := range l.Weights {
		d := len(w) - 1
		out[c] = floats.Dot(w[:d], x) + w[d]
	}
}

// Proba writes the class probabilities of x into out.
func (l *LogisticRegression) Proba(x []float64, out []float64) {
	l.scores(x, out)
	softmax(out)
}
