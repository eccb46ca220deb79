package learning

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"math"
	"math/rand"
)

// SGDParams are the hyperparameters of a linear classifier trained by stochastic gradient descent.
type SGDParams struct {
	// Loss is one of hinge, log or modified_huber.
	Loss string `mapstructure:"loss"`
	// Penalty is one of l2, l1 or elasticnet.
	Penalty string  `mapstructure:"penalty"`
	Alpha   float64 `mapstructure:"alpha"`
	L1Ratio float64 `mapstructure:"l1_ratio"`
	Epochs  int     `mapstructure:"epochs"`
}

func defaultSGDParams() SGDParams {
	return SGDParams{
		Loss:    "hinge",
		Penalty: "l2",
		Alpha:   1e-4,
		L1Ratio: 0.15,
		Epochs:  20,
	}
}

// SGDClassifier is a one-vs-rest linear classifier over standardised features. Probabilities come from the logistic
// function for the log loss, from the clipped margin for the modified Huber loss and from a sigmoid of the margin
// for the hinge loss, and are normalised across classes.
type SGDClassifier struct {
	Params   SGDParams
	Seed     int64
	NClasses int
	Scaler   StandardScaler
	// Weights holds one weight vector per class, with the intercept as its final element.
	Weights [][]float64
}

// NewSGD creates an unfitted SGD classifier.
func NewSGD(p SGDParams, seed int64) *SGDClassifier {
	return &SGDClassifier{Params: p, Seed: seed}
}

// dloss is the derivative of the loss with respect to the margin p for a target t in {-1, 1}.
func (s *SGDClassifier) dloss(p, t float64) float64 {
	z := p * t
	switch s.Params.Loss {
	case "log":
		return -t * sigmoid(-z)
	case "modified_huber":
		switch {
		case z >= 1:
			return 0
		case z >= -1:
			return -2 * t * (1 - z)
		default:
			return -4 * t
		}
	default:
		if z < 1 {
			return -t
		}
		return 0
	}
}

func (s *SGDClassifier) Fit(X mat.Matrix, y []int, nClasses int) error {
	p := s.Params
	switch p.Loss {
	case "hinge", "log", "modified_huber":
	default:
		return errors.Errorf("unknown loss %q", p.Loss)
	}
	switch p.Penalty {
	case "l2", "l1", "elasticnet":
	default:
		return errors.Errorf("unknown penalty %q", p.Penalty)
	}
	if p.Alpha <= 0 || p.Epochs < 1 {
		return errors.Errorf("invalid sgd parameters %+v", p)
	}
	n, _ := X.Dims()
	if n == 0 || n != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", n, len(y))
	}

	s.Scaler.Fit(X)
	rows := s.Scaler.Transform(X)
	d := len(rows[0])

	l2, l1 := p.Alpha, 0.0
	switch p.Penalty {
	case "l1":
		l2, l1 = 0, p.Alpha
	case "elasticnet":
		l2, l1 = p.Alpha*(1-p.L1Ratio), p.Alpha*p.L1Ratio
	}

	rng := rand.New(rand.NewSource(s.Seed))
	s.NClasses = nClasses
	s.Weights = make([][]float64, nClasses)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for c := range s.Weights {
		w := make([]float64, d+1)
		t := 1.0
		for e := 0; e < p.Epochs; e++ {
			rng.Shuffle(n, func(i, j int) {
				order[i], order[j] = order[j], order[i]
			})
			for _, i := range order {
				target := -1.0
				if y[i] == c {
					target = 1
				}
				eta := 1 / (p.Alpha*t + 10)
				margin := floats.Dot(w[:d], rows[i]) + w[d]
				g := s.dloss(margin, target)

				if l2 > 0 {
					floats.Scale(1-eta*l2, w[:d])
				}
				if g != 0 {
					floats.AddScaled(w[:d], -eta*g, rows[i])
					w[d] -= eta * g
				}
				if l1 > 0 {
					for j := 0; j < d; j++ {
						switch {
						case w[j] > eta*l1:
							w[j] -= eta * l1
						case w[j] < -eta*l1:
							w[j] += eta * l1
						default:
							w[j] = 0
						}
					}
				}
				t++
			}
		}
		s.Weights[c] = w
	}
	return nil
}

func (s *SGDClassifier) proba(margin float64) float64 {
	switch s.Params.Loss {
	case "log":
		return sigmoid(margin)
	case "modified_huber":
		return (math.Min(math.Max(margin, -1), 1) + 1) / 2
	default:
		return sigmoid(margin)
	}
}

func (s *SGDClassifier) PredictProba(X mat.Matrix) *mat.Dense {
	rows := s.Scaler.Transform(X)
	p := mat.NewDense(len(rows), s.NClasses, nil)
	for i, row := range rows {
		out := p.RawRowView(i)
		for c, w := range s.Weights {
			d := len(w) - 1
			out[c] = s.proba(floats.Dot(w[:d], row) + w[d])
		}
	}
	normalizeRows(p)
	return p
}
