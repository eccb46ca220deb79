// Package eval scores predictions. It contains the scorers used to rank candidate models and ensembles, plus the
// accuracy and classification report used for display.
package eval

import (
	"bytes"
	"fmt"
)

type prf struct {
	precision, recall, f1 float64
	support               int
}

func safeDivide(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// classScores computes precision, recall and f-measure treating class c as the positive class.
func classScores(y, pred []int, c int) prf {
	var tp, fp, fn float64
	var support int
	for i := range y {
		switch {
		case y[i] == c && pred[i] == c:
			tp++
		case y[i] != c && pred[i] == c:
			fp++
		case y[i] == c && pred[i] != c:
			fn++
		}
		if y[i] == c {
			support++
		}
	}
	p := safeDivide(tp, tp+fp)
	r := safeDivide(tp, tp+fn)
	return prf{
		precision: p,
		recall:    r,
		f1:        safeDivide(2*p*r, p+r),
		support:   support,
	}
}

// AccuracyScore is the fraction of predictions equal to the truth.
func AccuracyScore(y, pred []int) float64 {
	if len(y) == 0 {
		return 0
	}
	var correct float64
	for i := range y {
		if y[i] == pred[i] {
			correct++
		}
	}
	return correct / float64(len(y))
}

// ClassificationReport renders per-class precision, recall, f-measure and support, followed by support-weighted
// averages. names holds the display name of each class index.
func ClassificationReport(y, pred []int, names []string) string {
	const last = "avg / total"
	width := len(last)
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}
	row := fmt.Sprintf("%%%ds  %%9s %%9s %%9s %%9s\n", width)

	var buff bytes.Buffer
	fmt.Fprintf(&buff, row, "", "precision", "recall", "f1-score", "support")
	buff.WriteString("\n")

	var (
		p, r, f float64
		total   int
	)
	for c, name := range names {
		s := classScores(y, pred, c)
		fmt.Fprintf(&buff, row, name,
			fmt.Sprintf("%0.2f", s.precision),
			fmt.Sprintf("%0.2f", s.recall),
			fmt.Sprintf("%0.2f", s.f1),
			fmt.Sprintf("%d", s.support))
		w := float64(s.support)
		p += s.precision * w
		r += s.recall * w
		f += s.f1 * w
		total += s.support
	}
	buff.WriteString("\n")
	fmt.Fprintf(&buff, row, last,
		fmt.Sprintf("%0.2f", safeDivide(p, float64(total))),
		fmt.Sprintf("%0.2f", safeDivide(r, float64(total))),
		fmt.Sprintf("%0.2f", safeDivide(f, float64(total))),
		fmt.Sprintf("%d", total))
	return buff.String()
}
