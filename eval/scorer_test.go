package eval_test

import (
	"github.com/hscells/ensemble/eval"
	"gonum.org/v1/gonum/mat"
	"math"
	"strings"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAccuracyScore(t *testing.T) {
	if s := eval.AccuracyScore([]int{0, 1, 1, 0}, []int{0, 1, 0, 0}); !near(s, 0.75) {
		t.Errorf("expected 0.75, got %v", s)
	}
	if s := eval.AccuracyScore(nil, nil); s != 0 {
		t.Errorf("expected 0 for empty input, got %v", s)
	}
}

func TestScorers(t *testing.T) {
	y := []int{0, 0, 1, 1}
	proba := mat.NewDense(4, 2, []float64{
		0.9, 0.1,
		0.4, 0.6,
		0.35, 0.65,
		0.2, 0.8,
	})

	cases := []struct {
		metric eval.Metric
		want   float64
	}{
		{eval.Accuracy, 0.75},
		// Predicted positives: rows 1, 2, 3; tp=2, fp=1, fn=0.
		{eval.F1, 0.8},
		// Positive scores 0.65, 0.8 against negatives 0.1, 0.6.
		{eval.AUC, 1},
		{eval.RMSE, -math.Sqrt((0.01*2 + 0.36*2 + 0.1225*2 + 0.04*2) / 8)},
		{eval.CrossEntropy, (math.Log(0.9) + math.Log(0.4) + math.Log(0.65) + math.Log(0.8)) / 4},
	}
	for _, c := range cases {
		s, err := eval.ScorerFor(c.metric)
		if err != nil {
			t.Fatal(err)
		}
		if s.Name() != string(c.metric) {
			t.Errorf("scorer for %s is named %s", c.metric, s.Name())
		}
		if got := s.Score(y, proba); !near(got, c.want) {
			t.Errorf("%s: expected %v, got %v", c.metric, c.want, got)
		}
	}
}

func TestAUCTies(t *testing.T) {
	y := []int{0, 1, 0, 1}
	proba := mat.NewDense(4, 2, []float64{
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
		0.5, 0.5,
	})
	if s := eval.AUCScorer.Score(y, proba); !near(s, 0.5) {
		t.Errorf("expected 0.5 for constant scores, got %v", s)
	}
}

func TestMulticlassScorers(t *testing.T) {
	y := []int{0, 1, 2}
	proba := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	for _, m := range eval.Metrics {
		s, _ := eval.ScorerFor(m)
		got := s.Score(y, proba)
		switch m {
		case eval.RMSE, eval.CrossEntropy:
			if got > 1e-9 || got < -1e-9 {
				t.Errorf("%s: expected a perfect score of 0, got %v", m, got)
			}
		default:
			if !near(got, 1) {
				t.Errorf("%s: expected a perfect score of 1, got %v", m, got)
			}
		}
	}
}

func TestMetricUnmarshalText(t *testing.T) {
	var m eval.Metric
	if err := m.UnmarshalText([]byte("auc")); err != nil || m != eval.AUC {
		t.Errorf("expected auc, got %v (%v)", m, err)
	}
	if err := m.UnmarshalText([]byte("precision")); err == nil {
		t.Error("expected an error for an unknown metric")
	}
	if _, err := eval.ScorerFor(eval.Metric("bogus")); err == nil {
		t.Error("expected an error for an unknown scorer")
	}
}

func TestClassificationReport(t *testing.T) {
	report := eval.ClassificationReport([]int{0, 0, 1, 1}, []int{0, 1, 1, 1}, []string{"-1", "1"})
	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), report)
	}
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		if !strings.Contains(lines[0], h) {
			t.Errorf("header is missing %s: %q", h, lines[0])
		}
	}
	if fields := strings.Fields(lines[2]); len(fields) != 5 || fields[0] != "-1" || fields[1] != "1.00" || fields[2] != "0.50" || fields[4] != "2" {
		t.Errorf("unexpected row for class -1: %q", lines[2])
	}
	if !strings.HasPrefix(lines[5], "avg / total") || !strings.HasSuffix(lines[5], "4") {
		t.Errorf("unexpected totals row: %q", lines[5])
	}
}
