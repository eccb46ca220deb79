package ensemble

import (
	"github.com/hscells/ensemble/eval"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"log"
	"testing"
)

func TestPrune(t *testing.T) {
	candidates := make([]scored, 10)
	for i := range candidates {
		candidates[i] = scored{index: i, score: float64(10 - i)}
	}
	if n := len(prune(candidates, 0.75)); n != 3 {
		t.Errorf("expected 3 survivors, got %d", n)
	}
	if n := len(prune(candidates, 0)); n != 10 {
		t.Errorf("expected every candidate to survive, got %d", n)
	}
	if n := len(prune(candidates[:1], 0.75)); n != 1 {
		t.Errorf("expected the only candidate to survive, got %d", n)
	}
	if p := prune(candidates, 0.5); p[len(p)-1].index != 4 {
		t.Errorf("expected the worst candidates to be pruned, got %v", p)
	}
}

func TestBagSize(t *testing.T) {
	cases := []struct {
		pruned   int
		fraction float64
		want     int
	}{
		{30, 0.25, 7},
		{3, 0.25, 1},
		{4, 1, 4},
	}
	for _, c := range cases {
		if got := bagSize(c.pruned, c.fraction); got != c.want {
			t.Errorf("bagSize(%d, %v): expected %d, got %d", c.pruned, c.fraction, c.want, got)
		}
	}
}

func testClassifier(cfg Config) *EnsembleSelectionClassifier {
	s, _ := eval.ScorerFor(cfg.ScoreMetric)
	return &EnsembleSelectionClassifier{Config: cfg, scorer: s, Logger: log.New(ioutil.Discard, "", 0)}
}

func TestHillclimb(t *testing.T) {
	y := []int{0, 1, 0, 1}
	probas := []*mat.Dense{
		// Right on rows 0 and 1.
		mat.NewDense(4, 2, []float64{0.9, 0.1, 0.2, 0.8, 0.4, 0.6, 0.6, 0.4}),
		// Right on rows 2 and 3.
		mat.NewDense(4, 2, []float64{0.4, 0.6, 0.6, 0.4, 0.9, 0.1, 0.2, 0.8}),
		// Always wrong.
		mat.NewDense(4, 2, []float64{0.1, 0.9, 0.9, 0.1, 0.1, 0.9, 0.9, 0.1}),
	}

	cfg := DefaultConfig("unused")
	cfg.NBest = 1
	cfg.MaxModels = 2
	e := testClassifier(cfg)
	counts, score := e.hillclimb([]int{0, 1, 2}, probas, y)
	if score != 1 {
		t.Errorf("expected a perfect ensemble, got %v", score)
	}
	if counts[0] != 1 || counts[1] != 1 || counts[2] != 0 {
		t.Errorf("unexpected selection %v", counts)
	}

	// An improvement threshold above any possible gain keeps the initial ensemble.
	cfg.UseEpsilon = true
	cfg.Epsilon = 1
	cfg.MaxModels = 25
	e = testClassifier(cfg)
	counts, score = e.hillclimb([]int{0, 1, 2}, probas, y)
	if len(counts) != 1 || counts[0] != 1 || score != 0.5 {
		t.Errorf("expected only the initial model, got %v scoring %v", counts, score)
	}

	// Without a threshold the best ensemble seen is kept even as later additions get worse.
	cfg.UseEpsilon = false
	cfg.MaxModels = 6
	e = testClassifier(cfg)
	counts, score = e.hillclimb([]int{0, 1, 2}, probas, y)
	if score != 1 {
		t.Errorf("expected the best ensemble to be kept, got %v", score)
	}
}
