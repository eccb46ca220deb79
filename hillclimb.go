package ensemble

import (
	"github.com/hscells/ensemble/store"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math"
	"math/rand"
	"sort"
)

// prune drops the worst fraction of the candidates, which are sorted best first. At least one candidate survives.
func prune(candidates []scored, fraction float64) []scored {
	n := int(fraction * float64(len(candidates)))
	if n >= len(candidates) {
		n = len(candidates) - 1
	}
	return candidates[:len(candidates)-n]
}

// bagSize is the number of pruned candidates drawn into each bag.
func bagSize(pruned int, fraction float64) int {
	n := int(fraction * float64(pruned))
	if n < 1 {
		n = 1
	}
	if n > pruned {
		n = pruned
	}
	return n
}

func (e *EnsembleSelectionClassifier) scoreOf(y []int, p mat.Matrix) float64 {
	s := e.scorer.Score(y, p)
	if math.IsNaN(s) {
		return math.Inf(-1)
	}
	return s
}

// hillclimb grows an ensemble out of the bag, a list of positions into probas ordered best first. The ensemble starts
// with the NBest best models of the bag; the model whose addition gives the best score is then added (with
// replacement) until the ensemble holds MaxModels models or, with UseEpsilon, until the improvement drops below
// Epsilon. The best ensemble found along the way is returned as a count per position.
func (e *EnsembleSelectionClassifier) hillclimb(bag []int, probas []*mat.Dense, y []int) (map[int]int, float64) {
	r, c := probas[bag[0]].Dims()
	var (
		sum     = mat.NewDense(r, c, nil)
		scratch = mat.NewDense(r, c, nil)
		current = make(map[int]int)
		size    int
	)

	nInit := e.NBest
	if nInit > len(bag) {
		nInit = len(bag)
	}
	if nInit > e.MaxModels {
		nInit = e.MaxModels
	}
	for _, pos := range bag[:nInit] {
		sum.Add(sum, probas[pos])
		current[pos]++
		size++
	}
	scratch.Scale(1/float64(size), sum)
	score := e.scoreOf(y, scratch)

	snapshot := func() map[int]int {
		m := make(map[int]int, len(current))
		for k, v := range current {
			m[k] = v
		}
		return m
	}
	best, bestScore := snapshot(), score

	for size < e.MaxModels {
		next, nextScore := -1, math.Inf(-1)
		for _, pos := range bag {
			scratch.Add(sum, probas[pos])
			scratch.Scale(1/float64(size+1), scratch)
			if s := e.scoreOf(y, scratch); next < 0 || s > nextScore {
				next, nextScore = pos, s
			}
		}
		if e.UseEpsilon && nextScore-score < e.Epsilon {
			break
		}
		sum.Add(sum, probas[next])
		current[next]++
		size++
		score = nextScore
		if score > bestScore {
			best, bestScore = snapshot(), score
		}
	}
	return best, bestScore
}

// selectEnsemble prunes the candidates, hillclimbs in each bag, and sums the bags' selections into a weight per
// candidate (indexed as in Models). It also returns the out-of-fold score of the weighted ensemble.
func (e *EnsembleSelectionClassifier) selectEnsemble(predictions store.PredictionStore, candidates []scored, y []int, nClasses int, rng *rand.Rand) (map[int]int, float64, error) {
	pruned := prune(candidates, e.PruneFraction)
	size := bagSize(len(pruned), e.BagFraction)
	e.Logger.Printf("pruned to %d models, %d per bag\n", len(pruned), size)

	probas := make([]*mat.Dense, len(pruned))
	for i, c := range pruned {
		p, err := predictions.Get(c.key)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "reading predictions of %s", e.Models[c.index])
		}
		probas[i] = p
	}

	counts := make(map[int]int)
	for b := 0; b < e.NBags; b++ {
		bag := rng.Perm(len(pruned))[:size]
		// Positions into pruned are already best first.
		sort.Ints(bag)
		selected, score := e.hillclimb(bag, probas, y)
		var total int
		for pos, n := range selected {
			counts[pruned[pos].index] += n
			total += n
		}
		e.Logger.Printf("bag %d: %d models scored %.5f\n", b, total, score)
	}

	r, _ := probas[0].Dims()
	var (
		sum   = mat.NewDense(r, nClasses, nil)
		total float64
	)
	for i, c := range pruned {
		if n, ok := counts[c.index]; ok {
			var weighted mat.Dense
			weighted.Scale(float64(n), probas[i])
			sum.Add(sum, &weighted)
			total += float64(n)
		}
	}
	sum.Scale(1/total, sum)
	return counts, e.scoreOf(y, sum), nil
}
