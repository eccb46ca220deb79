package dataset

import (
	"math/rand"
)

// StratifiedKFold partitions the indices of y into k folds, returning the test indices of each fold. The rows of
// each class are shuffled and dealt to the folds round-robin, carrying on from where the previous class stopped, so
// class proportions are preserved and fold sizes differ by at most one. k is clamped to len(y).
func StratifiedKFold(y []int, k int, rng *rand.Rand) [][]int {
	if k > len(y) {
		k = len(y)
	}
	if k < 1 {
		return nil
	}

	var nClasses int
	for _, c := range y {
		if c+1 > nClasses {
			nClasses = c + 1
		}
	}
	byClass := make([][]int, nClasses)
	for i, c := range y {
		byClass[c] = append(byClass[c], i)
	}

	folds := make([][]int, k)
	var next int
	for _, idx := range byClass {
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		for _, i := range idx {
			folds[next] = append(folds[next], i)
			next = (next + 1) % k
		}
	}
	return folds
}

// Complement returns the indices in [0, n) that are not in idx.
func Complement(n int, idx []int) []int {
	in := make([]bool, n)
	for _, i := range idx {
		in[i] = true
	}
	c := make([]int, 0, n-len(idx))
	for i := 0; i < n; i++ {
		if !in[i] {
			c = append(c, i)
		}
	}
	return c
}
