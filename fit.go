package ensemble

import (
	"context"
	"fmt"
	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"github.com/hscells/ensemble/dataset"
	"github.com/hscells/ensemble/learning"
	"github.com/hscells/ensemble/store"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"math/rand"
	"os"
	"sort"
	"sync"
)

// scored is a candidate whose out-of-fold predictions are in the prediction store.
type scored struct {
	index int
	key   string
	score float64
}

func predictionKey(i int) string {
	return fmt.Sprintf("%06d", i)
}

// outOfFold fits a fresh copy of c on the complement of each fold and predicts the held out rows. With no folds the
// candidate is fitted and evaluated on every row.
func outOfFold(c learning.Candidate, X mat.Matrix, y []int, nClasses int, folds [][]int) (*mat.Dense, error) {
	n, _ := X.Dims()
	if len(folds) == 0 {
		clf, err := c.New()
		if err != nil {
			return nil, err
		}
		if err := clf.Fit(X, y, nClasses); err != nil {
			return nil, err
		}
		return clf.PredictProba(X), nil
	}

	oof := mat.NewDense(n, nClasses, nil)
	for _, test := range folds {
		train := dataset.Complement(n, test)
		clf, err := c.New()
		if err != nil {
			return nil, err
		}
		if err := clf.Fit(dataset.Rows(X, train), dataset.Classes(y, train), nClasses); err != nil {
			return nil, err
		}
		p := clf.PredictProba(dataset.Rows(X, test))
		for r, i := range test {
			oof.SetRow(i, p.RawRowView(r))
		}
	}
	return oof, nil
}

// fitCandidates computes, stores and scores the out-of-fold predictions of every candidate, at most Workers at a
// time. Candidates that fail to fit are logged and left out.
func (e *EnsembleSelectionClassifier) fitCandidates(ctx context.Context, predictions store.PredictionStore, X mat.Matrix, y []int, nClasses int, folds [][]int) ([]scored, error) {
	var bar *pb.ProgressBar
	if e.Verbose {
		bar = pb.New(len(e.Models)).SetWriter(os.Stderr).Start()
		defer bar.Finish()
	}

	var (
		mu      sync.Mutex
		results []scored
		errs    = make(chan error, len(e.Models))
		sem     = make(chan bool, e.workers())
	)
	for i, c := range e.Models {
		if ctx.Err() != nil {
			break
		}
		sem <- true
		go func(i int, c learning.Candidate) {
			defer func() { <-sem }()
			if bar != nil {
				defer bar.Increment()
			}
			if ctx.Err() != nil {
				return
			}
			p, err := outOfFold(c, X, y, nClasses, folds)
			if err != nil {
				e.Logger.Printf("skipping %s: %v\n", c, err)
				return
			}
			key := predictionKey(i)
			if err := predictions.Set(key, p); err != nil {
				errs <- errors.Wrapf(err, "storing predictions of %s", c)
				return
			}
			s := e.scoreOf(y, p)
			mu.Lock()
			results = append(results, scored{index: i, key: key, score: s})
			mu.Unlock()
		}(i, c)
	}

	// Wait until the last goroutine has read from the semaphore.
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
	close(errs)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for err := range errs {
		return nil, err
	}
	if len(results) == 0 {
		return nil, errors.New("no candidate model could be fitted")
	}

	// Best first; ties keep library order.
	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].index < results[j].index
	})
	return results, nil
}

// refit fits the members and the best model on the full training set.
func (e *EnsembleSelectionClassifier) refit(ctx context.Context, X mat.Matrix, y []int, nClasses int, members []*Member) error {
	var (
		errs = make(chan error, len(members))
		sem  = make(chan bool, e.workers())
	)
	for _, m := range members {
		if ctx.Err() != nil {
			break
		}
		sem <- true
		go func(m *Member) {
			defer func() { <-sem }()
			clf, err := m.Candidate.New()
			if err != nil {
				errs <- err
				return
			}
			if err := clf.Fit(X, y, nClasses); err != nil {
				errs <- errors.Wrapf(err, "refitting %s", m.Candidate)
				return
			}
			m.Model = clf
		}(m)
	}
	for i := 0; i < cap(sem); i++ {
		sem <- true
	}
	close(errs)

	if err := ctx.Err(); err != nil {
		return err
	}
	for err := range errs {
		return err
	}
	return nil
}

// Fit selects an ensemble from the candidate models using the labelled rows of X.
func (e *EnsembleSelectionClassifier) Fit(ctx context.Context, X mat.Matrix, y []float64) error {
	n, d := X.Dims()
	if n == 0 || n != len(y) {
		return errors.Errorf("cannot fit %d rows with %d labels", n, len(y))
	}

	e.fitted = false
	e.Features = d
	e.RunID = uuid.New().String()
	e.classes = dataset.NewLabelEncoder(y)
	labels, err := e.classes.Transform(y)
	if err != nil {
		return err
	}
	nClasses := e.classes.Len()
	rng := rand.New(rand.NewSource(e.RandomState))

	folds := dataset.StratifiedKFold(labels, e.NFolds, rng)
	if len(folds) < 2 {
		folds = nil
	}
	e.Logger.Printf("run %s: fitting %d candidates on %d rows with %d folds\n", e.RunID, len(e.Models), n, len(folds))

	if err := e.store.Reset(); err != nil {
		return errors.Wrap(err, "resetting backing store")
	}
	predictions, err := store.NewLRU(e.store, len(e.Models))
	if err != nil {
		return err
	}

	candidates, err := e.fitCandidates(ctx, predictions, X, labels, nClasses, folds)
	if err != nil {
		return err
	}
	e.bestScore = candidates[0].score
	e.Logger.Printf("best model %s scored %.5f\n", e.Models[candidates[0].index], e.bestScore)

	counts, score, err := e.selectEnsemble(predictions, candidates, labels, nClasses, rng)
	if err != nil {
		return err
	}
	e.ensembleScore = score
	e.Logger.Printf("final ensemble scored %.5f\n", score)

	indices := make([]int, 0, len(counts))
	for i := range counts {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	members := make([]Member, len(indices))
	refit := make([]*Member, 0, len(members)+1)
	bestMember := -1
	for j, i := range indices {
		members[j] = Member{Candidate: e.Models[i], Weight: counts[i]}
		refit = append(refit, &members[j])
		if i == candidates[0].index {
			bestMember = j
		}
	}
	best := Member{Candidate: e.Models[candidates[0].index], Weight: 1}
	if bestMember < 0 {
		refit = append(refit, &best)
	}

	if err := e.refit(ctx, X, labels, nClasses, refit); err != nil {
		return err
	}
	if bestMember >= 0 {
		best.Model = members[bestMember].Model
	}
	e.members = members
	e.best = best
	e.fitted = true
	return nil
}
