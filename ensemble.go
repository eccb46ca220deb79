// Package ensemble implements ensemble selection from libraries of models (Caruana et al. 2004, 2006).
//
// A library of candidate classifiers is fitted with internal cross-validation, and the out-of-fold class
// probabilities of every candidate are kept in a backing store. After the worst candidates are pruned, each bag
// draws a fraction of the survivors, seeds an ensemble with its best few, and hillclimbs by adding (with
// replacement) whichever candidate most improves the score of the averaged probabilities. The members chosen by
// every bag are weighted by how often they were chosen and refitted on the full training set.
package ensemble

import (
	"fmt"
	"github.com/hscells/ensemble/dataset"
	"github.com/hscells/ensemble/eval"
	"github.com/hscells/ensemble/learning"
	"github.com/hscells/ensemble/store"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"log"
	"os"
	"runtime"
	"strings"
)

// Config holds the parameters of ensemble selection.
type Config struct {
	// DBName is the directory of the backing store.
	DBName string
	// NBest is the number of best models each bag's ensemble starts with.
	NBest int
	// NFolds is the number of internal cross-validation folds.
	NFolds int
	// NBags is the number of bags.
	NBags int
	// BagFraction is the fraction of pruned models placed in each bag.
	BagFraction float64
	// PruneFraction is the fraction of worst models discarded before selection.
	PruneFraction float64
	ScoreMetric   eval.Metric
	Verbose       bool
	// Epsilon is the smallest improvement that admits a model when UseEpsilon is set.
	Epsilon    float64
	UseEpsilon bool
	// MaxModels is the largest number of models (counting repeats) in a bagged ensemble.
	MaxModels   int
	RandomState int64
	// Workers bounds the number of candidates fitted at once; zero uses every CPU.
	Workers int
}

// DefaultConfig returns the default parameters for a backing store at dbName.
func DefaultConfig(dbName string) Config {
	return Config{
		DBName:        dbName,
		NBest:         5,
		NFolds:        3,
		NBags:         20,
		BagFraction:   0.25,
		PruneFraction: 0.75,
		ScoreMetric:   eval.Accuracy,
		Verbose:       true,
		Epsilon:       0.0001,
		MaxModels:     25,
	}
}

func (c Config) validate() error {
	switch {
	case len(c.DBName) == 0:
		return errors.New("db name must not be empty")
	case c.NBest < 1:
		return errors.Errorf("n_best must be at least 1, got %d", c.NBest)
	case c.NFolds < 1:
		return errors.Errorf("n_folds must be at least 1, got %d", c.NFolds)
	case c.NBags < 1:
		return errors.Errorf("n_bags must be at least 1, got %d", c.NBags)
	case c.BagFraction <= 0 || c.BagFraction > 1:
		return errors.Errorf("bag_fraction must be in (0, 1], got %v", c.BagFraction)
	case c.PruneFraction < 0 || c.PruneFraction >= 1:
		return errors.Errorf("prune_fraction must be in [0, 1), got %v", c.PruneFraction)
	case c.Epsilon < 0:
		return errors.Errorf("epsilon must not be negative, got %v", c.Epsilon)
	case c.MaxModels < 1:
		return errors.Errorf("max_models must be at least 1, got %d", c.MaxModels)
	case c.Workers < 0:
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := eval.ScorerFor(c.ScoreMetric); err != nil {
		return err
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// Member is a model of the final ensemble, and how many times the bags selected it.
type Member struct {
	Candidate learning.Candidate
	Weight    int
	Model     learning.Classifier
}

// EnsembleSelectionClassifier selects a weighted ensemble out of a library of candidate models.
type EnsembleSelectionClassifier struct {
	Config
	Models []learning.Candidate
	Logger *log.Logger
	// RunID identifies the most recent fit.
	RunID string
	// Features is the number of columns of the training data.
	Features int

	scorer eval.Scorer
	store  *store.Store

	classes       dataset.LabelEncoder
	members       []Member
	best          Member
	bestScore     float64
	ensembleScore float64
	fitted        bool
}

// New validates cfg and creates an unfitted classifier over the candidate models.
func New(models []learning.Candidate, cfg Config) (*EnsembleSelectionClassifier, error) {
	if len(models) == 0 {
		return nil, errors.New("no candidate models")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	scorer, _ := eval.ScorerFor(cfg.ScoreMetric)

	var logger *log.Logger
	if cfg.Verbose {
		logger = log.New(os.Stderr, "", log.LstdFlags)
	} else {
		logger = log.New(ioutil.Discard, "", 0)
	}

	return &EnsembleSelectionClassifier{
		Config: cfg,
		Models: models,
		Logger: logger,
		scorer: scorer,
		store:  store.Open(cfg.DBName),
	}, nil
}

func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (e *EnsembleSelectionClassifier) String() string {
	params := []string{
		fmt.Sprintf("bag_fraction=%v", e.BagFraction),
		fmt.Sprintf("db_name='%s'", e.DBName),
		fmt.Sprintf("epsilon=%v", e.Epsilon),
		fmt.Sprintf("max_models=%d", e.MaxModels),
		fmt.Sprintf("models=<%d candidates>", len(e.Models)),
		fmt.Sprintf("n_bags=%d", e.NBags),
		fmt.Sprintf("n_best=%d", e.NBest),
		fmt.Sprintf("n_folds=%d", e.NFolds),
		fmt.Sprintf("prune_fraction=%v", e.PruneFraction),
		fmt.Sprintf("random_state=%d", e.RandomState),
		fmt.Sprintf("score_metric='%s'", e.ScoreMetric),
		fmt.Sprintf("use_epsilon=%s", pyBool(e.UseEpsilon)),
		fmt.Sprintf("verbose=%s", pyBool(e.Verbose)),
	}
	return fmt.Sprintf("EnsembleSelectionClassifier(%s)", strings.Join(params, ",\n\t"))
}

// Classes are the labels seen during fitting, in the column order of PredictProba.
func (e *EnsembleSelectionClassifier) Classes() []float64 {
	return e.classes.Labels
}

// Members of the fitted ensemble.
func (e *EnsembleSelectionClassifier) Members() []Member {
	return e.members
}

// BestModel is the single candidate with the best out-of-fold score.
func (e *EnsembleSelectionClassifier) BestModel() Member {
	return e.best
}

// Score is the out-of-fold score of the final ensemble.
func (e *EnsembleSelectionClassifier) Score() float64 {
	return e.ensembleScore
}

// BestScore is the out-of-fold score of the best single model.
func (e *EnsembleSelectionClassifier) BestScore() float64 {
	return e.bestScore
}

func (e *EnsembleSelectionClassifier) mustBeFitted() error {
	if !e.fitted {
		return errors.New("ensemble has not been fitted")
	}
	return nil
}

// PredictProba returns the weighted average of the members' class probabilities.
func (e *EnsembleSelectionClassifier) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if err := e.mustBeFitted(); err != nil {
		return nil, err
	}
	n, _ := X.Dims()
	p := mat.NewDense(n, e.classes.Len(), nil)
	var total float64
	for _, m := range e.members {
		mp := m.Model.PredictProba(X)
		mp.Scale(float64(m.Weight), mp)
		p.Add(p, mp)
		total += float64(m.Weight)
	}
	p.Scale(1/total, p)
	return p, nil
}

// Predict returns the most probable label of each row according to the ensemble.
func (e *EnsembleSelectionClassifier) Predict(X mat.Matrix) ([]float64, error) {
	p, err := e.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return e.classes.Inverse(eval.Argmax(p)), nil
}

// BestModelPredictProba returns the class probabilities of the best single model.
func (e *EnsembleSelectionClassifier) BestModelPredictProba(X mat.Matrix) (*mat.Dense, error) {
	if err := e.mustBeFitted(); err != nil {
		return nil, err
	}
	return e.best.Model.PredictProba(X), nil
}

// BestModelPredict returns the most probable label of each row according to the best single model.
func (e *EnsembleSelectionClassifier) BestModelPredict(X mat.Matrix) ([]float64, error) {
	p, err := e.BestModelPredictProba(X)
	if err != nil {
		return nil, err
	}
	return e.classes.Inverse(eval.Argmax(p)), nil
}
