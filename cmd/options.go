package cmd

import (
	"github.com/alexflint/go-arg"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/eval"
	"github.com/hscells/ensemble/learning"
	"io"
	"io/ioutil"
	"log"
	"os"
	"time"
)

// EnsembleArgs are the arguments shared by every command that fits an ensemble.
type EnsembleArgs struct {
	DBName        string               `arg:"-D,--db,required" help:"directory of the backing store"`
	TrainFile     string               `arg:"-d,--data,required" help:"training data in svmlight format"`
	ModelTypes    []learning.ModelType `arg:"-M,--models" help:"model types to include in the library {svc,sgd,gbc,dtree,forest,extra,kmp} (default: [dtree])"`
	ScoreMetric   eval.Metric          `arg:"-S,--score" default:"accuracy" help:"score metric used for hillclimbing {f1,auc,rmse,accuracy,xentropy}"`
	NBags         int                  `arg:"-b,--bags" default:"20" help:"bags to create"`
	BagFraction   float64              `arg:"-f,--bag-fraction" default:"0.25" help:"fraction of models in each bag (after pruning)"`
	NBest         int                  `arg:"-B,--best" default:"5" help:"number of best models in initial ensemble"`
	MaxModels     int                  `arg:"-m,--max-models" default:"25" help:"maximum number of models per bagged ensemble"`
	NFolds        int                  `arg:"-F,--folds" default:"3" help:"internal cross-validation folds"`
	PruneFraction float64              `arg:"-p,--prune" default:"0.75" help:"fraction of worst models pruned pre-selection"`
	UseEpsilon    bool                 `arg:"-u,--use-epsilon" help:"use epsilon to stop adding models"`
	Epsilon       float64              `arg:"-e,--epsilon" default:"0.0001" help:"score improvement threshold to include new model"`
	Seed          *int64               `arg:"-s,--seed" help:"random seed"`
	Verbose       bool                 `arg:"-v,--verbose" default:"true" help:"show progress messages"`
	Quiet         bool                 `arg:"-q,--quiet" help:"hide progress messages"`
	Workers       int                  `arg:"-j,--workers" help:"candidate models fitted at once (default: number of CPUs)"`
}

// DefaultModelTypes are used when no model types are given.
var DefaultModelTypes = []learning.ModelType{learning.DTree}

// RandomSeed is the seed given on the command line, or one drawn from the clock.
func (a EnsembleArgs) RandomSeed() int64 {
	if a.Seed != nil {
		return *a.Seed
	}
	return time.Now().UnixNano()
}

// NewLogger logs to stderr, or nowhere when verbose is unset.
func NewLogger(verbose bool) *log.Logger {
	if verbose {
		return log.New(os.Stderr, "", log.LstdFlags)
	}
	return log.New(ioutil.Discard, "", 0)
}

// Logger is the logger for the progress messages the arguments ask for.
func (a EnsembleArgs) Logger() *log.Logger {
	return NewLogger(a.Verbose && !a.Quiet)
}

// Config converts the arguments into the parameters of ensemble selection.
func (a EnsembleArgs) Config(seed int64) ensemble.Config {
	return ensemble.Config{
		DBName:        a.DBName,
		NBest:         a.NBest,
		NFolds:        a.NFolds,
		NBags:         a.NBags,
		BagFraction:   a.BagFraction,
		PruneFraction: a.PruneFraction,
		ScoreMetric:   a.ScoreMetric,
		Verbose:       a.Verbose && !a.Quiet,
		Epsilon:       a.Epsilon,
		UseEpsilon:    a.UseEpsilon,
		MaxModels:     a.MaxModels,
		RandomState:   seed,
		Workers:       a.Workers,
	}
}

// Parse parses argv into dest, which is a pointer to a go-arg struct. Help and version requests are written to w and
// returned as arg.ErrHelp and arg.ErrVersion.
func Parse(program string, dest interface{}, argv []string, w io.Writer) error {
	p, err := arg.NewParser(arg.Config{Program: program}, dest)
	if err != nil {
		return err
	}
	err = p.Parse(argv)
	switch err {
	case nil:
	case arg.ErrHelp:
		p.WriteHelp(w)
		return err
	case arg.ErrVersion:
		if v, ok := dest.(interface{ Version() string }); ok {
			_, _ = io.WriteString(w, v.Version()+"\n")
		}
		return err
	default:
		p.WriteUsage(w)
		return err
	}

	if a, ok := dest.(interface{ applyDefaults() }); ok {
		a.applyDefaults()
	}
	return nil
}

func (a *EnsembleArgs) applyDefaults() {
	if len(a.ModelTypes) == 0 {
		a.ModelTypes = DefaultModelTypes
	}
}
