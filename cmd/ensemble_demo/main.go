// ensemble_demo fits an ensemble on the training part of a train/test split of a dataset, and reports the accuracy
// of the best single model and of the final ensemble on both parts.
package main

import (
	"context"
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/cmd"
	"github.com/hscells/ensemble/dataset"
	"github.com/hscells/ensemble/learning"
	"io"
	"log"
	"math/rand"
	"os"
)

var (
	name    = "ensemble_demo"
	version = "14.Oct.2026"
)

type args struct {
	cmd.EnsembleArgs
	TestSize float64 `arg:"-t,--test-size" default:"0.95" help:"fraction of data to use for testing"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", name, version)
}

func (args) Description() string {
	return `Test harness for ensemble selection: fit an ensemble on a train/test split of an svmlight dataset.`
}

func parse(a *args, argv []string, w io.Writer) error {
	return cmd.Parse(name, a, argv, w)
}

func run(argv []string, w io.Writer) error {
	var args args
	if err := parse(&args, argv, w); err != nil {
		return err
	}
	seed := args.RandomSeed()

	X, y, err := cmd.LoadData(args.Logger(), args.TrainFile, 0)
	if err != nil {
		return err
	}
	split, err := dataset.TrainTestSplit(X, y, args.TestSize, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Train/hillclimbing set size: %d\n", len(split.YTrain))
	fmt.Fprintf(w, "              Test set size: %d\n\n", len(split.YTest))

	models, err := learning.BuildModelLibrary(args.ModelTypes, seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "built %d models\n\n", len(models))

	e, err := ensemble.New(models, args.Config(seed))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "fitting ensemble:\n%s\n\n", e)
	if err := e.Fit(context.Background(), split.XTrain, split.YTrain); err != nil {
		return err
	}

	return cmd.WriteAccuracies(w, e,
		cmd.Partition{Name: "Train", X: split.XTrain, Y: split.YTrain},
		cmd.Partition{Name: "Test", X: split.XTest, Y: split.YTest})
}

func main() {
	err := run(os.Args[1:], os.Stdout)
	switch err {
	case nil:
	case arg.ErrHelp, arg.ErrVersion:
		os.Exit(0)
	default:
		log.Fatal(err)
	}
}
