// ensemble_train fits an ensemble on a whole dataset and saves it in the backing store, for ensemble_predict.
package main

import (
	"context"
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/cmd"
	"github.com/hscells/ensemble/learning"
	"io"
	"log"
	"os"
)

var (
	name    = "ensemble_train"
	version = "14.Oct.2026"
)

type args struct {
	cmd.EnsembleArgs
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", name, version)
}

func (args) Description() string {
	return `Fit an ensemble on an svmlight dataset and save it in the backing store.`
}

func run(argv []string, w io.Writer) error {
	var args args
	if err := cmd.Parse(name, &args, argv, w); err != nil {
		return err
	}
	seed := args.RandomSeed()

	X, y, err := cmd.LoadData(args.Logger(), args.TrainFile, 0)
	if err != nil {
		return err
	}
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
	if err := e.Fit(context.Background(), X, y); err != nil {
		return err
	}
	if err := e.Save(); err != nil {
		return err
	}

	fmt.Fprintf(w, "ensemble %s saved to %s\n", e.RunID, args.DBName)
	fmt.Fprintf(w, "hillclimbing score of best model: %.5f\n", e.BestScore())
	fmt.Fprintf(w, "hillclimbing score of final ensemble: %.5f\n", e.Score())
	for _, m := range e.Members() {
		fmt.Fprintf(w, "%4d %s\n", m.Weight, m.Candidate)
	}
	fmt.Fprintln(w)
	return cmd.WriteAccuracies(w, e, cmd.Partition{Name: "Train", X: X, Y: y})
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
