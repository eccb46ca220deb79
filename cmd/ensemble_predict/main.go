// ensemble_predict predicts a dataset with the ensemble saved by ensemble_train, and reports its accuracy against
// the labels of the dataset.
package main

import (
	"bufio"
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/cmd"
	"github.com/pkg/errors"
	"io"
	"log"
	"os"
	"strconv"
)

var (
	name    = "ensemble_predict"
	version = "14.Oct.2026"
)

type args struct {
	DBName   string `arg:"-D,--db,required" help:"directory of the backing store"`
	TestFile string `arg:"-d,--data,required" help:"data to predict in svmlight format"`
	Output   string `arg:"-o,--output" help:"file to write one predicted label per line to"`
	Proba    bool   `arg:"-P,--proba" help:"write class probabilities instead of labels"`
	Quiet    bool   `arg:"-q,--quiet" help:"hide progress messages"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", name, version)
}

func (args) Description() string {
	return `Predict an svmlight dataset with the ensemble saved in the backing store.`
}

func run(argv []string, w io.Writer) error {
	var args args
	if err := cmd.Parse(name, &args, argv, w); err != nil {
		return err
	}

	e, err := ensemble.Load(args.DBName)
	if err != nil {
		return err
	}
	X, y, err := cmd.LoadData(cmd.NewLogger(!args.Quiet), args.TestFile, e.Features)
	if err != nil {
		return errors.Wrapf(err, "ensemble in %s was fitted on %d features", args.DBName, e.Features)
	}

	if len(args.Output) > 0 {
		f, err := os.Create(args.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		bw := bufio.NewWriter(f)
		if args.Proba {
			p, err := e.PredictProba(X)
			if err != nil {
				return err
			}
			n, k := p.Dims()
			for i := 0; i < n; i++ {
				for j := 0; j < k; j++ {
					if j > 0 {
						bw.WriteString(" ")
					}
					bw.WriteString(strconv.FormatFloat(p.At(i, j), 'f', 5, 64))
				}
				bw.WriteString("\n")
			}
		} else {
			pred, err := e.Predict(X)
			if err != nil {
				return err
			}
			for _, v := range pred {
				bw.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
				bw.WriteString("\n")
			}
		}
		if err := bw.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "loaded ensemble %s from %s\n\n", e.RunID, args.DBName)
	return cmd.WriteAccuracies(w, e, cmd.Partition{Name: "Test", X: X, Y: y})
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
