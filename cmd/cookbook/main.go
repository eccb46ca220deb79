// cookbook runs recipes: each trains an ensemble with one program and predicts with another, printing what the
// programs print.
package main

import (
	"context"
	"fmt"
	"github.com/alexflint/go-arg"
	"github.com/hscells/ensemble/cmd"
	"github.com/hscells/ensemble/cookbook"
	"io"
	"log"
	"os"
	"time"
)

var (
	name    = "cookbook"
	version = "14.Oct.2026"
)

type args struct {
	Recipes []string      `arg:"positional,required" help:"recipe properties files"`
	Timeout time.Duration `arg:"-T,--timeout" help:"time limit of each recipe (default: none)"`
}

func (args) Version() string {
	return fmt.Sprintf("%s %s", name, version)
}

func (args) Description() string {
	return `Run ensemble recipes, training then predicting with external programs.`
}

func runRecipe(path string, timeout time.Duration, w io.Writer) error {
	r, err := cookbook.Load(path)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Run(ctx, w)
}

func run(argv []string, w io.Writer) error {
	var args args
	if err := cmd.Parse(name, &args, argv, w); err != nil {
		return err
	}
	for _, path := range args.Recipes {
		if err := runRecipe(path, args.Timeout, w); err != nil {
			return err
		}
	}
	return nil
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
