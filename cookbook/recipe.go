// Package cookbook runs recipes: a training program followed by a prediction program, each given the backing store
// and the dataset of the recipe, as separate processes.
//
// Recipes are properties files. A recipe names a base path, and the other keys usually expand it:
//
//	path = /opt/ensemble/
//	train = ${path}bin/ensemble_train
//	predict = ${path}bin/ensemble_predict
//	data = ${path}cookbook/heart
//	db = ${path}test.db
//
// When an interpreter is set, the train and predict programs are passed to it as scripts.
package cookbook

import (
	"context"
	"fmt"
	"github.com/magiconair/properties"
	"github.com/pkg/errors"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
)

// Step is a single program invocation.
type Step struct {
	Name    string
	Program string
	Args    []string
}

func (s Step) String() string {
	return strings.Join(append([]string{s.Program}, s.Args...), " ")
}

// Recipe is a named sequence of steps.
type Recipe struct {
	Name  string
	Steps []Step
}

// Parse creates the train and predict steps of a recipe from its properties.
func Parse(name string, p *properties.Properties) (Recipe, error) {
	values := make(map[string]string)
	for _, key := range []string{"train", "predict", "data", "db"} {
		v, ok := p.Get(key)
		if !ok || len(v) == 0 {
			return Recipe{}, errors.Errorf("recipe %s must specify %s", name, key)
		}
		values[key] = v
	}
	name = p.GetString("name", name)
	interpreter := p.GetString("interpreter", "")

	step := func(stepName, program string) Step {
		args := []string{"-D", values["db"], "-d", values["data"]}
		if len(interpreter) > 0 {
			return Step{Name: stepName, Program: interpreter, Args: append([]string{program}, args...)}
		}
		return Step{Name: stepName, Program: program, Args: args}
	}
	return Recipe{
		Name: name,
		Steps: []Step{
			step("train", values["train"]),
			step("predict", values["predict"]),
		},
	}, nil
}

// Load reads a recipe from a properties file. The recipe is named after the file unless it sets a name.
func Load(path string) (Recipe, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return Recipe{}, errors.Wrapf(err, "loading recipe %s", path)
	}
	return Parse(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), p)
}

// Run executes the step and writes its combined standard output and standard error to w. A step that cannot be
// started, or that exits with a non-zero status, is an error.
func Run(ctx context.Context, w io.Writer, s Step) error {
	out, err := exec.CommandContext(ctx, s.Program, s.Args...).CombinedOutput()
	if _, werr := w.Write(out); werr != nil && err == nil {
		err = werr
	}
	if err != nil {
		return errors.Wrapf(err, "%s step (%s)", s.Name, s)
	}
	return nil
}

// Run executes the steps of the recipe in order, stopping at the first that fails.
func (r Recipe) Run(ctx context.Context, w io.Writer) error {
	for _, s := range r.Steps {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Name, s.Name); err != nil {
			return err
		}
		if err := Run(ctx, w, s); err != nil {
			return errors.Wrapf(err, "recipe %s", r.Name)
		}
	}
	return nil
}
