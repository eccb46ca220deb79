package cookbook_test

import (
	"bytes"
	"context"
	"fmt"
	"github.com/hscells/ensemble/cookbook"
	"github.com/magiconair/properties"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"
)

// The test binary doubles as the program a recipe runs when the helper variable is set: it prints its arguments and
// exits with the requested status.
func TestMain(m *testing.M) {
	if os.Getenv("COOKBOOK_HELPER") == "1" {
		fmt.Println(strings.Join(os.Args[1:], " "))
		if d := os.Getenv("COOKBOOK_HELPER_SLEEP"); len(d) > 0 {
			s, _ := time.ParseDuration(d)
			time.Sleep(s)
		}
		code, _ := strconv.Atoi(os.Getenv("COOKBOOK_HELPER_EXIT"))
		os.Exit(code)
	}
	os.Exit(m.Run())
}

func TestLoad(t *testing.T) {
	r, err := cookbook.Load(filepath.Join("recipes", "heart.properties"))
	if err != nil {
		t.Fatal(err)
	}
	if r.Name != "heart" || len(r.Steps) != 2 {
		t.Fatalf("unexpected recipe %+v", r)
	}
	want := cookbook.Step{
		Name:    "train",
		Program: "/opt/ensemble/bin/ensemble_train",
		Args:    []string{"-D", "/opt/ensemble/test.db", "-d", "/opt/ensemble/cookbook/heart"},
	}
	if !reflect.DeepEqual(r.Steps[0], want) {
		t.Errorf("expected %+v, got %+v", want, r.Steps[0])
	}
	if r.Steps[1].Program != "/opt/ensemble/bin/ensemble_predict" {
		t.Errorf("unexpected predict step %+v", r.Steps[1])
	}
}

func TestParseInterpreter(t *testing.T) {
	p := properties.MustLoadString("interpreter = python\npath = /x/\ntrain = ${path}ensemble_train.py\npredict = ${path}ensemble_predict.py\ndata = d\ndb = db")
	r, err := cookbook.Parse("scripts", p)
	if err != nil {
		t.Fatal(err)
	}
	if s := r.Steps[0].String(); s != "python /x/ensemble_train.py -D db -d d" {
		t.Errorf("unexpected step %q", s)
	}
	if r.Name != "scripts" {
		t.Errorf("expected the given name, got %q", r.Name)
	}
}

func TestParseMissingKey(t *testing.T) {
	p := properties.MustLoadString("train = a\npredict = b\ndata = c")
	if _, err := cookbook.Parse("incomplete", p); err == nil {
		t.Error("expected an error for a recipe without a db")
	}
	if _, err := cookbook.Load("recipes/missing.properties"); err == nil {
		t.Error("expected an error for a missing recipe")
	}
}

func helperRecipe(t *testing.T) cookbook.Recipe {
	t.Setenv("COOKBOOK_HELPER", "1")
	p := properties.NewProperties()
	p.MustSet("interpreter", os.Args[0])
	p.MustSet("train", "train")
	p.MustSet("predict", "predict")
	p.MustSet("data", "heart")
	p.MustSet("db", "test.db")
	r, err := cookbook.Parse("helper", p)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestRecipeRun(t *testing.T) {
	r := helperRecipe(t)
	var buff bytes.Buffer
	if err := r.Run(context.Background(), &buff); err != nil {
		t.Fatal(err)
	}
	want := "helper: train\ntrain -D test.db -d heart\nhelper: predict\npredict -D test.db -d heart\n"
	if buff.String() != want {
		t.Errorf("expected %q, got %q", want, buff.String())
	}
}

func TestRunFailure(t *testing.T) {
	r := helperRecipe(t)
	t.Setenv("COOKBOOK_HELPER_EXIT", "3")
	var buff bytes.Buffer
	err := r.Run(context.Background(), &buff)
	if err == nil {
		t.Fatal("expected a non-zero exit to be an error")
	}
	if strings.Contains(buff.String(), "predict") {
		t.Error("expected the recipe to stop after the failed step")
	}
	// The output of the failed step is still written.
	if !strings.Contains(buff.String(), "train -D test.db -d heart") {
		t.Errorf("expected the failed step's output, got %q", buff.String())
	}
}

func TestRunMissingProgram(t *testing.T) {
	s := cookbook.Step{Name: "train", Program: filepath.Join(t.TempDir(), "ensemble_train")}
	if err := cookbook.Run(context.Background(), &bytes.Buffer{}, s); err == nil {
		t.Error("expected an error for a program that does not exist")
	}
}

func TestRunTimeout(t *testing.T) {
	r := helperRecipe(t)
	t.Setenv("COOKBOOK_HELPER_SLEEP", "10s")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := cookbook.Run(ctx, &bytes.Buffer{}, r.Steps[0]); err == nil {
		t.Error("expected the step to be killed")
	}
}
