package main

import (
	"bytes"
	"context"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/dataset"
	"github.com/hscells/ensemble/learning"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func fitted(t *testing.T) (string, string) {
	X := mat.NewDense(8, 3, []float64{
		0, 0, 1, 0.1, 0.2, 1, 0.2, 0.1, 1, 0.3, 0.3, 1,
		4, 4, 1, 4.1, 4.2, 1, 4.2, 4.1, 1, 4.3, 4.3, 1,
	})
	y := []float64{2, 2, 2, 2, 5, 5, 5, 5}

	models, err := learning.BuildModelLibrary([]learning.ModelType{learning.DTree}, 1)
	if err != nil {
		t.Fatal(err)
	}
	cfg := ensemble.DefaultConfig(t.TempDir())
	cfg.Verbose = false
	e, err := ensemble.New(models, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Fit(context.Background(), X, y); err != nil {
		t.Fatal(err)
	}
	if err := e.Save(); err != nil {
		t.Fatal(err)
	}

	// The last feature is all zeros in the test data, so it is not written.
	test := mat.NewDense(2, 3, []float64{0.1, 0.1, 0, 4.2, 4.2, 0})
	data := filepath.Join(t.TempDir(), "test")
	f, err := os.Create(data)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := dataset.WriteSVMLight(f, test, []float64{2, 5}); err != nil {
		t.Fatal(err)
	}
	return cfg.DBName, data
}

func TestRun(t *testing.T) {
	db, data := fitted(t)
	out := filepath.Join(t.TempDir(), "predictions")
	var buff bytes.Buffer
	if err := run([]string{"-D", db, "-d", data, "-o", out}, &buff); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buff.String(), "Test set accuracy from final ensemble: 1.00000") {
		t.Errorf("unexpected output:\n%s", buff.String())
	}
	b, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "2\n5\n" {
		t.Errorf("unexpected predictions %q", b)
	}
}

func TestRunProba(t *testing.T) {
	db, data := fitted(t)
	out := filepath.Join(t.TempDir(), "proba")
	if err := run([]string{"-D", db, "-d", data, "-o", out, "-P"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 2 || len(strings.Fields(lines[0])) != 2 {
		t.Errorf("unexpected probabilities %q", b)
	}
}

func TestRunWithoutEnsemble(t *testing.T) {
	_, data := fitted(t)
	if err := run([]string{"-D", t.TempDir(), "-d", data}, &bytes.Buffer{}); err == nil {
		t.Error("expected an error without a saved ensemble")
	}
}
