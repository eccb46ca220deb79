package main

import (
	"bytes"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/dataset"
	"gonum.org/v1/gonum/mat"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	X := mat.NewDense(12, 2, []float64{
		0, 0, 0.2, 0.1, 0.1, 0.3, 0.3, 0.2, 0.2, 0.4, 0.4, 0.1,
		3, 3, 3.2, 3.1, 3.1, 3.3, 3.3, 3.2, 3.2, 3.4, 3.4, 3.1,
	})
	y := []float64{0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1}
	data := filepath.Join(t.TempDir(), "data")
	f, err := os.Create(data)
	if err != nil {
		t.Fatal(err)
	}
	if err := dataset.WriteSVMLight(f, X, y); err != nil {
		t.Fatal(err)
	}
	f.Close()

	db := t.TempDir()
	var buff bytes.Buffer
	if err := run([]string{"-D", db, "-d", data, "-s", "1", "-b", "4", "-q"}, &buff); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buff.String(), "Train set accuracy from final ensemble: 1.00000") {
		t.Errorf("unexpected output:\n%s", buff.String())
	}

	e, err := ensemble.Load(db)
	if err != nil {
		t.Fatal(err)
	}
	if e.Features != 2 || len(e.Members()) == 0 {
		t.Errorf("unexpected saved ensemble with %d features and %d members", e.Features, len(e.Members()))
	}
}
