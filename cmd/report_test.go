package cmd_test

import (
	"bytes"
	"github.com/hscells/ensemble/cmd"
	"github.com/hscells/ensemble/dataset"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type constant []float64

func (c constant) Predict(X mat.Matrix) ([]float64, error) {
	return c, nil
}

func (c constant) BestModelPredict(X mat.Matrix) ([]float64, error) {
	return c, nil
}

func TestAccuracy(t *testing.T) {
	// Predicted labels need not appear in the truth.
	if a := cmd.Accuracy([]float64{1, 1, -1, -1}, []float64{1, 3, -1, 1}); math.Abs(a-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %v", a)
	}
}

func TestWriteAccuracies(t *testing.T) {
	X := mat.NewDense(2, 1, nil)
	var buff bytes.Buffer
	err := cmd.WriteAccuracies(&buff, constant{0, 1},
		cmd.Partition{Name: "Train", X: X, Y: []float64{0, 1}},
		cmd.Partition{Name: "Test", X: X, Y: []float64{0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(buff.String(), "\n")
	want := map[int]string{
		0: "Train set accuracy from best model: 1.00000",
		1: " Test set accuracy from best model: 0.50000",
		3: " Test set classification report for best model:",
	}
	for i, l := range want {
		if lines[i] != l {
			t.Errorf("line %d: expected %q, got %q", i, l, lines[i])
		}
	}
	for _, s := range []string{
		"\n\nTrain set accuracy from final ensemble: 1.00000\n Test set accuracy from final ensemble: 0.50000\n",
		" Test set classification report for final ensemble:\n",
	} {
		if !strings.Contains(buff.String(), s) {
			t.Errorf("expected %q in:\n%s", s, buff.String())
		}
	}
}

func TestParseHelp(t *testing.T) {
	var a cmd.EnsembleArgs
	var buff bytes.Buffer
	if err := cmd.Parse("test", &a, []string{"--help"}, &buff); err == nil {
		t.Error("expected the help request to be returned")
	}
	if !strings.Contains(buff.String(), "--prune") {
		t.Errorf("expected the flags in help, got %q", buff.String())
	}
}

func TestRandomSeed(t *testing.T) {
	seed := int64(9)
	if s := (cmd.EnsembleArgs{Seed: &seed}).RandomSeed(); s != 9 {
		t.Errorf("expected 9, got %d", s)
	}
}

func TestLoadDataLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := dataset.WriteSVMLight(f, mat.NewDense(2, 2, []float64{1, 0, 0, 1}), []float64{0, 1}); err != nil {
		t.Fatal(err)
	}
	f.Close()

	var buff bytes.Buffer
	X, _, err := cmd.LoadData(log.New(&buff, "", 0), path, 3)
	if err != nil {
		t.Fatal(err)
	}
	if _, d := X.Dims(); d != 3 {
		t.Errorf("expected 3 features, got %d", d)
	}
	if !strings.Contains(buff.String(), "loading "+path) {
		t.Errorf("expected a loading message, got %q", buff.String())
	}

	if cmd.NewLogger(false).Writer() != ioutil.Discard {
		t.Error("expected a quiet logger to discard messages")
	}
	if (cmd.EnsembleArgs{Verbose: true, Quiet: true}).Logger().Writer() != ioutil.Discard {
		t.Error("expected -q to silence progress messages")
	}
}
