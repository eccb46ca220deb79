package cmd

import (
	"fmt"
	"github.com/hscells/ensemble"
	"github.com/hscells/ensemble/dataset"
	"github.com/hscells/ensemble/eval"
	"gonum.org/v1/gonum/mat"
	"io"
	"log"
)

// encode maps the labels of both the truth and the predictions onto class indices, since a test set may hold labels
// never seen in training.
func encode(y, pred []float64) ([]int, []int, []string) {
	all := make([]float64, 0, len(y)+len(pred))
	all = append(all, y...)
	all = append(all, pred...)
	enc := dataset.NewLabelEncoder(all)
	a, _ := enc.Transform(y)
	b, _ := enc.Transform(pred)
	return a, b, enc.Names()
}

// Accuracy is the fraction of predictions equal to the truth.
func Accuracy(y, pred []float64) float64 {
	a, b, _ := encode(y, pred)
	return eval.AccuracyScore(a, b)
}

// Report is the classification report of the predictions.
func Report(y, pred []float64) string {
	a, b, names := encode(y, pred)
	return eval.ClassificationReport(a, b, names)
}

// LoadData reads a dataset in svmlight format. A positive nFeatures fixes the width of the feature matrix.
func LoadData(logger *log.Logger, path string, nFeatures int) (*mat.Dense, []float64, error) {
	logger.Printf("loading %s\n", path)
	X, y, err := dataset.LoadSVMLightFile(path, nFeatures)
	if err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

// Predictor is the part of a fitted ensemble used for reporting.
type Predictor interface {
	Predict(X mat.Matrix) ([]float64, error)
	BestModelPredict(X mat.Matrix) ([]float64, error)
}

var _ Predictor = (*ensemble.EnsembleSelectionClassifier)(nil)

// Partition is a named set of labelled rows.
type Partition struct {
	Name string
	X    mat.Matrix
	Y    []float64
}

// WriteAccuracies writes the accuracy of the best model and then of the final ensemble on each partition. The
// classification reports of the last partition follow each block of accuracies.
func WriteAccuracies(w io.Writer, e Predictor, partitions ...Partition) error {
	if len(partitions) == 0 {
		return nil
	}
	blocks := []struct {
		name    string
		predict func(mat.Matrix) ([]float64, error)
		prefix  string
	}{
		{"best model", e.BestModelPredict, ""},
		{"final ensemble", e.Predict, "\n"},
	}

	width := 0
	for _, p := range partitions {
		if len(p.Name) > width {
			width = len(p.Name)
		}
	}

	for _, b := range blocks {
		var preds []float64
		for i, p := range partitions {
			pred, err := b.predict(p.X)
			if err != nil {
				return err
			}
			prefix := ""
			if i == 0 {
				prefix = b.prefix
			}
			if _, err := fmt.Fprintf(w, "%s%*s set accuracy from %s: %.5f\n", prefix, width, p.Name, b.name, Accuracy(p.Y, pred)); err != nil {
				return err
			}
			preds = pred
		}
		last := partitions[len(partitions)-1]
		if _, err := fmt.Fprintf(w, "\n%*s set classification report for %s:\n%s\n", width, last.Name, b.name, Report(last.Y, preds)); err != nil {
			return err
		}
	}
	return nil
}
