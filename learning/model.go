// Package learning contains the candidate classifiers that make up a model library, and the machinery for
// expanding parameter grids into that library.
package learning

import (
	"encoding/gob"
	"fmt"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"strings"
)

// Classifier is a probabilistic classifier over class indices 0..nClasses-1. A training set may not contain every
// class, but the columns of PredictProba always span nClasses and every row sums to one.
type Classifier interface {
	// Fit must train the classifier on the rows of X.
	Fit(X mat.Matrix, y []int, nClasses int) error
	// PredictProba must return a len(X)×nClasses matrix of class probabilities.
	PredictProba(X mat.Matrix) *mat.Dense
}

// ModelType names a family of candidate models.
type ModelType string

const (
	SVC    ModelType = "svc"
	SGD    ModelType = "sgd"
	GBC    ModelType = "gbc"
	DTree  ModelType = "dtree"
	Forest ModelType = "forest"
	Extra  ModelType = "extra"
	KMP    ModelType = "kmp"
)

// ModelTypes lists every model family that can be placed in a library.
var ModelTypes = []ModelType{SVC, SGD, GBC, DTree, Forest, Extra, KMP}

// UnmarshalText accepts only the names in ModelTypes.
func (m *ModelType) UnmarshalText(b []byte) error {
	for _, t := range ModelTypes {
		if string(t) == string(b) {
			*m = t
			return nil
		}
	}
	names := make([]string, len(ModelTypes))
	for i, t := range ModelTypes {
		names[i] = string(t)
	}
	return errors.Errorf("invalid model type %q (choose from %s)", string(b), strings.Join(names, ", "))
}

// Candidate is an unfitted model: a family, a point in its parameter grid, and a random seed. Each call to New
// returns a fresh classifier, so a candidate can be fitted once per cross-validation fold.
type Candidate struct {
	Type   ModelType
	Params Params
	Seed   int64
}

// New constructs a classifier from the candidate's parameters.
func (c Candidate) New() (Classifier, error) {
	var (
		clf Classifier
		err error
	)
	switch c.Type {
	case DTree:
		p := defaultTreeParams()
		err = decode(c.Params, &p)
		clf = NewDecisionTree(p, c.Seed)
	case Forest:
		p := defaultForestParams()
		err = decode(c.Params, &p)
		clf = NewRandomForest(p, c.Seed)
	case Extra:
		p := defaultForestParams()
		err = decode(c.Params, &p)
		clf = NewExtraTrees(p, c.Seed)
	case GBC:
		p := defaultBoostingParams()
		err = decode(c.Params, &p)
		clf = NewGradientBoosting(p, c.Seed)
	case SGD:
		p := defaultSGDParams()
		err = decode(c.Params, &p)
		clf = NewSGD(p, c.Seed)
	case SVC:
		p := defaultSVCParams()
		err = decode(c.Params, &p)
		clf = NewSVC(p, c.Seed)
	case KMP:
		p := defaultKMPParams()
		err = decode(c.Params, &p)
		clf = NewKMeansLogistic(p, c.Seed)
	default:
		return nil, errors.Errorf("unknown model type %q", string(c.Type))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding parameters of %s", c)
	}
	return clf, nil
}

func (c Candidate) String() string {
	return fmt.Sprintf("%s(%s)", c.Type, c.Params)
}

func decode(params Params, v interface{}) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      v,
	})
	if err != nil {
		return err
	}
	return d.Decode(map[string]interface{}(params))
}

func init() {
	gob.Register(&DecisionTree{})
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
	gob.Register(&SGDClassifier{})
	gob.Register(&SVClassifier{})
	gob.Register(&KMeansLogistic{})
}
