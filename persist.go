package ensemble

import (
	"bytes"
	"encoding/gob"
	"github.com/hscells/ensemble/dataset"
	"github.com/hscells/ensemble/store"
	"github.com/pkg/errors"
	"io/ioutil"
	"log"
)

const ensembleKey = "ensemble"

// saved is the encoded form of a fitted ensemble.
type saved struct {
	RunID         string
	Features      int
	Config        Config
	Labels        []float64
	Members       []Member
	Best          Member
	BestScore     float64
	EnsembleScore float64
}

// Save encodes the fitted ensemble into the backing store.
func (e *EnsembleSelectionClassifier) Save() error {
	if err := e.mustBeFitted(); err != nil {
		return err
	}
	var buff bytes.Buffer
	enc := gob.NewEncoder(&buff)
	err := enc.Encode(saved{
		RunID:         e.RunID,
		Features:      e.Features,
		Config:        e.Config,
		Labels:        e.classes.Labels,
		Members:       e.members,
		Best:          e.best,
		BestScore:     e.bestScore,
		EnsembleScore: e.ensembleScore,
	})
	if err != nil {
		return errors.Wrap(err, "encoding ensemble")
	}
	return e.store.PutBlob(ensembleKey, buff.Bytes())
}

// Load restores the ensemble last saved in the backing store at dbName. The loaded ensemble can predict but carries
// no candidate library.
func Load(dbName string) (*EnsembleSelectionClassifier, error) {
	s := store.Open(dbName)
	b, err := s.Blob(ensembleKey)
	if err == store.ErrMiss {
		return nil, errors.Errorf("no ensemble saved in %s", dbName)
	} else if err != nil {
		return nil, err
	}

	var v saved
	dec := gob.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decoding ensemble")
	}
	if len(v.Members) == 0 || v.Best.Model == nil {
		return nil, errors.Errorf("ensemble saved in %s has no models", dbName)
	}

	e := &EnsembleSelectionClassifier{
		Config:        v.Config,
		RunID:         v.RunID,
		Features:      v.Features,
		Logger:        log.New(ioutil.Discard, "", 0),
		store:         s,
		classes:       dataset.LabelEncoder{Labels: v.Labels},
		members:       v.Members,
		best:          v.Best,
		bestScore:     v.BestScore,
		ensembleScore: v.EnsembleScore,
		fitted:        true,
	}
	e.Config.DBName = dbName
	return e, nil
}
