// Package store is the backing store of an ensemble: the out-of-fold predictions of each candidate model, and the
// encoded ensemble itself.
package store

import (
	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"path"
)

// ErrMiss is returned when a key is not in a store.
var ErrMiss = errors.New("store miss")

// PredictionStore models a way to store (either persistent or not) the prediction matrix of each candidate model.
type PredictionStore interface {
	Get(key string) (*mat.Dense, error)
	Set(key string, m *mat.Dense) error
}

// BlockTransform determines how diskv should partition folders.
func BlockTransform(blockSize int) func(string) []string {
	return func(s string) []string {
		var (
			sliceSize = len(s) / blockSize
			pathSlice = make([]string, sliceSize)
		)
		for i := 0; i < sliceSize; i++ {
			from, to := i*blockSize, (i*blockSize)+blockSize
			pathSlice[i] = s[from:to]
		}
		return pathSlice
	}
}

// Store keeps predictions and blobs under a base directory using diskv.
type Store struct {
	Base        string
	predictions *diskv.Diskv
	blobs       *diskv.Diskv
}

// Open creates a store rooted at base. Nothing is written until the first Set.
func Open(base string) *Store {
	return &Store{
		Base: base,
		predictions: diskv.New(diskv.Options{
			BasePath:     path.Join(base, "predictions"),
			Transform:    BlockTransform(2),
			CacheSizeMax: 64 * 1024 * 1024,
		}),
		blobs: diskv.New(diskv.Options{
			BasePath:  path.Join(base, "blobs"),
			Transform: func(string) []string { return []string{} },
		}),
	}
}

func (s *Store) Get(key string) (*mat.Dense, error) {
	if !s.predictions.Has(key) {
		return nil, ErrMiss
	}
	b, err := s.predictions.Read(key)
	if err != nil {
		return nil, errors.Wrapf(err, "reading predictions %s", key)
	}
	var m mat.Dense
	if err := m.UnmarshalBinary(b); err != nil {
		return nil, errors.Wrapf(err, "decoding predictions %s", key)
	}
	return &m, nil
}

func (s *Store) Set(key string, m *mat.Dense) error {
	b, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return s.predictions.Write(key, b)
}

// Reset erases every stored prediction matrix. Blobs are kept.
func (s *Store) Reset() error {
	return s.predictions.EraseAll()
}

// PutBlob stores an opaque value.
func (s *Store) PutBlob(key string, b []byte) error {
	return s.blobs.Write(key, b)
}

// Blob reads an opaque value written by PutBlob.
func (s *Store) Blob(key string) ([]byte, error) {
	if !s.blobs.Has(key) {
		return nil, ErrMiss
	}
	return s.blobs.Read(key)
}
