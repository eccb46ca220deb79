package store

import (
	"github.com/hashicorp/golang-lru"
	"gonum.org/v1/gonum/mat"
)

type lruStore struct {
	inner PredictionStore
	cache *lru.Cache
}

func (l lruStore) Get(key string) (*mat.Dense, error) {
	if v, ok := l.cache.Get(key); ok {
		return v.(*mat.Dense), nil
	}
	m, err := l.inner.Get(key)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, m)
	return m, nil
}

func (l lruStore) Set(key string, m *mat.Dense) error {
	if err := l.inner.Set(key, m); err != nil {
		return err
	}
	l.cache.Add(key, m)
	return nil
}

// NewLRU places a read-through cache of at most size matrices in front of inner.
func NewLRU(inner PredictionStore, size int) (PredictionStore, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return lruStore{inner: inner, cache: c}, nil
}
