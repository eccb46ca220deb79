package store_test

import (
	"github.com/hscells/ensemble/store"
	"gonum.org/v1/gonum/mat"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestBlockTransform(t *testing.T) {
	got := store.BlockTransform(2)("000123")
	if !reflect.DeepEqual(got, []string{"00", "01", "23"}) {
		t.Errorf("unexpected partition %v", got)
	}
	if got := store.BlockTransform(4)("abc"); len(got) != 0 {
		t.Errorf("expected no folders for a short key, got %v", got)
	}
}

func testPredictionStore(t *testing.T, s store.PredictionStore) {
	t.Helper()
	if _, err := s.Get("0001"); err != store.ErrMiss {
		t.Fatalf("expected a miss, got %v", err)
	}
	m := mat.NewDense(2, 3, []float64{0.1, 0.2, 0.7, 0.5, 0.5, 0})
	if err := s.Set("0001", m); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("0001")
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(got, m) {
		t.Errorf("expected %v, got %v", mat.Formatted(m), mat.Formatted(got))
	}
}

func TestDiskStore(t *testing.T) {
	s := store.Open(t.TempDir())
	testPredictionStore(t, s)

	if err := s.Set("0002", mat.NewDense(1, 1, []float64{1})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("0002"); err != nil {
		t.Fatal(err)
	}

	if err := s.PutBlob("ensemble", []byte("fitted")); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("0001"); err != store.ErrMiss {
		t.Errorf("expected predictions to be erased, got %v", err)
	}
	b, err := s.Blob("ensemble")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "fitted" {
		t.Errorf("expected blob to survive a reset, got %q", b)
	}
	if _, err := s.Blob("missing"); err != store.ErrMiss {
		t.Errorf("expected a miss, got %v", err)
	}
}

func TestDiskStorePersists(t *testing.T) {
	dir := t.TempDir()
	m := mat.NewDense(1, 2, []float64{0.25, 0.75})
	if err := store.Open(dir).Set("0003", m); err != nil {
		t.Fatal(err)
	}
	got, err := store.Open(dir).Get("0003")
	if err != nil {
		t.Fatal(err)
	}
	if !mat.Equal(got, m) {
		t.Errorf("expected %v, got %v", mat.Formatted(m), mat.Formatted(got))
	}
}

// Read failures other than a missing key are reported, not turned into misses.
func TestDiskStoreCorrupt(t *testing.T) {
	dir := t.TempDir()
	s := store.Open(dir)
	if err := s.Set("0004", mat.NewDense(1, 1, []float64{1})); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(filepath.Join(dir, "predictions", "00", "04", "0004"), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := store.Open(dir).Get("0004")
	if err == nil || err == store.ErrMiss {
		t.Fatalf("expected a decoding error, got %v", err)
	}
	if !strings.Contains(err.Error(), "0004") {
		t.Errorf("expected the key in %q", err)
	}
}

func TestLRU(t *testing.T) {
	inner := store.Open(t.TempDir())
	s, err := store.NewLRU(inner, 1)
	if err != nil {
		t.Fatal(err)
	}
	testPredictionStore(t, s)

	// Values written through the cache reach the inner store.
	if _, err := inner.Get("0001"); err != nil {
		t.Error(err)
	}
	// Evicted values are read back from the inner store.
	if err := s.Set("0002", mat.NewDense(1, 1, []float64{2})); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("0001"); err != nil {
		t.Error(err)
	}

	if _, err := store.NewLRU(inner, 0); err == nil {
		t.Error("expected an error for an empty cache")
	}
}
