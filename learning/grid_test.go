package learning_test

import (
	"github.com/hscells/ensemble/learning"
	"testing"
)

func TestGridIter(t *testing.T) {
	g := learning.Grid{
		"b": {1, 2, 3},
		"a": {"x", "y"},
	}
	params := g.Iter()
	if len(params) != 6 {
		t.Fatalf("expected 6 parameter sets, got %d", len(params))
	}
	// Names are sorted and the last one varies fastest.
	want := []string{
		"a=x, b=1", "a=x, b=2", "a=x, b=3",
		"a=y, b=1", "a=y, b=2", "a=y, b=3",
	}
	for i, p := range params {
		if p.String() != want[i] {
			t.Errorf("parameter set %d: expected %q, got %q", i, want[i], p.String())
		}
	}
}

func TestGridIterEmptyValues(t *testing.T) {
	g := learning.Grid{"a": {1, 2}, "b": {}}
	if n := len(g.Iter()); n != 0 {
		t.Errorf("expected no parameter sets, got %d", n)
	}
}

func TestGridsIter(t *testing.T) {
	gs := learning.Grids{
		{"kernel": {"linear"}, "C": {1, 10}},
		{"kernel": {"rbf"}, "C": {1, 10}, "gamma": {0.1, 1}},
	}
	if n := len(gs.Iter()); n != 6 {
		t.Errorf("expected 6 parameter sets, got %d", n)
	}
}

func TestBuildModelLibrary(t *testing.T) {
	library, err := learning.BuildModelLibrary([]learning.ModelType{learning.DTree}, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(library) != 120 {
		t.Errorf("expected 120 decision trees, got %d", len(library))
	}
	for _, c := range library {
		if c.Type != learning.DTree || c.Seed != 42 {
			t.Fatalf("unexpected candidate %v", c)
		}
		if _, err := c.New(); err != nil {
			t.Fatal(err)
		}
	}

	all, err := learning.BuildModelLibrary(learning.ModelTypes, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range all {
		if _, err := c.New(); err != nil {
			t.Errorf("%s: %v", c, err)
		}
	}
}

func TestBuildModelLibraryErrors(t *testing.T) {
	if _, err := learning.BuildModelLibrary([]learning.ModelType{"bayes"}, 1); err == nil {
		t.Error("expected an error for an unknown model type")
	}
	if _, err := learning.BuildModelLibrary(nil, 1); err == nil {
		t.Error("expected an error for an empty library")
	}
}

func TestModelTypeUnmarshalText(t *testing.T) {
	var m learning.ModelType
	if err := m.UnmarshalText([]byte("forest")); err != nil || m != learning.Forest {
		t.Errorf("expected forest, got %q (%v)", m, err)
	}
	if err := m.UnmarshalText([]byte("bayes")); err == nil {
		t.Error("expected an error for an unknown model type")
	}
}

func TestCandidateBadParams(t *testing.T) {
	c := learning.Candidate{Type: learning.DTree, Params: learning.Params{"depth": 3}}
	if _, err := c.New(); err == nil {
		t.Error("expected an error for an unused parameter")
	}
	c = learning.Candidate{Type: learning.SVC, Params: learning.Params{"C": "large"}}
	if _, err := c.New(); err == nil {
		t.Error("expected an error for a mistyped parameter")
	}
	c = learning.Candidate{Type: "bayes"}
	if _, err := c.New(); err == nil {
		t.Error("expected an error for an unknown model type")
	}
}
