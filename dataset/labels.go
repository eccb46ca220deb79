package dataset

import (
	"github.com/pkg/errors"
	"github.com/xtgo/set"
	"sort"
	"strconv"
)

// LabelEncoder maps the distinct labels of a dataset onto the class indices 0..n-1 in ascending label order.
type LabelEncoder struct {
	Labels []float64
}

// NewLabelEncoder creates an encoder for the labels present in y.
func NewLabelEncoder(y []float64) LabelEncoder {
	l := make([]float64, len(y))
	copy(l, y)
	sort.Float64s(l)
	n := set.Uniq(sort.Float64Slice(l))
	return LabelEncoder{Labels: l[:n]}
}

// Len is the number of classes.
func (e LabelEncoder) Len() int {
	return len(e.Labels)
}

// Transform converts labels into class indices. Labels unseen by the encoder are an error.
func (e LabelEncoder) Transform(y []float64) ([]int, error) {
	c := make([]int, len(y))
	for i, v := range y {
		j := sort.SearchFloat64s(e.Labels, v)
		if j == len(e.Labels) || e.Labels[j] != v {
			return nil, errors.Errorf("unknown label %v", v)
		}
		c[i] = j
	}
	return c, nil
}

// Inverse converts class indices back into labels.
func (e LabelEncoder) Inverse(c []int) []float64 {
	y := make([]float64, len(c))
	for i, v := range c {
		y[i] = e.Labels[v]
	}
	return y
}

// Names formats each label for display.
func (e LabelEncoder) Names() []string {
	s := make([]string, len(e.Labels))
	for i, v := range e.Labels {
		s[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return s
}
