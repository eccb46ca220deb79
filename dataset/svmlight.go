// Package dataset loads and partitions labelled feature vectors. Data is read from the sparse svmlight/libsvm
// text format and densified into gonum matrices.
package dataset

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"io"
	"os"
	"strconv"
	"strings"
)

type sparseRow struct {
	label  float64
	index  []int
	values []float64
}

// LoadSVMLightFile reads an svmlight formatted file from disk. nFeatures is as for LoadSVMLight.
func LoadSVMLightFile(path string, nFeatures int) (*mat.Dense, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	X, y, err := LoadSVMLight(f, nFeatures)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "loading %s", path)
	}
	return X, y, nil
}

// LoadSVMLight reads lines of the form
//
//	<label> [qid:<id>] <index>:<value> ... [# comment]
//
// into a dense feature matrix and a label vector. Indices are one-based unless an index of zero appears anywhere in
// the input, in which case all indices are taken as zero-based. When nFeatures is zero the width of the matrix is the
// largest index seen; otherwise indices beyond nFeatures are an error.
func LoadSVMLight(r io.Reader, nFeatures int) (*mat.Dense, []float64, error) {
	var (
		rows      []sparseRow
		minIndex  = -1
		maxIndex  = -1
		lineNo    int
		zeroBased bool
	)

	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for s.Scan() {
		lineNo++
		l := s.Text()

		// {line} # [comment]
		if i := strings.IndexByte(l, '#'); i >= 0 {
			l = l[:i]
		}
		fields := strings.Fields(l)
		if len(fields) == 0 {
			continue
		}

		label, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d: invalid label %q", lineNo, fields[0])
		}

		row := sparseRow{label: label}
		for _, tok := range fields[1:] {
			c := strings.IndexByte(tok, ':')
			if c <= 0 || c == len(tok)-1 {
				return nil, nil, errors.Errorf("line %d: malformed feature %q", lineNo, tok)
			}
			if tok[:c] == "qid" {
				continue
			}
			idx, err := strconv.Atoi(tok[:c])
			if err != nil || idx < 0 {
				return nil, nil, errors.Errorf("line %d: invalid feature index %q", lineNo, tok[:c])
			}
			v, err := strconv.ParseFloat(tok[c+1:], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "line %d: invalid feature value %q", lineNo, tok[c+1:])
			}
			if minIndex < 0 || idx < minIndex {
				minIndex = idx
			}
			if idx > maxIndex {
				maxIndex = idx
			}
			row.index = append(row.index, idx)
			row.values = append(row.values, v)
		}
		rows = append(rows, row)
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, errors.New("no samples in input")
	}

	zeroBased = minIndex == 0
	width := maxIndex
	if zeroBased {
		width = maxIndex + 1
	}
	if nFeatures > 0 {
		if width > nFeatures {
			return nil, nil, errors.Errorf("feature index %d exceeds %d features", maxIndex, nFeatures)
		}
		width = nFeatures
	}
	if width <= 0 {
		// Every row is empty; keep a single all-zero column so the matrix is valid.
		width = 1
	}

	X := mat.NewDense(len(rows), width, nil)
	y := make([]float64, len(rows))
	for i, row := range rows {
		y[i] = row.label
		for j, idx := range row.index {
			if !zeroBased {
				idx--
			}
			X.Set(i, idx, row.values[j])
		}
	}
	return X, y, nil
}

// WriteSVMLight writes X and y as one-based svmlight lines. Zero valued features are omitted.
func WriteSVMLight(w io.Writer, X mat.Matrix, y []float64) error {
	n, d := X.Dims()
	if n != len(y) {
		return errors.Errorf("%d rows but %d labels", n, len(y))
	}
	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		bw.WriteString(strconv.FormatFloat(y[i], 'g', -1, 64))
		for j := 0; j < d; j++ {
			v := X.At(i, j)
			if v == 0 {
				continue
			}
			fmt.Fprintf(bw, " %d:%s", j+1, strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
