// Package dataset loads light-curve tables from CSV files. The expected
// layout is the Kaggle exoplanet format: the label in the first column
// (2 for a confirmed exoplanet host, 1 otherwise) followed by the flux
// series, one star per row, with an optional header row.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// LoadTable reads a CSV table into a feature matrix and a 0/1 label vector.
// Source labels 1 and 2 are remapped to 0 and 1. A header row is detected
// by a non-numeric first cell and skipped.
func LoadTable(path string) (*mat.Dense, *mat.VecDense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dataset.LoadTable")
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrap(err, "dataset.LoadTable")
	}
	if len(records) == 0 {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "dataset.LoadTable")
	}

	start := 0
	if _, err := strconv.ParseFloat(records[0][0], 64); err != nil {
		start = 1
	}
	if start >= len(records) {
		return nil, nil, errors.Wrap(errors.ErrEmptyData, "dataset.LoadTable")
	}

	rows := len(records) - start
	cols := len(records[start]) - 1
	if cols < 1 {
		return nil, nil, errors.NewInsufficientDataError("dataset.LoadTable", 2, cols+1, "columns")
	}

	X := mat.NewDense(rows, cols, nil)
	raw := make([]float64, rows)

	for i := 0; i < rows; i++ {
		record := records[start+i]
		if len(record) != cols+1 {
			return nil, nil, errors.NewShapeMismatchError("dataset.LoadTable", cols+1, len(record), 1)
		}

		label, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, errors.NewValueError("dataset.LoadTable",
				fmt.Sprintf("row %d: label %q is not numeric", i+start+1, record[0]))
		}
		if label != 0 && label != 1 && label != 2 {
			return nil, nil, errors.NewValueError("dataset.LoadTable",
				fmt.Sprintf("row %d: label %v is not in {0, 1, 2}", i+start+1, label))
		}
		raw[i] = label

		for j := 1; j <= cols; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, errors.NewValueError("dataset.LoadTable",
					fmt.Sprintf("row %d column %d: %q is not numeric", i+start+1, j+1, record[j]))
			}
			X.Set(i, j-1, v)
		}
	}
	return X, remapLabels(raw), nil
}

// remapLabels maps the source encoding {1, 2} onto {0, 1}. The encoding is
// detected per file by the absence of any 0 label: a 0 can only come from an
// already-binary file, while a {1, 2} file never contains one. Keying on the
// absence of 0 rather than the presence of 2 keeps an all-negative shifted
// file (every label 1) from passing through as all-positive.
func remapLabels(raw []float64) *mat.VecDense {
	shifted := true
	for _, v := range raw {
		if v == 0 {
			shifted = false
			break
		}
	}

	y := mat.NewVecDense(len(raw), nil)
	for i, v := range raw {
		if shifted {
			v--
		}
		y.SetVec(i, v)
	}
	return y
}
