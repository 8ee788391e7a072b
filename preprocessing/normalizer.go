package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// Normalizer rescales each row to unit L2 norm. It is purely per-row: no fit
// state, applied independently to train and held-out matrices. All-zero rows
// are left unchanged.
type Normalizer struct{}

// NewNormalizer creates a new row normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Transform rescales every row of X to unit L2 norm.
func (n *Normalizer) Transform(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Normalizer.Transform")
	}

	result := mat.NewDense(r, c, nil)
	row := make([]float64, c)

	for i := 0; i < r; i++ {
		mat.Row(row, i, X)

		sumSq := 0.0
		for _, v := range row {
			sumSq += v * v
		}
		norm := math.Sqrt(sumSq)
		if norm == 0 {
			result.SetRow(i, row)
			continue
		}

		for j, v := range row {
			row[j] = v / norm
		}
		result.SetRow(i, row)
	}

	return result, nil
}
