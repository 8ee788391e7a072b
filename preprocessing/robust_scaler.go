package preprocessing

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// iqrEpsilon is the floor below which a column's interquartile range is
// considered degenerate.
const iqrEpsilon = 1e-8

// RobustScaler centres each column on its median and scales it by its
// interquartile range, reducing outlier sensitivity compared to mean/std
// scaling.
//
// Fit learns the statistics from the training matrix only; Transform applies
// them unchanged to any matrix of the same width. The statistics are fit
// exactly once per preprocessing run, before balancing, and never refit on
// synthetic rows.
type RobustScaler struct {
	state *model.StateManager

	// Center is the per-column median.
	Center []float64

	// Scale is the per-column interquartile range (Q3 - Q1).
	Scale []float64

	// NFeatures is the column count seen during Fit.
	NFeatures int

	// ErrorOnDegenerate makes Fit fail on a column whose IQR collapses to
	// zero. When false, such columns get unit scale so constant features
	// come out centred at zero instead of producing non-finite values.
	ErrorOnDegenerate bool
}

// NewRobustScaler creates a RobustScaler with the unit-scale fallback for
// degenerate columns.
func NewRobustScaler() *RobustScaler {
	return &RobustScaler{state: model.NewStateManager()}
}

// IsFitted returns whether Fit has been called.
func (s *RobustScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// Fit computes per-column median and IQR from the training matrix.
func (s *RobustScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "RobustScaler.Fit")
	}

	s.NFeatures = c
	s.Center = make([]float64, c)
	s.Scale = make([]float64, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			col[i] = X.At(i, j)
		}
		sort.Float64s(col)

		s.Center[j] = quantileSorted(col, 0.5)
		iqr := quantileSorted(col, 0.75) - quantileSorted(col, 0.25)

		if iqr < iqrEpsilon {
			if s.ErrorOnDegenerate {
				return errors.NewDegenerateColumnError("RobustScaler.Fit", j, "IQR")
			}
			s.Scale[j] = 1.0
		} else {
			s.Scale[j] = iqr
		}
	}

	s.state.SetDimensions(c, r)
	s.state.SetFitted()
	return nil
}

// Transform applies the fitted statistics: (x - median) / IQR per column.
func (s *RobustScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.state.IsFitted() {
		return nil, errors.NewNotTrainedError("RobustScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewShapeMismatchError("RobustScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Center[j])/s.Scale[j])
		}
	}

	if err := errors.CheckMatrix("RobustScaler.Transform", result, r, c, 0); err != nil {
		return nil, err
	}

	return result, nil
}

// FitTransform fits on X and transforms the same matrix.
func (s *RobustScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// String returns a description of the scaler.
func (s *RobustScaler) String() string {
	if !s.state.IsFitted() {
		return "RobustScaler()"
	}
	return fmt.Sprintf("RobustScaler(n_features=%d)", s.NFeatures)
}

// quantileSorted returns the p-quantile of sorted data using linear
// interpolation between order statistics, matching numpy's default.
func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
