// Package preprocessing implements the feature-domain stages of the light
// curve pipeline: Fourier magnitude extraction, Savitzky-Golay smoothing,
// per-row L2 normalization and outlier-robust scaling.
//
// The first three stages are stateless per-row transforms applied identically
// to the training and held-out matrices. RobustScaler is the only stage with
// fit state: its statistics are computed from the training matrix once and
// reused, frozen, on held-out data.
package preprocessing

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/parallel"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// FourierMagnitude replaces each flux row with the magnitude of its discrete
// Fourier transform. The full spectrum width is kept, including the mirrored
// half above the Nyquist frequency, so output width equals input width.
type FourierMagnitude struct{}

// NewFourierMagnitude creates a new FourierMagnitude transform.
func NewFourierMagnitude() *FourierMagnitude {
	return &FourierMagnitude{}
}

// Transform computes the magnitude spectrum of every row independently.
// No statistic is shared between rows or between calls.
func (f *FourierMagnitude) Transform(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "FourierMagnitude.Transform")
	}

	result := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, 8, func(start, end int) {
		// The FFT plan is not safe for concurrent use, so each worker
		// gets its own.
		fft := fourier.NewFFT(c)
		row := make([]float64, c)
		coeffs := make([]complex128, c/2+1)

		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			fft.Coefficients(coeffs, row)

			// The input is real, so the upper half of the spectrum
			// is the mirror of the lower half.
			for k := 0; k <= c/2; k++ {
				result.Set(i, k, cmplx.Abs(coeffs[k]))
			}
			for k := c/2 + 1; k < c; k++ {
				result.Set(i, k, result.At(i, c-k))
			}
		}
	})

	return result, nil
}
