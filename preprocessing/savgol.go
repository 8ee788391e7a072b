package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/parallel"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// SavitzkyGolay smooths each row with a sliding-window least-squares
// polynomial fit, which flattens high-frequency noise while preserving
// transit-dip shape far better than a moving average.
//
// Interior points use the central convolution coefficients; the first and
// last half-window points are filled by evaluating the polynomial fitted to
// the first and last full window at the edge positions.
type SavitzkyGolay struct {
	Window int
	Degree int

	// proj maps a window of samples to the fitted polynomial
	// coefficients: (degree+1) x window.
	proj *mat.Dense

	// central holds the convolution weights for the window midpoint.
	central []float64
}

// NewSavitzkyGolay creates a smoothing filter with the given window length
// and polynomial degree. The window must be odd and larger than the degree.
func NewSavitzkyGolay(window, degree int) (*SavitzkyGolay, error) {
	if window < 3 || window%2 == 0 {
		return nil, errors.NewConfigError("SmoothWindow", "must be odd and >= 3", window)
	}
	if degree < 0 || degree >= window {
		return nil, errors.NewConfigError("SmoothDegree", "must be non-negative and smaller than the window", degree)
	}

	sg := &SavitzkyGolay{Window: window, Degree: degree}
	if err := sg.computeProjection(); err != nil {
		return nil, err
	}
	return sg, nil
}

// computeProjection builds proj = (A^T A)^-1 A^T for the Vandermonde matrix A
// over window positions centred at zero.
func (sg *SavitzkyGolay) computeProjection() error {
	w := sg.Window
	nc := sg.Degree + 1
	half := w / 2

	a := mat.NewDense(w, nc, nil)
	for i := 0; i < w; i++ {
		t := float64(i - half)
		p := 1.0
		for k := 0; k < nc; k++ {
			a.Set(i, k, p)
			p *= t
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)

	var ataInv mat.Dense
	if err := ataInv.Inverse(&ata); err != nil {
		return errors.Wrap(err, "SavitzkyGolay: singular normal equations")
	}

	proj := mat.NewDense(nc, w, nil)
	proj.Mul(&ataInv, a.T())
	sg.proj = proj

	// The smoothed midpoint value is the constant term of the fit.
	sg.central = make([]float64, w)
	for j := 0; j < w; j++ {
		sg.central[j] = proj.At(0, j)
	}

	return nil
}

// Transform smooths every row independently. Rows shorter than the window
// are a configuration error and fail fast.
func (sg *SavitzkyGolay) Transform(X mat.Matrix) (*mat.Dense, error) {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "SavitzkyGolay.Transform")
	}
	if c < sg.Window {
		return nil, errors.NewInsufficientDataError("SavitzkyGolay.Transform", sg.Window, c, "samples per row")
	}

	result := mat.NewDense(r, c, nil)
	half := sg.Window / 2
	nc := sg.Degree + 1

	parallel.ParallelizeWithThreshold(r, 8, func(start, end int) {
		row := make([]float64, c)
		coeffs := make([]float64, nc)

		for i := start; i < end; i++ {
			mat.Row(row, i, X)

			// Interior points: convolution with the central weights.
			for j := half; j < c-half; j++ {
				s := 0.0
				for k := 0; k < sg.Window; k++ {
					s += sg.central[k] * row[j-half+k]
				}
				result.Set(i, j, s)
			}

			// Left edge: evaluate the polynomial fitted to the first
			// window at positions before its midpoint.
			sg.fitWindow(row[:sg.Window], coeffs)
			for j := 0; j < half; j++ {
				result.Set(i, j, evalPoly(coeffs, float64(j-half)))
			}

			// Right edge: same with the last window, positions after
			// its midpoint.
			sg.fitWindow(row[c-sg.Window:], coeffs)
			for j := c - half; j < c; j++ {
				t := float64(j - (c - 1 - half))
				result.Set(i, j, evalPoly(coeffs, t))
			}
		}
	})

	return result, nil
}

// fitWindow computes the polynomial coefficients for one window of samples.
func (sg *SavitzkyGolay) fitWindow(window []float64, coeffs []float64) {
	for k := range coeffs {
		s := 0.0
		for j, v := range window {
			s += sg.proj.At(k, j) * v
		}
		coeffs[k] = s
	}
}

// evalPoly evaluates a polynomial with the given coefficients at t using
// Horner's rule.
func evalPoly(coeffs []float64, t float64) float64 {
	s := 0.0
	for k := len(coeffs) - 1; k >= 0; k-- {
		s = s*t + coeffs[k]
	}
	return s
}
