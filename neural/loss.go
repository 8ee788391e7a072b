package neural

import "math"

// bceEpsilon clamps probabilities away from 0 and 1 so the log stays finite.
const bceEpsilon = 1e-12

// bceLoss returns the binary cross-entropy for one prediction.
func bceLoss(yTrue, p float64) float64 {
	p = math.Min(math.Max(p, bceEpsilon), 1-bceEpsilon)
	return -(yTrue*math.Log(p) + (1-yTrue)*math.Log(1-p))
}

// bceSigmoidGrad returns dL/dz for a sigmoid output unit under binary
// cross-entropy, where z is the pre-activation. The two derivatives cancel
// into this simple residual.
func bceSigmoidGrad(yTrue, p float64) float64 {
	return p - yTrue
}
