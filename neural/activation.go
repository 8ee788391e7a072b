// Package neural implements the two trainable classifier families for light
// curve classification: a small fully-connected network consuming a flat
// feature vector and a 1-D convolutional network consuming the same row
// reinterpreted as a single-channel sequence.
//
// Both train with mini-batch Adam on binary cross-entropy, shuffle the
// training order every epoch, and evaluate the held-out pair at the end of
// each epoch into an append-only history.
package neural

import "math"

func sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func reluPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}
