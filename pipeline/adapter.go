package pipeline

import (
	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// Layout tags how a classifier family reads the feature matrix.
type Layout int

const (
	// LayoutFlat feeds each row as one flat feature vector.
	LayoutFlat Layout = iota
	// LayoutSequence feeds each row as a single-channel 1-D sequence.
	LayoutSequence
)

func (l Layout) String() string {
	switch l {
	case LayoutFlat:
		return "flat"
	case LayoutSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// AdaptedTensor is a feature matrix tagged with the layout a classifier
// family expects. Values are never altered by adaptation; a sequence view
// of row i is exactly row i of X read left to right.
type AdaptedTensor struct {
	Layout   Layout
	X        *mat.Dense
	SeqLen   int
	Channels int
}

// AdaptFlat tags X for the dense family.
func AdaptFlat(X *mat.Dense) (*AdaptedTensor, error) {
	_, c := X.Dims()
	if c <= 0 {
		return nil, errors.NewConfigError("FeatureMatrix", "row length must be positive", c)
	}
	return &AdaptedTensor{Layout: LayoutFlat, X: X, SeqLen: c, Channels: 1}, nil
}

// AdaptSequence tags X for the convolutional family: each row becomes one
// sequence of length columns with one channel.
func AdaptSequence(X *mat.Dense) (*AdaptedTensor, error) {
	_, c := X.Dims()
	if c <= 0 {
		return nil, errors.NewConfigError("FeatureMatrix", "row length must be positive", c)
	}
	return &AdaptedTensor{Layout: LayoutSequence, X: X, SeqLen: c, Channels: 1}, nil
}
