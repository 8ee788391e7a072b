package model

import (
	"gonum.org/v1/gonum/mat"
)

// Transformer is a stateless feature-domain transform. It is applied
// identically and independently to the training and held-out matrices; no
// statistic learned from one carries over to the other.
type Transformer interface {
	Transform(X mat.Matrix) (*mat.Dense, error)
}

// FittedTransformer learns statistics from the training matrix once and then
// applies them, frozen, to any matrix of the same width.
type FittedTransformer interface {
	Fit(X mat.Matrix) error
	Transform(X mat.Matrix) (*mat.Dense, error)
	FitTransform(X mat.Matrix) (*mat.Dense, error)
}

// History is the per-epoch training record. All four slices share the same
// length, one entry per completed epoch, appended in order and never mutated
// after training ends.
type History struct {
	Loss        []float64
	Accuracy    []float64
	ValLoss     []float64
	ValAccuracy []float64
}

// Epochs returns the number of completed epochs.
func (h *History) Epochs() int {
	return len(h.Loss)
}

// Classifier is the trainable-classifier capability set. Build constructs the
// layer stack for a given input width; Fit consumes adapted tensors and
// validates against the held-out pair at every epoch.
type Classifier interface {
	// Build initializes the network for the given input width. Must be
	// called before Fit.
	Build(inputWidth int) error

	// Fit trains for the given number of epochs with mini-batches of
	// batchSize, shuffling the training order every epoch and evaluating
	// valX/valY at the end of each epoch.
	Fit(X *mat.Dense, y *mat.VecDense, batchSize, epochs int, valX *mat.Dense, valY *mat.VecDense) (*History, error)

	// PredictProba returns the positive-class probability for every row,
	// each in [0, 1].
	PredictProba(X *mat.Dense) (*mat.VecDense, error)

	// Evaluate returns the mean binary cross-entropy loss and the accuracy
	// at the 0.5 threshold over the given pair.
	Evaluate(X *mat.Dense, y *mat.VecDense) (loss, accuracy float64, err error)

	// Name identifies the classifier family for logs and the run store.
	Name() string
}

// Persistable classifiers can save their weights to a file and restore them.
type Persistable interface {
	Save(path string) error
	Load(path string) error
}
