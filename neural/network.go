package neural

import (
	"log/slog"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/log"
)

// batchNet is the per-sample contract the shared fitting loop drives. Both
// classifier families implement it.
type batchNet interface {
	// predictRow runs a forward pass for one feature row.
	predictRow(row []float64) float64

	// trainBatch runs forward, backward and one optimizer step over the
	// given row indices, returning the summed loss and the number of
	// correct thresholded predictions before the update.
	trainBatch(X *mat.Dense, y *mat.VecDense, idx []int) (lossSum float64, correct int)
}

// newRNG seeds a generator; a zero seed means non-deterministic.
func newRNG(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
}

// validateFitArgs checks the shared Fit preconditions. Validation data is
// required: there is no held-out-free training mode.
func validateFitArgs(op string, inputWidth int, X *mat.Dense, y *mat.VecDense, batchSize, epochs int, valX *mat.Dense, valY *mat.VecDense) error {
	if batchSize <= 0 {
		return errors.NewConfigError("BatchSize", "must be positive", batchSize)
	}
	if epochs <= 0 {
		return errors.NewConfigError("Epochs", "must be positive", epochs)
	}
	if valX == nil || valY == nil {
		return errors.NewConfigError("ValidationData", "required at every epoch", nil)
	}

	r, c := X.Dims()
	if r == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if c != inputWidth {
		return errors.NewShapeMismatchError(op, inputWidth, c, 1)
	}
	if y.Len() != r {
		return errors.NewShapeMismatchError(op, r, y.Len(), 0)
	}

	vr, vc := valX.Dims()
	if vc != inputWidth {
		return errors.NewShapeMismatchError(op, inputWidth, vc, 1)
	}
	if valY.Len() != vr {
		return errors.NewShapeMismatchError(op, vr, valY.Len(), 0)
	}
	return nil
}

// fitLoop runs the shared mini-batch training loop: shuffle every epoch,
// step per batch, evaluate the validation pair at every epoch end.
func fitLoop(name string, net batchNet, rng *rand.Rand, X *mat.Dense, y *mat.VecDense, batchSize, epochs int, valX *mat.Dense, valY *mat.VecDense) *model.History {
	r, _ := X.Dims()
	history := &model.History{}

	indices := make([]int, r)
	for i := range indices {
		indices[i] = i
	}

	for epoch := 0; epoch < epochs; epoch++ {
		rng.Shuffle(r, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		lossSum := 0.0
		correct := 0
		for start := 0; start < r; start += batchSize {
			end := start + batchSize
			if end > r {
				end = r
			}
			l, c := net.trainBatch(X, y, indices[start:end])
			lossSum += l
			correct += c
		}

		trainLoss := lossSum / float64(r)
		trainAcc := float64(correct) / float64(r)
		valLoss, valAcc := evaluateNet(net, valX, valY)

		history.Loss = append(history.Loss, trainLoss)
		history.Accuracy = append(history.Accuracy, trainAcc)
		history.ValLoss = append(history.ValLoss, valLoss)
		history.ValAccuracy = append(history.ValAccuracy, valAcc)

		slog.Debug("epoch complete",
			log.ModelNameKey, name,
			log.EpochKey, epoch+1,
			log.LossKey, trainLoss,
			log.AccuracyKey, trainAcc,
			log.ValLossKey, valLoss,
			log.ValAccuracyKey, valAcc,
		)
	}

	return history
}

// evaluateNet computes mean loss and thresholded accuracy over a pair.
func evaluateNet(net batchNet, X *mat.Dense, y *mat.VecDense) (loss, accuracy float64) {
	r, c := X.Dims()
	if r == 0 {
		return 0, 0
	}

	row := make([]float64, c)
	lossSum := 0.0
	correct := 0
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		p := net.predictRow(row)
		yt := y.AtVec(i)
		lossSum += bceLoss(yt, p)

		pred := 0.0
		if p > 0.5 {
			pred = 1
		}
		if pred == yt {
			correct++
		}
	}
	return lossSum / float64(r), float64(correct) / float64(r)
}

// predictProba runs predictRow over every row of X.
func predictProba(net batchNet, X *mat.Dense) *mat.VecDense {
	r, c := X.Dims()
	out := mat.NewVecDense(r, nil)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, X)
		out.SetVec(i, net.predictRow(row))
	}
	return out
}
