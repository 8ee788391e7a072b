package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// DenseNet is the flat classifier family: a single hidden ReLU layer over
// the full feature vector followed by a sigmoid output unit.
type DenseNet struct {
	state *model.StateManager
	built bool

	// Hidden is the hidden layer width.
	Hidden int

	// LearningRate is the Adam step size.
	LearningRate float64

	// Seed makes weight initialization and epoch shuffling reproducible
	// when non-zero.
	Seed int64

	// InputWidth is the feature count fixed by Build.
	InputWidth int

	// W1 is the hidden-layer weight matrix, row-major Hidden x InputWidth.
	W1 []float64
	// B1 is the hidden-layer bias.
	B1 []float64
	// W2 is the output-layer weight vector.
	W2 []float64
	// B2 is the output bias.
	B2 []float64

	opt *adam
	rng *rand.Rand
}

// DenseNetOption is a functional option for DenseNet.
type DenseNetOption func(*DenseNet)

// WithDenseHidden sets the hidden layer width.
func WithDenseHidden(n int) DenseNetOption {
	return func(d *DenseNet) { d.Hidden = n }
}

// WithDenseLearningRate sets the Adam step size.
func WithDenseLearningRate(lr float64) DenseNetOption {
	return func(d *DenseNet) { d.LearningRate = lr }
}

// WithDenseSeed sets the random seed.
func WithDenseSeed(seed int64) DenseNetOption {
	return func(d *DenseNet) { d.Seed = seed }
}

// NewDenseNet creates an unbuilt dense classifier.
func NewDenseNet(opts ...DenseNetOption) *DenseNet {
	d := &DenseNet{
		state:        model.NewStateManager(),
		Hidden:       10,
		LearningRate: 0.001,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name implements model.Classifier.
func (d *DenseNet) Name() string { return "DenseNet" }

// Build initializes the weights for the given input width.
func (d *DenseNet) Build(inputWidth int) error {
	if inputWidth <= 0 {
		return errors.NewConfigError("InputWidth", "must be positive", inputWidth)
	}

	d.InputWidth = inputWidth
	d.rng = newRNG(d.Seed)

	d.W1 = make([]float64, d.Hidden*inputWidth)
	d.B1 = make([]float64, d.Hidden)
	d.W2 = make([]float64, d.Hidden)
	d.B2 = make([]float64, 1)

	// He initialization for the ReLU layer.
	scale1 := math.Sqrt(2.0 / float64(inputWidth))
	for i := range d.W1 {
		d.W1[i] = d.rng.NormFloat64() * scale1
	}
	scale2 := math.Sqrt(1.0 / float64(d.Hidden))
	for i := range d.W2 {
		d.W2[i] = d.rng.NormFloat64() * scale2
	}

	d.opt = newAdam(d.LearningRate, [][]float64{d.W1, d.B1, d.W2, d.B2})
	d.built = true
	return nil
}

// Fit trains with mini-batch Adam, shuffling every epoch and validating
// against (valX, valY) at every epoch end.
func (d *DenseNet) Fit(X *mat.Dense, y *mat.VecDense, batchSize, epochs int, valX *mat.Dense, valY *mat.VecDense) (h *model.History, err error) {
	defer errors.Recover(&err, "DenseNet.Fit")

	if !d.built {
		return nil, errors.NewNotTrainedError("DenseNet", "Fit")
	}
	if err := validateFitArgs("DenseNet.Fit", d.InputWidth, X, y, batchSize, epochs, valX, valY); err != nil {
		return nil, err
	}

	history := fitLoop(d.Name(), d, d.rng, X, y, batchSize, epochs, valX, valY)

	r, _ := X.Dims()
	d.state.SetDimensions(d.InputWidth, r)
	d.state.SetFitted()
	return history, nil
}

// PredictProba returns the positive-class probability per row.
func (d *DenseNet) PredictProba(X *mat.Dense) (*mat.VecDense, error) {
	if !d.state.IsFitted() {
		return nil, errors.NewNotTrainedError("DenseNet", "PredictProba")
	}
	_, c := X.Dims()
	if c != d.InputWidth {
		return nil, errors.NewShapeMismatchError("DenseNet.PredictProba", d.InputWidth, c, 1)
	}
	return predictProba(d, X), nil
}

// Evaluate returns mean binary cross-entropy and thresholded accuracy.
func (d *DenseNet) Evaluate(X *mat.Dense, y *mat.VecDense) (loss, accuracy float64, err error) {
	if !d.state.IsFitted() {
		return 0, 0, errors.NewNotTrainedError("DenseNet", "Evaluate")
	}
	r, c := X.Dims()
	if c != d.InputWidth {
		return 0, 0, errors.NewShapeMismatchError("DenseNet.Evaluate", d.InputWidth, c, 1)
	}
	if y.Len() != r {
		return 0, 0, errors.NewShapeMismatchError("DenseNet.Evaluate", r, y.Len(), 0)
	}
	loss, accuracy = evaluateNet(d, X, y)
	return loss, accuracy, nil
}

// Save persists the trained weights.
func (d *DenseNet) Save(path string) error {
	if !d.state.IsFitted() {
		return errors.NewNotTrainedError("DenseNet", "Save")
	}
	return model.SaveModel(d, path)
}

// Load restores weights saved by Save. The receiver must have been created
// with NewDenseNet.
func (d *DenseNet) Load(path string) error {
	if d.state == nil {
		d.state = model.NewStateManager()
	}
	if err := model.LoadModel(d, path); err != nil {
		return err
	}
	d.rng = newRNG(d.Seed)
	d.opt = newAdam(d.LearningRate, [][]float64{d.W1, d.B1, d.W2, d.B2})
	d.built = d.InputWidth > 0
	if d.built {
		d.state.SetFitted()
	}
	return nil
}

// predictRow implements batchNet.
func (d *DenseNet) predictRow(row []float64) float64 {
	z2 := d.B2[0]
	for h := 0; h < d.Hidden; h++ {
		z1 := d.B1[h]
		base := h * d.InputWidth
		for j, v := range row {
			z1 += d.W1[base+j] * v
		}
		z2 += d.W2[h] * relu(z1)
	}
	return sigmoid(z2)
}

// trainBatch implements batchNet: one accumulated-gradient Adam step.
func (d *DenseNet) trainBatch(X *mat.Dense, y *mat.VecDense, idx []int) (lossSum float64, correct int) {
	in := d.InputWidth
	gW1 := make([]float64, len(d.W1))
	gB1 := make([]float64, len(d.B1))
	gW2 := make([]float64, len(d.W2))
	gB2 := make([]float64, 1)

	row := make([]float64, in)
	z1 := make([]float64, d.Hidden)
	a1 := make([]float64, d.Hidden)

	for _, i := range idx {
		mat.Row(row, i, X)
		yt := y.AtVec(i)

		// Forward.
		z2 := d.B2[0]
		for h := 0; h < d.Hidden; h++ {
			s := d.B1[h]
			base := h * in
			for j, v := range row {
				s += d.W1[base+j] * v
			}
			z1[h] = s
			a1[h] = relu(s)
			z2 += d.W2[h] * a1[h]
		}
		p := sigmoid(z2)

		lossSum += bceLoss(yt, p)
		if (p > 0.5) == (yt == 1) {
			correct++
		}

		// Backward.
		delta2 := bceSigmoidGrad(yt, p)
		gB2[0] += delta2
		for h := 0; h < d.Hidden; h++ {
			gW2[h] += delta2 * a1[h]
			delta1 := delta2 * d.W2[h] * reluPrime(z1[h])
			if delta1 == 0 {
				continue
			}
			gB1[h] += delta1
			base := h * in
			for j, v := range row {
				gW1[base+j] += delta1 * v
			}
		}
	}

	invN := 1.0 / float64(len(idx))
	scaleInPlace(gW1, invN)
	scaleInPlace(gB1, invN)
	scaleInPlace(gW2, invN)
	scaleInPlace(gB2, invN)

	d.opt.Step(
		[][]float64{d.W1, d.B1, d.W2, d.B2},
		[][]float64{gW1, gB1, gW2, gB2},
	)
	return lossSum, correct
}

func scaleInPlace(xs []float64, s float64) {
	for i := range xs {
		xs[i] *= s
	}
}
