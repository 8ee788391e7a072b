package neural

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// ConvNet is the sequence classifier family: two same-padded Conv1D/ReLU
// blocks, each followed by max pooling, flattened into a sigmoid output
// unit. The flat feature row is treated as a single-channel sequence.
type ConvNet struct {
	state *model.StateManager
	built bool

	// Filters1 and Kernel1 shape the first convolution block.
	Filters1 int
	Kernel1  int
	// Filters2 and Kernel2 shape the second convolution block.
	Filters2 int
	Kernel2  int
	// PoolSize and PoolStride shape both max-pooling layers.
	PoolSize   int
	PoolStride int

	// LearningRate is the Adam step size.
	LearningRate float64

	// Seed makes weight initialization and epoch shuffling reproducible
	// when non-zero.
	Seed int64

	// InputWidth is the sequence length fixed by Build. L1 and L2 are the
	// pooled lengths after each block.
	InputWidth int
	L1         int
	L2         int

	// Conv1W is Filters1 x Kernel1 row-major; the input has one channel.
	Conv1W []float64
	Conv1B []float64
	// Conv2W is Filters2 x Filters1 x Kernel2 row-major.
	Conv2W []float64
	Conv2B []float64
	// DenseW is the flattened output layer, Filters2 x L2 row-major.
	DenseW []float64
	DenseB []float64

	opt *adam
	rng *rand.Rand

	// Forward-pass scratch, reused across rows. am1 and am2 record the
	// argmax positions the pooling layers picked, for gradient routing.
	z1  []float64
	a1  []float64
	p1  []float64
	am1 []int
	z2  []float64
	a2  []float64
	p2  []float64
	am2 []int
}

// ConvNetOption is a functional option for ConvNet.
type ConvNetOption func(*ConvNet)

// WithConvLearningRate sets the Adam step size.
func WithConvLearningRate(lr float64) ConvNetOption {
	return func(c *ConvNet) { c.LearningRate = lr }
}

// WithConvSeed sets the random seed.
func WithConvSeed(seed int64) ConvNetOption {
	return func(c *ConvNet) { c.Seed = seed }
}

// NewConvNet creates an unbuilt convolutional classifier.
func NewConvNet(opts ...ConvNetOption) *ConvNet {
	c := &ConvNet{
		state:        model.NewStateManager(),
		Filters1:     8,
		Kernel1:      5,
		Filters2:     16,
		Kernel2:      3,
		PoolSize:     4,
		PoolStride:   4,
		LearningRate: 0.001,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements model.Classifier.
func (c *ConvNet) Name() string { return "ConvNet" }

// pooledLen is the output length of same-padded pooling: ceil(n / stride).
func pooledLen(n, stride int) int {
	return (n + stride - 1) / stride
}

// Build initializes the weights for the given sequence length.
func (c *ConvNet) Build(inputWidth int) error {
	if inputWidth <= 0 {
		return errors.NewConfigError("InputWidth", "must be positive", inputWidth)
	}
	if inputWidth < c.Kernel1 {
		return errors.NewInsufficientDataError("ConvNet.Build", c.Kernel1, inputWidth, "sequence elements")
	}

	c.InputWidth = inputWidth
	c.L1 = pooledLen(inputWidth, c.PoolStride)
	c.L2 = pooledLen(c.L1, c.PoolStride)
	c.rng = newRNG(c.Seed)

	c.Conv1W = make([]float64, c.Filters1*c.Kernel1)
	c.Conv1B = make([]float64, c.Filters1)
	c.Conv2W = make([]float64, c.Filters2*c.Filters1*c.Kernel2)
	c.Conv2B = make([]float64, c.Filters2)
	c.DenseW = make([]float64, c.Filters2*c.L2)
	c.DenseB = make([]float64, 1)

	// He initialization, fan-in per layer.
	scale1 := math.Sqrt(2.0 / float64(c.Kernel1))
	for i := range c.Conv1W {
		c.Conv1W[i] = c.rng.NormFloat64() * scale1
	}
	scale2 := math.Sqrt(2.0 / float64(c.Filters1*c.Kernel2))
	for i := range c.Conv2W {
		c.Conv2W[i] = c.rng.NormFloat64() * scale2
	}
	scale3 := math.Sqrt(1.0 / float64(len(c.DenseW)))
	for i := range c.DenseW {
		c.DenseW[i] = c.rng.NormFloat64() * scale3
	}

	c.z1 = make([]float64, c.Filters1*inputWidth)
	c.a1 = make([]float64, c.Filters1*inputWidth)
	c.p1 = make([]float64, c.Filters1*c.L1)
	c.am1 = make([]int, c.Filters1*c.L1)
	c.z2 = make([]float64, c.Filters2*c.L1)
	c.a2 = make([]float64, c.Filters2*c.L1)
	c.p2 = make([]float64, c.Filters2*c.L2)
	c.am2 = make([]int, c.Filters2*c.L2)

	c.opt = newAdam(c.LearningRate, c.params())
	c.built = true
	return nil
}

func (c *ConvNet) params() [][]float64 {
	return [][]float64{c.Conv1W, c.Conv1B, c.Conv2W, c.Conv2B, c.DenseW, c.DenseB}
}

// Fit trains with mini-batch Adam, shuffling every epoch and validating
// against (valX, valY) at every epoch end.
func (c *ConvNet) Fit(X *mat.Dense, y *mat.VecDense, batchSize, epochs int, valX *mat.Dense, valY *mat.VecDense) (h *model.History, err error) {
	defer errors.Recover(&err, "ConvNet.Fit")

	if !c.built {
		return nil, errors.NewNotTrainedError("ConvNet", "Fit")
	}
	if err := validateFitArgs("ConvNet.Fit", c.InputWidth, X, y, batchSize, epochs, valX, valY); err != nil {
		return nil, err
	}

	history := fitLoop(c.Name(), c, c.rng, X, y, batchSize, epochs, valX, valY)

	r, _ := X.Dims()
	c.state.SetDimensions(c.InputWidth, r)
	c.state.SetFitted()
	return history, nil
}

// PredictProba returns the positive-class probability per row.
func (c *ConvNet) PredictProba(X *mat.Dense) (*mat.VecDense, error) {
	if !c.state.IsFitted() {
		return nil, errors.NewNotTrainedError("ConvNet", "PredictProba")
	}
	_, cols := X.Dims()
	if cols != c.InputWidth {
		return nil, errors.NewShapeMismatchError("ConvNet.PredictProba", c.InputWidth, cols, 1)
	}
	return predictProba(c, X), nil
}

// Evaluate returns mean binary cross-entropy and thresholded accuracy.
func (c *ConvNet) Evaluate(X *mat.Dense, y *mat.VecDense) (loss, accuracy float64, err error) {
	if !c.state.IsFitted() {
		return 0, 0, errors.NewNotTrainedError("ConvNet", "Evaluate")
	}
	r, cols := X.Dims()
	if cols != c.InputWidth {
		return 0, 0, errors.NewShapeMismatchError("ConvNet.Evaluate", c.InputWidth, cols, 1)
	}
	if y.Len() != r {
		return 0, 0, errors.NewShapeMismatchError("ConvNet.Evaluate", r, y.Len(), 0)
	}
	loss, accuracy = evaluateNet(c, X, y)
	return loss, accuracy, nil
}

// Save persists the trained weights.
func (c *ConvNet) Save(path string) error {
	if !c.state.IsFitted() {
		return errors.NewNotTrainedError("ConvNet", "Save")
	}
	return model.SaveModel(c, path)
}

// Load restores weights saved by Save. The receiver must have been created
// with NewConvNet.
func (c *ConvNet) Load(path string) error {
	if c.state == nil {
		c.state = model.NewStateManager()
	}
	if err := model.LoadModel(c, path); err != nil {
		return err
	}
	if c.InputWidth > 0 {
		// Rebuild scratch and optimizer state for the restored shape,
		// then put the loaded weights back.
		w := c.params()
		saved := make([][]float64, len(w))
		copy(saved, w)
		if err := c.Build(c.InputWidth); err != nil {
			return err
		}
		c.Conv1W, c.Conv1B = saved[0], saved[1]
		c.Conv2W, c.Conv2B = saved[2], saved[3]
		c.DenseW, c.DenseB = saved[4], saved[5]
		c.opt = newAdam(c.LearningRate, c.params())
		c.state.SetFitted()
	}
	return nil
}

// forward runs one row through the network, filling the scratch caches.
func (c *ConvNet) forward(row []float64) float64 {
	L, L1, L2 := c.InputWidth, c.L1, c.L2
	pad1 := (c.Kernel1 - 1) / 2
	pad2 := (c.Kernel2 - 1) / 2

	// Conv block 1: single input channel, same padding.
	for f := 0; f < c.Filters1; f++ {
		wBase := f * c.Kernel1
		outBase := f * L
		for t := 0; t < L; t++ {
			s := c.Conv1B[f]
			for k := 0; k < c.Kernel1; k++ {
				pos := t - pad1 + k
				if pos >= 0 && pos < L {
					s += c.Conv1W[wBase+k] * row[pos]
				}
			}
			c.z1[outBase+t] = s
			c.a1[outBase+t] = relu(s)
		}
	}

	// Max pool 1.
	c.maxPool(c.a1, c.p1, c.am1, c.Filters1, L, L1)

	// Conv block 2 over Filters1 channels.
	for f := 0; f < c.Filters2; f++ {
		outBase := f * L1
		for t := 0; t < L1; t++ {
			s := c.Conv2B[f]
			for ch := 0; ch < c.Filters1; ch++ {
				wBase := (f*c.Filters1 + ch) * c.Kernel2
				inBase := ch * L1
				for k := 0; k < c.Kernel2; k++ {
					pos := t - pad2 + k
					if pos >= 0 && pos < L1 {
						s += c.Conv2W[wBase+k] * c.p1[inBase+pos]
					}
				}
			}
			c.z2[outBase+t] = s
			c.a2[outBase+t] = relu(s)
		}
	}

	// Max pool 2.
	c.maxPool(c.a2, c.p2, c.am2, c.Filters2, L1, L2)

	// Flatten into the sigmoid output unit.
	z3 := c.DenseB[0]
	for i, v := range c.p2 {
		z3 += c.DenseW[i] * v
	}
	return sigmoid(z3)
}

// maxPool pools each channel with same padding, recording argmax positions
// relative to the channel start.
func (c *ConvNet) maxPool(in, out []float64, argmax []int, channels, inLen, outLen int) {
	for ch := 0; ch < channels; ch++ {
		inBase := ch * inLen
		outBase := ch * outLen
		for t := 0; t < outLen; t++ {
			start := t * c.PoolStride
			end := start + c.PoolSize
			if end > inLen {
				end = inLen
			}
			best := start
			bestV := in[inBase+start]
			for p := start + 1; p < end; p++ {
				if in[inBase+p] > bestV {
					bestV = in[inBase+p]
					best = p
				}
			}
			out[outBase+t] = bestV
			argmax[outBase+t] = best
		}
	}
}

// predictRow implements batchNet.
func (c *ConvNet) predictRow(row []float64) float64 {
	return c.forward(row)
}

// trainBatch implements batchNet: one accumulated-gradient Adam step.
func (c *ConvNet) trainBatch(X *mat.Dense, y *mat.VecDense, idx []int) (lossSum float64, correct int) {
	L, L1, L2 := c.InputWidth, c.L1, c.L2
	pad1 := (c.Kernel1 - 1) / 2
	pad2 := (c.Kernel2 - 1) / 2

	gConv1W := make([]float64, len(c.Conv1W))
	gConv1B := make([]float64, len(c.Conv1B))
	gConv2W := make([]float64, len(c.Conv2W))
	gConv2B := make([]float64, len(c.Conv2B))
	gDenseW := make([]float64, len(c.DenseW))
	gDenseB := make([]float64, 1)

	row := make([]float64, L)
	dP2 := make([]float64, c.Filters2*L2)
	dZ2 := make([]float64, c.Filters2*L1)
	dP1 := make([]float64, c.Filters1*L1)
	dZ1 := make([]float64, c.Filters1*L)

	for _, i := range idx {
		mat.Row(row, i, X)
		yt := y.AtVec(i)
		p := c.forward(row)

		lossSum += bceLoss(yt, p)
		if (p > 0.5) == (yt == 1) {
			correct++
		}

		// Output layer.
		delta3 := bceSigmoidGrad(yt, p)
		gDenseB[0] += delta3
		for j, v := range c.p2 {
			gDenseW[j] += delta3 * v
			dP2[j] = delta3 * c.DenseW[j]
		}

		// Unpool 2 and ReLU 2.
		zero(dZ2)
		for f := 0; f < c.Filters2; f++ {
			inBase := f * L1
			outBase := f * L2
			for t := 0; t < L2; t++ {
				pos := inBase + c.am2[outBase+t]
				dZ2[pos] += dP2[outBase+t] * reluPrime(c.z2[pos])
			}
		}

		// Conv 2 gradients and input deltas.
		zero(dP1)
		for f := 0; f < c.Filters2; f++ {
			outBase := f * L1
			for t := 0; t < L1; t++ {
				d := dZ2[outBase+t]
				if d == 0 {
					continue
				}
				gConv2B[f] += d
				for ch := 0; ch < c.Filters1; ch++ {
					wBase := (f*c.Filters1 + ch) * c.Kernel2
					inBase := ch * L1
					for k := 0; k < c.Kernel2; k++ {
						pos := t - pad2 + k
						if pos >= 0 && pos < L1 {
							gConv2W[wBase+k] += d * c.p1[inBase+pos]
							dP1[inBase+pos] += d * c.Conv2W[wBase+k]
						}
					}
				}
			}
		}

		// Unpool 1 and ReLU 1.
		zero(dZ1)
		for f := 0; f < c.Filters1; f++ {
			inBase := f * L
			outBase := f * L1
			for t := 0; t < L1; t++ {
				pos := inBase + c.am1[outBase+t]
				dZ1[pos] += dP1[outBase+t] * reluPrime(c.z1[pos])
			}
		}

		// Conv 1 gradients.
		for f := 0; f < c.Filters1; f++ {
			wBase := f * c.Kernel1
			inBase := f * L
			for t := 0; t < L; t++ {
				d := dZ1[inBase+t]
				if d == 0 {
					continue
				}
				gConv1B[f] += d
				for k := 0; k < c.Kernel1; k++ {
					pos := t - pad1 + k
					if pos >= 0 && pos < L {
						gConv1W[wBase+k] += d * row[pos]
					}
				}
			}
		}
	}

	invN := 1.0 / float64(len(idx))
	grads := [][]float64{gConv1W, gConv1B, gConv2W, gConv2B, gDenseW, gDenseB}
	for _, g := range grads {
		scaleInPlace(g, invN)
	}
	c.opt.Step(c.params(), grads)
	return lossSum, correct
}

func zero(xs []float64) {
	for i := range xs {
		xs[i] = 0
	}
}
