// Package pipeline sequences the light-curve preprocessing stages into the
// fixed order the classifiers depend on: frequency transform, smoothing,
// row normalization, robust scaling fitted on train only, then minority
// oversampling and repartitioning. The stage order is load-bearing and not
// caller-configurable.
package pipeline

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/log"
	"github.com/bits-and-bytess/ExoplanetDetect/preprocessing"
	"github.com/bits-and-bytess/ExoplanetDetect/sampling"
)

// Config holds the pipeline hyperparameters. Stage order is fixed; only the
// stage parameters vary.
type Config struct {
	// SmoothWindow and SmoothDegree parameterize the Savitzky-Golay
	// filter. The window must be odd and larger than the degree.
	SmoothWindow int
	SmoothDegree int

	// TestSplitFraction is the share of the balanced pool held out, in
	// (0, 1).
	TestSplitFraction float64

	// SMOTENeighbors is the oversampling neighbourhood size.
	SMOTENeighbors int

	// RandomSeed drives oversampling and the split. Zero means
	// non-deterministic.
	RandomSeed int64

	// LeakSyntheticIntoTest appends the held-out share of the balanced
	// pool, synthetic rows included, onto the original test set. This
	// reproduces legacy behavior; disable it for a clean evaluation set.
	LeakSyntheticIntoTest bool
}

// DefaultConfig returns the legacy-faithful parameterization.
func DefaultConfig() Config {
	return Config{
		SmoothWindow:          21,
		SmoothDegree:          4,
		TestSplitFraction:     0.3,
		SMOTENeighbors:        5,
		LeakSyntheticIntoTest: true,
	}
}

// Validate checks the parameter ranges the stages cannot check themselves.
func (c Config) Validate() error {
	if c.TestSplitFraction <= 0 || c.TestSplitFraction >= 1 {
		return errors.NewConfigError("TestSplitFraction", "must be in (0, 1)", c.TestSplitFraction)
	}
	if c.SMOTENeighbors <= 0 {
		return errors.NewConfigError("SMOTENeighbors", "must be positive", c.SMOTENeighbors)
	}
	// Window and degree are validated by the smoothing stage constructor.
	_, err := preprocessing.NewSavitzkyGolay(c.SmoothWindow, c.SmoothDegree)
	return err
}

// PartitionStats describes one partition for diagnostics.
type PartitionStats struct {
	Rows             int
	Columns          int
	PositiveFraction float64
}

// Diagnostics captures partition shapes and class balance before and after
// the augmentation stages.
type Diagnostics struct {
	TrainBefore PartitionStats
	TrainAfter  PartitionStats
	TestBefore  PartitionStats
	TestAfter   PartitionStats
}

// Result carries the four augmented tensors a classifier trains against.
type Result struct {
	TrainX *mat.Dense
	TrainY *mat.VecDense
	TestX  *mat.Dense
	TestY  *mat.VecDense

	Diagnostics Diagnostics
}

// Run executes the full pipeline over a train pair and a test pair. Scaling
// statistics are fitted on the train partition only and frozen for the test
// partition. Each call is independently reentrant; no state survives the
// call.
func Run(trainX *mat.Dense, trainY *mat.VecDense, testX *mat.Dense, testY *mat.VecDense, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkPair("pipeline.Run", trainX, trainY); err != nil {
		return nil, err
	}
	if err := checkPair("pipeline.Run", testX, testY); err != nil {
		return nil, err
	}

	diag := Diagnostics{
		TrainBefore: statsFor(trainX, trainY),
		TestBefore:  statsFor(testX, testY),
	}
	slog.Info("pipeline start",
		log.StageKey, "input",
		log.RowsKey, diag.TrainBefore.Rows,
		log.ColumnsKey, diag.TrainBefore.Columns,
		log.PositiveFractionKey, diag.TrainBefore.PositiveFraction,
	)

	savgol, err := preprocessing.NewSavitzkyGolay(cfg.SmoothWindow, cfg.SmoothDegree)
	if err != nil {
		return nil, err
	}
	stages := []struct {
		name string
		t    interface {
			Transform(mat.Matrix) (*mat.Dense, error)
		}
	}{
		{"fourier", preprocessing.NewFourierMagnitude()},
		{"savgol", savgol},
		{"normalize", preprocessing.NewNormalizer()},
	}

	curTrain, curTest := trainX, testX
	for _, stage := range stages {
		if curTrain, err = stage.t.Transform(curTrain); err != nil {
			return nil, errors.Wrap(err, "train partition")
		}
		if curTest, err = stage.t.Transform(curTest); err != nil {
			return nil, errors.Wrap(err, "test partition")
		}
		slog.Debug("stage complete", log.StageKey, stage.name)
	}

	// Scale statistics come from the train partition only.
	scaler := preprocessing.NewRobustScaler()
	if curTrain, err = scaler.FitTransform(curTrain); err != nil {
		return nil, errors.Wrap(err, "train partition")
	}
	if curTest, err = scaler.Transform(curTest); err != nil {
		return nil, errors.Wrap(err, "test partition")
	}
	slog.Debug("stage complete", log.StageKey, "robust_scale")

	seed := uint64(cfg.RandomSeed)
	if cfg.RandomSeed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	balX, balY, err := sampling.NewSMOTE(cfg.SMOTENeighbors, seed).Resample(curTrain, trainY)
	if err != nil {
		return nil, err
	}

	newTrainX, newTrainY, heldX, heldY, err := sampling.TrainTestSplit(balX, balY, cfg.TestSplitFraction, seed+1)
	if err != nil {
		return nil, err
	}

	outTestX, outTestY := curTest, testY
	if cfg.LeakSyntheticIntoTest {
		outTestX, outTestY = appendPair(curTest, testY, heldX, heldY)
	}

	diag.TrainAfter = statsFor(newTrainX, newTrainY)
	diag.TestAfter = statsFor(outTestX, outTestY)
	slog.Info("pipeline complete",
		log.StageKey, "balance",
		log.RowsKey, diag.TrainAfter.Rows,
		log.ColumnsKey, diag.TrainAfter.Columns,
		log.PositiveFractionKey, diag.TrainAfter.PositiveFraction,
	)

	return &Result{
		TrainX:      newTrainX,
		TrainY:      newTrainY,
		TestX:       outTestX,
		TestY:       outTestY,
		Diagnostics: diag,
	}, nil
}

func checkPair(op string, X *mat.Dense, y *mat.VecDense) error {
	r, _ := X.Dims()
	if r == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if y.Len() != r {
		return errors.NewShapeMismatchError(op, r, y.Len(), 0)
	}
	return nil
}

func statsFor(X *mat.Dense, y *mat.VecDense) PartitionStats {
	r, c := X.Dims()
	pos := 0
	for i := 0; i < y.Len(); i++ {
		if y.AtVec(i) == 1 {
			pos++
		}
	}
	frac := 0.0
	if r > 0 {
		frac = float64(pos) / float64(r)
	}
	return PartitionStats{Rows: r, Columns: c, PositiveFraction: frac}
}

// appendPair concatenates extra rows and labels onto a pair.
func appendPair(X *mat.Dense, y *mat.VecDense, extraX *mat.Dense, extraY *mat.VecDense) (*mat.Dense, *mat.VecDense) {
	r, c := X.Dims()
	er, _ := extraX.Dims()

	out := mat.NewDense(r+er, c, nil)
	outY := mat.NewVecDense(r+er, nil)
	for i := 0; i < r; i++ {
		out.SetRow(i, X.RawRowView(i))
		outY.SetVec(i, y.AtVec(i))
	}
	for i := 0; i < er; i++ {
		out.SetRow(r+i, extraX.RawRowView(i))
		outY.SetVec(r+i, extraY.AtVec(i))
	}
	return out, outY
}
