// Package training drives classifier fitting and scoring over the adapted
// tensors the pipeline produces.
package training

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/metrics"
	"github.com/bits-and-bytess/ExoplanetDetect/pipeline"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/log"
)

// Threshold separates the two classes: positive iff probability is strictly
// greater.
const Threshold = 0.5

// Options parameterize one training run.
type Options struct {
	BatchSize int
	Epochs    int
}

// DefaultOptions mirrors the reference training schedule.
func DefaultOptions() Options {
	return Options{BatchSize: 64, Epochs: 20}
}

// Train builds the classifier for the adapted width and fits it, validating
// against the held-out pair at every epoch.
func Train(clf model.Classifier, train *pipeline.AdaptedTensor, trainY *mat.VecDense, val *pipeline.AdaptedTensor, valY *mat.VecDense, opts Options) (h *model.History, err error) {
	defer errors.Recover(&err, "training.Train")

	if opts.BatchSize <= 0 {
		return nil, errors.NewConfigError("BatchSize", "must be positive", opts.BatchSize)
	}
	if opts.Epochs <= 0 {
		return nil, errors.NewConfigError("Epochs", "must be positive", opts.Epochs)
	}
	if train.Layout != val.Layout {
		return nil, errors.NewConfigError("ValidationData", "layout differs from training data", val.Layout.String())
	}

	if err := clf.Build(train.SeqLen); err != nil {
		return nil, err
	}

	start := time.Now()
	history, err := clf.Fit(train.X, trainY, opts.BatchSize, opts.Epochs, val.X, valY)
	if err != nil {
		return nil, err
	}

	slog.Info("training complete",
		log.ModelNameKey, clf.Name(),
		log.EpochKey, history.Epochs(),
		log.BatchSizeKey, opts.BatchSize,
		log.DurationMsKey, time.Since(start).Milliseconds(),
		log.LossKey, last(history.Loss),
		log.ValAccuracyKey, last(history.ValAccuracy),
	)
	return history, nil
}

// Evaluation is the per-partition scoring pair.
type Evaluation struct {
	Train *metrics.Report
	Test  *metrics.Report
}

// Evaluate scores a fitted classifier on both partitions with the strict
// threshold.
func Evaluate(clf model.Classifier, train *pipeline.AdaptedTensor, trainY *mat.VecDense, test *pipeline.AdaptedTensor, testY *mat.VecDense) (*Evaluation, error) {
	trainReport, err := scorePartition(clf, train.X, trainY)
	if err != nil {
		return nil, errors.Wrap(err, "train partition")
	}
	testReport, err := scorePartition(clf, test.X, testY)
	if err != nil {
		return nil, errors.Wrap(err, "test partition")
	}

	slog.Info("evaluation complete",
		log.ModelNameKey, clf.Name(),
		log.ThresholdKey, Threshold,
		log.AccuracyKey, trainReport.Accuracy,
		log.ValAccuracyKey, testReport.Accuracy,
	)
	return &Evaluation{Train: trainReport, Test: testReport}, nil
}

func scorePartition(clf model.Classifier, X *mat.Dense, y *mat.VecDense) (*metrics.Report, error) {
	probs, err := clf.PredictProba(X)
	if err != nil {
		return nil, err
	}
	preds := metrics.Binarize(probs, Threshold)
	return metrics.ClassificationReport(y, preds)
}

func last(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return xs[len(xs)-1]
}
