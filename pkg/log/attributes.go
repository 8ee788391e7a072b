package log

// Stage and operation context.
const (
	// StageKey identifies the pipeline stage emitting the record.
	// Examples: "fourier", "savgol", "normalize", "robust_scale", "smote"
	StageKey = "pipeline.stage"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "resample", "train", "evaluate"
	OperationKey = "ml.operation"

	// ModelNameKey identifies the classifier family.
	// Examples: "DenseNet", "ConvNet"
	ModelNameKey = "model.name"

	// RunIDKey carries the experiment run identifier from the run store.
	RunIDKey = "run.id"
)

// Data shape and class balance.
const (
	// RowsKey is the number of samples (rows) in the matrix at hand.
	RowsKey = "data.rows"

	// ColumnsKey is the number of features (columns).
	ColumnsKey = "data.columns"

	// PositiveFractionKey is the fraction of exoplanet-positive rows.
	PositiveFractionKey = "data.positive_fraction"

	// BatchSizeKey is the mini-batch size used during fitting.
	BatchSizeKey = "data.batch_size"
)

// Training progress and metrics.
const (
	// EpochKey is the current training epoch.
	EpochKey = "training.epoch"

	// LossKey is the loss value for the partition being reported.
	LossKey = "metrics.loss"

	// AccuracyKey is the accuracy for the partition being reported.
	AccuracyKey = "metrics.accuracy"

	// ValLossKey is the validation loss at the end of an epoch.
	ValLossKey = "metrics.val_loss"

	// ValAccuracyKey is the validation accuracy at the end of an epoch.
	ValAccuracyKey = "metrics.val_accuracy"

	// DurationMsKey records execution time in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ThresholdKey is the probability threshold used for classification.
	ThresholdKey = "preds.threshold"

	// RandomSeedKey records the seed used for splits and synthesis.
	RandomSeedKey = "config.random_seed"
)
