// Command exodetect runs the exoplanet classification workflow end to end:
// load the train and test light-curve tables, run the preprocessing and
// balancing pipeline, fit the chosen classifier family, score both
// partitions, render plots and record the run.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/dataset"
	"github.com/bits-and-bytess/ExoplanetDetect/neural"
	"github.com/bits-and-bytess/ExoplanetDetect/pipeline"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/log"
	"github.com/bits-and-bytess/ExoplanetDetect/report"
	"github.com/bits-and-bytess/ExoplanetDetect/runstore"
	"github.com/bits-and-bytess/ExoplanetDetect/training"
)

func main() {
	trainPath := flag.String("train", "", "path to the training CSV")
	testPath := flag.String("test", "", "path to the test CSV")
	family := flag.String("model", "dense", "classifier family: dense or cnn")
	batchSize := flag.Int("batch", 64, "mini-batch size")
	epochs := flag.Int("epochs", 20, "training epochs")
	seed := flag.Int64("seed", 0, "random seed (0 for non-deterministic)")
	noLeak := flag.Bool("no-leak", false, "keep synthetic rows out of the test set")
	outDir := flag.String("out", ".", "directory for plots")
	dbPath := flag.String("db", "", "optional run registry database")
	modelPath := flag.String("save", "", "optional path to save the trained model")
	loglevel := flag.String("loglevel", "info", "log level: debug, info, warn, error")
	flag.Parse()

	log.SetupLogger(*loglevel)

	if *trainPath == "" || *testPath == "" {
		fmt.Fprintln(os.Stderr, "usage: exodetect --train exoTrain.csv --test exoTest.csv [--model dense|cnn]")
		os.Exit(2)
	}

	if err := run(*trainPath, *testPath, *family, *batchSize, *epochs, *seed, !*noLeak, *outDir, *dbPath, *modelPath); err != nil {
		slog.Error("run failed", log.ErrAttr(err))
		os.Exit(1)
	}
}

func run(trainPath, testPath, family string, batchSize int, epochs int, seed int64, leak bool, outDir, dbPath, modelPath string) error {
	trainX, trainY, err := dataset.LoadTable(trainPath)
	if err != nil {
		return err
	}
	testX, testY, err := dataset.LoadTable(testPath)
	if err != nil {
		return err
	}

	cfg := pipeline.DefaultConfig()
	cfg.RandomSeed = seed
	cfg.LeakSyntheticIntoTest = leak

	res, err := pipeline.Run(trainX, trainY, testX, testY, cfg)
	if err != nil {
		return err
	}

	clf, trainT, testT, err := buildClassifier(family, seed, res)
	if err != nil {
		return err
	}

	history, err := training.Train(clf, trainT, res.TrainY, testT, res.TestY, training.Options{
		BatchSize: batchSize,
		Epochs:    epochs,
	})
	if err != nil {
		return err
	}

	eval, err := training.Evaluate(clf, trainT, res.TrainY, testT, res.TestY)
	if err != nil {
		return err
	}

	fmt.Printf("== train partition ==\n%s\n", eval.Train)
	fmt.Printf("== test partition ==\n%s\n", eval.Test)

	if err := report.SaveHistory(history, outDir); err != nil {
		return err
	}
	if err := report.SaveConfusionMatrix(eval.Train.Confusion, "Train Partition",
		filepath.Join(outDir, "confusion_train.png")); err != nil {
		return err
	}
	if err := report.SaveConfusionMatrix(eval.Test.Confusion, "Test Partition",
		filepath.Join(outDir, "confusion_test.png")); err != nil {
		return err
	}

	if dbPath != "" {
		store, err := runstore.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := store.RecordRun(clf.Name(), cfg, history, eval.Train.Accuracy, eval.Test.Accuracy)
		if err != nil {
			return err
		}
		slog.Info("run recorded", log.RunIDKey, runID)
	}

	if modelPath != "" {
		p, ok := clf.(model.Persistable)
		if !ok {
			return errors.NewConfigError("save", "model family cannot be persisted", clf.Name())
		}
		if err := p.Save(modelPath); err != nil {
			return err
		}
		slog.Info("model saved", log.ModelNameKey, clf.Name())
	}
	return nil
}

// buildClassifier picks the family and adapts the pipeline tensors to its
// input layout.
func buildClassifier(family string, seed int64, res *pipeline.Result) (model.Classifier, *pipeline.AdaptedTensor, *pipeline.AdaptedTensor, error) {
	switch family {
	case "dense":
		trainT, err := pipeline.AdaptFlat(res.TrainX)
		if err != nil {
			return nil, nil, nil, err
		}
		testT, err := pipeline.AdaptFlat(res.TestX)
		if err != nil {
			return nil, nil, nil, err
		}
		return neural.NewDenseNet(neural.WithDenseSeed(seed)), trainT, testT, nil
	case "cnn":
		trainT, err := pipeline.AdaptSequence(res.TrainX)
		if err != nil {
			return nil, nil, nil, err
		}
		testT, err := pipeline.AdaptSequence(res.TestX)
		if err != nil {
			return nil, nil, nil, err
		}
		return neural.NewConvNet(neural.WithConvSeed(seed)), trainT, testT, nil
	default:
		return nil, nil, nil, errors.NewConfigError("model", "must be dense or cnn", family)
	}
}
