package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/metrics"
)

func TestSaveHistoryWritesBothPlots(t *testing.T) {
	h := &model.History{
		Loss:        []float64{0.7, 0.5, 0.3},
		Accuracy:    []float64{0.5, 0.7, 0.9},
		ValLoss:     []float64{0.8, 0.6, 0.4},
		ValAccuracy: []float64{0.4, 0.6, 0.8},
	}

	dir := t.TempDir()
	if err := SaveHistory(h, dir); err != nil {
		t.Fatalf("SaveHistory failed: %v", err)
	}

	for _, name := range []string{"loss.png", "accuracy.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("%s not written: %v", name, err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestSaveHistoryRejectsEmpty(t *testing.T) {
	if err := SaveHistory(&model.History{}, t.TempDir()); err == nil {
		t.Error("empty history should fail")
	}
	if err := SaveHistory(nil, t.TempDir()); err == nil {
		t.Error("nil history should fail")
	}
}

func TestSaveConfusionMatrix(t *testing.T) {
	counts := metrics.ConfusionCounts{TN: 50, FP: 3, FN: 2, TP: 45}

	path := filepath.Join(t.TempDir(), "confusion.png")
	if err := SaveConfusionMatrix(counts, "Test Partition", path); err != nil {
		t.Fatalf("SaveConfusionMatrix failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("plot not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("plot file is empty")
	}
}
