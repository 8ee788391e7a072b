package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func vec(vals ...float64) *mat.VecDense {
	return mat.NewVecDense(len(vals), vals)
}

func TestBinarizeStrictThreshold(t *testing.T) {
	probs := vec(0.4, 0.5, 0.500001, 0.9, 0.0)
	got := Binarize(probs, 0.5)

	// Exactly 0.5 goes to the negative class.
	want := []float64{0, 0, 1, 1, 0}
	for i, w := range want {
		if got.AtVec(i) != w {
			t.Errorf("index %d: got %f, want %f", i, got.AtVec(i), w)
		}
	}
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{"all correct", []float64{0, 1, 1, 0}, []float64{0, 1, 1, 0}, 1.0, false},
		{"all wrong", []float64{0, 1}, []float64{1, 0}, 0.0, false},
		{"half correct", []float64{0, 0, 1, 1}, []float64{0, 1, 1, 0}, 0.5, false},
		{"length mismatch", []float64{0, 1}, []float64{0}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(vec(tt.yTrue...), vec(tt.yPred...))
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := vec(1, 1, 1, 0, 0, 0, 0, 1)
	yPred := vec(1, 0, 1, 0, 1, 0, 0, 0)

	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("ConfusionMatrix failed: %v", err)
	}

	if cm.TP != 2 || cm.FN != 2 || cm.FP != 1 || cm.TN != 3 {
		t.Errorf("got TN=%d FP=%d FN=%d TP=%d, want TN=3 FP=1 FN=2 TP=2", cm.TN, cm.FP, cm.FN, cm.TP)
	}

	counts := cm.Counts()
	if counts[0][0] != 3 || counts[0][1] != 1 || counts[1][0] != 2 || counts[1][1] != 2 {
		t.Errorf("Counts() layout wrong: %v", counts)
	}
}

func TestConfusionMatrixRejectsNonBinary(t *testing.T) {
	if _, err := ConfusionMatrix(vec(0, 2), vec(0, 1)); err == nil {
		t.Error("non-binary true labels should be rejected")
	}
	if _, err := ConfusionMatrix(vec(0, 1), vec(0.5, 1)); err == nil {
		t.Error("non-binary predictions should be rejected")
	}
}

func TestClassificationReport(t *testing.T) {
	yTrue := vec(1, 1, 1, 1, 0, 0, 0, 0, 0, 0)
	yPred := vec(1, 1, 0, 0, 0, 0, 0, 0, 0, 1)

	rep, err := ClassificationReport(yTrue, yPred)
	if err != nil {
		t.Fatalf("ClassificationReport failed: %v", err)
	}

	if math.Abs(rep.Accuracy-0.7) > 1e-12 {
		t.Errorf("accuracy: got %f, want 0.7", rep.Accuracy)
	}

	// Positive class: TP=2, FP=1, FN=2.
	pos := rep.PerClass[1]
	if math.Abs(pos.Precision-2.0/3.0) > 1e-12 {
		t.Errorf("positive precision: got %f, want %f", pos.Precision, 2.0/3.0)
	}
	if math.Abs(pos.Recall-0.5) > 1e-12 {
		t.Errorf("positive recall: got %f, want 0.5", pos.Recall)
	}
	if pos.Support != 4 {
		t.Errorf("positive support: got %d, want 4", pos.Support)
	}

	neg := rep.PerClass[0]
	if neg.Support != 6 {
		t.Errorf("negative support: got %d, want 6", neg.Support)
	}
	if math.Abs(neg.Recall-5.0/6.0) > 1e-12 {
		t.Errorf("negative recall: got %f, want %f", neg.Recall, 5.0/6.0)
	}

	if rep.String() == "" {
		t.Error("String() should render a non-empty report")
	}
}

func TestClassificationReportUndefinedPrecision(t *testing.T) {
	// Nothing predicted positive: positive precision is undefined and
	// substituted with zero.
	yTrue := vec(1, 0, 0, 0)
	yPred := vec(0, 0, 0, 0)

	rep, err := ClassificationReport(yTrue, yPred)
	if err != nil {
		t.Fatalf("ClassificationReport failed: %v", err)
	}
	if rep.PerClass[1].Precision != 0 {
		t.Errorf("undefined precision should be 0, got %f", rep.PerClass[1].Precision)
	}
}
