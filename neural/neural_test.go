package neural

import (
	"math"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// makeSeparable builds an easy two-class problem: positive rows sit around
// +2 in every feature, negative rows around -2.
func makeSeparable(n, cols int, seed uint64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(n, cols, nil)
	y := mat.NewVecDense(n, nil)

	for i := 0; i < n; i++ {
		center := -2.0
		if i%2 == 0 {
			center = 2.0
			y.SetVec(i, 1)
		}
		for j := 0; j < cols; j++ {
			X.Set(i, j, center+rng.NormFloat64()*0.3)
		}
	}
	return X, y
}

// makeWaveform builds sequences where the positive class carries a strong
// oscillation and the negative class is near-flat noise.
func makeWaveform(n, length int, seed uint64) (*mat.Dense, *mat.VecDense) {
	rng := rand.New(rand.NewPCG(seed, seed))
	X := mat.NewDense(n, length, nil)
	y := mat.NewVecDense(n, nil)

	for i := 0; i < n; i++ {
		amp := 0.1
		if i%2 == 0 {
			amp = 3.0
			y.SetVec(i, 1)
		}
		phase := rng.Float64() * 2 * math.Pi
		for t := 0; t < length; t++ {
			X.Set(i, t, amp*math.Sin(float64(t)/2+phase)+rng.NormFloat64()*0.05)
		}
	}
	return X, y
}

func TestDenseNetLearnsSeparableProblem(t *testing.T) {
	X, y := makeSeparable(60, 4, 11)

	net := NewDenseNet(WithDenseSeed(1), WithDenseLearningRate(0.01))
	if err := net.Build(4); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	history, err := net.Fit(X, y, 8, 100, X, y)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if history.Epochs() != 100 {
		t.Errorf("history length: got %d, want 100", history.Epochs())
	}

	_, acc, err := net.Evaluate(X, y)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if acc < 0.95 {
		t.Errorf("training accuracy too low: %v", acc)
	}

	last := history.ValLoss[len(history.ValLoss)-1]
	if last >= history.ValLoss[0] {
		t.Errorf("validation loss did not decrease: first %v, last %v", history.ValLoss[0], last)
	}
}

func TestDenseNetRequiresBuildBeforeFit(t *testing.T) {
	X, y := makeSeparable(10, 4, 3)

	net := NewDenseNet()
	if _, err := net.Fit(X, y, 4, 1, X, y); err == nil {
		t.Fatal("Fit on unbuilt model should fail")
	} else {
		var nte *errors.NotTrainedError
		if !errors.As(err, &nte) {
			t.Errorf("expected NotTrainedError, got %T", err)
		}
	}

	if _, err := net.PredictProba(X); err == nil {
		t.Error("PredictProba on untrained model should fail")
	}
}

func TestDenseNetFitValidation(t *testing.T) {
	X, y := makeSeparable(10, 4, 3)
	wide := mat.NewDense(10, 6, nil)

	net := NewDenseNet(WithDenseSeed(1))
	if err := net.Build(4); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	tests := []struct {
		name string
		run  func() error
		want func(error) bool
	}{
		{
			name: "zero batch size",
			run: func() error {
				_, err := net.Fit(X, y, 0, 1, X, y)
				return err
			},
			want: func(err error) bool {
				var ce *errors.ConfigError
				return errors.As(err, &ce)
			},
		},
		{
			name: "missing validation data",
			run: func() error {
				_, err := net.Fit(X, y, 4, 1, nil, nil)
				return err
			},
			want: func(err error) bool {
				var ce *errors.ConfigError
				return errors.As(err, &ce)
			},
		},
		{
			name: "wrong feature width",
			run: func() error {
				_, err := net.Fit(wide, y, 4, 1, wide, y)
				return err
			},
			want: func(err error) bool {
				var se *errors.ShapeMismatchError
				return errors.As(err, &se)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.want(err) {
				t.Errorf("wrong error type: %v", err)
			}
		})
	}
}

func TestDenseNetSaveLoadRoundTrip(t *testing.T) {
	X, y := makeSeparable(40, 4, 5)

	net := NewDenseNet(WithDenseSeed(2), WithDenseLearningRate(0.01))
	if err := net.Build(4); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := net.Fit(X, y, 8, 20, X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "dense.gob")
	if err := net.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := NewDenseNet()
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want, err := net.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	got, err := restored.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba after Load failed: %v", err)
	}
	for i := 0; i < want.Len(); i++ {
		if math.Abs(want.AtVec(i)-got.AtVec(i)) > 1e-12 {
			t.Fatalf("row %d: prediction drifted after Load: %v vs %v", i, want.AtVec(i), got.AtVec(i))
		}
	}
}

func TestDenseNetSaveRequiresFit(t *testing.T) {
	net := NewDenseNet()
	if err := net.Build(4); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := net.Save(filepath.Join(t.TempDir(), "dense.gob")); err == nil {
		t.Error("Save before Fit should fail")
	}
}

func TestConvNetPooledShapes(t *testing.T) {
	tests := []struct {
		length, l1, l2 int
	}{
		{16, 4, 1},
		{17, 5, 2},
		{3197, 800, 200},
	}
	for _, tt := range tests {
		net := NewConvNet(WithConvSeed(1))
		if err := net.Build(tt.length); err != nil {
			t.Fatalf("Build(%d) failed: %v", tt.length, err)
		}
		if net.L1 != tt.l1 || net.L2 != tt.l2 {
			t.Errorf("length %d: pooled lengths (%d, %d), want (%d, %d)", tt.length, net.L1, net.L2, tt.l1, tt.l2)
		}
		if len(net.DenseW) != net.Filters2*net.L2 {
			t.Errorf("length %d: flatten width %d, want %d", tt.length, len(net.DenseW), net.Filters2*net.L2)
		}
	}
}

func TestConvNetLearnsWaveform(t *testing.T) {
	X, y := makeWaveform(60, 32, 9)

	net := NewConvNet(WithConvSeed(4), WithConvLearningRate(0.01))
	if err := net.Build(32); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	history, err := net.Fit(X, y, 8, 60, X, y)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if history.Epochs() != 60 {
		t.Errorf("history length: got %d, want 60", history.Epochs())
	}

	_, acc, err := net.Evaluate(X, y)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if acc < 0.9 {
		t.Errorf("training accuracy too low: %v", acc)
	}
}

func TestConvNetBuildRejectsShortSequence(t *testing.T) {
	net := NewConvNet()
	err := net.Build(3)
	if err == nil {
		t.Fatal("Build should reject sequences shorter than the first kernel")
	}
	var ide *errors.InsufficientDataError
	if !errors.As(err, &ide) {
		t.Errorf("expected InsufficientDataError, got %T", err)
	}
}

func TestConvNetSaveLoadRoundTrip(t *testing.T) {
	X, y := makeWaveform(20, 16, 6)

	net := NewConvNet(WithConvSeed(3), WithConvLearningRate(0.01))
	if err := net.Build(16); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if _, err := net.Fit(X, y, 4, 10, X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "conv.gob")
	if err := net.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	restored := NewConvNet()
	if err := restored.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want, err := net.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba failed: %v", err)
	}
	got, err := restored.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba after Load failed: %v", err)
	}
	for i := 0; i < want.Len(); i++ {
		if math.Abs(want.AtVec(i)-got.AtVec(i)) > 1e-12 {
			t.Fatalf("row %d: prediction drifted after Load: %v vs %v", i, want.AtVec(i), got.AtVec(i))
		}
	}
}

func TestExactHalfProbabilityClassifiedNegative(t *testing.T) {
	net := NewDenseNet(WithDenseSeed(1))
	if err := net.Build(3); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// All-zero weights force sigmoid(0) = 0.5 exactly.
	zero(net.W1)
	zero(net.B1)
	zero(net.W2)
	zero(net.B2)

	if p := net.predictRow([]float64{1, 2, 3}); p != 0.5 {
		t.Fatalf("forced probability: got %v, want exactly 0.5", p)
	}

	X := mat.NewDense(1, 3, []float64{1, 2, 3})
	y := mat.NewVecDense(1, []float64{1})
	_, acc := evaluateNet(net, X, y)
	if acc != 0 {
		t.Errorf("probability 0.5 must classify as negative; accuracy %v against a positive label", acc)
	}
}

func TestFitReproducibleWithSeed(t *testing.T) {
	X, y := makeSeparable(30, 4, 8)

	run := func() *mat.VecDense {
		net := NewDenseNet(WithDenseSeed(77), WithDenseLearningRate(0.01))
		if err := net.Build(4); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		if _, err := net.Fit(X, y, 8, 10, X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		probs, err := net.PredictProba(X)
		if err != nil {
			t.Fatalf("PredictProba failed: %v", err)
		}
		return probs
	}

	a := run()
	b := run()
	for i := 0; i < a.Len(); i++ {
		if a.AtVec(i) != b.AtVec(i) {
			t.Fatalf("row %d: seeded runs diverged: %v vs %v", i, a.AtVec(i), b.AtVec(i))
		}
	}
}
