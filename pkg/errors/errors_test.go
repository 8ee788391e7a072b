package errors

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNotTrainedError(t *testing.T) {
	err := NewNotTrainedError("DenseNet", "Evaluate")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var notTrained *NotTrainedError
	if !As(err, &notTrained) {
		t.Fatalf("error should unwrap to *NotTrainedError, got %T", err)
	}
	if notTrained.ModelName != "DenseNet" || notTrained.Method != "Evaluate" {
		t.Errorf("unexpected fields: %+v", notTrained)
	}
	if !strings.Contains(err.Error(), "model not initialized") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestShapeMismatchError(t *testing.T) {
	tests := []struct {
		name     string
		axis     int
		wantWord string
	}{
		{"row axis", 0, "rows"},
		{"feature axis", 1, "features"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewShapeMismatchError("SMOTE.Resample", 100, 90, tt.axis)
			if !strings.Contains(err.Error(), tt.wantWord) {
				t.Errorf("message %q should mention %q", err.Error(), tt.wantWord)
			}

			var sm *ShapeMismatchError
			if !As(err, &sm) {
				t.Fatalf("error should unwrap to *ShapeMismatchError")
			}
			if sm.Expected != 100 || sm.Got != 90 {
				t.Errorf("unexpected fields: %+v", sm)
			}
		})
	}
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("SMOTE.Resample", 2, 1, "minority samples")
	var id *InsufficientDataError
	if !As(err, &id) {
		t.Fatalf("error should unwrap to *InsufficientDataError")
	}
	if id.Required != 2 || id.Got != 1 {
		t.Errorf("unexpected fields: %+v", id)
	}
}

func TestConfigError(t *testing.T) {
	err := NewConfigError("TestSplitFraction", "must be in (0, 1)", 1.5)
	if !strings.Contains(err.Error(), "TestSplitFraction") {
		t.Errorf("unexpected message: %s", err.Error())
	}

	var ce *ConfigError
	if !As(err, &ce) {
		t.Fatalf("error should unwrap to *ConfigError")
	}
}

func TestWarnHandlerOverride(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewUndefinedMetricWarning("precision", "no predicted samples", 0.0)
	Warn(w)

	if captured == nil {
		t.Fatal("warning handler was not invoked")
	}
	if !strings.Contains(captured.Error(), "precision") {
		t.Errorf("unexpected warning: %v", captured)
	}
}

func TestSafeExecuteRecoversPanic(t *testing.T) {
	err := SafeExecute("index arithmetic", func() error {
		var xs []int
		_ = xs[3] // out of range
		return nil
	})
	if err == nil {
		t.Fatal("expected recovered panic, got nil")
	}

	var pe *PanicError
	if !As(err, &pe) {
		t.Fatalf("expected *PanicError, got %T: %v", err, err)
	}
	if pe.Operation != "index arithmetic" {
		t.Errorf("unexpected operation: %s", pe.Operation)
	}
}

func TestCheckMatrix(t *testing.T) {
	finite := matStub{vals: [][]float64{{1, 2}, {3, 4}}}
	if err := CheckMatrix("scale", finite, 2, 2, 0); err != nil {
		t.Errorf("finite matrix should pass: %v", err)
	}

	bad := matStub{vals: [][]float64{{1, 2}, {3, nan()}}}
	if err := CheckMatrix("scale", bad, 2, 2, 0); err == nil {
		t.Error("NaN entry should be detected")
	}
}

type matStub struct{ vals [][]float64 }

func (m matStub) At(i, j int) float64 { return m.vals[i][j] }

func nan() float64 {
	z := 0.0
	return z / z
}

func TestAllKindsMarshalToZerolog(t *testing.T) {
	kinds := []struct {
		name string
		err  zerolog.LogObjectMarshaler
	}{
		{"NotTrainedError", &NotTrainedError{ModelName: "DenseNet", Method: "Fit"}},
		{"ShapeMismatchError", &ShapeMismatchError{Op: "op", Expected: 2, Got: 3, Axis: 1}},
		{"InsufficientDataError", &InsufficientDataError{Op: "op", Required: 2, Got: 1, What: "rows"}},
		{"DegenerateColumnError", &DegenerateColumnError{Op: "op", Column: 4, Stat: "IQR"}},
		{"ConfigError", &ConfigError{ParamName: "Epochs", Reason: "must be positive", Value: 0}},
		{"ValueError", &ValueError{Op: "op", Message: "bad value"}},
		{"NumericalInstabilityError", &NumericalInstabilityError{Operation: "scale", Values: []float64{nan()}, Iteration: 1}},
	}

	for _, k := range kinds {
		t.Run(k.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			logger.Error().Object("error", k.err).Msg("kind")
			if !strings.Contains(buf.String(), k.name) {
				t.Errorf("marshaled event missing type tag: %s", buf.String())
			}
		})
	}
}
