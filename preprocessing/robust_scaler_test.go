package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

func TestRobustScalerNotFitted(t *testing.T) {
	s := NewRobustScaler()
	_, err := s.Transform(mat.NewDense(2, 2, nil))
	if err == nil {
		t.Fatal("Transform before Fit should fail")
	}
	var nt *errors.NotTrainedError
	if !errors.As(err, &nt) {
		t.Errorf("expected *NotTrainedError, got %T", err)
	}
}

func TestRobustScalerCentersOnMedian(t *testing.T) {
	// Column 0: median 3, IQR 2. Column 1: median 30, IQR 20.
	X := mat.NewDense(5, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
		5, 50,
	})

	s := NewRobustScaler()
	got, err := s.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// The median row scales to zero in every column.
	if math.Abs(got.At(2, 0)) > 1e-12 || math.Abs(got.At(2, 1)) > 1e-12 {
		t.Errorf("median row not centred: [%f, %f]", got.At(2, 0), got.At(2, 1))
	}

	if math.Abs(s.Center[0]-3.0) > 1e-12 || math.Abs(s.Scale[0]-2.0) > 1e-12 {
		t.Errorf("column 0 stats: center %f scale %f, want 3 and 2", s.Center[0], s.Scale[0])
	}
}

func TestRobustScalerIdempotentUnderRefit(t *testing.T) {
	X := mat.NewDense(9, 1, []float64{-4, -2, -1, 0, 1, 3, 5, 8, 13})

	first := NewRobustScaler()
	scaled, err := first.FitTransform(X)
	if err != nil {
		t.Fatalf("first FitTransform failed: %v", err)
	}

	second := NewRobustScaler()
	if err := second.Fit(scaled); err != nil {
		t.Fatalf("refit failed: %v", err)
	}

	// Refit statistics on already-scaled data: zero median, unit IQR.
	if math.Abs(second.Center[0]) > 1e-9 {
		t.Errorf("refit median %g, want 0", second.Center[0])
	}
	if math.Abs(second.Scale[0]-1.0) > 1e-9 {
		t.Errorf("refit IQR %g, want 1", second.Scale[0])
	}
}

func TestRobustScalerFrozenStatisticsOnTest(t *testing.T) {
	train := mat.NewDense(5, 1, []float64{0, 1, 2, 3, 4})
	test := mat.NewDense(2, 1, []float64{100, 2})

	s := NewRobustScaler()
	if _, err := s.FitTransform(train); err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	got, err := s.Transform(test)
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}

	// Train stats: median 2, IQR 2. Test values must use them unchanged.
	if math.Abs(got.At(0, 0)-49.0) > 1e-12 {
		t.Errorf("outlier scaled to %f, want 49", got.At(0, 0))
	}
	if math.Abs(got.At(1, 0)) > 1e-12 {
		t.Errorf("train median value scaled to %f, want 0", got.At(1, 0))
	}
}

func TestRobustScalerConstantColumn(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		7, 1,
		7, 2,
		7, 3,
		7, 4,
	})

	t.Run("unit scale fallback", func(t *testing.T) {
		s := NewRobustScaler()
		got, err := s.FitTransform(X)
		if err != nil {
			t.Fatalf("FitTransform failed: %v", err)
		}
		for i := 0; i < 4; i++ {
			v := got.At(i, 0)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("constant column produced non-finite value %f", v)
			}
			if v != 0 {
				t.Errorf("constant column row %d: got %f, want 0", i, v)
			}
		}
	})

	t.Run("strict mode", func(t *testing.T) {
		s := NewRobustScaler()
		s.ErrorOnDegenerate = true
		err := s.Fit(X)
		if err == nil {
			t.Fatal("strict mode should reject a zero-IQR column")
		}
		var dc *errors.DegenerateColumnError
		if !errors.As(err, &dc) {
			t.Fatalf("expected *DegenerateColumnError, got %T", err)
		}
		if dc.Column != 0 {
			t.Errorf("reported column %d, want 0", dc.Column)
		}
	})
}

func TestRobustScalerWidthMismatch(t *testing.T) {
	s := NewRobustScaler()
	if err := s.Fit(mat.NewDense(4, 3, []float64{
		0, 1, 2,
		3, 4, 5,
		6, 7, 8,
		9, 10, 11,
	})); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	_, err := s.Transform(mat.NewDense(2, 2, nil))
	if err == nil {
		t.Fatal("width mismatch should be rejected")
	}
	var sm *errors.ShapeMismatchError
	if !errors.As(err, &sm) {
		t.Errorf("expected *ShapeMismatchError, got %T", err)
	}
}
