// Package metrics provides binary classification metrics for the evaluation
// driver: accuracy, confusion counts and a per-class precision/recall/F1
// report.
package metrics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// Binarize thresholds probabilities into hard 0/1 predictions. The comparison
// is strictly greater-than, so a probability of exactly threshold is the
// negative class.
func Binarize(probs *mat.VecDense, threshold float64) *mat.VecDense {
	n := probs.Len()
	out := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		if probs.AtVec(i) > threshold {
			out.SetVec(i, 1)
		}
	}
	return out
}

// Accuracy returns the fraction of predictions equal to the true labels.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewShapeMismatchError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionCounts holds the 2x2 confusion matrix for the positive class.
type ConfusionCounts struct {
	TN int
	FP int
	FN int
	TP int
}

// Counts returns the matrix as [[TN, FP], [FN, TP]], rows indexed by true
// label and columns by predicted label.
func (c ConfusionCounts) Counts() [2][2]int {
	return [2][2]int{{c.TN, c.FP}, {c.FN, c.TP}}
}

// ConfusionMatrix computes the 2x2 confusion counts. Labels must be 0/1.
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (ConfusionCounts, error) {
	n := yTrue.Len()
	if n == 0 {
		return ConfusionCounts{}, errors.NewValueError("ConfusionMatrix", "empty vector")
	}
	if yPred.Len() != n {
		return ConfusionCounts{}, errors.NewShapeMismatchError("ConfusionMatrix", n, yPred.Len(), 0)
	}

	var cm ConfusionCounts
	for i := 0; i < n; i++ {
		yt, yp := yTrue.AtVec(i), yPred.AtVec(i)
		if (yt != 0 && yt != 1) || (yp != 0 && yp != 1) {
			return ConfusionCounts{}, errors.NewValueError("ConfusionMatrix", "labels must be binary 0/1")
		}
		switch {
		case yt == 0 && yp == 0:
			cm.TN++
		case yt == 0 && yp == 1:
			cm.FP++
		case yt == 1 && yp == 0:
			cm.FN++
		default:
			cm.TP++
		}
	}
	return cm, nil
}

// ClassMetrics holds per-class precision, recall, F1 and support.
type ClassMetrics struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is the full evaluation summary for one partition.
type Report struct {
	Accuracy  float64
	Confusion ConfusionCounts
	// PerClass is indexed by class label, 0 and 1.
	PerClass [2]ClassMetrics
}

// ClassificationReport computes accuracy, confusion counts and the per-class
// precision/recall/F1 breakdown. A precision or recall that is undefined
// (zero denominator) is set to 0 and reported as a warning.
func ClassificationReport(yTrue, yPred *mat.VecDense) (*Report, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return nil, err
	}

	rep := &Report{Accuracy: acc, Confusion: cm}
	// Class 1 is the exoplanet class; class 0 mirrors the counts.
	rep.PerClass[1] = classMetrics("class 1", cm.TP, cm.FP, cm.FN, cm.TP+cm.FN)
	rep.PerClass[0] = classMetrics("class 0", cm.TN, cm.FN, cm.FP, cm.TN+cm.FP)
	return rep, nil
}

func classMetrics(name string, tp, fp, fn, support int) ClassMetrics {
	m := ClassMetrics{Support: support}

	if tp+fp == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", name+" has no predicted samples", 0))
	} else {
		m.Precision = float64(tp) / float64(tp+fp)
	}

	if tp+fn == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", name+" has no true samples", 0))
	} else {
		m.Recall = float64(tp) / float64(tp+fn)
	}

	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}

// String renders the report in a classification-report layout.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "accuracy: %.4f\n", r.Accuracy)
	fmt.Fprintf(&b, "%8s %10s %10s %10s %10s\n", "class", "precision", "recall", "f1-score", "support")
	for label := 0; label <= 1; label++ {
		m := r.PerClass[label]
		fmt.Fprintf(&b, "%8d %10.4f %10.4f %10.4f %10d\n", label, m.Precision, m.Recall, m.F1, m.Support)
	}
	fmt.Fprintf(&b, "confusion: [[%d %d] [%d %d]]\n", r.Confusion.TN, r.Confusion.FP, r.Confusion.FN, r.Confusion.TP)
	return b.String()
}
