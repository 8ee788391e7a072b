// Package report renders training history curves and confusion matrices to
// image files.
package report

import (
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bits-and-bytess/ExoplanetDetect/core/model"
	"github.com/bits-and-bytess/ExoplanetDetect/metrics"
	"github.com/bits-and-bytess/ExoplanetDetect/pkg/errors"
)

// SaveHistory writes loss.png and accuracy.png under dir, each with the
// training and validation curve per epoch.
func SaveHistory(h *model.History, dir string) error {
	if h == nil || h.Epochs() == 0 {
		return errors.Wrap(errors.ErrEmptyData, "report.SaveHistory")
	}

	if err := saveCurves("Model Loss", "Loss",
		h.Loss, h.ValLoss, filepath.Join(dir, "loss.png")); err != nil {
		return err
	}
	return saveCurves("Model Accuracy", "Accuracy",
		h.Accuracy, h.ValAccuracy, filepath.Join(dir, "accuracy.png"))
}

func saveCurves(title, yLabel string, train, val []float64, path string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = yLabel

	trainLine, err := plotter.NewLine(epochPoints(train))
	if err != nil {
		return errors.Wrap(err, "report.saveCurves")
	}
	valLine, err := plotter.NewLine(epochPoints(val))
	if err != nil {
		return errors.Wrap(err, "report.saveCurves")
	}
	valLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(trainLine, valLine)
	p.Legend.Add("train", trainLine)
	p.Legend.Add("validation", valLine)
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "report.saveCurves")
	}
	return nil
}

func epochPoints(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i + 1), Y: v}
	}
	return pts
}

// confusionGrid adapts 2x2 counts to the heat-map grid interface. Row 0 is
// the negative class, column 0 the negative prediction.
type confusionGrid struct {
	counts [2][2]int
}

func (g confusionGrid) Dims() (c, r int)   { return 2, 2 }
func (g confusionGrid) X(c int) float64    { return float64(c) }
func (g confusionGrid) Y(r int) float64    { return float64(r) }
func (g confusionGrid) Z(c, r int) float64 { return float64(g.counts[r][c]) }

// SaveConfusionMatrix renders the 2x2 counts as a heat map.
func SaveConfusionMatrix(counts metrics.ConfusionCounts, title, path string) error {
	grid := confusionGrid{counts: counts.Counts()}

	pal := palette.Heat(12, 1)
	hm := plotter.NewHeatMap(grid, pal)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Predicted"
	p.Y.Label.Text = "Actual"

	classTicks := []plot.Tick{
		{Value: 0, Label: "no exoplanet"},
		{Value: 1, Label: "exoplanet"},
	}
	p.X.Tick.Marker = plot.ConstantTicks(classTicks)
	p.Y.Tick.Marker = plot.ConstantTicks(classTicks)

	p.Add(hm)
	if err := p.Save(5*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrap(err, "report.SaveConfusionMatrix")
	}
	return nil
}
