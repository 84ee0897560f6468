package charts

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/lox/airquality/internal/analysis"
	"github.com/lox/airquality/internal/models"
)

// Density overlays smoothed PM2.5 and PM10 density curves for one station.
func Density(station string, records []models.Record) (*Chart, error) {
	title := fmt.Sprintf("Comparison of PM2.5 and PM10 Levels - %s", station)
	p := newPlot(title, "Concentration", "Density")

	for _, s := range []struct {
		column string
		color  color.RGBA
	}{
		{models.PM25, blue},
		{models.PM10, orange},
	} {
		sample, err := analysis.Column(records, s.column)
		if err != nil {
			return nil, err
		}
		curve, err := analysis.KDE(sample)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.column, err)
		}

		xys := make(plotter.XYs, len(curve.X))
		for i := range curve.X {
			xys[i].X = curve.X[i]
			xys[i].Y = curve.Y[i]
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		line.FillColor = translucent(s.color, 80)
		p.Add(line)
		p.Legend.Add(s.column, line)
	}
	p.Y.Min = 0

	return &Chart{Kind: KindDensity, Title: title, Plot: p, Width: 8 * vg.Inch, Height: 6 * vg.Inch}, nil
}
