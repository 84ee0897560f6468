package charts

import (
	"fmt"
	"math"

	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/airquality/internal/analysis"
	"github.com/lox/airquality/internal/models"
)

const (
	minRadius = 2
	maxRadius = 7
)

// ScatterOptions selects the optional point encodings.
type ScatterOptions struct {
	// ColorByX colours points by the meteorological value.
	ColorByX bool
	// SizeByY sizes points by the pollutant value.
	SizeByY bool
}

// Scatter plots a meteorological parameter against a pollutant for one
// station.
func Scatter(station, met, pollutant string, records []models.Record, opts ScatterOptions) (*Chart, error) {
	if len(records) == 0 {
		return nil, &models.InsufficientDataError{What: "scatter plot", Rows: 0}
	}
	xs, err := analysis.Column(records, met)
	if err != nil {
		return nil, err
	}
	ys, err := analysis.Column(records, pollutant)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s vs %s - %s", met, pollutant, station)
	p := newPlot(title, met, pollutant)

	xys := make(plotter.XYs, len(xs))
	for i := range xs {
		xys[i].X = xs[i]
		xys[i].Y = ys[i]
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = translucent(blue, 180)
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	if opts.ColorByX || opts.SizeByY {
		xMin, xMax := span(xs)
		yMin, yMax := span(ys)
		cm := moreland.SmoothBlueRed()
		cm.SetMin(xMin)
		cm.SetMax(xMax)
		base := s.GlyphStyle
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			gs := base
			if opts.ColorByX {
				if c, err := cm.At(xs[i]); err == nil {
					gs.Color = c
				}
			}
			if opts.SizeByY {
				t := (ys[i] - yMin) / (yMax - yMin)
				gs.Radius = vg.Points(minRadius + t*(maxRadius-minRadius))
			}
			return gs
		}
		if opts.ColorByX {
			p.Legend.Add("hue: "+met, s)
		}
		if opts.SizeByY {
			p.Legend.Add("size: "+pollutant, s)
		}
	}
	p.Add(plotter.NewGrid(), s)

	return &Chart{Kind: KindScatter, Title: title, Plot: p, Width: 8 * vg.Inch, Height: 6 * vg.Inch}, nil
}

// span returns the range of values, widened when all values are equal.
func span(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return lo, hi
}
