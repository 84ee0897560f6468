package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/airquality/internal/analysis"
)

// matrixGrid adapts a correlation matrix to plotter.GridXYZ. Columns map to
// x and rows to y, with the first row drawn at the top.
type matrixGrid struct {
	m analysis.Matrix
}

func (g matrixGrid) Dims() (c, r int) { return len(g.m.Cols), len(g.m.Rows) }

func (g matrixGrid) Z(c, r int) float64 {
	cell := g.m.Cells[len(g.m.Rows)-1-r][c]
	if !cell.Defined {
		return math.NaN()
	}
	return cell.Value
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

// Heatmap draws a correlation matrix as a cool-warm grid annotated with
// each coefficient.
func Heatmap(station string, m analysis.Matrix) (*Chart, error) {
	if len(m.Rows) == 0 || len(m.Cols) == 0 {
		return nil, fmt.Errorf("empty correlation matrix")
	}
	title := fmt.Sprintf("Correlation between Meteorology and Pollution - %s", station)
	p := newPlot(title, "", "")
	p.Legend.Top = false

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(matrixGrid{m}, cm.Palette(255))
	hm.Min = -1
	hm.Max = 1
	hm.NaN = grey
	p.Add(hm)

	var labels plotter.XYLabels
	for r := range m.Rows {
		for c := range m.Cols {
			cell := m.Cells[r][c]
			text := "n/a"
			if cell.Defined {
				text = fmt.Sprintf("%.2f", cell.Value)
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(len(m.Rows) - 1 - r)})
			labels.Labels = append(labels.Labels, text)
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].XAlign = draw.XCenter
		l.TextStyle[i].YAlign = draw.YCenter
		l.TextStyle[i].Color = color.Black
		l.TextStyle[i].Font.Size = vg.Points(11)
	}
	p.Add(l)

	rows := make([]string, len(m.Rows))
	for i, name := range m.Rows {
		rows[len(m.Rows)-1-i] = name
	}
	p.NominalX(m.Cols...)
	p.NominalY(rows...)

	return &Chart{Kind: KindHeatmap, Title: title, Plot: p, Width: 10 * vg.Inch, Height: 8 * vg.Inch}, nil
}
