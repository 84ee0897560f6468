// Package charts renders the dashboard's charts with gonum/plot. Every
// renderer is a pure function of its inputs and returns a Chart that can be
// encoded as PNG or SVG.
package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// Format is an output image encoding.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// ParseFormat validates an encoding name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case PNG, SVG:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported chart format %q", s)
}

// ContentType returns the HTTP media type of the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Kind names one of the fixed dashboard charts.
type Kind string

const (
	KindDensity Kind = "density"
	KindYearly  Kind = "yearly"
	KindScatter Kind = "scatter"
	KindHeatmap Kind = "heatmap"
)

// Kinds lists every chart in page order.
var Kinds = []Kind{KindDensity, KindYearly, KindScatter, KindHeatmap}

// Chart is a renderable plot description.
type Chart struct {
	Kind   Kind
	Title  string
	Plot   *plot.Plot
	Width  vg.Length
	Height vg.Length
}

// Encode writes the chart to w in the given format.
func (c *Chart) Encode(w io.Writer, f Format) error {
	wt, err := c.Plot.WriterTo(c.Width, c.Height, string(f))
	if err != nil {
		return fmt.Errorf("encode %s chart: %w", c.Kind, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write %s chart: %w", c.Kind, err)
	}
	return nil
}

// Bytes encodes the chart into memory so a failed render never yields a
// partial image.
func (c *Chart) Bytes(f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var (
	blue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	orange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	grey   = color.RGBA{R: 200, G: 200, B: 200, A: 255}
)

// translucent returns c with the given alpha, premultiplied.
func translucent(c color.RGBA, alpha uint8) color.RGBA {
	a := uint16(alpha)
	return color.RGBA{
		R: uint8(uint16(c.R) * a / 255),
		G: uint8(uint16(c.G) * a / 255),
		B: uint8(uint16(c.B) * a / 255),
		A: alpha,
	}
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	return p
}
