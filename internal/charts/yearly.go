package charts

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/lox/airquality/internal/analysis"
	"github.com/lox/airquality/internal/models"
)

// YearlyTitle is the headline of the all-stations line chart, spanning the
// years present in the data.
func YearlyTitle(avgs []models.YearlyAverage) string {
	first, last, ok := analysis.YearSpan(avgs)
	if !ok {
		return "Average Pollution Index per Station"
	}
	if first == last {
		return fmt.Sprintf("Average Pollution Index per Station (%d)", first)
	}
	return fmt.Sprintf("Average Pollution Index per Station (%d-%d)", first, last)
}

// YearlyAll draws one line per station of the yearly average pollution index.
func YearlyAll(avgs []models.YearlyAverage) (*Chart, error) {
	if len(avgs) == 0 {
		return nil, &models.InsufficientDataError{What: "yearly averages", Rows: 0}
	}
	title := YearlyTitle(avgs)
	p := newPlot(title, "Year", "Average Pollution Index")
	p.Legend.TextStyle.Font.Size = vg.Points(9)

	pivot := analysis.Pivot(avgs)
	for i, station := range pivot.Stations {
		years, values := pivot.Series(station)
		line, points, err := plotter.NewLinePoints(seriesXYs(years, values))
		if err != nil {
			return nil, err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = plotutil.Shape(i)
		p.Add(line, points)
		p.Legend.Add(station, line, points)
	}
	p.X.Tick.Marker = yearTicks(pivot.Years)
	p.Add(plotter.NewGrid())

	return &Chart{Kind: KindYearly, Title: title, Plot: p, Width: 14 * vg.Inch, Height: 7 * vg.Inch}, nil
}

// YearlySingle draws the yearly average pollution index of one station.
func YearlySingle(station string, avgs []models.YearlyAverage) (*Chart, error) {
	var years []int
	var values []float64
	for _, a := range avgs {
		if a.Station == station {
			years = append(years, a.Year)
			values = append(values, a.PollutionIndex)
		}
	}
	if len(years) == 0 {
		return nil, &models.UnknownStationError{Station: station}
	}

	title := fmt.Sprintf("Average Pollution Index - %s", station)
	p := newPlot(title, "Year", "Average Pollution Index")

	line, points, err := plotter.NewLinePoints(seriesXYs(years, values))
	if err != nil {
		return nil, err
	}
	line.Color = blue
	line.Width = vg.Points(2)
	points.GlyphStyle.Color = blue
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, points)
	p.X.Tick.Marker = yearTicks(years)
	p.Add(plotter.NewGrid())

	return &Chart{Kind: KindYearly, Title: title, Plot: p, Width: 8 * vg.Inch, Height: 6 * vg.Inch}, nil
}

func seriesXYs(years []int, values []float64) plotter.XYs {
	xys := make(plotter.XYs, len(years))
	for i := range years {
		xys[i].X = float64(years[i])
		xys[i].Y = values[i]
	}
	return xys
}

func yearTicks(years []int) plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, len(years))
	for i, y := range years {
		ticks[i] = plot.Tick{Value: float64(y), Label: strconv.Itoa(y)}
	}
	return ticks
}
