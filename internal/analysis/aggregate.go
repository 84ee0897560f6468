package analysis

import (
	"sort"

	"github.com/lox/airquality/internal/models"
)

type yearStation struct {
	year    int
	station string
}

// YearlyAverages groups records by (year, station) and averages the
// pollution index of each group. Only pairs present in the input appear.
// The result is sorted by year, then station.
func YearlyAverages(records []models.IndexedRecord) []models.YearlyAverage {
	sums := make(map[yearStation]float64)
	counts := make(map[yearStation]int)
	for _, r := range records {
		k := yearStation{r.Year, r.Station}
		sums[k] += r.PollutionIndex
		counts[k]++
	}

	out := make([]models.YearlyAverage, 0, len(sums))
	for k, sum := range sums {
		n := counts[k]
		out = append(out, models.YearlyAverage{
			Year:           k.year,
			Station:        k.station,
			PollutionIndex: sum / float64(n),
			Count:          n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Station < out[j].Station
	})
	return out
}

// PivotTable is the wide form of the yearly averages: one row per year and
// one column per station. Present reports which cells have data.
type PivotTable struct {
	Years    []int
	Stations []string
	Values   [][]float64
	Present  [][]bool
}

// Pivot reshapes yearly averages into years × stations. Missing
// combinations are left absent, never interpolated.
func Pivot(avgs []models.YearlyAverage) PivotTable {
	yearIdx := make(map[int]int)
	stationIdx := make(map[string]int)
	var p PivotTable
	for _, a := range avgs {
		if _, ok := yearIdx[a.Year]; !ok {
			yearIdx[a.Year] = 0
			p.Years = append(p.Years, a.Year)
		}
		if _, ok := stationIdx[a.Station]; !ok {
			stationIdx[a.Station] = 0
			p.Stations = append(p.Stations, a.Station)
		}
	}
	sort.Ints(p.Years)
	sort.Strings(p.Stations)
	for i, y := range p.Years {
		yearIdx[y] = i
	}
	for i, s := range p.Stations {
		stationIdx[s] = i
	}

	p.Values = make([][]float64, len(p.Years))
	p.Present = make([][]bool, len(p.Years))
	for i := range p.Years {
		p.Values[i] = make([]float64, len(p.Stations))
		p.Present[i] = make([]bool, len(p.Stations))
	}
	for _, a := range avgs {
		i, j := yearIdx[a.Year], stationIdx[a.Station]
		p.Values[i][j] = a.PollutionIndex
		p.Present[i][j] = true
	}
	return p
}

// Series returns the years and values of one station's column, skipping
// absent years.
func (p PivotTable) Series(station string) (years []int, values []float64) {
	j := -1
	for i, s := range p.Stations {
		if s == station {
			j = i
			break
		}
	}
	if j < 0 {
		return nil, nil
	}
	for i, y := range p.Years {
		if p.Present[i][j] {
			years = append(years, y)
			values = append(values, p.Values[i][j])
		}
	}
	return years, values
}

// YearSpan returns the first and last year of the averages.
func YearSpan(avgs []models.YearlyAverage) (first, last int, ok bool) {
	for i, a := range avgs {
		if i == 0 || a.Year < first {
			first = a.Year
		}
		if i == 0 || a.Year > last {
			last = a.Year
		}
	}
	return first, last, len(avgs) > 0
}
