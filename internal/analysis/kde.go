package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lox/airquality/internal/models"
)

const (
	kdeGridPoints = 200
	kdeCut        = 3
)

// Curve is a density estimate sampled on an evenly spaced grid.
type Curve struct {
	X         []float64
	Y         []float64
	Bandwidth float64
}

// ScottBandwidth returns n^(-1/5) times the sample standard deviation.
func ScottBandwidth(sample []float64) float64 {
	n := float64(len(sample))
	return math.Pow(n, -1.0/5) * stat.StdDev(sample, nil)
}

// KDE estimates the density of sample with a Gaussian kernel. The grid
// extends three bandwidths past the sample range.
func KDE(sample []float64) (Curve, error) {
	if len(sample) < 2 {
		return Curve{}, &models.InsufficientDataError{What: "density estimate", Rows: len(sample)}
	}
	bw := ScottBandwidth(sample)
	if bw == 0 || math.IsNaN(bw) {
		return Curve{}, &models.InsufficientDataError{What: "density estimate of a constant sample", Rows: len(sample)}
	}

	lo, hi := sample[0], sample[0]
	for _, v := range sample[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	lo -= kdeCut * bw
	hi += kdeCut * bw

	kernel := distuv.Normal{Mu: 0, Sigma: bw}
	step := (hi - lo) / (kdeGridPoints - 1)
	c := Curve{
		X:         make([]float64, kdeGridPoints),
		Y:         make([]float64, kdeGridPoints),
		Bandwidth: bw,
	}
	n := float64(len(sample))
	for i := range c.X {
		x := lo + float64(i)*step
		var sum float64
		for _, v := range sample {
			sum += kernel.Prob(x - v)
		}
		c.X[i] = x
		c.Y[i] = sum / n
	}
	return c, nil
}
