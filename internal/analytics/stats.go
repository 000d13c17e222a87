package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// round2 rounds to two decimals, mapping NaN and ±Inf to 0
func round2(v float64) float64 {
	return roundTo(v, 100)
}

// round4 rounds to four decimals, mapping NaN and ±Inf to 0
func round4(v float64) float64 {
	return roundTo(v, 10000)
}

func roundTo(v, ratio float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*ratio) / ratio
}

// Regression holds an ordinary least squares fit of y on x
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
	PValue    float64 // two-sided test of slope = 0
	StdErr    float64 // standard error of the slope
}

// LinearRegression fits y = intercept + slope·x. It needs at least three
// points; fewer yield a zero regression with p-value 1.
//
// A perfect fit has standard error 0 and p-value 0. A constant y has
// slope 0, R² 0 and p-value 1.
func LinearRegression(x, y []float64) Regression {
	n := len(x)
	if n < 3 || len(y) != n {
		return Regression{PValue: 1}
	}

	intercept, slope := stat.LinearRegression(x, y, nil, false)

	meanX := stat.Mean(x, nil)
	meanY := stat.Mean(y, nil)
	var sxx, syy, sse float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		sxx += dx * dx
		syy += dy * dy
		residual := y[i] - (intercept + slope*x[i])
		sse += residual * residual
	}

	if sxx == 0 || syy == 0 {
		return Regression{Intercept: meanY, PValue: 1}
	}

	reg := Regression{
		Slope:     slope,
		Intercept: intercept,
		RSquared:  math.Max(0, math.Min(1, stat.RSquared(x, y, nil, intercept, slope))),
	}

	df := float64(n - 2)
	reg.StdErr = math.Sqrt(sse / df / sxx)

	switch {
	case reg.StdErr == 0 && slope != 0:
		reg.PValue = 0
	case reg.StdErr == 0:
		reg.PValue = 1
	default:
		t := slope / reg.StdErr
		tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
		reg.PValue = math.Min(1, 2*(1-tDist.CDF(math.Abs(t))))
	}

	return reg
}
