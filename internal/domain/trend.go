package domain

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a trend cannot be fitted.
var ErrInsufficientData = errors.New("insufficient data for trend")

// Trend is an ordinary least-squares line y = Intercept + Slope*x.
type Trend struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	N         int     `json:"n"`
}

// FitTrend fits y on x over the pairs where both values are present.
// It needs at least two pairs and some spread in x.
func FitTrend(xs, ys []float64) (Trend, error) {
	if len(xs) != len(ys) {
		return Trend{}, fmt.Errorf("fit trend: %d x values for %d y values", len(xs), len(ys))
	}
	px := make([]float64, 0, len(xs))
	py := make([]float64, 0, len(ys))
	for i := range xs {
		if IsMissing(xs[i]) || IsMissing(ys[i]) {
			continue
		}
		px = append(px, xs[i])
		py = append(py, ys[i])
	}
	if len(px) < 2 {
		return Trend{}, fmt.Errorf("fit trend: %d pairs: %w", len(px), ErrInsufficientData)
	}
	if stat.Variance(px, nil) == 0 {
		return Trend{}, fmt.Errorf("fit trend: constant x: %w", ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(px, py, nil, false)
	return Trend{Slope: beta, Intercept: alpha, N: len(px)}, nil
}

// Predict returns the fitted value at x.
func (t Trend) Predict(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// Overlay returns fitted values at each x, keeping missing x as missing.
func (t Trend) Overlay(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = t.Predict(x)
	}
	return out
}

// SummerPairs returns (T_Summer, PPT_Summer) columns of obs.
func SummerPairs(obs []Observation) (temps, precip []float64) {
	temps = make([]float64, len(obs))
	precip = make([]float64, len(obs))
	for i, o := range obs {
		temps[i] = o.Value(TSummer)
		precip[i] = o.Value(PPTSummer)
	}
	return temps, precip
}

// YearlyAverage averages the summer temperature and precipitation across
// locations for each year, in first-appearance order of years.
func YearlyAverage(obs []Observation) []Group {
	return Aggregate(obs, ByYear, MeanOf(TSummer, PPTSummer))
}

// TrendSite picks the default single-site trend subject: the location with
// the highest mean summer soil water content among sites whose modal drought
// level is High_Arid. When no site is mostly High_Arid every site competes.
// Ties keep first appearance.
func TrendSite(t AnnotatedTable) (Location, error) {
	means := Aggregate(t.Observations, ByLocation, MeanOf(VWCSummer))
	modal := ModalDrought(t.Classified)

	if loc, ok := wettest(means, func(l Location) bool { return modal[l] == HighArid }); ok {
		return loc, nil
	}
	if loc, ok := wettest(means, func(Location) bool { return true }); ok {
		return loc, nil
	}
	return Location{}, fmt.Errorf("select trend site: %w", ErrNoObservations)
}

func wettest(groups []Group, keep func(Location) bool) (Location, bool) {
	var best Location
	bestV, found := 0.0, false
	for _, g := range groups {
		v := g.Value(VWCSummer)
		if IsMissing(v) || !keep(g.Key.Location) {
			continue
		}
		if !found || v > bestV {
			best, bestV, found = g.Key.Location, v, true
		}
	}
	return best, found
}
