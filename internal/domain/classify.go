package domain

import (
	"fmt"
	"math"
	"sort"
)

// DroughtLevel is the aridity class of a single observation.
type DroughtLevel string

const (
	LowArid    DroughtLevel = "Low_Arid"
	MediumArid DroughtLevel = "Medium_Arid"
	HighArid   DroughtLevel = "High_Arid"
)

// DroughtLevels lists the levels from least to most arid.
var DroughtLevels = []DroughtLevel{LowArid, MediumArid, HighArid}

// Region is the quadrant of a location relative to the center.
type Region string

const (
	Northeast Region = "Northeast"
	Northwest Region = "Northwest"
	Southeast Region = "Southeast"
	Southwest Region = "Southwest"
)

// Regions lists the quadrants in display order.
var Regions = []Region{Northeast, Northwest, Southeast, Southwest}

// DefaultCenter is the reference point for region classification.
var DefaultCenter = Location{Lon: -110.0098, Lat: 37.59964}

// Branch identifies which rule of the drought table produced a label.
type Branch int

const (
	BranchLow Branch = iota + 1
	BranchMedium
	BranchHigh
	// BranchFallback covers cold-and-dry and hot-and-wet rows.
	BranchFallback
)

func (b Branch) String() string {
	switch b {
	case BranchLow:
		return "low"
	case BranchMedium:
		return "medium"
	case BranchHigh:
		return "high"
	case BranchFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Tercile probabilities.
const (
	lowerTercile = 0.33
	upperTercile = 0.66
)

// Thresholds holds the global tercile cut points.
type Thresholds struct {
	T33 float64 `json:"t33"`
	T66 float64 `json:"t66"`
	P33 float64 `json:"p33"`
	P66 float64 `json:"p66"`
}

// Quantile returns the p-quantile of values, ignoring missing ones. It
// interpolates linearly between order statistics at h = (n-1)p.
func Quantile(values []float64, p float64) (float64, error) {
	if p < 0 || p > 1 || math.IsNaN(p) {
		return math.NaN(), fmt.Errorf("quantile probability %v out of range", p)
	}
	xs := make([]float64, 0, len(values))
	for _, v := range values {
		if !IsMissing(v) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 {
		return math.NaN(), ErrNoObservations
	}
	sort.Float64s(xs)

	h := float64(len(xs)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(xs)-1 {
		return xs[len(xs)-1], nil
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo]), nil
}

// ComputeThresholds derives terciles of row-average temperature and
// precipitation over every observation where both averages are present.
func ComputeThresholds(obs []Observation) (Thresholds, error) {
	var ts, ps []float64
	for _, o := range obs {
		t, p := o.AvgTemperature(), o.AvgPrecipitation()
		if IsMissing(t) || IsMissing(p) {
			continue
		}
		ts = append(ts, t)
		ps = append(ps, p)
	}
	if len(ts) == 0 {
		return Thresholds{}, fmt.Errorf("compute thresholds: %w", ErrNoObservations)
	}

	var th Thresholds
	th.T33, _ = Quantile(ts, lowerTercile)
	th.T66, _ = Quantile(ts, upperTercile)
	th.P33, _ = Quantile(ps, lowerTercile)
	th.P66, _ = Quantile(ps, upperTercile)
	return th, nil
}

// ClassifyDrought labels a row from its average temperature and precipitation.
func ClassifyDrought(t, p float64, th Thresholds) DroughtLevel {
	level, _ := ClassifyDroughtBranch(t, p, th)
	return level
}

// ClassifyDroughtBranch is ClassifyDrought that also reports the rule that fired.
func ClassifyDroughtBranch(t, p float64, th Thresholds) (DroughtLevel, Branch) {
	switch {
	case t <= th.T33 && p >= th.P66:
		return LowArid, BranchLow
	case (t > th.T33 && t <= th.T66) || (p > th.P33 && p <= th.P66):
		return MediumArid, BranchMedium
	case t > th.T66 && p <= th.P33:
		return HighArid, BranchHigh
	default:
		return MediumArid, BranchFallback
	}
}

// ClassifyRegion returns the quadrant of loc relative to center. Points on
// an axis go north or east.
func ClassifyRegion(loc, center Location) Region {
	east := loc.Lon >= center.Lon
	north := loc.Lat >= center.Lat
	switch {
	case east && north:
		return Northeast
	case east:
		return Southeast
	case north:
		return Northwest
	default:
		return Southwest
	}
}

// AnnotatedObservation is an observation with its derived labels.
type AnnotatedObservation struct {
	Observation
	AvgTemperature   float64
	AvgPrecipitation float64
	Drought          DroughtLevel
	Branch           Branch
	Region           Region
}

// Label annotates one observation. ok is false when either seasonal average
// is missing, in which case the row is not classifiable.
func Label(o Observation, th Thresholds, center Location) (AnnotatedObservation, bool) {
	t, p := o.AvgTemperature(), o.AvgPrecipitation()
	if IsMissing(t) || IsMissing(p) {
		return AnnotatedObservation{}, false
	}
	level, branch := ClassifyDroughtBranch(t, p, th)
	return AnnotatedObservation{
		Observation:      o,
		AvgTemperature:   t,
		AvgPrecipitation: p,
		Drought:          level,
		Branch:           branch,
		Region:           ClassifyRegion(o.Location, center),
	}, true
}

// ModalDrought returns the most frequent drought level per location. Ties
// resolve toward the more arid level.
func ModalDrought(rows []AnnotatedObservation) map[Location]DroughtLevel {
	counts := make(map[Location]map[DroughtLevel]int)
	for _, r := range rows {
		c, ok := counts[r.Location]
		if !ok {
			c = make(map[DroughtLevel]int, len(DroughtLevels))
			counts[r.Location] = c
		}
		c[r.Drought]++
	}

	out := make(map[Location]DroughtLevel, len(counts))
	for loc, c := range counts {
		best, bestN := DroughtLevel(""), -1
		for _, lvl := range DroughtLevels {
			if c[lvl] >= bestN && c[lvl] > 0 {
				best, bestN = lvl, c[lvl]
			}
		}
		out[loc] = best
	}
	return out
}
