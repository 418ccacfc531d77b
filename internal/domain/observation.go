package domain

import (
	"errors"
	"math"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// ErrNoObservations is returned when an operation needs at least one row.
var ErrNoObservations = errors.New("no observations")

// earthRadiusKm is the IUGG mean Earth radius.
const earthRadiusKm = 6371.0088

// siteIDPrecision gives ~19m cells, well below the spacing of monitoring points.
const siteIDPrecision = 8

// Location identifies a fixed monitoring point.
type Location struct {
	Lon float64 `json:"longitude"`
	Lat float64 `json:"latitude"`
}

// SiteID returns a short stable identifier for the location.
func (l Location) SiteID() string {
	return geohash.EncodeWithPrecision(l.Lat, l.Lon, siteIDPrecision)
}

// DistanceKm returns the great-circle distance to other in kilometres.
func (l Location) DistanceKm(other Location) float64 {
	a := s2.LatLngFromDegrees(l.Lat, l.Lon)
	b := s2.LatLngFromDegrees(other.Lat, other.Lon)
	return a.Distance(b).Radians() * earthRadiusKm
}

// Field names a numeric column of an Observation. Values match the CSV headers.
type Field string

const (
	TWinter           Field = "T_Winter"
	TSpring           Field = "T_Spring"
	TSummer           Field = "T_Summer"
	TFall             Field = "T_Fall"
	PPTWinter         Field = "PPT_Winter"
	PPTSpring         Field = "PPT_Spring"
	PPTSummer         Field = "PPT_Summer"
	PPTFall           Field = "PPT_Fall"
	VWCWinter         Field = "VWC_Winter_whole"
	VWCSpring         Field = "VWC_Spring_whole"
	VWCSummer         Field = "VWC_Summer_whole"
	VWCFall           Field = "VWC_Fall_whole"
	DrySoilDaysSummer Field = "DrySoilDays_Summer_whole"
	Bare              Field = "Bare"
	Herb              Field = "Herb"
	Litter            Field = "Litter"
	Shrub             Field = "Shrub"
	TreeCanopy        Field = "treecanopy"
)

// Fields lists every numeric column in CSV order.
var Fields = []Field{
	TWinter, TSpring, TSummer, TFall,
	PPTWinter, PPTSpring, PPTSummer, PPTFall,
	VWCWinter, VWCSpring, VWCSummer, VWCFall,
	DrySoilDaysSummer,
	Bare, Herb, Litter, Shrub, TreeCanopy,
}

// CoverFields are the ground-cover fractions. Their sum is not guaranteed to be 1.
var CoverFields = []Field{Bare, Herb, Litter, Shrub, TreeCanopy}

// VWCFields are the seasonal soil water contents, winter first.
var VWCFields = []Field{VWCWinter, VWCSpring, VWCSummer, VWCFall}

// Observation is one row of either source table: a location in a year.
// Missing numeric values are NaN.
type Observation struct {
	Location Location
	Year     int
	// Source is the file the row came from. Only used for load accounting.
	Source string

	values [numFields]float64
}

const numFields = 18

var fieldIndex = func() map[Field]int {
	m := make(map[Field]int, len(Fields))
	for i, f := range Fields {
		m[f] = i
	}
	return m
}()

// NewObservation returns an observation with every field missing.
func NewObservation(loc Location, year int) Observation {
	o := Observation{Location: loc, Year: year}
	for i := range o.values {
		o.values[i] = math.NaN()
	}
	return o
}

// Value returns the field, or NaN when missing or unknown.
func (o Observation) Value(f Field) float64 {
	i, ok := fieldIndex[f]
	if !ok {
		return math.NaN()
	}
	return o.values[i]
}

// With returns a copy of o with f set to v. Unknown fields are ignored.
func (o Observation) With(f Field, v float64) Observation {
	if i, ok := fieldIndex[f]; ok {
		o.values[i] = v
	}
	return o
}

// Set assigns f in place. Unknown fields are ignored.
func (o *Observation) Set(f Field, v float64) {
	if i, ok := fieldIndex[f]; ok {
		o.values[i] = v
	}
}

// IsKnownField reports whether name is one of the numeric columns.
func IsKnownField(name string) bool {
	_, ok := fieldIndex[Field(name)]
	return ok
}

// AvgTemperature is the mean of summer and winter temperature.
func (o Observation) AvgTemperature() float64 {
	return (o.Value(TSummer) + o.Value(TWinter)) / 2
}

// AvgPrecipitation is the mean of summer and winter precipitation.
func (o Observation) AvgPrecipitation() float64 {
	return (o.Value(PPTSummer) + o.Value(PPTWinter)) / 2
}

// IsMissing reports whether v is a missing value.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Nullable converts a missing value to nil for JSON encoding.
func Nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
