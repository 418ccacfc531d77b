package domain

import (
	"math"
	"sort"
)

// Op selects how a field is reduced within a group.
type Op int

const (
	Sum Op = iota
	Mean
)

func (o Op) String() string {
	if o == Mean {
		return "mean"
	}
	return "sum"
}

// Metric is one field reduction requested from Aggregate.
type Metric struct {
	Field Field
	Op    Op
}

// SumOf and MeanOf build metrics for several fields at once.
func SumOf(fields ...Field) []Metric  { return metricsOf(Sum, fields) }
func MeanOf(fields ...Field) []Metric { return metricsOf(Mean, fields) }

func metricsOf(op Op, fields []Field) []Metric {
	out := make([]Metric, len(fields))
	for i, f := range fields {
		out[i] = Metric{Field: f, Op: op}
	}
	return out
}

// Grouping selects the group key.
type Grouping int

const (
	ByLocation Grouping = iota
	ByLocationYear
	ByYear
	ByDecade
)

// GroupKey identifies a group. Fields not part of the grouping are zero.
// For ByDecade, Year holds the first year of the decade.
type GroupKey struct {
	Location Location
	Year     int
}

// Group is one aggregated row.
type Group struct {
	Key GroupKey
	// Rows is the number of input observations in the group.
	Rows int

	values map[Field]float64
	counts map[Field]int
}

// Value returns the reduced field, or NaN when it was not requested or a
// mean had no present values.
func (g Group) Value(f Field) float64 {
	v, ok := g.values[f]
	if !ok {
		return math.NaN()
	}
	return v
}

// Present returns how many non-missing inputs fed the field.
func (g Group) Present(f Field) int {
	return g.counts[f]
}

// AggregateOptions tunes Aggregate. DecadeStart anchors ByDecade buckets.
type AggregateOptions struct {
	DecadeStart int
}

// DefaultDecadeStart is the first year of the first decade bucket.
const DefaultDecadeStart = 1980

// Aggregate groups observations and reduces each metric per group, skipping
// missing values. Groups are returned in order of the first appearance of
// their key; values do not depend on input order beyond float rounding.
func Aggregate(obs []Observation, by Grouping, metrics []Metric) []Group {
	return AggregateWith(obs, by, metrics, AggregateOptions{DecadeStart: DefaultDecadeStart})
}

// AggregateWith is Aggregate with explicit options.
func AggregateWith(obs []Observation, by Grouping, metrics []Metric, opts AggregateOptions) []Group {
	index := make(map[GroupKey]int)
	groups := make([]Group, 0)

	for _, o := range obs {
		key := keyFor(o, by, opts.DecadeStart)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Key:    key,
				values: make(map[Field]float64, len(metrics)),
				counts: make(map[Field]int, len(metrics)),
			})
		}
		g := &groups[i]
		g.Rows++
		for _, m := range metrics {
			v := o.Value(m.Field)
			if IsMissing(v) {
				continue
			}
			g.values[m.Field] += v
			g.counts[m.Field]++
		}
	}

	for i := range groups {
		g := &groups[i]
		for _, m := range metrics {
			if m.Op != Mean {
				// A sum over no present values is 0, not missing.
				if _, ok := g.values[m.Field]; !ok {
					g.values[m.Field] = 0
				}
				continue
			}
			n := g.counts[m.Field]
			if n == 0 {
				g.values[m.Field] = math.NaN()
				continue
			}
			g.values[m.Field] /= float64(n)
		}
	}
	return groups
}

func keyFor(o Observation, by Grouping, decadeStart int) GroupKey {
	switch by {
	case ByLocationYear:
		return GroupKey{Location: o.Location, Year: o.Year}
	case ByYear:
		return GroupKey{Year: o.Year}
	case ByDecade:
		return GroupKey{Year: DecadeOf(o.Year, decadeStart)}
	default:
		return GroupKey{Location: o.Location}
	}
}

// DecadeOf returns the first year of the 10-year bucket containing year,
// with buckets anchored at start.
func DecadeOf(year, start int) int {
	offset := year - start
	bucket := offset / 10
	if offset < 0 && offset%10 != 0 {
		bucket--
	}
	return start + bucket*10
}

// Direction orders TopN.
type Direction int

const (
	Descending Direction = iota
	Ascending
)

// DefaultTopN is how many extreme locations a page highlights.
const DefaultTopN = 5

// TopN returns the first min(n, len(groups)) groups ordered by field.
// Ties keep input order. Missing values sort last in both directions.
func TopN(groups []Group, field Field, dir Direction, n int) []Group {
	if n <= 0 {
		return nil
	}
	sorted := make([]Group, len(groups))
	copy(sorted, groups)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Value(field), sorted[j].Value(field)
		switch {
		case IsMissing(a):
			return false
		case IsMissing(b):
			return true
		case dir == Ascending:
			return a < b
		default:
			return a > b
		}
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Locations returns the distinct locations in first-appearance order.
func Locations(obs []Observation) []Location {
	seen := make(map[Location]bool)
	var out []Location
	for _, o := range obs {
		if seen[o.Location] {
			continue
		}
		seen[o.Location] = true
		out = append(out, o.Location)
	}
	return out
}

// FilterLocation returns the observations at loc, in input order.
func FilterLocation(obs []Observation, loc Location) []Observation {
	var out []Observation
	for _, o := range obs {
		if o.Location == loc {
			out = append(out, o)
		}
	}
	return out
}

// YearRange returns the smallest and largest year present.
func YearRange(obs []Observation) (minYear, maxYear int, err error) {
	if len(obs) == 0 {
		return 0, 0, ErrNoObservations
	}
	minYear, maxYear = obs[0].Year, obs[0].Year
	for _, o := range obs[1:] {
		minYear = min(minYear, o.Year)
		maxYear = max(maxYear, o.Year)
	}
	return minYear, maxYear, nil
}
