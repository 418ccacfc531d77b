package present

import (
	"github.com/couchcryptid/nabr-climate-report/internal/domain"
)

// LongRow is one (category, variable, value) cell of a long table.
type LongRow struct {
	Category string
	Variable domain.Field
	Value    float64
}

// Pivot turns wide aggregate rows into long rows, category-major.
func Pivot(groups []domain.Group, category func(domain.Group) string, fields []domain.Field) []LongRow {
	out := make([]LongRow, 0, len(groups)*len(fields))
	for _, g := range groups {
		c := category(g)
		for _, f := range fields {
			out = append(out, LongRow{Category: c, Variable: f, Value: g.Value(f)})
		}
	}
	return out
}

// GroupedBars builds one bar series per variable from long rows. Each
// series carries every category in first-appearance order; a category with
// no row for a variable gets a missing value.
func GroupedBars(rows []LongRow, names map[domain.Field]string) []Series {
	var categories []string
	catIndex := make(map[string]int)
	var variables []domain.Field
	varSeen := make(map[domain.Field]bool)
	for _, r := range rows {
		if _, ok := catIndex[r.Category]; !ok {
			catIndex[r.Category] = len(categories)
			categories = append(categories, r.Category)
		}
		if !varSeen[r.Variable] {
			varSeen[r.Variable] = true
			variables = append(variables, r.Variable)
		}
	}

	series := make([]Series, len(variables))
	varIndex := make(map[domain.Field]int, len(variables))
	for i, v := range variables {
		varIndex[v] = i
		y := make([]Value, len(categories))
		for j := range y {
			y[j] = Value(missing())
		}
		name := names[v]
		if name == "" {
			name = string(v)
		}
		series[i] = Series{
			Name:    name,
			Group:   name,
			Labels:  categories,
			Y:       y,
			Color:   FieldColor(v),
			Visible: true,
		}
	}
	for _, r := range rows {
		series[varIndex[r.Variable]].Y[catIndex[r.Category]] = Value(r.Value)
	}
	return series
}
