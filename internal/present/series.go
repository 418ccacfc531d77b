// Package present shapes aggregate, classification, and trend outputs into the
// series structures the charts consume. Series coordinates always match the
// aggregate rows they came from one to one, in the same order.
package present

import (
	"encoding/json"
	"math"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
)

// Value is a chart coordinate. Missing values encode as JSON null.
type Value float64

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// Missing reports whether v is a missing coordinate.
func (v Value) Missing() bool {
	return math.IsNaN(float64(v)) || math.IsInf(float64(v), 0)
}

// Values converts floats to chart coordinates.
func Values(xs []float64) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Value(x)
	}
	return out
}

// Kind is the chart type.
type Kind string

const (
	KindMap     Kind = "map"
	KindLine    Kind = "line"
	KindBar     Kind = "bar"
	KindScatter Kind = "scatter"
	KindFlow    Kind = "flow"
)

// Mode is how a series is drawn.
type Mode string

const (
	Markers Mode = "markers"
	Lines   Mode = "lines"
)

// Series is one trace of a chart.
type Series struct {
	Name string `json:"name"`
	// Group ties the series to a dropdown option.
	Group string `json:"group,omitempty"`
	Mode  Mode   `json:"mode,omitempty"`
	// X is numeric for maps, lines, and scatters; Labels is used for bars.
	X      []Value  `json:"x,omitempty"`
	Labels []string `json:"labels,omitempty"`
	Y      []Value  `json:"y"`
	Color  string   `json:"color,omitempty"`
	// Colors overrides Color per point.
	Colors  []string `json:"colors,omitempty"`
	Text    []string `json:"text,omitempty"`
	Visible bool     `json:"visible"`
}

// Option is a dropdown entry with one visibility flag per chart series.
type Option struct {
	Label   string `json:"label"`
	Visible []bool `json:"visible"`
}

// LegendEntry is a static color key, used for binned map markers.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Chart is everything needed to draw one visualization.
type Chart struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Kind     Kind          `json:"kind"`
	XLabel   string        `json:"x_label,omitempty"`
	YLabel   string        `json:"y_label,omitempty"`
	Series   []Series      `json:"series,omitempty"`
	Dropdown []Option      `json:"dropdown,omitempty"`
	Legend   []LegendEntry `json:"legend,omitempty"`
	// Flow is set for KindFlow charts.
	Flow *domain.FlowGraph `json:"flow,omitempty"`
}

// ForOption returns a copy of c holding only the series visible under
// dropdown option i. An out-of-range option returns c unchanged.
func (c Chart) ForOption(i int) Chart {
	if i < 0 || i >= len(c.Dropdown) {
		return c
	}
	vis := c.Dropdown[i].Visible
	out := c
	out.Series = make([]Series, 0, len(c.Series))
	for j, s := range c.Series {
		if j < len(vis) && vis[j] {
			s.Visible = true
			out.Series = append(out.Series, s)
		}
	}
	out.Dropdown = nil
	return out
}

// Table is a titled grid of cells. Cells are string, int, or float64;
// missing floats render blank.
type Table struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Visibility builds one option per label plus a leading "All" option. A
// series is visible under an option when its group matches the label;
// series without a group are visible under every option.
func Visibility(series []Series, labels []string) []Option {
	all := make([]bool, len(series))
	for i := range all {
		all[i] = true
	}
	opts := []Option{{Label: "All", Visible: all}}
	for _, label := range labels {
		vis := make([]bool, len(series))
		for i, s := range series {
			vis[i] = s.Group == "" || s.Group == label
		}
		opts = append(opts, Option{Label: label, Visible: vis})
	}
	return opts
}
