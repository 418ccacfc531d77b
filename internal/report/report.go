// Package report builds the four report pages from the annotated table.
// Builders are pure: the same table always yields the same pages.
package report

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/present"
)

// Page is one rendered document of the report.
type Page struct {
	Slug    string          `json:"slug"`
	Title   string          `json:"title"`
	Summary []string        `json:"summary"`
	Charts  []present.Chart `json:"charts"`
	Tables  []present.Table `json:"tables"`
	// Tabs labels the charts one to one when the page shows one chart at a time.
	Tabs []string `json:"tabs,omitempty"`
}

// Meta describes the render as a whole, shown on the index page.
type Meta struct {
	GeneratedAt    time.Time         `json:"generated_at"`
	HistoricRows   int               `json:"historic_rows"`
	NearTermRows   int               `json:"nearterm_rows"`
	ClassifiedRows int               `json:"classified_rows"`
	DroppedRows    int               `json:"dropped_rows"`
	FallbackRows   int               `json:"fallback_rows"`
	Locations      int               `json:"locations"`
	FirstYear      int               `json:"first_year"`
	LastYear       int               `json:"last_year"`
	Thresholds     domain.Thresholds `json:"thresholds"`
	Center         domain.Location   `json:"center"`
}

// Builder produces one page.
type Builder interface {
	Slug() string
	Build(t domain.AnnotatedTable) (Page, error)
}

// Options configures the default page set.
type Options struct {
	TopN        int
	DecadeStart int
	// TrendSite pins the soil-moisture trend subject; nil selects automatically.
	TrendSite *domain.Location
}

// Builders returns the report pages in navigation order.
func Builders(opts Options) []Builder {
	if opts.TopN <= 0 {
		opts.TopN = domain.DefaultTopN
	}
	if opts.DecadeStart == 0 {
		opts.DecadeStart = domain.DefaultDecadeStart
	}
	return []Builder{
		DrySoil{TopN: opts.TopN},
		Vegetation{TopN: opts.TopN},
		SoilMoisture{DecadeStart: opts.DecadeStart, TrendSite: opts.TrendSite},
		DroughtFlow{DecadeStart: opts.DecadeStart},
	}
}

// siteLabel names a location for axes and tables.
func siteLabel(loc domain.Location) string {
	return fmt.Sprintf("%s (%.4f, %.4f)", loc.SiteID(), loc.Lon, loc.Lat)
}

func groupSite(g domain.Group) string { return siteLabel(g.Key.Location) }

// cell renders a float for tables; missing values stay blank.
func cell(v float64) any {
	if math.IsNaN(v) {
		return ""
	}
	return math.Round(v*1000) / 1000
}

// sortByYear orders groups chronologically, keeping input order within a year.
func sortByYear(groups []domain.Group) []domain.Group {
	out := make([]domain.Group, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Year < out[j].Key.Year })
	return out
}

// yearSeries extracts (year, field) coordinates from chronologically sorted groups.
func yearSeries(groups []domain.Group, field domain.Field) (xs, ys []present.Value) {
	for _, g := range groups {
		xs = append(xs, present.Value(g.Key.Year))
		ys = append(ys, present.Value(g.Value(field)))
	}
	return xs, ys
}

// locationMap draws every location as a circle marker colored by its bin of field.
func locationMap(id, title string, groups []domain.Group, field domain.Field, format string) present.Chart {
	values := make([]float64, len(groups))
	for i, g := range groups {
		values[i] = g.Value(field)
	}
	bins := present.NewBins(values)

	s := present.Series{Name: string(field), Mode: present.Markers, Visible: true}
	for i, g := range groups {
		s.X = append(s.X, present.Value(g.Key.Location.Lon))
		s.Y = append(s.Y, present.Value(g.Key.Location.Lat))
		s.Colors = append(s.Colors, bins.Color(values[i]))
		s.Text = append(s.Text, fmt.Sprintf("%s: "+format, g.Key.Location.SiteID(), values[i]))
	}
	return present.Chart{
		ID:     id,
		Title:  title,
		Kind:   present.KindMap,
		XLabel: "Longitude",
		YLabel: "Latitude",
		Series: []present.Series{s},
		Legend: bins.Legend(format),
	}
}
