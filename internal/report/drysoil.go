package report

import (
	"fmt"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/present"
)

// DrySoil ranks locations by total summer dry-soil days.
type DrySoil struct {
	TopN int
}

func (DrySoil) Slug() string { return "dry-soil" }

func (d DrySoil) Build(t domain.AnnotatedTable) (Page, error) {
	if len(t.Observations) == 0 {
		return Page{}, fmt.Errorf("build dry soil page: %w", domain.ErrNoObservations)
	}

	totals := domain.Aggregate(t.Observations, domain.ByLocation, domain.SumOf(domain.DrySoilDaysSummer))
	top := domain.TopN(totals, domain.DrySoilDaysSummer, domain.Descending, d.TopN)

	perYear := domain.Aggregate(t.Observations, domain.ByLocationYear, domain.SumOf(domain.DrySoilDaysSummer))
	meanYear := sortByYear(domain.Aggregate(t.Observations, domain.ByYear, domain.MeanOf(domain.DrySoilDaysSummer)))

	var series []present.Series
	var labels []string
	for i, g := range top {
		xs, ys := yearSeries(sortByYear(siteRows(perYear, g.Key.Location)), domain.DrySoilDaysSummer)
		label := g.Key.Location.SiteID()
		labels = append(labels, label)
		series = append(series, present.Series{
			Name:    siteLabel(g.Key.Location),
			Group:   label,
			Mode:    present.Lines,
			X:       xs,
			Y:       ys,
			Color:   present.Palette(i),
			Visible: true,
		})
	}
	mx, my := yearSeries(meanYear, domain.DrySoilDaysSummer)
	series = append(series, present.Series{
		Name:    "All-site mean",
		Mode:    present.Lines,
		X:       mx,
		Y:       my,
		Color:   "#252525",
		Visible: true,
	})

	table := present.Table{
		Name:    "driest_locations",
		Title:   fmt.Sprintf("Top %d driest locations", len(top)),
		Columns: []string{"Rank", "Site", "Longitude", "Latitude", "Total dry soil days", "Region", "Distance from center (km)"},
	}
	for i, g := range top {
		loc := g.Key.Location
		table.Rows = append(table.Rows, []any{
			i + 1, loc.SiteID(), loc.Lon, loc.Lat,
			cell(g.Value(domain.DrySoilDaysSummer)),
			string(domain.ClassifyRegion(loc, t.Center)),
			cell(loc.DistanceKm(t.Center)),
		})
	}

	summary := []string{
		fmt.Sprintf("Summer dry soil days summed over every year for %d locations.", len(totals)),
	}
	if len(top) > 0 {
		summary = append(summary, fmt.Sprintf("The driest site, %s, accumulated %.0f dry soil days.",
			siteLabel(top[0].Key.Location), top[0].Value(domain.DrySoilDaysSummer)))
	}

	return Page{
		Slug:    d.Slug(),
		Title:   "Dry soil days",
		Summary: summary,
		Charts: []present.Chart{
			locationMap("dry-soil-map", "Total summer dry soil days by location", totals, domain.DrySoilDaysSummer, "%.0f"),
			{
				ID:       "dry-soil-series",
				Title:    "Summer dry soil days per year, driest locations",
				Kind:     present.KindLine,
				XLabel:   "Year",
				YLabel:   "Dry soil days",
				Series:   series,
				Dropdown: present.Visibility(series, labels),
			},
		},
		Tables: []present.Table{table},
	}, nil
}

func siteRows(groups []domain.Group, loc domain.Location) []domain.Group {
	var out []domain.Group
	for _, g := range groups {
		if g.Key.Location == loc {
			out = append(out, g)
		}
	}
	return out
}
