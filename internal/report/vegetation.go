package report

import (
	"fmt"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/present"
)

var coverNames = map[domain.Field]string{
	domain.Bare:       "Bare",
	domain.Herb:       "Herb",
	domain.Litter:     "Litter",
	domain.Shrub:      "Shrub",
	domain.TreeCanopy: "Tree canopy",
}

// Vegetation ranks locations by mean bare-ground fraction, most vegetated first.
type Vegetation struct {
	TopN int
}

func (Vegetation) Slug() string { return "vegetation" }

func (v Vegetation) Build(t domain.AnnotatedTable) (Page, error) {
	if len(t.Observations) == 0 {
		return Page{}, fmt.Errorf("build vegetation page: %w", domain.ErrNoObservations)
	}

	cover := domain.Aggregate(t.Observations, domain.ByLocation, domain.MeanOf(domain.CoverFields...))
	top := domain.TopN(cover, domain.Bare, domain.Ascending, v.TopN)

	bars := present.GroupedBars(present.Pivot(top, groupSite, domain.CoverFields), coverNames)
	names := make([]string, len(bars))
	for i, s := range bars {
		names[i] = s.Group
	}

	table := present.Table{
		Name:    "least_bare_locations",
		Title:   fmt.Sprintf("Top %d most vegetated locations", len(top)),
		Columns: []string{"Rank", "Site", "Longitude", "Latitude", "Bare", "Herb", "Litter", "Shrub", "Tree canopy"},
	}
	for i, g := range top {
		row := []any{i + 1, g.Key.Location.SiteID(), g.Key.Location.Lon, g.Key.Location.Lat}
		for _, f := range domain.CoverFields {
			row = append(row, cell(g.Value(f)))
		}
		table.Rows = append(table.Rows, row)
	}

	summary := []string{
		fmt.Sprintf("Mean ground cover fractions across all years for %d locations. Fractions need not sum to 100.", len(cover)),
	}
	if len(top) > 0 {
		summary = append(summary, fmt.Sprintf("The least bare site, %s, averages %.1f bare ground.",
			siteLabel(top[0].Key.Location), top[0].Value(domain.Bare)))
	}

	return Page{
		Slug:    v.Slug(),
		Title:   "Vegetation cover",
		Summary: summary,
		Charts: []present.Chart{
			locationMap("bare-map", "Mean bare ground fraction by location", cover, domain.Bare, "%.1f"),
			{
				ID:       "cover-bars",
				Title:    "Ground cover at the most vegetated locations",
				Kind:     present.KindBar,
				XLabel:   "Site",
				YLabel:   "Mean cover",
				Series:   bars,
				Dropdown: present.Visibility(bars, names),
			},
		},
		Tables: []present.Table{table},
	}, nil
}
