package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/present"
)

var seasonNames = map[domain.Field]string{
	domain.VWCWinter: "Winter",
	domain.VWCSpring: "Spring",
	domain.VWCSummer: "Summer",
	domain.VWCFall:   "Fall",
}

const (
	subjectSite   = "Trend site"
	subjectGlobal = "All-site yearly mean"
)

// SoilMoisture compares seasonal soil water by decade and fits summer
// precipitation against temperature for one site and for the yearly mean.
type SoilMoisture struct {
	DecadeStart int
	// TrendSite pins the single-site subject; nil selects it with domain.TrendSite.
	TrendSite *domain.Location
}

func (SoilMoisture) Slug() string { return "soil-moisture" }

func (s SoilMoisture) Build(t domain.AnnotatedTable) (Page, error) {
	if len(t.Observations) == 0 {
		return Page{}, fmt.Errorf("build soil moisture page: %w", domain.ErrNoObservations)
	}

	decades := sortByYear(domain.AggregateWith(t.Observations, domain.ByDecade,
		domain.MeanOf(domain.VWCFields...), domain.AggregateOptions{DecadeStart: s.DecadeStart}))
	bars := present.GroupedBars(present.Pivot(decades, decadeLabel, domain.VWCFields), seasonNames)
	seasons := make([]string, len(bars))
	for i, b := range bars {
		seasons[i] = b.Group
	}

	site, err := s.site(t)
	if err != nil {
		return Page{}, fmt.Errorf("build soil moisture page: %w", err)
	}

	siteObs := domain.FilterLocation(t.Observations, site)
	siteT, siteP := domain.SummerPairs(siteObs)
	siteTrend, siteErr := domain.FitTrend(siteT, siteP)

	years := sortByYear(domain.YearlyAverage(t.Observations))
	globalT, globalP := groupColumns(years, domain.TSummer, domain.PPTSummer)
	globalTrend, globalErr := domain.FitTrend(globalT, globalP)

	var series []present.Series
	series = append(series, scatterSeries(siteLabel(site), subjectSite, siteT, siteP, present.Palette(3)))
	if siteErr == nil {
		series = append(series, trendSeries(subjectSite+" fit", subjectSite, siteTrend, siteT, present.Palette(3)))
	}
	series = append(series, scatterSeries(subjectGlobal, subjectGlobal, globalT, globalP, present.Palette(0)))
	if globalErr == nil {
		series = append(series, trendSeries(subjectGlobal+" fit", subjectGlobal, globalTrend, globalT, present.Palette(0)))
	}

	trends := present.Table{
		Name:    "summer_trends",
		Title:   "Summer precipitation response to temperature",
		Columns: []string{"Subject", "Slope", "Intercept", "Points"},
	}
	summary := []string{
		fmt.Sprintf("Mean seasonal volumetric water content per %d-year bucket starting %d.", 10, s.DecadeStart),
		fmt.Sprintf("Trend site %s, %.1f km from the region center.", siteLabel(site), site.DistanceKm(t.Center)),
	}
	for _, fit := range []struct {
		name  string
		trend domain.Trend
		err   error
	}{
		{siteLabel(site), siteTrend, siteErr},
		{subjectGlobal, globalTrend, globalErr},
	} {
		if fit.err != nil {
			summary = append(summary, fmt.Sprintf("No trend for %s: %v.", fit.name, fit.err))
			continue
		}
		trends.Rows = append(trends.Rows, []any{fit.name, cell(fit.trend.Slope), cell(fit.trend.Intercept), fit.trend.N})
	}
	if siteErr == nil && globalErr == nil {
		summary = append(summary, responseSentence(siteTrend, globalTrend))
	}

	return Page{
		Slug:    s.Slug(),
		Title:   "Soil moisture and summer trends",
		Summary: summary,
		Charts: []present.Chart{
			{
				ID:       "vwc-decades",
				Title:    "Mean seasonal soil water content by decade",
				Kind:     present.KindBar,
				XLabel:   "Decade",
				YLabel:   "Volumetric water content",
				Series:   bars,
				Dropdown: present.Visibility(bars, seasons),
			},
			{
				ID:       "summer-trend",
				Title:    "Summer precipitation vs temperature",
				Kind:     present.KindScatter,
				XLabel:   "T_Summer",
				YLabel:   "PPT_Summer",
				Series:   series,
				Dropdown: present.Visibility(series, []string{subjectSite, subjectGlobal}),
			},
		},
		Tables: []present.Table{trends},
	}, nil
}

func (s SoilMoisture) site(t domain.AnnotatedTable) (domain.Location, error) {
	if s.TrendSite == nil {
		return domain.TrendSite(t)
	}
	if len(domain.FilterLocation(t.Observations, *s.TrendSite)) == 0 {
		return domain.Location{}, errors.New("trend site has no observations")
	}
	return *s.TrendSite, nil
}

// responseSentence states which subject's precipitation responds less to warming.
func responseSentence(site, global domain.Trend) string {
	weaker, other := "the trend site", "the all-site mean"
	if global.Slope < site.Slope {
		weaker, other = other, weaker
	}
	return fmt.Sprintf("Summer precipitation at %s responds more weakly to temperature (slope %.3f vs %.3f for %s).",
		weaker, min(site.Slope, global.Slope), max(site.Slope, global.Slope), other)
}

func decadeLabel(g domain.Group) string {
	return fmt.Sprintf("%ds", g.Key.Year)
}

func groupColumns(groups []domain.Group, xf, yf domain.Field) (xs, ys []float64) {
	xs = make([]float64, len(groups))
	ys = make([]float64, len(groups))
	for i, g := range groups {
		xs[i] = g.Value(xf)
		ys[i] = g.Value(yf)
	}
	return xs, ys
}

func scatterSeries(name, group string, xs, ys []float64, color string) present.Series {
	return present.Series{
		Name:    name,
		Group:   group,
		Mode:    present.Markers,
		X:       present.Values(xs),
		Y:       present.Values(ys),
		Color:   color,
		Visible: true,
	}
}

// trendSeries draws the fitted line through the observed temperatures, left to right.
func trendSeries(name, group string, tr domain.Trend, xs []float64, color string) present.Series {
	var sorted []float64
	for _, x := range xs {
		if !domain.IsMissing(x) {
			sorted = append(sorted, x)
		}
	}
	sort.Float64s(sorted)
	return present.Series{
		Name:    name,
		Group:   group,
		Mode:    present.Lines,
		X:       present.Values(sorted),
		Y:       present.Values(tr.Overlay(sorted)),
		Color:   color,
		Visible: true,
	}
}
