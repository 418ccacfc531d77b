package report

import (
	"fmt"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/present"
)

// DroughtFlow shows how drought levels spread over the four regions, for all
// years and for each decade.
type DroughtFlow struct {
	DecadeStart int
}

func (DroughtFlow) Slug() string { return "drought-flow" }

func (d DroughtFlow) Build(t domain.AnnotatedTable) (Page, error) {
	if len(t.Classified) == 0 {
		return Page{}, fmt.Errorf("build drought flow page: %w", domain.ErrNoObservations)
	}

	var charts []present.Chart
	var tabs []string
	for _, w := range domain.FlowWindows(t.Classified, d.DecadeStart) {
		g := domain.BuildFlow(t.Classified, w)
		if g.Total == 0 {
			continue
		}
		charts = append(charts, flowChart(g))
		tabs = append(tabs, w.Label)
	}

	th := t.Thresholds
	thresholds := present.Table{
		Name:    "tercile_thresholds",
		Title:   "Tercile thresholds of seasonal averages",
		Columns: []string{"Variable", "33rd percentile", "66th percentile"},
		Rows: [][]any{
			{"Average temperature", cell(th.T33), cell(th.T66)},
			{"Average precipitation", cell(th.P33), cell(th.P66)},
		},
	}

	counts := t.BranchCounts()
	branches := present.Table{
		Name:    "drought_rule_branches",
		Title:   "Rows per drought rule",
		Columns: []string{"Rule", "Label", "Rows"},
		Rows: [][]any{
			{"t <= t33 and p >= p66", string(domain.LowArid), counts[domain.BranchLow]},
			{"t33 < t <= t66 or p33 < p <= p66", string(domain.MediumArid), counts[domain.BranchMedium]},
			{"t > t66 and p <= p33", string(domain.HighArid), counts[domain.BranchHigh]},
			{"otherwise", string(domain.MediumArid), counts[domain.BranchFallback]},
		},
	}

	summary := []string{
		fmt.Sprintf("%d rows classified, %d dropped for missing seasonal averages.", len(t.Classified), t.Dropped),
		fmt.Sprintf("Temperature terciles %.2f / %.2f, precipitation terciles %.2f / %.2f.", th.T33, th.T66, th.P33, th.P66),
		fmt.Sprintf("%d rows fall through every rule and are labeled %s (cold and dry, or hot and wet).",
			counts[domain.BranchFallback], domain.MediumArid),
		fmt.Sprintf("Regions are quadrants around (%.4f, %.5f); points on an axis count as north or east.",
			t.Center.Lon, t.Center.Lat),
	}

	return Page{
		Slug:    d.Slug(),
		Title:   "Drought level by region",
		Summary: summary,
		Charts:  charts,
		Tables:  []present.Table{thresholds, branches},
		Tabs:    tabs,
	}, nil
}

// flowChart carries the node/link graph plus one bar series per region, so
// the counts can also be drawn as grouped bars over the drought levels.
func flowChart(g domain.FlowGraph) present.Chart {
	labels := make([]string, len(domain.DroughtLevels))
	for i, lvl := range domain.DroughtLevels {
		labels[i] = string(lvl)
	}

	series := make([]present.Series, 0, len(domain.Regions))
	for _, reg := range domain.Regions {
		y := make([]present.Value, len(domain.DroughtLevels))
		for i, lvl := range domain.DroughtLevels {
			y[i] = present.Value(g.Count(lvl, reg))
		}
		series = append(series, present.Series{
			Name:    string(reg),
			Group:   string(reg),
			Labels:  labels,
			Y:       y,
			Color:   present.RegionColors[reg],
			Visible: true,
		})
	}

	graph := g
	return present.Chart{
		ID:     flowChartID(g.Window),
		Title:  fmt.Sprintf("Drought level to region, %s (%d rows)", g.Window.Label, g.Total),
		Kind:   present.KindFlow,
		XLabel: "Drought level",
		YLabel: "Rows",
		Series: series,
		Legend: flowLegend(),
		Flow:   &graph,
	}
}

// flowLegend keys the flow nodes: drought levels first, then regions.
func flowLegend() []present.LegendEntry {
	out := make([]present.LegendEntry, 0, len(domain.DroughtLevels)+len(domain.Regions))
	for _, lvl := range domain.DroughtLevels {
		out = append(out, present.LegendEntry{Label: string(lvl), Color: present.DroughtColors[lvl]})
	}
	for _, reg := range domain.Regions {
		out = append(out, present.LegendEntry{Label: string(reg), Color: present.RegionColors[reg]})
	}
	return out
}

func flowChartID(w domain.Window) string {
	if w.All {
		return "flow-all"
	}
	return fmt.Sprintf("flow-%d", w.From)
}
