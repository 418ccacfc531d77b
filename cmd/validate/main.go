// Command validate loads the two observation tables and checks the invariants
// the report relies on: label coverage, tercile ordering, rule exclusivity,
// region tie handling, order-independent aggregation, top-N ranking, and
// trend recovery.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -historic data/NABR_historic.csv \
//	  -nearterm data/nearterm_data_2020-2024.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"

	"github.com/couchcryptid/nabr-climate-report/internal/adapter/csvsource"
	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/pipeline"
)

const tolerance = 1e-9

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	historic := flag.String("historic", "data/NABR_historic.csv", "path to the historical observation table")
	nearTerm := flag.String("nearterm", "data/nearterm_data_2020-2024.csv", "path to the near-term observation table")
	topN := flag.Int("top", domain.DefaultTopN, "number of extreme locations to rank")
	flag.Parse()

	os.Exit(run(*historic, *nearTerm, *topN))
}

func run(historicPath, nearTermPath string, topN int) int {
	fmt.Println("=== NABR Report Invariant Validation ===")
	fmt.Println()

	reader := csvsource.NewReader(historicPath, nearTermPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	historic, nearTerm, err := reader.Extract(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load tables: %v\n", err)
		return 1
	}

	table, err := pipeline.Annotate(historic, nearTerm, domain.DefaultCenter, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: annotate: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateCoverage(table),
		validateThresholds(table),
		validateRegionCenter(),
		validateAggregation(table.Observations),
		validateTopN(table.Observations, topN),
		validateTrend(table),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d historical, %d near-term, %d classified, %d dropped, %d fallback\n",
		len(historic), len(nearTerm), len(table.Classified), table.Dropped, table.Fallback)
	fmt.Printf("Terciles: t33=%.3f t66=%.3f p33=%.3f p66=%.3f\n",
		table.Thresholds.T33, table.Thresholds.T66, table.Thresholds.P33, table.Thresholds.P66)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateCoverage(t domain.AnnotatedTable) *phase {
	p := &phase{name: "Label coverage"}
	for _, r := range t.Classified {
		if !slices.Contains(domain.DroughtLevels, r.Drought) {
			p.errorf("%s %d: drought level %q", r.Location.SiteID(), r.Year, r.Drought)
		}
		if !slices.Contains(domain.Regions, r.Region) {
			p.errorf("%s %d: region %q", r.Location.SiteID(), r.Year, r.Region)
		}
	}
	if got := len(t.Classified) + t.Dropped; got != len(t.Observations) {
		p.errorf("classified + dropped = %d, want %d", got, len(t.Observations))
	}
	return p
}

func validateThresholds(t domain.AnnotatedTable) *phase {
	p := &phase{name: "Tercile ordering and rule exclusivity"}
	th := t.Thresholds
	if th.T33 > th.T66 {
		p.errorf("t33 %.4f > t66 %.4f", th.T33, th.T66)
	}
	if th.P33 > th.P66 {
		p.errorf("p33 %.4f > p66 %.4f", th.P33, th.P66)
	}
	total := 0
	for _, n := range t.BranchCounts() {
		total += n
	}
	if total != len(t.Classified) {
		p.errorf("branch counts sum to %d, want %d", total, len(t.Classified))
	}
	for _, r := range t.Classified {
		if lvl := domain.ClassifyDrought(r.AvgTemperature, r.AvgPrecipitation, th); lvl != r.Drought {
			p.errorf("%s %d: relabels as %s, stored %s", r.Location.SiteID(), r.Year, lvl, r.Drought)
		}
	}

	// Cold-and-dry must reach the fallback branch.
	if _, b := domain.ClassifyDroughtBranch(th.T33-1, th.P33-1, th); th.T33 < th.T66 && th.P33 < th.P66 && b != domain.BranchFallback {
		p.errorf("cold and dry row took branch %s, want fallback", b)
	}
	return p
}

func validateRegionCenter() *phase {
	p := &phase{name: "Region center tie handling"}
	c := domain.DefaultCenter
	if r := domain.ClassifyRegion(c, c); r != domain.Northeast {
		p.errorf("center classified %s, want Northeast", r)
	}
	return p
}

func validateAggregation(obs []domain.Observation) *phase {
	p := &phase{name: "Order-independent location aggregation"}
	metrics := append(domain.SumOf(domain.DrySoilDaysSummer), domain.MeanOf(domain.CoverFields...)...)
	forward := domain.Aggregate(obs, domain.ByLocation, metrics)

	reversed := slices.Clone(obs)
	slices.Reverse(reversed)
	backward := make(map[domain.Location]domain.Group)
	for _, g := range domain.Aggregate(reversed, domain.ByLocation, metrics) {
		backward[g.Key.Location] = g
	}

	for _, g := range forward {
		other, ok := backward[g.Key.Location]
		if !ok {
			p.errorf("%s missing after reversal", g.Key.Location.SiteID())
			continue
		}
		for _, m := range metrics {
			a, b := g.Value(m.Field), other.Value(m.Field)
			if math.IsNaN(a) && math.IsNaN(b) {
				continue
			}
			if math.Abs(a-b) > tolerance*math.Max(1, math.Abs(a)) {
				p.errorf("%s %s: %v forward, %v reversed", g.Key.Location.SiteID(), m.Field, a, b)
			}
		}
	}
	return p
}

func validateTopN(obs []domain.Observation, n int) *phase {
	p := &phase{name: "Top-N ranking"}
	locations := len(domain.Locations(obs))

	check := func(field domain.Field, op []domain.Metric, dir domain.Direction) {
		top := domain.TopN(domain.Aggregate(obs, domain.ByLocation, op), field, dir, n)
		if want := min(n, locations); len(top) != want {
			p.errorf("%s: %d rows, want %d", field, len(top), want)
		}
		for i := 1; i < len(top); i++ {
			prev, cur := top[i-1].Value(field), top[i].Value(field)
			if math.IsNaN(cur) {
				continue
			}
			if (dir == domain.Descending && prev < cur) || (dir == domain.Ascending && prev > cur) {
				p.errorf("%s: rank %d (%v) out of order after %v", field, i+1, cur, prev)
			}
		}
	}
	check(domain.DrySoilDaysSummer, domain.SumOf(domain.DrySoilDaysSummer), domain.Descending)
	check(domain.Bare, domain.MeanOf(domain.Bare), domain.Ascending)
	return p
}

func validateTrend(t domain.AnnotatedTable) *phase {
	p := &phase{name: "Trend estimation"}

	xs := make([]float64, 10)
	ys := make([]float64, 10)
	for i := range xs {
		xs[i] = float64(i)
		ys[i] = 2*xs[i] + 1
	}
	line, err := domain.FitTrend(xs, ys)
	if err != nil {
		p.errorf("synthetic line: %v", err)
	} else if math.Abs(line.Slope-2) > 1e-6 || math.Abs(line.Intercept-1) > 1e-6 {
		p.errorf("synthetic line: slope %.6f intercept %.6f, want 2 and 1", line.Slope, line.Intercept)
	}

	site, err := domain.TrendSite(t)
	if err != nil {
		p.errorf("select trend site: %v", err)
		return p
	}
	temps, precip := domain.SummerPairs(domain.FilterLocation(t.Observations, site))
	if _, err := domain.FitTrend(temps, precip); err != nil {
		p.errorf("trend site %s: %v", site.SiteID(), err)
	}
	return p
}
