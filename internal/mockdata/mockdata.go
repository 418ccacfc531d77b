// Package mockdata generates deterministic synthetic observation tables in the
// NABR CSV schema, for fixtures and tests.
package mockdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
)

// Options shapes the generated grid of sites and years.
type Options struct {
	// Sites are laid out on a Cols x Rows grid around Center.
	Cols, Rows int
	// Spacing is the grid step in degrees.
	Spacing float64
	Center  domain.Location

	HistoricFrom, HistoricTo int
	NearTermFrom, NearTermTo int

	// MissingRate is the chance that any single value is NA.
	MissingRate float64
	Seed        uint64
}

// DefaultOptions mirrors the shape of the real tables at a smaller scale.
func DefaultOptions() Options {
	return Options{
		Cols:         6,
		Rows:         5,
		Spacing:      0.02,
		Center:       domain.DefaultCenter,
		HistoricFrom: 1980,
		HistoricTo:   2019,
		NearTermFrom: 2020,
		NearTermTo:   2024,
		MissingRate:  0.01,
		Seed:         42,
	}
}

// Generate returns the historical and near-term tables. The same options
// always produce the same rows.
func Generate(opts Options) (historic, nearTerm []domain.Observation) {
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	sites := grid(opts)

	// Per-site character: some sites sit in wetter, better-vegetated draws.
	type site struct {
		loc       domain.Location
		wetness   float64
		elevation float64
		cover     [5]float64
	}
	profiles := make([]site, len(sites))
	for i, loc := range sites {
		profiles[i] = site{
			loc:       loc,
			wetness:   rng.Float64(),
			elevation: rng.Float64(),
			cover:     [5]float64{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()},
		}
	}

	gen := func(from, to int, source string) []domain.Observation {
		var out []domain.Observation
		for year := from; year <= to; year++ {
			warming := 0.03 * float64(year-opts.HistoricFrom)
			for _, s := range profiles {
				tSummer := 28 - 6*s.elevation + warming + rng.NormFloat64()
				tWinter := 2 - 5*s.elevation + warming + rng.NormFloat64()
				pptSummer := math.Max(0, 6+8*s.wetness-0.1*warming+2*rng.NormFloat64())
				pptWinter := math.Max(0, 8+10*s.wetness+2*rng.NormFloat64())
				vwcSummer := clamp(0.06+0.12*s.wetness+0.01*rng.NormFloat64(), 0.01, 0.45)
				drySoil := math.Round(clamp(60-120*vwcSummer+8*rng.NormFloat64(), 0, 92))

				o := domain.NewObservation(s.loc, year)
				o.Source = source
				values := map[domain.Field]float64{
					domain.TWinter:           tWinter,
					domain.TSpring:           (tWinter+tSummer)/2 - 1,
					domain.TSummer:           tSummer,
					domain.TFall:             (tWinter+tSummer)/2 + 1,
					domain.PPTWinter:         pptWinter,
					domain.PPTSpring:         (pptWinter + pptSummer) / 2,
					domain.PPTSummer:         pptSummer,
					domain.PPTFall:           pptSummer * 1.2,
					domain.VWCWinter:         clamp(vwcSummer*1.8, 0.01, 0.5),
					domain.VWCSpring:         clamp(vwcSummer*1.5, 0.01, 0.5),
					domain.VWCSummer:         vwcSummer,
					domain.VWCFall:           clamp(vwcSummer*1.2, 0.01, 0.5),
					domain.DrySoilDaysSummer: drySoil,
					domain.Bare:              40 * (1 - s.wetness) * s.cover[0],
					domain.Herb:              20 * s.cover[1],
					domain.Litter:            15 * s.cover[2],
					domain.Shrub:             30 * s.cover[3],
					domain.TreeCanopy:        25 * s.wetness * s.cover[4],
				}
				for _, f := range domain.Fields {
					v := values[f]
					if rng.Float64() < opts.MissingRate {
						v = math.NaN()
					}
					o.Set(f, v)
				}
				out = append(out, o)
			}
		}
		return out
	}

	return gen(opts.HistoricFrom, opts.HistoricTo, "historic"), gen(opts.NearTermFrom, opts.NearTermTo, "nearterm")
}

func grid(opts Options) []domain.Location {
	var out []domain.Location
	for r := range opts.Rows {
		for c := range opts.Cols {
			out = append(out, domain.Location{
				Lon: round(opts.Center.Lon+(float64(c)-float64(opts.Cols-1)/2)*opts.Spacing, 5),
				Lat: round(opts.Center.Lat+(float64(r)-float64(opts.Rows-1)/2)*opts.Spacing, 5),
			})
		}
	}
	return out
}

// Header is the column order written by WriteCSV.
func Header() []string {
	h := []string{"long", "lat", "year"}
	for _, f := range domain.Fields {
		h = append(h, string(f))
	}
	return h
}

// WriteCSV writes obs in the source table layout. Missing values are written as NA.
func WriteCSV(w io.Writer, obs []domain.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, 0, 3+len(domain.Fields))
	for _, o := range obs {
		rec = rec[:0]
		rec = append(rec,
			strconv.FormatFloat(o.Location.Lon, 'f', -1, 64),
			strconv.FormatFloat(o.Location.Lat, 'f', -1, 64),
			strconv.Itoa(o.Year),
		)
		for _, f := range domain.Fields {
			v := o.Value(f)
			if domain.IsMissing(v) {
				rec = append(rec, "NA")
				continue
			}
			rec = append(rec, strconv.FormatFloat(round(v, 4), 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
