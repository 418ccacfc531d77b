// Command genmock writes deterministic synthetic historical and near-term
// observation tables in the NABR CSV layout, for local runs and demos.
//
// Usage:
//
//	go run ./cmd/genmock -out-dir data -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/mockdata"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	defaults := mockdata.DefaultOptions()
	outDir := flag.String("out-dir", "data", "directory for the generated CSV files")
	cols := flag.Int("cols", defaults.Cols, "sites per grid row")
	rows := flag.Int("rows", defaults.Rows, "grid rows")
	seed := flag.Uint64("seed", defaults.Seed, "random seed")
	missing := flag.Float64("missing-rate", defaults.MissingRate, "chance that any value is NA")
	flag.Parse()

	if *cols <= 0 || *rows <= 0 {
		flag.Usage()
		return fmt.Errorf("-cols and -rows must be positive")
	}
	if *missing < 0 || *missing > 1 {
		return fmt.Errorf("-missing-rate must be between 0 and 1")
	}

	opts := defaults
	opts.Cols, opts.Rows = *cols, *rows
	opts.Seed = *seed
	opts.MissingRate = *missing

	historic, nearTerm := mockdata.Generate(opts)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, out := range []struct {
		file string
		obs  []domain.Observation
	}{
		{"NABR_historic.csv", historic},
		{"nearterm_data_2020-2024.csv", nearTerm},
	} {
		path := filepath.Join(*outDir, out.file)
		if err := writeFile(path, out.obs); err != nil {
			return fmt.Errorf("writing %s: %w", out.file, err)
		}
		log.Printf("wrote %s: %d rows", path, len(out.obs))
	}

	log.Printf("sites: %d, years: %d-%d and %d-%d",
		opts.Cols*opts.Rows, opts.HistoricFrom, opts.HistoricTo, opts.NearTermFrom, opts.NearTermTo)
	return nil
}

func writeFile(path string, obs []domain.Observation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := mockdata.WriteCSV(f, obs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
