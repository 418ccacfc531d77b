// Command report renders the NABR climate, soil, and vegetation report.
//
// Usage:
//
//	report render            # write the static site to REPORT_OUTPUT_DIR
//	report serve             # render, then serve the site with health and metrics
//	report publish           # send annotated observations to KAFKA_SINK_TOPIC
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/nabr-climate-report/internal/adapter/chart"
	"github.com/couchcryptid/nabr-climate-report/internal/adapter/csvsource"
	"github.com/couchcryptid/nabr-climate-report/internal/adapter/site"
	"github.com/couchcryptid/nabr-climate-report/internal/adapter/workbook"
	"github.com/couchcryptid/nabr-climate-report/internal/config"
	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/observability"
	"github.com/couchcryptid/nabr-climate-report/internal/pipeline"
	"github.com/couchcryptid/nabr-climate-report/internal/report"
)

var rootCmd = &cobra.Command{
	Use:   "report",
	Short: "NABR climate, soil, and vegetation report",
	Long: `Loads the historical and near-term observation tables, derives drought
and region classifications, and renders the report pages as a static site.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *observability.Metrics
	pipeline *pipeline.Pipeline
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat).With("service", "nabr-report")
	metrics := observability.NewMetrics()

	var trendSite *domain.Location
	if cfg.TrendLon != nil && cfg.TrendLat != nil {
		trendSite = &domain.Location{Lon: *cfg.TrendLon, Lat: *cfg.TrendLat}
	}

	reader := csvsource.NewReader(cfg.HistoricCSV, cfg.NearTermCSV, logger)
	writer := site.NewWriter(cfg.OutputDir, chart.NewRenderer(), logger)

	var exporters []pipeline.Exporter
	if cfg.WorkbookEnabled {
		exporters = append(exporters, workbook.NewExporter(filepath.Join(cfg.OutputDir, "report.xlsx"), logger))
	}

	opts := pipeline.Options{
		Center: domain.Location{Lon: cfg.CenterLon, Lat: cfg.CenterLat},
		Builders: report.Builders(report.Options{
			TopN:        cfg.TopN,
			DecadeStart: cfg.DecadeStart,
			TrendSite:   trendSite,
		}),
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		pipeline: pipeline.New(reader, writer, opts, logger, metrics, exporters...),
	}, nil
}
