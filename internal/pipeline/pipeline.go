package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
	"github.com/couchcryptid/nabr-climate-report/internal/observability"
	"github.com/couchcryptid/nabr-climate-report/internal/report"
)

// Extractor reads the historical and near-term observation tables.
type Extractor interface {
	Extract(ctx context.Context) (historic, nearTerm []domain.Observation, err error)
}

// SiteWriter writes the rendered pages to their destination.
type SiteWriter interface {
	Write(ctx context.Context, meta report.Meta, pages []report.Page) error
}

// Exporter writes the page tables to a secondary format such as a workbook.
type Exporter interface {
	Export(ctx context.Context, meta report.Meta, pages []report.Page) error
}

// BatchLoader publishes annotated observations.
type BatchLoader interface {
	LoadBatch(ctx context.Context, rows []domain.AnnotatedObservation) error
}

// Options holds the analysis parameters shared by every render.
type Options struct {
	Center domain.Location
	// Thresholds overrides the terciles computed from the data.
	Thresholds *domain.Thresholds
	Builders   []report.Builder
	// PublishBatchSize bounds each LoadBatch call; 0 uses 500.
	PublishBatchSize int
}

const defaultPublishBatchSize = 500

// Pipeline runs load, annotate, build, and write. Every run starts from the
// source tables; nothing is carried over between runs.
type Pipeline struct {
	extractor Extractor
	site      SiteWriter
	exporters []Exporter
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	last      atomic.Pointer[report.Meta]
	renderMu  sync.Mutex
}

// New creates a Pipeline. site may be nil for publish-only use.
func New(e Extractor, site SiteWriter, opts Options, logger *slog.Logger, metrics *observability.Metrics, exporters ...Exporter) *Pipeline {
	if opts.PublishBatchSize <= 0 {
		opts.PublishBatchSize = defaultPublishBatchSize
	}
	return &Pipeline{
		extractor: e,
		site:      site,
		exporters: exporters,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// LastRender returns the metadata of the most recent successful render.
func (p *Pipeline) LastRender() (report.Meta, bool) {
	m := p.last.Load()
	if m == nil {
		return report.Meta{}, false
	}
	return *m, true
}

// CheckReadiness returns nil once a render has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.last.Load() == nil {
		return errors.New("report has not been rendered yet")
	}
	return nil
}

// Render rebuilds every page from the source tables and writes them.
// Concurrent calls run one after another.
func (p *Pipeline) Render(ctx context.Context) (report.Meta, error) {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()

	start := time.Now()
	meta, err := p.render(ctx)
	if err != nil {
		p.metrics.LastRenderSuccess.Set(0)
		return report.Meta{}, err
	}
	p.metrics.RenderDuration.Observe(time.Since(start).Seconds())
	p.metrics.LastRenderSuccess.Set(1)
	p.last.Store(&meta)
	p.logger.Info("report rendered",
		"pages", len(p.opts.Builders),
		"classified_rows", meta.ClassifiedRows,
		"duration", time.Since(start),
	)
	return meta, nil
}

func (p *Pipeline) render(ctx context.Context) (report.Meta, error) {
	if p.site == nil {
		return report.Meta{}, errors.New("render: no site writer configured")
	}
	table, meta, err := p.load(ctx)
	if err != nil {
		return report.Meta{}, err
	}

	pages := make([]report.Page, 0, len(p.opts.Builders))
	for _, b := range p.opts.Builders {
		page, err := b.Build(table)
		if err != nil {
			return report.Meta{}, fmt.Errorf("build page %s: %w", b.Slug(), err)
		}
		p.logger.Debug("page built", "slug", page.Slug, "charts", len(page.Charts), "tables", len(page.Tables))
		pages = append(pages, page)
	}

	if err := p.site.Write(ctx, meta, pages); err != nil {
		return report.Meta{}, fmt.Errorf("write site: %w", err)
	}
	p.metrics.PagesRendered.Add(float64(len(pages)))

	for _, e := range p.exporters {
		if err := e.Export(ctx, meta, pages); err != nil {
			return report.Meta{}, fmt.Errorf("export: %w", err)
		}
	}
	return meta, nil
}

// Publish annotates the source tables and sends every classified row to l in batches.
func (p *Pipeline) Publish(ctx context.Context, l BatchLoader) (int, error) {
	table, _, err := p.load(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	rows := table.Classified
	for len(rows) > 0 {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		n := min(p.opts.PublishBatchSize, len(rows))
		if err := l.LoadBatch(ctx, rows[:n]); err != nil {
			return sent, fmt.Errorf("publish batch at row %d: %w", sent, err)
		}
		p.metrics.ObservationsPublished.Add(float64(n))
		sent += n
		rows = rows[n:]
	}
	p.logger.Info("observations published", "rows", sent)
	return sent, nil
}

// load extracts and annotates the tables, recording row accounting.
func (p *Pipeline) load(ctx context.Context) (domain.AnnotatedTable, report.Meta, error) {
	historic, nearTerm, err := p.extractor.Extract(ctx)
	if err != nil {
		return domain.AnnotatedTable{}, report.Meta{}, fmt.Errorf("extract: %w", err)
	}
	p.metrics.ObservationsLoaded.WithLabelValues("historic").Add(float64(len(historic)))
	p.metrics.ObservationsLoaded.WithLabelValues("nearterm").Add(float64(len(nearTerm)))

	table, err := Annotate(historic, nearTerm, p.opts.Center, p.opts.Thresholds)
	if err != nil {
		return domain.AnnotatedTable{}, report.Meta{}, err
	}
	p.metrics.RowsDropped.WithLabelValues("classify").Add(float64(table.Dropped))
	p.metrics.FallbackClassified.Add(float64(table.Fallback))
	if table.Dropped > 0 {
		p.logger.Info("rows dropped before classification", "rows", table.Dropped)
	}

	firstYear, lastYear, _ := domain.YearRange(table.Observations)
	meta := report.Meta{
		GeneratedAt:    domain.Now(),
		HistoricRows:   len(historic),
		NearTermRows:   len(nearTerm),
		ClassifiedRows: len(table.Classified),
		DroppedRows:    table.Dropped,
		FallbackRows:   table.Fallback,
		Locations:      len(domain.Locations(table.Observations)),
		FirstYear:      firstYear,
		LastYear:       lastYear,
		Thresholds:     table.Thresholds,
		Center:         table.Center,
	}
	return table, meta, nil
}
