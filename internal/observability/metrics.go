package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for report rendering.
type Metrics struct {
	ObservationsLoaded    *prometheus.CounterVec // labels: source={historic,nearterm}
	RowsDropped           *prometheus.CounterVec // labels: stage={classify}
	FallbackClassified    prometheus.Counter
	PagesRendered         prometheus.Counter
	RenderDuration        prometheus.Histogram
	LastRenderSuccess     prometheus.Gauge
	ObservationsPublished prometheus.Counter
}

// NewMetrics creates and registers all report metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ObservationsLoaded,
		m.RowsDropped,
		m.FallbackClassified,
		m.PagesRendered,
		m.RenderDuration,
		m.LastRenderSuccess,
		m.ObservationsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ObservationsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report",
			Name:      "observations_loaded_total",
			Help:      "Observation rows read from the source tables.",
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report",
			Name:      "rows_dropped_total",
			Help:      "Rows excluded from a stage because required values were missing.",
		}, []string{"stage"}),
		FallbackClassified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report",
			Name:      "drought_fallback_total",
			Help:      "Rows labeled by the drought rule's fallback branch.",
		}),
		PagesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report",
			Name:      "pages_rendered_total",
			Help:      "Report pages written.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "report",
			Name:      "render_duration_seconds",
			Help:      "Duration of a complete load-annotate-render cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastRenderSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "report",
			Name:      "last_render_success",
			Help:      "1 when the last render completed, 0 when it failed.",
		}),
		ObservationsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report",
			Name:      "observations_published_total",
			Help:      "Annotated observations written to the Kafka sink topic.",
		}),
	}
}
