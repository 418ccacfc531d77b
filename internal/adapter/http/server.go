package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/nabr-climate-report/internal/report"
)

// Reporter renders the site and remembers the last successful render.
// Render must serialize concurrent calls.
type Reporter interface {
	sharedobs.ReadinessChecker
	Render(ctx context.Context) (report.Meta, error)
	LastRender() (report.Meta, bool)
}

// Server serves the rendered site next to health, readiness, status, metrics,
// and re-render endpoints.
type Server struct {
	httpServer *http.Server
	reporter   Reporter
	logger     *slog.Logger
}

// NewServer creates an HTTP server for the site in siteDir.
func NewServer(addr, siteDir string, reporter Reporter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           logRequests(logger, mux),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		reporter: reporter,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(reporter))
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /", noCache(http.FileServer(http.Dir(siteDir))))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type renderStatus struct {
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	GeneratedAt    time.Time `json:"generated_at,omitzero"`
	ClassifiedRows int       `json:"classified_rows,omitempty"`
	DroppedRows    int       `json:"dropped_rows,omitempty"`
	Locations      int       `json:"locations,omitempty"`
}

func statusOf(status string, meta report.Meta) renderStatus {
	return renderStatus{
		Status:         status,
		GeneratedAt:    meta.GeneratedAt,
		ClassifiedRows: meta.ClassifiedRows,
		DroppedRows:    meta.DroppedRows,
		Locations:      meta.Locations,
	}
}

// handleStatus describes the last successful render, or 404 before the first.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	meta, ok := s.reporter.LastRender()
	if !ok {
		sharedobs.WriteJSON(w, http.StatusNotFound, renderStatus{
			Status: "not rendered",
			Error:  "report has not been rendered yet",
		})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, statusOf("rendered", meta))
}

// handleRender rebuilds the site from the source tables.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	meta, err := s.reporter.Render(r.Context())
	if err != nil {
		s.logger.Error("render failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, renderStatus{Status: "failed", Error: err.Error()})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, statusOf("rendered", meta))
}

// noCache makes browsers revalidate pages, which change on every render.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
