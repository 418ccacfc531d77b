package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	httpadapter "github.com/couchcryptid/nabr-climate-report/internal/adapter/http"
	"github.com/couchcryptid/nabr-climate-report/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReporter struct {
	meta     report.Meta
	rendered bool
	err      error
	calls    int
}

func (m *mockReporter) Render(context.Context) (report.Meta, error) {
	m.calls++
	if m.err != nil {
		return report.Meta{}, m.err
	}
	m.rendered = true
	return m.meta, nil
}

func (m *mockReporter) LastRender() (report.Meta, bool) { return m.meta, m.rendered }

func (m *mockReporter) CheckReadiness(context.Context) error {
	if !m.rendered {
		return errors.New("report has not been rendered yet")
	}
	return nil
}

func renderedMeta() report.Meta {
	return report.Meta{
		GeneratedAt:    time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
		ClassifiedRows: 1340,
		DroppedRows:    10,
		Locations:      30,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	srv := httpadapter.NewServer(":0", t.TempDir(), &mockReporter{}, slog.Default())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		reporter   *mockReporter
		wantCode   int
		wantStatus string
	}{
		{"before first render", &mockReporter{}, http.StatusServiceUnavailable, "not ready"},
		{"after render", &mockReporter{meta: renderedMeta(), rendered: true}, http.StatusOK, "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpadapter.NewServer(":0", t.TempDir(), tt.reporter, slog.Default())
			rec := httptest.NewRecorder()

			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, decode(t, rec)["status"])
		})
	}
}

func TestReadyzExplainsNotReady(t *testing.T) {
	srv := httpadapter.NewServer(":0", t.TempDir(), &mockReporter{}, slog.Default())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, "report has not been rendered yet", decode(t, rec)["error"])
}

func TestStatus(t *testing.T) {
	t.Run("after render", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", t.TempDir(), &mockReporter{meta: renderedMeta(), rendered: true}, slog.Default())
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "rendered", body["status"])
		assert.Equal(t, "2025-03-01T12:00:00Z", body["generated_at"])
		assert.InDelta(t, 1340, body["classified_rows"], 0)
		assert.InDelta(t, 10, body["dropped_rows"], 0)
		assert.InDelta(t, 30, body["locations"], 0)
	})

	t.Run("before render", func(t *testing.T) {
		srv := httpadapter.NewServer(":0", t.TempDir(), &mockReporter{}, slog.Default())
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not rendered", decode(t, rec)["status"])
	})
}

func TestRenderEndpoint(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		rep := &mockReporter{meta: renderedMeta()}
		srv := httpadapter.NewServer(":0", t.TempDir(), rep, slog.Default())
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rendered", decode(t, rec)["status"])
		assert.Equal(t, 1, rep.calls)
	})

	t.Run("failure", func(t *testing.T) {
		rep := &mockReporter{err: errors.New("extract: open data/NABR_historic.csv: no such file")}
		srv := httpadapter.NewServer(":0", t.TempDir(), rep, slog.Default())
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/render", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "failed", body["status"])
		assert.Contains(t, body["error"], "NABR_historic.csv")
	})

	t.Run("GET not allowed", func(t *testing.T) {
		rep := &mockReporter{}
		srv := httpadapter.NewServer(":0", t.TempDir(), rep, slog.Default())
		rec := httptest.NewRecorder()

		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/render", nil))

		assert.NotEqual(t, http.StatusOK, rec.Code)
		assert.Zero(t, rep.calls)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := httpadapter.NewServer(":0", t.TempDir(), &mockReporter{}, slog.Default())
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServesSiteFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>NABR</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dry-soil.json"), []byte(`{"slug":"dry-soil"}`), 0o644))
	srv := httpadapter.NewServer(":0", dir, &mockReporter{}, slog.Default())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>NABR</h1>")
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dry-soil.json", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"slug":"dry-soil"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing.html", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
