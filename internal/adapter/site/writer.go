// Package site writes the report as a static website: one HTML document per
// page plus an index, an SVG per chart, and a JSON file of every chart series.
package site

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/nabr-climate-report/internal/present"
	"github.com/couchcryptid/nabr-climate-report/internal/report"
)

// ChartRenderer draws one chart as SVG.
type ChartRenderer interface {
	SVG(c present.Chart) ([]byte, error)
}

// Writer writes the site into a directory.
// It implements pipeline.SiteWriter.
type Writer struct {
	dir      string
	renderer ChartRenderer
	logger   *slog.Logger
	index    *template.Template
	page     *template.Template
}

// NewWriter creates a Writer for dir.
func NewWriter(dir string, renderer ChartRenderer, logger *slog.Logger) *Writer {
	return &Writer{
		dir:      dir,
		renderer: renderer,
		logger:   logger,
		index:    template.Must(template.Must(template.New("index").Funcs(funcs).Parse(layoutTemplate)).Parse(indexTemplate)),
		page:     template.Must(template.Must(template.New("page").Funcs(funcs).Parse(layoutTemplate)).Parse(pageTemplate)),
	}
}

var funcs = template.FuncMap{"optionFile": optionFile}

// optionFile names the SVG drawn for dropdown option i of chart id.
func optionFile(id string, i int) string {
	return fmt.Sprintf("%s-%d.svg", id, i)
}

type navItem struct {
	Slug  string
	Title string
}

type indexData struct {
	Slug        string
	Title       string
	Nav         []navItem
	GeneratedAt time.Time
	Meta        report.Meta
}

type pageData struct {
	Slug        string
	Title       string
	Nav         []navItem
	GeneratedAt time.Time
	Page        report.Page
	Data        template.JS
}

// Write renders every page. Existing files with the same names are replaced.
func (w *Writer) Write(ctx context.Context, meta report.Meta, pages []report.Page) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create site dir: %w", err)
	}

	nav := make([]navItem, len(pages))
	for i, p := range pages {
		nav[i] = navItem{Slug: p.Slug, Title: p.Title}
	}

	if err := w.writeFile("style.css", []byte(stylesheet)); err != nil {
		return err
	}

	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writePage(meta, nav, p); err != nil {
			return fmt.Errorf("write page %s: %w", p.Slug, err)
		}
	}

	var buf bytes.Buffer
	if err := w.index.ExecuteTemplate(&buf, "layout", indexData{
		Slug:        "index",
		Title:       "NABR climate, soil, and vegetation",
		Nav:         nav,
		GeneratedAt: meta.GeneratedAt,
		Meta:        meta,
	}); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	if err := w.writeFile("index.html", buf.Bytes()); err != nil {
		return err
	}

	w.logger.Info("site written", "dir", w.dir, "pages", len(pages))
	return nil
}

func (w *Writer) writePage(meta report.Meta, nav []navItem, p report.Page) error {
	for _, c := range p.Charts {
		if err := w.writeChart(c.ID+".svg", c); err != nil {
			return err
		}
		for i := range c.Dropdown {
			if err := w.writeChart(optionFile(c.ID, i), c.ForOption(i)); err != nil {
				return err
			}
		}
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal series: %w", err)
	}
	if err := w.writeFile(p.Slug+".json", data); err != nil {
		return err
	}

	compact, err := json.Marshal(p.Charts)
	if err != nil {
		return fmt.Errorf("marshal charts: %w", err)
	}
	var buf bytes.Buffer
	if err := w.page.ExecuteTemplate(&buf, "layout", pageData{
		Slug:        p.Slug,
		Title:       p.Title,
		Nav:         nav,
		GeneratedAt: meta.GeneratedAt,
		Page:        p,
		Data:        template.JS(compact), //nolint:gosec // encoding/json escapes <, >, and &
	}); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return w.writeFile(p.Slug+".html", buf.Bytes())
}

func (w *Writer) writeChart(name string, c present.Chart) error {
	svg, err := w.renderer.SVG(c)
	if err != nil {
		return err
	}
	return w.writeFile(name, svg)
}

// writeFile writes through a unique temp file and rename, so a server never
// sees a partial file and concurrent writers never share a temp path.
func (w *Writer) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(w.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
