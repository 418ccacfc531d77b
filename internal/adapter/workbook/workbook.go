// Package workbook exports the report tables to an Excel workbook.
package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/nabr-climate-report/internal/report"
)

const (
	summarySheet = "Summary"
	// maxSheetName is Excel's sheet name limit.
	maxSheetName = 31
)

// Exporter writes one sheet per report table plus a summary sheet.
// It implements pipeline.Exporter.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an Exporter writing to path.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// Export builds the workbook and saves it, replacing any existing file.
func (e *Exporter) Export(ctx context.Context, meta report.Meta, pages []report.Page) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("name summary sheet: %w", err)
	}
	if err := writeSummary(f, meta); err != nil {
		return err
	}

	sheets := 1
	used := map[string]bool{summarySheet: true}
	for _, p := range pages {
		for _, t := range p.Tables {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := sheetName(t.Name, used)
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %s: %w", name, err)
			}
			if err := writeTable(f, name, t.Title, t.Columns, t.Rows); err != nil {
				return fmt.Errorf("write sheet %s: %w", name, err)
			}
			sheets++
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(e.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	e.logger.Info("workbook written", "file", e.path, "sheets", sheets)
	return nil
}

func writeSummary(f *excelize.File, meta report.Meta) error {
	rows := [][]any{
		{"Generated at", meta.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		{"Historical rows", meta.HistoricRows},
		{"Near-term rows", meta.NearTermRows},
		{"Classified rows", meta.ClassifiedRows},
		{"Dropped rows", meta.DroppedRows},
		{"Fallback rows", meta.FallbackRows},
		{"Locations", meta.Locations},
		{"First year", meta.FirstYear},
		{"Last year", meta.LastYear},
		{"Temperature t33", meta.Thresholds.T33},
		{"Temperature t66", meta.Thresholds.T66},
		{"Precipitation p33", meta.Thresholds.P33},
		{"Precipitation p66", meta.Thresholds.P66},
		{"Center longitude", meta.Center.Lon},
		{"Center latitude", meta.Center.Lat},
	}
	return writeTable(f, summarySheet, "NABR climate report", []string{"Item", "Value"}, rows)
}

// writeTable puts the title in A1, the header in row 2, and data from row 3.
func writeTable(f *excelize.File, sheet, title string, columns []string, rows [][]any) error {
	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return err
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A2", &header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	return nil
}

// sheetName makes a unique, valid sheet name from a table name.
func sheetName(name string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, name)
	if base == "" {
		base = "table"
	}
	if len(base) > maxSheetName {
		base = base[:maxSheetName]
	}
	candidate := base
	for i := 2; used[candidate]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		candidate = base[:min(len(base), maxSheetName-len(suffix))] + suffix
	}
	used[candidate] = true
	return candidate
}
