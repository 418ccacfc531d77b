package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
)

// ErrMissingColumn is returned when a required key column is absent from the header.
var ErrMissingColumn = errors.New("missing required column")

// Source names used for load accounting.
const (
	SourceHistoric = "historic"
	SourceNearTerm = "nearterm"
)

var requiredColumns = []string{"long", "lat", "year"}

// columnAliases maps accepted header spellings of the key columns.
var columnAliases = map[string]string{
	"long":      "long",
	"longitude": "long",
	"lon":       "long",
	"lat":       "lat",
	"latitude":  "lat",
	"year":      "year",
}

// Reader loads the historical and near-term tables.
// It implements pipeline.Extractor.
type Reader struct {
	historicPath string
	nearTermPath string
	logger       *slog.Logger
}

// NewReader creates a Reader for the two CSV paths.
func NewReader(historicPath, nearTermPath string, logger *slog.Logger) *Reader {
	return &Reader{historicPath: historicPath, nearTermPath: nearTermPath, logger: logger}
}

// Extract reads both files. Either file failing fails the whole load.
func (r *Reader) Extract(ctx context.Context) (historic, nearTerm []domain.Observation, err error) {
	historic, err = r.loadFile(ctx, r.historicPath, SourceHistoric)
	if err != nil {
		return nil, nil, err
	}
	nearTerm, err = r.loadFile(ctx, r.nearTermPath, SourceNearTerm)
	if err != nil {
		return nil, nil, err
	}
	return historic, nearTerm, nil
}

func (r *Reader) loadFile(ctx context.Context, path, source string) ([]domain.Observation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s table: %w", source, err)
	}
	defer f.Close()

	obs, err := Parse(ctx, f, source)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	r.logger.Info("table loaded", "source", source, "file", path, "rows", len(obs))
	return obs, nil
}

// Parse reads observations from CSV. Columns are matched by header name;
// unknown columns are ignored and absent numeric columns load as missing.
func Parse(ctx context.Context, in io.Reader, source string) ([]domain.Observation, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	keys, fields := mapHeader(header)
	for _, col := range requiredColumns {
		if _, ok := keys[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var out []domain.Observation
	for line := 2; ; line++ {
		if line%1024 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(rec) {
			continue
		}

		o, err := parseRecord(rec, keys, fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		o.Source = source
		out = append(out, o)
	}
	return out, nil
}

func mapHeader(header []string) (keys map[string]int, fields map[domain.Field]int) {
	keys = make(map[string]int, len(requiredColumns))
	fields = make(map[domain.Field]int, len(domain.Fields))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if k, ok := columnAliases[strings.ToLower(name)]; ok {
			if _, dup := keys[k]; !dup {
				keys[k] = i
			}
			continue
		}
		if domain.IsKnownField(name) {
			fields[domain.Field(name)] = i
		}
	}
	return keys, fields
}

func parseRecord(rec []string, keys map[string]int, fields map[domain.Field]int) (domain.Observation, error) {
	lon, err := parseKey(rec, keys["long"], "long")
	if err != nil {
		return domain.Observation{}, err
	}
	lat, err := parseKey(rec, keys["lat"], "lat")
	if err != nil {
		return domain.Observation{}, err
	}
	yearF, err := parseKey(rec, keys["year"], "year")
	if err != nil {
		return domain.Observation{}, err
	}
	if yearF != math.Trunc(yearF) {
		return domain.Observation{}, fmt.Errorf("parse year %v: not a whole number", yearF)
	}

	o := domain.NewObservation(domain.Location{Lon: lon, Lat: lat}, int(yearF))
	for f, i := range fields {
		if i < len(rec) {
			o.Set(f, parseValue(rec[i]))
		}
	}
	return o, nil
}

func parseKey(rec []string, i int, name string) (float64, error) {
	if i >= len(rec) {
		return 0, fmt.Errorf("parse %s: short record", name)
	}
	v := parseValue(rec[i])
	if domain.IsMissing(v) {
		return 0, fmt.Errorf("parse %s %q: missing value", name, rec[i])
	}
	return v, nil
}

// parseValue returns NaN for NA, NaN, empty, and unparsable cells.
func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "", "NA", "NAN", "NULL":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

func isBlank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
