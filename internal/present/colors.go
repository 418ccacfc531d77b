package present

import (
	"fmt"
	"math"
	"sort"

	"github.com/couchcryptid/nabr-climate-report/internal/domain"
)

// DroughtColors assigns a color per drought level.
var DroughtColors = map[domain.DroughtLevel]string{
	domain.LowArid:    "#2c7bb6",
	domain.MediumArid: "#fdae61",
	domain.HighArid:   "#d7191c",
}

// RegionColors assigns a color per quadrant.
var RegionColors = map[domain.Region]string{
	domain.Northeast: "#1b9e77",
	domain.Northwest: "#d95f02",
	domain.Southeast: "#7570b3",
	domain.Southwest: "#e7298a",
}

var fieldColors = map[domain.Field]string{
	domain.Bare:       "#c2a878",
	domain.Herb:       "#9ccc65",
	domain.Litter:     "#8d6e63",
	domain.Shrub:      "#558b2f",
	domain.TreeCanopy: "#1b5e20",
	domain.VWCWinter:  "#4575b4",
	domain.VWCSpring:  "#91bfdb",
	domain.VWCSummer:  "#fc8d59",
	domain.VWCFall:    "#d73027",
}

// FieldColor returns the fixed color of a cover or season field.
func FieldColor(f domain.Field) string {
	if c, ok := fieldColors[f]; ok {
		return c
	}
	return "#636363"
}

// palette is used for per-site series.
var palette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf"}

// Palette returns the i-th categorical color, cycling.
func Palette(i int) string {
	return palette[((i%len(palette))+len(palette))%len(palette)]
}

// binColors is a light-to-dark sequential scale.
var binColors = []string{"#ffffb2", "#fecc5c", "#fd8d3c", "#f03b20", "#bd0026"}

// Bins groups values into len(binColors) quantile classes for map coloring.
type Bins struct {
	// Breaks are the upper bounds of every class but the last.
	Breaks []float64
}

// NewBins computes quantile class breaks, ignoring missing values.
func NewBins(values []float64) Bins {
	k := len(binColors)
	var breaks []float64
	for i := 1; i < k; i++ {
		q, err := domain.Quantile(values, float64(i)/float64(k))
		if err != nil {
			return Bins{}
		}
		breaks = append(breaks, q)
	}
	return Bins{Breaks: breaks}
}

// Index returns the class of v, or -1 for missing.
func (b Bins) Index(v float64) int {
	if math.IsNaN(v) {
		return -1
	}
	return sort.SearchFloat64s(b.Breaks, v)
}

// Color returns the class color of v; missing values are grey.
func (b Bins) Color(v float64) string {
	i := b.Index(v)
	if i < 0 {
		return "#bdbdbd"
	}
	return binColors[min(i, len(binColors)-1)]
}

// Legend describes each class as a value range.
func (b Bins) Legend(format string) []LegendEntry {
	if len(b.Breaks) == 0 {
		return nil
	}
	out := make([]LegendEntry, 0, len(b.Breaks)+1)
	lo := "min"
	for i, br := range b.Breaks {
		hi := fmt.Sprintf(format, br)
		out = append(out, LegendEntry{Label: lo + " - " + hi, Color: binColors[i]})
		lo = hi
	}
	out = append(out, LegendEntry{Label: lo + " - max", Color: binColors[len(b.Breaks)]})
	return out
}

func missing() float64 { return math.NaN() }
