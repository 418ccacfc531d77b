// Package chart draws report charts as SVG with gonum/plot.
package chart

import (
	"bytes"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/nabr-climate-report/internal/present"
)

// Renderer draws charts at a fixed size.
type Renderer struct {
	Width, Height vg.Length
}

// NewRenderer returns a Renderer with the default page chart size.
func NewRenderer() *Renderer {
	return &Renderer{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

// SVG renders c and returns the SVG document.
func (r *Renderer) SVG(c present.Chart) ([]byte, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(13)
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.Legend.Top = true

	var err error
	switch c.Kind {
	case present.KindMap, present.KindLine, present.KindScatter:
		err = addXY(p, c.Series)
	case present.KindBar, present.KindFlow:
		err = addBars(p, c.Series)
	default:
		err = fmt.Errorf("unknown chart kind %q", c.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render chart %s: %w", c.ID, err)
	}
	if c.Kind != present.KindBar && c.Kind != present.KindFlow {
		p.Add(plotter.NewGrid())
	}

	wt, err := p.WriterTo(r.Width, r.Height, "svg")
	if err != nil {
		return nil, fmt.Errorf("render chart %s: %w", c.ID, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("render chart %s: %w", c.ID, err)
	}
	return buf.Bytes(), nil
}

func addXY(p *plot.Plot, series []present.Series) error {
	for _, s := range series {
		pts, colors := points(s)
		if len(pts) == 0 {
			continue
		}
		col := parseColor(s.Color)

		if s.Mode == present.Lines {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return err
			}
			line.Color = col
			line.Width = vg.Points(1.5)
			p.Add(line)
			p.Legend.Add(s.Name, line)
			continue
		}

		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		sc.GlyphStyle.Color = col
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		if len(colors) > 0 {
			sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
				gs := sc.GlyphStyle
				gs.Color = parseColor(colors[i])
				return gs
			}
		} else {
			p.Legend.Add(s.Name, sc)
		}
		p.Add(sc)
	}
	return nil
}

// points keeps the coordinates where both x and y are present, with their
// per-point colors when the series has them.
func points(s present.Series) (plotter.XYs, []string) {
	n := min(len(s.X), len(s.Y))
	pts := make(plotter.XYs, 0, n)
	var colors []string
	for i := 0; i < n; i++ {
		if s.X[i].Missing() || s.Y[i].Missing() {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(s.X[i]), Y: float64(s.Y[i])})
		if i < len(s.Colors) {
			colors = append(colors, s.Colors[i])
		}
	}
	if len(colors) != len(pts) {
		colors = nil
	}
	return pts, colors
}

func addBars(p *plot.Plot, series []present.Series) error {
	if len(series) == 0 {
		return nil
	}
	width := vg.Points(40 / float64(len(series)))
	var labels []string
	for i, s := range series {
		values := make(plotter.Values, len(s.Y))
		for j, v := range s.Y {
			if !v.Missing() {
				values[j] = float64(v)
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = parseColor(s.Color)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = width * vg.Length(float64(i)-float64(len(series)-1)/2)
		p.Add(bars)
		p.Legend.Add(s.Name, bars)
		if len(s.Labels) > len(labels) {
			labels = s.Labels
		}
	}
	p.NominalX(labels...)
	if len(labels) > 4 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
	return nil
}

// parseColor reads "#rrggbb"; anything else is drawn grey.
func parseColor(hex string) color.Color {
	grey := color.RGBA{R: 99, G: 99, B: 99, A: 255}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return grey
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return grey
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
