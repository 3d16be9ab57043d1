// Package chart renders dataset columns as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Kind selects the chart type.
type Kind string

const (
	Bar  Kind = "bar"
	Line Kind = "line"
)

var (
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("no data points to plot")
	// ErrUnknownKind is returned for an unsupported chart type.
	ErrUnknownKind = errors.New("unknown chart kind")
)

const (
	width  = 10 * vg.Inch
	height = 5 * vg.Inch
)

//nolint:gochecknoglobals // palette
var (
	barColor  = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
	lineColor = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
)

// Spec describes one chart. Bar charts draw Y at the row positions in X
// (0..n-1 when X is nil), so positions absent from X stay empty. Line charts
// draw Y against X in the given order.
type Spec struct {
	Kind   Kind
	XLabel string
	YLabel string
	X      []float64
	Y      []float64
}

// Render draws the chart and encodes it as PNG.
func Render(s Spec) ([]byte, error) {
	if len(s.Y) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	switch s.Kind {
	case Bar:
		p.Title.Text = fmt.Sprintf("%s - Bar Chart", s.YLabel)
		pos := s.X
		if pos == nil {
			pos = make([]float64, len(s.Y))
			for i := range pos {
				pos[i] = float64(i)
			}
		}
		if len(pos) != len(s.Y) {
			return nil, fmt.Errorf("bar chart: %d positions for %d values", len(pos), len(s.Y))
		}
		w := barWidth(int(pos[len(pos)-1]) + 1)
		for _, r := range barRuns(pos, s.Y) {
			bars, err := plotter.NewBarChart(plotter.Values(r.values), w)
			if err != nil {
				return nil, fmt.Errorf("bar chart: %w", err)
			}
			bars.XMin = r.start
			bars.Color = barColor
			bars.LineStyle.Width = 0
			p.Add(bars)
		}
	case Line:
		if len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("line chart: %d x values for %d y values", len(s.X), len(s.Y))
		}
		p.Title.Text = fmt.Sprintf("%s vs %s - Line Chart", s.YLabel, s.XLabel)
		xys := make(plotter.XYs, len(s.Y))
		for i := range s.Y {
			xys[i].X = s.X[i]
			xys[i].Y = s.Y[i]
		}
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return nil, fmt.Errorf("line chart: %w", err)
		}
		line.Color = lineColor
		points.GlyphStyle.Color = lineColor
		points.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(line, points)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
	p.Add(plotter.NewGrid())

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

type barRun struct {
	start  float64
	values []float64
}

// barRuns splits bars into runs of consecutive positions. A plotter.BarChart
// lays its values out one unit apart, so every gap starts a new run.
func barRuns(pos, values []float64) []barRun {
	var runs []barRun
	for i := range values {
		if n := len(runs); n > 0 && pos[i] == pos[i-1]+1 {
			runs[n-1].values = append(runs[n-1].values, values[i])
			continue
		}
		runs = append(runs, barRun{start: pos[i], values: []float64{values[i]}})
	}
	return runs
}

// barWidth shrinks bars so that large row counts still fit the canvas.
func barWidth(n int) vg.Length {
	w := (width - vg.Inch) / vg.Length(n)
	if w > vg.Points(20) {
		w = vg.Points(20)
	}
	if w < vg.Points(1) {
		w = vg.Points(1)
	}
	return w
}
