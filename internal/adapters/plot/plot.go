// Package plot draws insight views as SVG charts.
package plot

import (
	"bytes"
	"fmt"
	"image/color"
	"strconv"

	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/churnboard/internal/domain/insight"
)

const (
	defaultWidthIn  = 10
	defaultHeightIn = 4
)

var (
	barFill  = color.RGBA{R: 0x4c, G: 0x72, B: 0xb0, A: 0xff}
	kdeColor = color.RGBA{R: 0xdd, G: 0x84, B: 0x52, A: 0xff}
)

// Figures holds the three rendered charts of one insight.
type Figures struct {
	Satisfaction []byte
	Evaluation   []byte
	Projects     []byte
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSize sets the figure size in inches. Non-positive values are ignored.
func WithSize(widthIn, heightIn float64) Option {
	return func(r *Renderer) {
		if widthIn > 0 {
			r.width = vg.Length(widthIn) * vg.Inch
		}
		if heightIn > 0 {
			r.height = vg.Length(heightIn) * vg.Inch
		}
	}
}

// Renderer turns insight views into SVG documents. It holds no mutable state.
type Renderer struct {
	width  vg.Length
	height vg.Length
}

// New returns a Renderer sized 10x4 inches unless overridden.
func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidthIn * vg.Inch, height: defaultHeightIn * vg.Inch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insight renders all charts for in.
func (r *Renderer) Insight(in insight.Insight) (Figures, error) {
	var (
		f   Figures
		err error
	)
	if f.Satisfaction, err = r.Distribution(in.Satisfaction); err != nil {
		return Figures{}, err
	}
	if f.Evaluation, err = r.Distribution(in.Evaluation); err != nil {
		return Figures{}, err
	}
	if f.Projects, err = r.Counts(in.Projects); err != nil {
		return Figures{}, err
	}
	return f, nil
}

// Distribution draws a histogram with its density curve on top.
func (r *Renderer) Distribution(d insight.Distribution) ([]byte, error) {
	p := gonumplot.New()
	p.Title.Text = d.Title
	p.X.Label.Text = d.Field
	p.Y.Label.Text = "Count"

	if len(d.Bins) > 0 {
		h := &plotter.Histogram{
			Bins:      make([]plotter.HistogramBin, len(d.Bins)),
			Width:     d.Bins[0].Hi - d.Bins[0].Lo,
			FillColor: barFill,
			LineStyle: plotter.DefaultLineStyle,
		}
		for i, b := range d.Bins {
			h.Bins[i] = plotter.HistogramBin{Min: b.Lo, Max: b.Hi, Weight: float64(b.Count)}
		}
		p.Add(h)
	}

	if len(d.Density) > 0 {
		xys := make(plotter.XYs, len(d.Density))
		for i, pt := range d.Density {
			xys[i] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("%s density: %w", d.Field, err)
		}
		line.Color = kdeColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add("KDE", line)
		p.Legend.Top = true
	}

	return r.encode(p, d.Field)
}

// Counts draws one bar per category.
func (r *Renderer) Counts(c insight.Counts) ([]byte, error) {
	p := gonumplot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.Field
	p.Y.Label.Text = "count"

	if len(c.Categories) > 0 {
		values := make(plotter.Values, len(c.Categories))
		names := make([]string, len(c.Categories))
		for i, cc := range c.Categories {
			values[i] = float64(cc.Count)
			names[i] = strconv.Itoa(cc.Value)
		}
		bars, err := plotter.NewBarChart(values, vg.Points(24))
		if err != nil {
			return nil, fmt.Errorf("%s counts: %w", c.Field, err)
		}
		bars.Color = barFill
		bars.LineStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(0.5)}
		p.Add(bars)
		p.NominalX(names...)
	}

	return r.encode(p, c.Field)
}

func (r *Renderer) encode(p *gonumplot.Plot, name string) ([]byte, error) {
	wt, err := p.WriterTo(r.width, r.height, "svg")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return trimProlog(buf.Bytes()), nil
}

// trimProlog drops the XML declaration so the document can be inlined in HTML.
func trimProlog(b []byte) []byte {
	if i := bytes.Index(b, []byte("<svg")); i > 0 {
		return b[i:]
	}
	return b
}
