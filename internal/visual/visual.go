// Package visual renders OCV-SOC curves as an interactive HTML chart or a
// static PNG.
package visual

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bpxgen/internal/electrochem"
	"bpxgen/internal/params"
)

var ErrNoSeries = errors.New("visual: nothing to plot")

// Series is one named OCV-SOC curve.
type Series struct {
	Name  string
	Curve *electrochem.Curve
}

// Marker highlights a single operating point, usually the initial state.
type Marker struct {
	Label string
	SOC   float64
	OCV   float64
}

// Chart is the input to both renderers.
type Chart struct {
	Title    string
	Subtitle string
	Series   []Series
	Markers  []Marker
}

type ImageResult struct {
	Bytes       []byte `json:"-"`
	Base64      string `json:"base64"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

func (r *ImageResult) DataURI() string {
	if r == nil {
		return ""
	}
	if r.Base64 == "" && len(r.Bytes) > 0 {
		r.Base64 = base64.StdEncoding.EncodeToString(r.Bytes)
	}
	if r.Base64 == "" {
		return ""
	}
	return "data:image/png;base64," + r.Base64
}

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorMarker        = "#f87171"

	chartWidthPx  = 1200
	chartHeightPx = 600

	pngWidth  = 8 * vg.Inch
	pngHeight = 5 * vg.Inch
)

// ThermodynamicSeries samples the cell OCV of a single-phase set.
func ThermodynamicSeries(name string, set params.Set, points int) (Series, error) {
	c, err := electrochem.ThermodynamicOCV(set, points)
	if err != nil {
		return Series{}, err
	}
	return Series{Name: name, Curve: c}, nil
}

func (c Chart) validate() error {
	n := 0
	for _, s := range c.Series {
		if s.Curve != nil && len(s.Curve.SOC) > 0 {
			n++
		}
	}
	if n == 0 {
		return ErrNoSeries
	}
	return nil
}

// RenderHTML writes a self-contained ECharts page.
func RenderHTML(w io.Writer, c Chart) error {
	if err := c.validate(); err != nil {
		return err
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", chartHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         c.Title,
			Subtitle:      c.Subtitle,
			Left:          "left",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "SOC",
			Type:      "value",
			Min:       0,
			Max:       1,
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      "OCV [V]",
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0}}),
	)
	for _, s := range c.Series {
		if s.Curve == nil {
			continue
		}
		line.AddSeries(s.Name, lineData(s.Curve), charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	if len(c.Markers) > 0 {
		points := make([]opts.ScatterData, 0, len(c.Markers))
		for _, m := range c.Markers {
			points = append(points, opts.ScatterData{Name: m.Label, Value: []float64{m.SOC, m.OCV}, SymbolSize: 12})
		}
		scatter := charts.NewScatter()
		scatter.AddSeries("initial state", points, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorMarker}))
		line.Overlap(scatter)
	}
	return line.Render(w)
}

func lineData(c *electrochem.Curve) []opts.LineData {
	out := make([]opts.LineData, len(c.SOC))
	for i := range c.SOC {
		out[i] = opts.LineData{Value: []float64{c.SOC[i], c.OCV[i]}}
	}
	return out
}

// RenderPNG draws the chart with gonum/plot.
func RenderPNG(c Chart) (ImageResult, error) {
	if err := c.validate(); err != nil {
		return ImageResult{}, err
	}
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = "SOC"
	p.Y.Label.Text = "OCV [V]"
	p.X.Min, p.X.Max = 0, 1
	p.Add(plotter.NewGrid())
	p.Legend.Top = false
	p.Legend.Left = true

	names := make([]string, 0, len(c.Series))
	for i, s := range c.Series {
		if s.Curve == nil {
			continue
		}
		l, err := plotter.NewLine(xys(s.Curve.SOC, s.Curve.OCV))
		if err != nil {
			return ImageResult{}, fmt.Errorf("series %q: %w", s.Name, err)
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(s.Name, l)
		names = append(names, s.Name)
	}
	if len(c.Markers) > 0 {
		pts := make(plotter.XYs, len(c.Markers))
		for i, m := range c.Markers {
			pts[i] = plotter.XY{X: m.SOC, Y: m.OCV}
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return ImageResult{}, err
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(4)
		p.Add(sc)
		p.Legend.Add("initial state", sc)
	}

	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return ImageResult{}, err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return ImageResult{}, err
	}
	return ImageResult{
		Bytes:       buf.Bytes(),
		Filename:    filename(c.Title) + ".png",
		Description: fmt.Sprintf("%s | %s", c.Title, strings.Join(names, ", ")),
	}, nil
}

func xys(xs, ys []float64) plotter.XYs {
	out := make(plotter.XYs, len(xs))
	for i := range xs {
		out[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return out
}

func filename(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return "ocv"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, title)
}
