package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/HamletTheHamster/xray-flare-loops/internal/decay"
	"github.com/HamletTheHamster/xray-flare-loops/internal/ffd"
	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DecayFit draws a flare window, the fitted model and the catalog start and
// stop times.
func DecayFit(w flare.Window, fit decay.Fit, xlabel string) (*plot.Plot, error) {
	if w.Segment.Len() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, w.Event.Name())
	}

	p, err := prepPlot(Axes{
		Title:  w.Event.Name(),
		XLabel: xlabel,
		YLabel: "Normalized flux",
	})
	if err != nil {
		return nil, err
	}

	t, y := w.Segment.Times(), w.Segment.Fluxes()
	pts, err := buildData(t, y)
	if err != nil {
		return nil, err
	}
	data, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	data.GlyphStyle.Color = palette(0)
	data.GlyphStyle.Radius = vg.Points(5)

	// Evaluate fit on a fine grid
	tf := make([]float64, 500)
	floats.Span(tf, t[0], t[len(t)-1])
	model, err := buildData(tf, fit.Eval(tf))
	if err != nil {
		return nil, err
	}
	line, err := plotter.NewLine(model)
	if err != nil {
		return nil, err
	}
	line.LineStyle.Color = palette(1)
	line.LineStyle.Width = vg.Points(3)

	ymin, ymax := floats.Min(y), floats.Max(y)
	start, err := vLine(w.Event.Start, ymin, ymax, red)
	if err != nil {
		return nil, err
	}
	stop, err := vLine(w.Event.Stop, ymin, ymax, red)
	if err != nil {
		return nil, err
	}

	p.Add(data, line, start, stop)
	p.Legend.Add(fmt.Sprintf("sector %d", w.Event.Sector), data)
	p.Legend.Add(fmt.Sprintf("fit, τ = %.4g", fit.Tau), line)
	return p, nil
}

func vLine(x, ymin, ymax float64, c color.Color) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x, Y: ymin}, {X: x, Y: ymax}})
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(2)
	l.LineStyle.Dashes = []vg.Length{vg.Points(10), vg.Points(6)}
	return l, nil
}

// Marker is a single labelled point with error bars.
type Marker struct {
	Label          string
	X, Y           float64
	XLow, XHigh    float64
	YLow, YHigh    float64
	Shape          draw.GlyphDrawer
	Color          int
	NoErrorBarsOnX bool
}

func addMarkers(p *plot.Plot, markers []Marker) error {
	for _, m := range markers {
		pts := errorPoints{
			XYs:     plotter.XYs{{X: m.X, Y: m.Y}},
			YErrors: buildErrors([]float64{m.YLow}, []float64{m.YHigh}),
			XErrors: plotter.XErrors{{Low: m.XLow, High: m.XHigh}},
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.GlyphStyle.Radius = vg.Points(8)
		s.GlyphStyle.Color = palette(m.Color)
		if m.Shape != nil {
			s.GlyphStyle.Shape = m.Shape
		}

		ye, err := plotter.NewYErrorBars(pts)
		if err != nil {
			return err
		}
		ye.LineStyle.Color = grey
		p.Add(ye)
		if !m.NoErrorBarsOnX {
			xe, err := plotter.NewXErrorBars(pts)
			if err != nil {
				return err
			}
			xe.LineStyle.Color = grey
			p.Add(xe)
		}
		p.Add(s)
		if m.Label != "" {
			p.Legend.Add(m.Label, s)
		}
	}
	return nil
}

// FFD draws the cumulative flare frequency distribution, the fitted power
// law and its envelope, plus optional single-flare markers.
func FFD(points []ffd.Point, curve ffd.Curve, label string, markers ...Marker) (*plot.Plot, error) {
	if len(points) == 0 || len(curve.Energy) == 0 {
		return nil, ErrEmpty
	}

	p, err := prepPlot(Axes{
		XLabel: "E_flare [erg]",
		YLabel: "flares per day above E_flare",
		LogX:   true,
		LogY:   true,
	})
	if err != nil {
		return nil, err
	}

	e := make([]float64, len(points))
	f := make([]float64, len(points))
	for i, pt := range points {
		e[i], f[i] = pt.Energy, pt.Freq
	}
	xy, err := buildData(e, f)
	if err != nil {
		return nil, err
	}
	data, err := plotter.NewScatter(xy)
	if err != nil {
		return nil, err
	}
	data.GlyphStyle.Color = black
	data.GlyphStyle.Radius = vg.Points(6)
	data.GlyphStyle.Shape = draw.CircleGlyph{}

	mid, err := curveLine(curve.Energy, curve.Mid, olive, true)
	if err != nil {
		return nil, err
	}
	hi, err := curveLine(curve.Energy, curve.High, grey, false)
	if err != nil {
		return nil, err
	}
	lo, err := curveLine(curve.Energy, curve.Low, grey, false)
	if err != nil {
		return nil, err
	}

	p.Add(hi, lo, mid, data)
	p.Legend.Add("TESS", data)
	p.Legend.Add(label, mid)

	if err := addMarkers(p, markers); err != nil {
		return nil, err
	}
	return p, nil
}

func curveLine(x, y []float64, c color.Color, dashed bool) (*plotter.Line, error) {
	all, err := buildData(x, y)
	if err != nil {
		return nil, err
	}
	// log axes only
	var xy plotter.XYs
	for _, pt := range all {
		if pt.X > 0 && pt.Y > 0 {
			xy = append(xy, pt)
		}
	}
	if len(xy) == 0 {
		return nil, ErrEmpty
	}
	l, err := plotter.NewLine(xy)
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(3)
	if dashed {
		l.LineStyle.Dashes = []vg.Length{vg.Points(12), vg.Points(8)}
	} else {
		l.LineStyle.Width = vg.Points(1.5)
		l.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(4)}
	}
	return l, nil
}

// Curve is a labelled model line.
type Curve struct {
	Label string
	X, Y  []float64
}

// BLRelation draws the e-folding times of flares against their energies on a
// grid of reconnection-time curves for fixed field strength and loop length.
func BLRelation(fieldCurves, loopCurves []Curve, energy, efoldMin []float64, markers ...Marker) (*plot.Plot, error) {
	p, err := prepPlot(Axes{
		XLabel: "Bolometric flare energy [erg]",
		YLabel: "Flare decay e-folding time [min]",
		XRange: [2]float64{math.Pow(10, 29.3), 1e35},
		YRange: [2]float64{math.Pow(10, -1.2), 1e3},
		LogX:   true,
		LogY:   true,
	})
	if err != nil {
		return nil, err
	}

	for _, c := range fieldCurves {
		l, err := curveLine(c.X, clip(c.Y, p.Y.Min, p.Y.Max), grey, true)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		if err := label(p, c); err != nil {
			return nil, err
		}
	}
	for _, c := range loopCurves {
		l, err := curveLine(c.X, clip(c.Y, p.Y.Min, p.Y.Max), grey, false)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		if err := label(p, c); err != nil {
			return nil, err
		}
	}

	if len(energy) > 0 {
		xy, err := buildData(energy, efoldMin)
		if err != nil {
			return nil, err
		}
		s, err := plotter.NewScatter(xy)
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = olive
		s.GlyphStyle.Radius = vg.Points(6)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add("TESS flares", s)
	}

	if err := addMarkers(p, markers); err != nil {
		return nil, err
	}
	p.Legend.Top = false
	return p, nil
}

// clip keeps log-axis curves inside the frame.
func clip(y []float64, lo, hi float64) []float64 {
	out := make([]float64, len(y))
	for i, v := range y {
		out[i] = math.Min(math.Max(v, lo), hi)
	}
	return out
}

// label annotates a curve at its last point inside the frame.
func label(p *plot.Plot, c Curve) error {
	k := -1
	for i := range c.X {
		if c.Y[i] > p.Y.Min && c.Y[i] < p.Y.Max && c.X[i] > p.X.Min && c.X[i] < p.X.Max {
			k = i
		}
	}
	if k < 0 || c.Label == "" {
		return nil
	}
	l, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: c.X[k], Y: c.Y[k]}},
		Labels: []string{c.Label},
	})
	if err != nil {
		return err
	}
	for i := range l.TextStyle {
		l.TextStyle[i].Font.Size = 24
		l.TextStyle[i].Color = grey
	}
	p.Add(l)
	return nil
}

// EFoldHistogram bins the fitted e-folding times.
func EFoldHistogram(values []float64, bins int) (*plot.Plot, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	p, err := prepPlot(Axes{
		XLabel: "e-folding time [min]",
		YLabel: "flares",
	})
	if err != nil {
		return nil, err
	}

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, err
	}
	hist.FillColor = palette(0)
	p.Add(hist)
	return p, nil
}

// Scatter draws labelled markers with error bars, e.g. posterior medians of
// two parameters per data subset.
func Scatter(a Axes, markers []Marker) (*plot.Plot, error) {
	if len(markers) == 0 {
		return nil, ErrEmpty
	}
	p, err := prepPlot(a)
	if err != nil {
		return nil, err
	}
	if err := addMarkers(p, markers); err != nil {
		return nil, err
	}
	return p, nil
}

// EFoldBySector draws one box of e-folding times per sector, in the order
// given.
func EFoldBySector(sectors []int, values map[int][]float64) (*plot.Plot, error) {
	p, err := prepPlot(Axes{
		XLabel: "Sector",
		YLabel: "e-folding time [min]",
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for _, s := range sectors {
		v := values[s]
		if len(v) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Length(15), float64(len(names)), plotter.Values(v))
		if err != nil {
			return nil, err
		}
		box.FillColor = palette(len(names))
		p.Add(box)
		names = append(names, fmt.Sprintf("%d", s))
	}
	if len(names) == 0 {
		return nil, ErrEmpty
	}
	p.NominalX(names...)
	return p, nil
}
