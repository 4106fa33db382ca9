// Package render draws the fixed figures of the analysis with gonum/plot and
// saves each as PNG, SVG and PDF in a dated run folder.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Size is the edge length of saved figures.
var Size = 15 * vg.Inch

// Axes describes the frame of a figure. A zero range lets the plot autoscale.
type Axes struct {
	Title, XLabel, YLabel string
	XRange, YRange        [2]float64
	LogX, LogY            bool
}

func prepPlot(
	a Axes,
) (
	*plot.Plot, error,
) {

	p := plot.New()
	p.BackgroundColor = color.RGBA{A: 0}
	p.Title.Text = a.Title
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = 50
	p.Title.Padding = font.Length(50)

	p.X.Label.Text = a.XLabel
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = 36
	p.X.Label.Padding = font.Length(20)
	p.X.LineStyle.Width = vg.Points(1.5)
	p.X.Tick.LineStyle.Width = vg.Points(1.5)
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = 36

	p.Y.Label.Text = a.YLabel
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = 36
	p.Y.Label.Padding = font.Length(20)
	p.Y.LineStyle.Width = vg.Points(1.5)
	p.Y.Tick.LineStyle.Width = vg.Points(1.5)
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = 36

	if a.LogX {
		p.X.Scale = plot.LogScale{}
		p.X.Tick.Marker = plot.LogTicks{Prec: -1}
	}
	if a.LogY {
		p.Y.Scale = plot.LogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
	}

	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.TextStyle.Font.Size = 28
	p.Legend.Top = true
	p.Legend.XOffs = vg.Points(-25)
	p.Legend.YOffs = vg.Points(-25)
	p.Legend.Padding = vg.Points(10)
	p.Legend.ThumbnailWidth = vg.Points(50)

	if a.XRange == [2]float64{} || a.YRange == [2]float64{} {
		if a.XRange != [2]float64{} {
			p.X.Min, p.X.Max = a.XRange[0], a.XRange[1]
		}
		if a.YRange != [2]float64{} {
			p.Y.Min, p.Y.Max = a.YRange[0], a.YRange[1]
		}
		return p, nil
	}
	p.X.Min, p.X.Max = a.XRange[0], a.XRange[1]
	p.Y.Min, p.Y.Max = a.YRange[0], a.YRange[1]

	// Enclose plot
	tAxis, err := plotter.NewLine(plotter.XYs{
		{X: a.XRange[0], Y: a.YRange[1]},
		{X: a.XRange[1], Y: a.YRange[1]},
	})
	if err != nil {
		return nil, err
	}
	rAxis, err := plotter.NewLine(plotter.XYs{
		{X: a.XRange[1], Y: a.YRange[0]},
		{X: a.XRange[1], Y: a.YRange[1]},
	})
	if err != nil {
		return nil, err
	}
	tAxis.LineStyle.Width = vg.Points(1.5)
	rAxis.LineStyle.Width = vg.Points(1.5)
	p.Add(tAxis, rAxis)

	return p, nil
}

func buildData(
	x, y []float64,
) (
	plotter.XYs, error,
) {

	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrLength, len(x), len(y))
	}
	xy := make(plotter.XYs, len(x))
	for i := range xy {
		xy[i].X = x[i]
		xy[i].Y = y[i]
	}
	return xy, nil
}

func buildErrors(
	low, high []float64,
) plotter.YErrors {

	e := make(plotter.YErrors, len(low))
	for i := range e {
		e[i].Low, e[i].High = low[i], high[i]
	}
	return e
}

type errorPoints struct {
	plotter.XYs
	plotter.YErrors
	plotter.XErrors
}

var colors = []color.RGBA{
	{R: 31, G: 211, B: 172, A: 255},
	{R: 255, G: 122, B: 180, A: 255},
	{R: 122, G: 156, B: 255, A: 255},
	{R: 255, G: 193, B: 122, A: 255},
	{R: 188, G: 117, B: 255, A: 255},
	{R: 46, G: 140, B: 60, A: 255},
	{R: 140, G: 46, B: 49, A: 255},
	{R: 27, G: 150, B: 146, A: 255},
}

// palette cycles through the figure colours.
func palette(brush int) color.RGBA {
	return colors[brush%len(colors)]
}

var (
	grey  = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	olive = color.RGBA{R: 128, G: 128, B: 0, A: 255}
	red   = color.RGBA{R: 220, G: 20, B: 60, A: 255}
	black = color.RGBA{A: 255}
)

// RunDir names the folder of one run: root/<date>/<time>[: note].
func RunDir(root, note string, now time.Time) string {
	name := now.Format("15:04:05")
	if note != "" {
		name += ": " + note
	}
	return filepath.Join(root, now.Format("2006-Jan-02"), name)
}

// Save writes p as dir/name.png, .svg and .pdf and returns the PNG path.
func Save(
	p *plot.Plot,
	dir, name string,
) (
	string, error,
) {

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	for _, ext := range []string{".png", ".svg", ".pdf"} {
		if err := p.Save(Size, Size, path+ext); err != nil {
			return "", fmt.Errorf("save %s%s: %w", path, ext, err)
		}
	}
	return path + ".png", nil
}
