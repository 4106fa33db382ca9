package render

import (
	"fmt"
	"os/exec"

	"github.com/Arafatk/glot"
)

// Series is one named point group of a quick-look preview.
type Series struct {
	Name  string
	Style string // points, lines, circle, impulses
	X, Y  []float64
}

// Preview renders a quick-look plot through gnuplot, for checking a run
// before the full figures are written.
func Preview(path, title, xlabel, ylabel string, series ...Series) error {
	if _, err := exec.LookPath("gnuplot"); err != nil {
		return fmt.Errorf("%w: %v", ErrNoGnuplot, err)
	}

	plot, err := glot.NewPlot(2, false, false)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoGnuplot, err)
	}
	defer plot.Close()

	for _, s := range series {
		if len(s.X) != len(s.Y) {
			return fmt.Errorf("%w: series %s", ErrLength, s.Name)
		}
		style := s.Style
		if style == "" {
			style = "points"
		}
		if err := plot.AddPointGroup(s.Name, style, [][]float64{s.X, s.Y}); err != nil {
			return err
		}
	}

	if err := plot.SetTitle(title); err != nil {
		return err
	}
	if err := plot.SetXLabel(xlabel); err != nil {
		return err
	}
	if err := plot.SetYLabel(ylabel); err != nil {
		return err
	}
	return plot.SavePlot(path)
}
