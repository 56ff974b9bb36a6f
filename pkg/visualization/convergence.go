package visualization

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SaveConvergencePlot renders the fidelity-metric history of a retrieval
// run as a line chart. metricLabel names the metric on the Y axis, e.g.
// "normalized MSE" or "correlation magnitude".
func SaveConvergencePlot(history []float64, metricLabel, filename string) error {
	if len(history) == 0 {
		return fmt.Errorf("visualization: empty metric history")
	}

	p := plot.New()
	p.Title.Text = "Phase retrieval convergence"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = metricLabel
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(history))
	for i, m := range history {
		pts[i].X = float64(i)
		pts[i].Y = m
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	p.Add(line)

	return p.Save(6*vg.Inch, 4*vg.Inch, filename)
}
