package sim

import (
	"fmt"
	"image/color"

	"github.com/milosgajdos/go-assimilate/estimate"
	"github.com/milosgajdos/go-assimilate/kalman/kf"
	"github.com/milosgajdos/go-assimilate/obs"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NewBandPlot creates new plot of the analyses of a single entity stored in res:
// mean:    analysis mean of the entity
// lo, hi:  confidence band of z standard deviations around the mean
// observed: observations of the entity stored in y, if any
// It returns error if the plot fails to be created. This can be due to either of the following conditions:
// * res or y is nil
// * res is empty or has different number of steps than y
// * entity is out of range
// * gonum plot fails to be created
func NewBandPlot(res *kf.Result, y *obs.Matrix, entity int, z float64) (*plot.Plot, error) {
	if res == nil || y == nil {
		return nil, fmt.Errorf("invalid data supplied")
	}

	entities, steps := y.Dims()
	if res.Len() == 0 || res.Len() != steps {
		return nil, fmt.Errorf("invalid number of steps: %d", res.Len())
	}

	if entity < 0 || entity >= entities {
		return nil, fmt.Errorf("invalid entity: %d", entity)
	}

	mean := make(plotter.XYs, steps)
	lo := make(plotter.XYs, steps)
	hi := make(plotter.XYs, steps)
	for t, an := range res.Analyses() {
		l, h := estimate.Band(an, z)
		x := float64(t + 1)
		mean[t].X, mean[t].Y = x, an.Val().AtVec(entity)
		lo[t].X, lo[t].Y = x, l[entity]
		hi[t].X, hi[t].Y = x, h[entity]
	}

	p := plot.New()

	p.Title.Text = y.Names()[entity]
	p.X.Label.Text = "Step"
	p.Y.Label.Text = "State"

	legend := plot.NewLegend()
	legend.Top = true
	p.Legend = legend

	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return nil, err
	}
	meanLine.Color = color.RGBA{B: 255, A: 255}
	meanLine.Width = vg.Points(1.5)

	p.Add(meanLine)
	p.Legend.Add("analysis", meanLine)

	for _, band := range []plotter.XYs{lo, hi} {
		l, err := plotter.NewLine(band)
		if err != nil {
			return nil, err
		}
		l.Color = color.RGBA{R: 169, G: 169, B: 169, A: 255}
		l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(l)
	}
	p.Legend.Add(fmt.Sprintf("%g sigma", z), &plotter.Line{LineStyle: draw.LineStyle{
		Color:  color.RGBA{R: 169, G: 169, B: 169, A: 255},
		Width:  vg.Points(1),
		Dashes: []vg.Length{vg.Points(4), vg.Points(2)},
	}})

	var pts plotter.XYs
	for t := 0; t < steps; t++ {
		if v, ok := y.At(entity, t).Get(); ok {
			pts = append(pts, plotter.XY{X: float64(t + 1), Y: v})
		}
	}

	if len(pts) > 0 {
		measScatter, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create scatter: %v", err)
		}
		measScatter.GlyphStyle.Color = color.RGBA{R: 255, B: 128, A: 255}
		measScatter.Shape = draw.CrossGlyph{}
		measScatter.GlyphStyle.Radius = vg.Points(3)

		p.Add(measScatter)
		p.Legend.Add("observation", measScatter)
	}

	return p, nil
}
