package figure

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Series is one polygon of a radar chart. Values are expected in [0,1].
type Series struct {
	Name   string
	Values []float64
}

// radarPoint maps axis k of n at radius r, starting at 12 o'clock and going
// clockwise.
func radarPoint(k, n int, r float64) plotter.XY {
	theta := math.Pi/2 - 2*math.Pi*float64(k)/float64(n)
	return plotter.XY{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// Radar draws a polar chart with one axis per metric.
func Radar(path, title string, axes []string, series []Series, opt Options) error {
	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	n := len(axes)

	if n > 0 {
		for _, r := range []float64{0.25, 0.5, 0.75, 1} {
			ring := make(plotter.XYs, n+1)
			for k := 0; k <= n; k++ {
				ring[k] = radarPoint(k%n, n, r)
			}
			l, err := plotter.NewLine(ring)
			if err != nil {
				return err
			}
			l.LineStyle.Color = Light
			p.Add(l)
		}
		lbl := plotter.XYLabels{}
		for k, name := range axes {
			spoke, err := plotter.NewLine(plotter.XYs{{}, radarPoint(k, n, 1)})
			if err != nil {
				return err
			}
			spoke.LineStyle.Color = Light
			p.Add(spoke)
			lbl.XYs = append(lbl.XYs, radarPoint(k, n, 1.12))
			lbl.Labels = append(lbl.Labels, name)
		}
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return err
		}
		p.Add(labels)
	}

	for i, s := range series {
		if n == 0 {
			break
		}
		pts := make(plotter.XYs, n)
		for k := 0; k < n; k++ {
			v := 0.0
			if k < len(s.Values) {
				v = s.Values[k]
			}
			pts[k] = radarPoint(k, n, v)
		}
		c := plotutil.Color(i)
		poly, err := plotter.NewPolygon(pts)
		if err != nil {
			return err
		}
		r, g, b, _ := c.RGBA()
		poly.Color = color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: 64}
		poly.LineStyle.Color = c
		poly.LineStyle.Width = vg.Points(1.5)
		p.Add(poly)
		p.Legend.Add(s.Name, poly)
	}

	p.X.Min, p.X.Max = -1.4, 1.4
	p.Y.Min, p.Y.Max = -1.3, 1.3
	p.Legend.Top = true
	return Save(p, 10*vg.Inch, 10*vg.Inch, path, opt)
}
