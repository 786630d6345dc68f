package figure

import (
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/crimson-sun/pathobridge/internal/metabolite"
)

// UpSet draws intersection sizes as bars above a membership dot matrix.
// Intersections are drawn in the order given.
func UpSet(path, title string, sets []string, xs []metabolite.Intersection, opt Options) error {
	n := len(xs)

	bars := plot.New()
	bars.Title.Text = title
	bars.Y.Label.Text = "Intersection Size"
	counts := make(plotter.Values, n)
	lbl := plotter.XYLabels{}
	for i, x := range xs {
		counts[i] = float64(x.Count)
		lbl.XYs = append(lbl.XYs, plotter.XY{X: float64(i), Y: float64(x.Count)})
		lbl.Labels = append(lbl.Labels, strconv.Itoa(x.Count))
	}
	if n > 0 {
		b, err := plotter.NewBarChart(counts, vg.Points(14))
		if err != nil {
			return err
		}
		b.Color = Dark
		bars.Add(b)
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return err
		}
		labels.Offset = vg.Point{X: -vg.Points(3), Y: vg.Points(2)}
		bars.Add(labels)
	}
	bars.X.Min, bars.X.Max = -0.5, float64(n)-0.5
	bars.HideX()

	matrix := plot.New()
	matrix.X.Min, matrix.X.Max = -0.5, float64(n)-0.5
	matrix.HideX()
	matrix.NominalY(sets...)
	for i, x := range xs {
		var pts plotter.XYs
		lo, hi := -1, -1
		for j, member := range x.Members {
			pts = append(pts, plotter.XY{X: float64(i), Y: float64(j)})
			if member {
				if lo < 0 {
					lo = j
				}
				hi = j
			}
		}
		if lo >= 0 && hi > lo {
			l, err := plotter.NewLine(plotter.XYs{{X: float64(i), Y: float64(lo)}, {X: float64(i), Y: float64(hi)}})
			if err != nil {
				return err
			}
			l.LineStyle.Color = Dark
			l.LineStyle.Width = vg.Points(2)
			matrix.Add(l)
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		members := x.Members
		s.GlyphStyleFunc = func(j int) draw.GlyphStyle {
			c := Light
			if members[j] {
				c = Dark
			}
			return draw.GlyphStyle{Color: c, Shape: draw.CircleGlyph{}, Radius: vg.Points(4)}
		}
		matrix.Add(s)
	}

	w := vg.Length(4+0.4*float64(n)) * vg.Inch
	return render(path, w, 6*vg.Inch, opt, func(dc draw.Canvas) {
		tiles := draw.Tiles{Rows: 2, Cols: 1, PadY: vg.Points(4), PadTop: vg.Points(6), PadBottom: vg.Points(6), PadLeft: vg.Points(6), PadRight: vg.Points(6)}
		canvases := plot.Align([][]*plot.Plot{{bars}, {matrix}}, tiles, dc)
		bars.Draw(canvases[0][0])
		matrix.Draw(canvases[1][0])
	})
}
