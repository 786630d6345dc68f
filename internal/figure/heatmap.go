package figure

import (
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// grid adapts a row-major integer matrix to plotter.GridXYZ with columns on
// the x axis.
type grid struct {
	values [][]int
	cols   int
}

func (g grid) Dims() (c, r int)   { return g.cols, len(g.values) }
func (g grid) Z(c, r int) float64 { return float64(g.values[r][c]) }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// Heatmap draws a 0/1 matrix with every cell annotated.
func Heatmap(path, title string, rows, cols []string, values [][]int, opt Options) error {
	p := plot.New()
	p.Title.Text = title
	if len(rows) > 0 && len(cols) > 0 {
		hm := plotter.NewHeatMap(grid{values: values, cols: len(cols)}, palette.Heat(12, 1))
		hm.Min, hm.Max = 0, 1
		p.Add(hm)

		lbl := plotter.XYLabels{}
		for r := range rows {
			for c := range cols {
				lbl.XYs = append(lbl.XYs, plotter.XY{X: float64(c), Y: float64(r)})
				lbl.Labels = append(lbl.Labels, strconv.Itoa(values[r][c]))
			}
		}
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return err
		}
		p.Add(labels)
	}
	p.NominalX(cols...)
	p.NominalY(rows...)
	h := vg.Length(3+0.5*float64(len(rows))) * vg.Inch
	return Save(p, 10*vg.Inch, h, path, opt)
}
