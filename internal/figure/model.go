package figure

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ROC draws a receiver operating characteristic curve with the chance
// diagonal.
func ROC(path string, fpr, tpr []float64, auc float64, opt Options) error {
	p := plot.New()
	p.Title.Text = "Receiver Operating Characteristic"
	p.X.Label.Text = "False Positive Rate"
	p.Y.Label.Text = "True Positive Rate"
	p.X.Min, p.X.Max = 0, 1
	p.Y.Min, p.Y.Max = 0, 1.05

	xys := make(plotter.XYs, len(fpr))
	for i := range fpr {
		xys[i] = plotter.XY{X: fpr[i], Y: tpr[i]}
	}
	if len(xys) > 0 {
		l, err := plotter.NewLine(xys)
		if err != nil {
			return err
		}
		l.LineStyle.Color = Red
		l.LineStyle.Width = vg.Points(2)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("ROC curve (area = %.2f)", auc), l)
	}
	if err := addDashed(p, plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}}); err != nil {
		return err
	}
	p.Legend.Left = true
	return Save(p, 8*vg.Inch, 6*vg.Inch, path, opt)
}

// Importance draws horizontal bars with the first label at the top.
func Importance(path, title string, labels []string, values []float64, opt Options) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Importance"

	n := len(values)
	vs := make(plotter.Values, n)
	names := make([]string, n)
	for i := range values {
		vs[n-1-i] = values[i]
		names[n-1-i] = labels[i]
	}
	if n > 0 {
		b, err := plotter.NewBarChart(vs, vg.Points(10))
		if err != nil {
			return err
		}
		b.Horizontal = true
		b.Color = Blue
		p.Add(b)
	}
	p.NominalY(names...)
	return Save(p, 10*vg.Inch, 8*vg.Inch, path, opt)
}
