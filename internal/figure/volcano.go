package figure

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/crimson-sun/pathobridge/internal/dge"
	"github.com/crimson-sun/pathobridge/internal/model"
)

// VolcanoThresholds are drawn as dashed guide lines.
type VolcanoThresholds struct {
	Padj   float64
	Log2FC float64
}

// Volcano plots log2 fold change against −log10(padj), coloured by
// regulation, and labels the given genes.
func Volcano(path string, genes []model.Gene, th VolcanoThresholds, labelled []model.Gene, opt Options) error {
	p := plot.New()
	p.Title.Text = "Volcano Plot: LPS vs Control"
	p.X.Label.Text = "log2(Fold Change)"
	p.Y.Label.Text = "-log10(Adjusted p-value)"

	groups := map[model.Regulation]plotter.XYs{}
	minX, maxX, maxY := math.Inf(1), math.Inf(-1), 0.0
	for _, g := range genes {
		y := dge.NegLog10(g.Padj)
		groups[g.Regulation] = append(groups[g.Regulation], plotter.XY{X: g.Log2FoldChange, Y: y})
		minX = math.Min(minX, g.Log2FoldChange)
		maxX = math.Max(maxX, g.Log2FoldChange)
		maxY = math.Max(maxY, y)
	}
	if len(genes) == 0 {
		minX, maxX, maxY = -1, 1, 1
	}
	minX = math.Min(minX, -th.Log2FC) - 0.5
	maxX = math.Max(maxX, th.Log2FC) + 0.5

	for _, r := range []model.Regulation{model.NotSignificant, model.Upregulated, model.Downregulated} {
		xys := groups[r]
		if len(xys) == 0 {
			continue
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return err
		}
		s.GlyphStyle = draw.GlyphStyle{Color: regulationColor(r), Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		p.Add(s)
		p.Legend.Add(r.String(), s)
	}

	yThr := dge.NegLog10(th.Padj)
	for _, seg := range []plotter.XYs{
		{{X: minX, Y: yThr}, {X: maxX, Y: yThr}},
		{{X: -th.Log2FC, Y: 0}, {X: -th.Log2FC, Y: maxY}},
		{{X: th.Log2FC, Y: 0}, {X: th.Log2FC, Y: maxY}},
	} {
		if err := addDashed(p, seg); err != nil {
			return err
		}
	}

	if len(labelled) > 0 {
		lbl := plotter.XYLabels{}
		for _, g := range labelled {
			lbl.XYs = append(lbl.XYs, plotter.XY{X: g.Log2FoldChange, Y: dge.NegLog10(g.Padj)})
			lbl.Labels = append(lbl.Labels, g.ID)
		}
		labels, err := plotter.NewLabels(lbl)
		if err != nil {
			return err
		}
		labels.Offset = vg.Point{X: vg.Points(3), Y: vg.Points(3)}
		p.Add(labels)
	}

	p.X.Min, p.X.Max = minX, maxX
	p.Legend.Top = true
	return Save(p, 10*vg.Inch, 8*vg.Inch, path, opt)
}

func regulationColor(r model.Regulation) color.Color {
	switch r {
	case model.Upregulated:
		return Red
	case model.Downregulated:
		return Blue
	}
	return Grey
}

func addDashed(p *plot.Plot, xys plotter.XYs) error {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	l.LineStyle.Color = Dark
	l.LineStyle.Width = vg.Points(0.8)
	l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	p.Add(l)
	return nil
}
