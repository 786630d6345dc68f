package figure

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/crimson-sun/pathobridge/internal/dge"
	"github.com/crimson-sun/pathobridge/internal/model"
)

// DotPlot draws enrichment terms top to bottom with x = −log10(adjusted p)
// and dot size proportional to the overlap ratio. Dots are coloured by
// library.
func DotPlot(path, title string, terms []model.EnrichmentTerm, opt Options) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "-log10(Adjusted P-value)"

	n := len(terms)
	names := make([]string, n)
	libIndex := map[string]int{}
	byLib := map[string]plotter.XYs{}
	ratios := map[string][]float64{}
	var libs []string
	for i, t := range terms {
		// first term at the top
		y := float64(n - 1 - i)
		names[n-1-i] = t.Term
		if _, ok := libIndex[t.Library]; !ok {
			libIndex[t.Library] = len(libs)
			libs = append(libs, t.Library)
		}
		byLib[t.Library] = append(byLib[t.Library], plotter.XY{X: dge.NegLog10(t.AdjustedP), Y: y})
		ratio := 0.0
		if t.TermSize > 0 {
			ratio = float64(t.Overlap) / float64(t.TermSize)
		}
		ratios[t.Library] = append(ratios[t.Library], ratio)
	}

	for _, lib := range libs {
		s, err := plotter.NewScatter(byLib[lib])
		if err != nil {
			return err
		}
		c := plotutil.Color(libIndex[lib])
		r := ratios[lib]
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{Color: c, Shape: draw.CircleGlyph{}, Radius: vg.Points(3 + 9*math.Sqrt(r[i]))}
		}
		p.Add(s)
		p.Legend.Add(lib, s)
	}
	p.NominalY(names...)
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	h := vg.Length(math.Max(4, 0.35*float64(n)+1.5)) * vg.Inch
	return Save(p, 10*vg.Inch, h, path, opt)
}

// GSEACurve draws the running enrichment score of a term with a tick for
// every member of the set along the ranked list.
func GSEACurve(path string, term model.GSEATerm, opt Options) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s\nNES=%.3f  FDR=%.3g", term.Term, term.NES, term.FDR)
	p.X.Label.Text = "Rank in Ordered Dataset"
	p.Y.Label.Text = "Enrichment Score"

	curve := make(plotter.XYs, len(term.Running))
	lo, hi := 0.0, 0.0
	for i, v := range term.Running {
		curve[i] = plotter.XY{X: float64(i), Y: v}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if len(curve) > 0 {
		l, err := plotter.NewLine(curve)
		if err != nil {
			return err
		}
		l.LineStyle.Color = color.RGBA{G: 160, A: 255}
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		if err := addDashed(p, plotter.XYs{{X: 0, Y: 0}, {X: float64(len(curve) - 1), Y: 0}}); err != nil {
			return err
		}
	}

	span := math.Max(hi-lo, 0.1)
	top, bottom := lo-0.05*span, lo-0.2*span
	for _, h := range term.Hits {
		tick, err := plotter.NewLine(plotter.XYs{{X: float64(h), Y: bottom}, {X: float64(h), Y: top}})
		if err != nil {
			return err
		}
		tick.LineStyle.Color = Dark
		tick.LineStyle.Width = vg.Points(0.5)
		p.Add(tick)
	}
	p.Y.Min = bottom - 0.05*span
	return Save(p, 8*vg.Inch, 6*vg.Inch, path, opt)
}
