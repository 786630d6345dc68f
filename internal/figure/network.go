package figure

import (
	"math"

	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Node is a vertex of an interaction network.
type Node struct {
	Name       string
	Metabolite bool
	Size       float64 // relative glyph size, genes only
}

// Edge joins two nodes by index.
type Edge struct {
	From, To int
	Weight   float64
}

// Layout places nodes with the Eades spring embedder.
func Layout(nodes []Node, edges []Edge) []r2.Vec {
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range nodes {
		g.AddNode(simple.Node(i))
	}
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), e.Weight))
	}

	eades := &layout.EadesR2{Repulsion: 1, Rate: 0.05, Updates: 60, Theta: 0.2}
	o := layout.NewOptimizerR2(g, eades.Update)
	for o.Update() {
	}

	pos := make([]r2.Vec, len(nodes))
	for i := range nodes {
		pos[i] = o.Coord2(int64(i))
	}
	return pos
}

// Network draws metabolites (red, large) and genes (sky blue, sized by
// Size) joined by edges whose width follows the edge weight.
func Network(path, title string, nodes []Node, edges []Edge, opt Options) error {
	pos := Layout(nodes, edges)

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()

	for _, e := range edges {
		l, err := plotter.NewLine(plotter.XYs{
			{X: pos[e.From].X, Y: pos[e.From].Y},
			{X: pos[e.To].X, Y: pos[e.To].Y},
		})
		if err != nil {
			return err
		}
		l.LineStyle.Color = Grey
		l.LineStyle.Width = vg.Points(0.5 + 4*e.Weight)
		p.Add(l)
	}
	if err := addNodes(p, nodes, pos); err != nil {
		return err
	}
	padAxes(p, pos)
	return Save(p, 12*vg.Inch, 12*vg.Inch, path, opt)
}

func addNodes(p *plot.Plot, nodes []Node, pos []r2.Vec) error {
	if len(nodes) == 0 {
		return nil
	}
	xys := make(plotter.XYs, len(nodes))
	lbl := plotter.XYLabels{}
	for i, n := range nodes {
		xys[i] = plotter.XY{X: pos[i].X, Y: pos[i].Y}
		lbl.XYs = append(lbl.XYs, xys[i])
		lbl.Labels = append(lbl.Labels, n.Name)
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		if nodes[i].Metabolite {
			return draw.GlyphStyle{Color: Red, Shape: draw.CircleGlyph{}, Radius: vg.Points(14)}
		}
		return draw.GlyphStyle{Color: SkyBlue, Shape: draw.CircleGlyph{}, Radius: vg.Points(4 + 2*math.Min(nodes[i].Size, 10))}
	}
	p.Add(s)
	labels, err := plotter.NewLabels(lbl)
	if err != nil {
		return err
	}
	p.Add(labels)
	return nil
}

func padAxes(p *plot.Plot, pos []r2.Vec) {
	if len(pos) == 0 {
		return
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, v := range pos {
		minX, maxX = math.Min(minX, v.X), math.Max(maxX, v.X)
		minY, maxY = math.Min(minY, v.Y), math.Max(maxY, v.Y)
	}
	dx := math.Max(maxX-minX, 1) * 0.15
	dy := math.Max(maxY-minY, 1) * 0.15
	p.X.Min, p.X.Max = minX-dx, maxX+dx
	p.Y.Min, p.Y.Max = minY-dy, maxY+dy
}

// Bipartite draws left-column nodes joined to right-column nodes.
// Pairs index into left and right.
func Bipartite(path, title string, left, right []string, pairs [][2]int, opt Options) error {
	nodes := make([]Node, 0, len(left)+len(right))
	pos := make([]r2.Vec, 0, len(left)+len(right))
	for i, name := range left {
		nodes = append(nodes, Node{Name: name, Metabolite: true})
		pos = append(pos, r2.Vec{X: 0, Y: column(i, len(left))})
	}
	for i, name := range right {
		nodes = append(nodes, Node{Name: name, Size: 3})
		pos = append(pos, r2.Vec{X: 1, Y: column(i, len(right))})
	}

	p := plot.New()
	p.Title.Text = title
	p.HideAxes()
	for _, pr := range pairs {
		a, b := pos[pr[0]], pos[len(left)+pr[1]]
		l, err := plotter.NewLine(plotter.XYs{{X: a.X, Y: a.Y}, {X: b.X, Y: b.Y}})
		if err != nil {
			return err
		}
		l.LineStyle.Color = Grey
		l.LineStyle.Width = vg.Points(1)
		p.Add(l)
	}
	if err := addNodes(p, nodes, pos); err != nil {
		return err
	}
	padAxes(p, pos)
	return Save(p, 12*vg.Inch, 8*vg.Inch, path, opt)
}

// column spreads n nodes evenly over [0,1], top to bottom.
func column(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return 1 - float64(i)/float64(n-1)
}
