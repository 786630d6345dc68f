// Package bridging links pathogen-specific metabolites to significant host
// genes and draws the resulting interaction network.
package bridging

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/pathobridge/internal/dge"
	"github.com/crimson-sun/pathobridge/internal/figure"
	"github.com/crimson-sun/pathobridge/internal/metabolite"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/pathway"
	"github.com/crimson-sun/pathobridge/internal/simulate"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// Name is the stage and subcommand name.
const Name = "bridging"

const (
	figureDir        = "bridging_analysis"
	interactionTable = "Table_S4_Predicted_Metabolite_Target_Interactions"
)

func init() {
	stage.Register(Name, func(env *stage.Env) stage.Stage { return New(env) })
}

// Stage is the bridging step.
type Stage struct {
	env *stage.Env
}

// New creates the stage.
func New(env *stage.Env) *Stage {
	return &Stage{env: env}
}

func (s *Stage) Name() string { return Name }

func (s *Stage) Run(ctx context.Context) error {
	cfg := s.env.Config
	p := cfg.Paths
	if err := stage.Require(p.DGEFile, "run the DESeq2 step (scripts/run_deseq2.R) first"); err != nil {
		return err
	}
	if err := stage.Require(p.PresenceTable, "run `pathobridge metabolism` first"); err != nil {
		return err
	}

	genes, err := dge.Load(p.DGEFile, false)
	if err != nil {
		return fmt.Errorf("bridging: %w", err)
	}
	sig := dge.Significant(genes, cfg.HostResponse.PadjThreshold)
	slog.Info("significant host genes", "stage", Name, "count", len(sig))

	m, err := metabolite.ReadPresence(p.PresenceTable)
	if err != nil {
		return fmt.Errorf("bridging: %w", err)
	}
	mc := cfg.Metabolism
	mets := metabolite.PathogenSpecific(m, mc.PathogenStrains, mc.CommensalStrain)
	slog.Info("pathogen-specific metabolites", "stage", Name, "count", len(mets))

	b := cfg.Bridging
	ids := dge.IDs(sig)
	pool := simulate.TargetPool(ids, b.TopSignificant, b.KeyGenes)
	if len(mets) > b.Metabolites {
		mets = mets[:b.Metabolites]
	}
	raw := simulate.Interactions(simulate.NewRand(cfg.Seed), mets, pool, simulate.InteractionSpec{
		MinTargets: b.MinTargets,
		MaxTargets: b.MaxTargets,
		MinScore:   b.MinScore,
		MaxScore:   b.MaxScore,
	})
	kept := simulate.KeepTargets(raw, ids)
	if err := s.env.WriteTable(ctx, InteractionTable(interactionTable, kept)); err != nil {
		return err
	}
	slog.Info("predicted interactions saved", "stage", Name, "count", len(kept))

	if len(kept) == 0 {
		slog.Warn("no interactions with significant genes, skipping network figures", "stage", Name)
		return nil
	}

	padj := make(map[string]float64, len(sig))
	for _, g := range sig {
		padj[g.ID] = g.Padj
	}
	nodes, edges := Graph(kept, padj)
	if err := s.env.Figure(figureDir, "Fig3B_Interaction_Network.png", func(path string) error {
		return figure.Network(path, "Predicted Interactions between S. pneumoniae Metabolites and Host Genes", nodes, edges, s.env.Figures)
	}); err != nil {
		return err
	}

	left, right, pairs := PathwayPairs(kept, pathway.DefaultGenePathways())
	return s.env.Figure(figureDir, "Fig3A_Metabolite_Pathway_Graph.png", func(path string) error {
		return figure.Bipartite(path, "Predicted Links between Metabolites and Host Pathways", left, right, pairs, s.env.Figures)
	})
}

// InteractionTable renders interactions as Metabolite,Target_Gene,Score.
func InteractionTable(name string, xs []model.Interaction) model.Table {
	t := model.Table{
		Name: name,
		Columns: []model.Column{
			{Name: "Metabolite", Kind: model.String},
			{Name: "Target_Gene", Kind: model.String},
			{Name: "Score", Kind: model.Float},
		},
	}
	for _, x := range xs {
		t.Rows = append(t.Rows, []any{x.Metabolite, x.TargetGene, x.Score})
	}
	return t
}

// Graph builds network nodes in order of first appearance. Genes are sized
// by -log10(padj).
func Graph(xs []model.Interaction, padj map[string]float64) ([]figure.Node, []figure.Edge) {
	index := map[string]int{}
	var nodes []figure.Node
	add := func(name string, met bool) int {
		if i, ok := index[name]; ok {
			return i
		}
		n := figure.Node{Name: name, Metabolite: met}
		if !met {
			n.Size = dge.NegLog10(padj[name])
		}
		index[name] = len(nodes)
		nodes = append(nodes, n)
		return index[name]
	}
	edges := make([]figure.Edge, 0, len(xs))
	for _, x := range xs {
		from := add(x.Metabolite, true)
		to := add(x.TargetGene, false)
		edges = append(edges, figure.Edge{From: from, To: to, Weight: x.Score})
	}
	return nodes, edges
}

// PathwayPairs maps interaction targets to pathways and returns the distinct
// metabolites, pathways and metabolite–pathway links in first-seen order.
func PathwayPairs(xs []model.Interaction, genes pathway.Mapping) (left, right []string, pairs [][2]int) {
	li, ri := map[string]int{}, map[string]int{}
	seen := map[[2]int]bool{}
	for _, x := range xs {
		l, ok := li[x.Metabolite]
		if !ok {
			l = len(left)
			li[x.Metabolite] = l
			left = append(left, x.Metabolite)
		}
		pw := genes.Lookup(x.TargetGene, pathway.Other)
		r, ok := ri[pw]
		if !ok {
			r = len(right)
			ri[pw] = r
			right = append(right, pw)
		}
		if k := [2]int{l, r}; !seen[k] {
			seen[k] = true
			pairs = append(pairs, k)
		}
	}
	return left, right, pairs
}
