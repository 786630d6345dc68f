// Package hostresponse classifies host genes from a DESeq2 table, draws the
// volcano plot and runs over-representation and preranked GSEA.
package hostresponse

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/crimson-sun/pathobridge/internal/dge"
	"github.com/crimson-sun/pathobridge/internal/enrichment"
	"github.com/crimson-sun/pathobridge/internal/figure"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// Name is the stage and subcommand name.
const Name = "host-response"

const (
	figureDir  = "host_response"
	oraDir     = "enrichment_analysis"
	gseaReport = "gsea_analysis/gseapy.prerank.gene_sets.report"
)

func init() {
	stage.Register(Name, func(env *stage.Env) stage.Stage { return New(env) })
}

// Stage is the host-response step.
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
	path := cfg.Paths.DGEFile
	if err := stage.Require(path, "run the DESeq2 step (scripts/run_deseq2.R) first"); err != nil {
		return err
	}
	genes, err := dge.Load(path, true)
	if err != nil {
		return fmt.Errorf("hostresponse: %w", err)
	}
	slog.Info("DGE results loaded", "stage", Name, "path", path, "count", len(genes))

	hr := cfg.HostResponse
	dge.New(hr.PadjThreshold, hr.Log2FCThreshold).ClassifyAll(genes)

	labelled := dge.TopByPadj(genes, hr.PadjThreshold, hr.TopLabels)
	th := figure.VolcanoThresholds{Padj: hr.PadjThreshold, Log2FC: hr.Log2FCThreshold}
	if err := s.env.Figure(figureDir, "Fig1A_Volcano_Plot.png", func(p string) error {
		return figure.Volcano(p, genes, th, labelled, s.env.Figures)
	}); err != nil {
		return err
	}

	provider, err := s.provider()
	if err != nil {
		return err
	}
	if err := s.overRepresentation(ctx, provider, genes); err != nil {
		return err
	}
	return s.prerank(ctx, provider, genes)
}

func (s *Stage) provider() (enrichment.Provider, error) {
	ec := s.env.Config.Enrichment
	ctor, err := enrichment.Get(ec.Provider)
	if err != nil {
		return nil, fmt.Errorf("hostresponse: %w", err)
	}
	return ctor(enrichment.ProviderConfig{Dir: ec.GeneSetDir, URL: ec.EnrichrURL}), nil
}

func (s *Stage) overRepresentation(ctx context.Context, provider enrichment.Provider, genes []model.Gene) error {
	ec := s.env.Config.Enrichment
	up := dge.IDs(dge.Filter(genes, model.Upregulated))
	if len(up) <= s.env.Config.HostResponse.MinEnrichedGenes {
		slog.Info("not enough significant genes for enrichment analysis", "stage", Name, "count", len(up))
		return nil
	}

	var significant []model.EnrichmentTerm
	for _, name := range ec.Libraries {
		lib, err := provider.Library(ctx, name)
		if err != nil {
			return fmt.Errorf("hostresponse: library %s: %w", name, err)
		}
		terms := enrichment.OverRepresentation(up, lib)
		if err := s.env.WriteTable(ctx, enrichment.EnrichmentTable(filepath.Join(oraDir, name+".enrichr.reports"), terms)); err != nil {
			return err
		}
		significant = append(significant, enrichment.Significant(terms, ec.Cutoff)...)
	}

	if len(significant) == 0 {
		slog.Info("enrichment analysis did not yield significant results", "stage", Name)
		return nil
	}
	sort.SliceStable(significant, func(i, j int) bool { return significant[i].AdjustedP < significant[j].AdjustedP })
	if len(significant) > ec.TopTerms {
		significant = significant[:ec.TopTerms]
	}
	return s.env.Figure(figureDir, "Fig1B_Enrichment_Plot.png", func(p string) error {
		return figure.DotPlot(p, "Top Enriched Pathways in Upregulated Genes", significant, s.env.Figures)
	})
}

func (s *Stage) prerank(ctx context.Context, provider enrichment.Provider, genes []model.Gene) error {
	cfg := s.env.Config
	ec := cfg.Enrichment
	ranked := rankedList(genes)
	if len(ranked) == 0 {
		slog.Warn("could not generate ranked gene list for GSEA", "stage", Name)
		return nil
	}

	libs := make([]model.GeneSetLibrary, 0, len(ec.GSEALibraries))
	for _, name := range ec.GSEALibraries {
		lib, err := provider.Library(ctx, name)
		if err != nil {
			return fmt.Errorf("hostresponse: library %s: %w", name, err)
		}
		libs = append(libs, lib)
	}

	pr := enrichment.Prerank{
		MinSize:      ec.MinSize,
		MaxSize:      ec.MaxSize,
		Permutations: ec.Permutations,
		Seed:         cfg.Seed,
		Progress:     cfg.Output.Progress,
	}
	terms := pr.Run(ranked, merge(libs))
	if err := s.env.WriteTable(ctx, enrichment.GSEATable(gseaReport, terms)); err != nil {
		return err
	}
	if len(terms) == 0 {
		slog.Warn("no gene set passed the GSEA size filter", "stage", Name, "min", ec.MinSize, "max", ec.MaxSize)
		return nil
	}

	top := terms[0]
	slog.Info("GSEA top term", "stage", Name, "term", top.Term, "nes", top.NES, "fdr", top.FDR)
	return s.env.Figure(figureDir, CurveFile(top.Term), func(p string) error {
		return figure.GSEACurve(p, top, s.env.Figures)
	})
}

// CurveFile names the GSEA figure of a term.
func CurveFile(term string) string {
	return "Fig1C_GSEA_Plot_" + strings.NewReplacer(" ", "_", "/", "_").Replace(term) + ".png"
}

func rankedList(genes []model.Gene) []enrichment.RankedGene {
	sorted := dge.Ranked(genes)
	out := make([]enrichment.RankedGene, len(sorted))
	for i, g := range sorted {
		out[i] = enrichment.RankedGene{Gene: g.ID, Score: g.Log2FoldChange}
	}
	return out
}

// merge joins libraries for a single prerank run. Terms are prefixed with
// their library name when more than one library is given.
func merge(libs []model.GeneSetLibrary) model.GeneSetLibrary {
	if len(libs) == 1 {
		return libs[0]
	}
	var out model.GeneSetLibrary
	names := make([]string, len(libs))
	for i, l := range libs {
		names[i] = l.Name
		for _, set := range l.Sets {
			out.Sets = append(out.Sets, model.GeneSet{Term: l.Name + "__" + set.Term, Genes: set.Genes})
		}
	}
	out.Name = strings.Join(names, ",")
	return out
}
