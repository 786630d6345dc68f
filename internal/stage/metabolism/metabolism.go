// Package metabolism compares the metabolite repertoires of the pathogen and
// commensal strains and writes the presence/absence table the downstream
// stages read.
package metabolism

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/pathobridge/internal/figure"
	"github.com/crimson-sun/pathobridge/internal/metabolite"
	"github.com/crimson-sun/pathobridge/internal/pathway"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// Name is the stage and subcommand name.
const Name = "metabolism"

const (
	figureDir     = "bacterial_metabolism"
	presenceTable = "Table_S3_Combined_Metabolite_Presence_Absence"
	pathwayTable  = "Pathway_Presence_By_Strain"
)

func init() {
	stage.Register(Name, func(env *stage.Env) stage.Stage { return New(env) })
}

// Stage is the metabolism comparison step.
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
	sets, err := metabolite.LoadSets(cfg.Paths.ModelsDir, cfg.Metabolism.Strains)
	if err != nil {
		return fmt.Errorf("metabolism: %w", err)
	}
	m := metabolite.Presence(sets)
	slog.Info("presence matrix built", "stage", Name, "count", len(m.Metabolites), "strains", len(m.Strains))

	xs := metabolite.Intersections(m)
	if err := s.env.Figure(figureDir, "Fig2A_Metabolite_Upset_Plot.png", func(p string) error {
		return figure.UpSet(p, "Metabolite Overlap Between Strains", m.Strains, xs, s.env.Figures)
	}); err != nil {
		return err
	}

	mapping, err := s.mapping()
	if err != nil {
		return err
	}
	pw := pathway.StrainPresence(sets, mapping)
	if err := s.env.Figure(figureDir, "Fig2B_Pathway_Heatmap.png", func(p string) error {
		return figure.Heatmap(p, "Presence of Key Metabolic Pathways Across Strains", pw.Pathways, pw.Strains, pw.Values, s.env.Figures)
	}); err != nil {
		return err
	}
	if err := s.env.WriteTable(ctx, pw.Table(pathwayTable)); err != nil {
		return err
	}

	return s.env.WriteTable(ctx, metabolite.PresenceTable(presenceTable, m))
}

func (s *Stage) mapping() (pathway.Mapping, error) {
	path := s.env.Config.Metabolism.PathwayMap
	if path == "" {
		return pathway.DefaultMetabolitePathways(), nil
	}
	if err := stage.Require(path, "unset PATHOBRIDGE_PATHWAY_MAP to use the built-in mapping"); err != nil {
		return nil, err
	}
	m, err := pathway.LoadMapping(path)
	if err != nil {
		return nil, fmt.Errorf("metabolism: %w", err)
	}
	slog.Info("pathway mapping loaded", "stage", Name, "path", path, "count", len(m))
	return m, nil
}
