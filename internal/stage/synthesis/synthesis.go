// Package synthesis combines the evidence of the earlier stages into a
// normalized composite ranking of candidate metabolites.
package synthesis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/crimson-sun/pathobridge/internal/docking"
	"github.com/crimson-sun/pathobridge/internal/figure"
	"github.com/crimson-sun/pathobridge/internal/metabolite"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// Name is the stage and subcommand name.
const Name = "synthesis"

const (
	figureDir    = "final_synthesis"
	rankingTable = "Table_S6_Final_Candidate_Ranking"
)

func init() {
	stage.Register(Name, func(env *stage.Env) stage.Stage { return New(env) })
}

// Stage is the final synthesis step.
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
	for _, in := range []struct{ path, hint string }{
		{p.PresenceTable, "run `pathobridge metabolism` first"},
		{p.InteractionTbl, "run `pathobridge bridging` first"},
		{p.PredictionTbl, "run `pathobridge predict` first"},
	} {
		if err := stage.Require(in.path, in.hint); err != nil {
			return err
		}
	}

	m, err := metabolite.ReadPresence(p.PresenceTable)
	if err != nil {
		return fmt.Errorf("synthesis: %w", err)
	}
	var xs []model.Interaction
	if err := readCSV(p.InteractionTbl, &xs); err != nil {
		return err
	}
	var preds []model.Prediction
	if err := readCSV(p.PredictionTbl, &preds); err != nil {
		return err
	}
	slog.Info("evidence loaded", "stage", Name, "interactions", len(xs), "predictions", len(preds))

	ev := Evidence{
		Presence:     m,
		Pathogens:    cfg.Metabolism.PathogenStrains,
		Commensal:    cfg.Metabolism.CommensalStrain,
		Interactions: xs,
		Predictions:  preds,
		MLScale:      cfg.Synthesis.MLScale,
		Docking: func(met string) (float64, error) {
			return docking.Affinity(p.DockingDir, met)
		},
	}
	rs, err := ev.Rank()
	if err != nil {
		return err
	}
	if err := s.env.WriteTable(ctx, RankingTable(rankingTable, rs)); err != nil {
		return err
	}

	top := rs[:min(len(rs), cfg.Synthesis.TopCandidates)]
	if len(top) == 0 {
		slog.Warn("no candidate metabolites, skipping radar plot", "stage", Name)
		return nil
	}
	series := make([]figure.Series, len(top))
	for i, r := range top {
		series[i] = figure.Series{Name: r.Metabolite, Values: r.Metrics()}
		slog.Info("ranked candidate", "stage", Name, "rank", i+1, "metabolite", r.Metabolite, "score", r.Composite)
	}
	return s.env.Figure(figureDir, "Fig6_Final_Ranking_Radar_Plot.png", func(path string) error {
		return figure.Radar(path, "Multi-dimensional Ranking of Top Candidate Metabolites", model.MetricNames, series, s.env.Figures)
	})
}

func readCSV(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("synthesis: open %s: %w", path, err)
	}
	defer f.Close()
	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("synthesis: read %s: %w", path, err)
	}
	return nil
}

// Evidence gathers the inputs of the ranking.
type Evidence struct {
	Presence     model.PresenceMatrix
	Pathogens    []string
	Commensal    string
	Interactions []model.Interaction
	Predictions  []model.Prediction
	MLScale      float64
	Docking      func(metabolite string) (float64, error)
}

// Rank scores every metabolite present in a pathogen strain, normalizes
// each metric by its maximum and sorts by composite score, highest first.
func (e Evidence) Rank() ([]model.Ranking, error) {
	impact := make(map[string]int)
	for _, x := range e.Interactions {
		impact[x.Metabolite]++
	}
	ml := make(map[string]float64, len(e.Predictions))
	for _, p := range e.Predictions {
		if _, dup := ml[p.Metabolite]; !dup {
			ml[p.Metabolite] = p.Score
		}
	}
	c := e.Presence.Column(e.Commensal)

	var rs []model.Ranking
	for i, met := range e.Presence.Metabolites {
		n := e.Presence.Count(i, e.Pathogens)
		if n == 0 {
			continue
		}
		spec := float64(n)
		if c < 0 || e.Presence.Values[i][c] == 0 {
			spec++
		}
		aff := 0.0
		if e.Docking != nil {
			var err error
			if aff, err = e.Docking(met); err != nil {
				return nil, fmt.Errorf("synthesis: docking %s: %w", met, err)
			}
		}
		rs = append(rs, model.Ranking{
			Metabolite:      met,
			Specificity:     spec,
			TargetImpact:    float64(impact[met]),
			MLScore:         ml[met] * e.MLScale,
			DockingAffinity: aff,
		})
	}

	Normalize(rs)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].Composite > rs[j].Composite })
	return rs, nil
}

// Normalize divides each metric by its column maximum when that maximum is
// positive and sets the composite to the sum of the metrics.
func Normalize(rs []model.Ranking) {
	fields := func(r *model.Ranking) []*float64 {
		return []*float64{&r.Specificity, &r.TargetImpact, &r.MLScore, &r.DockingAffinity}
	}
	for k := range model.MetricNames {
		hi := 0.0
		for i := range rs {
			hi = math.Max(hi, *fields(&rs[i])[k])
		}
		if hi <= 0 {
			continue
		}
		for i := range rs {
			*fields(&rs[i])[k] /= hi
		}
	}
	for i := range rs {
		rs[i].Composite = 0
		for _, v := range rs[i].Metrics() {
			rs[i].Composite += v
		}
	}
}

// RankingTable renders the ranking indexed by metabolite.
func RankingTable(name string, rs []model.Ranking) model.Table {
	cols := []model.Column{{Name: "Metabolite", Kind: model.String}}
	for _, n := range model.MetricNames {
		cols = append(cols, model.Column{Name: n, Kind: model.Float})
	}
	cols = append(cols, model.Column{Name: "Composite_Score", Kind: model.Float})

	t := model.Table{Name: name, Columns: cols}
	for _, r := range rs {
		row := []any{r.Metabolite}
		for _, v := range r.Metrics() {
			row = append(row, v)
		}
		t.Rows = append(t.Rows, append(row, r.Composite))
	}
	return t
}
