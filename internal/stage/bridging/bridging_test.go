package bridging

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/crimson-sun/pathobridge/internal/config"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output/file"
	"github.com/crimson-sun/pathobridge/internal/pathway"
	"github.com/crimson-sun/pathobridge/internal/stage"
	"github.com/crimson-sun/pathobridge/internal/stage/metabolism"
	"github.com/crimson-sun/pathobridge/internal/testdata"
)

func setup(t *testing.T) *stage.Env {
	t.Helper()
	dir := t.TempDir()
	if err := testdata.Materialize(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATHOBRIDGE_ROOT", dir)
	t.Setenv("PATHOBRIDGE_FIGURE_DPI", "40")
	cfg := config.Load()
	env := stage.NewEnv(cfg, file.New(cfg.Paths.TablesDir))
	if err := metabolism.New(env).Run(context.Background()); err != nil {
		t.Fatalf("metabolism: %v", err)
	}
	return env
}

func readInteractions(t *testing.T, path string) []model.Interaction {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var xs []model.Interaction
	if err := gocsv.UnmarshalFile(f, &xs); err != nil {
		t.Fatalf("unmarshal %s: %v", path, err)
	}
	return xs
}

func TestRun(t *testing.T) {
	env := setup(t)
	if err := New(env).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	xs := readInteractions(t, env.Config.Paths.InteractionTbl)
	if len(xs) == 0 {
		t.Fatal("no interactions written")
	}
	significant := map[string]bool{
		"NFKB1": true, "TNF": true, "IL6": true, "JUN": true, "FOS": true,
		"TLR2": true, "MYD88": true, "CXCL8": true, "IL1B": true, "CCL2": true,
	}
	targets := map[string]map[string]bool{}
	for _, x := range xs {
		if !significant[x.TargetGene] {
			t.Errorf("target %s is outside the target pool", x.TargetGene)
		}
		if x.Score < 0.4 || x.Score >= 0.9 {
			t.Errorf("score %v outside [0.4, 0.9)", x.Score)
		}
		if targets[x.Metabolite] == nil {
			targets[x.Metabolite] = map[string]bool{}
		}
		if targets[x.Metabolite][x.TargetGene] {
			t.Errorf("%s targets %s twice", x.Metabolite, x.TargetGene)
		}
		targets[x.Metabolite][x.TargetGene] = true
	}
	if len(targets) != len(testdata.PathogenSpecific) {
		t.Errorf("got %d metabolites, want %d", len(targets), len(testdata.PathogenSpecific))
	}
	for m, ts := range targets {
		if len(ts) < 2 || len(ts) > 5 {
			t.Errorf("%s has %d targets, want 2-5", m, len(ts))
		}
	}

	for _, name := range []string{"Fig3A_Metabolite_Pathway_Graph.png", "Fig3B_Interaction_Network.png"} {
		if _, err := os.Stat(filepath.Join(env.Config.FigureDir(figureDir), name)); err != nil {
			t.Errorf("missing figure %s: %v", name, err)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	env := setup(t)
	read := func() []byte {
		if err := New(env).Run(context.Background()); err != nil {
			t.Fatalf("Run() error: %v", err)
		}
		b, err := os.ReadFile(env.Config.Paths.InteractionTbl)
		if err != nil {
			t.Fatal(err)
		}
		return b
	}
	if first, second := read(), read(); !bytes.Equal(first, second) {
		t.Errorf("interaction table differs between runs:\n%s\n%s", first, second)
	}
}

func TestRunNoSurvivingInteractions(t *testing.T) {
	env := setup(t)
	env.Config.Bridging.TopSignificant = 0
	env.Config.Bridging.KeyGenes = []string{"NOT_A_GENE"}
	if err := New(env).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	b, err := os.ReadFile(env.Config.Paths.InteractionTbl)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Metabolite,Target_Gene,Score\n" {
		t.Errorf("interaction table = %q, want header only", b)
	}
	if _, err := os.Stat(filepath.Join(env.Config.FigureDir(figureDir), "Fig3B_Interaction_Network.png")); !os.IsNotExist(err) {
		t.Errorf("network drawn without interactions: %v", err)
	}
}

func TestRunMissingPresenceTable(t *testing.T) {
	env := setup(t)
	if err := os.Remove(env.Config.Paths.PresenceTable); err != nil {
		t.Fatal(err)
	}
	err := New(env).Run(context.Background())
	if !errors.Is(err, stage.ErrMissingInput) {
		t.Fatalf("Run() error = %v, want ErrMissingInput", err)
	}
}

func TestGraph(t *testing.T) {
	xs := []model.Interaction{
		{Metabolite: "ToxinA", TargetGene: "TNF", Score: 0.5},
		{Metabolite: "ToxinA", TargetGene: "IL6", Score: 0.6},
		{Metabolite: "Choline", TargetGene: "TNF", Score: 0.7},
	}
	nodes, edges := Graph(xs, map[string]float64{"TNF": 1e-10, "IL6": 0.01})
	if len(nodes) != 4 || len(edges) != 3 {
		t.Fatalf("got %d nodes, %d edges", len(nodes), len(edges))
	}
	if !nodes[0].Metabolite || nodes[1].Metabolite {
		t.Errorf("node kinds = %+v", nodes)
	}
	if math.Abs(nodes[1].Size-10) > 1e-9 {
		t.Errorf("TNF size = %v, want 10", nodes[1].Size)
	}
	if edges[2].From != 3 || edges[2].To != 1 {
		t.Errorf("edge = %+v", edges[2])
	}
}

func TestPathwayPairs(t *testing.T) {
	xs := []model.Interaction{
		{Metabolite: "ToxinA", TargetGene: "NFKB1"},
		{Metabolite: "ToxinA", TargetGene: "TNF"},
		{Metabolite: "ToxinA", TargetGene: "MYD88"},
		{Metabolite: "Choline", TargetGene: "JUN"},
	}
	left, right, pairs := PathwayPairs(xs, pathway.DefaultGenePathways())
	if len(left) != 2 || len(right) != 3 || len(pairs) != 3 {
		t.Fatalf("left=%v right=%v pairs=%v", left, right, pairs)
	}
	if right[1] != pathway.Other {
		t.Errorf("right = %v", right)
	}
}
