package hostresponse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/crimson-sun/pathobridge/internal/config"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output/file"
	"github.com/crimson-sun/pathobridge/internal/stage"
	"github.com/crimson-sun/pathobridge/internal/table"
	"github.com/crimson-sun/pathobridge/internal/testdata"
)

func setup(t *testing.T) *stage.Env {
	t.Helper()
	dir := t.TempDir()
	if err := testdata.Materialize(dir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATHOBRIDGE_ROOT", dir)
	t.Setenv("PATHOBRIDGE_ENRICHMENT_PROVIDER", "gmt")
	t.Setenv("PATHOBRIDGE_FIGURE_DPI", "40")
	t.Setenv("PATHOBRIDGE_GSEA_PERMUTATIONS", "20")
	cfg := config.Load()
	return stage.NewEnv(cfg, file.New(cfg.Paths.TablesDir))
}

func TestRun(t *testing.T) {
	env := setup(t)
	if err := New(env).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	figs := env.Config.FigureDir(figureDir)
	for _, name := range []string{"Fig1A_Volcano_Plot.png", "Fig1B_Enrichment_Plot.png"} {
		if _, err := os.Stat(filepath.Join(figs, name)); err != nil {
			t.Errorf("missing figure %s: %v", name, err)
		}
	}
	curves, _ := filepath.Glob(filepath.Join(figs, "Fig1C_GSEA_Plot_*.png"))
	if len(curves) != 1 {
		t.Errorf("got %d GSEA figures, want 1", len(curves))
	}

	for _, lib := range env.Config.Enrichment.Libraries {
		path := filepath.Join(env.Config.Paths.TablesDir, oraDir, lib+".enrichr.reports.csv")
		f, err := table.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", lib, err)
		}
		if len(f.Rows) == 0 {
			t.Errorf("%s: no enrichment terms", lib)
		}
	}

	report, err := table.ReadFile(filepath.Join(env.Config.Paths.TablesDir, gseaReport+".csv"))
	if err != nil {
		t.Fatalf("read GSEA report: %v", err)
	}
	if len(report.Rows) != 5 {
		t.Errorf("GSEA report has %d rows, want 5", len(report.Rows))
	}
	if len(env.TakeArtifacts()) < 6 {
		t.Error("expected tables and figures to be recorded")
	}
}

func TestRunTooFewGenesSkipsEnrichment(t *testing.T) {
	env := setup(t)
	env.Config.HostResponse.MinEnrichedGenes = 100
	if err := New(env).Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.Config.Paths.TablesDir, oraDir)); !os.IsNotExist(err) {
		t.Errorf("enrichment tables written despite too few genes: %v", err)
	}
	if _, err := os.Stat(filepath.Join(env.Config.FigureDir(figureDir), "Fig1A_Volcano_Plot.png")); err != nil {
		t.Errorf("volcano plot missing: %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	env := setup(t)
	env.Config.Paths.DGEFile = filepath.Join(t.TempDir(), "absent.csv")
	err := New(env).Run(context.Background())
	if !errors.Is(err, stage.ErrMissingInput) {
		t.Fatalf("Run() error = %v, want ErrMissingInput", err)
	}
	if stage.Hint(err) == "" {
		t.Error("missing input error carries no hint")
	}
}

func TestCurveFile(t *testing.T) {
	got := CurveFile("NF-kappa B signaling/pathway")
	if want := "Fig1C_GSEA_Plot_NF-kappa_B_signaling_pathway.png"; got != want {
		t.Errorf("CurveFile() = %q, want %q", got, want)
	}
}

func TestMerge(t *testing.T) {
	a := model.GeneSetLibrary{Name: "A", Sets: []model.GeneSet{{Term: "x", Genes: []string{"G1"}}}}
	b := model.GeneSetLibrary{Name: "B", Sets: []model.GeneSet{{Term: "y", Genes: []string{"G2"}}}}

	if got := merge([]model.GeneSetLibrary{a}); got.Sets[0].Term != "x" {
		t.Errorf("single library renamed: %+v", got)
	}
	got := merge([]model.GeneSetLibrary{a, b})
	if len(got.Sets) != 2 || got.Sets[0].Term != "A__x" || got.Sets[1].Term != "B__y" {
		t.Errorf("merge() = %+v", got)
	}
}
