package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/crimson-sun/pathobridge/internal/model"
)

func testTable(name string) model.Table {
	return model.Table{
		Name: name,
		Columns: []model.Column{
			{Name: "Metabolite", Kind: model.String},
			{Name: "Immunomodulatory_Score", Kind: model.Float},
			{Name: "Count", Kind: model.Int},
		},
		Rows: [][]any{
			{"ToxinA", 0.87, 3},
			{"Pyruvate, sodium", 0.25, 1},
		},
	}
}

func TestWriteProducesCSV(t *testing.T) {
	dir := t.TempDir()
	out := New(dir)
	if err := out.Write(context.Background(), testTable("Table_S5_ML_Prediction_Scores")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	out.Close()

	data, err := os.ReadFile(filepath.Join(dir, "Table_S5_ML_Prediction_Scores.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Metabolite,Immunomodulatory_Score,Count\nToxinA,0.87,3\n\"Pyruvate, sodium\",0.25,1\n"
	if string(data) != want {
		t.Fatalf("got %q, want %q", data, want)
	}
}

func TestWriteCreatesNestedDirs(t *testing.T) {
	dir := t.TempDir()
	out := New(dir)
	if err := out.Write(context.Background(), testTable("gsea_analysis/report")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "gsea_analysis", "report.csv")); err != nil {
		t.Fatalf("nested file missing: %v", err)
	}
}

func TestWriteReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	out := New(dir)
	tbl := testTable("t")
	out.Write(context.Background(), tbl)
	tbl.Rows = tbl.Rows[:1]
	out.Write(context.Background(), tbl)

	data, _ := os.ReadFile(out.Path("t"))
	if string(data) != "Metabolite,Immunomodulatory_Score,Count\nToxinA,0.87,3\n" {
		t.Fatalf("file not replaced: %q", data)
	}
}

func TestWithCommaTab(t *testing.T) {
	dir := t.TempDir()
	out := New(dir, WithComma('\t'))
	out.Write(context.Background(), testTable("t"))
	if got := out.Locate("t"); len(got) != 1 || filepath.Ext(got[0]) != ".tsv" {
		t.Fatalf("Locate = %v", got)
	}
	data, _ := os.ReadFile(filepath.Join(dir, "t.tsv"))
	if len(data) == 0 || data[10] != '\t' {
		t.Fatalf("expected tab delimited output, got %q", data)
	}
}

func TestConcurrentWritesSafe(t *testing.T) {
	dir := t.TempDir()
	out := New(dir)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := out.Write(context.Background(), testTable("shared")); err != nil {
				t.Errorf("Write error: %v", err)
			}
		}()
	}
	wg.Wait()
	data, _ := os.ReadFile(out.Path("shared"))
	if len(data) == 0 {
		t.Fatal("empty output after concurrent writes")
	}
}
