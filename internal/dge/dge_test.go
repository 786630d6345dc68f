package dge

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/table"
)

func TestClassify(t *testing.T) {
	c := New(0.05, 1.0)
	tests := []struct {
		lfc, padj float64
		want      model.Regulation
	}{
		{2.0, 0.01, model.Upregulated},
		{-2.0, 0.01, model.Downregulated},
		{1.0, 0.01, model.NotSignificant},  // threshold is strict
		{-1.0, 0.01, model.NotSignificant}, // threshold is strict
		{3.0, 0.05, model.NotSignificant},  // padj must be strictly below
		{3.0, math.NaN(), model.NotSignificant},
		{0.1, 1e-50, model.NotSignificant},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.lfc, tt.padj); got != tt.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", tt.lfc, tt.padj, got, tt.want)
		}
	}
}

func writeDGE(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dge.csv")
	data := `,baseMean,log2FoldChange,lfcSE,stat,pvalue,padj
TNF,1200,4.2,0.3,14,1e-40,1e-38
IL6,800,3.1,0.4,7.75,1e-12,5e-11
CCL2,300,-2.5,0.4,-6,1e-8,1e-6
GAPDH,5000,0.01,0.1,0.1,0.9,NA
ACTB,4000,-0.2,0.1,-2,0.04,0.2
NA_LFC,10,NA,NA,NA,0.5,0.01
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDropNA(t *testing.T) {
	genes, err := Load(writeDGE(t), true)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(genes) != 4 {
		t.Fatalf("got %d genes, want 4", len(genes))
	}
	if genes[0].ID != "TNF" || genes[0].Log2FoldChange != 4.2 {
		t.Errorf("unexpected first gene: %+v", genes[0])
	}
}

func TestLoadKeepNA(t *testing.T) {
	genes, err := Load(writeDGE(t), false)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(genes) != 6 {
		t.Fatalf("got %d genes, want 6", len(genes))
	}
	if !math.IsNaN(genes[3].Padj) {
		t.Errorf("GAPDH padj should be NaN, got %v", genes[3].Padj)
	}

	sig := Significant(genes, 0.05)
	if got := IDs(sig); len(got) != 4 || got[3] != "NA_LFC" {
		t.Errorf("Significant = %v", got)
	}
}

func TestLoadMalformedNumber(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dge.csv")
	data := `,baseMean,log2FoldChange,padj
TNF,1200,4.2,1e-38
IL6,10,abc,0.01
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, dropNA := range []bool{true, false} {
		genes, err := Load(path, dropNA)
		if !errors.Is(err, table.ErrNotNumber) {
			t.Fatalf("Load(dropNA=%v) = %v, %v; want ErrNotNumber", dropNA, genes, err)
		}
		if !strings.Contains(err.Error(), "row 2") {
			t.Errorf("error should name the row: %v", err)
		}
	}
}

func TestClassifyAllAndFilter(t *testing.T) {
	genes, _ := Load(writeDGE(t), true)
	New(0.05, 1).ClassifyAll(genes)

	up := IDs(Filter(genes, model.Upregulated))
	if len(up) != 2 || up[0] != "TNF" || up[1] != "IL6" {
		t.Errorf("upregulated = %v", up)
	}
	down := IDs(Filter(genes, model.Downregulated))
	if len(down) != 1 || down[0] != "CCL2" {
		t.Errorf("downregulated = %v", down)
	}
}

func TestTopByPadj(t *testing.T) {
	genes, _ := Load(writeDGE(t), true)
	top := TopByPadj(genes, 0.05, 2)
	if len(top) != 2 || top[0].ID != "TNF" || top[1].ID != "IL6" {
		t.Errorf("TopByPadj = %v", IDs(top))
	}
}

func TestRanked(t *testing.T) {
	genes, _ := Load(writeDGE(t), false)
	r := Ranked(genes)
	if len(r) != 5 {
		t.Fatalf("got %d ranked genes, want 5", len(r))
	}
	for i := 1; i < len(r); i++ {
		if r[i].Log2FoldChange > r[i-1].Log2FoldChange {
			t.Fatalf("ranked list not descending at %d", i)
		}
	}
}

func TestNegLog10(t *testing.T) {
	if got := NegLog10(0.01); math.Abs(got-2) > 1e-12 {
		t.Errorf("NegLog10(0.01) = %v", got)
	}
	if got := NegLog10(0); math.IsInf(got, 0) || got < 300 {
		t.Errorf("NegLog10(0) = %v, want large finite", got)
	}
}
