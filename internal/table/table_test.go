package table

import (
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const dgeCSV = `,baseMean,log2FoldChange,lfcSE,stat,pvalue,padj
TNF,1200.5,4.2,0.3,14,1e-40,1e-38
IL6,800,3.1,0.4,7.75,1e-12,5e-11
GAPDH,5000,0.01,0.1,0.1,0.9,NA
ACTB,4000,-0.2,0.1,-2,0.04,0.2
`

func TestRead(t *testing.T) {
	f, err := Read(strings.NewReader(dgeCSV), ',')
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(f.Header) != 7 || f.Header[0] != "" {
		t.Fatalf("unexpected header: %q", f.Header)
	}
	if len(f.Rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(f.Rows))
	}

	col, err := f.Col("padj")
	if err != nil {
		t.Fatalf("Col error: %v", err)
	}
	if v, err := f.Float(0, col); err != nil || v != 1e-38 {
		t.Errorf("Float(0, padj) = %v, %v", v, err)
	}
	if v, err := f.Float(2, col); err != nil || !math.IsNaN(v) {
		t.Errorf("NA cell = %v, %v; want NaN, nil", v, err)
	}
}

func TestFloatMalformed(t *testing.T) {
	f, err := Read(strings.NewReader(",log2FoldChange,padj\nIL6,abc,0.01\n"), ',')
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	_, err = f.Float(0, 1)
	if !errors.Is(err, ErrNotNumber) {
		t.Fatalf("expected ErrNotNumber, got %v", err)
	}
	if !strings.Contains(err.Error(), "log2FoldChange") {
		t.Errorf("error should name the column: %v", err)
	}
}

func TestColMissing(t *testing.T) {
	f, _ := Read(strings.NewReader(dgeCSV), ',')
	_, err := f.Col("pval")
	if !errors.Is(err, ErrNoColumn) {
		t.Fatalf("expected ErrNoColumn, got %v", err)
	}
}

func TestDropNA(t *testing.T) {
	f, _ := Read(strings.NewReader(dgeCSV), ',')
	clean := f.DropNA()
	if len(clean.Rows) != 3 {
		t.Fatalf("got %d rows after DropNA, want 3", len(clean.Rows))
	}
	for _, r := range clean.Rows {
		if r[0] == "GAPDH" {
			t.Fatal("GAPDH with NA padj should be dropped")
		}
	}
	if len(f.Rows) != 4 {
		t.Fatal("DropNA modified the source frame")
	}
}

func TestDelimiter(t *testing.T) {
	tests := []struct {
		path string
		want rune
	}{
		{"a.csv", ','},
		{"Sp_R6-all-Metabolites.tbl", '\t'},
		{"x.tsv.gz", '\t'},
		{"x.csv.gz", ','},
		{"noext", ','},
	}
	for _, tt := range tests {
		if got := Delimiter(tt.path); got != tt.want {
			t.Errorf("Delimiter(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadFileGzipTSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strain-all-Metabolites.tbl.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(fh)
	zw.Write([]byte("ID\tName\nM1\tPyruvate\nM2\tD-Glucose\n"))
	zw.Close()
	fh.Close()

	f, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	col, err := f.Col("Name")
	if err != nil {
		t.Fatal(err)
	}
	if f.Cell(1, col) != "D-Glucose" {
		t.Errorf("Cell(1, Name) = %q", f.Cell(1, col))
	}
	if f.Path != path {
		t.Errorf("Path = %q", f.Path)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	if Exists(dir) {
		t.Error("directory reported as file")
	}
	p := filepath.Join(dir, "x.csv")
	os.WriteFile(p, []byte("a\n"), 0644)
	if !Exists(p) {
		t.Error("existing file not found")
	}
}
