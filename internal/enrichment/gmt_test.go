package enrichment

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseGMT(t *testing.T) {
	in := "Inflammatory response\tdesc\tIL6\tTNF\tIL6\n" +
		"\n" +
		"Weighted\t\tNFKB1,0.5\tJUN,1.0\r\n" +
		"EmptySet\t\t\n"
	lib, err := ParseGMT(strings.NewReader(in), "test")
	if err != nil {
		t.Fatalf("ParseGMT: %v", err)
	}
	if lib.Name != "test" || len(lib.Sets) != 2 {
		t.Fatalf("unexpected library: %+v", lib)
	}
	if got := lib.Sets[0].Genes; len(got) != 2 || got[0] != "IL6" || got[1] != "TNF" {
		t.Errorf("duplicates not removed: %v", got)
	}
	if got := lib.Sets[1].Genes; len(got) != 2 || got[0] != "NFKB1" || got[1] != "JUN" {
		t.Errorf("weights not stripped: %v", got)
	}
}

func TestParseGMTTooFewFields(t *testing.T) {
	if _, err := ParseGMT(strings.NewReader("lonely\n"), "bad"); err == nil {
		t.Fatal("expected error")
	}
}

func TestWriteGMTRoundTrip(t *testing.T) {
	lib, _ := ParseGMT(strings.NewReader("A\t\tX\tY\nB\t\tZ\n"), "lib")
	var buf bytes.Buffer
	if err := WriteGMT(&buf, lib); err != nil {
		t.Fatalf("WriteGMT: %v", err)
	}
	if buf.String() != "A\t\tX\tY\nB\t\tZ\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestLocalProvider(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "KEGG_2021_Human.gmt"), []byte("Set\t\tA\tB\n"), 0o644)

	ctor, err := Get("gmt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	lib, err := ctor(ProviderConfig{Dir: dir}).Library(context.Background(), "KEGG_2021_Human")
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if len(lib.Sets) != 1 || lib.Sets[0].Term != "Set" {
		t.Fatalf("unexpected library: %+v", lib)
	}

	if _, err := ctor(ProviderConfig{Dir: dir}).Library(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing library")
	}
}

func TestGetUnknownProvider(t *testing.T) {
	if _, err := Get("nope"); err == nil {
		t.Fatal("expected error")
	}
}
