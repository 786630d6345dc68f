package enrichr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crimson-sun/pathobridge/internal/enrichment"
	"github.com/crimson-sun/pathobridge/internal/httpclient"
)

const keggText = "Toll-like receptor signaling pathway\t\tTLR2,1.0\tMYD88,1.0\tNFKB1,1.0\n" +
	"MAPK signaling pathway\t\tJUN\tFOS\n"

func TestLibraryDownloadsAndCaches(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/geneSetLibrary" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("mode") != "text" || r.URL.Query().Get("libraryName") != "KEGG_2021_Human" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(keggText))
	}))
	defer srv.Close()

	dir := t.TempDir()
	p := New(enrichment.ProviderConfig{Dir: dir, URL: srv.URL + "/"})

	lib, err := p.Library(context.Background(), "KEGG_2021_Human")
	if err != nil {
		t.Fatalf("Library: %v", err)
	}
	if len(lib.Sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(lib.Sets))
	}
	if got := lib.Sets[0].Genes; len(got) != 3 || got[0] != "TLR2" {
		t.Fatalf("weights not stripped: %v", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "KEGG_2021_Human.gmt")); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	if _, err := p.Library(context.Background(), "KEGG_2021_Human"); err != nil {
		t.Fatalf("second Library: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 request, got %d", calls.Load())
	}
}

func TestLibraryEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	p := New(enrichment.ProviderConfig{Dir: t.TempDir(), URL: srv.URL})
	if _, err := p.Library(context.Background(), "Nope"); err == nil {
		t.Fatal("expected error for empty library")
	}
}

func TestLibraryUnknownName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/datasetStatistics" {
			w.Write([]byte(`{"statistics":[{"libraryName":"KEGG_2021_Human","numTerms":320},{"libraryName":"GO_Biological_Process_2021","numTerms":6036}]}`))
		}
	}))
	defer srv.Close()

	p := New(enrichment.ProviderConfig{Dir: t.TempDir(), URL: srv.URL})
	names, err := p.Libraries(context.Background())
	if err != nil || len(names) != 2 || names[0] != "KEGG_2021_Human" {
		t.Fatalf("Libraries = %v, %v", names, err)
	}

	_, err = p.Library(context.Background(), "KEGG_2099_Human")
	if err == nil || !strings.Contains(err.Error(), "unknown library") {
		t.Fatalf("expected unknown library error, got %v", err)
	}
}

func TestLibraryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := New(enrichment.ProviderConfig{Dir: t.TempDir(), URL: srv.URL}, httpclient.WithBaseDelay(time.Millisecond))
	if _, err := p.Library(context.Background(), "KEGG_2021_Human"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistered(t *testing.T) {
	ctor, err := enrichment.Get("enrichr")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := ctor(enrichment.ProviderConfig{}).(*Provider); !ok {
		t.Fatal("constructor returned wrong type")
	}
}
