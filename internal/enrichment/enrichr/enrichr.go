// Package enrichr fetches gene set libraries from the Enrichr service and
// caches them locally as GMT files.
package enrichr

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/crimson-sun/pathobridge/internal/enrichment"
	"github.com/crimson-sun/pathobridge/internal/httpclient"
	"github.com/crimson-sun/pathobridge/internal/model"
)

const defaultURL = "https://maayanlab.cloud/Enrichr"

func init() {
	enrichment.Register("enrichr", func(cfg enrichment.ProviderConfig) enrichment.Provider {
		return New(cfg)
	})
}

// Provider implements enrichment.Provider against the Enrichr text API.
type Provider struct {
	client *httpclient.Client
	cache  *enrichment.LocalProvider
}

// New creates a provider. An empty URL selects the public Enrichr instance.
func New(cfg enrichment.ProviderConfig, opts ...httpclient.Option) *Provider {
	base := strings.TrimRight(cfg.URL, "/")
	if base == "" {
		base = defaultURL
	}
	return &Provider{
		client: httpclient.New(base, "", opts...),
		cache:  &enrichment.LocalProvider{Dir: cfg.Dir},
	}
}

// Library returns the named library, downloading it on first use.
func (p *Provider) Library(ctx context.Context, name string) (model.GeneSetLibrary, error) {
	path := p.cache.Path(name)
	if _, err := os.Stat(path); err == nil {
		slog.Debug("gene set library cache hit", "library", name, "path", path)
		return p.cache.Library(ctx, name)
	}

	q := url.Values{}
	q.Set("mode", "text")
	q.Set("libraryName", name)
	body, err := p.client.GetText(ctx, "/geneSetLibrary", q)
	if err != nil {
		return model.GeneSetLibrary{}, fmt.Errorf("enrichr: library %s: %w", name, err)
	}
	lib, err := enrichment.ParseGMT(strings.NewReader(body), name)
	if err != nil {
		return lib, err
	}
	if len(lib.Sets) == 0 {
		if known, err := p.Libraries(ctx); err == nil && !slices.Contains(known, name) {
			return lib, fmt.Errorf("enrichr: unknown library %s (%d available)", name, len(known))
		}
		return lib, fmt.Errorf("enrichr: library %s: no gene sets returned", name)
	}
	if err := writeCache(path, lib); err != nil {
		slog.Warn("could not cache gene set library", "library", name, "error", err)
	}
	slog.Info("downloaded gene set library", "library", name, "sets", len(lib.Sets))
	return lib, nil
}

// Libraries lists the library names the service offers.
func (p *Provider) Libraries(ctx context.Context) ([]string, error) {
	var resp struct {
		Statistics []struct {
			LibraryName string `json:"libraryName"`
		} `json:"statistics"`
	}
	if err := p.client.GetJSON(ctx, "/datasetStatistics", nil, &resp); err != nil {
		return nil, fmt.Errorf("enrichr: dataset statistics: %w", err)
	}
	names := make([]string, len(resp.Statistics))
	for i, s := range resp.Statistics {
		names[i] = s.LibraryName
	}
	return names, nil
}

func writeCache(path string, lib model.GeneSetLibrary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := enrichment.WriteGMT(f, lib); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
