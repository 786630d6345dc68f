package enrichment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// Provider supplies gene set libraries by name.
type Provider interface {
	Library(ctx context.Context, name string) (model.GeneSetLibrary, error)
}

// ProviderConfig holds provider settings.
type ProviderConfig struct {
	Dir string // local GMT directory, also the download cache
	URL string // remote service base URL
}

// Constructor creates a Provider from its config.
type Constructor func(cfg ProviderConfig) Provider

var registry = map[string]Constructor{}

// Register adds a provider constructor under the given name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the provider constructor for the given name.
func Get(name string) (Constructor, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown enrichment provider: %s", name)
	}
	return ctor, nil
}

// Providers returns the names of all registered providers.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

func init() {
	Register("gmt", func(cfg ProviderConfig) Provider { return &LocalProvider{Dir: cfg.Dir} })
}

// LocalProvider reads <Dir>/<name>.gmt.
type LocalProvider struct {
	Dir string
}

// Path returns the GMT path for a library.
func (p *LocalProvider) Path(name string) string {
	return filepath.Join(p.Dir, name+".gmt")
}

// Library loads a library from disk.
func (p *LocalProvider) Library(_ context.Context, name string) (model.GeneSetLibrary, error) {
	f, err := os.Open(p.Path(name))
	if err != nil {
		return model.GeneSetLibrary{}, fmt.Errorf("enrichment: library %s: %w", name, err)
	}
	defer f.Close()
	return ParseGMT(f, name)
}
