package pathobridge

import (
	"io"

	"github.com/crimson-sun/pathobridge/internal/config"
)

type options struct {
	root       string
	seed       *uint64
	formats    []string
	figureDPI  int
	progress   bool
	webhookURL string
	provider   string
	geneSetDir string
	console    io.Writer
}

// Option configures a Pipeline.
type Option func(*options)

// WithRoot sets the directory holding the results/ tree.
// Default: $PATHOBRIDGE_ROOT, or the working directory.
func WithRoot(dir string) Option {
	return func(o *options) {
		o.root = dir
	}
}

// WithSeed sets the seed of every simulated and randomized step. Any value,
// including 0, overrides $PATHOBRIDGE_SEED. Default: 42.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithTableFormats adds table formats next to the CSV files:
// "parquet", "xlsx" or "stdout".
func WithTableFormats(formats ...string) Option {
	return func(o *options) {
		o.formats = append(o.formats, formats...)
	}
}

// WithFigureDPI sets the resolution of rendered figures. Default: 300.
func WithFigureDPI(dpi int) Option {
	return func(o *options) {
		o.figureDPI = dpi
	}
}

// WithProgress shows progress bars on stderr for long computations.
func WithProgress() Option {
	return func(o *options) {
		o.progress = true
	}
}

// WithWebhook posts the manifest of every full run to url.
func WithWebhook(url string) Option {
	return func(o *options) {
		o.webhookURL = url
	}
}

// WithGeneSets reads gene set libraries from <dir>/<library>.gmt instead of
// downloading them.
func WithGeneSets(dir string) Option {
	return func(o *options) {
		o.provider = "gmt"
		o.geneSetDir = dir
	}
}

// WithConsole redirects printed reports. Default: os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		o.console = w
	}
}

// apply loads the environment configuration and overlays the options.
func (o options) apply() config.Config {
	cfg := config.Load()
	if o.root != "" {
		cfg = config.LoadRoot(o.root)
	}
	if o.seed != nil {
		cfg.Seed = *o.seed
	}
	cfg.Output.TableFormats = append(cfg.Output.TableFormats, o.formats...)
	if o.figureDPI > 0 {
		cfg.Output.FigureDPI = o.figureDPI
	}
	if o.progress {
		cfg.Output.Progress = true
	}
	if o.webhookURL != "" {
		cfg.Output.WebhookURL = o.webhookURL
	}
	if o.provider != "" {
		cfg.Enrichment.Provider = o.provider
		cfg.Enrichment.GeneSetDir = o.geneSetDir
	}
	return cfg
}
