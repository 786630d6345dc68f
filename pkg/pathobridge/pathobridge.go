package pathobridge

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/crimson-sun/pathobridge/internal/config"
	"github.com/crimson-sun/pathobridge/internal/notify"
	"github.com/crimson-sun/pathobridge/internal/pipeline"
	"github.com/crimson-sun/pathobridge/internal/stage"

	// Register enrichment providers and stages.
	_ "github.com/crimson-sun/pathobridge/internal/enrichment/enrichr"
	_ "github.com/crimson-sun/pathobridge/internal/stage/bridging"
	_ "github.com/crimson-sun/pathobridge/internal/stage/hostresponse"
	_ "github.com/crimson-sun/pathobridge/internal/stage/metabolism"
	_ "github.com/crimson-sun/pathobridge/internal/stage/predict"
	_ "github.com/crimson-sun/pathobridge/internal/stage/synthesis"
)

// ErrMissingInput is matched by errors.Is when a stage's input file does not
// exist. Hint explains how to produce it.
var ErrMissingInput = stage.ErrMissingInput

// Hint returns the remediation for a missing-input error, or "".
func Hint(err error) string {
	return stage.Hint(err)
}

// Stages returns the stage names in run order.
func Stages() []string {
	return slices.Clone(pipeline.DefaultOrder)
}

// Pipeline runs stages against one result tree. Runs of the same Pipeline
// must not overlap.
type Pipeline struct {
	cfg  config.Config
	opts options
}

// New resolves and validates the configuration.
func New(opts ...Option) (*Pipeline, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.apply()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("pathobridge: %w", err)
	}
	return &Pipeline{cfg: cfg, opts: o}, nil
}

// Root returns the resolved result tree root.
func (p *Pipeline) Root() string {
	return p.cfg.Paths.Root
}

// Run executes every stage in order, writes results/run_manifest.json and
// notifies the configured webhook.
func (p *Pipeline) Run(ctx context.Context) (Manifest, error) {
	opts := []pipeline.Option{pipeline.WithManifest(p.cfg.Paths.Manifest)}
	if url := p.cfg.Output.WebhookURL; url != "" {
		opts = append(opts, pipeline.WithNotifier(notify.New(url)))
	}
	return p.run(ctx, pipeline.DefaultOrder, opts...)
}

// RunStage executes a single stage by name.
func (p *Pipeline) RunStage(ctx context.Context, name string) (Manifest, error) {
	if !slices.Contains(pipeline.DefaultOrder, name) {
		return Manifest{}, fmt.Errorf("pathobridge: unknown stage %q", name)
	}
	return p.run(ctx, []string{name})
}

func (p *Pipeline) run(ctx context.Context, names []string, opts ...pipeline.Option) (Manifest, error) {
	env := stage.NewEnv(p.cfg, stage.OpenTables(p.cfg))
	if p.opts.console != nil {
		env.Console = p.opts.console
	}
	stages, err := pipeline.Resolve(env, names)
	if err != nil {
		return Manifest{}, err
	}
	pl := pipeline.New(env, stages, opts...)
	m, err := pl.Run(ctx)
	err = errors.Join(err, pl.Close())
	return manifestFromModel(m), err
}
