// Package pipeline runs stages in order and records what each produced.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/stage"
)

// DefaultOrder lists every stage in dependency order.
var DefaultOrder = []string{"host-response", "metabolism", "bridging", "predict", "synthesis"}

// Notifier receives the manifest of a finished run.
type Notifier interface {
	Notify(ctx context.Context, m model.Manifest) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithManifest writes the run manifest as JSON to path.
func WithManifest(path string) Option {
	return func(p *Pipeline) { p.manifest = path }
}

// WithNotifier sends the manifest to n after the run.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// Pipeline connects stages to the environment they share.
type Pipeline struct {
	env      *stage.Env
	stages   []stage.Stage
	manifest string
	notifier Notifier
}

// New creates a Pipeline from the given stages.
func New(env *stage.Env, stages []stage.Stage, opts ...Option) *Pipeline {
	p := &Pipeline{env: env, stages: stages}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Resolve builds registered stages by name.
func Resolve(env *stage.Env, names []string) ([]stage.Stage, error) {
	stages := make([]stage.Stage, 0, len(names))
	for _, name := range names {
		ctor, err := stage.Get(name)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		stages = append(stages, ctor(env))
	}
	return stages, nil
}

// Run executes the stages in order and stops at the first failure. The
// manifest covers every stage attempted and is returned even on failure.
func (p *Pipeline) Run(ctx context.Context) (model.Manifest, error) {
	m := model.Manifest{
		RunID:   uuid.NewString(),
		Root:    p.env.Config.Paths.Root,
		Started: time.Now(),
	}
	slog.Info("run started", "run_id", m.RunID, "stages", len(p.stages))

	var runErr error
	for _, s := range p.stages {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		rec := model.StageRecord{Name: s.Name(), Started: time.Now(), Status: "ok"}
		slog.Info("stage started", "stage", s.Name())
		err := s.Run(ctx)
		rec.Duration = time.Since(rec.Started)
		rec.Artifacts = p.env.TakeArtifacts()
		if err != nil {
			rec.Status = "failed"
			rec.Error = err.Error()
			runErr = fmt.Errorf("pipeline: stage %s: %w", s.Name(), err)
		}
		m.Stages = append(m.Stages, rec)
		if err != nil {
			break
		}
		slog.Info("stage finished", "stage", s.Name(), "duration", rec.Duration, "artifacts", len(rec.Artifacts))
	}
	m.Finished = time.Now()

	if p.manifest != "" {
		if err := writeManifest(p.manifest, m); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, m); err != nil {
			slog.Warn("run notification failed", "run_id", m.RunID, "error", err)
		}
	}
	return m, runErr
}

func writeManifest(path string, m model.Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("pipeline: marshal manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("pipeline: write manifest: %w", err)
	}
	slog.Info("manifest written", "path", path)
	return nil
}

// Close flushes and closes the table outputs.
func (p *Pipeline) Close() error {
	return p.env.Tables.Close()
}
