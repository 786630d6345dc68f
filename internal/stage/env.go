package stage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/crimson-sun/pathobridge/internal/config"
	"github.com/crimson-sun/pathobridge/internal/figure"
	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output"
	"github.com/crimson-sun/pathobridge/internal/output/file"
	"github.com/crimson-sun/pathobridge/internal/output/multi"
	"github.com/crimson-sun/pathobridge/internal/output/parquet"
	"github.com/crimson-sun/pathobridge/internal/output/stdout"
	"github.com/crimson-sun/pathobridge/internal/output/xlsx"
)

// Env carries configuration and sinks into every stage and records the
// artifacts the stages write.
type Env struct {
	Config  config.Config
	Tables  output.Output
	Figures figure.Options
	Console io.Writer // human-readable reports

	mu        sync.Mutex
	artifacts []string
}

// NewEnv binds a configuration to a table output.
func NewEnv(cfg config.Config, tables output.Output) *Env {
	return &Env{
		Config:  cfg,
		Tables:  tables,
		Figures: figure.Options{DPI: cfg.Output.FigureDPI},
		Console: os.Stdout,
	}
}

// OpenTables builds the table output for the configured formats. CSV files
// are always written because later stages read them back.
func OpenTables(cfg config.Config) output.Output {
	outs := []output.Output{file.New(cfg.Paths.TablesDir)}
	for _, f := range cfg.Output.TableFormats {
		switch f {
		case "parquet":
			outs = append(outs, parquet.New(cfg.Paths.TablesDir))
		case "xlsx":
			outs = append(outs, xlsx.New(cfg.Output.Workbook))
		case "stdout":
			outs = append(outs, stdout.New())
		}
	}
	return multi.New(outs...)
}

// WriteTable sends a table to every sink and records the files written.
func (e *Env) WriteTable(ctx context.Context, t model.Table) error {
	if err := e.Tables.Write(ctx, t); err != nil {
		return fmt.Errorf("stage: write table %s: %w", t.Name, err)
	}
	if l, ok := e.Tables.(output.Locator); ok {
		e.Record(l.Locate(t.Name)...)
	}
	slog.Info("table written", "table", t.Name, "rows", len(t.Rows))
	return nil
}

// Figure renders a figure into the stage's figure directory and records it.
func (e *Env) Figure(stage, name string, render func(path string) error) error {
	path := filepath.Join(e.Config.FigureDir(stage), name)
	if err := render(path); err != nil {
		return fmt.Errorf("stage: figure %s: %w", name, err)
	}
	e.Record(path)
	slog.Info("figure saved", "path", path)
	return nil
}

// Record notes written files, ignoring duplicates.
func (e *Env) Record(paths ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, p := range paths {
		dup := false
		for _, a := range e.artifacts {
			if a == p {
				dup = true
				break
			}
		}
		if !dup {
			e.artifacts = append(e.artifacts, p)
		}
	}
}

// TakeArtifacts returns the recorded files and clears the record.
func (e *Env) TakeArtifacts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	a := e.artifacts
	e.artifacts = nil
	return a
}
