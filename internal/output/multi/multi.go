package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output"
)

// Multi fans out tables to multiple output.Output implementations.
// Each Write call delivers the table to every wrapped output sequentially.
// If one output fails, the remaining outputs still receive the table.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi that fans out to the given outputs.
func New(outputs ...output.Output) *Multi {
	return &Multi{outputs: outputs}
}

// Write delivers the table to every wrapped output. Errors are collected
// but do not prevent delivery to subsequent outputs.
func (m *Multi) Write(ctx context.Context, t model.Table) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Locate collects the files written by every wrapped output.Locator.
func (m *Multi) Locate(name string) []string {
	var paths []string
	for _, o := range m.outputs {
		if l, ok := o.(output.Locator); ok {
			paths = append(paths, l.Locate(name)...)
		}
	}
	return paths
}

// Close calls Close on every wrapped output, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
