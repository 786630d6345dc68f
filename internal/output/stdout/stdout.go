package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output"
)

const defaultRows = 10

// Option configures a stdout Output.
type Option func(*Output)

// WithRows sets how many rows of each table are previewed. 0 prints all rows.
func WithRows(n int) Option {
	return func(o *Output) { o.rows = n }
}

// WithWriter redirects the preview away from stdout.
func WithWriter(w io.Writer) Option {
	return func(o *Output) { o.w = w }
}

// Output prints an aligned preview of each table, headed by its name and
// total row count.
type Output struct {
	w    io.Writer
	rows int
}

// New creates a new stdout Output.
func New(opts ...Option) *Output {
	o := &Output{w: os.Stdout, rows: defaultRows}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Output) Write(_ context.Context, t model.Table) error {
	head := output.Head(t, o.rows)
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "== %s (%d rows)\n", t.Name, len(t.Rows))
	fmt.Fprintln(tw, strings.Join(t.Header(), "\t"))
	for i := range head.Rows {
		fmt.Fprintln(tw, strings.Join(head.Strings(i), "\t"))
	}
	if len(head.Rows) < len(t.Rows) {
		fmt.Fprintf(tw, "... %d more\n", len(t.Rows)-len(head.Rows))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
