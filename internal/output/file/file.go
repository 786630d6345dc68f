// Package file writes each table as a delimited text file under a directory.
package file

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/crimson-sun/pathobridge/internal/model"
)

const defaultBufSize = 64 * 1024 // 64KB

// Option configures a file Output.
type Option func(*Output)

// WithComma sets the field delimiter. Default: ','.
func WithComma(r rune) Option {
	return func(o *Output) {
		o.comma = r
		if r == '\t' {
			o.ext = ".tsv"
		}
	}
}

// WithBufSize sets the bufio.Writer buffer size. Default: 64KB.
func WithBufSize(bytes int) Option {
	return func(o *Output) { o.bufSize = bytes }
}

// Output writes every table to <dir>/<name>.csv, replacing earlier contents.
// Parent directories of nested names are created on demand.
type Output struct {
	mu      sync.Mutex
	dir     string
	comma   rune
	ext     string
	bufSize int
}

// New creates a file output rooted at dir.
func New(dir string, opts ...Option) *Output {
	o := &Output{
		dir:     dir,
		comma:   ',',
		ext:     ".csv",
		bufSize: defaultBufSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Path returns the file a table name maps to.
func (o *Output) Path(name string) string {
	return filepath.Join(o.dir, filepath.FromSlash(name)+o.ext)
}

// Locate implements output.Locator.
func (o *Output) Locate(name string) []string {
	return []string{o.Path(name)}
}

// Write renders the table with a header row.
func (o *Output) Write(_ context.Context, t model.Table) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	path := o.Path(t.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("file output: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", path, err)
	}

	bw := bufio.NewWriterSize(f, o.bufSize)
	cw := csv.NewWriter(bw)
	cw.Comma = o.comma
	if err := cw.Write(t.Header()); err != nil {
		f.Close()
		return fmt.Errorf("file output: write: %w", err)
	}
	for i := range t.Rows {
		if err := cw.Write(t.Strings(i)); err != nil {
			f.Close()
			return fmt.Errorf("file output: write: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("file output: write: %w", err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return f.Close()
}

// Close is a no-op; every Write closes its own file.
func (o *Output) Close() error {
	return nil
}
