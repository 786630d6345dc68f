// Package parquet writes each table as a Parquet file under a directory.
package parquet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/xitongsys/parquet-go-source/local"
	pq "github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/crimson-sun/pathobridge/internal/model"
	"github.com/crimson-sun/pathobridge/internal/output"
)

const defaultParallelism = 4

// Option configures a parquet Output.
type Option func(*Output)

// WithParallelism sets the writer goroutine count. Default: 4.
func WithParallelism(n int64) Option {
	return func(o *Output) { o.np = n }
}

// Output writes every table to <dir>/<name>.parquet with Snappy compression.
type Output struct {
	mu  sync.Mutex
	dir string
	np  int64
}

// New creates a parquet output rooted at dir.
func New(dir string, opts ...Option) *Output {
	o := &Output{dir: dir, np: defaultParallelism}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Path returns the file a table name maps to.
func (o *Output) Path(name string) string {
	return filepath.Join(o.dir, filepath.FromSlash(name)+".parquet")
}

// Locate implements output.Locator.
func (o *Output) Locate(name string) []string {
	return []string{o.Path(name)}
}

func (o *Output) Write(_ context.Context, t model.Table) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	path := o.Path(t.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("parquet output: mkdir: %w", err)
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("parquet output: open %s: %w", path, err)
	}
	pw, err := writer.NewCSVWriter(Schema(t.Columns), fw, o.np)
	if err != nil {
		fw.Close()
		return fmt.Errorf("parquet output: writer: %w", err)
	}
	pw.CompressionType = pq.CompressionCodec_SNAPPY

	for _, row := range t.Rows {
		if err := pw.Write(Record(t.Columns, row)); err != nil {
			fw.Close()
			return fmt.Errorf("parquet output: write %s: %w", t.Name, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		fw.Close()
		return fmt.Errorf("parquet output: finish %s: %w", t.Name, err)
	}
	return fw.Close()
}

func (o *Output) Close() error {
	return nil
}

// Schema returns the CSV-writer metadata for the columns. Column names are
// reduced to letters, digits and underscores.
func Schema(cols []model.Column) []string {
	md := make([]string, len(cols))
	for i, c := range cols {
		name := FieldName(output.ColumnName(c))
		switch c.Kind {
		case model.Float:
			md[i] = "name=" + name + ", type=DOUBLE"
		case model.Int:
			md[i] = "name=" + name + ", type=INT64"
		default:
			md[i] = "name=" + name + ", type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"
		}
	}
	return md
}

// FieldName maps a column header to a parquet field name.
func FieldName(s string) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, s)
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "c_" + name
	}
	return name
}

// Record converts a row to the value types the schema expects.
func Record(cols []model.Column, row []any) []interface{} {
	rec := make([]interface{}, len(cols))
	for i, c := range cols {
		var v any
		if i < len(row) {
			v = row[i]
		}
		switch c.Kind {
		case model.Float:
			f, _ := v.(float64)
			rec[i] = f
		case model.Int:
			n, _ := v.(int)
			rec[i] = int64(n)
		default:
			rec[i] = model.FormatCell(v)
		}
	}
	return rec
}
