// Package table reads the delimited text tables exchanged between stages.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shenwei356/xopen"
)

var (
	// ErrNoColumn is returned when a required column is absent.
	ErrNoColumn = errors.New("table: no such column")
	// ErrNotNumber is returned when a numeric cell is neither NA nor a number.
	ErrNotNumber = errors.New("table: not a number")
)

// Frame is a loaded delimited file. The first column is treated as the row
// index, mirroring tables written with an unnamed index header.
type Frame struct {
	Header []string
	Rows   [][]string
	Path   string
}

// ReadFile loads a CSV or TSV file. Files ending in .tsv, .tbl or .txt
// (optionally followed by .gz, .xz or .zst) are tab separated.
func ReadFile(path string) (*Frame, error) {
	r, err := xopen.Ropen(path)
	if err != nil {
		return nil, fmt.Errorf("table: open %s: %w", path, err)
	}
	defer r.Close()

	f, err := Read(r, Delimiter(path))
	if err != nil {
		return nil, fmt.Errorf("table: read %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// Read parses delimited text. The first record is the header.
func Read(r io.Reader, comma rune) (*Frame, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Frame{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	f := &Frame{Header: header}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		f.Rows = append(f.Rows, rec)
	}
	return f, nil
}

// Delimiter picks the field separator from a file name.
func Delimiter(path string) rune {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range []string{".gz", ".xz", ".zst", ".bz2"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch filepath.Ext(name) {
	case ".tsv", ".tbl", ".txt", ".tab":
		return '\t'
	default:
		return ','
	}
}

// Col returns the index of the named column.
func (f *Frame) Col(name string) (int, error) {
	for i, h := range f.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q in %s", ErrNoColumn, name, f.Path)
}

// Cell returns the value at (row, col), or "" when the row is short.
func (f *Frame) Cell(row, col int) string {
	r := f.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Float parses the value at (row, col). NA cells yield NaN with a nil error;
// anything else that does not parse wraps ErrNotNumber.
func (f *Frame) Float(row, col int) (float64, error) {
	s := strings.TrimSpace(f.Cell(row, col))
	if IsNA(s) {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("%w: %q in column %q", ErrNotNumber, s, f.colName(col))
	}
	return v, nil
}

func (f *Frame) colName(col int) string {
	if col < 0 || col >= len(f.Header) {
		return strconv.Itoa(col)
	}
	return f.Header[col]
}

// DropNA returns a copy holding only rows without NA cells.
func (f *Frame) DropNA() *Frame {
	out := &Frame{Header: f.Header, Path: f.Path}
	for _, r := range f.Rows {
		complete := len(r) >= len(f.Header)
		for _, c := range r {
			if IsNA(strings.TrimSpace(c)) {
				complete = false
				break
			}
		}
		if complete {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// IsNA reports whether s is one of the missing-value spellings R and pandas emit.
func IsNA(s string) bool {
	switch s {
	case "", "NA", "NaN", "nan", "N/A", "NULL", "null", "None":
		return true
	}
	return false
}

// Exists reports whether path names a regular, readable file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
