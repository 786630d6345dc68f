// Package xlsx collects tables into a single Excel workbook, one sheet per
// table, saved when the output is closed. An existing workbook is extended,
// so stages run as separate invocations share one file.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/crimson-sun/pathobridge/internal/model"
)

const (
	maxSheetName = 31
	defaultSheet = "Sheet1"
	scratchSheet = "_replacing_"
)

// Output accumulates sheets in memory until Close.
type Output struct {
	mu     sync.Mutex
	f      *excelize.File
	fresh  bool
	err    error
	path   string
	sheets map[string]string // table name → sheet name
}

// New creates a workbook output saved to path. When path already holds a
// workbook its sheets are kept and tables of the same name replace them.
// A workbook that cannot be opened is reported by Write and Close.
func New(path string) *Output {
	o := &Output{path: path, sheets: make(map[string]string)}
	f, err := excelize.OpenFile(path)
	switch {
	case err == nil:
		o.f = f
	case errors.Is(err, os.ErrNotExist):
		o.f, o.fresh = excelize.NewFile(), true
	default:
		o.f, o.err = excelize.NewFile(), fmt.Errorf("xlsx output: open %s: %w", path, err)
	}
	return o
}

// Locate implements output.Locator.
func (o *Output) Locate(string) []string {
	return []string{o.path}
}

// Write adds or replaces the sheet for the table.
func (o *Output) Write(_ context.Context, t model.Table) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}

	sheet, ok := o.sheets[t.Name]
	if !ok {
		sheet = o.uniqueName(SheetName(t.Name))
	}
	if err := o.resetSheet(sheet); err != nil {
		return fmt.Errorf("xlsx output: sheet %s: %w", sheet, err)
	}
	o.sheets[t.Name] = sheet

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name
	}
	if err := o.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("xlsx output: %w", err)
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx output: %w", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := o.f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("xlsx output: %w", err)
		}
	}
	return nil
}

// Close saves the workbook. Nothing is written when no table was added.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer o.f.Close()

	if o.err != nil {
		return o.err
	}
	if len(o.sheets) == 0 {
		return nil
	}
	if _, ok := o.sheetSet()[defaultSheet]; o.fresh && !ok {
		if err := o.f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("xlsx output: %w", err)
		}
	}
	o.f.SetActiveSheet(0)
	if err := os.MkdirAll(filepath.Dir(o.path), 0o755); err != nil {
		return fmt.Errorf("xlsx output: mkdir: %w", err)
	}
	if err := o.f.SaveAs(o.path); err != nil {
		return fmt.Errorf("xlsx output: save %s: %w", o.path, err)
	}
	return nil
}

// resetSheet leaves an empty sheet named name, replacing any existing one.
// The replacement goes through a scratch sheet because a workbook can never
// drop its last sheet.
func (o *Output) resetSheet(name string) error {
	idx, err := o.f.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx == -1 {
		_, err := o.f.NewSheet(name)
		return err
	}
	if _, err := o.f.NewSheet(scratchSheet); err != nil {
		return err
	}
	if err := o.f.DeleteSheet(name); err != nil {
		return err
	}
	return o.f.SetSheetName(scratchSheet, name)
}

func (o *Output) sheetSet() map[string]struct{} {
	s := make(map[string]struct{}, len(o.sheets))
	for _, v := range o.sheets {
		s[v] = struct{}{}
	}
	return s
}

func (o *Output) uniqueName(base string) string {
	used := o.sheetSet()
	name := base
	for i := 2; ; i++ {
		if _, taken := used[name]; !taken {
			return name
		}
		suffix := fmt.Sprintf("_%d", i)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
}

// SheetName derives a valid sheet name from a table name: the last path
// element, without characters Excel rejects, at most 31 characters.
func SheetName(table string) string {
	name := path.Base(filepath.ToSlash(table))
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if name == "" || name == "." {
		name = "Sheet"
	}
	return truncate(name, maxSheetName)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
