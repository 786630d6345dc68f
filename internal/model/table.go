package model

import (
	"fmt"
	"math"
	"strconv"
)

// ColumnKind is the value type held by a table column.
type ColumnKind int

const (
	String ColumnKind = iota
	Float
	Int
)

// Column describes one table column.
type Column struct {
	Name string
	Kind ColumnKind
}

// Table is the unit written by every output sink. Name is a path-like stem
// relative to the tables directory (e.g. "gsea_analysis/report").
// Row values must match the column kinds: string, float64 or int.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Header returns the column names.
func (t Table) Header() []string {
	h := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		h[i] = c.Name
	}
	return h
}

// Strings renders row i as text cells.
func (t Table) Strings(i int) []string {
	row := t.Rows[i]
	out := make([]string, len(row))
	for j, v := range row {
		out[j] = FormatCell(v)
	}
	return out
}

// FormatCell renders a single cell value. NaN renders as an empty cell.
func FormatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
