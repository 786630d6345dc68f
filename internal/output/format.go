package output

import (
	"strings"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// Head returns a copy of the table limited to its first n rows.
// n <= 0 keeps every row.
func Head(t model.Table, n int) model.Table {
	if n > 0 && len(t.Rows) > n {
		t.Rows = t.Rows[:n]
	}
	return t
}

// ColumnName returns a non-empty column name, naming an unnamed index
// column "index".
func ColumnName(c model.Column) string {
	if strings.TrimSpace(c.Name) == "" {
		return "index"
	}
	return c.Name
}
