package output

import (
	"context"

	"github.com/crimson-sun/pathobridge/internal/model"
)

// Output defines the interface for result table destinations.
type Output interface {
	Write(ctx context.Context, t model.Table) error
	Close() error
}

// Locator is implemented by outputs that place each table in its own file.
// Locate returns the files a table with the given name is written to.
type Locator interface {
	Locate(name string) []string
}
