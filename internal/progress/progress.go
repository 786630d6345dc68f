// Package progress wraps terminal progress bars for long-running loops.
package progress

import (
	"os"

	"github.com/cheggaaa/pb/v3"
)

// Bar counts completed work units.
type Bar interface {
	Increment()
	Finish()
}

// New returns a bar on stderr when enabled, otherwise a no-op.
func New(total int, enabled bool) Bar {
	if !enabled || total <= 0 {
		return noop{}
	}
	bar := pb.New(total)
	bar.SetWriter(os.Stderr)
	return &pbBar{bar: bar.Start()}
}

type pbBar struct {
	bar *pb.ProgressBar
}

func (b *pbBar) Increment() { b.bar.Increment() }
func (b *pbBar) Finish()    { b.bar.Finish() }

type noop struct{}

func (noop) Increment() {}
func (noop) Finish()    {}
