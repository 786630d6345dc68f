// Package figure renders the pipeline's PNG figures with gonum/plot.
package figure

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const defaultDPI = 300

var (
	Red     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	Blue    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	Grey    = color.RGBA{R: 170, G: 170, B: 170, A: 255}
	SkyBlue = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	Dark    = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	Light   = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// Options controls raster output.
type Options struct {
	DPI int
}

func (o Options) dpi() int {
	if o.DPI <= 0 {
		return defaultDPI
	}
	return o.DPI
}

// Save renders p as a PNG of the given size.
func Save(p *plot.Plot, w, h vg.Length, path string, opt Options) error {
	return render(path, w, h, opt, func(dc draw.Canvas) { p.Draw(dc) })
}

func render(path string, w, h vg.Length, opt Options, paint func(draw.Canvas)) error {
	c := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(opt.dpi()))
	paint(draw.New(c))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("figure: mkdir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("figure: create %s: %w", path, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("figure: encode %s: %w", path, err)
	}
	return f.Close()
}
