// Package render draws a classified codel grid, or a dithered preview
// of a source image against the canonical palette, back out to a
// raster file — a debugging aid, never part of program execution.
package render

import (
	"fmt"
	"image"
	stdcolor "image/color"
	"image/gif"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	piet "piet/color"
	"piet/grid"
)

// Grid draws g's classified codels back out as an image, one solid
// scale×scale block of pixels per codel, under pal.
func Grid(g *grid.Grid, pal *piet.Palette, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Cols*scale, g.Rows*scale))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			rgba := pal[g.At(r, c)]
			block := image.Rect(c*scale, r*scale, (c+1)*scale, (r+1)*scale)
			draw.Draw(img, block, image.NewUniform(rgba), image.Point{}, draw.Src)
		}
	}
	return img
}

// Canonical re-quantizes img against pal's twenty canonical colors,
// so a viewer can see which codels would classify to which color
// before running the program. dither selects Floyd-Steinberg error
// diffusion over a nearest-color mapping.
func Canonical(img image.Image, pal *piet.Palette, dither bool) *image.Paletted {
	cp := make(stdcolor.Palette, len(pal))
	for i, rgba := range pal {
		cp[i] = rgba
	}

	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, cp)

	if dither {
		draw.FloydSteinberg.Draw(dest, dr, img, sr.Min)
	} else {
		draw.Draw(dest, dr, img, sr.Min, draw.Src)
	}
	return dest
}

// Save writes img to path, choosing an encoder from path's extension
// (".gif", ".bmp", ".tif"/".tiff", else PNG), matching the raster
// formats the grid package itself can decode.
func Save(img image.Image, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create render output %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gif":
		if err = gif.Encode(f, img, nil); err != nil {
			return fmt.Errorf("could not encode GIF render %q: %w", path, err)
		}
	case ".bmp":
		if err = bmp.Encode(f, img); err != nil {
			return fmt.Errorf("could not encode BMP render %q: %w", path, err)
		}
	case ".tif", ".tiff":
		if err = tiff.Encode(f, img, nil); err != nil {
			return fmt.Errorf("could not encode TIFF render %q: %w", path, err)
		}
	default:
		enc := png.Encoder{CompressionLevel: png.BestCompression, BufferPool: pngPool}
		if err = enc.Encode(f, img); err != nil {
			return fmt.Errorf("could not encode PNG render %q: %w", path, err)
		}
	}
	return nil
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	if b, ok := p.pool.Get().(*png.EncoderBuffer); ok {
		return b
	}
	return &png.EncoderBuffer{}
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) { p.pool.Put(buf) }

var pngPool = &pngEncoderBufferPool{}
