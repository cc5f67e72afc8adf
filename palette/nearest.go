// Package palette builds the perceptual nearest-match table backing
// the interpreter's fallback-nearest unknown-color policy, and loads
// alternate 20-color palettes from the RIFF PAL format.
package palette

import (
	"image/color"
	"math"

	piet "piet/color"
	"piet/okcolor"
)

// Nearest holds the twenty canonical Piet colors converted to Oklab,
// in the same order as piet/color.Color's enum, so that an index
// returned by Color is directly a piet/color.Color value.
type Nearest struct {
	labs [20]okcolor.Lab
}

// NewNearest converts pal's twenty RGB entries into Oklab once, up
// front, so that every subsequent classification is a handful of
// float comparisons rather than a repeated color-space conversion.
func NewNearest(pal *piet.Palette) *Nearest {
	n := &Nearest{}
	for i, rgba := range pal {
		n.labs[i] = okcolor.LabModel.Convert(rgba).(okcolor.Lab)
	}
	return n
}

// Color returns the canonical color whose Oklab value is closest to
// the given sRGB triple. Ties resolve to the lowest-index (i.e.
// earliest-declared) color.
func (n *Nearest) Color(r, g, b uint8) piet.Color {
	target := okcolor.LabModel.Convert(color.RGBA{R: r, G: g, B: b, A: 0xFF}).(okcolor.Lab)

	best, bestDist := 0, math.MaxFloat64
	for i, lc := range n.labs {
		dL := target.L - lc.L
		da := target.A - lc.A
		db := target.B - lc.B
		dist := dL*dL + da*da + db*db
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return piet.Color(best)
}

// Func adapts n to piet/color's NearestFunc signature.
func (n *Nearest) Func() piet.NearestFunc {
	return n.Color
}
