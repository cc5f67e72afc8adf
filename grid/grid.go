// Package grid builds the immutable codel grid an interpreter run
// executes against: decoding the source image, inferring (or
// validating) the codel size, and classifying every codel into one of
// the twenty canonical colors.
package grid

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/vp8l"
	_ "golang.org/x/image/webp"

	piet "piet/color"
)

// Options configures grid construction. A zero Options infers the
// codel size and classifies under the Strict policy against the
// reference palette.
type Options struct {
	// CodelSize, if non-zero, is validated rather than inferred.
	CodelSize int
	// Palette overrides the reference RGB table, e.g. from
	// --palette-file. Nil means piet/color.Reference.
	Palette *piet.Palette
	Policy  piet.Policy
	Nearest piet.NearestFunc
}

// Grid is an immutable H'×W' array of canonical colors. Origin (0,0)
// is the top-left codel; Row increases downward, Col rightward.
type Grid struct {
	Rows, Cols int
	CodelSize  int
	cells      []piet.Color
}

func (g *Grid) At(row, col int) piet.Color { return g.cells[row*g.Cols+col] }

// InBounds reports whether (row,col) is a valid codel coordinate.
func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

// Decode opens and decodes path using the registered image decoders
// (stdlib PNG/GIF/JPEG plus x/image's BMP/TIFF/WEBP/VP8L), per the
// reference interpreter's "any raster format a generic decoder
// supports" requirement.
func Decode(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, format, nil
}

// Build classifies img into a Grid under opts, inferring the codel
// size when opts.CodelSize is zero.
func Build(img image.Image, opts Options) (*Grid, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image has zero dimension (%dx%d)", width, height)
	}

	size := opts.CodelSize
	if size == 0 {
		var err error
		size, err = InferCodelSize(img)
		if err != nil {
			return nil, err
		}
	} else if !ValidCodelSize(img, size) {
		return nil, fmt.Errorf("configured codel size %d is not valid for a %dx%d image", size, width, height)
	}

	pal := piet.Reference
	if opts.Palette != nil {
		pal = *opts.Palette
	}

	rows, cols := height/size, width/size
	g := &Grid{Rows: rows, Cols: cols, CodelSize: size, cells: make([]piet.Color, rows*cols)}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			x := bounds.Min.X + c*size
			y := bounds.Min.Y + r*size
			px := img.At(x, y)
			col, err := piet.Classify(&pal, opts.Policy, opts.Nearest, x, y, px)
			if err != nil {
				return nil, err
			}
			g.cells[r*cols+c] = col
		}
	}
	return g, nil
}

// InferCodelSize returns the largest n that divides both img's width
// and height such that every aligned n×n block of pixels is a single
// solid RGB color — the maximum valid codel size, per the reference
// specification's divisor-closure rule. It enumerates divisors of
// gcd(width,height) from largest to smallest and returns the first
// that validates.
func InferCodelSize(img image.Image) (int, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	g := gcd(width, height)
	for _, n := range divisorsDesc(g) {
		if validAt(img, n) {
			return n, nil
		}
	}
	return 0, fmt.Errorf("no valid codel size found for a %dx%d image", width, height)
}

// ValidCodelSize reports whether n is a valid codel size for img: it
// must divide both dimensions, and every aligned n×n pixel block must
// be a single solid color.
func ValidCodelSize(img image.Image, n int) bool {
	if n <= 0 {
		return false
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width%n != 0 || height%n != 0 {
		return false
	}
	return validAt(img, n)
}

func validAt(img image.Image, n int) bool {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width%n != 0 || height%n != 0 {
		return false
	}

	for by := 0; by < height; by += n {
		for bx := 0; bx < width; bx += n {
			r0, g0, b0, a0 := img.At(bounds.Min.X+bx, bounds.Min.Y+by).RGBA()
			for dy := 0; dy < n; dy++ {
				for dx := 0; dx < n; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					r, g, b, a := img.At(bounds.Min.X+bx+dx, bounds.Min.Y+by+dy).RGBA()
					if r != r0 || g != g0 || b != b0 || a != a0 {
						return false
					}
				}
			}
		}
	}
	return true
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// divisorsDesc returns every positive divisor of n, largest first.
func divisorsDesc(n int) []int {
	if n <= 0 {
		return nil
	}
	var small, large []int
	for i := 1; i*i <= n; i++ {
		if n%i == 0 {
			small = append(small, i)
			if j := n / i; j != i {
				large = append(large, j)
			}
		}
	}
	for i, j := 0, len(small)-1; i < j; i, j = i+1, j-1 {
		small[i], small[j] = small[j], small[i]
	}
	return append(large, small...)
}
