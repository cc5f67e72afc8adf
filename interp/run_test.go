package interp

import (
	"bytes"
	"image"
	"strings"
	"testing"

	piet "piet/color"
	"piet/grid"
)

func TestRunSingleCodelTerminatesImmediately(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, piet.Reference[piet.Red])
	g, err := grid.Build(img, grid.Options{CodelSize: 1})
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}

	status, steps, err := Run(g, strings.NewReader(""), &bytes.Buffer{}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Completed {
		t.Errorf("status = %v, want completed", status)
	}
	if steps != 1 {
		t.Errorf("steps = %d, want 1", steps)
	}
}

// buildLiteralProgram constructs a two-row, one-pixel-per-codel
// program that writes s to standard output one out(char) at a time.
// Row 0 holds the program. Each character c is encoded as a
// push(len(c)) immediately followed by out(char): a solid run of
// len(c) codels of one light-row color (the value block), then a
// single codel of the same hue one lightness step darker (decoded as
// push on the transition out of the value block), then the next
// block, one hue step back in the light row (decoded as out(char) on
// the transition out of the push codel, which also starts the next
// character's value block). So every value-block-to-push-codel step
// decodes as push (ΔHue=0, ΔLight=1) and every push-codel-to-next-block
// step decodes as out(char) (ΔHue=5, ΔLight=2), matching the command
// table in command.go. Row 1 is black except under the last two
// columns, where it extends the final block into an L shape whose
// every exit hits black or the grid edge, so the program terminates.
func buildLiteralProgram(t *testing.T, s string) *grid.Grid {
	t.Helper()

	runes := []rune(s)
	var pixels []piet.Color
	for i, r := range runes {
		hue := (piet.NumHues - i%piet.NumHues) % piet.NumHues
		valueColor := piet.Color(hue)
		pushColor := piet.Color(piet.NumHues + hue)
		for n := 0; n < int(r); n++ {
			pixels = append(pixels, valueColor)
		}
		pixels = append(pixels, pushColor)
	}
	termColor := piet.Color((piet.NumHues - len(runes)%piet.NumHues) % piet.NumHues)
	pixels = append(pixels, termColor)

	last := len(pixels) - 1
	img := image.NewRGBA(image.Rect(0, 0, len(pixels), 2))
	for x, c := range pixels {
		img.Set(x, 0, piet.Reference[c])
		img.Set(x, 1, piet.Reference[piet.Black])
	}
	img.Set(last-1, 1, piet.Reference[termColor])
	img.Set(last, 1, piet.Reference[termColor])
	g, err := grid.Build(img, grid.Options{CodelSize: 1})
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}
	return g
}

func TestRunHelloWorldLiteralProgram(t *testing.T) {
	g := buildLiteralProgram(t, "Hello, world!\n")

	var out bytes.Buffer
	status, _, err := Run(g, strings.NewReader(""), &out, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Completed {
		t.Errorf("status = %v, want completed", status)
	}
	if out.String() != "Hello, world!\n" {
		t.Errorf("output = %q, want %q", out.String(), "Hello, world!\n")
	}
}

func TestRunAdderProgram(t *testing.T) {
	// in(number), in(number), add, out(number) chained along the top
	// row: LightRed -[in(number)]-> DarkBlue -[in(number)]-> Green
	// -[add]-> Cyan -[out(number)]-> DarkGreen. The bottom row is black
	// except under the last two columns, where it extends DarkGreen
	// into an L shape whose every exit hits black or the grid edge, so
	// the program terminates.
	colors := []piet.Color{piet.LightRed, piet.DarkBlue, piet.Green, piet.Cyan, piet.DarkGreen}
	img := image.NewRGBA(image.Rect(0, 0, len(colors), 2))
	for x, c := range colors {
		img.Set(x, 0, piet.Reference[c])
		img.Set(x, 1, piet.Reference[piet.Black])
	}
	img.Set(len(colors)-2, 1, piet.Reference[piet.DarkGreen])
	img.Set(len(colors)-1, 1, piet.Reference[piet.DarkGreen])
	g, err := grid.Build(img, grid.Options{CodelSize: 1})
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}

	var out bytes.Buffer
	status, _, err := Run(g, strings.NewReader("3\n4\n"), &out, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Completed {
		t.Errorf("status = %v, want completed", status)
	}
	if out.String() != "7" {
		t.Errorf("output = %q, want %q (no trailing newline)", out.String(), "7")
	}
}

func TestRunStopsAtMaxIter(t *testing.T) {
	// A red codel next to a green codel bounces the direction pointer
	// back and forth between the two forever (a genuine infinite
	// Piet program), so this only terminates via the iteration cap.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, piet.Reference[piet.Red])
	img.Set(1, 0, piet.Reference[piet.Green])
	g, err := grid.Build(img, grid.Options{CodelSize: 1})
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}

	status, steps, err := Run(g, strings.NewReader(""), &bytes.Buffer{}, Options{MaxIter: 10})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if status != Capped {
		t.Errorf("status = %v, want capped", status)
	}
	if steps != 10 {
		t.Errorf("steps = %d, want 10", steps)
	}
}

