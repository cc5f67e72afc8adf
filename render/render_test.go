package render

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	piet "piet/color"
	"piet/grid"
)

func buildTestGrid(t *testing.T) *grid.Grid {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, piet.Reference[piet.Red])
	img.Set(1, 0, piet.Reference[piet.White])

	g, err := grid.Build(img, grid.Options{CodelSize: 1})
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}
	return g
}

func TestGridDrawsOneBlockPerCodel(t *testing.T) {
	g := buildTestGrid(t)
	img := Grid(g, &piet.Reference, 3)

	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 3 {
		t.Fatalf("bounds = %v, want 6x3", b)
	}

	r, gC, bC, _ := img.At(1, 1).RGBA()
	wantR, wantG, wantB, _ := piet.Reference[piet.Red].RGBA()
	if r != wantR || gC != wantG || bC != wantB {
		t.Errorf("pixel (1,1) = (%d,%d,%d), want red", r, gC, bC)
	}

	r, gC, bC, _ = img.At(4, 1).RGBA()
	wantR, wantG, wantB, _ = piet.Reference[piet.White].RGBA()
	if r != wantR || gC != wantG || bC != wantB {
		t.Errorf("pixel (4,1) = (%d,%d,%d), want white", r, gC, bC)
	}
}

func TestGridDefaultsScaleToOne(t *testing.T) {
	g := buildTestGrid(t)
	img := Grid(g, &piet.Reference, 0)
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Fatalf("bounds = %v, want 2x1", b)
	}
}

func TestCanonicalQuantizesToPaletteEntries(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, piet.Reference[piet.Red])
	src.Set(1, 0, piet.Reference[piet.White])

	dest := Canonical(src, &piet.Reference, false)
	if dest.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v, want 2x1", dest.Bounds())
	}

	r, g, b, _ := dest.At(0, 0).RGBA()
	wantR, wantG, wantB, _ := piet.Reference[piet.Red].RGBA()
	if r != wantR || g != wantG || b != wantB {
		t.Errorf("quantized pixel (0,0) = (%d,%d,%d), want red", r, g, b)
	}
}

func TestSaveRoundTripsPNG(t *testing.T) {
	g := buildTestGrid(t)
	img := Grid(g, &piet.Reference, 1)

	path := filepath.Join(t.TempDir(), "out.png")
	if err := Save(img, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not reopen saved render: %v", err)
	}
	defer f.Close()

	decoded, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("could not decode saved render: %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds = %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestSaveDispatchesByExtension(t *testing.T) {
	g := buildTestGrid(t)
	img := Grid(g, &piet.Reference, 1)

	path := filepath.Join(t.TempDir(), "out.gif")
	if err := Save(img, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("could not reopen saved render: %v", err)
	}
	defer f.Close()

	_, format, err := image.Decode(f)
	if err != nil {
		t.Fatalf("could not decode saved render: %v", err)
	}
	if format != "gif" {
		t.Errorf("format = %q, want gif", format)
	}
}
