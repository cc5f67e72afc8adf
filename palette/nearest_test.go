package palette

import (
	"testing"

	piet "piet/color"
)

func TestNearestExactMatches(t *testing.T) {
	pal := piet.Reference
	n := NewNearest(&pal)

	for _, c := range piet.Colors() {
		rgba := pal[c]
		got := n.Color(rgba.R, rgba.G, rgba.B)
		if got != c {
			t.Errorf("Color(%v exact RGB) = %v, want %v", c, got, c)
		}
	}
}

func TestNearestOffPalette(t *testing.T) {
	pal := piet.Reference
	n := NewNearest(&pal)

	// A pixel one shade off reference red should still land on red,
	// not on some unrelated hue.
	got := n.Color(0xFE, 0x02, 0x01)
	if got != piet.Red {
		t.Errorf("Color(near-red) = %v, want %v", got, piet.Red)
	}
}
