package direction

import (
	"image"
	"testing"

	"piet/block"
	"piet/color"
	"piet/grid"
)

func newTestGrid(t *testing.T, cells [][]color.Color) *grid.Grid {
	t.Helper()
	rows := len(cells)
	cols := len(cells[0])

	img := image.NewRGBA(image.Rect(0, 0, cols, rows))
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.Set(c, r, color.Reference[cells[r][c]])
		}
	}

	g, err := grid.Build(img, grid.Options{CodelSize: 1})
	if err != nil {
		t.Fatalf("grid.Build: %v", err)
	}
	return g
}

func TestStepMovesBetweenAdjacentChromaticBlocks(t *testing.T) {
	g := newTestGrid(t, [][]color.Color{
		{color.Red, color.Green},
	})
	m := NewMachine(g, block.NewFinder(g), block.Coord{Row: 0, Col: 0})

	res := m.Step()
	if res.Outcome != Moved {
		t.Fatalf("Outcome = %v, want Moved", res.Outcome)
	}
	if res.Transition.From != color.Red || res.Transition.To != color.Green {
		t.Errorf("Transition = %v->%v, want Red->Green", res.Transition.From, res.Transition.To)
	}
	if res.Transition.FromSize != 1 {
		t.Errorf("FromSize = %d, want 1", res.Transition.FromSize)
	}
	if m.PC() != (block.Coord{Row: 0, Col: 1}) {
		t.Errorf("PC = %v, want (0,1)", m.PC())
	}
}

func TestStepTerminatesAfterEightFailedAttempts(t *testing.T) {
	g := newTestGrid(t, [][]color.Color{
		{color.Red},
	})
	m := NewMachine(g, block.NewFinder(g), block.Coord{Row: 0, Col: 0})

	res := m.Step()
	if res.Outcome != Terminated {
		t.Fatalf("Outcome = %v, want Terminated", res.Outcome)
	}
}

func TestStepBlackObstacleBouncesThenSucceeds(t *testing.T) {
	// Red's immediate right neighbor is black, but after one CC flip
	// (right,left -> right,right) the lower-right exit's candidate
	// lands on green instead.
	r, bk, gr, w := color.Red, color.Black, color.Green, color.White
	g := newTestGrid(t, [][]color.Color{
		{r, r, bk},
		{r, r, gr},
		{w, w, w},
	})
	m := NewMachine(g, block.NewFinder(g), block.Coord{Row: 0, Col: 0})

	res := m.Step()
	if res.Outcome != Moved {
		t.Fatalf("Outcome = %v, want Moved", res.Outcome)
	}
	if res.Transition.To != gr {
		t.Errorf("Transition.To = %v, want green", res.Transition.To)
	}
	if m.CC() != block.CCRight {
		t.Errorf("CC = %v, want right (one flip occurred)", m.CC())
	}
}

func TestStepWhiteSlideLandsOnChromaticBlock(t *testing.T) {
	r, w, gr := color.Red, color.White, color.Green
	g := newTestGrid(t, [][]color.Color{
		{r, w, w, gr},
	})
	m := NewMachine(g, block.NewFinder(g), block.Coord{Row: 0, Col: 0})

	res := m.Step()
	if res.Outcome != Rotated {
		t.Fatalf("Outcome = %v, want Rotated (slide, no command)", res.Outcome)
	}
	if m.PC() != (block.Coord{Row: 0, Col: 3}) {
		t.Errorf("PC = %v, want (0,3)", m.PC())
	}

	// Green sits at the grid's edge: its right and down exits run off
	// the grid (four failed attempts), after which DP points left onto
	// the white run, so the next step slides back onto red.
	res = m.Step()
	if res.Outcome != Rotated {
		t.Fatalf("Outcome = %v, want Rotated (slide back to red)", res.Outcome)
	}
}

func TestStepWhiteCycleTerminates(t *testing.T) {
	w, r := color.White, color.Red
	g := newTestGrid(t, [][]color.Color{
		{w, w, w},
		{w, r, w},
		{w, w, w},
	})
	m := NewMachine(g, block.NewFinder(g), block.Coord{Row: 1, Col: 1})

	res := m.Step()
	if res.Outcome != Terminated {
		t.Fatalf("Outcome = %v, want Terminated (white cycle)", res.Outcome)
	}
}
