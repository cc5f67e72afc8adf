// Package block discovers connected same-color regions ("color
// blocks") in a codel grid and computes, for each block, the eight
// directional extrema that the direction machine steps from.
package block

import (
	"piet/color"
	"piet/grid"
)

// DP is the direction pointer: the compass direction the interpreter
// will next try to leave the current block from.
type DP int

const (
	Right DP = iota
	Down
	Left
	Up
)

func (d DP) String() string {
	switch d {
	case Right:
		return "right"
	case Down:
		return "down"
	case Left:
		return "left"
	case Up:
		return "up"
	default:
		return "dp(?)"
	}
}

// Clockwise returns d rotated one quarter-turn clockwise.
func (d DP) Clockwise() DP { return DP((int(d) + 1) % 4) }

// RotateClockwise rotates d by n quarter-turns clockwise; n may be
// negative or any magnitude, matching the pointer command's "rotate
// by n, mod 4" semantics.
func (d DP) RotateClockwise(n int) DP {
	return DP((((int(d)+n)%4)+4)%4)
}

// Delta returns the (row,col) unit step in direction d.
func (d DP) Delta() (dr, dc int) {
	switch d {
	case Right:
		return 0, 1
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	default: // Up
		return -1, 0
	}
}

// CC is the codel chooser: a side, relative to DP.
type CC int

const (
	CCLeft CC = iota
	CCRight
)

func (c CC) String() string {
	if c == CCLeft {
		return "left"
	}
	return "right"
}

// Flip returns the opposite codel chooser.
func (c CC) Flip() CC {
	if c == CCLeft {
		return CCRight
	}
	return CCLeft
}

// secondary returns the direction obtained by rotating dp 90° toward
// cc: clockwise for CCRight, counterclockwise for CCLeft. This is the
// single place the two-stage extremum tie-break rule is expressed.
func secondary(dp DP, cc CC) DP {
	if cc == CCRight {
		return dp.Clockwise()
	}
	return dp.RotateClockwise(-1)
}

// Coord is a codel position: Row increases downward, Col rightward.
type Coord struct {
	Row, Col int
}

func (c Coord) less(o Coord) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

func (d DP) project(c Coord) int {
	dr, dc := d.Delta()
	return dr*c.Row + dc*c.Col
}

// Block is a maximal 4-connected region of codels sharing one
// chromatic color, plus its eight (DP,CC) directional extrema.
type Block struct {
	Color   color.Color
	Size    int
	extrema [4][2]Coord // indexed [DP][CC]
}

// Extremum returns the unique codel of the block selected by DP and
// CC, per the two-stage tie-break (furthest in the DP direction,
// then furthest in the direction DP rotated 90° toward CC).
func (b *Block) Extremum(dp DP, cc CC) Coord {
	return b.extrema[dp][cc]
}

// Finder discovers and caches color blocks within a fixed grid. A
// Finder is single-owner and never invalidated: the grid it wraps is
// immutable for the run.
type Finder struct {
	g   *grid.Grid
	rep map[Coord]Coord // any visited member -> its block's canonical (smallest) coordinate
	byRep map[Coord]*Block
}

// NewFinder creates a Finder over g. Blocks are discovered lazily.
func NewFinder(g *grid.Grid) *Finder {
	return &Finder{g: g, rep: make(map[Coord]Coord), byRep: make(map[Coord]*Block)}
}

// Find returns the chromatic block containing at, discovering it via
// flood fill on first visit and serving cached results thereafter.
// at must name a chromatic codel; white and black have no blocks.
func (f *Finder) Find(at Coord) *Block {
	if rep, ok := f.rep[at]; ok {
		return f.byRep[rep]
	}
	return f.discover(at)
}

func (f *Finder) discover(start Coord) *Block {
	col := f.g.At(start.Row, start.Col)

	members := []Coord{start}
	visited := map[Coord]bool{start: true}
	queue := []Coord{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range [4]DP{Right, Down, Left, Up} {
			dr, dc := d.Delta()
			next := Coord{Row: cur.Row + dr, Col: cur.Col + dc}
			if !f.g.InBounds(next.Row, next.Col) || visited[next] {
				continue
			}
			if f.g.At(next.Row, next.Col) != col {
				continue
			}
			visited[next] = true
			members = append(members, next)
			queue = append(queue, next)
		}
	}

	rep := members[0]
	for _, m := range members[1:] {
		if m.less(rep) {
			rep = m
		}
	}

	b := &Block{Color: col, Size: len(members)}
	for _, dp := range [4]DP{Right, Down, Left, Up} {
		primary := bestBy(members, dp)
		for _, cc := range [2]CC{CCLeft, CCRight} {
			sd := secondary(dp, cc)
			b.extrema[dp][cc] = bestBy(primary, sd)[0]
		}
	}

	f.byRep[rep] = b
	for _, m := range members {
		f.rep[m] = rep
	}
	return b
}

// bestBy returns the subset of coords with the maximum projection
// onto d's direction vector — the set of "furthest in direction d"
// candidates used by both stages of the extremum tie-break.
func bestBy(coords []Coord, d DP) []Coord {
	best := coords[0]
	bestP := d.project(best)
	for _, c := range coords[1:] {
		if p := d.project(c); p > bestP {
			best, bestP = c, p
		}
	}
	out := make([]Coord, 0, 1)
	for _, c := range coords {
		if d.project(c) == bestP {
			out = append(out, c)
		}
	}
	return out
}
