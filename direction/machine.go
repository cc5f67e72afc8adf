// Package direction implements the (DP,CC) step automaton that moves
// the program counter from one color block to the next, handling
// black/edge obstacles, white-codel slides, and termination.
package direction

import (
	"piet/block"
	"piet/color"
	"piet/grid"
)

// Transition is a committed chromatic-to-chromatic move: the command
// dispatcher decodes a command from From and To.
type Transition struct {
	From, To color.Color
	FromSize int
}

// Outcome classifies what a Step produced.
type Outcome int

const (
	// Moved is a committed chromatic-block-exit: Result.Transition is
	// valid and a command should be dispatched.
	Moved Outcome = iota
	// Rotated is a pure state change with no command: either an
	// obstacle bounce that ultimately succeeded via white-slide, or a
	// slide landing directly on a new chromatic block.
	Rotated
	// Terminated means the run is over: eight consecutive exit
	// failures, or a white-slide cycle.
	Terminated
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Rotated:
		return "rotated"
	case Terminated:
		return "terminated"
	default:
		return "outcome(?)"
	}
}

// Result is the outcome of one Step.
type Result struct {
	Outcome    Outcome
	Transition Transition
}

// Machine holds the interpreter's (DP,CC,PC) state and steps it
// according to the Piet traversal rules. It is not safe for
// concurrent use; each Machine drives exactly one program run.
type Machine struct {
	g      *grid.Grid
	finder *block.Finder
	pc     block.Coord
	dp     block.DP
	cc     block.CC
}

// NewMachine creates a Machine starting at start with DP pointing
// right and CC pointing left, the Piet language defaults. start must
// name a chromatic codel.
func NewMachine(g *grid.Grid, finder *block.Finder, start block.Coord) *Machine {
	return &Machine{g: g, finder: finder, pc: start, dp: block.Right, cc: block.CCLeft}
}

func (m *Machine) PC() block.Coord { return m.pc }
func (m *Machine) DP() block.DP    { return m.dp }
func (m *Machine) CC() block.CC    { return m.cc }

// SetDP and SetCC let the pointer/switch commands mutate direction
// state directly; the step automaton otherwise owns these fields.
func (m *Machine) SetDP(dp block.DP) { m.dp = dp }
func (m *Machine) SetCC(cc block.CC) { m.cc = cc }

// Step advances the machine by exactly one productive iteration: it
// resolves obstacle bounces and white slides internally, returning
// only once it has a committed transition, a pure rotation, or a
// termination.
func (m *Machine) Step() Result {
	b := m.finder.Find(m.pc)

	for attempt := 0; attempt < 8; attempt++ {
		exit := b.Extremum(m.dp, m.cc)
		dr, dc := m.dp.Delta()
		cand := block.Coord{Row: exit.Row + dr, Col: exit.Col + dc}

		if !m.g.InBounds(cand.Row, cand.Col) || m.g.At(cand.Row, cand.Col).IsBlack() {
			if attempt%2 == 0 {
				m.cc = m.cc.Flip()
			} else {
				m.dp = m.dp.Clockwise()
			}
			continue
		}

		target := m.g.At(cand.Row, cand.Col)
		if target.IsWhite() {
			m.pc = cand
			return m.slide()
		}

		t := Transition{From: b.Color, To: target, FromSize: b.Size}
		m.pc = cand
		return Result{Outcome: Moved, Transition: t}
	}

	return Result{Outcome: Terminated}
}

type visitKey struct {
	c  block.Coord
	dp block.DP
}

// slide resolves a white-codel crossing: it walks straight along DP
// until it reaches a chromatic codel (success) or revisits a
// (codel,DP) pair already seen in this slide episode (cycle,
// terminate). Hitting black or the edge bounces CC and DP together
// and resumes sliding from where the obstacle was found.
func (m *Machine) slide() Result {
	visited := make(map[visitKey]bool)
	for {
		key := visitKey{c: m.pc, dp: m.dp}
		if visited[key] {
			return Result{Outcome: Terminated}
		}
		visited[key] = true

		dr, dc := m.dp.Delta()
		cand := block.Coord{Row: m.pc.Row + dr, Col: m.pc.Col + dc}

		blocked := !m.g.InBounds(cand.Row, cand.Col)
		var target color.Color
		if !blocked {
			target = m.g.At(cand.Row, cand.Col)
			blocked = target.IsBlack()
		}

		if blocked {
			m.cc = m.cc.Flip()
			m.dp = m.dp.Clockwise()
			continue
		}

		m.pc = cand
		if target.IsWhite() {
			continue
		}
		return Result{Outcome: Rotated}
	}
}
