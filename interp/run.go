package interp

import (
	"fmt"
	"io"
	"log/slog"

	"piet/block"
	"piet/direction"
	"piet/grid"
)

// Status reports how a Run terminated.
type Status int

const (
	// Completed means the direction machine reached its own
	// termination condition (eight failed attempts, or a white-slide
	// cycle) before any iteration cap was hit.
	Completed Status = iota
	// Capped means Options.MaxIter steps ran without the program
	// terminating on its own.
	Capped
)

func (s Status) String() string {
	if s == Capped {
		return "capped"
	}
	return "completed"
}

// Options configures a Run.
type Options struct {
	// MaxIter caps the number of steps; zero means unlimited.
	MaxIter int
	// Logger, if non-nil, receives a per-step trace entry at Info
	// level: coordinate, DP, CC, step outcome, command, and the stack
	// contents.
	Logger *slog.Logger
}

// Run drives the direction machine and command dispatcher against g,
// starting the program counter at (0,0), until the machine terminates
// or opts.MaxIter steps have run. It reports how many steps actually
// ran and how execution ended.
func Run(g *grid.Grid, in io.Reader, out io.Writer, opts Options) (Status, int, error) {
	finder := block.NewFinder(g)
	m := direction.NewMachine(g, finder, block.Coord{})
	ip := New(in, out)

	steps := 0
	for opts.MaxIter <= 0 || steps < opts.MaxIter {
		res := m.Step()
		steps++

		cmd := NoCommand
		if res.Outcome == direction.Moved {
			cmd = CommandFor(res.Transition.From, res.Transition.To)
		}

		if err := ip.Execute(cmd, res.Transition.FromSize, m); err != nil {
			return Capped, steps, err
		}

		if opts.Logger != nil {
			opts.Logger.Info("step",
				"pc", fmt.Sprintf("%d,%d", m.PC().Row, m.PC().Col),
				"dp", m.DP(), "cc", m.CC(),
				"outcome", res.Outcome, "command", cmd, "stack", ip.Stack)
		}

		if res.Outcome == direction.Terminated {
			return Completed, steps, nil
		}
	}
	return Capped, steps, nil
}
