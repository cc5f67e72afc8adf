package interp

import "piet/color"

// Command is one of the seventeen Piet instructions, decoded from the
// hue/lightness step between two adjacent chromatic blocks.
type Command int

const (
	NoCommand Command = iota
	Push
	Pop
	Add
	Subtract
	Multiply
	Divide
	Mod
	Not
	Greater
	Pointer
	Switch
	Duplicate
	Roll
	InNumber
	InChar
	OutNumber
	OutChar
)

func (c Command) String() string {
	names := [...]string{
		"none", "push", "pop", "add", "subtract", "multiply", "divide",
		"mod", "not", "greater", "pointer", "switch", "duplicate", "roll",
		"in(number)", "in(char)", "out(number)", "out(char)",
	}
	if int(c) >= len(names) {
		return "command(?)"
	}
	return names[c]
}

// commandTable is indexed [hueStep][lightStep], hueStep in 0..5,
// lightStep in 0..2.
var commandTable = [color.NumHues][color.NumLightnesses]Command{
	{NoCommand, Push, Pop},
	{Add, Subtract, Multiply},
	{Divide, Mod, Not},
	{Greater, Pointer, Switch},
	{Duplicate, Roll, InNumber},
	{InChar, OutNumber, OutChar},
}

// CommandFor decodes the command for a chromatic-to-chromatic
// transition, from the cyclic hue and lightness steps between the
// source and destination block colors.
func CommandFor(from, to color.Color) Command {
	return commandTable[color.HueStep(from, to)][color.LightStep(from, to)]
}
