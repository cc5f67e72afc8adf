package interp

import (
	"bufio"
	"io"
	"strconv"
)

// isASCIISpace matches the reference implementation's is_ascii_whitespace:
// space, tab, newline, carriage return, and form feed — not the wider
// Unicode whitespace set.
func isASCIISpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	default:
		return false
	}
}

// Stdin reads program input as Unicode scalar values, exposing both a
// single-rune reader (for in(char)) and a whitespace-delimited word
// reader (for in(number)), matching the reference interpreter's
// framing rather than line-based input.
type Stdin struct {
	r *bufio.Reader
}

func NewStdin(r io.Reader) *Stdin {
	return &Stdin{r: bufio.NewReader(r)}
}

// ReadChar returns the next non-whitespace rune, or false at EOF.
func (s *Stdin) ReadChar() (rune, bool) {
	for {
		r, _, err := s.r.ReadRune()
		if err != nil {
			return 0, false
		}
		if !isASCIISpace(r) {
			return r, true
		}
	}
}

// readWord skips leading whitespace, then collects runes up to the
// next whitespace or EOF. Returns false only if EOF precedes any
// non-whitespace rune.
func (s *Stdin) readWord() (string, bool) {
	var first rune
	for {
		r, _, err := s.r.ReadRune()
		if err != nil {
			return "", false
		}
		if !isASCIISpace(r) {
			first = r
			break
		}
	}

	word := []rune{first}
	for {
		r, _, err := s.r.ReadRune()
		if err != nil {
			break
		}
		if isASCIISpace(r) {
			break
		}
		word = append(word, r)
	}
	return string(word), true
}

// ReadInt reads one whitespace-delimited word and parses it as a
// signed decimal integer. A malformed word is consumed but yields
// false — the unique case where input is consumed without effect.
func (s *Stdin) ReadInt() (int, bool) {
	word, ok := s.readWord()
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(word)
	if err != nil {
		return 0, false
	}
	return n, true
}
