package spec

import (
	"path/filepath"
	"strings"
)

// Args is a borrowed view over an argument vector: the original slice,
// an offset to the first unprocessed token, and the program-name chain
// accumulated across delegation levels. Args never copies the vector,
// so a delegated handler hands the engine the exact argv suffix at its
// original positions.
type Args struct {
	argv   []string
	offset int
	prog   []string
}

// NewArgs wraps a full argument vector. argv[0] is the program name;
// tokens begin at argv[1].
func NewArgs(argv []string) Args {
	a := Args{argv: argv, offset: 1}

	if len(argv) > 0 {
		a.prog = []string{filepath.Base(argv[0])}
	} else {
		a.offset = 0
	}

	return a
}

// Tokens returns the unprocessed tokens of this view.
func (a Args) Tokens() []string { return a.argv[a.offset:] }

// Argv returns the original, full argument vector.
func (a Args) Argv() []string { return a.argv }

// Offset returns the index of the first unprocessed token within the
// original vector.
func (a Args) Offset() int { return a.offset }

// Prog returns the program-name chain joined with spaces, e.g.
// "prog remote add" three delegation levels deep.
func (a Args) Prog() string { return strings.Join(a.prog, " ") }

// suffix derives the borrowed view a delegated handler receives: same
// vector, offset advanced to cut, program chain extended by the
// positional words the parent consumed.
func (a Args) suffix(cut int, consumed []string) Args {
	prog := make([]string, 0, len(a.prog)+len(consumed))
	prog = append(prog, a.prog...)
	prog = append(prog, consumed...)

	return Args{argv: a.argv, offset: cut, prog: prog}
}
