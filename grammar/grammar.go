package grammar

import "strings"

// SymKind discriminates the three atomic pattern symbols.
type SymKind int

const (
	// SymKeyword is a literal word that must equal an input token.
	SymKeyword SymKind = iota
	// SymOption references a declared option by one of its name forms.
	SymOption
	// SymSlot is a value slot binding one input token to a handler
	// parameter.
	SymSlot
)

// String returns the lowercase name of the symbol kind.
func (k SymKind) String() string {
	switch k {
	case SymKeyword:
		return "keyword"
	case SymOption:
		return "option"
	case SymSlot:
		return "slot"
	default:
		return "unknown"
	}
}

// Sym is an atomic grammar unit.
type Sym struct {
	// Kind selects keyword, option, or value slot.
	Kind SymKind
	// Lexeme is the keyword text, the option name form as written in the
	// pattern, or the slot name.
	Lexeme string
	// SlotType is the slot's parser key ("" selects the string parser).
	// Only meaningful when Kind is SymSlot.
	SlotType string
	// Opt is the registry index of the referenced option, -1 otherwise.
	Opt int
	// Param is the slot's ordinal among all slots of its pattern, in
	// textual order, -1 for non-slot symbols.
	Param int
	// Pos is the byte offset of the symbol in its pattern text.
	Pos int
}

// ElemType discriminates the four element shapes of a sequence.
type ElemType int

const (
	// ElemSym is an atomic symbol. Index references Syms.
	ElemSym ElemType = iota
	// ElemOpt is an optional group. Index references Seqs.
	ElemOpt
	// ElemRep is a zero-or-more repetition. Index references Seqs.
	ElemRep
	// ElemAlt is an alternation. Index references Alts.
	ElemAlt
)

// String returns the lowercase name of the element type.
func (t ElemType) String() string {
	switch t {
	case ElemSym:
		return "sym"
	case ElemOpt:
		return "opt"
	case ElemRep:
		return "rep"
	case ElemAlt:
		return "alt"
	default:
		return "unknown"
	}
}

// Elem is one member of a sequence.
type Elem struct {
	// Type selects the referenced table.
	Type ElemType
	// IsParam is true when the element's subtree binds at least one
	// handler parameter.
	IsParam bool
	// Collapsible is true only for Opt/Rep/Alt elements whose referenced
	// substructure binds zero parameters. Collapsible elements are
	// ignored by ambiguity scoring.
	Collapsible bool
	// Index is a handle into Syms, Seqs, or Alts depending on Type.
	Index int
	// EndPos is the byte offset one past the element in its pattern text.
	EndPos int
}

// Seq is a sequence of elements. Its elements occupy the contiguous run
// Elems[ElemsOffset : ElemsOffset+NumElems].
type Seq struct {
	NumElems    int
	ElemsOffset int
	// NumParams is the number of value slots in the subtree. For a
	// pattern's root sequence this must equal the bound handler's
	// parameter arity.
	NumParams int
	EndPos    int
	// Nullable reports whether the sequence can match zero positional
	// tokens (the AND of member nullability).
	Nullable bool
}

// Alt is an alternation of sequences occupying the contiguous run
// Seqs[SeqsOffset : SeqsOffset+NumSeqs]. NumSeqs is always at least one.
type Alt struct {
	NumSeqs    int
	SeqsOffset int
	// NullableSeq is the arena index of the first nullable branch, or -1
	// when no branch is nullable.
	NullableSeq int
}

// Grammar holds the flat tables for one compiled pattern set. All
// cross-references are integer indices, never pointers, so a Grammar is
// relocatable and safely shareable read-only once built.
//
// One Grammar is exclusively owned by the Spec that built it.
type Grammar struct {
	Syms  []Sym
	Elems []Elem
	Seqs  []Seq
	Alts  []Alt
	// Roots holds the root sequence index of each compiled pattern, in
	// compilation order.
	Roots []int
}

// Resolver decides whether a dash-prefixed pattern word references a
// declared option. It reports the option's registry index.
type Resolver interface {
	ResolveOption(name string) (int, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(string) (int, bool)

// ResolveOption implements Resolver.
func (f ResolverFunc) ResolveOption(name string) (int, bool) { return f(name) }

// Root returns the root sequence of pattern i.
func (g *Grammar) Root(i int) Seq { return g.Seqs[g.Roots[i]] }

// SeqElems returns the element run of a sequence.
func (g *Grammar) SeqElems(s Seq) []Elem {
	return g.Elems[s.ElemsOffset : s.ElemsOffset+s.NumElems]
}

// AltSeqs returns the arena indices of an alternation's branches.
func (g *Grammar) AltSeqs(a Alt) []int {
	idx := make([]int, a.NumSeqs)
	for i := range idx {
		idx[i] = a.SeqsOffset + i
	}

	return idx
}

// Keywords returns the distinct keyword lexemes of pattern i, in textual
// order. Used for suggestion candidates in failure diagnostics.
func (g *Grammar) Keywords(i int) []string {
	seen := make(map[string]struct{})
	words := make([]string, 0, 4)

	var walkSeq func(s Seq)

	walkElem := func(e Elem) {
		switch e.Type {
		case ElemSym:
			sym := g.Syms[e.Index]
			if sym.Kind != SymKeyword {
				return
			}

			if _, ok := seen[sym.Lexeme]; ok {
				return
			}

			seen[sym.Lexeme] = struct{}{}
			words = append(words, sym.Lexeme)
		case ElemOpt, ElemRep:
			walkSeq(g.Seqs[e.Index])
		case ElemAlt:
			for _, si := range g.AltSeqs(g.Alts[e.Index]) {
				walkSeq(g.Seqs[si])
			}
		}
	}

	walkSeq = func(s Seq) {
		for _, e := range g.SeqElems(s) {
			walkElem(e)
		}
	}

	walkSeq(g.Root(i))

	return words
}

// Describe returns a compact human-readable rendering of a symbol for
// "expected ..." diagnostics.
func (s Sym) Describe() string {
	switch s.Kind {
	case SymSlot:
		var sb strings.Builder

		sb.WriteByte('<')
		sb.WriteString(s.Lexeme)

		if s.SlotType != "" {
			sb.WriteByte(':')
			sb.WriteString(s.SlotType)
		}

		sb.WriteByte('>')

		return sb.String()
	default:
		return s.Lexeme
	}
}
