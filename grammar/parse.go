package grammar

import (
	"log/slog"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/clip/pkg"
)

// Compile parses one pattern's text and appends its compiled tables to
// the arena, returning the arena index of the pattern's root sequence.
//
// The mini-language: `<name>` or `<name:type>` value slot; bare word
// literal keyword; `-x` / `--long` option reference (resolved against
// res); `[...]` optionality; `(a|b|c)` alternation; trailing `...`
// repetition; whitespace sequencing.
//
// Compile is a build-time-only operation. On error the arena is left as
// it was before the call.
func (g *Grammar) Compile(text string, res Resolver) (int, error) {
	p := &parser{input: []byte(text), res: res}

	root, err := p.parsePattern()
	if err != nil {
		return 0, err
	}

	mark := arenaMark{
		syms:  len(g.Syms),
		elems: len(g.Elems),
		seqs:  len(g.Seqs),
		alts:  len(g.Alts),
	}

	in := interner{g: g, source: text}

	idx, err := in.seq(root)
	if err != nil {
		g.truncate(mark)

		return 0, err
	}

	g.Roots = append(g.Roots, idx)

	return idx, nil
}

// arenaMark records table lengths so a failed compile can be rolled back.
type arenaMark struct {
	syms, elems, seqs, alts int
}

func (g *Grammar) truncate(m arenaMark) {
	g.Syms = g.Syms[:m.syms]
	g.Elems = g.Elems[:m.elems]
	g.Seqs = g.Seqs[:m.seqs]
	g.Alts = g.Alts[:m.alts]
}

// Parse tree nodes. The parser builds this throwaway tree first; the
// interner then flattens it so each sequence's elements and each
// alternation's branches occupy contiguous arena runs.

type seqNode struct {
	elems []*node
	end   int
}

type node struct {
	typ ElemType
	sym Sym        // ElemSym
	seq *seqNode   // ElemOpt, ElemRep
	alt []*seqNode // ElemAlt
	end int
}

// parser holds the pattern text scanning state.
type parser struct {
	input   []byte
	pos     int
	nparams int
	res     Resolver
}

// parsePattern parses the entire input as the pattern's root sequence.
// Only the root sequence may be empty.
func (p *parser) parsePattern() (*seqNode, error) {
	root, err := p.parseSeq(0)
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.eof() {
		return nil, p.fail(ErrStrayToken, p.pos)
	}

	return root, nil
}

// parseSeq parses elements until EOF, '|', or the group terminator.
// term is 0 at the top level.
func (p *parser) parseSeq(term byte) (*seqNode, error) {
	s := new(seqNode)

	for {
		p.skipSpace()

		if p.eof() {
			break
		}

		c := p.peek()
		if c == '|' || byte(c) == term {
			break
		}

		if c == ']' || c == ')' {
			// Closer for a group we are not inside of.
			return nil, p.fail(ErrStrayToken, p.pos)
		}

		elem, err := p.parseElem()
		if err != nil {
			return nil, err
		}

		// Trailing '...' wraps the preceding element in a repetition,
		// zero-or-more. Stacked ellipses are accepted and idempotent.
		for p.peekN(3) == "..." {
			p.pos += 3
			elem = &node{
				typ: ElemRep,
				seq: &seqNode{elems: []*node{elem}, end: elem.end},
				end: p.pos,
			}
		}

		s.elems = append(s.elems, elem)
		s.end = elem.end
	}

	return s, nil
}

// parseElem parses one element: a group, a slot, or a word.
func (p *parser) parseElem() (*node, error) {
	start := p.pos

	switch p.peek() {
	case '[':
		p.advance()

		branches, err := p.parseAlt(']')
		if err != nil {
			return nil, err
		}

		if !p.expect(']') {
			return nil, p.fail(ErrUnterminatedGroup, start)
		}

		err = checkBranches(p, branches, start)
		if err != nil {
			return nil, err
		}

		if len(branches) == 1 {
			return &node{typ: ElemOpt, seq: branches[0], end: p.pos}, nil
		}

		// Optional alternation: an opt element wrapping a single-element
		// sequence holding the alternation.
		inner := &node{typ: ElemAlt, alt: branches, end: p.pos}

		return &node{
			typ: ElemOpt,
			seq: &seqNode{elems: []*node{inner}, end: p.pos},
			end: p.pos,
		}, nil

	case '(':
		p.advance()

		branches, err := p.parseAlt(')')
		if err != nil {
			return nil, err
		}

		if !p.expect(')') {
			return nil, p.fail(ErrUnterminatedGroup, start)
		}

		err = checkBranches(p, branches, start)
		if err != nil {
			return nil, err
		}

		return &node{typ: ElemAlt, alt: branches, end: p.pos}, nil

	case '<':
		return p.parseSlot()

	case '.':
		if p.peekN(3) == "..." {
			return nil, p.fail(ErrDanglingEllipsis, start)
		}

		return p.parseWord()

	default:
		return p.parseWord()
	}
}

// checkBranches rejects empty groups and empty alternative branches.
func checkBranches(p *parser, branches []*seqNode, start int) error {
	for _, b := range branches {
		if len(b.elems) > 0 {
			continue
		}

		if len(branches) == 1 {
			return p.fail(ErrEmptyGroup, start)
		}

		return p.fail(ErrEmptyAlternative, start)
	}

	return nil
}

// parseAlt parses '|'-separated branches up to the group terminator.
// Branches bind the same handler parameters, so each branch numbers its
// slots from the ordinal base at the group's start; the interner later
// rejects branches with uneven parameter counts.
func (p *parser) parseAlt(term byte) ([]*seqNode, error) {
	branches := make([]*seqNode, 0, 2)

	base := p.nparams
	high := base

	for {
		p.nparams = base

		b, err := p.parseSeq(term)
		if err != nil {
			return nil, err
		}

		if p.nparams > high {
			high = p.nparams
		}

		branches = append(branches, b)

		p.skipSpace()

		if p.peek() == '|' {
			p.advance()

			continue
		}

		p.nparams = high

		return branches, nil
	}
}

// parseSlot parses `<name>` or `<name:type>`.
func (p *parser) parseSlot() (*node, error) {
	start := p.pos
	p.advance() // skip '<'

	name := p.takeWhile(func(r rune) bool {
		return r != ':' && r != '>' && !unicode.IsSpace(r)
	})

	slotType := ""
	if p.peek() == ':' {
		p.advance()

		slotType = p.takeWhile(func(r rune) bool {
			return r != '>' && !unicode.IsSpace(r)
		})
	}

	if !p.expect('>') {
		return nil, p.fail(ErrUnterminatedSlot, start)
	}

	if name == "" {
		return nil, p.fail(ErrEmptySlotName, start)
	}

	sym := Sym{
		Kind:     SymSlot,
		Lexeme:   name,
		SlotType: slotType,
		Opt:      -1,
		Param:    p.nparams,
		Pos:      start,
	}
	p.nparams++

	return &node{typ: ElemSym, sym: sym, end: p.pos}, nil
}

// parseWord parses a bare word: a literal keyword, or an option
// reference when dash-prefixed.
func (p *parser) parseWord() (*node, error) {
	start := p.pos

	word := p.takeWhile(func(r rune) bool {
		switch r {
		case '[', ']', '(', ')', '|', '<', '>':
			return false
		}

		if r == '.' && p.peekN(3) == "..." {
			return false
		}

		return !unicode.IsSpace(r)
	})

	if word == "" {
		return nil, p.fail(ErrStrayToken, start)
	}

	sym := Sym{Kind: SymKeyword, Lexeme: word, Opt: -1, Param: -1, Pos: start}

	if isOptionForm(word) {
		idx, ok := 0, false
		if p.res != nil {
			idx, ok = p.res.ResolveOption(word)
		}

		if !ok {
			return nil, p.fail(ErrUndeclaredOption, start,
				slog.String("option", word))
		}

		sym.Kind = SymOption
		sym.Opt = idx
	}

	return &node{typ: ElemSym, sym: sym, end: p.pos}, nil
}

// isOptionForm reports whether a pattern word is an option reference.
// Bare "-" and "--" are ordinary literals.
func isOptionForm(word string) bool {
	return len(word) > 1 && word[0] == '-' && word != "--"
}

// Scanner helpers.

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRune(p.input[p.pos:])

	return r
}

func (p *parser) peekN(n int) string {
	if p.pos+n > len(p.input) {
		return string(p.input[p.pos:])
	}

	return string(p.input[p.pos : p.pos+n])
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	_, size := utf8.DecodeRune(p.input[p.pos:])
	p.pos += size
}

func (p *parser) expect(ch rune) bool {
	if p.peek() == ch {
		p.advance()

		return true
	}

	return false
}

func (p *parser) eof() bool { return p.pos >= len(p.input) }

func (p *parser) skipSpace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

// takeWhile consumes and returns the run of runes satisfying cond.
func (p *parser) takeWhile(cond func(rune) bool) string {
	start := p.pos

	for !p.eof() && cond(p.peek()) {
		p.advance()
	}

	return string(p.input[start:p.pos])
}

// fail decorates a grammar sentinel with the pattern text and position.
func (p *parser) fail(err *pkg.Error, pos int, attrs ...slog.Attr) error {
	return err.
		With(slog.String("pattern", string(p.input)), slog.Int("pos", pos)).
		With(attrs...)
}

// interner flattens a parse tree into the arena. Sequences are interned
// bottom-up so that each sequence's elements, and each alternation's
// branch sequences, land in contiguous runs.
type interner struct {
	g      *Grammar
	source string
}

// elemMeta carries the analysis results needed by enclosing structures.
type elemMeta struct {
	elem     Elem
	nullable bool
	params   int
}

// seq interns a sequence and returns its arena index.
func (in *interner) seq(s *seqNode) (int, error) {
	body, err := in.seqBody(s)
	if err != nil {
		return 0, err
	}

	in.g.Seqs = append(in.g.Seqs, body)

	return len(in.g.Seqs) - 1, nil
}

// seqBody interns a sequence's elements and computes its analysis
// results without appending the Seq entry itself. Alternation branches
// use this directly so sibling branches can be appended contiguously.
func (in *interner) seqBody(s *seqNode) (Seq, error) {
	metas := make([]elemMeta, len(s.elems))

	for i, n := range s.elems {
		m, err := in.node(n)
		if err != nil {
			return Seq{}, err
		}

		metas[i] = m
	}

	offset := len(in.g.Elems)

	nullable := true
	params := 0

	for _, m := range metas {
		in.g.Elems = append(in.g.Elems, m.elem)
		nullable = nullable && m.nullable
		params += m.params
	}

	return Seq{
		NumElems:    len(metas),
		ElemsOffset: offset,
		NumParams:   params,
		EndPos:      s.end,
		Nullable:    nullable,
	}, nil
}

// node interns one element subtree.
func (in *interner) node(n *node) (elemMeta, error) {
	switch n.typ {
	case ElemSym:
		si := len(in.g.Syms)
		in.g.Syms = append(in.g.Syms, n.sym)

		isParam := n.sym.Kind == SymSlot
		params := 0

		if isParam {
			params = 1
		}

		return elemMeta{
			elem: Elem{
				Type:    ElemSym,
				IsParam: isParam,
				Index:   si,
				EndPos:  n.end,
			},
			// Option symbols consume no positional tokens.
			nullable: n.sym.Kind == SymOption,
			params:   params,
		}, nil

	case ElemOpt, ElemRep:
		si, err := in.seq(n.seq)
		if err != nil {
			return elemMeta{}, err
		}

		params := in.g.Seqs[si].NumParams

		return elemMeta{
			elem: Elem{
				Type:        n.typ,
				IsParam:     params > 0,
				Collapsible: params == 0,
				Index:       si,
				EndPos:      n.end,
			},
			nullable: true,
			params:   params,
		}, nil

	case ElemAlt:
		bodies := make([]Seq, len(n.alt))

		for i, b := range n.alt {
			body, err := in.seqBody(b)
			if err != nil {
				return elemMeta{}, err
			}

			bodies[i] = body
		}

		params := bodies[0].NumParams
		for _, b := range bodies[1:] {
			if b.NumParams != params {
				return elemMeta{}, ErrUnevenParams.With(
					slog.String("pattern", in.source),
					slog.Int("pos", n.end),
				)
			}
		}

		offset := len(in.g.Seqs)
		nullableSeq := -1

		for i, b := range bodies {
			in.g.Seqs = append(in.g.Seqs, b)

			if b.Nullable && nullableSeq < 0 {
				nullableSeq = offset + i
			}
		}

		ai := len(in.g.Alts)
		in.g.Alts = append(in.g.Alts, Alt{
			NumSeqs:     len(bodies),
			SeqsOffset:  offset,
			NullableSeq: nullableSeq,
		})

		return elemMeta{
			elem: Elem{
				Type:        ElemAlt,
				IsParam:     params > 0,
				Collapsible: params == 0,
				Index:       ai,
				EndPos:      n.end,
			},
			nullable: nullableSeq >= 0,
			params:   params,
		}, nil

	default:
		panic("grammar: invalid parse node type")
	}
}
