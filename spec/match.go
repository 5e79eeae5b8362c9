package spec

import (
	"fmt"
	"strings"

	"github.com/ardnew/clip/grammar"
	"github.com/ardnew/clip/option"
)

// token is one positional word of the argument vector, carrying its
// original index so diagnostics and delegation cuts can point back into
// argv.
type token struct {
	text string
	pos  int
}

// match is one successful parse of one pattern against the scanned
// input.
type match struct {
	pattern int
	binds   []any
	used    []bool
	score   int
	// consumed is the number of positional tokens the parse covers.
	consumed int
	// cut is the argv index of the first token left for a delegate's
	// suffix; len(argv) when everything was consumed.
	cut int
}

// bindUndo is one trail entry: enough to restore a parameter binding
// when the matcher abandons a choice.
type bindUndo struct {
	param int
	rep   bool
	prev  any
}

// matcher carries the mutable state of matching one pattern. Choice
// points snapshot the trail lengths and the score; abandoning a branch
// replays the trail backward.
type matcher struct {
	s       *Spec
	tokens  []token
	invs    []option.Invocation
	argvLen int

	binds []any
	used  []bool
	nused int
	score int

	trail     []bindUndo
	usedTrail []int

	pattern int
	acc     *failures
}

type mark struct {
	trail, usedTrail, score int
}

func (m *matcher) mark() mark {
	return mark{trail: len(m.trail), usedTrail: len(m.usedTrail), score: m.score}
}

func (m *matcher) undo(mk mark) {
	for i := len(m.trail) - 1; i >= mk.trail; i-- {
		u := m.trail[i]
		if u.rep {
			vals := m.binds[u.param].([]any)
			m.binds[u.param] = vals[:len(vals)-1]
		} else {
			m.binds[u.param] = u.prev
		}
	}

	m.trail = m.trail[:mk.trail]

	for i := len(m.usedTrail) - 1; i >= mk.usedTrail; i-- {
		m.used[m.usedTrail[i]] = false
		m.nused--
	}

	m.usedTrail = m.usedTrail[:mk.usedTrail]
	m.score = mk.score
}

// bind records a slot value. Repeated slots accumulate; scalar slots
// keep the latest value.
func (m *matcher) bind(param int, rep bool, v any) {
	if rep {
		var vals []any
		if prev, ok := m.binds[param].([]any); ok {
			vals = prev
		}

		m.binds[param] = append(vals, v)
		m.trail = append(m.trail, bindUndo{param: param, rep: true})

		return
	}

	m.trail = append(m.trail, bindUndo{param: param, prev: m.binds[param]})
	m.binds[param] = v
}

func (m *matcher) use(inv int) {
	m.used[inv] = true
	m.nused++
	m.usedTrail = append(m.usedTrail, inv)
}

// findInvocation returns the first unused invocation of declaration
// decl, in argument order.
func (m *matcher) findInvocation(decl int) (int, bool) {
	for i, inv := range m.invs {
		if !m.used[i] && inv.Decl == decl {
			return i, true
		}
	}

	return 0, false
}

// argvEnd is the argv index one past the matched region: the next
// positional token's own index, or one past the last argument.
func (m *matcher) argvEnd(consumed int) int {
	if consumed < len(m.tokens) {
		return m.tokens[consumed].pos
	}

	return m.argvLen
}

// matchPattern attempts one pattern against the scanned input. The
// continuation passed to the root sequence enforces the success
// conditions: full consumption of tokens and invocations for ordinary
// patterns, the prefix discipline for delegates.
func (s *Spec) matchPattern(
	pi int,
	tokens []token,
	invs []option.Invocation,
	argvLen int,
	acc *failures,
) (match, bool) {
	p := s.patterns[pi]
	root := s.grammar.Seqs[p.root]

	m := &matcher{
		s:       s,
		tokens:  tokens,
		invs:    invs,
		argvLen: argvLen,
		binds:   make([]any, root.NumParams),
		used:    make([]bool, len(invs)),
		pattern: pi,
		acc:     acc,
	}

	var won match

	accept := func(pos int) bool {
		if p.delegate {
			return m.acceptDelegate(pos, &won)
		}

		return m.acceptFull(pos, &won)
	}

	if !m.seq(root, 0, 0, accept) {
		return match{}, false
	}

	won.pattern = pi
	won.binds = m.binds
	won.used = m.used
	won.score = m.score

	return won, true
}

// acceptFull is the success condition for ordinary patterns: every
// positional token and every invocation consumed.
func (m *matcher) acceptFull(pos int, won *match) bool {
	if pos < len(m.tokens) {
		t := m.tokens[pos]
		m.acc.recordToken(m.pattern, t.pos,
			fmt.Sprintf("unexpected argument %q", t.text), t.text)

		return false
	}

	for i, inv := range m.invs {
		if !m.used[i] {
			m.acc.record(m.pattern, inv.Pos,
				fmt.Sprintf("unexpected option %q", m.invName(inv)))

			return false
		}
	}

	won.consumed = pos
	won.cut = m.argvEnd(pos)

	return true
}

// acceptDelegate is the success condition for delegating patterns: the
// matched region is a prefix, and every invocation inside it is
// consumed. Unused invocations after the matched region travel with
// the suffix, pulling the cut back to the earliest of them; an unused
// invocation interleaved with consumed tokens is a mismatch.
func (m *matcher) acceptDelegate(pos int, won *match) bool {
	cut := m.argvEnd(pos)

	last := -1
	if pos > 0 {
		last = m.tokens[pos-1].pos
	}

	for i, inv := range m.invs {
		if m.used[i] {
			// A consumed invocation must lie within the matched region;
			// one past the cut belongs to the suffix, so this parse is
			// abandoned and backtracking retries without it.
			if inv.Pos >= cut {
				return false
			}

			continue
		}

		if inv.Pos < last {
			m.acc.record(m.pattern, inv.Pos,
				fmt.Sprintf("unexpected option %q", m.invName(inv)))

			return false
		}

		if inv.Pos < cut {
			cut = inv.Pos
		}
	}

	won.consumed = pos
	won.cut = cut

	return true
}

func (m *matcher) invName(inv option.Invocation) string {
	return m.s.registry.Decl(inv.Decl).Name()
}

// seq matches the elements of a sequence starting at element i, calling
// k with the token position after the sequence. depth counts enclosing
// collapsible groups; symbols matched at depth zero raise the score.
func (m *matcher) seq(s grammar.Seq, pos, depth int, k func(int) bool) bool {
	return m.elems(m.s.grammar.SeqElems(s), 0, pos, depth, k)
}

func (m *matcher) elems(es []grammar.Elem, i, pos, depth int, k func(int) bool) bool {
	if i == len(es) {
		return k(pos)
	}

	e := es[i]
	rest := func(p int) bool { return m.elems(es, i+1, p, depth, k) }

	switch e.Type {
	case grammar.ElemSym:
		sym := m.s.grammar.Syms[e.Index]
		if sym.Kind == grammar.SymOption {
			return m.optionSym(es, i, pos, depth, k)
		}

		return m.positionalSym(sym, pos, depth, rest)

	case grammar.ElemOpt:
		sub := m.s.grammar.Seqs[e.Index]
		d := groupDepth(depth, e)

		mk := m.mark()
		if m.seq(sub, pos, d, rest) {
			return true
		}

		m.undo(mk)

		return rest(pos)

	case grammar.ElemRep:
		return m.rep(e, pos, depth, rest)

	case grammar.ElemAlt:
		alt := m.s.grammar.Alts[e.Index]
		d := groupDepth(depth, e)

		for _, si := range m.s.grammar.AltSeqs(alt) {
			mk := m.mark()
			if m.seq(m.s.grammar.Seqs[si], pos, d, rest) {
				return true
			}

			m.undo(mk)
		}

		return false
	}

	return false
}

// groupDepth deepens the collapse depth when entering a group that
// binds no parameters.
func groupDepth(depth int, e grammar.Elem) int {
	if e.Collapsible {
		return depth + 1
	}

	return depth
}

// rep matches zero or more occurrences of the repetition body, greedily
// preferring one more occurrence and retreating one at a time when the
// rest of the pattern cannot follow. An occurrence that consumes no
// token and uses no invocation ends the repetition, so nullable bodies
// terminate.
func (m *matcher) rep(e grammar.Elem, pos, depth int, k func(int) bool) bool {
	sub := m.s.grammar.Seqs[e.Index]
	d := groupDepth(depth, e)

	var iter func(p int) bool
	iter = func(p int) bool {
		mk := m.mark()
		nu := m.nused

		if m.seq(sub, p, d, func(p2 int) bool {
			if p2 == p && m.nused == nu {
				return k(p2)
			}

			return iter(p2)
		}) {
			return true
		}

		m.undo(mk)

		return k(p)
	}

	return iter(pos)
}

// positionalSym matches a keyword or value slot against the token at
// pos.
func (m *matcher) positionalSym(sym grammar.Sym, pos, depth int, k func(int) bool) bool {
	if pos >= len(m.tokens) {
		m.acc.record(m.pattern, m.argvEnd(pos),
			fmt.Sprintf("missing %s", describeExpected(sym)))

		return false
	}

	t := m.tokens[pos]

	switch sym.Kind {
	case grammar.SymKeyword:
		if !m.keywordEq(sym.Lexeme, t.text) {
			m.acc.recordToken(m.pattern, t.pos,
				fmt.Sprintf("expected %q, got %q", sym.Lexeme, t.text), t.text)

			return false
		}

	case grammar.SymSlot:
		v, err := m.parseSlot(sym, t.text)
		if err != nil {
			m.acc.record(m.pattern, t.pos,
				fmt.Sprintf("invalid value %q for %s: %s", t.text, sym.Describe(), err))

			return false
		}

		mk := m.mark()
		m.bind(sym.Param, m.repeatedParam(sym.Param), v)

		if m.advance(depth, pos, k) {
			return true
		}

		m.undo(mk)

		return false
	}

	return m.advance(depth, pos, k)
}

// advance consumes the token at pos, scoring it when outside every
// collapsible group, and restores the score if the continuation fails.
func (m *matcher) advance(depth, pos int, k func(int) bool) bool {
	if depth == 0 {
		m.score++
	}

	if k(pos + 1) {
		return true
	}

	if depth == 0 {
		m.score--
	}

	return false
}

// optionSym consumes an invocation of the referenced option when one is
// present. Options are order-free and hold no positional ground, so an
// absent invocation simply matches nothing. An arity-One option symbol
// immediately followed by a slot symbol forms a pair: the slot binds
// the invocation's argument rather than a positional token.
func (m *matcher) optionSym(es []grammar.Elem, i, pos, depth int, k func(int) bool) bool {
	sym := m.s.grammar.Syms[es[i].Index]
	decl := m.s.registry.Decl(sym.Opt)

	next := i + 1
	paired := -1

	if decl.Arity == option.One && next < len(es) && es[next].Type == grammar.ElemSym {
		if ns := m.s.grammar.Syms[es[next].Index]; ns.Kind == grammar.SymSlot {
			paired = es[next].Index
		}
	}

	after := next
	if paired >= 0 {
		after = next + 1
	}

	rest := func(p int) bool { return m.elems(es, after, p, depth, k) }

	inv, present := m.findInvocation(sym.Opt)
	if present {
		mk := m.mark()
		m.use(inv)

		if depth == 0 {
			m.score++
		}

		ok := true

		if paired >= 0 {
			slot := m.s.grammar.Syms[paired]

			arg := decl.Action.Default
			if m.invs[inv].Arg != nil {
				arg = *m.invs[inv].Arg
			}

			v, err := m.parseSlot(slot, arg)
			if err != nil {
				m.acc.record(m.pattern, m.invs[inv].Pos,
					fmt.Sprintf("invalid value %q for %s: %s", arg, slot.Describe(), err))

				ok = false
			} else {
				m.bind(slot.Param, m.repeatedParam(slot.Param), v)
			}
		}

		if ok && rest(pos) {
			return true
		}

		m.undo(mk)
	}

	// Absent, an unparsable argument, or consuming the invocation led
	// nowhere: the option symbol and its paired slot match nothing, and
	// the invocation stays available for an enclosing delegate's suffix.
	// The slot parameter keeps its previous binding (zero value if never
	// bound).
	return rest(pos)
}

func (m *matcher) parseSlot(sym grammar.Sym, text string) (any, error) {
	p, _ := m.s.loc.Parser(sym.SlotType)

	return p.Parse(text)
}

// repeatedParam reports whether the parameter accumulates values. The
// flags were computed at build time; they live on the handler.
func (m *matcher) repeatedParam(param int) bool {
	return m.s.patterns[m.pattern].handler.repeated[param]
}

func (m *matcher) keywordEq(lexeme, text string) bool {
	if m.s.caseFold {
		return strings.EqualFold(lexeme, text)
	}

	return lexeme == text
}

// describeExpected renders a symbol for "missing ..." diagnostics.
func describeExpected(sym grammar.Sym) string {
	if sym.Kind == grammar.SymKeyword {
		return fmt.Sprintf("argument %q", sym.Lexeme)
	}

	return "value " + sym.Describe()
}
