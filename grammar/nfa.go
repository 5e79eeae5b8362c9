package grammar

import "strings"

// Static ambiguity analysis. Each pattern's positional structure is a
// regular language over literal keywords and an any-token class (value
// slots); two patterns are ambiguous when the intersection of their
// languages is nonempty. The check runs at Spec build time only.
//
// Option symbols are order-free and excluded from the positional
// language, so two patterns differing only in option references are
// reported as ambiguous. The runtime tie-break still separates them by
// consumed invocations.

// edge is a token-consuming NFA transition.
type edge struct {
	to  int
	lit string // keyword lexeme, "" when any is set
	any bool   // value slot: matches any single token
}

// nfa is a Thompson construction over one pattern's root sequence.
type nfa struct {
	eps    [][]int
	edges  [][]edge
	start  int
	accept int
}

// Intersect reports whether the positional languages of patterns rootA
// and rootB overlap, returning a witness token sequence accepted by
// both when they do. Literal comparison folds case when fold is set,
// mirroring the Spec's case-sensitivity rule.
func Intersect(g *Grammar, rootA, rootB int, fold bool) ([]string, bool) {
	a := buildNFA(g, rootA, fold)
	b := buildNFA(g, rootB, fold)

	type pair struct{ x, y int }

	type step struct {
		prev  pair
		token string
		has   bool
	}

	start := pair{a.start, b.start}
	goal := pair{a.accept, b.accept}

	visited := map[pair]step{start: {}}
	queue := []pair{start}

	push := func(next pair, from pair, token string, has bool) {
		if _, ok := visited[next]; ok {
			return
		}

		visited[next] = step{prev: from, token: token, has: has}
		queue = append(queue, next)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == goal {
			// Reconstruct the accepted token sequence from BFS parents.
			var tokens []string

			for at := goal; at != start; {
				s := visited[at]
				if s.has {
					tokens = append(tokens, s.token)
				}

				at = s.prev
			}

			for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
				tokens[i], tokens[j] = tokens[j], tokens[i]
			}

			return tokens, true
		}

		for _, to := range a.eps[cur.x] {
			push(pair{to, cur.y}, cur, "", false)
		}

		for _, to := range b.eps[cur.y] {
			push(pair{cur.x, to}, cur, "", false)
		}

		for _, e1 := range a.edges[cur.x] {
			for _, e2 := range b.edges[cur.y] {
				token, ok := unify(e1, e2)
				if !ok {
					continue
				}

				push(pair{e1.to, e2.to}, cur, token, true)
			}
		}
	}

	return nil, false
}

// unify reports whether two token transitions admit a common token, and
// picks a representative token for the witness.
func unify(e1, e2 edge) (string, bool) {
	switch {
	case !e1.any && !e2.any:
		return e1.lit, e1.lit == e2.lit
	case !e1.any:
		return e1.lit, true
	case !e2.any:
		return e2.lit, true
	default:
		return "<value>", true
	}
}

// nfaBuilder accumulates states and transitions during construction.
type nfaBuilder struct {
	g    *Grammar
	n    *nfa
	fold bool
}

func buildNFA(g *Grammar, root int, fold bool) *nfa {
	b := &nfaBuilder{g: g, n: new(nfa), fold: fold}

	start, accept := b.seq(g.Seqs[root])
	b.n.start = start
	b.n.accept = accept

	return b.n
}

func (b *nfaBuilder) state() int {
	b.n.eps = append(b.n.eps, nil)
	b.n.edges = append(b.n.edges, nil)

	return len(b.n.eps) - 1
}

func (b *nfaBuilder) epsilon(from, to int) {
	b.n.eps[from] = append(b.n.eps[from], to)
}

func (b *nfaBuilder) token(from, to int, e edge) {
	e.to = to
	b.n.edges[from] = append(b.n.edges[from], e)
}

// seq chains the fragments of a sequence's elements.
func (b *nfaBuilder) seq(s Seq) (int, int) {
	start := b.state()
	cur := start

	for _, e := range b.g.SeqElems(s) {
		es, ee := b.elem(e)
		b.epsilon(cur, es)
		cur = ee
	}

	return start, cur
}

// elem builds one element's fragment.
func (b *nfaBuilder) elem(e Elem) (int, int) {
	switch e.Type {
	case ElemSym:
		start := b.state()
		end := b.state()

		sym := b.g.Syms[e.Index]
		switch sym.Kind {
		case SymKeyword:
			lit := sym.Lexeme
			if b.fold {
				lit = strings.ToLower(lit)
			}

			b.token(start, end, edge{lit: lit})
		case SymSlot:
			b.token(start, end, edge{any: true})
		case SymOption:
			// Order-free: no positional consumption.
			b.epsilon(start, end)
		}

		return start, end

	case ElemOpt:
		ss, se := b.seq(b.g.Seqs[e.Index])
		start := b.state()
		end := b.state()
		b.epsilon(start, ss)
		b.epsilon(start, end)
		b.epsilon(se, end)

		return start, end

	case ElemRep:
		ss, se := b.seq(b.g.Seqs[e.Index])
		start := b.state()
		end := b.state()
		b.epsilon(start, ss)
		b.epsilon(start, end)
		b.epsilon(se, end)
		b.epsilon(se, ss)

		return start, end

	case ElemAlt:
		start := b.state()
		end := b.state()

		for _, si := range b.g.AltSeqs(b.g.Alts[e.Index]) {
			ss, se := b.seq(b.g.Seqs[si])
			b.epsilon(start, ss)
			b.epsilon(se, end)
		}

		return start, end

	default:
		panic("grammar: invalid element type")
	}
}
