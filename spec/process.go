package spec

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/clip/option"
)

// Exit statuses the engine reports when no handler ran or a handler
// returned nothing.
const (
	statusOK       = 0
	statusInternal = 1
	statusUsage    = 2
)

// Process matches a full argument vector, including the program name at
// argv[0], and runs the winning pattern's handler. It returns the
// handler's status, zero for handlers returning nothing, and a nonzero
// status after reporting a diagnostic when no pattern applies.
//
// Process keeps all per-call state on the stack, so one Spec may serve
// concurrent calls.
func (s *Spec) Process(argv []string) int {
	return s.ProcessArgs(NewArgs(argv))
}

// ProcessArgs is Process over a borrowed argument view, the form a
// delegated handler holds. The view's offset and program chain are
// respected, so diagnostics name the full delegation path.
func (s *Spec) ProcessArgs(args Args) int {
	tokens, invs, err := s.prescan(args)
	if err != nil {
		if errors.Is(err, errHelp) {
			s.renderHelp(args)

			return statusOK
		}

		s.report(args, err.Error())

		return statusUsage
	}

	s.logger.Debug("scanned arguments",
		slog.Int("positionals", len(tokens)),
		slog.Int("invocations", len(invs)),
	)

	acc := &failures{}

	var (
		won match
		ok  bool
		tie bool
	)

	for pi := range s.patterns {
		m, matched := s.matchPattern(pi, tokens, invs, len(args.Argv()), acc)
		if !matched {
			continue
		}

		s.logger.Trace("pattern matched",
			slog.String("pattern", s.patterns[pi].text),
			slog.Int("score", m.score),
		)

		switch {
		case !ok, m.score > won.score:
			won, ok, tie = m, true, false
		case m.score == won.score:
			tie = true
		}
	}

	if !ok {
		s.report(args, s.compose(acc))

		return statusUsage
	}

	if tie && !s.allowAmbiguous {
		s.report(args, ErrAmbiguousInput.Error())

		return statusUsage
	}

	return s.commit(args, tokens, invs, won)
}

// commit runs the winner's staged option actions in argument order and
// then its handler. Actions of rejected candidates never reach this
// point.
func (s *Spec) commit(args Args, tokens []token, invs []option.Invocation, won match) int {
	p := s.patterns[won.pattern]

	for i, inv := range invs {
		if !won.used[i] {
			continue
		}

		if err := s.registry.Apply(inv); err != nil {
			s.report(args, err.Error())

			return statusInternal
		}
	}

	rest := Args{}
	if p.delegate {
		consumed := make([]string, won.consumed)
		for i := range consumed {
			consumed[i] = tokens[i].text
		}

		rest = args.suffix(won.cut, consumed)
	}

	s.logger.Debug("dispatching handler",
		slog.String("pattern", p.text),
		slog.Int("consumed", won.consumed),
	)
	s.logger.Trace("bound values", slog.Any("binds", won.binds))

	status, err := p.handler.call(won.binds, rest)
	if err != nil {
		s.report(args, err.Error())

		return statusInternal
	}

	return status
}

// report emits one diagnostic line through the sink, prefixed with the
// delegation-aware program name.
func (s *Spec) report(args Args, msg string) {
	if prog := args.Prog(); prog != "" {
		msg = prog + ": " + msg
	}

	s.sink.Report(msg)
}

// prescan separates the argument vector into positional tokens and
// option invocations in one left-to-right pass. Option order is
// irrelevant to matching, so recognized options leave no positional
// trace; everything else, including unrecognized dash words, stays
// positional for the patterns to judge.
func (s *Spec) prescan(args Args) ([]token, []option.Invocation, error) {
	argv := args.Argv()

	var (
		tokens []token
		invs   []option.Invocation
	)

	forced := false

	for i := args.Offset(); i < len(argv); i++ {
		word := argv[i]

		if forced {
			tokens = append(tokens, token{text: word, pos: i})

			continue
		}

		if word == "--" {
			forced = true

			continue
		}

		if !strings.HasPrefix(word, "-") || word == "-" {
			tokens = append(tokens, token{text: word, pos: i})

			continue
		}

		name, inline, hasInline := strings.Cut(word, "=")

		if name == "--help" {
			return nil, nil, errHelp
		}

		decl, idx, known := s.lookupOption(name)
		if !known {
			// Not declared: defer judgment to the matcher, which will
			// reject it as an unexpected argument if no slot takes it.
			tokens = append(tokens, token{text: word, pos: i})

			continue
		}

		inv := option.Invocation{Decl: idx, Pos: i}

		switch decl.Arity {
		case option.None:
			if hasInline {
				return nil, nil, ErrOptionValue.With(slog.String("option", name))
			}

		case option.One:
			switch {
			case hasInline:
				inv.Arg = &inline
			case i+1 < len(argv) && !s.isDeclaredOption(argv[i+1]):
				i++
				inv.Arg = &argv[i]
			}
		}

		invs = append(invs, inv)
	}

	return tokens, invs, nil
}

func (s *Spec) lookupOption(name string) (option.Decl, int, bool) {
	idx, ok := s.registry.Resolve(name)
	if !ok {
		return option.Decl{}, 0, false
	}

	return s.registry.Decl(idx), idx, true
}

// isDeclaredOption reports whether a word would itself be scanned as a
// declared option, which stops the preceding arity-One option from
// swallowing it.
func (s *Spec) isDeclaredOption(word string) bool {
	if !strings.HasPrefix(word, "-") || word == "-" || word == "--" {
		return false
	}

	name, _, _ := strings.Cut(word, "=")
	if name == "--help" {
		return true
	}

	_, ok := s.registry.Resolve(name)

	return ok
}

// Usage renders the spec's usage text to the configured help writer.
// The same rendering serves the reserved "--help" option.
func (s *Spec) Usage() {
	s.renderHelp(Args{})
}

func (s *Spec) renderHelp(args Args) {
	name := s.name
	if chain := args.Prog(); chain != "" {
		name = chain
	}

	fmt.Fprint(s.helpOut, s.usageText(name))
}
