package spec

import (
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/clip/grammar"
	"github.com/ardnew/clip/locale"
	"github.com/ardnew/clip/log"
	"github.com/ardnew/clip/option"
)

// Attr is a per-pattern attribute passed to [Builder.Bind].
type Attr int

const (
	// Delegate marks a pattern that intentionally stops short of the
	// full command line. Its handler takes a trailing [Args] parameter
	// receiving the unconsumed suffix, and partial consumption counts
	// as a successful match.
	Delegate Attr = iota + 1
)

// pattern is one compiled (text, attributes, description, handler)
// entry of a Spec.
type pattern struct {
	text     string
	desc     string
	delegate bool
	handler  handler
	root     int // arena index of the root sequence
}

// Builder accumulates pattern and option declarations and compiles them
// into an immutable Spec.
type Builder struct {
	name           string
	summary        string
	binds          []binding
	decls          []option.Decl
	loc            *locale.Locale
	sink           Sink
	helpOut        io.Writer
	logger         log.Logger
	caseFold       bool
	allowAmbiguous bool
}

type binding struct {
	text     string
	desc     string
	fn       any
	delegate bool
}

// BuildOption configures a Builder.
type BuildOption func(*Builder)

// WithName sets the program name used in help headers. Diagnostic
// prefixes always come from the argument vector itself.
func WithName(name string) BuildOption {
	return func(b *Builder) { b.name = name }
}

// WithSummary sets the one-line program description shown at the top
// of usage text.
func WithSummary(summary string) BuildOption {
	return func(b *Builder) { b.summary = summary }
}

// WithLocale sets the locale collaborator used for slot parsing and
// text measurement. Defaults to [locale.Default].
func WithLocale(loc *locale.Locale) BuildOption {
	return func(b *Builder) { b.loc = loc }
}

// WithSink sets the error sink diagnostics are reported to. Defaults
// to standard error.
func WithSink(sink Sink) BuildOption {
	return func(b *Builder) { b.sink = sink }
}

// WithHelpWriter sets the destination of rendered usage text. Defaults
// to standard output.
func WithHelpWriter(w io.Writer) BuildOption {
	return func(b *Builder) { b.helpOut = w }
}

// WithLogger sets the logger used for engine tracing. The zero logger
// discards everything.
func WithLogger(logger log.Logger) BuildOption {
	return func(b *Builder) { b.logger = logger }
}

// CaseInsensitive makes literal keywords match regardless of case.
func CaseInsensitive() BuildOption {
	return func(b *Builder) { b.caseFold = true }
}

// AllowAmbiguous disables the build-time ambiguity check and resolves
// remaining runtime ties by declaration order.
func AllowAmbiguous() BuildOption {
	return func(b *Builder) { b.allowAmbiguous = true }
}

// New creates a Builder.
func New(opts ...BuildOption) *Builder {
	b := &Builder{
		loc:     locale.Default(),
		sink:    WriterSink{W: os.Stderr},
		helpOut: os.Stdout,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Declare registers an option declaration. Validation happens at Build.
func (b *Builder) Declare(d option.Decl) *Builder {
	b.decls = append(b.decls, d)

	return b
}

// Bind declares one pattern with its description and handler. The
// handler is any function whose parameters correspond one-to-one, in
// textual order, with the pattern's value slots, optionally followed by
// an [Args] parameter when the Delegate attribute is given. It returns
// an int exit status or nothing.
//
// Validation and compilation happen at Build.
func (b *Builder) Bind(text, desc string, fn any, attrs ...Attr) *Builder {
	bind := binding{text: text, desc: desc, fn: fn}

	for _, a := range attrs {
		if a == Delegate {
			bind.delegate = true
		}
	}

	b.binds = append(b.binds, bind)

	return b
}

// Build compiles every declared pattern, verifies handler arities and
// slot types, and runs the static ambiguity check. The returned Spec
// is immutable and safely shareable read-only across concurrent
// invocations.
//
// All errors returned here are grammar or ambiguity errors: defects in
// the declarations, never user input.
func (b *Builder) Build() (*Spec, error) {
	if len(b.binds) == 0 {
		return nil, ErrNoPatterns
	}

	s := &Spec{
		name:           b.name,
		summary:        b.summary,
		loc:            b.loc,
		sink:           b.sink,
		helpOut:        b.helpOut,
		logger:         b.logger,
		caseFold:       b.caseFold,
		allowAmbiguous: b.allowAmbiguous,
		grammar:        new(grammar.Grammar),
		registry:       new(option.Registry),
	}

	for _, d := range b.decls {
		if _, err := s.registry.Add(d); err != nil {
			return nil, err
		}
	}

	resolver := grammar.ResolverFunc(s.registry.Resolve)

	for _, bind := range b.binds {
		root, err := s.grammar.Compile(bind.text, resolver)
		if err != nil {
			return nil, err
		}

		h, herr := newHandler(bind.fn, s.paramRepetition(root), bind.delegate)
		if herr != nil {
			return nil, herr.With(slog.String("pattern", bind.text))
		}

		if err := s.checkSlotTypes(root, bind.text); err != nil {
			return nil, err
		}

		s.patterns = append(s.patterns, pattern{
			text:     bind.text,
			desc:     bind.desc,
			delegate: bind.delegate,
			handler:  h,
			root:     root,
		})
	}

	if !b.allowAmbiguous {
		if err := s.checkAmbiguity(); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("spec built",
		slog.Int("patterns", len(s.patterns)),
		slog.Int("options", s.registry.Len()),
	)

	return s, nil
}

// Spec is the immutable aggregate of compiled patterns and registered
// options for one command level. A Spec is built once and reused across
// many invocations; the compiled tables are read-only and safe to
// share, even concurrently. Per-invocation state lives on the call
// stack of Process.
type Spec struct {
	name           string
	summary        string
	patterns       []pattern
	grammar        *grammar.Grammar
	registry       *option.Registry
	loc            *locale.Locale
	sink           Sink
	helpOut        io.Writer
	logger         log.Logger
	caseFold       bool
	allowAmbiguous bool
}

// Name returns the configured program name, which may be empty.
func (s *Spec) Name() string { return s.name }

// Patterns returns the texts of the bound patterns in declaration
// order.
func (s *Spec) Patterns() []string {
	texts := make([]string, len(s.patterns))
	for i, p := range s.patterns {
		texts[i] = p.text
	}

	return texts
}

// Keywords returns the distinct literal keywords across every pattern,
// in textual order of first appearance. Interactive frontends use them
// as completion candidates.
func (s *Spec) Keywords() []string {
	seen := make(map[string]struct{})
	words := make([]string, 0, 8)

	for i := range s.patterns {
		for _, w := range s.grammar.Keywords(i) {
			if _, ok := seen[w]; ok {
				continue
			}

			seen[w] = struct{}{}
			words = append(words, w)
		}
	}

	return words
}

// OptionNames returns every declared option name form in declaration
// order.
func (s *Spec) OptionNames() []string {
	names := make([]string, 0, s.registry.Len())

	for i := 0; i < s.registry.Len(); i++ {
		names = append(names, s.registry.Decl(i).Names...)
	}

	return names
}

// checkSlotTypes verifies every slot of a pattern references a
// registered slot type.
func (s *Spec) checkSlotTypes(root int, text string) error {
	var err error

	s.walkSyms(s.grammar.Seqs[root], func(sym grammar.Sym) {
		if err != nil || sym.Kind != grammar.SymSlot {
			return
		}

		if _, ok := s.loc.Parser(sym.SlotType); !ok {
			err = ErrUnknownSlotType.With(
				slog.String("pattern", text),
				slog.String("slot", sym.Describe()),
			)
		}
	})

	return err
}

// paramRepetition reports, per slot ordinal, whether the slot sits
// inside a repetition and so binds a slice handler parameter.
func (s *Spec) paramRepetition(root int) []bool {
	rep := make([]bool, s.grammar.Seqs[root].NumParams)

	var walk func(seq grammar.Seq, inRep bool)
	walk = func(seq grammar.Seq, inRep bool) {
		for _, e := range s.grammar.SeqElems(seq) {
			switch e.Type {
			case grammar.ElemSym:
				sym := s.grammar.Syms[e.Index]
				if sym.Kind == grammar.SymSlot && inRep {
					rep[sym.Param] = true
				}
			case grammar.ElemOpt:
				walk(s.grammar.Seqs[e.Index], inRep)
			case grammar.ElemRep:
				walk(s.grammar.Seqs[e.Index], true)
			case grammar.ElemAlt:
				for _, si := range s.grammar.AltSeqs(s.grammar.Alts[e.Index]) {
					walk(s.grammar.Seqs[si], inRep)
				}
			}
		}
	}

	walk(s.grammar.Seqs[root], false)

	return rep
}

// walkSyms visits every symbol in a sequence subtree in textual order.
func (s *Spec) walkSyms(seq grammar.Seq, visit func(grammar.Sym)) {
	for _, e := range s.grammar.SeqElems(seq) {
		switch e.Type {
		case grammar.ElemSym:
			visit(s.grammar.Syms[e.Index])
		case grammar.ElemOpt, grammar.ElemRep:
			s.walkSyms(s.grammar.Seqs[e.Index], visit)
		case grammar.ElemAlt:
			for _, si := range s.grammar.AltSeqs(s.grammar.Alts[e.Index]) {
				s.walkSyms(s.grammar.Seqs[si], visit)
			}
		}
	}
}

// checkAmbiguity rejects pattern pairs whose positional languages
// overlap. Delegating patterns are exempt: they accept prefixes of
// longer patterns, and the runtime score resolves the overlap.
func (s *Spec) checkAmbiguity() error {
	for i := range s.patterns {
		if s.patterns[i].delegate {
			continue
		}

		for j := i + 1; j < len(s.patterns); j++ {
			if s.patterns[j].delegate {
				continue
			}

			witness, overlap := grammar.Intersect(
				s.grammar,
				s.patterns[i].root,
				s.patterns[j].root,
				s.caseFold,
			)
			if !overlap {
				continue
			}

			return ErrAmbiguous.With(
				slog.String("pattern_a", s.patterns[i].text),
				slog.String("pattern_b", s.patterns[j].text),
				slog.Any("witness", witness),
			)
		}
	}

	return nil
}
