// Package locale supplies the external collaborators the matching engine
// delegates to for per-slot value parsing and for text measurement:
// a slot-type registry of Parser implementations and locale-aware
// integer formatting built on golang.org/x/text.
package locale

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/ardnew/clip/pkg"
)

// Errors produced by the built-in slot parsers. The engine folds their
// messages into match-failure diagnostics.
var (
	ErrNotInteger  = pkg.NewError("not a valid integer")
	ErrNotFlag     = pkg.NewError("not a valid flag value")
	ErrNotEnum     = pkg.NewError("not an allowed value")
	ErrUnknownSlot = pkg.NewError("unknown slot type")
)

// Parser converts one token's text to a typed value and back. Format
// must produce text that Parse accepts and maps to the original value.
type Parser interface {
	Parse(text string) (any, error)
	Format(v any) string
	// Describe names the expected value shape for diagnostics,
	// e.g. "integer".
	Describe() string
}

// Locale bundles a language tag with the slot-type parser registry used
// by every value slot of a Spec.
type Locale struct {
	tag     language.Tag
	parsers map[string]Parser
}

// New creates a Locale for the given language tag with the built-in
// slot types registered: "string" (the default), "int", and "flag".
func New(tag language.Tag) *Locale {
	l := &Locale{
		tag:     tag,
		parsers: make(map[string]Parser),
	}

	l.Register("string", stringParser{})
	l.Register("int", newIntParser(tag))
	l.Register("flag", flagParser{})

	return l
}

// Default returns the Locale for [language.English].
func Default() *Locale { return New(language.English) }

// Tag returns the locale's language tag.
func (l *Locale) Tag() language.Tag { return l.tag }

// Register adds or replaces the parser for a slot type name. Custom
// types, enums in particular, are registered under the name that
// patterns reference:
//
//	loc.Register("mode", locale.Enum("fast", "slow"))
//	// matches the slot <m:mode>
func (l *Locale) Register(name string, p Parser) {
	l.parsers[name] = p
}

// Parser returns the parser for a slot type. The empty type selects
// "string".
func (l *Locale) Parser(slotType string) (Parser, bool) {
	if slotType == "" {
		slotType = "string"
	}

	p, ok := l.parsers[slotType]

	return p, ok
}

// Widen pads s with trailing spaces to the given display width. Text
// already at least that wide is returned unchanged.
func (l *Locale) Widen(s string, w int) string {
	n := DisplayWidth(s)
	if n >= w {
		return s
	}

	return s + strings.Repeat(" ", w-n)
}
