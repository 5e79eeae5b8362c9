// Package grammar compiles command-line pattern text into flat,
// index-linked tables: symbols, elements, sequences, and alternatives.
//
// A pattern is a usage-line-like string such as
//
//	foo <bar:int> [--opt <val>]...
//
// composed of literal keywords, option references, value slots,
// optional groups, alternations, and trailing repetition. Compilation
// is recursive descent over the text; the resulting tables live in one
// arena per pattern set, cross-referenced by integer handles so the
// whole structure is relocatable and shareable read-only.
//
// Compilation also computes the structural properties the matcher
// depends on: per-sequence parameter counts and nullability, and
// per-element collapsibility (an optional, repeated, or alternated
// construct binding no parameters, which ambiguity scoring ignores).
//
// All failures here are grammar errors: defects in the pattern author's
// declarations, reported when the enclosing Spec is built and never at
// match time.
package grammar
