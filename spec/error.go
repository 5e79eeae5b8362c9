package spec

import "github.com/ardnew/clip/pkg"

// Build-time errors. These are defects in the Spec author's
// declarations and are always fatal.
var (
	ErrBadHandler      = pkg.NewError("handler must be a function returning int or nothing")
	ErrArityMismatch   = pkg.NewError("pattern parameter count does not match handler arity")
	ErrUnknownSlotType = pkg.NewError("pattern references an unregistered slot type")
	ErrAmbiguous       = pkg.NewError("patterns accept overlapping inputs")
	ErrNoPatterns      = pkg.NewError("spec declares no patterns")
)

// Process-time errors. These describe expected user mistakes; the
// engine reports them through the sink and returns a nonzero status,
// it never panics for them.
var (
	ErrNoMatch        = pkg.NewError("no pattern matches the arguments")
	ErrAmbiguousInput = pkg.NewError("arguments match more than one pattern")
	ErrOptionValue    = pkg.NewError("option does not take a value")
	ErrBindValue      = pkg.NewError("cannot bind value to handler parameter")
)

// errHelp is the internal signal that the reserved help option was
// seen during prescan. It short-circuits ordinary matching.
var errHelp = pkg.NewError("help requested")
