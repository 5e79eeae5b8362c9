package grammar

import "github.com/ardnew/clip/pkg"

// Grammar errors surface when a Spec is built, never while matching.
// They are defects in the author's pattern declarations and are always
// fatal.
var (
	ErrUnterminatedGroup = pkg.NewError("unterminated group")
	ErrUnterminatedSlot  = pkg.NewError("unterminated value slot")
	ErrEmptyAlternative  = pkg.NewError("empty alternative")
	ErrEmptyGroup        = pkg.NewError("empty group")
	ErrEmptySlotName     = pkg.NewError("empty value slot name")
	ErrDanglingEllipsis  = pkg.NewError("'...' must follow an element")
	ErrStrayToken        = pkg.NewError("unexpected token")
	ErrUndeclaredOption  = pkg.NewError("undeclared option referenced by pattern")
	ErrUnevenParams      = pkg.NewError("alternative branches bind different parameter counts")
)
