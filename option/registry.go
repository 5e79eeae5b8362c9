package option

import (
	"log/slog"

	"github.com/ardnew/clip/pkg"
)

// Errors raised while building or applying a registry.
var (
	ErrNoNames          = pkg.NewError("option declares no name forms")
	ErrBadName          = pkg.NewError("malformed option name")
	ErrDuplicateName    = pkg.NewError("duplicate option name")
	ErrPredicate        = pkg.NewError("predicate evaluation failed")
	ErrPredicateCompile = pkg.NewError("predicate compilation failed")
	ErrUnknownAction    = pkg.NewError("unknown option action")
)

// Registry maps option name forms to declarations. It is populated
// while a Spec is built and read-only thereafter.
type Registry struct {
	decls  []Decl
	byName map[string]int
}

// Add validates and registers a declaration, returning its index.
// Every name form must be dash-prefixed ("-x" or "--long") and unique
// within the registry.
func (r *Registry) Add(d Decl) (int, error) {
	if len(d.Names) == 0 {
		return 0, ErrNoNames
	}

	for _, name := range d.Names {
		if !validName(name) {
			return 0, ErrBadName.With(slog.String("name", name))
		}

		if _, dup := r.byName[name]; dup {
			return 0, ErrDuplicateName.With(slog.String("name", name))
		}
	}

	if r.byName == nil {
		r.byName = make(map[string]int)
	}

	idx := len(r.decls)
	r.decls = append(r.decls, d)

	for _, name := range d.Names {
		r.byName[name] = idx
	}

	return idx, nil
}

// Resolve reports the declaration index for a name form.
func (r *Registry) Resolve(name string) (int, bool) {
	idx, ok := r.byName[name]

	return idx, ok
}

// Decl returns the declaration at index i.
func (r *Registry) Decl(i int) Decl { return r.decls[i] }

// Len returns the number of declarations.
func (r *Registry) Len() int { return len(r.decls) }

// validName accepts "-x" short forms and "--long" forms. Bare "-" and
// "--" are reserved tokens, not option names.
func validName(name string) bool {
	if len(name) < 2 || name[0] != '-' {
		return false
	}

	if name == "--" {
		return false
	}

	if name[1] == '-' {
		return len(name) > 2 && name[2] != '-'
	}

	return true
}

// Invocation records one recognized occurrence of an option during
// prescan: which declaration, the raw argument (nil when absent), and
// the token's position in the original argument vector.
//
// Invocations exist for the duration of one engine call and are
// discarded afterward.
type Invocation struct {
	Decl int
	Arg  *string
	Pos  int
}

// Apply runs the staged action of an invocation against the registry.
func (r *Registry) Apply(inv Invocation) error {
	return r.decls[inv.Decl].Action.Apply(inv.Arg)
}
