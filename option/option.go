// Package option declares command-line options, their fixed side-effecting
// actions, and the registry a Spec consults while scanning raw tokens.
//
// Options follow a two-phase contract: during prescan each recognized
// occurrence becomes an Invocation; the staged action executes exactly
// once, and only after a pattern match that includes the option has been
// finally selected. Actions of rejected candidate matches never run.
package option

import "log/slog"

// Arity is the argument cardinality of an option.
type Arity int

const (
	// None takes no argument; an inline "=value" is rejected.
	None Arity = iota
	// One takes exactly one argument, inline ("--name=value") or as the
	// following token.
	One
)

// Decl describes one declared option: its name forms, argument
// cardinality, bound action, and help text.
//
// Decls are built fluently:
//
//	option.New("-v", "--verbose").Raise(&verbose).Describe("chatty output")
type Decl struct {
	Names  []string
	Arity  Arity
	Action Action
	Help   string
}

// New starts a declaration with the given name forms (e.g. "-v",
// "--verbose"). Name forms are validated when the declaration is added
// to a registry.
func New(names ...string) Decl {
	return Decl{Names: names}
}

// Describe attaches help text shown by usage rendering.
func (d Decl) Describe(help string) Decl {
	d.Help = help

	return d
}

// Raise binds the action that sets *flag to true. The option takes no
// argument.
func (d Decl) Raise(flag *bool) Decl {
	d.Arity = None
	d.Action = Action{Kind: RaiseFlag, Flag: flag}

	return d
}

// Lower binds the action that sets *flag to false. The option takes no
// argument.
func (d Decl) Lower(flag *bool) Decl {
	d.Arity = None
	d.Action = Action{Kind: LowerFlag, Flag: flag}

	return d
}

// Assign binds the action that sets *ref to the supplied argument, or
// to def when the argument is absent. The option takes one argument.
func (d Decl) Assign(ref *string, def string) Decl {
	d.Arity = One
	d.Action = Action{Kind: AssignValue, Ref: ref, Default: def}

	return d
}

// AssignWhen is Assign gated on cond: the assignment only happens when
// cond evaluates true at commit time.
func (d Decl) AssignWhen(ref *string, cond Predicate, def string) Decl {
	d.Arity = One
	d.Action = Action{Kind: AssignWhenCond, Ref: ref, Cond: cond, Default: def}

	return d
}

// Exec binds the action that invokes call with the supplied argument,
// or with def when the argument is absent. The option takes one
// argument.
func (d Decl) Exec(call func(arg string) error, def string) Decl {
	d.Arity = One
	d.Action = Action{Kind: ExecCall, Call: call, Default: def}

	return d
}

// ExecWhen is Exec gated on cond.
func (d Decl) ExecWhen(call func(arg string) error, cond Predicate, def string) Decl {
	d.Arity = One
	d.Action = Action{Kind: ExecWhenCond, Call: call, Cond: cond, Default: def}

	return d
}

// Name returns the declaration's primary (first) name form.
func (d Decl) Name() string {
	if len(d.Names) == 0 {
		return ""
	}

	return d.Names[0]
}

// LogValue implements slog.LogValuer.
func (d Decl) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("names", d.Names),
		slog.Int("arity", int(d.Arity)),
		slog.String("action", d.Action.Kind.String()),
	)
}
