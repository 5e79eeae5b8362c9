package option

import "log/slog"

// ActionKind discriminates the closed set of option actions. The set is
// fixed and small, so actions are a tagged struct rather than an open
// interface.
type ActionKind int

const (
	// NoAction is the zero value: the option records its occurrence and
	// does nothing at commit.
	NoAction ActionKind = iota
	// RaiseFlag sets the bound *bool to true.
	RaiseFlag
	// LowerFlag sets the bound *bool to false.
	LowerFlag
	// AssignValue sets the bound *string to the supplied argument, or to
	// the default when no argument was supplied.
	AssignValue
	// AssignWhenCond is AssignValue gated on a predicate.
	AssignWhenCond
	// ExecCall invokes the bound callback with the supplied argument or
	// the default.
	ExecCall
	// ExecWhenCond is ExecCall gated on a predicate.
	ExecWhenCond
)

// String returns the lowercase name of the action kind.
func (k ActionKind) String() string {
	switch k {
	case NoAction:
		return "none"
	case RaiseFlag:
		return "raise"
	case LowerFlag:
		return "lower"
	case AssignValue:
		return "assign"
	case AssignWhenCond:
		return "assign-when"
	case ExecCall:
		return "exec"
	case ExecWhenCond:
		return "exec-when"
	default:
		return "unknown"
	}
}

// Action is the tagged variant bound to a declaration. Exactly the
// fields relevant to Kind are set.
type Action struct {
	Kind    ActionKind
	Flag    *bool
	Ref     *string
	Call    func(arg string) error
	Cond    Predicate
	Default string
}

// Apply executes the staged action for one invocation. arg is the
// argument supplied on the command line, nil when absent.
//
// The engine calls Apply exactly once per consumed invocation, and only
// after the winning pattern has been selected.
func (a Action) Apply(arg *string) error {
	val := a.Default
	if arg != nil {
		val = *arg
	}

	switch a.Kind {
	case NoAction:
		return nil

	case RaiseFlag:
		*a.Flag = true

		return nil

	case LowerFlag:
		*a.Flag = false

		return nil

	case AssignValue:
		*a.Ref = val

		return nil

	case AssignWhenCond:
		ok, err := a.Cond.Eval()
		if err != nil {
			return ErrPredicate.Wrap(err)
		}

		if ok {
			*a.Ref = val
		}

		return nil

	case ExecCall:
		return a.Call(val)

	case ExecWhenCond:
		ok, err := a.Cond.Eval()
		if err != nil {
			return ErrPredicate.Wrap(err)
		}

		if !ok {
			return nil
		}

		return a.Call(val)

	default:
		return ErrUnknownAction.With(slog.Int("kind", int(a.Kind)))
	}
}
