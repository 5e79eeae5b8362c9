package option

import (
	"log/slog"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Predicate gates conditional actions. It is evaluated at commit time,
// after the winning pattern has been selected and never for rejected
// candidates.
type Predicate interface {
	Eval() (bool, error)
}

// PredicateFunc adapts a plain function to the Predicate interface.
type PredicateFunc func() bool

// Eval implements Predicate.
func (f PredicateFunc) Eval() (bool, error) { return f(), nil }

// exprPredicate evaluates a compiled expr-lang program against a live
// environment map.
type exprPredicate struct {
	program *vm.Program
	env     map[string]any
}

// ExprPredicate compiles src as a boolean expr-lang expression over env.
// The env map is captured by reference: values written to it between
// compilation and commit (by other option actions, for instance) are
// visible to the predicate.
func ExprPredicate(src string, env map[string]any) (Predicate, error) {
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool())
	if err != nil {
		return nil, ErrPredicateCompile.Wrap(err).
			With(slog.String("source", src))
	}

	return exprPredicate{program: program, env: env}, nil
}

// Eval implements Predicate.
func (p exprPredicate) Eval() (bool, error) {
	out, err := expr.Run(p.program, p.env)
	if err != nil {
		return false, ErrPredicate.Wrap(err)
	}

	b, ok := out.(bool)
	if !ok {
		return false, ErrPredicate.With(slog.Any("result", out))
	}

	return b, nil
}
