package spec

import (
	"log/slog"
	"reflect"

	"github.com/ardnew/clip/pkg"
)

// handler wraps a bound pattern function with the reflection metadata
// needed to invoke it: one parameter type per value slot in textual
// order, whether each slot repeats, and whether the function takes the
// trailing delegation view.
type handler struct {
	fn       reflect.Value
	params   []reflect.Type
	repeated []bool
	delegate bool
	exits    bool // reports an int status
}

var argsType = reflect.TypeOf(Args{})

// newHandler validates fn against the pattern's parameter shape. A slot
// under repetition requires a slice parameter; every other slot takes a
// scalar. Delegating handlers take one extra trailing Args parameter.
func newHandler(fn any, repeated []bool, delegate bool) (handler, *pkg.Error) {
	h := handler{repeated: repeated, delegate: delegate}

	// A pattern may be bound without a handler, as validation tooling
	// does; matching proceeds normally and dispatch is a no-op.
	if fn == nil {
		return h, nil
	}

	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return h, ErrBadHandler.With(slog.String("got", reflect.TypeOf(fn).String()))
	}

	t := v.Type()
	if t.IsVariadic() {
		return h, ErrBadHandler.With(slog.String("got", "variadic function"))
	}

	want := len(repeated)
	if delegate {
		want++
	}

	if t.NumIn() != want {
		return h, ErrArityMismatch.With(
			slog.Int("pattern_params", want),
			slog.Int("handler_params", t.NumIn()),
		)
	}

	h.params = make([]reflect.Type, len(repeated))

	for i := range repeated {
		p := t.In(i)
		if repeated[i] && p.Kind() != reflect.Slice {
			return h, ErrBadHandler.With(
				slog.Int("param", i),
				slog.String("got", p.String()),
				slog.String("want", "slice for repeated slot"),
			)
		}

		h.params[i] = p
	}

	if delegate && t.In(t.NumIn()-1) != argsType {
		return h, ErrBadHandler.With(
			slog.String("got", t.In(t.NumIn()-1).String()),
			slog.String("want", argsType.String()),
		)
	}

	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0).Kind() != reflect.Int {
			return h, ErrBadHandler.With(slog.String("returns", t.Out(0).String()))
		}

		h.exits = true
	default:
		return h, ErrBadHandler.With(slog.Int("returns", t.NumOut()))
	}

	h.fn = v

	return h, nil
}

// call invokes the handler with one parsed value per slot. A nil value
// stands for an unmatched optional slot and binds the parameter's zero
// value. Repeated slots arrive as []any and bind element by element.
func (h handler) call(vals []any, rest Args) (int, error) {
	if !h.fn.IsValid() {
		return 0, nil
	}

	in := make([]reflect.Value, 0, len(h.params)+1)

	for i, t := range h.params {
		var (
			rv  reflect.Value
			err error
		)

		if h.repeated[i] {
			rv, err = bindSlice(vals[i], t)
		} else {
			rv, err = bindScalar(vals[i], t)
		}

		if err != nil {
			return 0, err
		}

		in = append(in, rv)
	}

	if h.delegate {
		in = append(in, reflect.ValueOf(rest))
	}

	out := h.fn.Call(in)

	if h.exits {
		return int(out[0].Int()), nil
	}

	return 0, nil
}

// bindScalar adapts one parsed value to a parameter type, converting
// between compatible kinds (int64 to int, for example).
func bindScalar(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.Type().AssignableTo(t):
		return rv, nil
	case rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	}

	return reflect.Value{}, ErrBindValue.With(
		slog.String("value", rv.Type().String()),
		slog.String("param", t.String()),
	)
}

func bindSlice(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.MakeSlice(t, 0, 0), nil
	}

	elems, ok := v.([]any)
	if !ok {
		return reflect.Value{}, ErrBindValue.With(
			slog.String("value", reflect.TypeOf(v).String()),
			slog.String("param", t.String()),
		)
	}

	out := reflect.MakeSlice(t, len(elems), len(elems))

	for i, e := range elems {
		ev, err := bindScalar(e, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		out.Index(i).Set(ev)
	}

	return out, nil
}
