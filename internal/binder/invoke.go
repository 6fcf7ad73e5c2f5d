package binder

import (
	"context"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	schema "github.com/hanpama/graphbind/internal/schema"
)

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

type argStyle int

const (
	argsNone argStyle = iota
	argsPositional
	argsContainer
)

// callable describes how to call a resolver function for one field.
type callable struct {
	fn        reflect.Type
	ctx       bool
	source    bool
	style     argStyle
	argNames  []string
	params    []reflect.Type
	result    reflect.Type
	withError bool
}

// newCallable checks that fn can serve field f. withSource allows a leading
// parent parameter after the optional context.
func newCallable(fn reflect.Type, f *schema.Field, withSource bool) (*callable, error) {
	c := &callable{fn: fn}
	if fn.IsVariadic() {
		return nil, errors.New("variadic functions are not supported")
	}
	switch fn.NumOut() {
	case 1:
		if fn.Out(0) == errorType {
			return nil, errors.New("must return a value, not only an error")
		}
	case 2:
		if fn.Out(1) != errorType {
			return nil, errors.Errorf("second result must be error, got %s", fn.Out(1))
		}
		c.withError = true
	default:
		return nil, errors.Errorf("must return T or (T, error), got %d results", fn.NumOut())
	}
	c.result = fn.Out(0)

	var rest []reflect.Type
	for i := 0; i < fn.NumIn(); i++ {
		rest = append(rest, fn.In(i))
	}
	if len(rest) > 0 && rest[0] == contextType {
		c.ctx = true
		rest = rest[1:]
	}
	nargs := len(f.Arguments)
	if withSource && len(rest) > 0 && (len(rest) == nargs+1 || (len(rest) == 2 && nargs != 1 && isContainer(rest[1]))) {
		c.source = true
		rest = rest[1:]
	}
	switch {
	case len(rest) == 0:
		c.style = argsNone
	case len(rest) == 1 && nargs == 1 && isContainer(rest[0]) && schema.IsBuiltinScalar(schema.GetNamedType(f.Arguments[0].Type)):
		c.style = argsContainer
	case len(rest) == nargs:
		c.style = argsPositional
		for _, a := range f.Arguments {
			c.argNames = append(c.argNames, a.Name)
		}
	case len(rest) == 1 && isContainer(rest[0]):
		c.style = argsContainer
	default:
		return nil, errors.Errorf("takes %d parameters but the field has %d arguments", len(rest), nargs)
	}
	c.params = rest
	return c, nil
}

func isContainer(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct || (t.Kind() == reflect.Map && t.Key().Kind() == reflect.String)
}

func (c *callable) invoke(ctx context.Context, fn reflect.Value, source any, args map[string]any) (any, error) {
	in := make([]reflect.Value, 0, c.fn.NumIn())
	if c.ctx {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	if c.source {
		sv, err := coerce(source, c.fn.In(len(in)))
		if err != nil {
			return nil, errors.Wrap(err, "parent value")
		}
		in = append(in, sv)
	}
	switch c.style {
	case argsPositional:
		for i, name := range c.argNames {
			av, err := coerce(args[name], c.params[i])
			if err != nil {
				return nil, errors.Wrapf(err, "argument %q", name)
			}
			in = append(in, av)
		}
	case argsContainer:
		av, err := decodeArgs(args, c.params[0])
		if err != nil {
			return nil, errors.Wrap(err, "arguments")
		}
		in = append(in, av)
	}
	out := fn.Call(in)
	if c.withError && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return unwrapResult(out[0]), nil
}

func unwrapResult(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// callIfFunc returns the value of a lookup entry, calling it first when the
// entry is a function.
func callIfFunc(ctx context.Context, v reflect.Value, f *schema.Field, args map[string]any) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Func {
		return v.Interface(), nil
	}
	if v.IsNil() {
		return nil, nil
	}
	c, err := newCallable(v.Type(), f, false)
	if err != nil {
		return nil, err
	}
	return c.invoke(ctx, v, nil, args)
}

// coerce converts a GraphQL input or parent value to the parameter type t.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if t.Kind() == reflect.Ptr {
		inner, err := coerce(v, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	}
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Type().AssignableTo(t) {
		return rv.Elem(), nil
	}
	if sameClass(rv.Kind(), t.Kind()) && rv.Type().ConvertibleTo(t) {
		if kindClass(t.Kind()) == numericClass {
			return convertNumber(rv, t)
		}
		return rv.Convert(t), nil
	}
	out := reflect.New(t)
	if err := decode(v, out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

func decodeArgs(args map[string]any, t reflect.Type) (reflect.Value, error) {
	if args == nil {
		args = map[string]any{}
	}
	if reflect.TypeOf(args).AssignableTo(t) {
		return reflect.ValueOf(args), nil
	}
	if t.Kind() == reflect.Ptr {
		p := reflect.New(t.Elem())
		if err := decode(args, p.Interface()); err != nil {
			return reflect.Value{}, err
		}
		return p, nil
	}
	out := reflect.New(t)
	if err := decode(args, out.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return out.Elem(), nil
}

func decode(input any, result any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "graphql",
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	if err := d.Decode(input); err != nil {
		return errors.Wrap(err, fmt.Sprintf("decode %T", input))
	}
	return nil
}

func sameClass(a, b reflect.Kind) bool {
	return kindClass(a) != 0 && kindClass(a) == kindClass(b)
}

const (
	numericClass = iota + 1
	stringClass
	boolClass
)

func kindClass(k reflect.Kind) int {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return numericClass
	case reflect.String:
		return stringClass
	case reflect.Bool:
		return boolClass
	}
	return 0
}

// convertNumber converts between numeric kinds, rejecting fractions bound to
// integers and values outside the range of t. Float to float conversions may
// round.
func convertNumber(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	if rv.CanFloat() {
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			if t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64 {
				return rv.Convert(t), nil
			}
			return reflect.Value{}, errors.Errorf("cannot use %v as %s", f, t)
		}
		if t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64 {
			out := rv.Convert(t)
			if math.IsInf(out.Float(), 0) {
				return reflect.Value{}, errors.Errorf("%v overflows %s", f, t)
			}
			return out, nil
		}
		if f != math.Trunc(f) {
			return reflect.Value{}, errors.Errorf("cannot use %v as %s: not an integer", f, t)
		}
	}
	if rv.CanInt() && rv.Int() < 0 && t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uintptr {
		return reflect.Value{}, errors.Errorf("%v overflows %s", rv.Interface(), t)
	}
	out := rv.Convert(t)
	if out.CanFloat() {
		return out, nil
	}
	if out.CanInt() && out.Int() < 0 && (rv.CanUint() || (rv.CanFloat() && rv.Float() >= 0)) {
		return reflect.Value{}, errors.Errorf("%v overflows %s", rv.Interface(), t)
	}
	if out.Convert(rv.Type()).Interface() != rv.Interface() {
		return reflect.Value{}, errors.Errorf("%v overflows %s", rv.Interface(), t)
	}
	return out, nil
}
