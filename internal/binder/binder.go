// Package binder connects GraphQL fields to resolver code.
//
// A field is bound to the first capability that serves it: a method on a
// resolver registered for the field's type, then a key lookup on that
// resolver, then (for non-root types) a property of the parent value.
package binder

import (
	"context"
	"fmt"
	"reflect"

	schema "github.com/hanpama/graphbind/internal/schema"
)

// Root operation names accepted by Resolver.Operation.
const (
	OperationQuery    = "query"
	OperationMutation = "mutation"
)

// Resolver pairs a user object with the GraphQL type it resolves fields for.
// When Operation is set the resolver serves that operation's root type,
// whatever it is named in the schema.
type Resolver struct {
	TypeName  string
	Operation string
	Instance  any
}

// For registers instance as the resolver of the named type.
func For(typeName string, instance any) Resolver {
	return Resolver{TypeName: typeName, Instance: instance}
}

// Query registers instance as the resolver of the query root type.
func Query(instance any) Resolver {
	return Resolver{Operation: OperationQuery, Instance: instance}
}

// Mutation registers instance as the resolver of the mutation root type.
func Mutation(instance any) Resolver {
	return Resolver{Operation: OperationMutation, Instance: instance}
}

// Getter is implemented by resolvers and values answering fields by key.
type Getter interface {
	Get(key string) (any, bool)
}

// Kind says which capability supplies a field.
type Kind int

const (
	PropertyBinding Kind = iota
	MethodBinding
	LookupBinding
)

func (k Kind) String() string {
	switch k {
	case MethodBinding:
		return "method"
	case LookupBinding:
		return "lookup"
	}
	return "property"
}

// Binding is the resolved strategy for one field. It is immutable once
// created and shared by all executions of a compiled schema.
type Binding struct {
	TypeName  string
	FieldName string
	Kind      Kind
	Field     *schema.Field

	// MethodName is the Go method serving a MethodBinding.
	MethodName string

	instance reflect.Value
	call     *callable
}

// ReturnType is the static Go result type of a method binding, or nil.
func (b *Binding) ReturnType() reflect.Type {
	if b.call == nil {
		return nil
	}
	return b.call.result
}

func (b *Binding) String() string {
	switch b.Kind {
	case MethodBinding:
		return fmt.Sprintf("%s.%s -> method %s", b.TypeName, b.FieldName, b.MethodName)
	case LookupBinding:
		return fmt.Sprintf("%s.%s -> lookup %q", b.TypeName, b.FieldName, b.FieldName)
	}
	return fmt.Sprintf("%s.%s -> property", b.TypeName, b.FieldName)
}

// Bind selects the binding for field f of type t among the resolvers
// registered for t. It returns nil when no resolver serves the field; the
// caller then decides whether a property binding is allowed.
//
// A method whose signature does not fit the field is skipped in favor of a
// fitting method on a later resolver; if none fits, its BindingError is
// returned. The Get method of a Getter is never taken for a field named get.
func Bind(t *schema.Type, f *schema.Field, resolvers []Resolver, root bool) (*Binding, error) {
	var mismatch error
	for _, r := range resolvers {
		if r.Instance == nil {
			continue
		}
		v := reflect.ValueOf(r.Instance)
		m, name, ok := methodByName(v, f.Name)
		if !ok || isGetterMethod(r.Instance, name) {
			continue
		}
		c, err := newCallable(m.Type(), f, !root)
		if err != nil {
			if mismatch == nil {
				mismatch = &BindingError{TypeName: t.Name, FieldName: f.Name, Reason: fmt.Sprintf("method %s: %v", name, err)}
			}
			continue
		}
		return &Binding{TypeName: t.Name, FieldName: f.Name, Kind: MethodBinding, Field: f, MethodName: name, instance: m, call: c}, nil
	}
	if mismatch != nil {
		return nil, mismatch
	}
	for _, r := range resolvers {
		if r.Instance == nil {
			continue
		}
		if supportsLookup(r.Instance) {
			return &Binding{TypeName: t.Name, FieldName: f.Name, Kind: LookupBinding, Field: f, instance: reflect.ValueOf(r.Instance)}, nil
		}
	}
	return nil, nil
}

func isGetterMethod(instance any, method string) bool {
	_, ok := instance.(Getter)
	return ok && method == "Get"
}

// NewPropertyBinding binds field f of t to the property of the same name on
// parent values.
func NewPropertyBinding(t *schema.Type, f *schema.Field) *Binding {
	return &Binding{TypeName: t.Name, FieldName: f.Name, Kind: PropertyBinding, Field: f}
}

func supportsLookup(instance any) bool {
	if _, ok := instance.(Getter); ok {
		return true
	}
	t := reflect.TypeOf(instance)
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

// Invoke resolves the field for source with already coerced arguments.
// Failures raised by resolver code are returned as *InvocationError.
func (b *Binding) Invoke(ctx context.Context, source any, args map[string]any) (out any, err error) {
	defer recoverPanic(b.TypeName, b.FieldName, &err)
	switch b.Kind {
	case MethodBinding:
		out, err = b.call.invoke(ctx, b.instance, source, args)
		if err != nil {
			return nil, invocationError(b.TypeName, b.FieldName, err)
		}
		return out, nil
	case LookupBinding:
		v, ok := lookup(b.instance, b.FieldName)
		if !ok {
			return nil, &InvocationError{TypeName: b.TypeName, FieldName: b.FieldName, Err: ErrUnknownKey}
		}
		out, err = callIfFunc(ctx, v, b.Field, args)
		if err != nil {
			return nil, invocationError(b.TypeName, b.FieldName, err)
		}
		return out, nil
	}
	out, found, err := Property(ctx, source, b.Field, args)
	if err != nil {
		return nil, invocationError(b.TypeName, b.FieldName, err)
	}
	if !found {
		if source == nil || !schema.IsNonNull(b.Field.Type) {
			return nil, nil
		}
		return nil, &BindingError{TypeName: b.TypeName, FieldName: b.FieldName, Reason: fmt.Sprintf("%T has no property %q", source, b.FieldName)}
	}
	return out, nil
}

func lookup(v reflect.Value, key string) (reflect.Value, bool) {
	if g, ok := v.Interface().(Getter); ok {
		out, found := g.Get(key)
		return reflect.ValueOf(out), found
	}
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	out := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
	if !out.IsValid() {
		return reflect.Value{}, false
	}
	return out, true
}
