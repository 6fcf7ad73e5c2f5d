package binder

import (
	"context"
	"reflect"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"

	schema "github.com/hanpama/graphbind/internal/schema"
)

// Property reads field f from a parent value. found is false when the value
// has no such property; a nil value never has properties.
func Property(ctx context.Context, value any, f *schema.Field, args map[string]any) (out any, found bool, err error) {
	if value == nil {
		return nil, false, nil
	}
	if m, ok := value.(proto.Message); ok {
		return protoProperty(m, f.Name)
	}
	if g, ok := value.(Getter); ok {
		v, found := g.Get(f.Name)
		if !found {
			return nil, false, nil
		}
		out, err := callIfFunc(ctx, reflect.ValueOf(v), f, args)
		return out, true, err
	}
	rv := addressable(reflect.ValueOf(value))
	if m, _, ok := methodByName(rv, f.Name, "Get"); ok {
		c, err := newCallable(m.Type(), f, false)
		if err == nil {
			out, err := c.invoke(ctx, m, nil, args)
			return out, true, err
		}
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, nil
		}
		v := rv.MapIndex(reflect.ValueOf(f.Name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false, nil
		}
		out, err := callIfFunc(ctx, v, f, args)
		return out, true, err
	case reflect.Struct:
		v, ok := structField(rv, f.Name)
		if !ok {
			return nil, false, nil
		}
		return unwrapResult(v), true, nil
	}
	return nil, false, nil
}

// HasProperty reports whether Property would find field f on value. Getter
// values are asked through Get; a Get that panics counts as absent. Methods
// are only inspected, never called.
func HasProperty(value any, f *schema.Field) (found bool) {
	defer func() {
		if recover() != nil {
			found = false
		}
	}()
	if value == nil {
		return false
	}
	if m, ok := value.(proto.Message); ok {
		return protoField(m.ProtoReflect().Descriptor(), f.Name) != nil
	}
	if g, ok := value.(Getter); ok {
		_, found := g.Get(f.Name)
		return found
	}
	rv := addressable(reflect.ValueOf(value))
	if m, _, ok := methodByName(rv, f.Name, "Get"); ok {
		if _, err := newCallable(m.Type(), f, false); err == nil {
			return true
		}
	}
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		return rv.MapIndex(reflect.ValueOf(f.Name).Convert(rv.Type().Key())).IsValid()
	case reflect.Struct:
		_, ok := structField(rv, f.Name)
		return ok
	}
	return false
}

// TypeHasProperty reports whether every value of Go type t statically has
// property f. Maps and interfaces are dynamic and always report true.
func TypeHasProperty(t reflect.Type, f *schema.Field) bool {
	if t == nil || t.Kind() == reflect.Interface {
		return true
	}
	if t.Kind() != reflect.Ptr && reflect.PointerTo(t).Implements(protoMessageType) {
		t = reflect.PointerTo(t)
	}
	if t == dynamicMessageType {
		return true
	}
	if t.Implements(protoMessageType) {
		m := reflect.Zero(t).Interface().(proto.Message)
		return protoField(m.ProtoReflect().Descriptor(), f.Name) != nil
	}
	if t.Implements(getterType) {
		return true
	}
	base := t
	for base.Kind() == reflect.Ptr {
		base = base.Elem()
	}
	if _, _, ok := methodByName(reflect.Zero(reflect.PointerTo(base)), f.Name, "Get"); ok {
		return true
	}
	switch base.Kind() {
	case reflect.Struct:
		_, ok := structField(reflect.New(base).Elem(), f.Name)
		return ok
	case reflect.Interface, reflect.Map:
		return true
	}
	return false
}

var (
	protoMessageType = reflect.TypeOf((*proto.Message)(nil)).Elem()
	getterType       = reflect.TypeOf((*Getter)(nil)).Elem()

	dynamicMessageType = reflect.TypeOf((*dynamicpb.Message)(nil))
)

func protoField(md protoreflect.MessageDescriptor, name string) protoreflect.FieldDescriptor {
	fields := md.Fields()
	if fd := fields.ByName(protoreflect.Name(name)); fd != nil {
		return fd
	}
	return fields.ByJSONName(name)
}

func protoProperty(m proto.Message, name string) (any, bool, error) {
	msg := m.ProtoReflect()
	fd := protoField(msg.Descriptor(), name)
	if fd == nil {
		return nil, false, nil
	}
	if !msg.IsValid() {
		return nil, true, nil
	}
	if fd.Message() != nil && !fd.IsList() && !fd.IsMap() && !msg.Has(fd) {
		return nil, true, nil
	}
	return protoValue(fd, msg.Get(fd)), true, nil
}

func protoValue(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch {
	case fd.IsList():
		l := v.List()
		out := make([]any, l.Len())
		for i := range out {
			out[i] = protoScalar(fd, l.Get(i))
		}
		return out
	case fd.IsMap():
		out := map[string]any{}
		v.Map().Range(func(k protoreflect.MapKey, mv protoreflect.Value) bool {
			out[k.String()] = protoScalar(fd.MapValue(), mv)
			return true
		})
		return out
	}
	return protoScalar(fd, v)
}

func protoScalar(fd protoreflect.FieldDescriptor, v protoreflect.Value) any {
	switch fd.Kind() {
	case protoreflect.MessageKind, protoreflect.GroupKind:
		return v.Message().Interface()
	case protoreflect.EnumKind:
		if ev := fd.Enum().Values().ByNumber(v.Enum()); ev != nil {
			return string(ev.Name())
		}
		return int32(v.Enum())
	}
	return v.Interface()
}

// addressable copies struct values behind a pointer so pointer receiver
// methods are visible.
func addressable(v reflect.Value) reflect.Value {
	if v.Kind() != reflect.Struct {
		return v
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}
