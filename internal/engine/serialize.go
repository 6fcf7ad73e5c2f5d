package engine

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"

	schema "github.com/hanpama/graphbind/internal/schema"
)

// serializeLeaf converts a resolved value to the output form of the scalar or
// enum type t.
func (r *runtime) serializeLeaf(t *schema.Type, value any) (any, error) {
	value = unwrapWellKnown(indirect(value))
	if value == nil {
		return nil, nil
	}
	if t.Kind == schema.TypeKindEnum {
		return serializeEnum(t, value)
	}
	if s, ok := r.schema.Options.Scalars[t.Name]; ok {
		return s(value)
	}
	switch t.Name {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		return serializeString(value)
	case "Boolean":
		return serializeBoolean(value)
	case "ID":
		return serializeID(value)
	}
	// Custom scalars without a serializer are emitted as resolved.
	return value, nil
}

func serializeEnum(t *schema.Type, value any) (any, error) {
	var name string
	switch v := value.(type) {
	case string:
		name = v
	case protoreflect.Enum:
		ev := v.Descriptor().Values().ByNumber(v.Number())
		if ev == nil {
			return nil, errors.Errorf("Enum %q cannot represent value: %d", t.Name, v.Number())
		}
		name = string(ev.Name())
	case fmt.Stringer:
		name = v.String()
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.String {
			return nil, errors.Errorf("Enum %q cannot represent value: %v", t.Name, value)
		}
		name = rv.String()
	}
	for _, ev := range t.EnumValues {
		if ev.Name == name {
			return name, nil
		}
	}
	return nil, errors.Errorf("Enum %q cannot represent value: %q", t.Name, name)
}

func serializeInt(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		n := rv.Int()
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, errors.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int(n), nil
	case rv.CanUint():
		n := rv.Uint()
		if n > math.MaxInt32 {
			return nil, errors.Errorf("Int cannot represent non 32-bit signed integer value: %d", n)
		}
		return int(n), nil
	case rv.CanFloat():
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
			return nil, errors.Errorf("Int cannot represent non-integer value: %v", f)
		}
		return int(f), nil
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1, nil
		}
		return 0, nil
	case rv.Kind() == reflect.String:
		n, err := strconv.ParseInt(rv.String(), 10, 32)
		if err != nil {
			return nil, errors.Errorf("Int cannot represent non-integer value: %q", rv.String())
		}
		return int(n), nil
	}
	return nil, errors.Errorf("Int cannot represent value: %v", value)
}

func serializeFloat(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.CanInt():
		return float64(rv.Int()), nil
	case rv.CanUint():
		return float64(rv.Uint()), nil
	case rv.CanFloat():
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.Errorf("Float cannot represent non numeric value: %v", f)
		}
		return f, nil
	case rv.Kind() == reflect.Bool:
		if rv.Bool() {
			return 1.0, nil
		}
		return 0.0, nil
	case rv.Kind() == reflect.String:
		f, err := strconv.ParseFloat(rv.String(), 64)
		if err != nil {
			return nil, errors.Errorf("Float cannot represent non numeric value: %q", rv.String())
		}
		return f, nil
	}
	return nil, errors.Errorf("Float cannot represent value: %v", value)
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.Kind() == reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case rv.CanInt():
		return strconv.FormatInt(rv.Int(), 10), nil
	case rv.CanUint():
		return strconv.FormatUint(rv.Uint(), 10), nil
	case rv.CanFloat():
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}
	return nil, errors.Errorf("String cannot represent value: %v", value)
}

func serializeBoolean(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.Bool:
		return rv.Bool(), nil
	case rv.CanInt():
		return rv.Int() != 0, nil
	case rv.CanUint():
		return rv.Uint() != 0, nil
	case rv.CanFloat():
		return rv.Float() != 0, nil
	}
	return nil, errors.Errorf("Boolean cannot represent a non boolean value: %v", value)
}

func serializeID(value any) (any, error) {
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.String:
		return rv.String(), nil
	case rv.CanInt():
		return strconv.FormatInt(rv.Int(), 10), nil
	case rv.CanUint():
		return strconv.FormatUint(rv.Uint(), 10), nil
	}
	if s, ok := value.(fmt.Stringer); ok {
		return s.String(), nil
	}
	return nil, errors.Errorf("ID cannot represent value: %v", value)
}

// indirect dereferences pointers; nil pointers become nil.
func indirect(value any) any {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		if _, ok := rv.Interface().(proto.Message); ok {
			return rv.Interface()
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

// unwrapWellKnown replaces google.protobuf wrapper messages by the value they
// carry.
func unwrapWellKnown(value any) any {
	m, ok := value.(proto.Message)
	if !ok {
		return value
	}
	pm := m.ProtoReflect()
	desc := pm.Descriptor()
	if !strings.HasPrefix(string(desc.FullName()), "google.protobuf.") || !strings.HasSuffix(string(desc.Name()), "Value") {
		return value
	}
	fd := desc.Fields().ByName("value")
	if fd == nil || desc.Fields().Len() != 1 {
		return value
	}
	return pm.Get(fd).Interface()
}
