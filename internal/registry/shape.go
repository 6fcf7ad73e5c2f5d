package registry

import (
	"reflect"
	"sort"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
)

// Shape identifies a concrete runtime representation that may back one or
// more declared object types.
type Shape interface {
	Matches(value any) bool
	String() string
}

// GoShape matches values of one Go type. Pointers are dereferenced, so T and
// *T are the same shape.
type GoShape struct {
	Type reflect.Type
}

func (s GoShape) Matches(value any) bool {
	if value == nil || s.Type == nil {
		return false
	}
	return indirectType(reflect.TypeOf(value)) == s.Type
}

func (s GoShape) String() string { return s.Type.String() }

// ProtoShape matches protobuf messages by full name. Generated and dynamic
// messages of the same descriptor match alike.
type ProtoShape struct {
	FullName protoreflect.FullName
}

func (s ProtoShape) Matches(value any) bool {
	m, ok := value.(proto.Message)
	if !ok || m == nil {
		return false
	}
	return m.ProtoReflect().Descriptor().FullName() == s.FullName
}

func (s ProtoShape) String() string { return "proto:" + string(s.FullName) }

// ShapeOf derives the shape of sample. A reflect.Type is accepted as is;
// protobuf messages (including typed nil pointers of generated messages)
// yield a ProtoShape.
func ShapeOf(sample any) Shape {
	switch v := sample.(type) {
	case nil:
		return nil
	case Shape:
		return v
	case reflect.Type:
		return GoShape{Type: indirectType(v)}
	case proto.Message:
		return ProtoShape{FullName: v.ProtoReflect().Descriptor().FullName()}
	}
	return GoShape{Type: indirectType(reflect.TypeOf(sample))}
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// Dictionary maps declared object type names to the runtime shape backing
// them. One shape may be registered under several names.
type Dictionary map[string]Shape

func NewDictionary() Dictionary { return Dictionary{} }

// Add registers the shape of sample for typeName.
func (d Dictionary) Add(typeName string, sample any) Dictionary {
	if s := ShapeOf(sample); s != nil {
		d[typeName] = s
	}
	return d
}

// Shape returns the shape registered for typeName.
func (d Dictionary) Shape(typeName string) (Shape, bool) {
	s, ok := d[typeName]
	return s, ok
}

// TypeNames returns the registered type names in lexical order.
func (d Dictionary) TypeNames() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
