package compiler

import (
	"fmt"
	"reflect"

	binder "github.com/hanpama/graphbind/internal/binder"
	registry "github.com/hanpama/graphbind/internal/registry"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// inferShapes records the concrete Go types resolver methods return for
// object-typed fields.
func (s *ExecutableSchema) inferShapes() {
	for _, b := range s.Bindings() {
		if b.Kind != binder.MethodBinding {
			continue
		}
		target := s.Schema.Types[schema.GetNamedType(b.Field.Type)]
		if target == nil || target.Kind != schema.TypeKindObject {
			continue
		}
		rt := elementType(b.ReturnType())
		if rt == nil {
			continue
		}
		if !containsType(s.shapes[target.Name], rt) {
			s.shapes[target.Name] = append(s.shapes[target.Name], rt)
		}
	}
}

// checkShapes rejects known shapes that lack a property needed by a non-null
// property-bound field of the type they back.
func (s *ExecutableSchema) checkShapes() error {
	for _, t := range objectTypes(s.Schema) {
		shapes := append([]reflect.Type(nil), s.shapes[t.Name]...)
		if shape, ok := s.Dictionary.Shape(t.Name); ok {
			if gs, ok := shape.(registry.GoShape); ok && !containsType(shapes, gs.Type) {
				shapes = append(shapes, gs.Type)
			}
		}
		for _, rt := range shapes {
			for _, f := range t.Fields {
				b := s.Binding(t.Name, f.Name)
				if b.Kind != binder.PropertyBinding || !schema.IsNonNull(f.Type) {
					continue
				}
				if !binder.TypeHasProperty(rt, f) {
					return &binder.BindingError{
						TypeName:  t.Name,
						FieldName: f.Name,
						Reason:    fmt.Sprintf("%s has no property %q", rt, f.Name),
					}
				}
			}
		}
	}
	return nil
}

// elementType strips pointers, slices and arrays. Dynamic types (interfaces
// and maps) yield nil since their properties are only known at runtime.
func elementType(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}
	return nil
}

func containsType(ts []reflect.Type, t reflect.Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}
