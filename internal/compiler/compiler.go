// Package compiler turns SDL text and resolver objects into an immutable
// executable schema.
package compiler

import (
	"fmt"
	"reflect"
	"sort"

	"go.uber.org/zap"

	binder "github.com/hanpama/graphbind/internal/binder"
	language "github.com/hanpama/graphbind/internal/language"
	registry "github.com/hanpama/graphbind/internal/registry"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// ExecutableSchema is a schema whose every field has a binding. It is never
// modified after Compile returns and may be shared by concurrent executions.
type ExecutableSchema struct {
	Schema     *schema.Schema
	Document   *language.ValidatedSchema
	Registry   *registry.Registry
	Dictionary registry.Dictionary
	Options    Options

	bindings map[string]*binder.Binding
	shapes   map[string][]reflect.Type
}

// Binding returns the binding of typeName.fieldName, or nil.
func (s *ExecutableSchema) Binding(typeName, fieldName string) *binder.Binding {
	return s.bindings[bindingKey(typeName, fieldName)]
}

// Bindings lists all bindings ordered by type and field name.
func (s *ExecutableSchema) Bindings() []*binder.Binding {
	out := make([]*binder.Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TypeName != out[j].TypeName {
			return out[i].TypeName < out[j].TypeName
		}
		return out[i].FieldName < out[j].FieldName
	})
	return out
}

// InferredShapes returns the Go types resolver methods were found to return
// for the named object type.
func (s *ExecutableSchema) InferredShapes(typeName string) []reflect.Type {
	return s.shapes[typeName]
}

// HasField reports whether value can supply field f of object type t: either
// a resolver serves the field or value has the property.
func (s *ExecutableSchema) HasField(t *schema.Type, f *schema.Field, value any) bool {
	b := s.Binding(t.Name, f.Name)
	if b == nil {
		return false
	}
	if b.Kind != binder.PropertyBinding {
		return true
	}
	return binder.HasProperty(value, f)
}

func bindingKey(typeName, fieldName string) string { return typeName + "." + fieldName }

// Compile parses and validates schemaText, binds every field of every object
// type, and checks the dictionary. dict may be nil.
func Compile(schemaText string, resolvers []binder.Resolver, dict registry.Dictionary, opts ...Option) (*ExecutableSchema, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	log := o.Logger

	doc, err := language.LoadSchema("schema.graphqls", schemaText)
	if err != nil {
		return nil, schemaError(language.Messages(err)...)
	}
	sch, err := schema.BuildFromAST(doc)
	if err != nil {
		return nil, schemaError(err.Error())
	}

	byType, err := groupResolvers(sch, resolvers)
	if err != nil {
		return nil, err
	}
	if err := checkDictionary(sch, dict); err != nil {
		return nil, err
	}

	es := &ExecutableSchema{
		Schema:     sch,
		Document:   doc,
		Dictionary: dict,
		Options:    *o,
		bindings:   map[string]*binder.Binding{},
		shapes:     map[string][]reflect.Type{},
	}
	for _, t := range objectTypes(sch) {
		root := sch.IsRootType(t.Name)
		for _, f := range t.Fields {
			b, err := binder.Bind(t, f, byType[t.Name], root)
			if err != nil {
				return nil, err
			}
			if b == nil {
				if root {
					return nil, schemaError(fmt.Sprintf("no resolver found for %s.%s", t.Name, f.Name))
				}
				b = binder.NewPropertyBinding(t, f)
			}
			f.SetAsync(b.Kind != binder.PropertyBinding)
			es.bindings[bindingKey(t.Name, f.Name)] = b
			log.Debug("bound field",
				zap.String("type", t.Name),
				zap.String("field", f.Name),
				zap.Stringer("kind", b.Kind),
				zap.String("method", b.MethodName),
			)
		}
	}
	es.inferShapes()
	if err := es.checkShapes(); err != nil {
		return nil, err
	}
	es.Registry = registry.New(sch, dict, es.HasField)

	log.Info("schema compiled",
		zap.Int("types", len(sch.Types)),
		zap.Int("bindings", len(es.bindings)),
		zap.Int("dictionary", len(dict)),
	)
	return es, nil
}

func groupResolvers(sch *schema.Schema, resolvers []binder.Resolver) (map[string][]binder.Resolver, error) {
	byType := map[string][]binder.Resolver{}
	var msgs []string
	for _, r := range resolvers {
		name := r.TypeName
		switch r.Operation {
		case "":
		case binder.OperationQuery:
			name = sch.QueryType
		case binder.OperationMutation:
			name = sch.MutationType
		default:
			msgs = append(msgs, fmt.Sprintf("unsupported operation %q", r.Operation))
			continue
		}
		if name == "" {
			msgs = append(msgs, fmt.Sprintf("schema has no %s type", r.Operation))
			continue
		}
		t := sch.Types[name]
		switch {
		case t == nil:
			msgs = append(msgs, fmt.Sprintf("resolver registered for unknown type %s", name))
		case t.Kind != schema.TypeKindObject:
			msgs = append(msgs, fmt.Sprintf("resolver registered for %s type %s", t.Kind, name))
		default:
			byType[name] = append(byType[name], r)
		}
	}
	if len(msgs) > 0 {
		return nil, schemaError(msgs...)
	}
	return byType, nil
}

func checkDictionary(sch *schema.Schema, dict registry.Dictionary) error {
	var msgs []string
	for _, name := range dict.TypeNames() {
		t := sch.Types[name]
		switch {
		case t == nil:
			msgs = append(msgs, fmt.Sprintf("dictionary entry for unknown type %s", name))
		case t.Kind != schema.TypeKindObject:
			msgs = append(msgs, fmt.Sprintf("dictionary entry for %s type %s", t.Kind, name))
		case dict[name] == nil:
			msgs = append(msgs, fmt.Sprintf("dictionary entry for %s has no shape", name))
		}
	}
	if len(msgs) > 0 {
		return schemaError(msgs...)
	}
	return nil
}

func objectTypes(sch *schema.Schema) []*schema.Type {
	var out []*schema.Type
	for _, t := range sch.Types {
		if t.Kind == schema.TypeKindObject {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
