// Package introspection serves __schema, __type and the __ meta types on top
// of another runtime. Everything else is delegated.
package introspection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	executor "github.com/hanpama/graphbind/internal/executor"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// Wrapper pairs the introspecting runtime with the schema it must be executed
// against.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap extends sch with the introspection types and returns a runtime that
// answers their fields and forwards all other calls to base.
func Wrap(base executor.Runtime, sch *schema.Schema) *Wrapper {
	extended := extend(sch)
	return &Wrapper{
		Runtime: &runtime{base: base, schema: extended},
		Schema:  extended,
	}
}

type runtime struct {
	base   executor.Runtime
	schema *schema.Schema
}

func isMeta(name string) bool { return strings.HasPrefix(name, "__") }

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	if !isMeta(objectType) {
		return r.base.ResolveSync(ctx, objectType, field, source, args)
	}

	var (
		v  any
		ok bool
	)
	switch src := source.(type) {
	case *schema.Schema:
		v, ok = r.schemaField(src, field)
	case *schema.Type:
		v, ok = r.typeField(src, field, args)
	case *schema.TypeRef:
		v, ok = r.wrapperField(src, field)
	case *schema.Field:
		v, ok = r.fieldField(src, field, args)
	case *schema.InputValue:
		v, ok = r.inputValueField(src, field)
	case *schema.EnumValue:
		v, ok = enumValueField(src, field)
	case *schema.Directive:
		v, ok = directiveField(src, field, args)
	}
	if !ok {
		return nil, errors.Errorf("introspection: %s.%s is not available on %T", objectType, field, source)
	}
	return v, nil
}

func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	return r.base.BatchResolveAsync(ctx, tasks)
}

func (r *runtime) ResolveType(ctx context.Context, declaredType string, value any) (string, error) {
	if isMeta(declaredType) {
		return declaredType, nil
	}
	return r.base.ResolveType(ctx, declaredType, value)
}

func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (any, error) {
	if isMeta(typeName) {
		return fmt.Sprint(value), nil
	}
	return r.base.SerializeLeafValue(ctx, typeName, value)
}

// typeValue returns the *schema.Type for named references and the reference
// itself for list and non-null wrappers.
func (r *runtime) typeValue(ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNamed {
		if t := r.schema.Types[ref.Named]; t != nil {
			return t
		}
		return nil
	}
	return ref
}

func (r *runtime) schemaField(sch *schema.Schema, field string) (any, bool) {
	switch field {
	case "description":
		return optional(sch.Description), true
	case "types":
		out := make([]*schema.Type, 0, len(sch.Types))
		for _, t := range sch.Types {
			out = append(out, t)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	case "queryType":
		return nilType(sch.GetQueryType()), true
	case "mutationType":
		return nilType(sch.GetMutationType()), true
	case "subscriptionType":
		return nilType(sch.GetSubscriptionType()), true
	case "directives":
		out := make([]*schema.Directive, 0, len(sch.Directives))
		for _, d := range sch.Directives {
			out = append(out, d)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return out, true
	}
	return nil, false
}

func (r *runtime) typeField(t *schema.Type, field string, args map[string]any) (any, bool) {
	withDeprecated := boolArg(args, "includeDeprecated")
	switch field {
	case "kind":
		return string(t.Kind), true
	case "name":
		return t.Name, true
	case "description":
		return optional(t.Description), true
	case "specifiedByURL":
		return t.SpecifiedByURL, true
	case "fields":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if isMeta(f.Name) || (f.IsDeprecated && !withDeprecated) {
				continue
			}
			out = append(out, f)
		}
		return out, true
	case "interfaces":
		if t.Kind != schema.TypeKindObject && t.Kind != schema.TypeKindInterface {
			return nil, true
		}
		return r.types(t.Interfaces), true
	case "possibleTypes":
		if t.Kind != schema.TypeKindInterface && t.Kind != schema.TypeKindUnion {
			return nil, true
		}
		return r.types(t.PossibleTypes), true
	case "enumValues":
		if t.Kind != schema.TypeKindEnum {
			return nil, true
		}
		out := []*schema.EnumValue{}
		for _, ev := range t.EnumValues {
			if ev.IsDeprecated && !withDeprecated {
				continue
			}
			out = append(out, ev)
		}
		return out, true
	case "inputFields":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return inputValues(t.InputFields, withDeprecated), true
	case "ofType":
		return nil, true
	case "isOneOf":
		if t.Kind != schema.TypeKindInputObject {
			return nil, true
		}
		return t.OneOf, true
	}
	return nil, false
}

// wrapperField serves __Type fields of LIST and NON_NULL wrappers.
func (r *runtime) wrapperField(ref *schema.TypeRef, field string) (any, bool) {
	switch field {
	case "kind":
		return string(ref.Kind), true
	case "ofType":
		return r.typeValue(ref.OfType), true
	case "name", "description", "specifiedByURL", "fields", "interfaces",
		"possibleTypes", "enumValues", "inputFields", "isOneOf":
		return nil, true
	}
	return nil, false
}

func (r *runtime) fieldField(f *schema.Field, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return f.Name, true
	case "description":
		return optional(f.Description), true
	case "args":
		return inputValues(f.Arguments, boolArg(args, "includeDeprecated")), true
	case "type":
		return r.typeValue(f.Type), true
	case "isDeprecated":
		return f.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), true
	}
	return nil, false
}

func (r *runtime) inputValueField(v *schema.InputValue, field string) (any, bool) {
	switch field {
	case "name":
		return v.Name, true
	case "description":
		return optional(v.Description), true
	case "type":
		return r.typeValue(v.Type), true
	case "defaultValue":
		if v.DefaultValue == nil {
			return nil, true
		}
		return schema.FormatValue(r.schema, v.Type, v.DefaultValue), true
	case "isDeprecated":
		return v.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(v.IsDeprecated, v.DeprecationReason), true
	}
	return nil, false
}

func enumValueField(ev *schema.EnumValue, field string) (any, bool) {
	switch field {
	case "name":
		return ev.Name, true
	case "description":
		return optional(ev.Description), true
	case "isDeprecated":
		return ev.IsDeprecated, true
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), true
	}
	return nil, false
}

func directiveField(d *schema.Directive, field string, args map[string]any) (any, bool) {
	switch field {
	case "name":
		return d.Name, true
	case "description":
		return optional(d.Description), true
	case "isRepeatable":
		return d.IsRepeatable, true
	case "locations":
		return append([]string(nil), d.Locations...), true
	case "args":
		return inputValues(d.Arguments, boolArg(args, "includeDeprecated")), true
	}
	return nil, false
}

func (r *runtime) types(names []string) []*schema.Type {
	out := []*schema.Type{}
	for _, n := range names {
		if t := r.schema.Types[n]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

func inputValues(in []*schema.InputValue, withDeprecated bool) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range in {
		if v.IsDeprecated && !withDeprecated {
			continue
		}
		out = append(out, v)
	}
	return out
}

// nilType keeps a missing root type a true nil rather than a typed nil.
func nilType(t *schema.Type) any {
	if t == nil {
		return nil
	}
	return t
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deprecationReason(deprecated bool, reason string) any {
	if !deprecated {
		return nil
	}
	return reason
}

func boolArg(args map[string]any, name string) bool {
	b, _ := args[name].(bool)
	return b
}
