package schema

import (
	"strings"

	language "github.com/hanpama/graphbind/internal/language"
)

// BuildFromAST builds an executable GraphQL schema from a validated gqlparser
// schema. Built-in introspection types and meta fields are left out; they are
// served by the introspection runtime.
func BuildFromAST(src *language.ValidatedSchema) (*Schema, error) {
	s := NewSchema("")
	if src.Query != nil {
		s.SetQueryType(src.Query.Name)
	}
	if src.Mutation != nil {
		s.SetMutationType(src.Mutation.Name)
	}
	if src.Subscription != nil {
		s.SetSubscriptionType(src.Subscription.Name)
	}
	addBuiltins(s)

	for name, def := range src.Types {
		if def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		switch def.Kind {
		case language.Object:
			s.AddType(buildObject(def))
		case language.Interface:
			t := buildObject(def)
			t.Kind = TypeKindInterface
			for _, impl := range src.PossibleTypes[name] {
				t.AddPossibleType(impl.Name)
			}
			s.AddType(t)
		case language.Union:
			s.AddType(buildUnion(def))
		case language.Enum:
			s.AddType(buildEnum(def))
		case language.InputObject:
			s.AddType(buildInput(def))
		case language.Scalar:
			s.AddType(NewType(def.Name, TypeKindScalar, def.Description))
		}
	}
	for name, dir := range src.Directives {
		if _, ok := s.Directives[name]; ok || dir.Position == nil || dir.Position.Src == nil || dir.Position.Src.BuiltIn {
			continue
		}
		s.AddDirective(buildDirective(dir))
	}
	return s, nil
}

func buildObject(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindObject, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	for _, fieldDef := range def.Fields {
		if strings.HasPrefix(fieldDef.Name, "__") {
			continue
		}
		t.AddField(buildField(fieldDef))
	}
	return t
}

func buildField(def *language.FieldDefinition) *Field {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if d := def.Directives.ForName("deprecated"); d != nil {
		f.Deprecate(deprecationReason(d))
	}
	for _, arg := range def.Arguments {
		in := NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
			SetDefault(constValue(arg.DefaultValue))
		if d := arg.Directives.ForName("deprecated"); d != nil {
			in.Deprecate(deprecationReason(d))
		}
		f.AddArgument(in)
	}
	return f
}

func buildEnum(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if d := v.Directives.ForName("deprecated"); d != nil {
			e.Deprecate(deprecationReason(d))
		}
		t.AddEnumValue(e)
	}
	return t
}

func buildUnion(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	return t
}

func buildInput(def *language.Definition) *Type {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, field := range def.Fields {
		in := NewInputValue(field.Name, field.Description, buildTypeRef(field.Type)).
			SetDefault(constValue(field.DefaultValue))
		if d := field.Directives.ForName("deprecated"); d != nil {
			in.Deprecate(deprecationReason(d))
		}
		t.AddInputField(in)
	}
	return t
}

func buildDirective(dir *language.DirectiveDefinition) *Directive {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		d.AddArgument(NewInputValue(arg.Name, arg.Description, buildTypeRef(arg.Type)).
			SetDefault(constValue(arg.DefaultValue)))
	}
	return d
}

func buildTypeRef(t *language.Type) *TypeRef {
	if t == nil {
		return nil
	}
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		return NonNullType(ref)
	}
	return ref
}

func constValue(v *language.Value) any {
	if v == nil {
		return nil
	}
	out, err := v.Value(nil)
	if err != nil {
		return nil
	}
	return out
}

func deprecationReason(d *language.Directive) string {
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

// BuildFromSDL parses and validates an SDL string and returns the corresponding Schema.
func BuildFromSDL(sdl string) (*Schema, error) {
	src, err := language.LoadSchema("schema.graphqls", sdl)
	if err != nil {
		return nil, err
	}
	return BuildFromAST(src)
}
