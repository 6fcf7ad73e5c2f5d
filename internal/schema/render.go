package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Render prints s as SDL. Root operation types come first, then the other
// named types and the custom directives by name. Built-in scalars, built-in
// directives and introspection types are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	w := &sdlWriter{schema: s}
	w.schemaDefinition()
	for _, t := range w.orderedTypes() {
		w.typeDefinition(t)
	}
	for _, d := range w.customDirectives() {
		w.directiveDefinition(d)
	}
	return strings.Join(w.blocks, "\n\n") + "\n"
}

// FormatValue renders value as a GraphQL literal of type ref. Enum names are
// written bare and input object keys in field order.
func FormatValue(s *Schema, ref *TypeRef, value any) string {
	return (&sdlWriter{schema: s}).value(ref, value)
}

// sdlWriter accumulates one block of SDL per definition.
type sdlWriter struct {
	schema *Schema
	blocks []string
	b      strings.Builder
}

func (w *sdlWriter) flush() {
	w.blocks = append(w.blocks, strings.TrimRight(w.b.String(), "\n"))
	w.b.Reset()
}

func (w *sdlWriter) printf(format string, args ...any) { fmt.Fprintf(&w.b, format, args...) }

func (w *sdlWriter) roots() []string {
	var out []string
	for _, name := range []string{w.schema.QueryType, w.schema.MutationType, w.schema.SubscriptionType} {
		if name != "" && w.schema.Types[name] != nil {
			out = append(out, name)
		}
	}
	return out
}

// schemaDefinition is only written when a root type does not carry its
// default name.
func (w *sdlWriter) schemaDefinition() {
	s := w.schema
	ops := []struct{ op, name, conventional string }{
		{"query", s.QueryType, "Query"},
		{"mutation", s.MutationType, "Mutation"},
		{"subscription", s.SubscriptionType, "Subscription"},
	}
	custom := false
	for _, o := range ops {
		if o.name != "" && o.name != o.conventional {
			custom = true
		}
	}
	if !custom {
		return
	}
	w.printf("schema {\n")
	for _, o := range ops {
		if o.name != "" {
			w.printf("  %s: %s\n", o.op, o.name)
		}
	}
	w.printf("}")
	w.flush()
}

func (w *sdlWriter) orderedTypes() []*Type {
	roots := w.roots()
	isRoot := map[string]bool{}
	out := make([]*Type, 0, len(w.schema.Types))
	for _, name := range roots {
		isRoot[name] = true
		out = append(out, w.schema.Types[name])
	}
	var rest []string
	for name, t := range w.schema.Types {
		if isRoot[name] || strings.HasPrefix(name, "__") || (t.Kind == TypeKindScalar && IsBuiltinScalar(name)) {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		out = append(out, w.schema.Types[name])
	}
	return out
}

func (w *sdlWriter) customDirectives() []*Directive {
	var names []string
	for name := range w.schema.Directives {
		if !IsBuiltinDirective(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	out := make([]*Directive, len(names))
	for i, name := range names {
		out[i] = w.schema.Directives[name]
	}
	return out
}

func (w *sdlWriter) typeDefinition(t *Type) {
	w.description("", t.Description)
	switch t.Kind {
	case TypeKindScalar:
		w.printf("scalar %s", t.Name)
		if t.SpecifiedByURL != nil {
			w.printf(" @specifiedBy(url: %s)", strconv.Quote(*t.SpecifiedByURL))
		}
	case TypeKindObject, TypeKindInterface:
		keyword := "type"
		if t.Kind == TypeKindInterface {
			keyword = "interface"
		}
		w.printf("%s %s", keyword, t.Name)
		if len(t.Interfaces) > 0 {
			w.printf(" implements %s", strings.Join(t.Interfaces, " & "))
		}
		w.printf(" {\n")
		for _, f := range t.Fields {
			w.description("  ", f.Description)
			w.printf("  %s%s: %s%s\n", f.Name, w.arguments(f.Arguments), f.Type, deprecated(f.IsDeprecated, f.DeprecationReason))
		}
		w.printf("}")
	case TypeKindUnion:
		w.printf("union %s = %s", t.Name, strings.Join(t.PossibleTypes, " | "))
	case TypeKindEnum:
		w.printf("enum %s {\n", t.Name)
		for _, v := range t.EnumValues {
			w.description("  ", v.Description)
			w.printf("  %s%s\n", v.Name, deprecated(v.IsDeprecated, v.DeprecationReason))
		}
		w.printf("}")
	case TypeKindInputObject:
		w.printf("input %s", t.Name)
		if t.OneOf {
			w.printf(" @oneOf")
		}
		w.printf(" {\n")
		for _, in := range t.InputFields {
			w.description("  ", in.Description)
			w.printf("  %s\n", w.inputValue(in))
		}
		w.printf("}")
	}
	w.flush()
}

func (w *sdlWriter) directiveDefinition(d *Directive) {
	w.description("", d.Description)
	w.printf("directive @%s%s", d.Name, w.arguments(d.Arguments))
	if d.IsRepeatable {
		w.printf(" repeatable")
	}
	w.printf(" on %s", strings.Join(d.Locations, " | "))
	w.flush()
}

func (w *sdlWriter) arguments(args []*InputValue) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = w.inputValue(a)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (w *sdlWriter) inputValue(in *InputValue) string {
	out := in.Name + ": " + in.Type.String()
	if in.DefaultValue != nil {
		out += " = " + w.value(in.Type, in.DefaultValue)
	}
	return out + deprecated(in.IsDeprecated, in.DeprecationReason)
}

// description writes a block string. Descriptions of fields and enum values
// are indented with their definition.
func (w *sdlWriter) description(indent, desc string) {
	if desc == "" {
		return
	}
	w.printf("%s\"\"\"\n", indent)
	for _, line := range strings.Split(strings.ReplaceAll(desc, `"""`, `\"""`), "\n") {
		w.printf("%s%s\n", indent, line)
	}
	w.printf("%s\"\"\"\n", indent)
}

func deprecated(is bool, reason string) string {
	switch {
	case !is:
		return ""
	case reason == "" || reason == "No longer supported":
		return " @deprecated"
	}
	return " @deprecated(reason: " + strconv.Quote(reason) + ")"
}

func (w *sdlWriter) value(ref *TypeRef, v any) string {
	if v == nil {
		return "null"
	}
	var named *Type
	if ref != nil && w.schema != nil {
		named = w.schema.Types[ref.GetNamedType()]
	}
	switch x := v.(type) {
	case []any:
		var elem *TypeRef
		if r := ref; r != nil {
			if r.IsNonNull() {
				r = r.OfType
			}
			if r != nil && r.Kind == TypeRefKindList {
				elem = r.OfType
			}
		}
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = w.value(elem, item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		return w.object(named, x)
	case string:
		if named != nil && named.Kind == TypeKindEnum {
			return x
		}
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// object writes input object fields in declaration order when the type is
// known, otherwise by key.
func (w *sdlWriter) object(t *Type, m map[string]any) string {
	var parts []string
	seen := map[string]bool{}
	if t != nil && t.Kind == TypeKindInputObject {
		for _, f := range t.InputFields {
			if v, ok := m[f.Name]; ok {
				parts = append(parts, f.Name+": "+w.value(f.Type, v))
				seen[f.Name] = true
			}
		}
	}
	var rest []string
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		parts = append(parts, k+": "+w.value(nil, m[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func renderTypeRef(typeRef *TypeRef) string {
	if typeRef == nil {
		return ""
	}

	switch typeRef.Kind {
	case TypeRefKindNamed:
		return typeRef.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(typeRef.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(typeRef.OfType) + "!"
	default:
		return ""
	}
}
