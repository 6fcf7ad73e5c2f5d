package introspection

import schema "github.com/hanpama/graphbind/internal/schema"

func named(name string) *schema.TypeRef { return schema.NamedType(name) }

func nonNull(name string) *schema.TypeRef { return schema.NonNullType(named(name)) }

// listOf returns [name!] or [name!]! when required.
func listOf(name string, required bool) *schema.TypeRef {
	t := schema.ListType(nonNull(name))
	if required {
		return schema.NonNullType(t)
	}
	return t
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", named("Boolean")).SetDefault(false)
}

func object(name, description string, fields ...*schema.Field) *schema.Type {
	t := schema.NewType(name, schema.TypeKindObject, description)
	t.Fields = fields
	return t
}

func enum(name string, values ...string) *schema.Type {
	t := schema.NewType(name, schema.TypeKindEnum, "")
	for _, v := range values {
		t.AddEnumValue(schema.NewEnumValue(v, ""))
	}
	return t
}

// metaTypes returns fresh definitions of the __ types.
func metaTypes() []*schema.Type {
	f := schema.NewField
	return []*schema.Type{
		object("__Schema", "A GraphQL Schema defines the capabilities of a GraphQL server.",
			f("description", "", named("String")),
			f("types", "A list of all types supported by this server.", listOf("__Type", true)),
			f("queryType", "The type that query operations will be rooted at.", nonNull("__Type")),
			f("mutationType", "", named("__Type")),
			f("subscriptionType", "", named("__Type")),
			f("directives", "", listOf("__Directive", true)),
		),
		object("__Type", "The fundamental unit of any GraphQL Schema is the type.",
			f("kind", "", nonNull("__TypeKind")),
			f("name", "", named("String")),
			f("description", "", named("String")),
			f("specifiedByURL", "", named("String")),
			f("fields", "", listOf("__Field", false)).AddArgument(includeDeprecated()),
			f("interfaces", "", listOf("__Type", false)),
			f("possibleTypes", "", listOf("__Type", false)),
			f("enumValues", "", listOf("__EnumValue", false)).AddArgument(includeDeprecated()),
			f("inputFields", "", listOf("__InputValue", false)).AddArgument(includeDeprecated()),
			f("ofType", "", named("__Type")),
			f("isOneOf", "", named("Boolean")),
		),
		object("__Field", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("args", "", listOf("__InputValue", true)).AddArgument(includeDeprecated()),
			f("type", "", nonNull("__Type")),
			f("isDeprecated", "", nonNull("Boolean")),
			f("deprecationReason", "", named("String")),
		),
		object("__InputValue", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("type", "", nonNull("__Type")),
			f("defaultValue", "", named("String")),
			f("isDeprecated", "", nonNull("Boolean")),
			f("deprecationReason", "", named("String")),
		),
		object("__EnumValue", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("isDeprecated", "", nonNull("Boolean")),
			f("deprecationReason", "", named("String")),
		),
		object("__Directive", "",
			f("name", "", nonNull("String")),
			f("description", "", named("String")),
			f("isRepeatable", "", nonNull("Boolean")),
			f("locations", "", listOf("__DirectiveLocation", true)),
			f("args", "", listOf("__InputValue", true)).AddArgument(includeDeprecated()),
		),
		enum("__TypeKind", "SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"),
		enum("__DirectiveLocation",
			"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION", "FRAGMENT_SPREAD",
			"INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA", "SCALAR", "OBJECT", "FIELD_DEFINITION",
			"ARGUMENT_DEFINITION", "INTERFACE", "UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT",
			"INPUT_FIELD_DEFINITION"),
	}
}

// extend returns a shallow copy of sch with the meta types added and the
// query type copied with __schema and __type appended. sch is not modified.
func extend(sch *schema.Schema) *schema.Schema {
	out := &schema.Schema{
		QueryType:        sch.QueryType,
		MutationType:     sch.MutationType,
		SubscriptionType: sch.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(sch.Types)+8),
		Directives:       sch.Directives,
		Description:      sch.Description,
	}
	for name, t := range sch.Types {
		out.Types[name] = t
	}
	for _, t := range metaTypes() {
		out.Types[t.Name] = t
	}
	if q := sch.GetQueryType(); q != nil {
		cp := *q
		cp.Fields = append(append([]*schema.Field(nil), q.Fields...),
			schema.NewField("__schema", "Access the current type schema of this server.", nonNull("__Schema")),
			schema.NewField("__type", "Request the type information of a single type.", named("__Type")).
				AddArgument(schema.NewInputValue("name", "", nonNull("String"))),
		)
		out.Types[cp.Name] = &cp
	}
	return out
}
