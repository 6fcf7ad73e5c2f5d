package schema

// builtinScalars are the specified scalar types present in every schema.
var builtinScalars = []struct{ name, description string }{
	{"String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences."},
	{"Int", "The `Int` scalar type represents non-fractional signed whole numeric values."},
	{"Float", "The `Float` scalar type represents signed double-precision fractional values."},
	{"Boolean", "The `Boolean` scalar type represents `true` or `false`."},
	{"ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching."},
}

// addBuiltins registers the built-in scalars and the executable directives
// the executor understands.
func addBuiltins(s *Schema) {
	for _, sc := range builtinScalars {
		s.AddType(NewType(sc.name, TypeKindScalar, sc.description))
	}
	s.AddDirective(conditionDirective("include",
		"Directs the executor to include this field or fragment only when the `if` argument is true.",
		"Included when true."))
	s.AddDirective(conditionDirective("skip",
		"Directs the executor to skip this field or fragment when the `if` argument is true.",
		"Skipped when true."))
}

func conditionDirective(name, description, ifDescription string) *Directive {
	d := NewDirective(name, description).
		AddArgument(NewInputValue("if", ifDescription, NonNullType(NamedType("Boolean"))))
	d.Locations = []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"}
	return d
}

// IsBuiltinScalar reports whether name is one of the specified scalar types.
func IsBuiltinScalar(name string) bool {
	for _, sc := range builtinScalars {
		if sc.name == name {
			return true
		}
	}
	return false
}

// IsBuiltinDirective reports whether name is a directive every schema
// defines implicitly.
func IsBuiltinDirective(name string) bool {
	switch name {
	case "include", "skip", "deprecated", "specifiedBy", "oneOf":
		return true
	}
	return false
}
