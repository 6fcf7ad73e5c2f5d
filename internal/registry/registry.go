package registry

import (
	"fmt"

	schema "github.com/hanpama/graphbind/internal/schema"
)

// TypeNamer is implemented by values that name their own GraphQL type.
type TypeNamer interface {
	GraphQLTypeName() string
}

// FieldChecker reports whether value can supply field f of object type t,
// either from its own properties or through a resolver bound to t.
type FieldChecker func(t *schema.Type, f *schema.Field, value any) bool

// Position describes where a value is being resolved: the declared named type
// and the object types legal there.
type Position struct {
	Declared   string
	Candidates []*schema.Type
}

func (p Position) allows(name string) bool {
	for _, c := range p.Candidates {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Strategy is one link of the resolution chain. It returns matched=false to
// pass the value on to the next strategy.
type Strategy interface {
	Name() string
	Resolve(pos Position, value any) (typeName string, matched bool, err error)
}

// Registry resolves the object type of runtime values. It is immutable and
// safe for concurrent use.
type Registry struct {
	schema     *schema.Schema
	strategies []Strategy
}

// New returns a registry with the default chain: self-described type names,
// then dictionary entries, then structural matching.
func New(sch *schema.Schema, dict Dictionary, check FieldChecker) *Registry {
	return NewWithStrategies(sch,
		TypeNameStrategy{},
		DictionaryStrategy{Dictionary: dict},
		StructuralStrategy{Check: check},
	)
}

func NewWithStrategies(sch *schema.Schema, strategies ...Strategy) *Registry {
	return &Registry{schema: sch, strategies: strategies}
}

// Resolve returns the object type name to use for value at a position whose
// declared named type is declared (an object, interface or union type).
func (r *Registry) Resolve(declared string, value any) (string, error) {
	t := r.schema.Types[declared]
	if t == nil {
		return "", &TypeResolutionError{Declared: declared, ValueType: valueType(value), Reason: "unknown type"}
	}
	pos := Position{Declared: declared, Candidates: r.schema.PossibleTypes(declared)}
	if len(pos.Candidates) == 0 {
		return "", &TypeResolutionError{Declared: declared, ValueType: valueType(value), Reason: fmt.Sprintf("%s has no possible object types", declared)}
	}
	for _, s := range r.strategies {
		name, ok, err := s.Resolve(pos, value)
		if err != nil {
			return "", err
		}
		if ok {
			return name, nil
		}
	}
	return "", &TypeResolutionError{Declared: declared, ValueType: valueType(value), Reason: "no strategy matched"}
}

// TypeNameStrategy accepts type names carried by the value itself.
type TypeNameStrategy struct{}

func (TypeNameStrategy) Name() string { return "typename" }

func (TypeNameStrategy) Resolve(pos Position, value any) (string, bool, error) {
	var name string
	switch v := value.(type) {
	case TypeNamer:
		name = v.GraphQLTypeName()
	case map[string]any:
		name, _ = v["__typename"].(string)
	}
	if name == "" {
		return "", false, nil
	}
	if !pos.allows(name) {
		return "", false, &TypeResolutionError{Declared: pos.Declared, ValueType: valueType(value), Reason: fmt.Sprintf("value names type %q which is not possible here", name)}
	}
	return name, true, nil
}

// DictionaryStrategy matches the value against explicitly registered shapes
// of the legal candidates.
type DictionaryStrategy struct {
	Dictionary Dictionary
}

func (DictionaryStrategy) Name() string { return "dictionary" }

func (s DictionaryStrategy) Resolve(pos Position, value any) (string, bool, error) {
	if len(s.Dictionary) == 0 {
		return "", false, nil
	}
	var matches []string
	for _, c := range pos.Candidates {
		if shape, ok := s.Dictionary[c.Name]; ok && shape.Matches(value) {
			matches = append(matches, c.Name)
		}
	}
	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return matches[0], true, nil
	default:
		return "", false, &AmbiguousTypeError{Declared: pos.Declared, ValueType: valueType(value), Candidates: matches, Strategy: s.Name()}
	}
}

// StructuralStrategy picks the single candidate whose fields the value can
// all supply. When no candidate is fully satisfied and the position admits
// only one type, that type is used.
type StructuralStrategy struct {
	Check FieldChecker
}

func (StructuralStrategy) Name() string { return "structural" }

func (s StructuralStrategy) Resolve(pos Position, value any) (string, bool, error) {
	var matches []string
	if s.Check != nil {
		for _, c := range pos.Candidates {
			if satisfies(c, value, s.Check) {
				matches = append(matches, c.Name)
			}
		}
	}
	switch {
	case len(matches) == 1:
		return matches[0], true, nil
	case len(matches) > 1:
		return "", false, &AmbiguousTypeError{Declared: pos.Declared, ValueType: valueType(value), Candidates: matches, Strategy: s.Name()}
	case len(pos.Candidates) == 1:
		return pos.Candidates[0].Name, true, nil
	}
	return "", false, nil
}

func satisfies(t *schema.Type, value any, check FieldChecker) bool {
	for _, f := range t.Fields {
		if !check(t, f, value) {
			return false
		}
	}
	return true
}

func valueType(v any) string { return fmt.Sprintf("%T", v) }
