// Package graphbind executes GraphQL queries against plain Go values.
//
// A schema written in SDL is compiled together with resolver values into an
// immutable Schema. Root fields are served by resolver methods named after
// the field (defaultGreeting -> DefaultGreeting) or, failing that, by key
// lookup on resolvers that implement Getter or are maps. Fields of other
// object types are read from the parent value: protobuf messages, maps,
// struct fields and getter methods all work.
//
// When one Go type backs several GraphQL object types, the optional
// Dictionary tells them apart; without one, values are matched structurally
// and a value that fits more than one candidate yields an AmbiguousTypeError.
//
//	s, err := graphbind.Compile(sdl, []graphbind.Resolver{graphbind.Query(&resolver{})}, nil)
//	res := s.Execute(ctx, `{ defaultGreeting { value } }`, "", nil)
package graphbind

import (
	"context"

	binder "github.com/hanpama/graphbind/internal/binder"
	compiler "github.com/hanpama/graphbind/internal/compiler"
	engine "github.com/hanpama/graphbind/internal/engine"
	executor "github.com/hanpama/graphbind/internal/executor"
	registry "github.com/hanpama/graphbind/internal/registry"
	schema "github.com/hanpama/graphbind/internal/schema"
)

type (
	Resolver  = binder.Resolver
	Getter    = binder.Getter
	TypeNamer = registry.TypeNamer

	Dictionary = registry.Dictionary
	Shape      = registry.Shape
	GoShape    = registry.GoShape
	ProtoShape = registry.ProtoShape

	Option           = compiler.Option
	ScalarSerializer = compiler.ScalarSerializer

	ExecutionResult = executor.ExecutionResult
	GraphQLError    = executor.GraphQLError
	ResultMap       = executor.ResultMap
	Path            = executor.Path

	SchemaError             = compiler.SchemaError
	ResolverBindingError    = binder.BindingError
	ResolverInvocationError = binder.InvocationError
	AmbiguousTypeError      = registry.AmbiguousTypeError
	TypeResolutionError     = registry.TypeResolutionError
)

var (
	// For registers instance as the resolver of the named object type.
	For = binder.For
	// Query registers instance as the resolver of the query root type.
	Query = binder.Query
	// Mutation registers instance as the resolver of the mutation root type.
	Mutation = binder.Mutation

	NewDictionary = registry.NewDictionary
	ShapeOf       = registry.ShapeOf

	WithLogger      = compiler.WithLogger
	WithConcurrency = compiler.WithConcurrency
	WithScalar      = compiler.WithScalar

	// ErrUnknownKey is wrapped by the ResolverInvocationError of a key lookup
	// that found nothing.
	ErrUnknownKey = binder.ErrUnknownKey
)

// Schema is a compiled, executable schema. It is safe for concurrent use.
type Schema struct {
	compiled *compiler.ExecutableSchema
	engine   *engine.Engine
}

// Compile parses schemaText, binds every field to resolvers or parent
// properties and checks dict. dict may be nil.
func Compile(schemaText string, resolvers []Resolver, dict Dictionary, opts ...Option) (*Schema, error) {
	es, err := compiler.Compile(schemaText, resolvers, dict, opts...)
	if err != nil {
		return nil, err
	}
	return &Schema{compiled: es, engine: engine.New(es)}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(schemaText string, resolvers []Resolver, dict Dictionary, opts ...Option) *Schema {
	s, err := Compile(schemaText, resolvers, dict, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Execute validates and runs query. operationName selects the operation when
// the document has several; variables may be nil.
func (s *Schema) Execute(ctx context.Context, query, operationName string, variables map[string]any) *ExecutionResult {
	return s.engine.Execute(ctx, query, operationName, variables)
}

// SDL renders the compiled schema.
func (s *Schema) SDL() string { return schema.Render(s.compiled.Schema) }

// Bindings describes how each field is served, one line per field, e.g.
// "Query.defaultGreeting -> method DefaultGreeting".
func (s *Schema) Bindings() []string {
	bs := s.compiled.Bindings()
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.String()
	}
	return out
}
