package compiler

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	binder "github.com/hanpama/graphbind/internal/binder"
	registry "github.com/hanpama/graphbind/internal/registry"
)

const greetingSchema = `
type Query {
  defaultGreeting: Greeting
  greet(name: String): Greeting
}
type Mutation {
  setGreeting(value: String!): Greeting!
}
type Greeting {
  value: String!
  upper: String
}
interface Node { id: ID! }
`

type greeting struct {
	Value string
}

type queryResolver struct{}

func (queryResolver) DefaultGreeting() *greeting { return &greeting{Value: "Hello"} }

func (queryResolver) Get(key string) (any, bool) { return &greeting{Value: "Hello " + key}, true }

type mutationResolver struct{}

func (mutationResolver) SetGreeting(ctx context.Context, value string) (*greeting, error) {
	return &greeting{Value: value}, nil
}

type greetingResolver struct{}

func (greetingResolver) Upper(g *greeting) string { return g.Value + "!" }

func requireSchemaError(t *testing.T, err error, msg string) {
	t.Helper()
	var se *SchemaError
	require.True(t, errors.As(err, &se), "expected SchemaError, got %v", err)
	require.Contains(t, se.Messages, msg)
}

func TestCompileBindsEveryField(t *testing.T) {
	es, err := Compile(greetingSchema, []binder.Resolver{
		binder.Query(queryResolver{}),
		binder.Mutation(mutationResolver{}),
		binder.For("Greeting", greetingResolver{}),
	}, nil)
	require.NoError(t, err)

	kinds := map[string]binder.Kind{}
	for _, b := range es.Bindings() {
		kinds[b.TypeName+"."+b.FieldName] = b.Kind
	}
	require.Equal(t, map[string]binder.Kind{
		"Query.defaultGreeting": binder.MethodBinding,
		"Query.greet":           binder.LookupBinding,
		"Mutation.setGreeting":  binder.MethodBinding,
		"Greeting.value":        binder.PropertyBinding,
		"Greeting.upper":        binder.MethodBinding,
	}, kinds)

	greetingType := es.Schema.Types["Greeting"]
	require.False(t, greetingType.Field("value").Async)
	require.True(t, greetingType.Field("upper").Async)
	require.True(t, es.Schema.GetQueryType().Field("greet").Async)

	require.Equal(t, "DefaultGreeting", es.Binding("Query", "defaultGreeting").MethodName)
	require.Nil(t, es.Binding("Query", "nope"))
	require.NotNil(t, es.Registry)
	require.NotNil(t, es.Document)
}

func TestCompileInfersShapesFromMethods(t *testing.T) {
	es, err := Compile(greetingSchema, []binder.Resolver{
		binder.Query(queryResolver{}),
		binder.Mutation(mutationResolver{}),
	}, nil)
	require.NoError(t, err)
	shapes := es.InferredShapes("Greeting")
	require.Len(t, shapes, 1)
	require.Equal(t, "greeting", shapes[0].Name())
}

func TestCompileSchemaErrors(t *testing.T) {
	tests := []struct {
		name      string
		sdl       string
		resolvers []binder.Resolver
		dict      registry.Dictionary
		msg       string
	}{
		{
			name:      "missing root resolver",
			sdl:       `type Query { a: String b: String }`,
			resolvers: []binder.Resolver{binder.Query(struct{ A string }{})},
			msg:       "no resolver found for Query.a",
		},
		{
			name:      "resolver for unknown type",
			sdl:       `type Query { a: String }`,
			resolvers: []binder.Resolver{binder.Query(map[string]any{}), binder.For("Nope", struct{}{})},
			msg:       "resolver registered for unknown type Nope",
		},
		{
			name:      "resolver for interface",
			sdl:       greetingSchema,
			resolvers: []binder.Resolver{binder.Query(queryResolver{}), binder.Mutation(mutationResolver{}), binder.For("Node", struct{}{})},
			msg:       "resolver registered for INTERFACE type Node",
		},
		{
			name:      "mutation resolver without mutation type",
			sdl:       `type Query { a: String }`,
			resolvers: []binder.Resolver{binder.Query(map[string]any{}), binder.Mutation(map[string]any{})},
			msg:       "schema has no mutation type",
		},
		{
			name:      "dictionary entry for unknown type",
			sdl:       `type Query { a: String }`,
			resolvers: []binder.Resolver{binder.Query(map[string]any{})},
			dict:      registry.NewDictionary().Add("Nope", greeting{}),
			msg:       "dictionary entry for unknown type Nope",
		},
		{
			name:      "dictionary entry for interface",
			sdl:       greetingSchema,
			resolvers: []binder.Resolver{binder.Query(queryResolver{}), binder.Mutation(mutationResolver{})},
			dict:      registry.NewDictionary().Add("Node", greeting{}),
			msg:       "dictionary entry for INTERFACE type Node",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.sdl, tt.resolvers, tt.dict)
			requireSchemaError(t, err, tt.msg)
		})
	}
}

func TestCompileInvalidSDL(t *testing.T) {
	_, err := Compile(`type Query { a: Missing }`, nil, nil)
	var se *SchemaError
	require.True(t, errors.As(err, &se))
	require.NotEmpty(t, se.Messages)
	require.Contains(t, err.Error(), "Missing")
}

type badResolver struct{}

func (badResolver) DefaultGreeting(a, b, c string) *greeting { return nil }

func TestCompileRejectsIncompatibleMethod(t *testing.T) {
	_, err := Compile(greetingSchema, []binder.Resolver{
		binder.Query(badResolver{}),
		binder.Query(queryResolver{}),
		binder.Mutation(mutationResolver{}),
	}, nil)
	var be *binder.BindingError
	require.True(t, errors.As(err, &be), "expected BindingError, got %v", err)
	require.Equal(t, "Query", be.TypeName)
	require.Equal(t, "defaultGreeting", be.FieldName)
}

type wrongShape struct {
	Text string
}

type wrongQuery struct{}

func (wrongQuery) DefaultGreeting() *wrongShape { return &wrongShape{} }
func (wrongQuery) Greet(name string) *greeting  { return &greeting{} }

func TestCompileRejectsShapeMissingNonNullProperty(t *testing.T) {
	_, err := Compile(greetingSchema, []binder.Resolver{
		binder.Query(wrongQuery{}),
		binder.Mutation(mutationResolver{}),
	}, nil)
	var be *binder.BindingError
	require.True(t, errors.As(err, &be), "expected BindingError, got %v", err)
	require.Equal(t, "Greeting", be.TypeName)
	require.Equal(t, "value", be.FieldName)
	require.Contains(t, be.Error(), `has no property "value"`)
}

func TestCompileRejectsDictionaryShapeMissingNonNullProperty(t *testing.T) {
	_, err := Compile(greetingSchema, []binder.Resolver{
		binder.Query(map[string]any{}),
		binder.Mutation(map[string]any{}),
	}, registry.NewDictionary().Add("Greeting", wrongShape{}))
	var be *binder.BindingError
	require.True(t, errors.As(err, &be), "expected BindingError, got %v", err)
	require.Equal(t, "Greeting", be.TypeName)
}

func TestCompileLogsBindings(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	_, err := Compile(greetingSchema, []binder.Resolver{
		binder.Query(queryResolver{}),
		binder.Mutation(mutationResolver{}),
	}, nil, WithLogger(zap.New(core)), WithConcurrency(0))
	require.NoError(t, err)
	bound := logs.FilterMessage("bound field")
	require.Equal(t, 1, bound.FilterField(zap.String("field", "defaultGreeting")).Len())
	require.Equal(t, 1, bound.FilterField(zap.String("field", "value")).Len())
	require.Equal(t, 1, logs.FilterMessage("schema compiled").Len())
}

func TestOptions(t *testing.T) {
	o := defaultOptions()
	WithConcurrency(0)(o)
	require.Equal(t, 1, o.Concurrency)
	WithConcurrency(4)(o)
	require.Equal(t, 4, o.Concurrency)
	WithScalar("Time", func(v any) (any, error) { return v, nil })(o)
	require.Contains(t, o.Scalars, "Time")
}
