package executor

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestOperationSelection(t *testing.T) {
	sch := buildSchema(t, `type Query { a: String, b: String }`)
	fields := map[string]fieldFunc{"Query.a": returns("A"), "Query.b": returns("B")}
	notFound := &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}

	cases := []struct {
		name      string
		query     string
		operation string
		want      *ExecutionResult
	}{
		{"anonymous", `{ a }`, "", &ExecutionResult{Data: map[string]any{"a": "A"}}},
		{"single named without name", `query Foo { a }`, "", &ExecutionResult{Data: map[string]any{"a": "A"}}},
		{"named among many", `query Foo { a } query Bar { b }`, "Bar", &ExecutionResult{Data: map[string]any{"b": "B"}}},
		{"no operation", `fragment F on Query { a }`, "", notFound},
		{"many without name", `query Foo { a } query Bar { b }`, "", notFound},
		{"unknown name", `query Foo { a } query Bar { b }`, "Baz", notFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := newRecorder(fields)
			requireResult(t, tc.want, run(t, sch, rt, tc.query, tc.operation, nil))
		})
	}
}

func TestUnsupportedOperations(t *testing.T) {
	sch := buildSchema(t, `type Query { a: String }`)

	res := run(t, sch, newRecorder(nil), `mutation { a }`, "", nil)
	requireResult(t, &ExecutionResult{Errors: []GraphQLError{{Message: "root type not found for mutation operation"}}}, res)

	res = run(t, sch, newRecorder(nil), `subscription { a }`, "", nil)
	requireResult(t, &ExecutionResult{Errors: []GraphQLError{{Message: "unsupported operation type: subscription"}}}, res)
}

func TestVariableCoercion(t *testing.T) {
	sch := buildSchema(t, `type Query { echo(v: Int): Int }`)
	echo := map[string]fieldFunc{
		"Query.echo": func(_ context.Context, _ any, args map[string]any) (any, error) { return args["v"], nil },
	}

	cases := []struct {
		name  string
		query string
		vars  map[string]any
		want  *ExecutionResult
	}{
		{
			name:  "provided",
			query: `query($v: Int!) { echo(v: $v) }`,
			vars:  map[string]any{"v": 3},
			want:  &ExecutionResult{Data: map[string]any{"echo": 3}},
		},
		{
			name:  "json number",
			query: `query($v: Int!) { echo(v: $v) }`,
			vars:  map[string]any{"v": float64(4)},
			want:  &ExecutionResult{Data: map[string]any{"echo": 4}},
		},
		{
			name:  "default",
			query: `query($v: Int = 5) { echo(v: $v) }`,
			want:  &ExecutionResult{Data: map[string]any{"echo": 5}},
		},
		{
			name:  "omitted nullable leaves argument unset",
			query: `query($v: Int) { echo(v: $v) }`,
			want:  &ExecutionResult{Data: map[string]any{"echo": nil}},
		},
		{
			name:  "missing required",
			query: `query($v: Int!) { echo(v: $v) }`,
			want:  &ExecutionResult{Errors: []GraphQLError{{Message: "variable $v of required type Int! was not provided"}}},
		},
		{
			name:  "null for non-null",
			query: `query($v: Int!) { echo(v: $v) }`,
			vars:  map[string]any{"v": nil},
			want:  &ExecutionResult{Errors: []GraphQLError{{Message: "variable $v of type Int! cannot be null"}}},
		},
		{
			name:  "wrong scalar",
			query: `query($v: Int!) { echo(v: $v) }`,
			vars:  map[string]any{"v": "42"},
			want:  &ExecutionResult{Errors: []GraphQLError{{Message: "variable $v of type Int! cannot be coerced: cannot coerce 42 (string) to Int"}}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := newRecorder(echo)
			res := run(t, sch, rt, tc.query, "", tc.vars)
			requireResult(t, tc.want, res)
			if res.Errors != nil && res.Data == nil {
				require.Empty(t, rt.calls, "no field runs after a request error")
			}
		})
	}
}

func TestMutationFieldsRunSeriallyInQueryOrder(t *testing.T) {
	sch := buildSchema(t, `
		type Query { a: String }
		type Mutation { first: String, second: String, third: String }
	`)
	rt := newRecorder(map[string]fieldFunc{
		"Mutation.first":  returns("1"),
		"Mutation.second": fails(errors.New("boom")),
		"Mutation.third":  returns("3"),
	})

	res := run(t, sch, rt, `mutation { third second first }`, "", nil)

	requireResult(t, &ExecutionResult{
		Data:   map[string]any{"third": "3", "second": nil, "first": "1"},
		Errors: []GraphQLError{{Message: "boom", Path: Path{"second"}}},
	}, res)
	require.Equal(t, []string{"third", "second", "first"}, keysAt(t, res))
	requireCalls(t, []call{
		{Field: "Mutation.third"},
		{Field: "Mutation.second"},
		{Field: "Mutation.first"},
	}, rt)
}

func TestResponseKeysFollowQueryOrder(t *testing.T) {
	sch := buildSchema(t, `
		type Query { a: String, b: String, c: String, greeting: Greeting }
		type Greeting { text: String, lang: String, author: Author }
		type Author { name: String, email: String }
	`, "Query.a", "Query.c", "Greeting.lang", "Greeting.author")
	rt := newRecorder(map[string]fieldFunc{
		"Query.a":         returns("A"),
		"Query.b":         returns("B"),
		"Query.c":         returns("C"),
		"Query.greeting":  returns(map[string]any{}),
		"Greeting.text":   returns("hi"),
		"Greeting.lang":   returns("en"),
		"Greeting.author": returns(map[string]any{}),
		"Author.name":     returns("kim"),
		"Author.email":    returns("k@example.com"),
	})

	res := run(t, sch, rt, `{
		c: a
		greeting { author { email } lang ...G author { name } }
		b
		a: c
	}
	fragment G on Greeting { text author { email } }`, "", nil)

	require.Empty(t, res.Errors)
	require.Equal(t, []string{"c", "greeting", "b", "a"}, keysAt(t, res))
	require.Equal(t, []string{"author", "lang", "text"}, keysAt(t, res, "greeting"))
	require.Equal(t, []string{"email", "name"}, keysAt(t, res, "greeting", "author"))

	out, err := res.JSON()
	require.NoError(t, err)
	require.Equal(t, `{"data":{"c":"A","greeting":{"author":{"email":"k@example.com","name":"kim"},"lang":"en","text":"hi"},"b":"B","a":"C"}}`, string(out))
}

func TestExecutorIsReusableAcrossRequests(t *testing.T) {
	sch := buildSchema(t, `type Query { a: String }`, "Query.a")
	rt := newRecorder(map[string]fieldFunc{"Query.a": returns("A")})
	exec := NewExecutor(rt, sch)
	doc := mustParseQuery(t, `{ a }`)

	for i := 0; i < 3; i++ {
		res := exec.ExecuteRequest(context.Background(), doc, "", nil, nil)
		requireResult(t, &ExecutionResult{Data: map[string]any{"a": "A"}}, res)
	}
	require.Equal(t, 3, rt.batches)
}
