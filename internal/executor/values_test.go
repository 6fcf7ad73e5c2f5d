package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const valuesSDL = `
type Query { greet(input: GreetInput, langs: [Language!], id: ID, ratio: Float): String }
enum Language { EN KO }
input GreetInput { name: String!, times: Int = 2, lang: Language = KO, tags: [String] }
input Choice @oneOf { byName: String, byID: ID }
`

func TestCoerceVariableValues(t *testing.T) {
	sch := buildSchema(t, valuesSDL)

	cases := []struct {
		name  string
		query string
		vars  map[string]any
		want  map[string]any
		err   string
	}{
		{
			name:  "input object fills defaults",
			query: `query($in: GreetInput!) { greet(input: $in) }`,
			vars:  map[string]any{"in": map[string]any{"name": "kim"}},
			want:  map[string]any{"in": map[string]any{"name": "kim", "times": 2, "lang": "KO"}},
		},
		{
			name:  "single value becomes a list",
			query: `query($l: [Language!]) { greet(langs: $l) }`,
			vars:  map[string]any{"l": "EN"},
			want:  map[string]any{"l": []any{"EN"}},
		},
		{
			name:  "id and float accept json numbers",
			query: `query($id: ID, $r: Float) { greet(id: $id, ratio: $r) }`,
			vars:  map[string]any{"id": float64(12), "r": 2},
			want:  map[string]any{"id": "12", "r": float64(2)},
		},
		{
			name:  "missing required input field",
			query: `query($in: GreetInput!) { greet(input: $in) }`,
			vars:  map[string]any{"in": map[string]any{"times": 10}},
			err:   "variable $in of type GreetInput! cannot be coerced: required field 'name' of type GreetInput was not provided",
		},
		{
			name:  "unknown input field",
			query: `query($in: GreetInput!) { greet(input: $in) }`,
			vars:  map[string]any{"in": map[string]any{"name": "kim", "nick": "k"}},
			err:   "variable $in of type GreetInput! cannot be coerced: field 'nick' is not defined by type GreetInput",
		},
		{
			name:  "null list item",
			query: `query($l: [Language!]) { greet(langs: $l) }`,
			vars:  map[string]any{"l": []any{"EN", nil}},
			err:   "variable $l of type [Language!] cannot be coerced: cannot provide null for non-null type",
		},
		{
			name:  "one of with two fields",
			query: `query($c: Choice) { greet }`,
			vars:  map[string]any{"c": map[string]any{"byName": "a", "byID": "1"}},
			err:   "variable $c of type Choice cannot be coerced: exactly one field of Choice must be provided",
		},
		{
			name:  "int outside 32 bits",
			query: `query($t: Int) { greet }`,
			vars:  map[string]any{"t": float64(3e9)},
			err:   "variable $t of type Int cannot be coerced: cannot coerce 3e+09 (float64) to Int",
		},
		{
			name:  "scalar mismatch",
			query: `query($r: Float) { greet(ratio: $r) }`,
			vars:  map[string]any{"r": "fast"},
			err:   "variable $r of type Float cannot be coerced: cannot coerce fast (string) to Float",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			op := mustParseQuery(t, tc.query).Operations[0]
			got, err := coerceVariableValues(sch, op, tc.vars)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCoerceDefaultUsesLiteralTypes(t *testing.T) {
	sch := buildSchema(t, valuesSDL)
	times := sch.Types["GreetInput"].InputFields[1]

	require.IsType(t, int64(0), times.DefaultValue)
	require.Equal(t, 2, coerceDefault(sch, times))
}

func TestArgumentLiteralsReadNestedVariables(t *testing.T) {
	sch := buildSchema(t, valuesSDL)
	rt := newRecorder(nil)

	res := run(t, sch, rt, `query($n: String!, $l: Language) {
		greet(input: {name: $n, lang: $l, tags: ["a", $n]}, langs: [KO, $l])
	}`, "", map[string]any{"n": "kim", "l": "EN"})

	require.Empty(t, res.Errors)
	require.Len(t, rt.calls, 1)
	require.Equal(t, map[string]any{
		"input": map[string]any{"name": "kim", "times": 2, "lang": "EN", "tags": []any{"a", "kim"}},
		"langs": []any{"KO", "EN"},
	}, rt.calls[0].Args)
}
