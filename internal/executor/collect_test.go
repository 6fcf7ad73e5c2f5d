package executor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const collectSDL = `
type Query { greeting: Greeting, a: String, b: String, c: String }
interface Named { name: String }
union Salutation = Greeting | Farewell
type Greeting implements Named { name: String, text: String }
type Farewell { text: String }
`

// groupShape is a fieldGroup reduced to its response name and how many
// query fields answer to it.
type groupShape struct {
	Name  string
	Count int
}

func TestCollectFields(t *testing.T) {
	sch := buildSchema(t, collectSDL)

	cases := []struct {
		name   string
		on     string
		query  string
		vars   map[string]any
		groups []groupShape
	}{
		{
			name: "fragments merge into first appearance",
			on:   "Query",
			query: `{ a ...F1 ...F2 }
				fragment F1 on Query { a __typename }
				fragment F2 on Query { __typename }`,
			groups: []groupShape{{"a", 2}, {"__typename", 2}},
		},
		{
			name:   "aliases group by response name",
			on:     "Query",
			query:  `{ x: a b x: a a: c }`,
			groups: []groupShape{{"x", 2}, {"b", 1}, {"a", 1}},
		},
		{
			name:   "skip and include on fields",
			on:     "Query",
			query:  `{ a b @skip(if: true) c @include(if: false) }`,
			groups: []groupShape{{"a", 1}},
		},
		{
			name: "skip and include on spreads",
			on:   "Query",
			query: `{ a ...B @include(if: true) ...C @skip(if: true) }
				fragment B on Query { b }
				fragment C on Query { c }`,
			groups: []groupShape{{"a", 1}, {"b", 1}},
		},
		{
			name:   "skip and include on inline fragments",
			on:     "Query",
			query:  `{ a ... on Query @include(if: true) { b } ... @skip(if: true) { c } }`,
			groups: []groupShape{{"a", 1}, {"b", 1}},
		},
		{
			name:   "directive arguments read variables",
			on:     "Query",
			query:  `query($hide: Boolean!) { a @skip(if: $hide) b @include(if: $hide) }`,
			vars:   map[string]any{"hide": true},
			groups: []groupShape{{"b", 1}},
		},
		{
			name: "directive on fragment definition",
			on:   "Query",
			query: `{ a ...B }
				fragment B on Query @skip(if: true) { b }`,
			groups: []groupShape{{"a", 1}},
		},
		{
			name:   "spread of a fragment is followed once",
			on:     "Query",
			query:  `{ ...A ...A } fragment A on Query { a }`,
			groups: []groupShape{{"a", 1}},
		},
		{
			name: "interface and union conditions admit member",
			on:   "Greeting",
			query: `{ ... on Named { name } ... on Salutation { text } ... on Farewell { __typename } ...G }
				fragment G on Greeting { name }`,
			groups: []groupShape{{"name", 2}, {"text", 1}},
		},
		{
			name:   "condition on other member is ignored",
			on:     "Farewell",
			query:  `{ ... on Named { name } ... on Salutation { text } ... on Greeting { __typename } }`,
			groups: []groupShape{{"text", 1}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := mustParseQuery(t, tc.query)
			state := &executionState{schema: sch, document: doc, variableValues: tc.vars}

			var got []groupShape
			for _, g := range collectFields(state, sch.Types[tc.on], doc.Operations[0].SelectionSet) {
				for _, f := range g.Fields {
					require.Equal(t, g.Fields[0].Name, f.Name, "group %s mixes fields", g.ResponseName)
				}
				got = append(got, groupShape{g.ResponseName, len(g.Fields)})
			}
			require.Equal(t, tc.groups, got)
		})
	}
}
