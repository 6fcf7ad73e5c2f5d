package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBuildFromSDL_FieldsKeepDeclarationOrder(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	query := sch.GetQueryType()
	require.NotNil(t, query)

	var names []string
	for _, f := range query.Fields {
		names = append(names, f.Name)
	}
	want := []string{"defaultGreeting", "greet", "salutations", "message"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFromSDL_TypeRefsAndDefaults(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	greet := sch.GetQueryType().Field("greet")
	require.NotNil(t, greet)
	require.Equal(t, "Greeting", greet.Type.String())
	require.Len(t, greet.Arguments, 1)
	require.Equal(t, "world", greet.Arguments[0].DefaultValue)

	salutations := sch.GetQueryType().Field("salutations")
	require.Equal(t, "[Salutation!]!", salutations.Type.String())
	require.True(t, IsNonNull(salutations.Type))
	require.True(t, IsList(salutations.Type))
	require.Equal(t, "Salutation", GetNamedType(salutations.Type))
}

func TestBuildFromSDL_AbstractTypes(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	require.Equal(t, TypeKindInterface, sch.Types["Message"].Kind)
	require.Equal(t, []string{"Salutation"}, sch.Types["Message"].PossibleTypes)
	require.Equal(t, []string{"Greeting", "Salutation"}, sch.Types["Anything"].PossibleTypes)

	require.True(t, sch.IsPossibleType("Anything", "Greeting"))
	require.True(t, sch.IsPossibleType("Greeting", "Greeting"))
	require.False(t, sch.IsPossibleType("Message", "Greeting"))
	require.True(t, sch.IsRootType("Query"))
	require.False(t, sch.IsRootType("Greeting"))
}

func TestBuildFromSDL_SkipsIntrospectionMembers(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	require.Nil(t, sch.GetQueryType().Field("__schema"))
	require.Nil(t, sch.GetQueryType().Field("__type"))
	_, ok := sch.Types["__Schema"]
	require.False(t, ok)
}

func TestBuildFromSDL_Deprecation(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	lang := sch.Types["Language"]
	require.Len(t, lang.EnumValues, 2)
	require.False(t, lang.EnumValues[0].IsDeprecated)
	require.True(t, lang.EnumValues[1].IsDeprecated)
	require.Equal(t, "use EN", lang.EnumValues[1].DeprecationReason)
}

func TestBuildFromSDL_InvalidSchema(t *testing.T) {
	_, err := BuildFromSDL(`type Query { greeting: Missing }`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Missing")
}

func TestRender_RoundTrip(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	rendered := Render(sch)
	again, err := BuildFromSDL(rendered)
	require.NoError(t, err, "rendered SDL must load again:\n%s", rendered)

	if diff := cmp.Diff(rendered, Render(again)); diff != "" {
		t.Errorf("render is not stable (-first +second):\n%s", diff)
	}
}

func mustReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Clean(path))
	require.NoError(t, err)
	return string(b)
}

func TestRender_Layout(t *testing.T) {
	sch, err := BuildFromSDL(`
schema { query: Root }

"""
Says "hi"
"""
type Greeting { value: String @deprecated }

type Root {
  greet(language: Language = KO, input: GreetInput = {times: 2, name: "a"}): Greeting
}

enum Language { EN KO }

input GreetInput { name: String, times: Int }

directive @cached(ttl: Int = 60) repeatable on FIELD_DEFINITION
`)
	require.NoError(t, err)

	want := `schema {
  query: Root
}

type Root {
  greet(language: Language = KO, input: GreetInput = {name: "a", times: 2}): Greeting
}

input GreetInput {
  name: String
  times: Int
}

"""
Says "hi"
"""
type Greeting {
  value: String @deprecated
}

enum Language {
  EN
  KO
}

directive @cached(ttl: Int = 60) repeatable on FIELD_DEFINITION
`
	if diff := cmp.Diff(want, Render(sch)); diff != "" {
		t.Fatalf("render mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatValue(t *testing.T) {
	sch, err := BuildFromSDL(mustReadFile(t, "testdata/greetings.graphqls"))
	require.NoError(t, err)

	lang := NamedType("Language")
	require.Equal(t, "KO", FormatValue(sch, lang, "KO"))
	require.Equal(t, "[EN, KO]", FormatValue(sch, NonNullType(ListType(lang)), []any{"EN", "KO"}))
	require.Equal(t, `"KO"`, FormatValue(sch, NamedType("String"), "KO"))
	require.Equal(t, `{name: "a", times: 1}`, FormatValue(sch, NamedType("GreetInput"), map[string]any{"times": 1, "name": "a"}))
	require.Equal(t, "null", FormatValue(nil, nil, nil))
}
