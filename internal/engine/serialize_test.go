package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"

	binder "github.com/hanpama/graphbind/internal/binder"
	compiler "github.com/hanpama/graphbind/internal/compiler"
)

type langCode string

const leafSchema = `
type Query { noop: String }
enum Language { EN KO }
scalar Time
scalar JSON
`

func leafRuntime(t *testing.T) *runtime {
	t.Helper()
	es, err := compiler.Compile(leafSchema, []binder.Resolver{binder.Query(map[string]any{})}, nil,
		compiler.WithScalar("Time", func(v any) (any, error) {
			return v.(time.Time).UTC().Format(time.RFC3339), nil
		}))
	require.NoError(t, err)
	return newRuntime(es)
}

func TestSerializeLeafValue(t *testing.T) {
	r := leafRuntime(t)
	s := "ptr"
	tests := []struct {
		name     string
		typeName string
		value    any
		want     any
	}{
		{"int", "Int", int64(42), 42},
		{"integral float as int", "Int", 3.0, 3},
		{"uint as int", "Int", uint8(7), 7},
		{"float", "Float", float32(1.5), 1.5},
		{"int as float", "Float", 2, 2.0},
		{"string", "String", "hi", "hi"},
		{"string pointer", "String", &s, "ptr"},
		{"named string", "String", langCode("EN"), "EN"},
		{"bool as string", "String", true, "true"},
		{"wrapped string", "String", wrapperspb.String("wrapped"), "wrapped"},
		{"boolean", "Boolean", true, true},
		{"int id", "ID", 12, "12"},
		{"string id", "ID", "abc", "abc"},
		{"enum name", "Language", "KO", "KO"},
		{"named enum", "Language", langCode("EN"), "EN"},
		{"custom scalar", "Time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{"custom scalar without serializer", "JSON", map[string]any{"a": 1}, map[string]any{"a": 1}},
		{"nil pointer", "String", (*string)(nil), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.SerializeLeafValue(context.Background(), tt.typeName, tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSerializeLeafValueErrors(t *testing.T) {
	r := leafRuntime(t)
	tests := []struct {
		name     string
		typeName string
		value    any
		msg      string
	}{
		{"int overflow", "Int", int64(1) << 40, "Int cannot represent non 32-bit signed integer value: 1099511627776"},
		{"fractional int", "Int", 1.5, "Int cannot represent non-integer value: 1.5"},
		{"unknown enum value", "Language", "FR", `Enum "Language" cannot represent value: "FR"`},
		{"boolean from string", "Boolean", "yes", "Boolean cannot represent a non boolean value: yes"},
		{"id from float", "ID", 1.5, "ID cannot represent value: 1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.SerializeLeafValue(context.Background(), tt.typeName, tt.value)
			require.EqualError(t, err, tt.msg)
		})
	}
}

func TestSerializeLeafValueRecoversPanic(t *testing.T) {
	es, err := compiler.Compile(leafSchema, []binder.Resolver{binder.Query(map[string]any{})}, nil,
		compiler.WithScalar("Time", func(v any) (any, error) { panic("bad time") }))
	require.NoError(t, err)
	r := newRuntime(es)

	_, err = r.SerializeLeafValue(context.Background(), "Time", time.Now())
	require.EqualError(t, err, "Time cannot represent value: panic: bad time")
}
