package executor

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/graphbind/internal/language"
	schema "github.com/hanpama/graphbind/internal/schema"
)

// fieldFunc resolves one field for the recorder. Keys of the recorder's
// field table are schema coordinates such as "Query.greeting".
type fieldFunc func(ctx context.Context, source any, args map[string]any) (any, error)

func returns(v any) fieldFunc {
	return func(context.Context, any, map[string]any) (any, error) { return v, nil }
}

func fails(err error) fieldFunc {
	return func(context.Context, any, map[string]any) (any, error) { return nil, err }
}

// call is one field resolution seen by the recorder. Batch is 0 for
// ResolveSync and numbers BatchResolveAsync calls from 1. Path is only
// known for batched tasks.
type call struct {
	Field  string
	Source any
	Args   map[string]any
	Batch  int
	Path   string
}

// typeCall is one ResolveType question and the answer given.
type typeCall struct {
	Declared string
	Answer   string
}

// recorder is a Runtime that serves fields from a table and logs every
// hook the executor calls.
type recorder struct {
	mu      sync.Mutex
	fields  map[string]fieldFunc
	typeOf  func(declared string, value any) (string, error)
	leaf    func(typeName string, value any) (any, error)
	calls   []call
	types   []typeCall
	leaves  []string
	batches int
}

// newRecorder answers ResolveType from a "__typename" map key, falling back
// to the declared type, and serializes leaves unchanged.
func newRecorder(fields map[string]fieldFunc) *recorder {
	return &recorder{
		fields: fields,
		typeOf: func(declared string, value any) (string, error) {
			if m, ok := value.(map[string]any); ok {
				if name, ok := m["__typename"].(string); ok {
					return name, nil
				}
			}
			return declared, nil
		},
		leaf: func(_ string, value any) (any, error) { return value, nil },
	}
}

func (r *recorder) resolve(ctx context.Context, field string, source any, args map[string]any) (any, error) {
	fn := r.fields[field]
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, source, args)
}

func (r *recorder) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	key := objectType + "." + field
	r.mu.Lock()
	r.calls = append(r.calls, call{Field: key, Source: source, Args: args})
	r.mu.Unlock()
	return r.resolve(ctx, key, source, args)
}

func (r *recorder) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	r.mu.Lock()
	r.batches++
	batch := r.batches
	for _, task := range tasks {
		r.calls = append(r.calls, call{
			Field:  task.ObjectType + "." + task.Field,
			Source: task.Source,
			Args:   task.Args,
			Batch:  batch,
			Path:   task.Path.String(),
		})
	}
	r.mu.Unlock()

	out := make([]AsyncResolveResult, len(tasks))
	for i, task := range tasks {
		v, err := r.resolve(ctx, task.ObjectType+"."+task.Field, task.Source, task.Args)
		out[i] = AsyncResolveResult{Value: v, Error: err}
	}
	return out
}

func (r *recorder) ResolveType(_ context.Context, declaredType string, value any) (string, error) {
	name, err := r.typeOf(declaredType, value)
	r.mu.Lock()
	r.types = append(r.types, typeCall{Declared: declaredType, Answer: name})
	r.mu.Unlock()
	return name, err
}

func (r *recorder) SerializeLeafValue(_ context.Context, typeName string, value any) (any, error) {
	r.mu.Lock()
	r.leaves = append(r.leaves, typeName)
	r.mu.Unlock()
	return r.leaf(typeName, value)
}

// buildSchema builds an executable schema from SDL and marks the listed
// "Type.field" coordinates as async.
func buildSchema(t *testing.T, sdl string, async ...string) *schema.Schema {
	t.Helper()
	sch, err := schema.BuildFromSDL(sdl)
	require.NoError(t, err)
	for _, coord := range async {
		typeName, fieldName, _ := strings.Cut(coord, ".")
		require.Contains(t, sch.Types, typeName)
		f := sch.Types[typeName].Field(fieldName)
		require.NotNil(t, f, coord)
		f.SetAsync(true)
	}
	return sch
}

func mustParseQuery(t *testing.T, q string) *language.QueryDocument {
	t.Helper()
	d, err := language.ParseQuery(q)
	require.NoError(t, err)
	return d
}

// run executes query against sch with no root value.
func run(t *testing.T, sch *schema.Schema, rt Runtime, query, operationName string, vars map[string]any) *ExecutionResult {
	t.Helper()
	return NewExecutor(rt, sch).ExecuteRequest(context.Background(), mustParseQuery(t, query), operationName, vars, nil)
}

// plainResult turns ordered result maps into plain maps so expectations can
// be written as map literals. Key order is checked separately.
func plainResult(res *ExecutionResult) *ExecutionResult {
	if res == nil {
		return nil
	}
	return &ExecutionResult{Data: Plain(res.Data), Errors: res.Errors}
}

func requireResult(t *testing.T, want, got *ExecutionResult) {
	t.Helper()
	if diff := cmp.Diff(want, plainResult(got), cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("result mismatch (-want +got):\n%s", diff)
	}
}

func requireCalls(t *testing.T, want []call, rt *recorder) {
	t.Helper()
	if diff := cmp.Diff(want, rt.calls, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("resolver calls mismatch (-want +got):\n%s", diff)
	}
}

// keysAt returns the response keys of the object found by following path
// from the data root.
func keysAt(t *testing.T, res *ExecutionResult, path ...PathElement) []string {
	t.Helper()
	var cur any = res.Data
	for _, elem := range path {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(*ResultMap)
			require.True(t, ok, "%v is not an object", Path(path))
			cur, _ = m.Get(e)
		case int:
			list, ok := cur.([]any)
			require.True(t, ok, "%v is not a list", Path(path))
			cur = list[e]
		}
	}
	m, ok := cur.(*ResultMap)
	require.True(t, ok, "%v is not an object", Path(path))
	return m.Keys()
}
