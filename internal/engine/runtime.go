package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	binder "github.com/hanpama/graphbind/internal/binder"
	compiler "github.com/hanpama/graphbind/internal/compiler"
	eventbus "github.com/hanpama/graphbind/internal/eventbus"
	events "github.com/hanpama/graphbind/internal/events"
	executor "github.com/hanpama/graphbind/internal/executor"
	registry "github.com/hanpama/graphbind/internal/registry"
)

// runtime serves executor callbacks from the bindings of an executable
// schema. It holds no per-request state.
type runtime struct {
	schema *compiler.ExecutableSchema
	log    *zap.Logger
}

var _ executor.Runtime = (*runtime)(nil)

func newRuntime(es *compiler.ExecutableSchema) *runtime {
	return &runtime{schema: es, log: es.Options.Logger}
}

func (r *runtime) binding(objectType, field string) (*binder.Binding, error) {
	b := r.schema.Binding(objectType, field)
	if b == nil {
		return nil, &binder.BindingError{TypeName: objectType, FieldName: field, Reason: "field is not bound"}
	}
	return b, nil
}

func (r *runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	b, err := r.binding(objectType, field)
	if err != nil {
		return nil, err
	}
	return b.Invoke(ctx, source, args)
}

// BatchResolveAsync invokes the bound resolvers of one depth, at most
// Options.Concurrency at a time. A failing task never cancels its siblings.
func (r *runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	var g errgroup.Group
	g.SetLimit(r.schema.Options.Concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			v, err := r.resolve(ctx, task)
			results[i] = executor.AsyncResolveResult{Value: v, Error: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *runtime) resolve(ctx context.Context, task executor.AsyncResolveTask) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := r.binding(task.ObjectType, task.Field)
	if err != nil {
		return nil, err
	}
	path := task.Path.String()
	eventbus.Publish(ctx, events.ResolverStart{
		TypeName:  task.ObjectType,
		FieldName: task.Field,
		Binding:   b.Kind.String(),
		Path:      path,
	})
	start := time.Now()
	v, err := b.Invoke(ctx, task.Source, task.Args)
	elapsed := time.Since(start)
	eventbus.Publish(ctx, events.ResolverFinish{
		TypeName:  task.ObjectType,
		FieldName: task.Field,
		Binding:   b.Kind.String(),
		Path:      path,
		Err:       err,
		Duration:  elapsed,
	})
	if err != nil {
		r.log.Debug("resolver failed",
			zap.String("field", fmt.Sprintf("%s.%s", task.ObjectType, task.Field)),
			zap.String("path", path),
			zap.Error(err),
		)
	}
	return v, err
}

// ResolveType asks the registry for the object type of value. Structural
// matching may call user getters; a panic there fails the position only.
func (r *runtime) ResolveType(ctx context.Context, declaredType string, value any) (name string, err error) {
	defer func() {
		if p := recover(); p != nil {
			name, err = "", &registry.TypeResolutionError{Declared: declaredType, ValueType: fmt.Sprintf("%T", value), Reason: fmt.Sprintf("panic: %v", p)}
		}
	}()
	return r.schema.Registry.Resolve(declaredType, value)
}

// SerializeLeafValue coerces value to the output form of the named scalar or
// enum type. Stringers and custom serializers are user code: a panic becomes
// an error on the field.
func (r *runtime) SerializeLeafValue(ctx context.Context, typeName string, value any) (out any, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, errors.Errorf("%s cannot represent value: panic: %v", typeName, p)
		}
	}()
	t := r.schema.Schema.Types[typeName]
	if t == nil {
		return nil, errors.Errorf("unknown leaf type %s", typeName)
	}
	return r.serializeLeaf(t, value)
}
