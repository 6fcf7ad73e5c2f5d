// Package engine executes query documents against a compiled schema.
//
// The engine validates the query with gqlparser, then drives the BFS executor
// with a runtime backed by the schema's resolver bindings and type registry.
// Executions share nothing but the immutable schema, so one Engine serves
// any number of concurrent requests.
package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	compiler "github.com/hanpama/graphbind/internal/compiler"
	eventbus "github.com/hanpama/graphbind/internal/eventbus"
	events "github.com/hanpama/graphbind/internal/events"
	executor "github.com/hanpama/graphbind/internal/executor"
	introspection "github.com/hanpama/graphbind/internal/introspection"
	language "github.com/hanpama/graphbind/internal/language"
	reqid "github.com/hanpama/graphbind/internal/reqid"
)

// ValidationFailed is the extensions code of query validation errors.
const ValidationFailed = "GRAPHQL_VALIDATION_FAILED"

type Engine struct {
	schema   *compiler.ExecutableSchema
	executor *executor.Executor
	log      *zap.Logger
}

func New(es *compiler.ExecutableSchema) *Engine {
	return &Engine{
		schema:   es,
		executor: newExecutor(es),
		log:      es.Options.Logger,
	}
}

// newExecutor runs against the schema extended with introspection types; the
// compiled schema itself stays untouched.
func newExecutor(es *compiler.ExecutableSchema) *executor.Executor {
	w := introspection.Wrap(newRuntime(es), es.Schema)
	return executor.NewExecutor(w.Runtime, w.Schema)
}

// Schema returns the schema the engine executes against.
func (e *Engine) Schema() *compiler.ExecutableSchema { return e.schema }

// Execute validates and runs query. Validation problems are reported as
// errors with no data; everything after validation is reported per field.
func (e *Engine) Execute(ctx context.Context, query, operationName string, variables map[string]any) *executor.ExecutionResult {
	ctx, rid := reqid.Ensure(ctx)
	start := time.Now()

	doc, errs := language.LoadQuery(e.schema.Document, query)
	opType := operationType(doc, operationName)
	eventbus.Publish(ctx, events.GraphQLStart{
		Query:         query,
		OperationName: operationName,
		OperationType: opType,
	})

	var res *executor.ExecutionResult
	if len(errs) > 0 {
		res = &executor.ExecutionResult{Errors: validationErrors(errs)}
	} else {
		res = e.executor.ExecuteRequest(ctx, doc, operationName, variables, nil)
	}

	elapsed := time.Since(start)
	finish := events.GraphQLFinish{
		Query:         query,
		OperationName: operationName,
		OperationType: opType,
		Duration:      elapsed,
	}
	for _, err := range res.Errors {
		finish.Errors = append(finish.Errors, err)
	}
	eventbus.Publish(ctx, finish)

	e.log.Debug("executed operation",
		zap.Int64("request_id", rid),
		zap.String("operation", operationName),
		zap.String("type", opType),
		zap.Int("errors", len(res.Errors)),
		zap.Duration("duration", elapsed),
	)
	return res
}

func validationErrors(errs language.ErrorList) []executor.GraphQLError {
	out := make([]executor.GraphQLError, 0, len(errs))
	for _, err := range errs {
		ext := map[string]any{"code": ValidationFailed}
		for k, v := range err.Extensions {
			ext[k] = v
		}
		out = append(out, executor.GraphQLError{Message: err.Message, Extensions: ext})
	}
	return out
}

func operationType(doc *language.QueryDocument, name string) string {
	if doc == nil {
		return ""
	}
	if op := doc.Operations.ForName(name); op != nil {
		return string(op.Operation)
	}
	return ""
}
