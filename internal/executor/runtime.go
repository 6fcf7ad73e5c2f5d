package executor

import (
	"context"
)

// Runtime is what the Executor needs from its host: field resolution, one
// batched call per depth for resolver-backed fields, runtime type resolution
// and leaf serialization.
//
// Contract
//   - At each depth the Executor drains sync fields through ResolveSync, then
//     calls BatchResolveAsync once with every async task found at that depth.
//     The next depth starts only after that call returns.
//   - ResolveSync is never called for fields marked Async, and
//     BatchResolveAsync is never called with an empty task list.
//   - Returned errors become located GraphQL errors. Errors implementing
//     Extensions() map[string]any keep their extensions.
//   - Implementations must be safe for concurrent executions and must not
//     mutate source or args.
//
// Identifiers
//   - objectType is the GraphQL object type name and field the field name on it.
//   - source is the parent value (the root value for root fields).
//   - args holds arguments already coerced to their input types.
type Runtime interface {
	// ResolveSync resolves a field served directly by its parent value.
	// Return (nil, nil) to produce a GraphQL null for nullable fields.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves one depth of async field tasks. It returns
	// one result per task, results[i] belonging to tasks[i]. A failing
	// element does not fail its siblings.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the object type of value at a position declared as
	// declaredType, which is an object, interface or union type. The Executor
	// rejects answers that are not possible types of declaredType.
	ResolveType(ctx context.Context, declaredType string, value any) (string, error)

	// SerializeLeafValue converts a scalar or enum value into a JSON-safe Go
	// value. Enums serialize to their names.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	// ObjectType is the parent GraphQL object type name for the field.
	ObjectType string
	// Field is the GraphQL field name to resolve.
	Field string
	// Source is the parent object value (the root value for root fields).
	Source any
	// Args are the field arguments, coerced to Go values per the schema.
	Args map[string]any
	// Path is the response path the result will be written to.
	Path Path
}

type AsyncResolveResult struct {
	// Value is the resolved raw value prior to completion, or nil on error.
	Value any
	// Error contains a failure specific to this element; other elements in the
	// same batch are unaffected.
	Error error
}
