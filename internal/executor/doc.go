// Package executor runs GraphQL operations breadth first against a Runtime.
//
// # Execution model
//
// Fields are split by schema.Field.Async. Sync fields are projections of the
// parent value and are resolved and completed immediately through
// Runtime.ResolveSync; descending through them does not add depth. Async
// fields are backed by resolver code. They are queued while a depth is
// expanded and resolved with exactly one Runtime.BatchResolveAsync call per
// depth, so an operation with asynchronous depth d makes d batch calls.
//
// Each depth proceeds as follows:
//
//	A. Sync expansion. Collect fields (aliases, fragments, @skip/@include),
//	   coerce arguments, resolve and complete sync fields, and queue async
//	   ones. A queued field writes a null placeholder into its parent
//	   ResultMap so the response keeps query order whatever the completion
//	   order.
//	B. Batch. Tasks under nulled paths are dropped, the rest go to the
//	   runtime in one call, and results are matched to tasks by index.
//	C. Completion. Each result is completed into the response tree. Objects
//	   found here queue their async children for the next depth.
//
// # Value completion
//
//   - Non-Null: a null result records a located error and nulls the nearest
//     nullable ancestor. Without one, the whole data entry becomes null.
//   - List: elements are completed with index paths. A null element of a
//     Non-Null item type nulls the list.
//   - Leaf: Runtime.SerializeLeafValue.
//   - Object, Interface, Union: Runtime.ResolveType names the object type for
//     the declared type of the position. Answers that are not possible types
//     of the declared type are field errors. Type conditions of fragments match
//     the resolved type, its interfaces and the unions containing it.
//
// # Errors
//
// Errors are collected as GraphQLError values with the response path.
// Errors implementing Extensions() map[string]any keep their extensions so
// callers can tell failure kinds apart.
// Results of one batch are independent, so partial success is normal.
package executor
