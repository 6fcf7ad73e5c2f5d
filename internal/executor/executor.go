package executor

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	language "github.com/hanpama/graphbind/internal/language"
	schema "github.com/hanpama/graphbind/internal/schema"
)

type Path []PathElement

// String renders p with dots, list indexes in brackets: "greetings.[0].text".
func (p Path) String() string { return pathToString(p) }

type PathElement any

// executionState holds the state during query execution
type executionState struct {
	runtime        Runtime
	schema         *schema.Schema
	document       *language.QueryDocument
	variableValues map[string]any
	context        context.Context
	asyncTaskGroup []asyncTask
	errors         []GraphQLError
	// prefixes of paths that have been nullified (tombstoned)
	nullifiedPrefix map[string]struct{}
	// response positions whose type is Non-Null
	nonNullPaths map[string]struct{}
	data         *ResultMap
	dataNull     bool
}

// asyncTask is a queued async field with what its completion needs.
type asyncTask struct {
	Task         AsyncResolveTask
	ResponsePath Path
	FieldType    *schema.TypeRef
	Fields       []*language.Field
}

type asyncPending struct{}

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	operation := getOperation(document, operationName)
	if operation == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: "operation not found"}}}
	}

	coercedVariableValues, err := coerceVariableValues(e.schema, operation, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	var rootType *schema.Type
	switch operation.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	default:
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("unsupported operation type: %s", operation.Operation)}}}
	}

	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("root type not found for %s operation", operation.Operation)}}}
	}

	state := &executionState{
		runtime:         e.runtime,
		schema:          e.schema,
		document:        document,
		variableValues:  coercedVariableValues,
		context:         ctx,
		errors:          []GraphQLError{},
		nullifiedPrefix: make(map[string]struct{}),
		nonNullPaths:    make(map[string]struct{}),
	}

	// Root selection set: sync immediate expansion, async queued
	state.data = executeSelectionSet(state, rootType, operation.SelectionSet, initialValue, Path{})
	if state.data == nil {
		state.dataNull = true
	}

	// Depth-wise batch loop
	for len(state.asyncTaskGroup) > 0 && !state.dataNull {
		filtered, results := flushAsyncTasks(state)
		for i, r := range results {
			completeAsyncField(state, filtered[i], r)
		}
	}

	if state.dataNull {
		return &ExecutionResult{Data: nil, Errors: state.errors}
	}
	return &ExecutionResult{Data: state.data, Errors: state.errors}
}

// executeSelectionSet executes a selection set without flushing. It returns
// nil when a Non-Null field of the object completed to null.
func executeSelectionSet(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) *ResultMap {
	groups := collectFields(state, objectType, selectionSet)
	resultMap := NewResultMap(len(groups))

	for _, group := range groups {
		responseName := group.ResponseName
		fields := group.Fields
		fieldPath := appendPath(path, responseName)

		// Handle __typename special case
		if fields[0].Name == "__typename" {
			resultMap.Set(responseName, objectType.Name)
			continue
		}

		fieldDef := objectType.Field(fields[0].Name)
		if fieldDef == nil {
			state.addError(fmt.Sprintf("Cannot query field '%s' on type '%s'", fields[0].Name, objectType.Name), fieldPath)
			continue
		}
		if schema.IsNonNull(fieldDef.Type) {
			state.nonNullPaths[pathToString(fieldPath)] = struct{}{}
		}

		fieldResult := executeField(state, objectType, objectValue, fieldDef, fields, fieldPath)
		if _, ok := fieldResult.(asyncPending); ok {
			// placeholder keeps the key in query order until the batch completes
			resultMap.Set(responseName, nil)
			continue
		}

		if isNullish(fieldResult) {
			if schema.IsNonNull(fieldDef.Type) {
				state.markNullifiedPrefix(path)
				return nil
			}
			resultMap.Set(responseName, nil)
			continue
		}
		resultMap.Set(responseName, fieldResult)
	}

	return resultMap
}

func executeField(state *executionState, objectType *schema.Type, objectValue any, fieldDef *schema.Field, fields []*language.Field, path Path) any {
	argumentValues, ok := coerceArgumentValues(state.schema, fieldDef, fields[0].Arguments, state.variableValues, state, path)
	if !ok {
		return nil
	}

	if !fieldDef.Async {
		resolvedValue := resolveSyncField(state, objectType.Name, fieldDef.Name, objectValue, argumentValues, path)
		return completeValue(state, fieldDef.Type, fields, resolvedValue, path)
	}

	state.asyncTaskGroup = append(state.asyncTaskGroup, asyncTask{
		Task: AsyncResolveTask{
			ObjectType: objectType.Name,
			Field:      fieldDef.Name,
			Source:     objectValue,
			Args:       argumentValues,
			Path:       path,
		},
		ResponsePath: path,
		FieldType:    fieldDef.Type,
		Fields:       fields,
	})
	return asyncPending{}
}

// flushAsyncTasks flushes tasks and returns results (filtered by tombstones)
func flushAsyncTasks(state *executionState) ([]asyncTask, []AsyncResolveResult) {
	// Filter out tasks under nullified prefixes
	filtered := make([]asyncTask, 0, len(state.asyncTaskGroup))
	for _, at := range state.asyncTaskGroup {
		if state.hasNullifiedPrefix(at.ResponsePath) {
			continue
		}
		filtered = append(filtered, at)
	}

	tasks := make([]AsyncResolveTask, len(filtered))
	for i, at := range filtered {
		tasks[i] = at.Task
	}

	// Clear group before executing
	state.asyncTaskGroup = nil
	if len(tasks) == 0 {
		return nil, nil
	}

	results := state.runtime.BatchResolveAsync(state.context, tasks)
	return filtered, results
}

// completeAsyncField completes a single async result, with non-null propagation and pruning
func completeAsyncField(state *executionState, at asyncTask, res AsyncResolveResult) {
	path := at.ResponsePath
	// If this path is already nullified by an ancestor, ignore
	if state.dataNull || state.hasNullifiedPrefix(path) {
		return
	}

	if res.Error != nil {
		state.addFieldError(res.Error, path)
		state.nullAt(path, at.FieldType)
		return
	}

	completed := completeValue(state, at.FieldType, at.Fields, res.Value, path)
	if isNullish(completed) {
		state.nullAt(path, at.FieldType)
		return
	}
	setValueAtPath(state.data, path, completed)
}

// nullAt writes null at path. A Non-Null position instead nulls its nearest
// nullable ancestor, or the whole data entry when there is none.
func (s *executionState) nullAt(path Path, fieldType *schema.TypeRef) {
	if !schema.IsNonNull(fieldType) {
		setValueAtPath(s.data, path, nil)
		return
	}
	for i := len(path) - 1; i > 0; i-- {
		parent := path[:i]
		if _, nonNull := s.nonNullPaths[pathToString(parent)]; nonNull {
			continue
		}
		setValueAtPath(s.data, parent, nil)
		s.markNullifiedPrefix(parent)
		return
	}
	s.dataNull = true
}

// completeValue completes a value
func completeValue(state *executionState, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			if !state.hasErrorAtPath(path) {
				state.addError(fmt.Sprintf("Cannot return null for non-nullable field %s", pathToString(path)), path)
			}
			return nil
		}
		return completeValue(state, schema.Unwrap(fieldType), fields, result, path)
	}

	if isNullish(result) {
		return nil
	}

	if schema.IsList(fieldType) {
		return completeListValue(state, fieldType, fields, result, path)
	}
	namedType := schema.GetNamedType(fieldType)
	typeObj := state.schema.Types[namedType]
	if typeObj == nil {
		state.addError(fmt.Sprintf("Unknown type: %s", namedType), path)
		return nil
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		serialized, err := state.runtime.SerializeLeafValue(state.context, namedType, result)
		if err != nil {
			state.addFieldError(err, path)
			return nil
		}
		return serialized
	case schema.TypeKindObject, schema.TypeKindInterface, schema.TypeKindUnion:
		return completeCompositeValue(state, typeObj, fields, result, path)
	default:
		state.addError(fmt.Sprintf("Cannot complete value of unexpected type: %s", typeObj.Kind), path)
		return nil
	}
}

// completeListValue completes a list value
func completeListValue(state *executionState, listType *schema.TypeRef, fields []*language.Field, result any, path Path) any {
	var items []any
	if direct, ok := result.([]any); ok {
		items = direct
	} else {
		rv := reflect.ValueOf(result)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			state.addError(fmt.Sprintf("Expected list value, got %T", result), path)
			return nil
		}
		items = make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			items[i] = rv.Index(i).Interface()
		}
	}

	inner := schema.Unwrap(listType)
	itemNonNull := schema.IsNonNull(inner)
	completed := make([]any, len(items))
	for i, item := range items {
		p := appendPath(path, i)
		if itemNonNull {
			state.nonNullPaths[pathToString(p)] = struct{}{}
		}
		v := completeValue(state, inner, fields, item, p)
		if isNullish(v) {
			if itemNonNull {
				// Propagate null to the list field; error already recorded by inner completion
				state.markNullifiedPrefix(path)
				return nil
			}
			v = nil
		}
		completed[i] = v
	}
	return completed
}

// completeCompositeValue asks the runtime which object type value has at a
// position declared as declared, checks that the answer is legal there, and
// executes the sub-selection against that type only.
func completeCompositeValue(state *executionState, declared *schema.Type, fields []*language.Field, result any, path Path) any {
	typeName, err := state.runtime.ResolveType(state.context, declared.Name, result)
	if err != nil {
		state.addFieldError(err, path)
		return nil
	}
	objectType := state.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		state.addError(fmt.Sprintf("Abstract type %s must resolve to an Object type at runtime. Got: %s", declared.Name, typeName), path)
		return nil
	}
	if !state.schema.IsPossibleType(declared.Name, typeName) {
		state.addError(fmt.Sprintf("Runtime Object type %s is not a possible type for %s", typeName, declared.Name), path)
		return nil
	}
	sub := executeSelectionSet(state, objectType, mergeSelectionSets(fields), result, path)
	if sub == nil {
		return nil
	}
	return sub
}

func pathToString(path Path) string {
	var b strings.Builder
	for i, elem := range path {
		if i > 0 {
			b.WriteByte('.')
		}
		switch v := elem.(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// Prefix tombstone helpers
func (s *executionState) markNullifiedPrefix(p Path) {
	key := pathToString(p)
	if key != "" {
		s.nullifiedPrefix[key] = struct{}{}
	}
}

func (s *executionState) hasNullifiedPrefix(p Path) bool {
	if len(s.nullifiedPrefix) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := s.nullifiedPrefix[pathToString(p[:i])]; ok {
			return true
		}
	}
	return false
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" && len(document.Operations) == 1 {
		return document.Operations[0]
	}
	if operationName == "" {
		return nil
	}
	return document.Operations.ForName(operationName)
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return schema.NonNullType(typeRefFromAST(&language.Type{NamedType: t.NamedType, Elem: t.Elem}))
	}
	if t.NamedType != "" {
		return schema.NamedType(t.NamedType)
	}
	if t.Elem != nil {
		return schema.ListType(typeRefFromAST(t.Elem))
	}
	return nil
}

// Helper function to add an error to the execution state
func (state *executionState) addError(message string, path Path) {
	state.errors = append(state.errors, GraphQLError{Message: message, Path: path})
}

type extensionsError interface {
	Extensions() map[string]any
}

// addFieldError records err at path, keeping the extensions it declares.
func (state *executionState) addFieldError(err error, path Path) {
	gqlErr := GraphQLError{Message: err.Error(), Path: path}
	var ext extensionsError
	if errors.As(err, &ext) {
		gqlErr.Extensions = ext.Extensions()
	}
	state.errors = append(state.errors, gqlErr)
}

// hasErrorAtPath reports whether an error with the given path already exists.
func (state *executionState) hasErrorAtPath(path Path) bool {
	for _, err := range state.errors {
		if reflect.DeepEqual(err.Path, path) {
			return true
		}
	}
	return false
}

// resolveSyncField resolves a field synchronously
func resolveSyncField(state *executionState, objectType string, fieldName string, source any, args map[string]any, path Path) any {
	value, err := state.runtime.ResolveSync(state.context, objectType, fieldName, source, args)
	if err != nil {
		state.addFieldError(err, path)
		return nil
	}
	return value
}

// setValueAtPath writes value into the response tree. Missing intermediate
// nodes mean the branch was nulled and the write is dropped.
func setValueAtPath(root *ResultMap, path Path, value any) {
	if root == nil || len(path) == 0 {
		return
	}
	var current any = root
	for _, elem := range path[:len(path)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := current.(*ResultMap)
			if !ok || m == nil {
				return
			}
			next, exists := m.Get(e)
			if !exists {
				return
			}
			current = next
		case int:
			slice, ok := current.([]any)
			if !ok || e >= len(slice) {
				return
			}
			current = slice[e]
		}
	}
	switch fe := path[len(path)-1].(type) {
	case string:
		if m, ok := current.(*ResultMap); ok && m != nil {
			m.Set(fe, value)
		}
	case int:
		if slice, ok := current.([]any); ok && fe < len(slice) {
			slice[fe] = value
		}
	}
}

// mergeSelectionSets merges selection sets from multiple fields
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
