package executor

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult represents the result of executing a GraphQL query.
// Data is nil or a *ResultMap.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// ResultMap is a response object. Keys keep the order in which the query
// selected them.
type ResultMap struct {
	Fields []ResultField
}

type ResultField struct {
	Key   string
	Value any
}

func NewResultMap(size int) *ResultMap {
	return &ResultMap{Fields: make([]ResultField, 0, size)}
}

// Set replaces the value of key, appending it when absent.
func (m *ResultMap) Set(key string, value any) {
	for i := range m.Fields {
		if m.Fields[i].Key == key {
			m.Fields[i].Value = value
			return
		}
	}
	m.Fields = append(m.Fields, ResultField{Key: key, Value: value})
}

func (m *ResultMap) Get(key string) (any, bool) {
	for _, f := range m.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func (m *ResultMap) Keys() []string {
	out := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		out[i] = f.Key
	}
	return out
}

func (m *ResultMap) Len() int { return len(m.Fields) }

// Map converts the result tree into plain maps and slices.
func (m *ResultMap) Map() map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		out[f.Key] = Plain(f.Value)
	}
	return out
}

// Plain converts any *ResultMap inside v into map[string]any.
func Plain(v any) any {
	switch x := v.(type) {
	case *ResultMap:
		if x == nil {
			return nil
		}
		return x.Map()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Plain(item)
		}
		return out
	}
	return v
}

func (m *ResultMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)
	stream.WriteObjectStart()
	for i, f := range m.Fields {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(f.Key)
		stream.WriteVal(f.Value)
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

// JSON encodes the result with field order preserved.
func (r *ExecutionResult) JSON() ([]byte, error) {
	return json.Marshal(r)
}
