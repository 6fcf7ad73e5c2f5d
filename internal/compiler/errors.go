package compiler

import "strings"

// SchemaError reports an invalid schema or an unusable resolver
// registration. Compilation stops on it.
type SchemaError struct {
	Messages []string
}

func (e *SchemaError) Error() string {
	return "invalid schema: " + strings.Join(e.Messages, "; ")
}

func (e *SchemaError) Extensions() map[string]any {
	return map[string]any{"code": "SCHEMA"}
}

func schemaError(msgs ...string) *SchemaError {
	return &SchemaError{Messages: msgs}
}
