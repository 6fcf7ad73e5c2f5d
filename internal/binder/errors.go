package binder

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrUnknownKey is returned when a key-lookup resolver has no entry for a field.
var ErrUnknownKey = errors.New("key not found")

// BindingError reports a field that no resolver method, key lookup or
// property can supply. It is raised while compiling when the problem is
// visible statically, and on first use otherwise.
type BindingError struct {
	TypeName  string
	FieldName string
	Reason    string
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("cannot bind %s.%s: %s", e.TypeName, e.FieldName, e.Reason)
}

func (e *BindingError) Extensions() map[string]any {
	return map[string]any{"code": "RESOLVER_BINDING"}
}

// InvocationError wraps a failure signaled by resolver code, including
// panics and unknown lookup keys.
type InvocationError struct {
	TypeName  string
	FieldName string
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("resolver for %s.%s failed: %v", e.TypeName, e.FieldName, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

func (e *InvocationError) Extensions() map[string]any {
	return map[string]any{"code": "RESOLVER_INVOCATION"}
}

func invocationError(typeName, fieldName string, err error) error {
	var ie *InvocationError
	if errors.As(err, &ie) {
		return ie
	}
	return &InvocationError{TypeName: typeName, FieldName: fieldName, Err: err}
}

func recoverPanic(typeName, fieldName string, errp *error) {
	if r := recover(); r != nil {
		*errp = &InvocationError{TypeName: typeName, FieldName: fieldName, Err: errors.Errorf("panic: %v", r)}
	}
}
