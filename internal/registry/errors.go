package registry

import (
	"fmt"
	"strings"
)

// AmbiguousTypeError reports that more than one object type could describe a
// runtime value at a position and nothing disambiguated between them.
type AmbiguousTypeError struct {
	Declared   string
	ValueType  string
	Candidates []string
	Strategy   string
}

func (e *AmbiguousTypeError) Error() string {
	return fmt.Sprintf("ambiguous type for %s value at %s position: %s match (%s); register the value's shape in the type dictionary",
		e.ValueType, e.Declared, strings.Join(e.Candidates, ", "), e.Strategy)
}

func (e *AmbiguousTypeError) Extensions() map[string]any {
	return map[string]any{"code": "AMBIGUOUS_TYPE", "candidates": append([]string(nil), e.Candidates...)}
}

// TypeResolutionError reports that no legal object type describes a value.
type TypeResolutionError struct {
	Declared  string
	ValueType string
	Reason    string
}

func (e *TypeResolutionError) Error() string {
	msg := fmt.Sprintf("cannot resolve object type for %s value at %s position", e.ValueType, e.Declared)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *TypeResolutionError) Extensions() map[string]any {
	return map[string]any{"code": "TYPE_RESOLUTION"}
}
