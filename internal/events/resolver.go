package events

import "time"

// ResolverStart is emitted before a bound resolver is invoked.
// Path is the response path rendered with dots, e.g. "greetings.0.text".
type ResolverStart struct {
	TypeName  string
	FieldName string
	Binding   string
	Path      string
}

// ResolverFinish is emitted after a bound resolver returns or panics.
type ResolverFinish struct {
	TypeName  string
	FieldName string
	Binding   string
	Path      string
	Err       error
	Duration  time.Duration
}
