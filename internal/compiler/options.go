package compiler

import "go.uber.org/zap"

// DefaultConcurrency bounds parallel resolver calls within one batch.
const DefaultConcurrency = 8

// ScalarSerializer converts a resolved value to the output form of a custom
// scalar.
type ScalarSerializer func(value any) (any, error)

type Options struct {
	Logger      *zap.Logger
	Concurrency int
	Scalars     map[string]ScalarSerializer
}

type Option func(*Options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

// WithConcurrency sets how many resolver calls of one batch may run at once.
// Values below one mean sequential execution.
func WithConcurrency(n int) Option {
	return func(o *Options) {
		if n < 1 {
			n = 1
		}
		o.Concurrency = n
	}
}

func WithScalar(name string, serialize ScalarSerializer) Option {
	return func(o *Options) { o.Scalars[name] = serialize }
}

func defaultOptions() *Options {
	return &Options{
		Logger:      zap.NewNop(),
		Concurrency: DefaultConcurrency,
		Scalars:     map[string]ScalarSerializer{},
	}
}
