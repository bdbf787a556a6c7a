package openhash

import "go.uber.org/zap"

// Option configures a Map or Set.
type Option func(*options)

type options struct {
	loadFactor    float64
	logger        *zap.Logger
	rejectZeroKey bool
}

func buildOptions(opts []Option) options {
	o := options{
		loadFactor: DefaultLoadFactor,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	checkLoadFactor(o.loadFactor)
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return o
}

// WithLoadFactor sets the fraction of slots that may be filled before the
// table grows. It must lie strictly between 0 and 1.
func WithLoadFactor(f float64) Option {
	return func(o *options) {
		o.loadFactor = f
	}
}

// WithLogger sets the logger that receives resize and compaction events at
// debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithoutZeroKey makes inserting the zero value of the key type panic with
// ErrInvalidArgument, for callers that use the zero key as a "no key" marker.
func WithoutZeroKey() Option {
	return func(o *options) {
		o.rejectZeroKey = true
	}
}
