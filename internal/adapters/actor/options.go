package actor

import "time"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithClock overrides the time source used for creation stamps, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithInterceptor installs a hook invoked before every actor operation with
// the actor's handle; a non-nil return fails the call. Used by tests to
// simulate slow or failing actors inside a batch.
func WithInterceptor(fn func(handle string) error) Option {
	return func(r *Registry) {
		r.intercept = fn
	}
}
