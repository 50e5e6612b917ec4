package pool

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"time"
)

// DiscardPolicy reports whether a connection that produced err must be
// dropped instead of going back to the idle set. It is called with nil after
// successful operations.
type DiscardPolicy func(err error) bool

// DiscardOnError drops the connection after any error except context
// cancellation and deadline expiry, which say nothing about the connection.
func DiscardOnError(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	name              string
	workers           int
	maxConnsPerWorker int
	timeout           time.Duration
	discard           DiscardPolicy
	logger            *slog.Logger
}

func defaultOptions() options {
	return options{
		workers:           runtime.GOMAXPROCS(0),
		maxConnsPerWorker: 1,
		discard:           DiscardOnError,
		logger:            slog.Default(),
	}
}

func (o options) capacity() int {
	return o.workers * o.maxConnsPerWorker
}

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithWorkers sets how many workers share the pool. Defaults to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithMaxConnsPerWorker sets the per-worker connection cap. Defaults to 1.
func WithMaxConnsPerWorker(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConnsPerWorker = n
		}
	}
}

// WithTimeout bounds both the wait for a connection and the operation run
// with it. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithDiscardPolicy replaces DiscardOnError.
func WithDiscardPolicy(policy DiscardPolicy) Option {
	return func(o *options) {
		if policy != nil {
			o.discard = policy
		}
	}
}

// WithLogger sets the pool logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
