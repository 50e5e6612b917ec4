package pool

import "errors"

var (
	// ErrNotConfigured is returned when a pool is requested before the
	// configuration it is built from has been provided.
	ErrNotConfigured = errors.New("pool: not configured")

	// ErrAcquireTimeout is returned when no connection became available
	// before the borrow deadline.
	ErrAcquireTimeout = errors.New("pool: timed out waiting for a connection")

	// ErrPoolClosed is returned by borrows and lookups after shutdown started.
	ErrPoolClosed = errors.New("pool: closed")

	// ErrOpenFailed wraps errors returned by Source.Open.
	ErrOpenFailed = errors.New("pool: failed to open connection")
)
