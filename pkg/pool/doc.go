// Package pool provides a bounded connection pool with scoped borrowing and a
// registry that builds one pool per key on first use.
//
// # Pools
//
// A Pool opens connections through a Source on demand, never holding more
// than workers × max-conns-per-worker live connections (by default one per
// GOMAXPROCS). Borrowers wait when every connection is lent out. Do and
// WithConnection are the only way to borrow:
//
//	err := p.Do(ctx, func(ctx context.Context, conn *Conn) error {
//	    return conn.Send(ctx, msg)
//	})
//
// The connection goes back to the idle set when the function returns, or is
// closed when the DiscardPolicy rejects the returned error or the function
// panics. Errors from the function are returned unchanged, so callers can tell
// "my message failed" apart from pool errors (ErrAcquireTimeout,
// ErrPoolClosed, ErrOpenFailed).
//
// WithTimeout bounds both the wait for a connection and the operation itself.
// A wait that hits the deadline fails with ErrAcquireTimeout.
//
// # Registry
//
// Registry.GetOrCreate returns the pool for a key, building it under a per-key
// lock from the Source the provider returns. Readers of existing pools take
// no lock. A nil provider or nil source is ErrNotConfigured. Sources that
// implement Configurer contribute their own pool options.
//
// Registry.Close closes every pool; each live connection is closed exactly
// once, borrowed ones when they are returned.
//
// # Metrics
//
// NewCollector exposes Registry stats as Prometheus metrics.
package pool
