package pool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/apnskit/pkg/logger"
)

// Source opens and closes the connections a Pool manages.
type Source[C any] interface {
	// Open creates a new connection. ctx bounds the dial.
	Open(ctx context.Context) (C, error)

	// Close releases the connection's resources. It is called exactly once
	// per opened connection.
	Close(conn C) error
}

// Configurer is implemented by sources that derive pool options from their
// own configuration (timeouts, logger). Registry applies them after its own.
type Configurer interface {
	PoolOptions() []Option
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	Capacity  int   // maximum number of live connections
	Open      int   // live connections, idle or borrowed
	Idle      int   // connections waiting in the idle set
	InUse     int   // borrowed connections, including ones being opened
	Created   int64 // connections opened over the pool lifetime
	Discarded int64 // connections dropped after a failed operation
	Timeouts  int64 // borrows that gave up waiting
	Closed    bool
}

// Pool lends connections to one caller at a time. Live connections never
// exceed the capacity; borrowers wait when the pool is exhausted.
type Pool[C any] struct {
	source Source[C]
	opts   options
	log    *slog.Logger

	// sem holds one token per borrowed connection.
	sem       chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	idle   []C
	open   int
	inUse  int
	closed bool

	created   atomic.Int64
	discarded atomic.Int64
	timeouts  atomic.Int64
}

// New creates an empty pool. Connections are opened on demand.
func New[C any](source Source[C], opts ...Option) *Pool[C] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.logger.With(logger.Component("pool"))
	if o.name != "" {
		log = log.With(logger.PoolKey(o.name))
	}

	return &Pool[C]{
		source: source,
		opts:   o,
		log:    log,
		sem:    make(chan struct{}, o.capacity()),
		done:   make(chan struct{}),
		idle:   make([]C, 0, o.capacity()),
	}
}

// Do borrows a connection, runs fn with exclusive access to it and hands it
// back. The connection is returned to the idle set, or discarded when the
// discard policy rejects fn's error or fn panics. fn's error is returned
// unchanged.
func (p *Pool[C]) Do(ctx context.Context, fn func(ctx context.Context, conn C) error) error {
	if p.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.timeout)
		defer cancel()
	}

	conn, err := p.acquire(ctx)
	if err != nil {
		return err
	}

	// Stays true if fn panics.
	discard := true
	defer func() { p.release(conn, discard) }()

	err = fn(ctx, conn)
	discard = p.opts.discard(err)
	return err
}

// WithConnection is Do for operations that produce a value.
func WithConnection[C, T any](ctx context.Context, p *Pool[C], fn func(ctx context.Context, conn C) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context, conn C) error {
		var err error
		out, err = fn(ctx, conn)
		return err
	})
	return out, err
}

func (p *Pool[C]) acquire(ctx context.Context) (C, error) {
	var zero C

	select {
	case <-p.done:
		return zero, ErrPoolClosed
	default:
	}

	select {
	case p.sem <- struct{}{}:
	case <-p.done:
		return zero, ErrPoolClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.timeouts.Add(1)
			p.log.LogAttrs(ctx, slog.LevelWarn, "timed out waiting for connection",
				slog.Int("capacity", cap(p.sem)),
			)
			return zero, errors.Join(ErrAcquireTimeout, ctx.Err())
		}
		return zero, ctx.Err()
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		<-p.sem
		return zero, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		conn := p.idle[n-1]
		p.idle[n-1] = zero
		p.idle = p.idle[:n-1]
		p.inUse++
		p.mu.Unlock()
		return conn, nil
	}
	p.open++
	p.inUse++
	p.mu.Unlock()

	conn, err := p.source.Open(ctx)
	if err != nil {
		p.mu.Lock()
		p.open--
		p.inUse--
		p.mu.Unlock()
		<-p.sem
		p.log.LogAttrs(ctx, slog.LevelError, "failed to open connection", logger.Error(err))
		return zero, errors.Join(ErrOpenFailed, err)
	}

	p.created.Add(1)

	p.mu.Lock()
	if p.closed {
		p.open--
		p.inUse--
		p.mu.Unlock()
		p.closeConn(conn)
		<-p.sem
		return zero, ErrPoolClosed
	}
	p.mu.Unlock()

	p.log.LogAttrs(ctx, slog.LevelDebug, "opened connection",
		slog.Int64("created", p.created.Load()),
	)
	return conn, nil
}

func (p *Pool[C]) release(conn C, discard bool) {
	p.mu.Lock()
	p.inUse--
	if !discard && !p.closed {
		p.idle = append(p.idle, conn)
		p.mu.Unlock()
		<-p.sem
		return
	}
	p.open--
	p.mu.Unlock()

	if discard {
		p.discarded.Add(1)
		p.log.LogAttrs(context.Background(), slog.LevelWarn, "discarding connection")
	}
	p.closeConn(conn)
	<-p.sem
}

func (p *Pool[C]) closeConn(conn C) error {
	if err := p.source.Close(conn); err != nil {
		p.log.LogAttrs(context.Background(), slog.LevelError, "failed to close connection", logger.Error(err))
		return err
	}
	return nil
}

// Close stops lending. Waiting and future borrowers get ErrPoolClosed, idle
// connections are closed now, borrowed ones when they come back. Calling
// Close more than once is a no-op.
func (p *Pool[C]) Close() error {
	var errs []error
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		idle := p.idle
		p.idle = nil
		p.open -= len(idle)
		p.mu.Unlock()

		close(p.done)

		for _, conn := range idle {
			if err := p.closeConn(conn); err != nil {
				errs = append(errs, err)
			}
		}
		p.log.LogAttrs(context.Background(), slog.LevelDebug, "pool closed",
			slog.Int("closed_idle", len(idle)),
		)
	})
	return errors.Join(errs...)
}

// Stats returns current counters.
func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Capacity:  cap(p.sem),
		Open:      p.open,
		Idle:      len(p.idle),
		InUse:     p.inUse,
		Created:   p.created.Load(),
		Discarded: p.discarded.Load(),
		Timeouts:  p.timeouts.Load(),
		Closed:    p.closed,
	}
}
