package pool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/apnskit/pkg/logger"
)

// Registry maps keys to lazily built, long-lived pools. At most one pool is
// ever built per key; lookups of existing pools take no lock.
type Registry[K comparable, C any] struct {
	pools sync.Map // K -> *Pool[C]

	mu     sync.Mutex
	locks  map[K]*sync.Mutex
	order  []K
	closed bool

	poolOpts []Option
	log      *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryOptions)

type registryOptions struct {
	poolOpts []Option
	logger   *slog.Logger
}

// WithPoolOptions sets options applied to every pool the registry builds.
func WithPoolOptions(opts ...Option) RegistryOption {
	return func(o *registryOptions) {
		o.poolOpts = append(o.poolOpts, opts...)
	}
}

// WithRegistryLogger sets the registry logger. Pools inherit it unless a
// pool option overrides it.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, C any](opts ...RegistryOption) *Registry[K, C] {
	o := registryOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Registry[K, C]{
		locks:    make(map[K]*sync.Mutex),
		poolOpts: append([]Option{WithLogger(o.logger)}, o.poolOpts...),
		log:      o.logger.With(logger.Component("pool_registry")),
	}
}

// GetOrCreate returns the pool registered under key. When none exists the
// provider is called under the key's lock to produce the pool's source; it
// runs at most once per key unless it fails, in which case nothing is
// registered and the error is returned as is. A nil provider, or a provider
// returning a nil source, yields ErrNotConfigured.
func (r *Registry[K, C]) GetOrCreate(key K, provider func() (Source[C], error)) (*Pool[C], error) {
	if p, ok := r.Get(key); ok {
		return p, nil
	}
	if provider == nil {
		return nil, ErrNotConfigured
	}

	lock, err := r.lockFor(key)
	if err != nil {
		return nil, err
	}
	lock.Lock()
	defer lock.Unlock()

	if p, ok := r.Get(key); ok {
		return p, nil
	}

	src, err := provider()
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, ErrNotConfigured
	}

	opts := append([]Option{WithName(fmt.Sprint(key))}, r.poolOpts...)
	if c, ok := src.(Configurer); ok {
		opts = append(opts, c.PoolOptions()...)
	}
	p := New(src, opts...)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = p.Close()
		return nil, ErrPoolClosed
	}
	r.pools.Store(key, p)
	r.order = append(r.order, key)
	r.mu.Unlock()

	r.log.LogAttrs(context.Background(), slog.LevelDebug, "pool created",
		logger.PoolKey(key),
		slog.Int("capacity", cap(p.sem)),
	)
	return p, nil
}

// Get returns the pool registered under key, if any.
func (r *Registry[K, C]) Get(key K) (*Pool[C], bool) {
	v, ok := r.pools.Load(key)
	if !ok {
		return nil, false
	}
	return v.(*Pool[C]), true
}

// Keys returns the registered keys in creation order.
func (r *Registry[K, C]) Keys() []K {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]K, len(r.order))
	copy(keys, r.order)
	return keys
}

// Stats returns the stats of every pool keyed by fmt.Sprint(key).
func (r *Registry[K, C]) Stats() map[string]Stats {
	out := make(map[string]Stats)
	r.pools.Range(func(k, v any) bool {
		out[fmt.Sprint(k)] = v.(*Pool[C]).Stats()
		return true
	})
	return out
}

// Close shuts down every pool exactly once. Later GetOrCreate calls for new
// keys fail with ErrPoolClosed; pools already handed out reject borrows.
func (r *Registry[K, C]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	keys := r.order
	r.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if p, ok := r.Get(key); ok {
			if err := p.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	r.log.LogAttrs(context.Background(), slog.LevelDebug, "registry closed",
		slog.Int("pools", len(keys)),
	)
	return errors.Join(errs...)
}

func (r *Registry[K, C]) lockFor(key K) (*sync.Mutex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrPoolClosed
	}
	lock, ok := r.locks[key]
	if !ok {
		lock = new(sync.Mutex)
		r.locks[key] = lock
	}
	return lock, nil
}
