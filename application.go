package apnskit

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/apnskit/pkg/apns"
	"github.com/dmitrymomot/apnskit/pkg/pool"
	"github.com/dmitrymomot/apnskit/pkg/storage"
)

// Application owns process-wide state: typed storage with shutdown hooks,
// named locks and the logger. Push integration hangs off APNS.
type Application struct {
	storage *storage.Storage
	locks   *storage.Locks
	log     *slog.Logger

	registryOpts []pool.RegistryOption
	sourceOpts   []apns.SourceOption
	clientOpts   []apns.ClientOption
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.log = l
		}
	}
}

// WithRegistryOptions adds options for the connection pool registry.
func WithRegistryOptions(opts ...pool.RegistryOption) Option {
	return func(a *Application) {
		a.registryOpts = append(a.registryOpts, opts...)
	}
}

// WithPoolOptions adds options applied to every connection pool, e.g.
// pool.WithWorkers or pool.WithMaxConnsPerWorker.
func WithPoolOptions(opts ...pool.Option) Option {
	return func(a *Application) {
		a.registryOpts = append(a.registryOpts, pool.WithPoolOptions(opts...))
	}
}

// WithSourceOptions adds options for the connection sources.
func WithSourceOptions(opts ...apns.SourceOption) Option {
	return func(a *Application) {
		a.sourceOpts = append(a.sourceOpts, opts...)
	}
}

// WithClientOptions adds options for every client handed out, e.g. a
// token store or tracer provider.
func WithClientOptions(opts ...apns.ClientOption) Option {
	return func(a *Application) {
		a.clientOpts = append(a.clientOpts, opts...)
	}
}

// New creates an application.
func New(opts ...Option) *Application {
	a := &Application{
		storage: storage.New(),
		locks:   storage.NewLocks(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger {
	return a.log
}

// Storage returns the application storage.
func (a *Application) Storage() *storage.Storage {
	return a.storage
}

// Locks returns the application's named locks.
func (a *Application) Locks() *storage.Locks {
	return a.locks
}

// APNS returns the push notification accessor.
func (a *Application) APNS() *APNS {
	return &APNS{app: a, log: a.log}
}

// Shutdown runs the storage shutdown hooks, closing every connection pool.
// It is safe to call more than once.
func (a *Application) Shutdown() {
	if a.storage.IsShutdown() {
		return
	}
	a.log.LogAttrs(context.Background(), slog.LevelDebug, "application shutting down",
		slog.Int("values", a.storage.Len()),
	)
	a.storage.Shutdown()
}
