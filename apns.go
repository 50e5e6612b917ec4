package apnskit

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/apnskit/pkg/apns"
	"github.com/dmitrymomot/apnskit/pkg/logger"
	"github.com/dmitrymomot/apnskit/pkg/pool"
	"github.com/dmitrymomot/apnskit/pkg/storage"
)

// Registry is the pool registry backing APNS, one pool per environment.
type Registry = pool.Registry[apns.Environment, *apns.Connection]

var (
	configurationKey = storage.NewKey[apns.Configuration]("apns.configuration")
	registryKey      = storage.NewKey[*Registry]("apns.pools")
)

const registryLock = "apns.pools"

// APNS gives access to the application's push configuration, connection
// pools and clients. It is cheap; obtain it with Application.APNS whenever
// needed.
type APNS struct {
	app *Application
	log *slog.Logger
}

// Configuration returns the configuration, if one was set.
func (a *APNS) Configuration() (*apns.Configuration, bool) {
	cfg, ok := storage.Get(a.app.storage, configurationKey)
	if !ok {
		return nil, false
	}
	return &cfg, true
}

// SetConfiguration validates and stores cfg. Pools built from a previous
// configuration are closed and rebuilt on next use: operations already
// running on an old pool finish, but a caller still holding one gets
// pool.ErrPoolClosed from it and should fetch the pool again with Pool.
func (a *APNS) SetConfiguration(cfg apns.Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	lock := a.app.locks.Lock(registryLock)
	lock.Lock()
	defer lock.Unlock()

	if err := storage.Set(a.app.storage, configurationKey, cfg, nil); err != nil {
		return err
	}
	if storage.Has(a.app.storage, registryKey) {
		if _, err := a.storeRegistry(); err != nil {
			return err
		}
		a.log.LogAttrs(context.Background(), slog.LevelInfo, "apns configuration replaced, pools reset")
	}
	return nil
}

// Pool returns the connection pool for env, building it on first use.
// Without a configuration it fails with apns.ErrNotConfigured, which also
// matches pool.ErrNotConfigured.
func (a *APNS) Pool(env apns.Environment) (*pool.Pool[*apns.Connection], error) {
	if !env.Valid() {
		return nil, apns.ErrInvalidEnvironment
	}
	provider := func() (pool.Source[*apns.Connection], error) {
		cfg, ok := a.Configuration()
		if !ok {
			return nil, errors.Join(apns.ErrNotConfigured, pool.ErrNotConfigured)
		}
		opts := append([]apns.SourceOption{apns.WithSourceLogger(a.app.log)}, a.app.sourceOpts...)
		src, err := apns.NewSource(cfg.FullConfiguration(env), opts...)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	r, err := a.registry()
	if err != nil {
		return nil, err
	}
	p, err := r.GetOrCreate(env, provider)
	if errors.Is(err, pool.ErrPoolClosed) && !a.app.storage.IsShutdown() {
		// r was replaced by SetConfiguration after it was fetched.
		if r, err = a.registry(); err != nil {
			return nil, err
		}
		return r.GetOrCreate(env, provider)
	}
	return p, err
}

// Client returns a client for env logging through the application logger.
func (a *APNS) Client(env apns.Environment) *apns.Client {
	return a.client(env, a.log)
}

// Stats reports every pool's counters keyed by environment name. It
// satisfies pool.StatsProvider so APNS can back a pool.Collector.
func (a *APNS) Stats() map[string]pool.Stats {
	r, ok := storage.Get(a.app.storage, registryKey)
	if !ok {
		return map[string]pool.Stats{}
	}
	return r.Stats()
}

func (a *APNS) client(env apns.Environment, l *slog.Logger) *apns.Client {
	opts := append([]apns.ClientOption{apns.WithClientLogger(l)}, a.app.clientOpts...)
	return apns.NewClient(a, env, opts...)
}

// registry returns the registry kept in storage, creating it under the
// named lock on first use.
func (a *APNS) registry() (*Registry, error) {
	if r, ok := storage.Get(a.app.storage, registryKey); ok {
		return r, nil
	}

	lock := a.app.locks.Lock(registryLock)
	lock.Lock()
	defer lock.Unlock()

	if r, ok := storage.Get(a.app.storage, registryKey); ok {
		return r, nil
	}
	return a.storeRegistry()
}

// storeRegistry puts a fresh registry into storage. A replaced registry is
// closed by its shutdown hook. Callers hold registryLock.
func (a *APNS) storeRegistry() (*Registry, error) {
	opts := append([]pool.RegistryOption{pool.WithRegistryLogger(a.app.log)}, a.app.registryOpts...)
	r := pool.NewRegistry[apns.Environment, *apns.Connection](opts...)

	err := storage.Set(a.app.storage, registryKey, r, func(r *Registry) {
		if err := r.Close(); err != nil {
			a.log.LogAttrs(context.Background(), slog.LevelError, "failed to close apns pools", logger.Error(err))
		}
	})
	if err != nil {
		_ = r.Close()
		return nil, errors.Join(pool.ErrPoolClosed, err)
	}
	return r, nil
}
