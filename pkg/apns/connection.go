package apns

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sideshow/apns2"

	"github.com/dmitrymomot/apnskit/pkg/logger"
	"github.com/dmitrymomot/apnskit/pkg/pool"
)

// Pusher is the transport a Connection sends through. *apns2.Client
// satisfies it; each instance owns its own HTTP/2 connection.
type Pusher interface {
	PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error)
	CloseIdleConnections()
}

// PusherFactory builds a transport for a resolved configuration.
type PusherFactory func(cfg FullConfiguration) (Pusher, error)

// NewPusher builds an apns2 client for cfg.
func NewPusher(cfg FullConfiguration) (Pusher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var client *apns2.Client
	if cfg.Auth.kind == authToken {
		client = apns2.NewTokenClient(cfg.Auth.token)
	} else {
		client = apns2.NewClient(cfg.Auth.certificate)
	}

	if cfg.Environment == Production {
		client = client.Production()
	} else {
		client = client.Development()
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}
	return client, nil
}

// Connection is one pooled link to APNs. It is only ever used by the
// caller that borrowed it.
type Connection struct {
	pusher   Pusher
	cfg      FullConfiguration
	openedAt time.Time
}

// Environment returns the environment the connection talks to.
func (c *Connection) Environment() Environment {
	return c.cfg.Environment
}

// OpenedAt returns when the connection was created.
func (c *Connection) OpenedAt() time.Time {
	return c.openedAt
}

// Send delivers n. Transport failures are returned unchanged; notifications
// rejected by APNs come back as *ResponseError.
func (c *Connection) Send(ctx context.Context, n Notification) (Response, error) {
	if n.DeviceToken == "" {
		return Response{}, ErrEmptyDeviceToken
	}

	resp, err := c.pusher.PushWithContext(ctx, n.toAPNs(c.cfg.Topic))
	if err != nil {
		return Response{}, err
	}
	if !resp.Sent() {
		return Response{StatusCode: resp.StatusCode, APNsID: resp.ApnsID}, &ResponseError{
			StatusCode: resp.StatusCode,
			Reason:     resp.Reason,
			APNsID:     resp.ApnsID,
			Timestamp:  resp.Timestamp.Time,
		}
	}
	return Response{StatusCode: resp.StatusCode, APNsID: resp.ApnsID}, nil
}

// DiscardPolicy keeps connections after rejected notifications and context
// expiry, and drops them after transport failures or when APNs announces it
// is closing the connection.
func DiscardPolicy(err error) bool {
	if err == nil {
		return false
	}
	var re *ResponseError
	if errors.As(err, &re) {
		return re.ConnectionClosing()
	}
	if errors.Is(err, ErrEmptyDeviceToken) {
		return false
	}
	return pool.DiscardOnError(err)
}

// Source opens Connections for one environment. It implements
// pool.Source and pool.Configurer.
type Source struct {
	cfg     FullConfiguration
	factory PusherFactory
	log     *slog.Logger
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithPusherFactory replaces NewPusher, e.g. with a fake transport in tests.
func WithPusherFactory(f PusherFactory) SourceOption {
	return func(s *Source) {
		if f != nil {
			s.factory = f
		}
	}
}

// WithSourceLogger sets the logger used when the configuration has none.
func WithSourceLogger(l *slog.Logger) SourceOption {
	return func(s *Source) {
		if l != nil {
			s.log = l
		}
	}
}

// NewSource validates cfg and returns a connection source for it.
func NewSource(cfg FullConfiguration, opts ...SourceOption) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Source{cfg: cfg, factory: NewPusher, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if cfg.Logger != nil {
		s.log = cfg.Logger
	}
	return s, nil
}

// Configuration returns the resolved configuration.
func (s *Source) Configuration() FullConfiguration {
	return s.cfg
}

func (s *Source) Open(ctx context.Context) (*Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := s.factory(s.cfg)
	if err != nil {
		return nil, err
	}

	s.log.LogAttrs(ctx, slog.LevelDebug, "apns connection opened",
		logger.Environment(s.cfg.Environment.String()),
		slog.String("auth", s.cfg.Auth.String()),
	)
	return &Connection{pusher: p, cfg: s.cfg, openedAt: time.Now()}, nil
}

func (s *Source) Close(c *Connection) error {
	c.pusher.CloseIdleConnections()
	s.log.LogAttrs(context.Background(), slog.LevelDebug, "apns connection closed",
		logger.Environment(s.cfg.Environment.String()),
		logger.Duration(time.Since(c.openedAt)),
	)
	return nil
}

// PoolOptions derives the pool settings from the configuration.
func (s *Source) PoolOptions() []pool.Option {
	opts := []pool.Option{
		pool.WithName(s.cfg.Environment.String()),
		pool.WithTimeout(s.cfg.Timeout),
		pool.WithDiscardPolicy(DiscardPolicy),
	}
	if s.cfg.Logger != nil {
		opts = append(opts, pool.WithLogger(s.cfg.Logger))
	}
	return opts
}
