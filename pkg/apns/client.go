package apns

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/apnskit/pkg/logger"
	"github.com/dmitrymomot/apnskit/pkg/pool"
)

const tracerName = "github.com/dmitrymomot/apnskit/pkg/apns"

// PoolProvider hands out the connection pool for an environment, building
// it on first use.
type PoolProvider interface {
	Pool(env Environment) (*pool.Pool[*Connection], error)
}

// Client sends notifications to one environment through pooled connections.
// It holds no connection itself and is cheap to create per request.
type Client struct {
	pools  PoolProvider
	env    Environment
	log    *slog.Logger
	tracer trace.Tracer
	tokens TokenStore
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger for send logs.
func WithClientLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTracerProvider sets where send spans go. Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *Client) {
		if tp != nil {
			c.tracer = tp.Tracer(tracerName)
		}
	}
}

// WithTokenStore enables skipping and recording unregistered device tokens.
func WithTokenStore(s TokenStore) ClientOption {
	return func(c *Client) {
		c.tokens = s
	}
}

// NewClient returns a client bound to env.
func NewClient(pools PoolProvider, env Environment, opts ...ClientOption) *Client {
	c := &Client{
		pools:  pools,
		env:    env,
		log:    slog.Default(),
		tracer: otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Environment returns the environment the client sends to.
func (c *Client) Environment() Environment {
	return c.env
}

// Send borrows a connection for the client's environment and delivers n.
// Pool errors (ErrNotConfigured, pool.ErrAcquireTimeout, pool.ErrPoolClosed)
// and transport errors are returned as they are; rejected notifications come
// back as *ResponseError.
func (c *Client) Send(ctx context.Context, n Notification) (Response, error) {
	if n.DeviceToken == "" {
		return Response{}, ErrEmptyDeviceToken
	}
	if n.APNsID == "" {
		n.APNsID = uuid.NewString()
	}

	ctx, span := c.tracer.Start(ctx, "apns.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("apns.environment", c.env.String()),
			attribute.String("apns.id", n.APNsID),
			attribute.String("apns.push_type", string(n.PushType)),
		),
	)
	defer span.End()

	attrs := []slog.Attr{
		logger.Environment(c.env.String()),
		logger.APNsID(n.APNsID),
		logger.DeviceToken(n.DeviceToken),
	}

	if c.tokens != nil {
		dead, err := c.tokens.IsUnregistered(ctx, n.DeviceToken)
		if err != nil {
			c.log.LogAttrs(ctx, slog.LevelWarn, "token store lookup failed", append(attrs, logger.Error(err))...)
		} else if dead {
			span.SetStatus(codes.Error, ErrDeviceUnregistered.Error())
			return Response{}, ErrDeviceUnregistered
		}
	}

	p, err := c.pools.Pool(c.env)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.LogAttrs(ctx, slog.LevelError, "apns pool unavailable", append(attrs, logger.Error(err))...)
		return Response{}, err
	}

	start := time.Now()
	resp, err := pool.WithConnection(ctx, p, func(ctx context.Context, conn *Connection) (Response, error) {
		return conn.Send(ctx, n)
	})
	attrs = append(attrs, logger.Duration(time.Since(start)))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		var re *ResponseError
		if errors.As(err, &re) {
			span.SetAttributes(
				attribute.Int("apns.status_code", re.StatusCode),
				attribute.String("apns.reason", re.Reason),
			)
			if re.Unregistered() {
				c.markUnregistered(ctx, n.DeviceToken, re.Timestamp, attrs)
			}
		}
		c.log.LogAttrs(ctx, slog.LevelError, "apns send failed", append(attrs, logger.Error(err))...)
		return resp, err
	}

	span.SetAttributes(attribute.Int("apns.status_code", resp.StatusCode))
	c.log.LogAttrs(ctx, slog.LevelDebug, "apns notification sent", attrs...)
	return resp, nil
}

func (c *Client) markUnregistered(ctx context.Context, deviceToken string, at time.Time, attrs []slog.Attr) {
	if c.tokens == nil {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	if err := c.tokens.MarkUnregistered(ctx, deviceToken, at); err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "failed to record unregistered token", append(attrs, logger.Error(err))...)
	}
}
