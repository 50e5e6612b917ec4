package apnskit_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apnskit"
	"github.com/dmitrymomot/apnskit/pkg/apns"
	"github.com/dmitrymomot/apnskit/pkg/logger"
	"github.com/dmitrymomot/apnskit/pkg/pool"
)

func testConfiguration(t *testing.T, topic string) apns.Configuration {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return apns.Configuration{
		Auth:  apns.TokenAuth(key, "KEY123", "TEAM123"),
		Topic: topic,
	}
}

type pusher struct {
	cfg    apns.FullConfiguration
	closed atomic.Int32
}

func (p *pusher) PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	return &apns2.Response{StatusCode: apns2.StatusSent, ApnsID: n.ApnsID}, nil
}

func (p *pusher) CloseIdleConnections() {
	p.closed.Add(1)
}

type transport struct {
	mu      sync.Mutex
	pushers []*pusher
}

func (tr *transport) factory(cfg apns.FullConfiguration) (apns.Pusher, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	p := &pusher{cfg: cfg}
	tr.pushers = append(tr.pushers, p)
	return p, nil
}

func (tr *transport) all() []*pusher {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]*pusher(nil), tr.pushers...)
}

func newApp(tr *transport, opts ...apnskit.Option) *apnskit.Application {
	opts = append([]apnskit.Option{
		apnskit.WithLogger(logger.Nop()),
		apnskit.WithSourceOptions(apns.WithPusherFactory(tr.factory)),
		apnskit.WithPoolOptions(pool.WithWorkers(1)),
	}, opts...)
	return apnskit.New(opts...)
}
