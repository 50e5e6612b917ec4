package apns_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sideshow/apns2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apnskit/pkg/apns"
	"github.com/dmitrymomot/apnskit/pkg/logger"
	"github.com/dmitrymomot/apnskit/pkg/pool"
)

const testTopic = "com.example.app"

func signingKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return key
}

// writeAuthKey stores key the way Apple ships .p8 files.
func writeAuthKey(t *testing.T, key *ecdsa.PrivateKey) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "AuthKey_TEST.p8")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))
	return path
}

func testConfiguration(t *testing.T) apns.Configuration {
	t.Helper()
	return apns.Configuration{
		Auth:   apns.TokenAuth(signingKey(t), "KEY123", "TEAM123"),
		Topic:  testTopic,
		Logger: logger.Nop(),
	}
}

type mockPusher struct {
	mock.Mock
}

func (m *mockPusher) PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	args := m.Called(ctx, n)
	resp, _ := args.Get(0).(*apns2.Response)
	return resp, args.Error(1)
}

func (m *mockPusher) CloseIdleConnections() {
	m.Called()
}

// fakePusher answers with respond and counts concurrent callers.
type fakePusher struct {
	id       int
	respond  func(n *apns2.Notification) (*apns2.Response, error)
	inFlight atomic.Int32
	maxSeen  atomic.Int32
	closed   atomic.Int32
}

func (p *fakePusher) PushWithContext(ctx apns2.Context, n *apns2.Notification) (*apns2.Response, error) {
	cur := p.inFlight.Add(1)
	defer p.inFlight.Add(-1)
	for {
		seen := p.maxSeen.Load()
		if cur <= seen || p.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	return p.respond(n)
}

func (p *fakePusher) CloseIdleConnections() {
	p.closed.Add(1)
}

func sent(n *apns2.Notification) (*apns2.Response, error) {
	return &apns2.Response{StatusCode: apns2.StatusSent, ApnsID: n.ApnsID}, nil
}

// fakeTransport builds fakePushers and remembers them.
type fakeTransport struct {
	mu      sync.Mutex
	pushers []*fakePusher
	respond func(n *apns2.Notification) (*apns2.Response, error)
}

func (f *fakeTransport) factory(cfg apns.FullConfiguration) (apns.Pusher, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	respond := f.respond
	if respond == nil {
		respond = sent
	}
	p := &fakePusher{id: len(f.pushers) + 1, respond: respond}
	f.pushers = append(f.pushers, p)
	return p, nil
}

func (f *fakeTransport) created() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pushers)
}

func (f *fakeTransport) pusher(i int) *fakePusher {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pushers[i]
}

// testPools is a minimal PoolProvider over pool.Registry.
type testPools struct {
	registry  *pool.Registry[apns.Environment, *apns.Connection]
	cfg       *apns.Configuration
	transport *fakeTransport
}

func newTestPools(cfg *apns.Configuration, transport *fakeTransport, opts ...pool.Option) *testPools {
	return &testPools{
		registry: pool.NewRegistry[apns.Environment, *apns.Connection](
			pool.WithRegistryLogger(logger.Nop()),
			pool.WithPoolOptions(opts...),
		),
		cfg:       cfg,
		transport: transport,
	}
}

func (p *testPools) Pool(env apns.Environment) (*pool.Pool[*apns.Connection], error) {
	if p.cfg == nil {
		return nil, apns.ErrNotConfigured
	}
	return p.registry.GetOrCreate(env, func() (pool.Source[*apns.Connection], error) {
		src, err := apns.NewSource(p.cfg.FullConfiguration(env), apns.WithPusherFactory(p.transport.factory))
		if err != nil {
			return nil, err
		}
		return src, nil
	})
}
