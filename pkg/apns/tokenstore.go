package apns

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers device tokens APNs reported as unregistered so the
// client stops sending to them.
type TokenStore interface {
	MarkUnregistered(ctx context.Context, deviceToken string, at time.Time) error
	IsUnregistered(ctx context.Context, deviceToken string) (bool, error)
	// Forget clears the mark, e.g. when the device registers again.
	Forget(ctx context.Context, deviceToken string) error
}

// MemoryTokenStore keeps marks in process memory. Marks older than ttl are
// ignored; zero ttl keeps them forever.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	marks map[string]time.Time
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryTokenStore(ttl time.Duration) *MemoryTokenStore {
	return &MemoryTokenStore{
		marks: make(map[string]time.Time),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryTokenStore) MarkUnregistered(_ context.Context, deviceToken string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marks[deviceToken] = at
	return nil
}

func (s *MemoryTokenStore) IsUnregistered(_ context.Context, deviceToken string) (bool, error) {
	s.mu.RLock()
	at, ok := s.marks[deviceToken]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if s.ttl > 0 && s.now().Sub(at) > s.ttl {
		return false, nil
	}
	return true, nil
}

func (s *MemoryTokenStore) Forget(_ context.Context, deviceToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.marks, deviceToken)
	return nil
}

// RedisTokenStore shares marks between processes through Redis.
type RedisTokenStore struct {
	db     redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewRedisTokenStore stores marks under prefix+token with the given ttl
// (zero means no expiry).
func NewRedisTokenStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisTokenStore {
	if prefix == "" {
		prefix = "apns:unregistered:"
	}
	return &RedisTokenStore{db: client, prefix: prefix, ttl: ttl}
}

func (s *RedisTokenStore) MarkUnregistered(ctx context.Context, deviceToken string, at time.Time) error {
	return s.db.Set(ctx, s.prefix+deviceToken, at.Unix(), s.ttl).Err()
}

func (s *RedisTokenStore) IsUnregistered(ctx context.Context, deviceToken string) (bool, error) {
	n, err := s.db.Exists(ctx, s.prefix+deviceToken).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisTokenStore) Forget(ctx context.Context, deviceToken string) error {
	return s.db.Del(ctx, s.prefix+deviceToken).Err()
}
