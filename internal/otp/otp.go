// Package otp stores short-lived verification codes and reset tokens.
// The production store is Redis; an in-memory store backs development
// and tests.
package otp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a code is absent or expired.
var ErrNotFound = errors.New("code not found or expired")

// CodeStore persists verification codes with a TTL. Keys are consumed
// on successful verification.
type CodeStore interface {
	Put(ctx context.Context, key, code string, ttl time.Duration) error
	// Verify checks the code for a key and deletes it on match.
	Verify(ctx context.Context, key, code string) error
	Close() error
}

// GenerateCode returns a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// GenerateToken returns an opaque token for reset links.
func GenerateToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Redis store
// ─────────────────────────────────────────────────────────────────────────────

type redisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string) (CodeStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: 0})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &redisStore{client: client}, nil
}

func (r *redisStore) Put(ctx context.Context, key, code string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Set(ctx, "otp:"+key, code, ttl).Err()
}

func (r *redisStore) Verify(ctx context.Context, key, code string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	val, err := r.client.Get(ctx, "otp:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get code from Redis: %w", err)
	}
	if val != code {
		return ErrNotFound
	}
	return r.client.Del(ctx, "otp:"+key).Err()
}

func (r *redisStore) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// Memory store (dev and tests)
// ─────────────────────────────────────────────────────────────────────────────

type memEntry struct {
	code    string
	expires time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemoryStore returns a process-local store.
func NewMemoryStore() CodeStore {
	return &memoryStore{entries: make(map[string]memEntry), now: time.Now}
}

func (m *memoryStore) Put(_ context.Context, key, code string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memEntry{code: code, expires: m.now().Add(ttl)}
	return nil
}

func (m *memoryStore) Verify(_ context.Context, key, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || m.now().After(e.expires) || e.code != code {
		return ErrNotFound
	}
	delete(m.entries, key)
	return nil
}

func (m *memoryStore) Close() error { return nil }
