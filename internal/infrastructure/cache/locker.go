package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	appcash "github.com/cortecaja/backend/internal/application/cashdrawer"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const lockKeyPrefix = "corte:lock:"

// RedisLocker is a GenerationLocker shared by every replica
type RedisLocker struct {
	client *redislock.Client
}

// NewRedisLocker creates a locker on client
func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: redislock.New(client)}
}

// Acquire takes key for ttl without retrying
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, lockKeyPrefix+key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, appcash.ErrLockHeld
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		// an expired lock was already released by redis
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// InMemoryLocker guards keys within one process
type InMemoryLocker struct {
	mu    sync.Mutex
	held  map[string]lease
	clock func() time.Time
}

type lease struct {
	token   uint64
	expires time.Time
}

var leaseSeq uint64

// NewInMemoryLocker creates a process-local locker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[string]lease), clock: time.Now}
}

// Acquire takes key until release or ttl, whichever is first
func (l *InMemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return nil, appcash.ErrLockHeld
	}
	leaseSeq++
	token := leaseSeq
	l.held[key] = lease{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// a lease that expired and was re-taken belongs to someone else
		if cur, ok := l.held[key]; ok && cur.token == token {
			delete(l.held, key)
		}
		return nil
	}, nil
}

// NewGenerationLocker uses Redis when a client is available
func NewGenerationLocker(client *redis.Client, logger *zap.Logger) appcash.GenerationLocker {
	if client != nil {
		logger.Info("Using Redis reconciliation lock")
		return NewRedisLocker(client)
	}
	logger.Warn("Redis disabled, reconciliation lock is local to this instance")
	return NewInMemoryLocker()
}

var (
	_ appcash.GenerationLocker = (*RedisLocker)(nil)
	_ appcash.GenerationLocker = (*InMemoryLocker)(nil)
)
