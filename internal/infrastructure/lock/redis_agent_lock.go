package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vansales/backend/internal/application/dispatch"
	"github.com/vansales/backend/internal/domain/shared"
	"github.com/vansales/backend/internal/infrastructure/config"
)

// agentLockKeyPrefix namespaces dispatch leases in a shared Redis instance.
const agentLockKeyPrefix = "dispatch:agent_lock:"

// releaseScript deletes the lease only when it still carries our token.
// A lease that expired and was re-acquired by another instance must not
// be deleted by the previous holder.
var releaseScript = redis.NewScript(
	`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) end return 0`,
)

// NewRedisClient builds a Redis client from configuration and verifies
// the connection before returning it.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisAgentLock serializes dispatch commits per agent across multiple
// backend instances. Each lease is a SETNX key with a TTL so a crashed
// holder cannot wedge the agent forever; the TTL must comfortably exceed
// the longest expected commit transaction.
type RedisAgentLock struct {
	client        *redis.Client
	waitTimeout   time.Duration
	ttl           time.Duration
	retryInterval time.Duration
}

// NewRedisAgentLock creates a Redis-backed agent lock manager.
// waitTimeout bounds how long Acquire polls for a busy agent, ttl is the
// lease expiry applied to each acquired lock.
func NewRedisAgentLock(client *redis.Client, waitTimeout, ttl time.Duration) *RedisAgentLock {
	if waitTimeout <= 0 {
		waitTimeout = dispatch.DefaultLockWait
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisAgentLock{
		client:        client,
		waitTimeout:   waitTimeout,
		ttl:           ttl,
		retryInterval: 50 * time.Millisecond,
	}
}

// Acquire takes the dispatch lease for the given agent, polling until the
// wait timeout elapses. It returns shared.ErrDispatchBusy when another
// dispatch holds the agent past the deadline or the context is cancelled.
func (l *RedisAgentLock) Acquire(ctx context.Context, agentID uuid.UUID) (func(), error) {
	key := agentLockKeyPrefix + agentID.String()
	token := uuid.New().String()

	deadline := time.NewTimer(l.waitTimeout)
	defer deadline.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire agent lock: %w", err)
		}
		if ok {
			return l.releaseFunc(key, token), nil
		}

		select {
		case <-time.After(l.retryInterval):
		case <-ctx.Done():
			return nil, shared.ErrDispatchBusy
		case <-deadline.C:
			return nil, shared.ErrDispatchBusy
		}
	}
}

// releaseFunc returns the idempotent release closure for an acquired lease.
// Release runs on a background context: the request context is often
// already cancelled by the time the deferred release fires.
func (l *RedisAgentLock) releaseFunc(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			releaseScript.Run(ctx, l.client, []string{key}, token)
		})
	}
}

// Close releases the underlying Redis client.
func (l *RedisAgentLock) Close() error {
	return l.client.Close()
}

// Ensure RedisAgentLock implements AgentLockManager
var _ dispatch.AgentLockManager = (*RedisAgentLock)(nil)
