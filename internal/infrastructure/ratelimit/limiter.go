package ratelimit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Decision captures limiter response metadata.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Limiter defines common interface.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// TokenKey derives a limiter key from a bearer token without keeping the
// token itself in memory or in redis.
func TokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:8])
}

// MemoryLimiter is a token bucket per key, refilled at limit per minute and
// holding at most limit+burst tokens.
type MemoryLimiter struct {
	limit int
	burst int
	now   func() time.Time

	mu    sync.Mutex
	store map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewMemoryLimiter builds RAM limiter.
func NewMemoryLimiter(limit, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		limit: limit,
		burst: burst,
		now:   time.Now,
		store: make(map[string]*bucket),
	}
}

// Allow implements limiter.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	capacity := float64(m.limit + m.burst)
	b, ok := m.store[key]
	if !ok {
		b = &bucket{tokens: capacity, last: now}
		m.store[key] = b
	}
	elapsed := now.Sub(b.last).Minutes()
	b.tokens = min(capacity, b.tokens+elapsed*float64(m.limit))
	b.last = now
	reset := now.Add(time.Minute)
	if b.tokens < 1 {
		return Decision{Allowed: false, Limit: m.limit, Remaining: 0, Reset: reset}, nil
	}
	b.tokens--
	return Decision{Allowed: true, Limit: m.limit, Remaining: int(b.tokens), Reset: reset}, nil
}

// RedisLimiter is a fixed one-minute window shared by every proxy instance.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	prefix string
}

// NewRedisLimiter builds redis limiter.
func NewRedisLimiter(client *redis.Client, limit int, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, prefix: prefix}
}

// Allow implements limiter.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	window := now.Truncate(time.Minute)
	redisKey := r.prefix + ":" + key + ":" + window.Format("200601021504")

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, err
	}

	count := int(incr.Val())
	reset := window.Add(time.Minute)
	if count > r.limit {
		return Decision{Allowed: false, Limit: r.limit, Remaining: 0, Reset: reset}, nil
	}
	return Decision{Allowed: true, Limit: r.limit, Remaining: r.limit - count, Reset: reset}, nil
}
