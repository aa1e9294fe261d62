package utils

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis instance that holds the shared in-flight cap.
type RedisConfig struct {
	Addr     string
	PoolSize int
	// Timeout applies to dialing, each read/write and the startup ping.
	Timeout time.Duration
}

const (
	defaultRedisPoolSize = 8
	defaultRedisTimeout  = 2 * time.Second
)

// OpenRedis connects to cfg.Addr and checks it with PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("redis: REDIS_ADDR is empty")
	}
	timeout := durationOr(cfg.Timeout, defaultRedisTimeout)

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		PoolSize:     positiveOr(cfg.PoolSize, defaultRedisPoolSize),
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Leases live in a sorted set scored by expiry (unix ms). Expired leases are
// dropped before counting, so a replica that dies mid-request frees its slot
// once the lease runs out.
var leaseAcquireScript = redis.NewScript(`
-- KEYS[1] lease set; ARGV: now_ms, ttl_ms, limit, lease id
local now = tonumber(ARGV[1])
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now)
if redis.call('ZCARD', KEYS[1]) >= tonumber(ARGV[3]) then
  return 0
end
redis.call('ZADD', KEYS[1], now + tonumber(ARGV[2]), ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

var leaseReleaseScript = redis.NewScript(`
return redis.call('ZREM', KEYS[1], ARGV[1])
`)

// InflightCap bounds how many upstream-bound requests all gateway replicas run at once.
type InflightCap struct {
	rdb   redis.Scripter
	key   string
	limit int
	ttl   time.Duration
	now   func() time.Time
}

const DefaultInflightKey = "webex-cdr:upstream:inflight"

// NewInflightCap builds a cap of limit concurrent leases under key.
// ttl is the longest a single request may hold a lease.
func NewInflightCap(rdb redis.Scripter, key string, limit int, ttl time.Duration) (*InflightCap, error) {
	if rdb == nil {
		return nil, errors.New("redis client is nil")
	}
	if key == "" {
		key = DefaultInflightKey
	}
	if limit <= 0 {
		return nil, fmt.Errorf("inflight limit must be > 0, got %d", limit)
	}
	if ttl <= 0 {
		return nil, errors.New("inflight lease ttl must be > 0")
	}
	return &InflightCap{rdb: rdb, key: key, limit: limit, ttl: ttl, now: time.Now}, nil
}

// Acquire takes a lease. When ok is true the caller must call release exactly once.
func (c *InflightCap) Acquire(ctx context.Context) (release func(), ok bool, err error) {
	lease := uuid.NewString()
	res, err := leaseAcquireScript.Run(ctx, c.rdb, []string{c.key},
		c.now().UnixMilli(), c.ttl.Milliseconds(), c.limit, lease).Int()
	if err != nil {
		return nil, false, fmt.Errorf("inflight acquire: %w", err)
	}
	if res != 1 {
		return nil, false, nil
	}
	return func() {
		// The request context may already be cancelled; release on a fresh one.
		rctx, cancel := context.WithTimeout(context.Background(), defaultRedisTimeout)
		defer cancel()
		_, _ = leaseReleaseScript.Run(rctx, c.rdb, []string{c.key}, lease).Result()
	}, true, nil
}
