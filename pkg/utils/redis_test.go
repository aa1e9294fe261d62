package utils

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNewInflightCap_Validates(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	if _, err := NewInflightCap(nil, "", 1, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := NewInflightCap(rdb, "", 0, time.Minute); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := NewInflightCap(rdb, "", 1, 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}

	c, err := NewInflightCap(rdb, "", 3, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.key != DefaultInflightKey {
		t.Fatalf("expected default key, got %q", c.key)
	}
}

func TestOpenRedis_RequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}

func TestAcquire_SurfacesConnectionErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	c, err := NewInflightCap(rdb, "k", 1, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	release, ok, err := c.Acquire(context.Background())
	if err == nil || ok || release != nil {
		t.Fatalf("expected connection error, got ok=%v err=%v", ok, err)
	}
}
