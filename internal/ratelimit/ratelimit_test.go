package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}

func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestLimiter_AllowsBurstThenRejects(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := New(rdb, "login", 1, 3)
	clock, _ := fixedClock(time.Unix(1_700_000_000, 0))
	l.now = clock
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}

	ok, wait, err := l.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("expected request beyond burst to be rejected")
	}
	if wait != time.Second {
		t.Fatalf("expected 1s wait, got %v", wait)
	}
}

func TestLimiter_Refills(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := New(rdb, "login", 2, 1)
	clock, advance := fixedClock(time.Unix(1_700_000_000, 0))
	l.now = clock
	ctx := context.Background()

	if ok, _, _ := l.Allow(ctx, "k"); !ok {
		t.Fatal("first request should pass")
	}
	if ok, _, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("second request should be limited")
	}

	advance(500 * time.Millisecond)
	if ok, _, err := l.Allow(ctx, "k"); err != nil || !ok {
		t.Fatalf("expected refill after 500ms, ok=%v err=%v", ok, err)
	}
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	_, rdb := newMiniRedis(t)
	l := New(rdb, "login", 1, 1)
	ctx := context.Background()

	if ok, _, _ := l.Allow(ctx, "a"); !ok {
		t.Fatal("a should pass")
	}
	if ok, _, _ := l.Allow(ctx, "b"); !ok {
		t.Fatal("b has its own bucket")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	ctx := context.Background()

	var nilLimiter *Limiter
	if ok, _, err := nilLimiter.Allow(ctx, "k"); !ok || err != nil {
		t.Fatal("nil limiter should allow")
	}
	if ok, _, err := New(nil, "login", 1, 1).Allow(ctx, "k"); !ok || err != nil {
		t.Fatal("limiter without redis should allow")
	}

	_, rdb := newMiniRedis(t)
	zero := New(rdb, "login", 0, 0)
	for i := 0; i < 10; i++ {
		if ok, _, _ := zero.Allow(ctx, "k"); !ok {
			t.Fatal("zero rate disables limiting")
		}
	}
}

func TestLimiter_RedisDown(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	l := New(rdb, "login", 1, 1)
	mr.Close()

	if _, _, err := l.Allow(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is unreachable")
	}
}
