package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisKV(t *testing.T) *Redis {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedis(rdb, "test")
}

func TestRedisRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := newRedisKV(t)

	if _, ok, err := kv.Get(ctx, KeyAccessToken); err != nil || ok {
		t.Fatalf("missing key should read as absent, got ok=%v err=%v", ok, err)
	}

	if err := kv.Set(ctx, KeyAccessToken, "T1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if value, ok, err := kv.Get(ctx, KeyAccessToken); err != nil || !ok || value != "T1" {
		t.Fatalf("Get after Set: %q %v %v", value, ok, err)
	}

	if err := kv.Delete(ctx, KeyAccessToken); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, KeyAccessToken); ok {
		t.Fatal("key survived Delete")
	}
}

func TestRedisPrefixIsolation(t *testing.T) {
	ctx := context.Background()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	a := NewRedis(rdb, "alpha")
	b := NewRedis(rdb, "beta")

	if err := a.Set(ctx, KeyUserData, "alice"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := b.Get(ctx, KeyUserData); ok {
		t.Fatal("prefixes are not isolated")
	}
}
