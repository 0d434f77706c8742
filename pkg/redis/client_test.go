package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verdantlane/storefront-gateway/pkg/config"
)

type fakeStore struct {
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	f.expires[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.values[key] = value.(string)
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
		delete(f.counts, key)
	}
	return redis.NewIntResult(removed, nil)
}

func newTestClient() (*Client, *fakeStore) {
	store := newFakeStore()
	return &Client{store: store}, store
}

func TestKeyBuilders(t *testing.T) {
	c, _ := newTestClient()

	if got := c.ProxyCacheKey("get", "/store/products?limit=12"); got != "sg:proxy_cache:GET:/store/products?limit=12" {
		t.Fatalf("unexpected proxy cache key %q", got)
	}
	if got := c.RateLimitKey("proxy:ip:1.2.3.4"); got != "sg:rate_limit:proxy:ip:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := c.CartLockKey("sess-1"); got != "sg:lock:cart_create:sess-1" {
		t.Fatalf("unexpected cart lock key %q", got)
	}
}

func TestFixedWindowAllow(t *testing.T) {
	c, store := newTestClient()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, count, err := c.FixedWindowAllow(ctx, "proxy:ip:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if count != int64(i+1) {
			t.Fatalf("expected count %d, got %d", i+1, count)
		}
	}

	allowed, count, err := c.FixedWindowAllow(ctx, "proxy:ip:test", 3, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatal("fourth request should be rejected")
	}
	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}
	if store.expires[c.RateLimitKey("proxy:ip:test")] != time.Minute {
		t.Fatal("expected window TTL applied on first increment")
	}
}

func TestSetNX_LockSemantics(t *testing.T) {
	c, _ := newTestClient()
	ctx := context.Background()
	key := c.CartLockKey("sess-9")

	ok, err := c.SetNX(ctx, key, "1", 5*time.Second)
	if err != nil || !ok {
		t.Fatalf("expected first lock to succeed, ok=%v err=%v", ok, err)
	}
	ok, err = c.SetNX(ctx, key, "1", 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected second lock attempt to fail")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "localhost:6379",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 7 || opts.DialTimeout != 2*time.Second {
		t.Fatalf("options not applied: %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{URL: "redis://:secret@example.com:6380/2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "example.com:6380" || opts.DB != 2 {
		t.Fatalf("url not parsed: %+v", opts)
	}
}
