package cache

import (
	"testing"
	"time"
)

func TestTTL_SetGet(t *testing.T) {
	c := NewTTL[string](time.Minute)
	c.Set("us", "reg_us")

	got, ok := c.Get("us")
	if !ok || got != "reg_us" {
		t.Fatalf("expected hit with reg_us, got %q ok=%v", got, ok)
	}
	if _, ok := c.Get("de"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestTTL_Expiry(t *testing.T) {
	c := NewTTL[int](time.Minute)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("k", 42)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Fatalf("expected expired entry to be dropped, len=%d", c.Len())
	}
}

func TestTTL_ZeroTTLNeverExpires(t *testing.T) {
	c := NewTTL[int](0)
	current := time.Unix(1000, 0)
	c.now = func() time.Time { return current }

	c.Set("k", 1)
	current = current.Add(24 * time.Hour)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("zero TTL entry should not expire")
	}
}

func TestTTL_InvalidateAndFlush(t *testing.T) {
	c := NewTTL[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected a to be invalidated")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("expected b to survive")
	}

	c.Flush()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after flush, len=%d", c.Len())
	}
}
