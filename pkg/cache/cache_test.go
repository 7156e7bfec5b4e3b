package cache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()
	c.Set("deposit:1", "PENDING", time.Minute)

	got, ok := c.Get("deposit:1")
	if !ok {
		t.Fatal("expected key to be present")
	}
	if got != "PENDING" {
		t.Fatalf("expected PENDING, got %v", got)
	}
}

func TestExpiry(t *testing.T) {
	c := New()
	c.Set("deposit:2", "DEPOSITED", time.Nanosecond)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("deposit:2"); ok {
		t.Fatal("expected expired entry to be absent")
	}
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := New()
	c.Set("deposit:3", "RELEASED", 0)

	if _, ok := c.Get("deposit:3"); !ok {
		t.Fatal("expected zero-ttl entry to persist")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New()
	c.Set("deposit:1", 1, time.Minute)
	c.Set("deposit:2", 2, time.Minute)
	c.Set("contract:1", 3, time.Minute)

	c.InvalidatePrefix("deposit:")

	if _, ok := c.Get("deposit:1"); ok {
		t.Fatal("expected deposit:1 to be invalidated")
	}
	if _, ok := c.Get("contract:1"); !ok {
		t.Fatal("expected contract:1 to survive")
	}
}
