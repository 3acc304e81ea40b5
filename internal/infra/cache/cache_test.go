package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := NewMemory[[]string](time.Minute)

	if _, ok := c.Get("ranking"); ok {
		t.Error("Expected a miss on an empty cache")
	}

	c.Set("ranking", []string{"alan", "ada"})
	got, ok := c.Get("ranking")
	if !ok || len(got) != 2 || got[0] != "alan" {
		t.Errorf("Expected the cached value back, got %v (hit=%v)", got, ok)
	}
}

func TestEntriesExpire(t *testing.T) {
	c := NewMemory[int](10 * time.Millisecond)
	c.Set("n", 42)

	if _, ok := c.Get("n"); !ok {
		t.Fatal("Expected a hit before the TTL")
	}

	time.Sleep(25 * time.Millisecond)
	if _, ok := c.Get("n"); ok {
		t.Error("Expected the entry to expire after the TTL")
	}
}

func TestInvalidate(t *testing.T) {
	c := NewMemory[int](time.Minute)
	c.Set("n", 1)
	c.Invalidate("n")

	if _, ok := c.Get("n"); ok {
		t.Error("Expected an invalidated entry to miss")
	}
}
