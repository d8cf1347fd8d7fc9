package core

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func testSession(id string) *Session {
	return &Session{ID: id, UserID: "user-" + id, ExpiresAt: time.Now().Add(time.Hour)}
}

// Requirement: the cache returns what was stored until the TTL passes.
func TestInMemoryCache_GetSet(t *testing.T) {
	tests := []struct {
		name    string
		ttl     time.Duration
		wait    time.Duration
		key     string
		lookup  string
		wantErr error
	}{
		{name: "hit", ttl: time.Minute, key: "h1", lookup: "h1"},
		{name: "unknown key", ttl: time.Minute, key: "h1", lookup: "h2", wantErr: ErrCacheNotFound},
		{name: "expired entry", ttl: 10 * time.Millisecond, wait: 30 * time.Millisecond, key: "h1", lookup: "h1", wantErr: ErrCacheNotFound},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			c := NewInMemoryCache(CacheConfig{TTL: test.ttl, MaxSize: 10})
			if err := c.Set(test.key, testSession(test.key)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			time.Sleep(test.wait)

			// Act
			got, err := c.Get(test.lookup)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Get() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr == nil && got.ID != test.key {
				t.Errorf("Get() = %s, want %s", got.ID, test.key)
			}
			if test.wait > 0 && c.Len() != 0 {
				t.Error("expired entry should be dropped on read")
			}
		})
	}
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewInMemoryCache(CacheConfig{})
	for i := 0; i < 3; i++ {
		_ = c.Set(fmt.Sprintf("h%d", i), testSession(fmt.Sprint(i)))
	}

	if err := c.Delete("h0"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := c.Delete("missing"); err != nil {
		t.Errorf("Delete() of unknown key error = %v", err)
	}
	if _, err := c.Get("h0"); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() after Delete() error = %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Clear() = %d, want 0", c.Len())
	}
}

// Requirement: the cache never grows past MaxSize and replacing a key
// does not evict.
func TestInMemoryCache_MaxSize(t *testing.T) {
	c := NewInMemoryCache(CacheConfig{TTL: time.Minute, MaxSize: 2})
	_ = c.Set("a", testSession("a"))
	_ = c.Set("b", testSession("b"))
	_ = c.Set("b", testSession("b2"))

	if s := c.Stats(); s.Evictions != 0 || s.Size != 2 {
		t.Fatalf("after replace: evictions = %d size = %d, want 0/2", s.Evictions, s.Size)
	}

	_ = c.Set("c", testSession("c"))

	s := c.Stats()
	if s.Size != 2 || s.Evictions != 1 {
		t.Errorf("after overflow: size = %d evictions = %d, want 2/1", s.Size, s.Evictions)
	}
	if got, err := c.Get("c"); err != nil || got.ID != "c" {
		t.Errorf("newest entry missing: %v", err)
	}
}

func TestInMemoryCache_Stats(t *testing.T) {
	c := NewInMemoryCache(CacheConfig{TTL: time.Minute})
	_ = c.Set("a", testSession("a"))
	_, _ = c.Get("a")
	_, _ = c.Get("a")
	_, _ = c.Get("zzz")
	_ = c.Delete("a")

	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 || s.Sets != 1 || s.Deletes != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.TTL != time.Minute {
		t.Errorf("TTL = %v, want 1m", s.TTL)
	}
}

func TestInMemoryCache_Concurrent(t *testing.T) {
	c := NewInMemoryCache(CacheConfig{TTL: time.Minute, MaxSize: 50})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("w%d-%d", w, i%20)
				_ = c.Set(key, testSession(key))
				_, _ = c.Get(key)
				if i%3 == 0 {
					_ = c.Delete(key)
				}
			}
		}(w)
	}
	wg.Wait()

	if c.Len() > 50 {
		t.Errorf("Len() = %d, exceeds max size 50", c.Len())
	}
}
