package core

import (
	"testing"
	"time"
)

func TestInMemoryCacheGetSetShouldStoreAndRetrieve(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 500,
	})

	session := &Session{
		ID:        "session123",
		AccountID: "account456",
		TokenHash: "hash789",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		CreatedAt: time.Now(),
	}

	// Test Set
	err := cache.Set("hash789", session)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Test Get
	retrieved, err := cache.Get("hash789")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if retrieved.ID != session.ID {
		t.Errorf("Expected ID %s, got %s", session.ID, retrieved.ID)
	}

	if retrieved.AccountID != session.AccountID {
		t.Errorf("Expected AccountID %s, got %s", session.AccountID, retrieved.AccountID)
	}
}

func TestInMemoryCacheGetNonExistentShouldReturnErrCacheNotFound(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 500,
	})

	_, err := cache.Get("nonexistent")
	if err != ErrCacheNotFound {
		t.Fatalf("expected ErrCacheNotFound, got %v", err)
	}
}

func TestInMemoryCacheExpiredEntryShouldMiss(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{
		TTL:     1 * time.Millisecond,
		MaxSize: 500,
	})

	session := &Session{ID: "s1", AccountID: "a1", TokenHash: "h1"}
	if err := cache.Set("h1", session); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := cache.Get("h1"); err != ErrCacheNotFound {
		t.Fatalf("expected ErrCacheNotFound after TTL, got %v", err)
	}
}

func TestInMemoryCacheDeleteShouldRemoveEntry(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 500,
	})

	session := &Session{ID: "s1", AccountID: "a1", TokenHash: "h1"}
	if err := cache.Set("h1", session); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := cache.Delete("h1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := cache.Get("h1"); err != ErrCacheNotFound {
		t.Fatalf("expected ErrCacheNotFound after delete, got %v", err)
	}
}

func TestInMemoryCacheEvictionWhenFull(t *testing.T) {
	cache := NewInMemoryCache(CacheConfig{
		TTL:     5 * time.Minute,
		MaxSize: 2,
	})

	_ = cache.Set("h1", &Session{ID: "s1"})
	_ = cache.Set("h2", &Session{ID: "s2"})
	_ = cache.Set("h3", &Session{ID: "s3"})

	if got := cache.Len(); got != 2 {
		t.Errorf("expected cache to hold 2 entries after eviction, got %d", got)
	}

	stats := cache.Stats()
	if stats.Evictions != 1 {
		t.Errorf("expected 1 eviction, got %d", stats.Evictions)
	}
}
