package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies.

// ============================================
// STORAGE PORTS (database operations)
// ============================================

// AccountStorage defines account-related database operations.
//
// Implementations must enforce uniqueness of email and display name at
// the storage level and translate constraint violations into
// ErrDuplicateIdentity, so that two concurrent inserts for the same
// identity can never both succeed.
type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error

	GetAccountByID(ctx context.Context, id string) (*Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*Account, error)
	GetAccountByDisplayName(ctx context.Context, name string) (*Account, error)
}

// SessionStorage defines session-related database operations.
type SessionStorage interface {
	CreateSession(ctx context.Context, s *Session) error

	GetSessionByHash(ctx context.Context, tokenHash string) (*Session, error)

	DeleteSessionByHash(ctx context.Context, tokenHash string) error
	DeleteAccountSessions(ctx context.Context, accountID string) error
	DeleteExpiredSessions(ctx context.Context) (int64, error)
}

// PostStorage defines the post collaborator operations. The auth core
// never touches posts; handlers reach them only after the route gate.
type PostStorage interface {
	CreatePost(ctx context.Context, p *Post) error
	GetPostByID(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context) ([]*Post, error)
	UpdatePost(ctx context.Context, p *Post) error
	DeletePost(ctx context.Context, id string) error
}

// Storage bundles all ports implemented by a database adapter.
type Storage interface {
	AccountStorage
	SessionStorage
	PostStorage
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations, keyed by token hash.
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking.
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior.
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior, intended for
// diagnostics.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}
