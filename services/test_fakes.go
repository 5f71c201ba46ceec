package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lborres/quill/core"
)

// FakeStorage is a test-only in-memory implementation of core.Storage.
// It enforces the same uniqueness rules as the real adapter and
// exposes error fields for behavior injection.
type FakeStorage struct {
	mu       sync.RWMutex
	accounts map[string]*core.Account // key: account id
	sessions map[string]*core.Session // key: token hash
	posts    map[string]*core.Post    // key: post id
	nextID   int

	createAccountErr error
	getAccountErr    error
	createSessionErr error
	getSessionErr    error
	deleteSessionErr error
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		accounts: make(map[string]*core.Account),
		sessions: make(map[string]*core.Session),
		posts:    make(map[string]*core.Post),
	}
}

func (f *FakeStorage) genID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

// ---- AccountStorage ----

func (f *FakeStorage) CreateAccount(ctx context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createAccountErr != nil {
		return f.createAccountErr
	}

	// Mirror the storage-level unique constraints.
	for _, existing := range f.accounts {
		if existing.Email == a.Email || existing.DisplayName == a.DisplayName {
			return core.ErrDuplicateIdentity
		}
	}

	if a.ID == "" {
		a.ID = f.genID("acct")
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	clone := *a
	f.accounts[a.ID] = &clone
	return nil
}

func (f *FakeStorage) GetAccountByID(ctx context.Context, id string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getAccountErr != nil {
		return nil, f.getAccountErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (f *FakeStorage) GetAccountByEmail(ctx context.Context, email string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getAccountErr != nil {
		return nil, f.getAccountErr
	}
	for _, a := range f.accounts {
		if a.Email == email {
			clone := *a
			return &clone, nil
		}
	}
	return nil, core.ErrAccountNotFound
}

func (f *FakeStorage) GetAccountByDisplayName(ctx context.Context, name string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getAccountErr != nil {
		return nil, f.getAccountErr
	}
	for _, a := range f.accounts {
		if a.DisplayName == name {
			clone := *a
			return &clone, nil
		}
	}
	return nil, core.ErrAccountNotFound
}

// ---- SessionStorage ----

func (f *FakeStorage) CreateSession(ctx context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createSessionErr != nil {
		return f.createSessionErr
	}
	f.sessions[s.TokenHash] = s
	return nil
}

func (f *FakeStorage) GetSessionByHash(ctx context.Context, tokenHash string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	s, ok := f.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return s, nil
}

func (f *FakeStorage) DeleteSessionByHash(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteSessionErr != nil {
		return f.deleteSessionErr
	}
	if _, ok := f.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(f.sessions, tokenHash)
	return nil
}

func (f *FakeStorage) DeleteAccountSessions(ctx context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, s := range f.sessions {
		if s.AccountID == accountID {
			delete(f.sessions, k)
		}
	}
	return nil
}

func (f *FakeStorage) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	now := time.Now()
	for k, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, k)
			n++
		}
	}
	return n, nil
}

// ---- PostStorage ----

func (f *FakeStorage) CreatePost(ctx context.Context, p *core.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == "" {
		p.ID = f.genID("post")
	}
	clone := *p
	f.posts[p.ID] = &clone
	return nil
}

func (f *FakeStorage) GetPostByID(ctx context.Context, id string) (*core.Post, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	p, ok := f.posts[id]
	if !ok {
		return nil, core.ErrPostNotFound
	}
	clone := *p
	return &clone, nil
}

func (f *FakeStorage) ListPosts(ctx context.Context) ([]*core.Post, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	posts := make([]*core.Post, 0, len(f.posts))
	for _, p := range f.posts {
		clone := *p
		posts = append(posts, &clone)
	}
	return posts, nil
}

func (f *FakeStorage) UpdatePost(ctx context.Context, p *core.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[p.ID]; !ok {
		return core.ErrPostNotFound
	}
	clone := *p
	f.posts[p.ID] = &clone
	return nil
}

func (f *FakeStorage) DeletePost(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return core.ErrPostNotFound
	}
	delete(f.posts, id)
	return nil
}

// AccountCount reports how many accounts exist; used by tests
// asserting the uniqueness invariants.
func (f *FakeStorage) AccountCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.accounts)
}

var _ core.Storage = (*FakeStorage)(nil)
