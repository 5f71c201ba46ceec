package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
)

// SessionConfig governs session lifetime. The TTL is fixed from
// creation; it does not slide on activity.
type SessionConfig struct {
	TTL time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TTL: 24 * time.Hour,
	}
}

// SessionManager owns the Anonymous -> Authenticated -> Anonymous
// lifecycle. Every successful login mints a fresh session id and
// token, so an attacker-fixated token never survives authentication.
type SessionManager struct {
	config  SessionConfig
	storage core.SessionStorage
	cache   core.Cache // optional, can be nil if caching is disabled
	nanoid  *crypto.NanoIDGenerator
}

type CreateSessionResult struct {
	Session *core.Session `json:"session"`
	Token   string        `json:"token"`
}

func NewSessionManager(config SessionConfig, storage core.SessionStorage, cache core.Cache) *SessionManager {
	if config.TTL <= 0 {
		config.TTL = DefaultSessionConfig().TTL
	}
	return &SessionManager{config: config, storage: storage, cache: cache, nanoid: crypto.DefaultNanoID}
}

// Create mints a new session bound to the given account.
func (sm *SessionManager) Create(ctx context.Context, accountID, ip, userAgent string) (*CreateSessionResult, error) {
	pair, err := crypto.GenerateHashedToken(crypto.DefaultTokenLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	sessionID, err := sm.nanoid.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	session := &core.Session{
		ID:        sessionID,
		AccountID: accountID,
		TokenHash: pair.Hash,
		IPAddress: ip,
		UserAgent: userAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(sm.config.TTL),
	}

	if err := sm.storage.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: creating session: %v", core.ErrStorageFailure, err)
	}

	// We don't fail the request if caching fails
	if sm.cache != nil {
		_ = sm.cache.Set(pair.Hash, session)
	}

	return &CreateSessionResult{Session: session, Token: pair.Token}, nil
}

// Verify resolves a raw cookie token to a live session. Expired
// sessions are removed and reported as expired, so the caller treats
// them exactly like an anonymous request.
func (sm *SessionManager) Verify(ctx context.Context, token string) (*core.Session, error) {
	if token == "" {
		return nil, core.ErrInvalidToken
	}

	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		if session, err := sm.cache.Get(tokenHash); err == nil && session != nil {
			if !session.Expired(time.Now()) {
				return session, nil
			}
			_ = sm.cache.Delete(tokenHash)
		}
	}

	session, err := sm.storage.GetSessionByHash(ctx, tokenHash)
	if err != nil {
		return nil, core.ErrSessionNotFound
	}

	valid, err := crypto.VerifyToken(token, session.TokenHash)
	if err != nil || !valid {
		return nil, core.ErrInvalidToken
	}

	if session.Expired(time.Now()) {
		_ = sm.storage.DeleteSessionByHash(ctx, tokenHash)
		return nil, core.ErrSessionExpired
	}

	if sm.cache != nil {
		_ = sm.cache.Set(tokenHash, session)
	}

	return session, nil
}

// Destroy removes the session synchronously. A teardown failure is
// returned to the caller, never swallowed.
func (sm *SessionManager) Destroy(ctx context.Context, token string) error {
	tokenHash := crypto.HashToken(token)

	if sm.cache != nil {
		_ = sm.cache.Delete(tokenHash)
	}

	if err := sm.storage.DeleteSessionByHash(ctx, tokenHash); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DestroyAccountSessions removes every session for the account.
func (sm *SessionManager) DestroyAccountSessions(ctx context.Context, accountID string) error {
	if sm.cache != nil {
		_ = sm.cache.Clear()
	}

	return sm.storage.DeleteAccountSessions(ctx, accountID)
}

// PruneExpired deletes sessions past their TTL from storage.
func (sm *SessionManager) PruneExpired(ctx context.Context) (int64, error) {
	return sm.storage.DeleteExpiredSessions(ctx)
}
