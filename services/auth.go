package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/logging"
	"github.com/lborres/quill/pkg/crypto"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 128

	// Attempts to place a federated account under a free display name
	// before giving up.
	maxFederateAttempts = 3
)

// AuthService implements the identity core: local registration and
// verification, and federation of provider-asserted identities.
// Both paths funnel into the same email-keyed account store.
type AuthService struct {
	store     core.AccountStorage
	passwords crypto.PasswordHandler
	sessions  *SessionManager
	log       logging.Logger
	nanoid    *crypto.NanoIDGenerator
}

func NewAuthService(store core.AccountStorage, passwords crypto.PasswordHandler, sessions *SessionManager, log logging.Logger) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		sessions:  sessions,
		log:       log,
		nanoid:    crypto.DefaultNanoID,
	}
}

// Sessions exposes the session manager bound to this service.
func (s *AuthService) Sessions() *SessionManager {
	return s.sessions
}

// RegisterInput contains the data needed to register a new account.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// Register creates a local account after both uniqueness checks pass.
//
// The pre-checks give friendly failures, but the storage-level unique
// constraints are the real guard: two concurrent registrations for the
// same identity resolve to exactly one account and one
// ErrDuplicateIdentity.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*core.Principal, error) {
	if err := validateRegister(input); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	displayName := strings.TrimSpace(input.DisplayName)

	if _, err := s.store.GetAccountByEmail(ctx, email); err == nil {
		return nil, core.ErrDuplicateIdentity
	} else if !errors.Is(err, core.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: checking email: %v", core.ErrStorageFailure, err)
	}

	if _, err := s.store.GetAccountByDisplayName(ctx, displayName); err == nil {
		return nil, core.ErrDuplicateIdentity
	} else if !errors.Is(err, core.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: checking display name: %v", core.ErrStorageFailure, err)
	}

	// A hashing failure must surface to the caller; the registration
	// never proceeds with a missing digest.
	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		s.log.Error(ctx, "password hashing failed", "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrHashingFailure, err)
	}

	account := &core.Account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: &hash,
	}

	if err := s.store.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, core.ErrDuplicateIdentity) {
			return nil, core.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("%w: creating account: %v", core.ErrStorageFailure, err)
	}

	return account.Principal(), nil
}

// Login verifies a claimed email and secret against the stored digest.
//
// An unknown email and a wrong password both come back as
// ErrInvalidCredentials so callers cannot probe which emails exist;
// the distinction survives only in the log.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.Principal, error) {
	email = normalizeEmail(email)

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			s.log.Info(ctx, "login rejected: unknown email")
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: looking up account: %v", core.ErrStorageFailure, err)
	}

	// Federated accounts carry no local digest and never match.
	if account.PasswordHash == nil {
		s.log.Info(ctx, "login rejected: local auth disabled", "account", account.ID)
		return nil, core.ErrInvalidCredentials
	}

	valid, err := s.passwords.Verify(password, *account.PasswordHash)
	if err != nil {
		s.log.Error(ctx, "password verification failed", "error", err)
		return nil, fmt.Errorf("%w: %v", core.ErrHashingFailure, err)
	}
	if !valid {
		s.log.Info(ctx, "login rejected: wrong password", "account", account.ID)
		return nil, core.ErrInvalidCredentials
	}

	return account.Principal(), nil
}

// Federate resolves a provider-asserted profile to a local account,
// creating one on first sight.
//
// Email is the sole federation key: a pre-existing account with the
// same email is reused regardless of how it was created. Created
// accounts get a nil password hash, so the local path can never
// authenticate them.
func (s *AuthService) Federate(ctx context.Context, profile core.Profile) (*core.Principal, error) {
	if strings.TrimSpace(profile.Email) == "" {
		return nil, core.ErrEmailMissing
	}
	email := normalizeEmail(profile.Email)

	account, err := s.store.GetAccountByEmail(ctx, email)
	if err == nil {
		return account.Principal(), nil
	}
	if !errors.Is(err, core.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: looking up account: %v", core.ErrStorageFailure, err)
	}

	displayName := strings.TrimSpace(profile.DisplayName)
	if displayName == "" {
		displayName = emailLocalPart(email)
	}

	// The insert may lose two races: another first-time login for the
	// same email (re-fetch the winner), or a taken display name (retry
	// under a suffixed name).
	name := displayName
	for attempt := 0; attempt < maxFederateAttempts; attempt++ {
		account := &core.Account{
			Email:       email,
			DisplayName: name,
		}
		err := s.store.CreateAccount(ctx, account)
		if err == nil {
			return account.Principal(), nil
		}
		if !errors.Is(err, core.ErrDuplicateIdentity) {
			return nil, fmt.Errorf("%w: creating account: %v", core.ErrStorageFailure, err)
		}

		if existing, err := s.store.GetAccountByEmail(ctx, email); err == nil {
			return existing.Principal(), nil
		} else if !errors.Is(err, core.ErrAccountNotFound) {
			return nil, fmt.Errorf("%w: looking up account: %v", core.ErrStorageFailure, err)
		}

		suffix, err := s.nanoid.GenerateSize(6)
		if err != nil {
			return nil, fmt.Errorf("failed to generate display name suffix: %w", err)
		}
		name = displayName + "-" + suffix
	}

	return nil, core.ErrDuplicateIdentity
}

// CurrentPrincipal resolves a raw session token to the authenticated
// principal, or reports the session as anonymous. The principal is
// re-resolved from the account store on every call; session state
// never holds secret material.
func (s *AuthService) CurrentPrincipal(ctx context.Context, token string) (*core.Principal, error) {
	session, err := s.sessions.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByID(ctx, session.AccountID)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			// Account vanished under a live session; treat as anonymous.
			_ = s.sessions.Destroy(ctx, token)
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: looking up account: %v", core.ErrStorageFailure, err)
	}

	return account.Principal(), nil
}

func validateRegister(input RegisterInput) error {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return core.ErrEmailRequired
	}
	if !strings.Contains(email, "@") {
		return core.ErrInvalidEmail
	}
	if input.Password == "" {
		return core.ErrPasswordRequired
	}
	if len(input.Password) < minPasswordLen {
		return core.ErrPasswordTooShort
	}
	if len(input.Password) > maxPasswordLen {
		return core.ErrPasswordTooLong
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return core.ErrDisplayNameRequired
	}
	return nil
}

// normalizeEmail fixes the case policy: emails compare and store
// lowercase, always.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
