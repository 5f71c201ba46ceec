package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/logging"
	"github.com/lborres/quill/pkg/crypto"
)

func newTestLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestAuthService(storage *FakeStorage) *AuthService {
	sm := NewSessionManager(SessionConfig{TTL: 24 * time.Hour}, storage, nil)
	return NewAuthService(storage, crypto.NewArgon2(), sm, newTestLogger())
}

// Requirement: Register creates exactly one account per unique email and
// display name, and returns a principal matching the input.
func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		setup   func(*FakeStorage)
		wantErr error
	}{
		{
			name:  "creates account for valid input",
			input: RegisterInput{Email: "alice@example.com", Password: "SecurePass123!", DisplayName: "Alice"},
		},
		{
			name:    "rejects empty email",
			input:   RegisterInput{Email: "", Password: "SecurePass123!", DisplayName: "Alice"},
			wantErr: core.ErrEmailRequired,
		},
		{
			name:    "rejects malformed email",
			input:   RegisterInput{Email: "not-an-email", Password: "SecurePass123!", DisplayName: "Alice"},
			wantErr: core.ErrInvalidEmail,
		},
		{
			name:    "rejects short password",
			input:   RegisterInput{Email: "alice@example.com", Password: "short", DisplayName: "Alice"},
			wantErr: core.ErrPasswordTooShort,
		},
		{
			name:    "rejects missing display name",
			input:   RegisterInput{Email: "alice@example.com", Password: "SecurePass123!", DisplayName: "  "},
			wantErr: core.ErrDisplayNameRequired,
		},
		{
			name:  "rejects duplicate email",
			input: RegisterInput{Email: "alice@example.com", Password: "SecurePass123!", DisplayName: "Alice2"},
			setup: func(storage *FakeStorage) {
				_ = storage.CreateAccount(context.Background(), &core.Account{
					Email: "alice@example.com", DisplayName: "Alice",
				})
			},
			wantErr: core.ErrDuplicateIdentity,
		},
		{
			name:  "rejects duplicate display name",
			input: RegisterInput{Email: "alice2@example.com", Password: "SecurePass123!", DisplayName: "Alice"},
			setup: func(storage *FakeStorage) {
				_ = storage.CreateAccount(context.Background(), &core.Account{
					Email: "alice@example.com", DisplayName: "Alice",
				})
			},
			wantErr: core.ErrDuplicateIdentity,
		},
		{
			name:  "email comparison ignores case",
			input: RegisterInput{Email: "ALICE@Example.COM", Password: "SecurePass123!", DisplayName: "Alice2"},
			setup: func(storage *FakeStorage) {
				_ = storage.CreateAccount(context.Background(), &core.Account{
					Email: "alice@example.com", DisplayName: "Alice",
				})
			},
			wantErr: core.ErrDuplicateIdentity,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			storage := NewFakeStorage()
			if test.setup != nil {
				test.setup(storage)
			}
			service := newTestAuthService(storage)

			// Act
			principal, err := service.Register(context.Background(), test.input)

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Register() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if principal.Email != "alice@example.com" {
				t.Errorf("principal email = %q, want %q", principal.Email, "alice@example.com")
			}
			if principal.ID == "" {
				t.Error("principal should have an id")
			}
		})
	}
}

// Requirement: duplicate registrations, sequential or concurrent, leave
// exactly one stored account.
func TestAuthService_Register_ExactlyOneAccount(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	input := RegisterInput{Email: "bob@example.com", Password: "SecurePass123!", DisplayName: "Bob"}

	// Act
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.Register(context.Background(), input)
		}(i)
	}
	wg.Wait()

	// Assert
	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, core.ErrDuplicateIdentity):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("expected exactly 1 successful registration, got %d", ok)
	}
	if dup != len(errs)-1 {
		t.Errorf("expected %d duplicate failures, got %d", len(errs)-1, dup)
	}
	if storage.AccountCount() != 1 {
		t.Errorf("expected exactly 1 stored account, got %d", storage.AccountCount())
	}
}

// Requirement: login succeeds for registered credentials, and unknown
// emails are indistinguishable from wrong passwords.
func TestAuthService_Login(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	ctx := context.Background()

	if _, err := service.Register(ctx, RegisterInput{
		Email: "alice@example.com", Password: "SecurePass123!", DisplayName: "Alice",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "correct credentials", email: "alice@example.com", password: "SecurePass123!"},
		{name: "case-insensitive email", email: "Alice@Example.Com", password: "SecurePass123!"},
		{name: "wrong password", email: "alice@example.com", password: "wrong-password", wantErr: core.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", password: "SecurePass123!", wantErr: core.ErrInvalidCredentials},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Act
			principal, err := service.Login(ctx, test.email, test.password)

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if principal.Email != "alice@example.com" {
				t.Errorf("principal email = %q, want alice@example.com", principal.Email)
			}
		})
	}
}

// Requirement: unknown email and wrong password surface the identical
// error value, so callers cannot probe account existence.
func TestAuthService_Login_FailuresIndistinguishable(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	ctx := context.Background()

	_, _ = service.Register(ctx, RegisterInput{
		Email: "alice@example.com", Password: "SecurePass123!", DisplayName: "Alice",
	})

	// Act
	_, errWrongPassword := service.Login(ctx, "alice@example.com", "wrong")
	_, errUnknownEmail := service.Login(ctx, "ghost@example.com", "whatever")

	// Assert
	if !errors.Is(errWrongPassword, core.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", errWrongPassword)
	}
	if !errors.Is(errUnknownEmail, core.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", errUnknownEmail)
	}
	if errWrongPassword.Error() != errUnknownEmail.Error() {
		t.Error("failure messages must be identical for both cases")
	}
}

// Requirement: federation creates exactly one account with local auth
// disabled, and resolves idempotently on later logins.
func TestAuthService_Federate(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	ctx := context.Background()

	// Act - first sight creates
	first, err := service.Federate(ctx, core.Profile{Email: "carol@example.com", DisplayName: "Carol"})
	if err != nil {
		t.Fatalf("Federate() error = %v", err)
	}

	// Assert - local path can never authenticate a federated account
	if _, err := service.Login(ctx, "carol@example.com", "anything"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Login() on federated account error = %v, want ErrInvalidCredentials", err)
	}
	account, err := storage.GetAccountByEmail(ctx, "carol@example.com")
	if err != nil {
		t.Fatalf("GetAccountByEmail() error = %v", err)
	}
	if account.PasswordHash != nil {
		t.Error("federated account must carry the no-local-password sentinel")
	}

	// Act - second sight reuses
	second, err := service.Federate(ctx, core.Profile{Email: "carol@example.com", DisplayName: "Carol"})
	if err != nil {
		t.Fatalf("Federate() second call error = %v", err)
	}

	// Assert
	if first.ID != second.ID {
		t.Errorf("Federate() must be idempotent: got ids %q and %q", first.ID, second.ID)
	}
	if storage.AccountCount() != 1 {
		t.Errorf("expected exactly 1 account, got %d", storage.AccountCount())
	}
}

func TestAuthService_Federate_MissingEmail(t *testing.T) {
	service := newTestAuthService(NewFakeStorage())

	_, err := service.Federate(context.Background(), core.Profile{DisplayName: "NoEmail"})
	if !errors.Is(err, core.ErrEmailMissing) {
		t.Fatalf("Federate() error = %v, want ErrEmailMissing", err)
	}
}

// Requirement: a taken display name does not block federation; the new
// account lands under a suffixed name.
func TestAuthService_Federate_DisplayNameCollision(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	ctx := context.Background()

	_, _ = service.Register(ctx, RegisterInput{
		Email: "dan@example.com", Password: "SecurePass123!", DisplayName: "Dan",
	})

	// Act - same display name, different email
	principal, err := service.Federate(ctx, core.Profile{Email: "dan@other.org", DisplayName: "Dan"})

	// Assert
	if err != nil {
		t.Fatalf("Federate() error = %v", err)
	}
	if principal.DisplayName == "Dan" {
		t.Error("colliding display name should have been suffixed")
	}
	if storage.AccountCount() != 2 {
		t.Errorf("expected 2 accounts, got %d", storage.AccountCount())
	}
}

// Scenario from the project requirements: local registration, duplicate
// rejection, login outcomes, and federation reusing the same account.
func TestAuthService_RegistrationAndFederationScenario(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	ctx := context.Background()

	// Register ("a@x.com","pw1-longer","Alice") succeeds.
	registered, err := service.Register(ctx, RegisterInput{
		Email: "a@x.com", Password: "pw1-longer", DisplayName: "Alice",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if registered.Email != "a@x.com" {
		t.Errorf("principal email = %q, want a@x.com", registered.Email)
	}

	// Same email, different display name fails as duplicate.
	if _, err := service.Register(ctx, RegisterInput{
		Email: "a@x.com", Password: "pw2-longer", DisplayName: "NotAlice",
	}); !errors.Is(err, core.ErrDuplicateIdentity) {
		t.Errorf("second Register() error = %v, want ErrDuplicateIdentity", err)
	}

	// Correct password logs in.
	if _, err := service.Login(ctx, "a@x.com", "pw1-longer"); err != nil {
		t.Errorf("Login() error = %v", err)
	}

	// Wrong password fails generically.
	if _, err := service.Login(ctx, "a@x.com", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}

	// Federation with the same email reuses the registered account.
	federated, err := service.Federate(ctx, core.Profile{Email: "a@x.com"})
	if err != nil {
		t.Fatalf("Federate() error = %v", err)
	}
	if federated.ID != registered.ID {
		t.Errorf("Federate() id = %q, want registered id %q", federated.ID, registered.ID)
	}
	if storage.AccountCount() != 1 {
		t.Errorf("expected exactly 1 account, got %d", storage.AccountCount())
	}
}

// Requirement: CurrentPrincipal resolves a live session to its account
// and reports destroyed sessions as anonymous.
func TestAuthService_CurrentPrincipal(t *testing.T) {
	// Arrange
	storage := NewFakeStorage()
	service := newTestAuthService(storage)
	ctx := context.Background()

	principal, err := service.Register(ctx, RegisterInput{
		Email: "eve@example.com", Password: "SecurePass123!", DisplayName: "Eve",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	created, err := service.Sessions().Create(ctx, principal.ID, "127.0.0.1", "test-agent")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Act / Assert - live session resolves
	got, err := service.CurrentPrincipal(ctx, created.Token)
	if err != nil {
		t.Fatalf("CurrentPrincipal() error = %v", err)
	}
	if got.ID != principal.ID || got.Email != "eve@example.com" {
		t.Errorf("CurrentPrincipal() = %+v, want account %q", got, principal.ID)
	}

	// Act / Assert - after logout the session is anonymous
	if err := service.Sessions().Destroy(ctx, created.Token); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, err := service.CurrentPrincipal(ctx, created.Token); err == nil {
		t.Error("CurrentPrincipal() after Destroy() should fail")
	}
}
