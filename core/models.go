package core

import "time"

// Account is an identity record.
//
// Accounts are immutable once created: there is no update path for
// identity fields. Email and DisplayName are both unique across all
// accounts, enforced by storage-level constraints.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	// PasswordHash is nil for accounts created through federation.
	// A nil hash means local password authentication is disabled and
	// must never verify against any secret.
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the non-secret projection of an Account attached to a
// request after successful authentication. It never carries the
// password hash, so no secret material round-trips through session
// state.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Principal returns the non-secret projection of the account.
func (a *Account) Principal() *Principal {
	return &Principal{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
	}
}

// Session binds a transport-level cookie to an account.
//
// The cookie carries the raw token; only its hash is stored. The
// session references the account by id and the principal is
// re-resolved on every read.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	TokenHash string    `json:"-"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session TTL has elapsed. The TTL is
// fixed at creation, not sliding.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Profile is the verified assertion returned by an external identity
// provider. Email is mandatory; DisplayName may be empty.
type Profile struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// Post is a timestamped text entry. Posts are shared: every
// authenticated account sees and may edit every post.
type Post struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}
