package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidToken is returned for malformed, unknown, revoked or expired tokens
	ErrInvalidToken = errors.New("invalid or expired token")
)

// User is an authenticated account. Identity and sessions are issued elsewhere; this
// service only needs the ID to look up organization membership.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Name returns the display name, falling back to the username
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// APIToken represents a stored bearer or session token
type APIToken struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	TokenHash   string     `json:"-"` // Never expose hash
	TokenPrefix string     `json:"token_prefix"`
	Name        string     `json:"name"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Usable reports whether the token is neither revoked nor expired at now
func (t *APIToken) Usable(now time.Time) bool {
	if t.RevokedAt != nil {
		return false
	}
	return t.ExpiresAt == nil || t.ExpiresAt.After(now)
}

// AuthContext holds authenticated user information
type AuthContext struct {
	User  *User
	Token *APIToken
}

// UserID returns the authenticated user's ID, or 0 when unauthenticated
func (ac *AuthContext) UserID() int64 {
	if ac == nil || ac.User == nil {
		return 0
	}
	return ac.User.ID
}
