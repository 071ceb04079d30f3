// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package auth implements account registration, credential verification, and
opaque-token session management.

# Architecture

  - Accounts live in the record store (users table).
  - Active sessions live in the cache under "session:<token>" with a sliding
    TTL; the user_sessions table is only an append-only audit trail.
  - Every security-relevant action (registration, login, logout) is recorded
    in the user_activity table.

# Security

Passwords are stored as bcrypt hashes and never leave this package: the
[User] struct excludes the hash from JSON serialization, so an accidentally
logged or responded user value cannot leak credentials.
*/
package auth

import (
	"time"

	"github.com/streamadvisor/streamadvisor/internal/store"
)

// User is the sanitized account representation returned to callers.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AvatarEmoji string `json:"avatar_emoji"`
	CreatedAt   string `json:"created_at"`
	LastLogin   string `json:"last_login,omitempty"`

	// PasswordHash never crosses the package boundary in serialized form.
	PasswordHash string `json:"-"`
}

// Session is the cached state of an authenticated session.
//
// The token itself is the cache key, not a field of the payload, so a dumped
// cache entry alone cannot be replayed.
type Session struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionState is the result of a successful session verification.
type SessionState struct {
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

// # Record Mapping

// Field names of the users table.
const (
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
	fieldFirstName    = "first_name"
	fieldLastName     = "last_name"
	fieldAvatarEmoji  = "avatar_emoji"
	fieldIsActive     = "is_active"
	fieldLastLogin    = "last_login"
)

// Recorded activity actions.
const (
	actionRegistration = "registration"
	actionLoginSuccess = "login_success"
	actionLogout       = "logout"
)

// userFromRecord maps a users-table record to the domain struct.
func userFromRecord(record store.Record) *User {
	return &User{
		ID:           record.ID(),
		Email:        record.String(fieldEmail),
		FirstName:    record.String(fieldFirstName),
		LastName:     record.String(fieldLastName),
		AvatarEmoji:  record.String(fieldAvatarEmoji),
		CreatedAt:    record.String("created_at"),
		LastLogin:    record.String(fieldLastLogin),
		PasswordHash: record.String(fieldPasswordHash),
	}
}

// avatarEmojis is the fixed pool a new account's avatar is picked from.
var avatarEmojis = []string{"🎬", "🍿", "📚", "🎭", "🎮", "🚀", "🌟", "🦊"}

// avatarFor picks a deterministic avatar for a display name, so the same
// name always re-registers with the same emoji.
func avatarFor(name string) string {
	return avatarEmojis[len(name)%len(avatarEmojis)]
}
