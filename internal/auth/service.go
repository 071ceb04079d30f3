// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/streamadvisor/streamadvisor/internal/cache"
	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
	"github.com/streamadvisor/streamadvisor/internal/platform/constants"
	"github.com/streamadvisor/streamadvisor/internal/platform/sec"
	"github.com/streamadvisor/streamadvisor/internal/platform/validate"
	"github.com/streamadvisor/streamadvisor/internal/store"
)

// sessionTokenLength is the entropy, in bytes, of a session token.
const sessionTokenLength = 32

// msgInvalidCredentials is deliberately shared between the "no such account"
// and "wrong password" paths so responses cannot be used to enumerate emails.
const msgInvalidCredentials = "Invalid email or password"

// Service implements registration, login, and session lifecycle.
type Service struct {
	store      *store.Store
	sessions   *cache.Cache
	clock      clock.Clock
	log        *slog.Logger
	sessionTTL time.Duration
}

// NewService constructs the auth service.
func NewService(recordStore *store.Store, sessionCache *cache.Cache, clk clock.Clock, logger *slog.Logger, sessionTTL time.Duration) *Service {
	return &Service{
		store:      recordStore,
		sessions:   sessionCache,
		clock:      clk,
		log:        logger,
		sessionTTL: sessionTTL,
	}
}

// # Registration

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// UserAgent is captured by the HTTP layer for the session audit trail.
	UserAgent string `json:"-"`
}

// RegisterResult is the outcome of a successful registration: the account
// plus an already-active session, so clients land signed in.
type RegisterResult struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
Register creates a new account and signs it in.

Description: Validates the payload, rejects duplicate emails, hashes the
password with bcrypt, stores the account, records a registration activity
entry, and issues a fresh session so the caller does not need a follow-up
login.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *RegisterResult: Sanitized account, opaque token, and expiry
  - error: apperr.ValidationError, apperr.Conflict, or apperr.Storage
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {

	// 1. Validate the payload before touching storage
	email := normalizeEmail(input.Email)
	v := &validate.Validator{}
	v.Required("email", email).Email("email", email)
	v.Required("password", input.Password).Password("password", input.Password)
	v.Required("first_name", input.FirstName).MaxLen("first_name", input.FirstName, 100)
	v.Required("last_name", input.LastName).MaxLen("last_name", input.LastName, 100)
	if err := v.Err(); err != nil {
		return nil, err
	}

	// 2. Enforce email uniqueness
	existing, err := service.store.SelectOne(ctx, store.TableUsers, store.Where{fieldEmail: email})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("An account with this email already exists")
	}

	// 3. Hash the password (the plaintext is never stored or logged)
	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	// 4. Persist the account
	record, err := service.store.Insert(ctx, store.TableUsers, store.Record{
		fieldEmail:        email,
		fieldPasswordHash: hash,
		fieldFirstName:    strings.TrimSpace(input.FirstName),
		fieldLastName:     strings.TrimSpace(input.LastName),
		fieldAvatarEmoji:  avatarFor(strings.TrimSpace(input.FirstName)),
		fieldIsActive:     true,
	})
	if err != nil {
		return nil, err
	}

	user := userFromRecord(record)
	service.recordActivity(ctx, user.ID, actionRegistration)

	// 5. Issue the initial session
	token, expiresAt, err := service.createSession(ctx, user.ID, input.UserAgent)
	if err != nil {
		return nil, err
	}

	service.log.InfoContext(ctx, "account_registered",
		slog.String("user_id", user.ID),
	)
	return &RegisterResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// # Login & Sessions

// LoginInput is the payload for credential verification.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	// UserAgent is captured by the HTTP layer for the session audit trail.
	UserAgent string `json:"-"`
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

/*
Login verifies credentials and issues a fresh session token.

Description: Resolves the active account by email and checks the bcrypt
hash. All failure modes (unknown email, deactivated account, wrong password)
return an identical error, so the response cannot distinguish registered
from unregistered addresses. A successful login stamps last_login.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Sanitized user, opaque token, and expiry
  - error: apperr.Unauthorized or apperr.Storage
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := normalizeEmail(input.Email)

	record, err := service.store.SelectOne(ctx, store.TableUsers, store.Where{
		fieldEmail:    email,
		fieldIsActive: true,
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	user := userFromRecord(record)
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	// Stamp last_login before issuing the session.
	lastLogin := service.clock.Now().UTC().Format(store.TimestampFormat)
	if _, err := service.store.Update(ctx, store.TableUsers,
		store.Where{"id": user.ID},
		store.Record{fieldLastLogin: lastLogin},
	); err != nil {
		return nil, err
	}
	user.LastLogin = lastLogin

	token, expiresAt, err := service.createSession(ctx, user.ID, input.UserAgent)
	if err != nil {
		return nil, err
	}

	service.recordActivity(ctx, user.ID, actionLoginSuccess)
	service.log.InfoContext(ctx, "login_succeeded",
		slog.String("user_id", user.ID),
	)

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// createSession mints an opaque token, caches the session with the sliding
// TTL, and appends an audit row to the user_sessions table.
func (service *Service) createSession(ctx context.Context, userID, userAgent string) (string, time.Time, error) {
	token, err := sec.GenerateSecureToken(sessionTokenLength)
	if err != nil {
		return "", time.Time{}, apperr.Internal(err)
	}

	now := service.clock.Now().UTC()
	session := Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(service.sessionTTL),
	}

	if err := service.sessions.Set(sessionKey(token), session, service.sessionTTL); err != nil {
		return "", time.Time{}, apperr.Internal(err)
	}

	// Audit trail only; the cache entry is the authoritative session state.
	_, err = service.store.Insert(ctx, store.TableSessions, store.Record{
		"token":       token,
		"user_id":     userID,
		"user_agent":  userAgent,
		"expires_at":  session.ExpiresAt.Format(store.TimestampFormat),
		fieldIsActive: true,
	})
	if err != nil {
		service.sessions.Delete(sessionKey(token))
		return "", time.Time{}, err
	}

	return token, session.ExpiresAt, nil
}

/*
VerifySession validates a token and slides its expiry forward.

Description: Looks up the cached session, rejects expired or unknown tokens,
extends the expiry to now + TTL (sliding window), and returns the sanitized
account the session belongs to.

Parameters:
  - ctx: context.Context
  - token: Opaque session token

Returns:
  - *SessionState: Sanitized user and the new expiry
  - error: apperr.Unauthorized when the token is unknown or expired
*/
func (service *Service) VerifySession(ctx context.Context, token string) (*SessionState, error) {
	var session Session
	if !service.sessions.Get(sessionKey(token), &session) {
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	now := service.clock.Now().UTC()
	if now.After(session.ExpiresAt) {
		service.sessions.Delete(sessionKey(token))
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	// Sliding window: every verified use pushes the expiry forward.
	session.ExpiresAt = now.Add(service.sessionTTL)
	if err := service.sessions.Set(sessionKey(token), session, service.sessionTTL); err != nil {
		return nil, apperr.Internal(err)
	}

	record, err := service.store.SelectOne(ctx, store.TableUsers, store.Where{"id": session.UserID})
	if err != nil {
		return nil, err
	}
	if record == nil || !record.Bool(fieldIsActive) {
		// Account vanished or was deactivated under a live session; the
		// session dies with it.
		service.sessions.Delete(sessionKey(token))
		return nil, apperr.Unauthorized("Invalid or expired session")
	}

	return &SessionState{User: userFromRecord(record), ExpiresAt: session.ExpiresAt}, nil
}

/*
Logout invalidates a session.

Description: Removes the cached session and marks the audit row inactive.
Logout is idempotent: an unknown or already-expired token succeeds silently,
since the end state ("no such session") is identical.

Parameters:
  - ctx: context.Context
  - token: Opaque session token

Returns:
  - error: apperr.Storage (only when the audit update fails)
*/
func (service *Service) Logout(ctx context.Context, token string) error {
	var session Session
	known := service.sessions.Get(sessionKey(token), &session)

	service.sessions.Delete(sessionKey(token))

	if !known {
		return nil
	}

	if _, err := service.store.Update(ctx, store.TableSessions,
		store.Where{"token": token},
		store.Record{
			fieldIsActive:   false,
			"logged_out_at": service.clock.Now().UTC().Format(store.TimestampFormat),
		},
	); err != nil {
		return err
	}

	service.recordActivity(ctx, session.UserID, actionLogout)
	service.log.InfoContext(ctx, "logout",
		slog.String("user_id", session.UserID),
	)
	return nil
}

// ResolveIdentity adapts [Service.VerifySession] to the middleware contract.
func (service *Service) ResolveIdentity(ctx context.Context, token string) (*sec.Identity, error) {
	state, err := service.VerifySession(ctx, token)
	if err != nil {
		return nil, err
	}

	return &sec.Identity{
		UserID:    state.User.ID,
		Email:     state.User.Email,
		FirstName: state.User.FirstName,
		LastName:  state.User.LastName,
		Token:     token,
	}, nil
}

// # Seeding

// SeedDemoAccount creates the demo account if the users table is empty.
// Existing deployments are never touched.
func (service *Service) SeedDemoAccount(ctx context.Context, email, password string) error {
	users, err := service.store.Select(ctx, store.TableUsers, nil)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	result, err := service.Register(ctx, RegisterInput{
		Email:     email,
		Password:  password,
		FirstName: "Demo",
		LastName:  "User",
		UserAgent: "seed",
	})
	if err != nil {
		return err
	}

	// The seed runs before the server listens; nobody holds this token.
	if err := service.Logout(ctx, result.Token); err != nil {
		return err
	}

	service.log.InfoContext(ctx, "demo_account_seeded",
		slog.String("email", email),
	)
	return nil
}

// # Internals

// recordActivity appends to the audit log. Failures are logged and swallowed:
// an audit hiccup must never fail the user-facing operation.
func (service *Service) recordActivity(ctx context.Context, userID, action string) {
	_, err := service.store.Insert(ctx, store.TableActivity, store.Record{
		"user_id": userID,
		"action":  action,
	})
	if err != nil {
		service.log.WarnContext(ctx, "activity_log_failed",
			slog.String("user_id", userID),
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}

func sessionKey(token string) string {
	return constants.CachePrefixSession + token
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
