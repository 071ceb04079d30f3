// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamadvisor/streamadvisor/internal/auth"
	"github.com/streamadvisor/streamadvisor/internal/cache"
	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/clock"
	"github.com/streamadvisor/streamadvisor/internal/store"
)

const sessionTTL = 24 * time.Hour

func newTestService(t *testing.T) (*auth.Service, *clock.Manual, *store.Store) {
	t.Helper()

	clk := clock.NewManual(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	c := cache.New(clk)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	recordStore, err := store.New(context.Background(), store.NewMemoryMedium(), c, clk, logger, store.Tables()...)
	require.NoError(t, err)

	return auth.NewService(recordStore, c, clk, logger, sessionTTL), clk, recordStore
}

func register(t *testing.T, service *auth.Service) *auth.RegisterResult {
	t.Helper()

	result, err := service.Register(context.Background(), auth.RegisterInput{
		Email:     "jane@example.com",
		Password:  "Str0ng!Pass",
		FirstName: "Jane",
		LastName:  "Doe",
		UserAgent: "test-agent/1.0",
	})
	require.NoError(t, err)
	return result
}

/*
TestRegister verifies account creation, the sanitized result, and that a
fresh account comes back already signed in.
*/
func TestRegister(t *testing.T) {
	service, clk, _ := newTestService(t)

	result := register(t, service)
	user := result.User

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.FirstName)
	assert.NotEmpty(t, user.AvatarEmoji)

	// Registration issues a live session.
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, clk.Now().UTC().Add(sessionTTL), result.ExpiresAt)

	// The hash exists internally but never serializes.
	payload, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "password")
	assert.NotContains(t, string(payload), user.PasswordHash)
}

/*
TestRegister_IssuesUsableSession verifies the registration token verifies
without a follow-up login, and that the session audit row was written.
*/
func TestRegister_IssuesUsableSession(t *testing.T) {
	service, _, recordStore := newTestService(t)
	ctx := context.Background()

	result := register(t, service)

	// 1. The token works immediately
	state, err := service.VerifySession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, state.User.ID)

	// 2. The audit row exists and carries the caller's user agent
	sessions, err := recordStore.Select(ctx, store.TableSessions, nil)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, result.User.ID, sessions[0].String("user_id"))
	assert.Equal(t, "test-agent/1.0", sessions[0].String("user_agent"))
	assert.True(t, sessions[0].Bool("is_active"))
}

/*
TestRegister_DuplicateEmail verifies the uniqueness conflict, including
case-insensitive matching on the address.
*/
func TestRegister_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)
	register(t, service)

	_, err := service.Register(context.Background(), auth.RegisterInput{
		Email:     "JANE@example.com",
		Password:  "Other!Pass1",
		FirstName: "Janet",
		LastName:  "Doe",
	})
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "CONFLICT", appError.Code)
}

/*
TestRegister_Validation verifies that garbage input is rejected before any
account is created.
*/
func TestRegister_Validation(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input auth.RegisterInput
	}{
		{"bad email", auth.RegisterInput{Email: "not-an-email", Password: "Str0ng!Pass", FirstName: "A", LastName: "B"}},
		{"weak password", auth.RegisterInput{Email: "a@b.com", Password: "short", FirstName: "A", LastName: "B"}},
		{"no uppercase", auth.RegisterInput{Email: "a@b.com", Password: "weakpass1!", FirstName: "A", LastName: "B"}},
		{"missing name", auth.RegisterInput{Email: "a@b.com", Password: "Str0ng!Pass", FirstName: "", LastName: "B"}},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := service.Register(ctx, testCase.input)
			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
		})
	}
}

/*
TestLogin verifies credential checking, session issuance, and the
last_login stamp.
*/
func TestLogin(t *testing.T) {
	service, clk, recordStore := newTestService(t)
	register(t, service)
	ctx := context.Background()

	clk.Advance(time.Hour)

	result, err := service.Login(ctx, auth.LoginInput{
		Email:    "jane@example.com",
		Password: "Str0ng!Pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.Equal(t, clk.Now().UTC().Add(sessionTTL), result.ExpiresAt)

	// last_login is stamped, in the result and durably.
	loginStamp := clk.Now().UTC().Format(store.TimestampFormat)
	assert.Equal(t, loginStamp, result.User.LastLogin)

	record, err := recordStore.SelectOne(ctx, store.TableUsers, store.Where{"email": "jane@example.com"})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, loginStamp, record.String("last_login"))
}

/*
TestLogin_IndistinguishableFailures verifies that an unknown email, a wrong
password, and a deactivated account produce byte-identical errors, so
responses cannot be used to probe which addresses are registered.
*/
func TestLogin_IndistinguishableFailures(t *testing.T) {
	service, _, recordStore := newTestService(t)
	result := register(t, service)
	ctx := context.Background()

	_, unknownErr := service.Login(ctx, auth.LoginInput{
		Email:    "nobody@example.com",
		Password: "Str0ng!Pass",
	})
	_, wrongErr := service.Login(ctx, auth.LoginInput{
		Email:    "jane@example.com",
		Password: "Wrong!Pass1",
	})

	// Deactivate and try the correct credentials.
	_, err := recordStore.Update(ctx, store.TableUsers,
		store.Where{"id": result.User.ID},
		store.Record{"is_active": false},
	)
	require.NoError(t, err)
	_, inactiveErr := service.Login(ctx, auth.LoginInput{
		Email:    "jane@example.com",
		Password: "Str0ng!Pass",
	})

	for _, failure := range []error{unknownErr, wrongErr, inactiveErr} {
		require.Error(t, failure)
		appError := apperr.As(failure)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
		assert.Equal(t, "Invalid email or password", appError.Message)
	}
}

/*
TestVerifySession_SlidesExpiry verifies the sliding window: every verified
use pushes the deadline forward from "now", never shrinking it.
*/
func TestVerifySession_SlidesExpiry(t *testing.T) {
	service, clk, _ := newTestService(t)
	register(t, service)
	ctx := context.Background()

	result, err := service.Login(ctx, auth.LoginInput{Email: "jane@example.com", Password: "Str0ng!Pass"})
	require.NoError(t, err)
	issuedAt := clk.Now().UTC()

	// 1. Verify 10 hours in — still valid, expiry slides
	clk.Advance(10 * time.Hour)
	state, err := service.VerifySession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", state.User.Email)
	assert.Equal(t, clk.Now().UTC().Add(sessionTTL), state.ExpiresAt)
	assert.True(t, state.ExpiresAt.After(issuedAt.Add(sessionTTL)))

	// 2. Another 20 hours (30 total — past the original deadline, inside the slid one)
	clk.Advance(20 * time.Hour)
	_, err = service.VerifySession(ctx, result.Token)
	require.NoError(t, err)

	// 3. Go silent past the full TTL — now it is gone
	clk.Advance(sessionTTL + time.Minute)
	_, err = service.VerifySession(ctx, result.Token)
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

/*
TestVerifySession_UnknownToken verifies rejection of tokens that were never
issued.
*/
func TestVerifySession_UnknownToken(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.VerifySession(context.Background(), "made-up-token")
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)
}

/*
TestVerifySession_DeactivatedUser verifies that deactivating an account
kills its live sessions on the next verification.
*/
func TestVerifySession_DeactivatedUser(t *testing.T) {
	service, _, recordStore := newTestService(t)
	ctx := context.Background()

	result := register(t, service)

	// The session works while the account is active.
	_, err := service.VerifySession(ctx, result.Token)
	require.NoError(t, err)

	// Deactivate the account underneath the session.
	_, err = recordStore.Update(ctx, store.TableUsers,
		store.Where{"id": result.User.ID},
		store.Record{"is_active": false},
	)
	require.NoError(t, err)

	// 1. Verification now fails
	_, err = service.VerifySession(ctx, result.Token)
	require.Error(t, err)
	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "UNAUTHORIZED", appError.Code)

	// 2. The session was evicted, so reactivating does not resurrect it
	_, err = recordStore.Update(ctx, store.TableUsers,
		store.Where{"id": result.User.ID},
		store.Record{"is_active": true},
	)
	require.NoError(t, err)
	_, err = service.VerifySession(ctx, result.Token)
	require.Error(t, err)
}

/*
TestLogout verifies invalidation, idempotency, and the audit trail: the row
is marked inactive with a logged_out_at stamp.
*/
func TestLogout(t *testing.T) {
	service, clk, recordStore := newTestService(t)
	register(t, service)
	ctx := context.Background()

	result, err := service.Login(ctx, auth.LoginInput{
		Email:     "jane@example.com",
		Password:  "Str0ng!Pass",
		UserAgent: "test-agent/1.0",
	})
	require.NoError(t, err)

	// 1. First logout invalidates
	clk.Advance(time.Hour)
	require.NoError(t, service.Logout(ctx, result.Token))
	_, err = service.VerifySession(ctx, result.Token)
	require.Error(t, err)

	// 2. The audit row records the end of the session
	record, err := recordStore.SelectOne(ctx, store.TableSessions, store.Where{"token": result.Token})
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.Bool("is_active"))
	assert.Equal(t, "test-agent/1.0", record.String("user_agent"))
	assert.Equal(t, clk.Now().UTC().Format(store.TimestampFormat), record.String("logged_out_at"))

	// 3. Repeat logout is a silent success
	require.NoError(t, service.Logout(ctx, result.Token))

	// 4. Logout of a never-issued token too
	require.NoError(t, service.Logout(ctx, "made-up-token"))
}

/*
TestSessionLifecycle runs the full journey on the registration token:
register, verify, logout, verify again.
*/
func TestSessionLifecycle(t *testing.T) {
	service, clk, _ := newTestService(t)
	ctx := context.Background()

	result := register(t, service)

	clk.Advance(time.Hour)

	state, err := service.VerifySession(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, state.User.ID)

	require.NoError(t, service.Logout(ctx, result.Token))

	_, err = service.VerifySession(ctx, result.Token)
	require.Error(t, err)
}

/*
TestResolveIdentity verifies the middleware adapter carries the principal
and the raw token.
*/
func TestResolveIdentity(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	result := register(t, service)

	identity, err := service.ResolveIdentity(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.UserID)
	assert.Equal(t, "jane@example.com", identity.Email)
	assert.Equal(t, result.Token, identity.Token)

	// The token never serializes off the identity.
	payload, err := json.Marshal(identity)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), result.Token)
}

/*
TestSeedDemoAccount verifies the seed runs once and never touches a
populated deployment.
*/
func TestSeedDemoAccount(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, service.SeedDemoAccount(ctx, "demo@streamadvisor.com", "ChangeMe123!"))

	// Demo account can log in
	_, err := service.Login(ctx, auth.LoginInput{Email: "demo@streamadvisor.com", Password: "ChangeMe123!"})
	require.NoError(t, err)

	// A second seed is a no-op, not a conflict
	require.NoError(t, service.SeedDemoAccount(ctx, "demo@streamadvisor.com", "ChangeMe123!"))
}
