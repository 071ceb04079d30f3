// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/constants"
	"github.com/streamadvisor/streamadvisor/internal/platform/ctxutil"
	"github.com/streamadvisor/streamadvisor/internal/platform/respond"
	"github.com/streamadvisor/streamadvisor/internal/platform/sec"
)

// SessionVerifier defines the interface needed to resolve session tokens in middleware.
//
// # Why an interface?
//
// Defining SessionVerifier here decouples the middleware from the auth service
// implementation, allowing us to easily inject mocks during unit testing.
// Verification is not read-only: each successful resolution slides the
// session's expiry forward, so merely making an authenticated request keeps
// the session alive.
type SessionVerifier interface {
	ResolveIdentity(ctx context.Context, token string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the session token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, resolve the session via [SessionVerifier].
//  4. Inject [*sec.Identity] into the request context for downstream use.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get(constants.HeaderAuthorization)

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Session Resolution ─────────────────────────────────────────
			token := parts[1]
			identity, err := verifier.ResolveIdentity(request.Context(), token)
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		identity := ctxutil.GetAuthUser(request.Context())
		if identity == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
