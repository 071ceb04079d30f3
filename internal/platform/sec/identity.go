// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package sec provides the security primitives of the platform.

It isolates security-sensitive code (password hashing, token generation) from
the domain logic, and defines the [Identity] value that middleware injects
into the request context after a session has been verified.
*/
package sec

// Identity is the authenticated principal resolved from a session token.
//
// # Why not the full user record?
//
// Middleware runs on every request; handlers that need profile details load
// them through the auth service. Identity carries only what routing and
// logging need, plus the raw token so handlers can act on the session itself
// (logout, introspection).
type Identity struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`

	// Token is the opaque session token the identity was resolved from.
	// Never serialized.
	Token string `json:"-"`
}
