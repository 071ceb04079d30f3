// Copyright (c) 2026 StreamAdvisor. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/streamadvisor/streamadvisor/internal/platform/apperr"
	"github.com/streamadvisor/streamadvisor/internal/platform/constants"
	"github.com/streamadvisor/streamadvisor/internal/platform/ctxutil"
	"github.com/streamadvisor/streamadvisor/internal/platform/sec"
	"github.com/streamadvisor/streamadvisor/internal/platform/validate"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
BearerToken extracts the opaque session token from the Authorization header.

Returns:
  - string: The raw token
  - error: apperr.Unauthorized if the header is absent or malformed
*/
func BearerToken(request *http.Request) (string, error) {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", apperr.Unauthorized("Invalid authorization format")
	}

	return parts[1], nil
}

/*
Identity extracts the authenticated principal from the request context.

Returns nil if the request is not authenticated.
*/
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredIdentity ensures the request is authenticated and returns the principal.

Returns:
  - *sec.Identity: The authenticated principal
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredIdentity(request *http.Request) (*sec.Identity, error) {

	// Get the principal resolved by the Authenticate middleware
	identity := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if identity == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return identity, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User ID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get the principal
	identity, err := RequiredIdentity(request)

	// If the user is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return identity.UserID, nil
}
