// Copyright (c) 2026 StreamAdvisor. All rights reserved.

package sec

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSecureToken returns a URL-safe token built from byteLength bytes of
// cryptographically secure randomness.
//
// # Usage
//
// Session tokens must be unguessable, so they always come from the OS CSPRNG —
// never from the record-ID generator, which only promises probabilistic
// uniqueness, not unpredictability.
func GenerateSecureToken(byteLength int) (string, error) {
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
