// ABOUTME: Opaque API token generation and hashing
// ABOUTME: Tokens are pm_ plus 48 hex chars; only their SHA-256 hex digest is stored

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const (
	// TokenPrefix starts every generated token.
	TokenPrefix = "pm_"

	// tokenBytes is the amount of randomness in a token.
	tokenBytes = 24

	// DisplayPrefixLen is how many leading characters are kept for display.
	DisplayPrefixLen = 8
)

// HashToken returns the lowercase hex SHA-256 digest of token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns a new random token.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return TokenPrefix + hex.EncodeToString(b), nil
}

// DisplayPrefix returns the leading characters of token that are safe to
// store and log.
func DisplayPrefix(token string) string {
	if len(token) <= DisplayPrefixLen {
		return token
	}
	return token[:DisplayPrefixLen]
}
