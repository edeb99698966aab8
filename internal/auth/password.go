// Package auth implements the shared password scheme: PBKDF2-HMAC-SHA256
// with 600000 iterations, base64-encoded digest and salt.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 600000
	keyLength  = 32
	saltLength = 32
)

// Verify reports whether password matches the stored base64 hash and salt.
// A malformed salt or hash verifies as false, never as an error: callers
// treat any verification problem as a bad credential.
func Verify(password, storedHash, storedSalt string) bool {
	salt, err := base64.StdEncoding.DecodeString(storedSalt)
	if err != nil {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(storedHash)
	if err != nil {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Generate derives a fresh salt and hash for password, both base64-encoded,
// suitable for pasting into a config file.
func Generate(password string) (hash, salt string, err error) {
	raw := make([]byte, saltLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), raw, iterations, keyLength, sha256.New)
	return base64.StdEncoding.EncodeToString(key), base64.StdEncoding.EncodeToString(raw), nil
}
