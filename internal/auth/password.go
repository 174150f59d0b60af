package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. These match the stored hashes already in production,
// so changing them invalidates every existing account.
const (
	hashIterations = 100000
	hashKeyLength  = 32
	hashSaltLength = 16
)

// HashPassword derives a salted PBKDF2-SHA256 key from the password and
// returns it encoded as base64(salt):base64(key).
func HashPassword(password string) (string, error) {
	salt := make([]byte, hashSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, hashIterations, hashKeyLength, sha256.New)

	return base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches the stored hash.
// It fails closed: a malformed stored value yields false, never an error.
func VerifyPassword(password, storedHash string) bool {
	saltB64, keyB64, found := strings.Cut(storedHash, ":")
	if !found {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(saltB64)
	if err != nil {
		return false
	}
	storedKey, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return false
	}

	candidate := pbkdf2.Key([]byte(password), salt, hashIterations, hashKeyLength, sha256.New)

	// ConstantTimeCompare returns 0 on length mismatch.
	return subtle.ConstantTimeCompare(candidate, storedKey) == 1
}
