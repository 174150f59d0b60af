package auth

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	parts := strings.Split(hash, ":")
	if len(parts) != 2 {
		t.Fatalf("HashPassword() expected 2 parts, got %d: %q", len(parts), hash)
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("HashPassword() salt is not valid base64: %v", err)
	}
	if len(salt) != hashSaltLength {
		t.Errorf("HashPassword() salt length = %d, want %d", len(salt), hashSaltLength)
	}

	key, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("HashPassword() key is not valid base64: %v", err)
	}
	if len(key) != hashKeyLength {
		t.Errorf("HashPassword() key length = %d, want %d", len(key), hashKeyLength)
	}
}

func TestVerifyPasswordCorrect(t *testing.T) {
	password := "my-secure-password"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	if !VerifyPassword(password, hash) {
		t.Error("VerifyPassword() returned false for correct password")
	}
}

func TestVerifyPasswordWrong(t *testing.T) {
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	if VerifyPassword("wrong-password", hash) {
		t.Error("VerifyPassword() returned true for wrong password")
	}
}

func TestHashPasswordProducesDifferentHashes(t *testing.T) {
	password := "same-password"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() unexpected error: %v", err)
	}

	if hash1 == hash2 {
		t.Error("HashPassword() produced identical hashes for same password (salt should differ)")
	}

	if !VerifyPassword(password, hash1) || !VerifyPassword(password, hash2) {
		t.Error("VerifyPassword() failed against one of two fresh hashes")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	cases := []struct {
		name   string
		stored string
	}{
		{"no separator", "not-a-stored-hash"},
		{"empty", ""},
		{"bad salt base64", "!!!:aGVsbG8="},
		{"bad key base64", "aGVsbG8=:!!!"},
		{"empty segments", ":"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if VerifyPassword("password", tc.stored) {
				t.Errorf("VerifyPassword() returned true for malformed hash %q", tc.stored)
			}
		})
	}
}
