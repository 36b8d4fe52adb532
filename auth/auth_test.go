// Copyright (c) 2025 The ARS-BZ Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewID(t *testing.T) {
	id1 := NewID()
	id2 := NewID()

	if _, err := uuid.Parse(id1); err != nil {
		t.Errorf("NewID() is not a valid UUID: %v", err)
	}
	if id1 == id2 {
		t.Error("NewID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateSessionCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		code, err := GenerateSessionCode()
		if err != nil {
			t.Fatalf("GenerateSessionCode() error = %v", err)
		}

		if len(code) != SessionCodeLength {
			t.Fatalf("GenerateSessionCode() length = %d, want %d", len(code), SessionCodeLength)
		}

		for _, c := range code {
			if !strings.ContainsRune(SessionCodeAlphabet, c) {
				t.Fatalf("GenerateSessionCode() contains invalid char: %c", c)
			}
		}
		seen[code] = true
	}

	// 36^6 possible codes; 500 draws colliding more than a handful of times means a broken source
	if len(seen) < 490 {
		t.Errorf("GenerateSessionCode() produced too many duplicates: %d unique of 500", len(seen))
	}
}

func TestNormalizeSessionCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc123", "ABC123"},
		{"  demo01 ", "DEMO01"},
		{"XYZ789", "XYZ789"},
	}

	for _, tt := range tests {
		if got := NormalizeSessionCode(tt.in); got != tt.want {
			t.Errorf("NormalizeSessionCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "s3cret" {
		t.Fatal("HashPassword() returned the plaintext password")
	}

	if err := CheckPassword(hash, "s3cret"); err != nil {
		t.Errorf("CheckPassword() with correct password error = %v", err)
	}

	if err := CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("CheckPassword() with wrong password error = %v, want %v", err, ErrInvalidCredentials)
	}
}

func TestSignAndParseToken(t *testing.T) {
	token, err := SignToken("user-1", "Alice", "alice@example.com", "ADMIN", "secret", time.Hour)
	if err != nil {
		t.Fatalf("SignToken() error = %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}

	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Name != "Alice" || claims.Email != "alice@example.com" || claims.Role != "ADMIN" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenFailures(t *testing.T) {
	valid, _ := SignToken("user-1", "Alice", "a@example.com", "ADMIN", "secret", time.Hour)
	expired, _ := SignToken("user-1", "Alice", "a@example.com", "ADMIN", "secret", -time.Hour)
	noUser, _ := SignToken("", "Nobody", "", "PARTICIPANT", "secret", time.Hour)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other-secret"},
		{"expired", expired, "secret"},
		{"garbage", "not-a-token", "secret"},
		{"empty user id", noUser, "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ParseToken() error = %v, want %v", err, ErrInvalidToken)
			}
		})
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"IPv4", "192.168.1.1", "ip-salt"},
		{"IPv6", "2001:0db8:85a3::8a2e:0370:7334", "ip-salt"},
		{"localhost", "127.0.0.1", "ip-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should be 16 hex characters (8 bytes * 2)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			// Should be valid hex
			for _, c := range hash {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("HashIP() contains invalid hex char: %c", c)
				}
			}

			// Should be deterministic
			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}
		})
	}

	// Different salts should produce different hashes
	if HashIP("192.168.1.1", "salt1") == HashIP("192.168.1.1", "salt2") {
		t.Error("HashIP() produced same hash for different salts")
	}
}

// Benchmark tests
func BenchmarkGenerateSessionCode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		GenerateSessionCode()
	}
}

func BenchmarkHashIP(b *testing.B) {
	for i := 0; i < b.N; i++ {
		HashIP("192.168.1.1", "salt")
	}
}
