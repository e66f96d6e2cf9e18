// ABOUTME: Unit tests for token generation and hashing
// ABOUTME: Checks format, randomness, digest encoding, and display prefix

package auth

import (
	"regexp"
	"testing"
)

func TestHashToken_KnownDigest(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := HashToken("abc"); got != want {
		t.Errorf("HashToken(abc) = %q, want %q", got, want)
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if HashToken("pm_same") != HashToken("pm_same") {
		t.Error("HashToken should be deterministic")
	}
	if HashToken("pm_one") == HashToken("pm_two") {
		t.Error("different tokens should hash differently")
	}
}

func TestGenerateToken_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^pm_[0-9a-f]{48}$`)

	token, err := GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if !pattern.MatchString(token) {
		t.Errorf("GenerateToken() = %q, does not match %s", token, pattern)
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateToken()
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestDisplayPrefix(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"pm_0123456789abcdef", "pm_01234"},
		{"pm_0123", "pm_0123"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayPrefix(tt.token); got != tt.want {
			t.Errorf("DisplayPrefix(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
