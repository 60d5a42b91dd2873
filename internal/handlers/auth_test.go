package handlers

import "testing"

func TestLowerCamel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Email", "email"},
		{"Password", "password"},
		{"FirstName", "firstName"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := lowerCamel(tt.in); got != tt.want {
			t.Fatalf("lowerCamel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHashTokenIsStableAndOpaque(t *testing.T) {
	a := hashToken("refresh-token-value")
	b := hashToken("refresh-token-value")
	if a != b {
		t.Fatal("same token must hash to the same digest")
	}
	if a == "refresh-token-value" {
		t.Fatal("digest must not equal the raw token")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if hashToken("other") == a {
		t.Fatal("different tokens must not collide")
	}
}

func TestGenerateRefreshStringUnique(t *testing.T) {
	a := generateRefreshString()
	b := generateRefreshString()
	if a == "" || b == "" {
		t.Fatal("expected non-empty refresh tokens")
	}
	if a == b {
		t.Fatal("expected fresh randomness per token")
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
}
