package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signTestToken(t *testing.T, claims *Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestInspect_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims := &Claims{Email: "analyst@example.com", Name: "Ana Lyst"}
	claims.Subject = "user-123"
	claims.Issuer = "https://auth.example.com"
	claims.ExpiresAt = jwt.NewNumericDate(exp)

	info, err := Inspect(signTestToken(t, claims))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.Subject != "user-123" {
		t.Errorf("expected subject 'user-123', got %q", info.Subject)
	}
	if info.Email != "analyst@example.com" {
		t.Errorf("expected email, got %q", info.Email)
	}
	if info.ExpiresAt == nil || !info.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, info.ExpiresAt)
	}
	if info.Expired(time.Now()) {
		t.Error("token should not be expired yet")
	}
}

func TestInspect_ExpiredTokenStillDecodes(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "user-123"
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	info, err := Inspect(signTestToken(t, claims))
	if err != nil {
		t.Fatalf("Inspect should not validate claims, got: %v", err)
	}
	if !info.Expired(time.Now()) {
		t.Error("expected token to be reported expired")
	}
}

func TestInspect_NoExpiry(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "service"

	info, err := Inspect(signTestToken(t, claims))
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if info.ExpiresAt != nil {
		t.Errorf("expected nil expiry, got %v", info.ExpiresAt)
	}
	if info.Expired(time.Now()) {
		t.Error("token without expiry is never expired")
	}
}

func TestInspect_OpaqueToken(t *testing.T) {
	if _, err := Inspect("not-a-jwt"); err == nil {
		t.Error("expected error for opaque token")
	}
	if _, err := Inspect(""); err == nil {
		t.Error("expected error for empty token")
	}
}
