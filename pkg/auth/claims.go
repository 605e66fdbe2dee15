// Package auth holds the bearer token the console sends to the assessment API.
// Tokens are issued elsewhere; this package only persists and inspects them.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of JWT claims the console displays.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// TokenInfo describes a stored token without verifying it. The API is the
// authority on validity; this is only used for display and warnings.
type TokenInfo struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	ExpiresAt *time.Time
}

// Expired reports whether the token carries an expiry that is before now.
func (i *TokenInfo) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// Inspect decodes a JWT without verifying its signature or claims.
// Opaque (non-JWT) tokens return an error; callers treat that as "no details".
func Inspect(token string) (*TokenInfo, error) {
	if token == "" {
		return nil, errors.New("empty token")
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, &Claims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}

	info := &TokenInfo{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Issuer:  claims.Issuer,
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
	}
	return info, nil
}
