package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token scopes.  Every token this service issues carries a "scope" claim so
// an access token can never be replayed as a refresh token and vice versa.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

// ErrInvalidToken is returned when a token fails signature verification, has
// expired, or carries an unexpected scope claim.
var ErrInvalidToken = errors.New("invalid token")

// SignedToken bundles a serialized JWT with its expiration time so callers
// can echo the expiry back to clients without re-parsing the token.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT identifying a user for the
// given number of minutes.  The subject claim carries the user's email and
// the role claim their current role; iat and exp are standard claims.
func NewAccessToken(secret, email, role string, ttlMin int) (SignedToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   email,
		"role":  role,
		"scope": ScopeAccess,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken signs a long-lived HS256 JWT with the refresh scope.  The
// raw string is handed to the client and also stored on the user row; only
// the latest stored token is accepted on refresh.
func NewRefreshToken(secret, email string, ttlDays int) (SignedToken, error) {
	return newScopedToken(secret, email, ScopeRefresh, time.Duration(ttlDays)*24*time.Hour)
}

// NewEmailToken signs the token embedded in confirmation links.
func NewEmailToken(secret, email string, ttlDays int) (SignedToken, error) {
	return newScopedToken(secret, email, ScopeEmail, time.Duration(ttlDays)*24*time.Hour)
}

func newScopedToken(secret, email, scope string, ttl time.Duration) (SignedToken, error) {
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":   email,
		"scope": scope,
		"exp":   exp.Unix(),
		"iat":   time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// ParseToken verifies the signature and expiry of a token and checks that
// its scope claim matches the expected scope.  It returns the subject claim
// (the user's email).  Any failure collapses to ErrInvalidToken so callers
// cannot leak the reason to clients.
func ParseToken(secret, raw, wantScope string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC to rule out
		// algorithm-substitution tricks.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if scope, _ := claims["scope"].(string); scope != wantScope {
		return "", ErrInvalidToken
	}
	email, _ := claims["sub"].(string)
	if email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}
