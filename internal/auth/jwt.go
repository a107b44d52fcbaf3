// Package auth issues and checks the session cookie that ties a browser tab
// to its lookup page.
//
// SESSION FLOW:
//  1. A browser arrives without a "session" cookie.
//  2. The Session middleware mints a new session ID (an xid), signs it into a
//     JWT and sets it as an HttpOnly cookie.
//  3. Later requests carry the cookie; the middleware validates it and puts
//     the session ID in the request context.
//  4. Handlers use the ID to find the page's Controller in the registry.
//
// Nothing about the user is stored in the token: it only names a session.
// The signature stops a client from picking another client's session ID.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<session id>","iss":"profile-lookup","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

const issuer = "profile-lookup"

// DefaultTokenTTL is the lifetime of a session token.
const DefaultTokenTTL = 24 * time.Hour

// TokenService signs and verifies session tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// The secret must be at least 16 characters.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// NewEphemeralTokenService creates a TokenService with a random secret.
// Tokens it issues stop validating when the process restarts, which only
// costs the browser its page state.
func NewEphemeralTokenService(ttl time.Duration) (*TokenService, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("auth: generating secret: %w", err)
	}
	return NewTokenService(hex.EncodeToString(buf), ttl)
}

// NewSessionID returns a fresh, globally unique session ID.
func NewSessionID() string {
	return xid.New().String()
}

// claims is the JWT payload. "sub" carries the session ID.
type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for sessionID with the service's default lifetime.
func (s *TokenService) Generate(sessionID string) (string, error) {
	return s.GenerateWithDuration(sessionID, s.ttl)
}

// GenerateWithDuration signs a token for sessionID that expires after d.
func (s *TokenService) GenerateWithDuration(sessionID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token and returns its session ID.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - signature matches the secret
//   - token is not expired, and carries an expiry at all
//   - issuer is "profile-lookup"
//   - algorithm is HS256 (rejects "none" and algorithm confusion)
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if _, err := xid.FromString(c.Subject); err != nil {
		return "", fmt.Errorf("auth: token subject is not a session id")
	}

	return c.Subject, nil
}
