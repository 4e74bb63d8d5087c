// Package sessiontoken signs and verifies the session cookie value.
// The cookie carries only an opaque session ID wrapped in a signed token;
// the session itself (and the user it belongs to) lives server-side.
package sessiontoken

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a cookie value cannot be verified.
var ErrInvalidToken = errors.New("invalid session token")

// Codec issues and parses HMAC-signed session tokens.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec signing with the provided secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue creates a signed token carrying the session ID and its expiry.
// The token never embeds user data or credential material.
func (c *Codec) Issue(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Parse verifies the token signature and returns the session ID it carries.
// Expired, tampered or non-HMAC tokens all fail with ErrInvalidToken.
func (c *Codec) Parse(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Only HMAC signing is accepted
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}

	return sid, nil
}
