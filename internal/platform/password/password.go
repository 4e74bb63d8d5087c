// Package password provides one-way hashing and verification of user passwords.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Sentinel is stored in the password column for accounts created through
// Google OAuth. It is not a valid bcrypt hash, so it can never verify
// against any submitted password; callers treat it as "no usable password".
const Sentinel = "oauth"

// Hasher hashes and verifies passwords with bcrypt.
// The cost factor is fixed per process; raising it only affects newly
// created hashes, stored hashes keep the cost they were created with.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher with the given bcrypt cost factor.
// A cost outside bcrypt's supported range falls back to the default cost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of the given plaintext.
// The salt is randomized per call, so the same plaintext produces a
// different hash on every invocation.
func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored hash.
// A mismatch returns (false, nil); a malformed stored hash or any other
// bcrypt fault returns (false, err) so callers can tell an operational
// failure apart from a wrong password.
func (h *Hasher) Verify(plain, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("failed to verify password: %w", err)
}
