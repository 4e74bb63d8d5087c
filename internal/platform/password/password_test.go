package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Hash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	t.Run("hash verifies against the original plaintext", func(t *testing.T) {
		hashed, err := h.Hash("correct horse battery staple")
		require.NoError(t, err, "failed to hash password")

		ok, err := h.Verify("correct horse battery staple", hashed)
		assert.NoError(t, err, "verify returned an operational error")
		assert.True(t, ok, "hash does not verify against its own plaintext")
	})

	t.Run("salt is randomized per call", func(t *testing.T) {
		first, err := h.Hash("same input")
		require.NoError(t, err)
		second, err := h.Hash("same input")
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "two hashes of the same input are identical")

		// Both must still verify independently
		for _, hashed := range []string{first, second} {
			ok, err := h.Verify("same input", hashed)
			assert.NoError(t, err)
			assert.True(t, ok)
		}
	})

	t.Run("invalid cost falls back to default", func(t *testing.T) {
		h := NewHasher(99)
		assert.Equal(t, bcrypt.DefaultCost, h.cost)
	})
}

func TestHasher_Verify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hashed, err := h.Hash("password123")
	require.NoError(t, err)

	t.Run("wrong password is a mismatch, not an error", func(t *testing.T) {
		ok, err := h.Verify("password124", hashed)
		assert.NoError(t, err, "mismatch must not surface as an error")
		assert.False(t, ok)
	})

	t.Run("malformed stored hash is an error, not a mismatch", func(t *testing.T) {
		ok, err := h.Verify("password123", "not-a-bcrypt-hash")
		assert.Error(t, err, "malformed hash must surface as an operational error")
		assert.False(t, ok)
	})

	t.Run("oauth sentinel never verifies", func(t *testing.T) {
		for _, guess := range []string{"", "oauth", Sentinel, "password123"} {
			ok, _ := h.Verify(guess, Sentinel)
			assert.False(t, ok, "sentinel verified against %q", guess)
		}
	})
}
