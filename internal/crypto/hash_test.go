package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewPasswordHasher_Cost(t *testing.T) {
	tests := []struct {
		name     string
		cost     int
		wantCost int
	}{
		{name: "min cost kept", cost: bcrypt.MinCost, wantCost: bcrypt.MinCost},
		{name: "zero falls back to default", cost: 0, wantCost: bcrypt.DefaultCost},
		{name: "above max falls back to default", cost: bcrypt.MaxCost + 1, wantCost: bcrypt.DefaultCost},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.wantCost == bcrypt.DefaultCost && testing.Short() {
				t.Skip("default cost is slow")
			}
			h, err := NewPasswordHasher(tt.cost)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, h.Cost())
		})
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("pw1")
	require.NoError(t, err)

	// хеш не содержит пароль и имеет формат bcrypt
	assert.NotContains(t, hash, "pw1")
	assert.True(t, strings.HasPrefix(hash, "$2a$"), "unexpected hash prefix: %s", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	assert.NoError(t, h.Verify(hash, "pw1"))
	assert.ErrorIs(t, h.Verify(hash, "pw2"), ErrMismatch)
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	h := newTestHasher(t)

	hash1, err := h.Hash("same password")
	require.NoError(t, err)
	hash2, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "each hash must use a fresh salt")
	assert.NoError(t, h.Verify(hash1, "same password"))
	assert.NoError(t, h.Verify(hash2, "same password"))
}

func TestPasswordHasher_EmptyPassword(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("")
	require.Error(t, err)
	assert.Empty(t, hash)
}

func TestPasswordHasher_CorruptHash(t *testing.T) {
	h := newTestHasher(t)

	err := h.Verify("not-a-bcrypt-hash", "pw1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}

func TestPasswordHasher_VerifyDummy(t *testing.T) {
	h := newTestHasher(t)

	assert.ErrorIs(t, h.VerifyDummy("anything"), ErrMismatch)
	assert.ErrorIs(t, h.VerifyDummy(""), ErrMismatch)
}
