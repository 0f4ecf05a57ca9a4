package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	token, err := m.GenerateAccessToken("u1", "admin@campus.edu", true)
	require.NoError(t, err)

	claims, err := m.ParseAndValidate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin@campus.edu", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute)

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("other", time.Minute).GenerateAccessToken("u1", "a@b.c", false)
		require.NoError(t, err)
		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := NewJWTManager("test-secret", -time.Minute).GenerateAccessToken("u1", "a@b.c", false)
		require.NoError(t, err)
		_, err = m.ParseAndValidate(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ParseAndValidate("not-a-token")
		assert.Error(t, err)
	})
}

func TestBcryptPasswordHasher(t *testing.T) {
	h := NewBcryptPasswordHasher(4)

	hash, err := h.Hash("demo12345")
	require.NoError(t, err)
	assert.NotEqual(t, "demo12345", hash)

	assert.NoError(t, h.Compare(hash, "demo12345"))
	assert.Error(t, h.Compare(hash, "wrong"))
	assert.False(t, h.NeedsRehash(hash))
	assert.True(t, NewBcryptPasswordHasher(5).NeedsRehash(hash))
	assert.True(t, h.NeedsRehash("not-a-bcrypt-hash"))
}

func TestBcryptPasswordHasherCost(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"default", 0, bcrypt.DefaultCost},
		{"below minimum", 1, bcrypt.MinCost},
		{"above maximum", 99, bcrypt.MaxCost},
		{"in range", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewBcryptPasswordHasher(tt.in).Cost())
		})
	}
}
