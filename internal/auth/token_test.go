package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/user"
)

func TestTokens_IssueAndVerify(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	signed, err := tokens.Issue(&user.User{
		ID:    "u1",
		Email: "ada@example.com",
		Role:  user.RoleAdmin,
	})
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.True(t, claims.IsAdmin())
}

func TestTokens_VerifyWrongSecret(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)
	other := NewTokens([]byte("other-secret"), time.Hour)

	signed, err := tokens.Issue(&user.User{ID: "u1", Role: user.RoleUser})
	require.NoError(t, err)

	_, err = other.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_VerifyExpired(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Millisecond)

	signed, err := tokens.Issue(&user.User{ID: "u1", Role: user.RoleUser})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = tokens.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_VerifyGarbage(t *testing.T) {
	tokens := NewTokens([]byte("test-secret"), time.Hour)

	_, err := tokens.Verify("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPassword(hash, "s3cret-password"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
