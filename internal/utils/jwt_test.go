package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("access-secret", "Alice", "alice@example.com", 42, 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := VerifyAccess("access-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.WithinDuration(t, tok.Exp, claims.ExpiresAt.Time, time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := NewRefreshToken("refresh-secret", "alice", 24)
	require.NoError(t, err)

	claims, err := VerifyRefresh("refresh-secret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("s", "alice", "a@example.com", 1, -1)
	require.NoError(t, err)

	_, err = VerifyAccess("s", tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	ref, err := NewRefreshToken("s", "alice", -1)
	require.NoError(t, err)

	_, err = VerifyRefresh("s", ref.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("right", "alice", "a@example.com", 1, 15)
	require.NoError(t, err)

	_, err = VerifyAccess("wrong", tok.Token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestVerifyGarbage(t *testing.T) {
	t.Parallel()

	_, err := VerifyAccess("s", "not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = VerifyRefresh("s", "")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

// Access and refresh tokens are signed with separate secrets; one must not
// validate under the other.
func TestSecretsAreNotInterchangeable(t *testing.T) {
	t.Parallel()

	access, err := NewAccessToken("access-secret", "alice", "a@example.com", 1, 15)
	require.NoError(t, err)

	_, err = VerifyAccess("refresh-secret", access.Token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
