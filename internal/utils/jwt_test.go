package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("super-secret", 42, "customer", 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok.TokenID)

	claims, err := VerifyAccessToken("super-secret", tok.Token)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.Equal(t, "customer", claims.Role)
	require.Equal(t, tok.TokenID, claims.TokenID)
	require.WithinDuration(t, tok.Exp, claims.ExpiresAt, time.Second)
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("secret", 1, "customer", -1)
	require.NoError(t, err)

	_, err = VerifyAccessToken("secret", tok.Token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("right-secret", 1, "staff", 10)
	require.NoError(t, err)

	_, err = VerifyAccessToken("wrong-secret", tok.Token)
	require.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not.a.jwt", "garbage"} {
		_, err := VerifyAccessToken("secret", raw)
		require.ErrorIs(t, err, ErrTokenMalformed, "raw=%q", raw)
	}
}

func TestTokenIDsUnique(t *testing.T) {
	t.Parallel()

	a, err := NewAccessToken("s", 1, "customer", 10)
	require.NoError(t, err)
	b, err := NewAccessToken("s", 1, "customer", 10)
	require.NoError(t, err)
	require.NotEqual(t, a.TokenID, b.TokenID)
}

func TestRemainingTTL(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	c := AccessClaims{ExpiresAt: now.Add(time.Minute)}
	require.Equal(t, time.Minute, c.RemainingTTL(now))
	require.Equal(t, time.Duration(0), c.RemainingTTL(now.Add(2*time.Minute)))
}

func TestHashRefreshRawStable(t *testing.T) {
	t.Parallel()

	require.Equal(t, HashRefreshRaw("abc"), HashRefreshRaw("abc"))
	require.NotEqual(t, HashRefreshRaw("abc"), HashRefreshRaw("abd"))
	require.Len(t, HashRefreshRaw("abc"), 64)
}
