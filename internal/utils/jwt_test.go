package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("access-secret", "user-1", "alice", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)

	claims, err := VerifyToken(at.Token, "access-secret")
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Sub)
	require.Equal(t, "alice", claims.Username)
	require.Empty(t, claims.TokenID)
	require.WithinDuration(t, time.Now().UTC().Add(15*time.Minute), claims.Exp, 5*time.Second)
}

func TestRefreshTokenCarriesUniqueID(t *testing.T) {
	first, err := NewRefreshToken("refresh-secret", "user-1", "alice", 7)
	require.NoError(t, err)
	second, err := NewRefreshToken("refresh-secret", "user-1", "alice", 7)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	claims, err := VerifyToken(first.Token, "refresh-secret")
	require.NoError(t, err)
	require.NotEmpty(t, claims.TokenID)
	require.Equal(t, first.Exp, claims.Exp)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("access-secret", "user-1", "alice", 15)
	require.NoError(t, err)

	_, err = VerifyToken(at.Token, "refresh-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	at, err := NewAccessToken("access-secret", "user-1", "alice", 15)
	require.NoError(t, err)

	tampered := at.Token[:len(at.Token)-2] + "xx"
	_, err = VerifyToken(tampered, "access-secret")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = VerifyToken("not-a-jwt", "access-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	at, err := NewAccessToken("access-secret", "user-1", "alice", -1)
	require.NoError(t, err)

	_, err = VerifyToken(at.Token, "access-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshHashEqual(t *testing.T) {
	rt, err := NewRefreshToken("refresh-secret", "user-1", "alice", 7)
	require.NoError(t, err)

	digest := HashRefreshToken(rt.Token)
	require.Len(t, digest, 64)
	require.True(t, RefreshHashEqual(digest, rt.Token))
	require.False(t, RefreshHashEqual(digest, rt.Token+"x"))
	require.False(t, RefreshHashEqual("", rt.Token))
}
