package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd", 4)
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-passw0rd", hash)

	require.True(t, VerifyPassword(hash, "s3cret-passw0rd"))
	require.False(t, VerifyPassword(hash, "wrong-password"))
	require.False(t, VerifyPassword("not-a-bcrypt-hash", "s3cret-passw0rd"))
}

func TestPasswordHashIsSalted(t *testing.T) {
	a, err := HashPassword("same-input", 4)
	require.NoError(t, err)
	b, err := HashPassword("same-input", 4)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
