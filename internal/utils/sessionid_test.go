package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSessionIDShape(t *testing.T) {
	id, err := NewSessionID()
	require.NoError(t, err)
	require.Len(t, id, SessionIDLength)
	for _, r := range id {
		require.True(t, strings.ContainsRune(sessionIDAlphabet, r), "unexpected rune %q", r)
	}
}

func TestNewSessionIDIsUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id, err := NewSessionID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate session id %s", id)
		seen[id] = struct{}{}
	}
}
