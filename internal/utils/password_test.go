package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(12)
	require.NoError(t, err)
	require.Len(t, password, 12)

	for _, r := range password {
		require.True(t, strings.ContainsRune(passwordCharset, r), "unexpected character %q", r)
	}
}

func TestGeneratePassword_Distinct(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password, err := GeneratePassword(12)
		require.NoError(t, err)
		require.False(t, seen[password], "generated a duplicate password")
		seen[password] = true
	}
}
