package otp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCode_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, 6, "code must keep leading zeros: %q", code)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit in code %q", code)
		}
		seen[code] = struct{}{}
	}
	// 500 draws from a million-value space collapsing to a handful of
	// distinct codes would mean a broken random source.
	require.Greater(t, len(seen), 400)
}
