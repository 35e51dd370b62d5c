package library

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequiredID(t *testing.T) {
	accepted := map[any]int{
		7:        7,
		"7":      7,
		" 1":     1,
		"1 ":     1,
		"1.0":    1,
		"1e0":    1,
		"-3":     -3,
		"42.000": 42,
	}
	for in, want := range accepted {
		got, err := requiredID(map[string]any{"id": in}, "id")
		require.NoError(t, err, "%q", in)
		require.Equal(t, want, got, "%q", in)
	}

	for _, in := range []any{"abc", "1.5", "", "  ", "NaN", "Inf", "1e300", 1.0} {
		_, err := requiredID(map[string]any{"id": in}, "id")
		require.True(t, IsKind(err, KindInvalidArgument), "%v: %v", in, err)
	}

	_, err := requiredID(map[string]any{}, "id")
	require.EqualError(t, err, `argument "id" is required`)
}
