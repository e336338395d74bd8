package invariant

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckPassesSilently(t *testing.T) {
	require.NotPanics(t, func() {
		Check(true, "unreachable")
	})
}

func TestCheckPanicsWithViolation(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		v, ok := r.(Violation)
		require.True(t, ok)
		require.Equal(t, "count 3 mismatches want 4", v.Error())
	}()
	Check(false, "count %d mismatches want %d", 3, 4)
}
