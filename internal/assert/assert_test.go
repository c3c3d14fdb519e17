package assert

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrueDoesNotPanicWhenConditionHolds(t *testing.T) {
	require.NotPanics(t, func() {
		True(1+1 == 2, "unreachable")
	})
}

func TestTruePanicsWithMessage(t *testing.T) {
	require.PanicsWithValue(t, "bad: 3", func() {
		True(false, "bad: %d", 3)
	})
}

func TestRelativelyCloseAcceptsSmallDiff(t *testing.T) {
	require.NotPanics(t, func() {
		RelativelyClose(1.0000001, 1.0, 1e-5, "mismatch")
	})
}

func TestRelativelyClosePanicsOnLargeDiff(t *testing.T) {
	require.Panics(t, func() {
		RelativelyClose(2.0, 1.0, 1e-5, "mismatch")
	})
}

func TestRelativelyCloseHandlesZeroReference(t *testing.T) {
	require.NotPanics(t, func() {
		RelativelyClose(0.0, 0.0, 1e-5, "mismatch")
	})
	require.Panics(t, func() {
		RelativelyClose(1.0, 0.0, 1e-5, "mismatch")
	})
}
