package featureflag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatureFlag(t *testing.T) {
	f := New([]string{string(FlagFrameStatsLogging)})

	t.Run("is set", func(t *testing.T) {
		require.True(t, f.IsSet(FlagFrameStatsLogging))
		require.False(t, f.IsSet(FlagDisableFog))
	})

	t.Run("run if enabled", func(t *testing.T) {
		var ran bool
		f.IfSet(FlagFrameStatsLogging, func() {
			ran = true
		})
		require.True(t, ran)

		f.IfSet(FlagDisableFog, func() {
			t.Fatal("disabled flag ran")
		})
	})

	t.Run("run if disabled", func(t *testing.T) {
		var ran bool
		f.IfNotSet(FlagDisableFog, func() {
			ran = true
		})
		require.True(t, ran)

		f.IfNotSet(FlagFrameStatsLogging, func() {
			t.Fatal("enabled flag ran")
		})
	})
}
