package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mongocheck/internal/config"
)

// TestApplyTimeout verifies the --timeout duration converts into a
// readiness attempt budget at the configured poll interval, never
// dropping below a single attempt.
func TestApplyTimeout(t *testing.T) {
	settings, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, settings.Readiness.Interval)

	applyTimeout(settings, 90*time.Second)
	assert.Equal(t, 45, settings.Readiness.Attempts)
	assert.Equal(t, 2*time.Second, settings.Readiness.Interval,
		"the poll interval stays fixed; only the attempt count scales")

	applyTimeout(settings, 500*time.Millisecond)
	assert.Equal(t, 1, settings.Readiness.Attempts,
		"a budget below one interval still polls once")
}

// TestVerifyCommandFlags verifies the verify command registers its full
// flag surface.
func TestVerifyCommandFlags(t *testing.T) {
	cmd := NewVerifyCommand()
	for _, name := range []string{"image", "only", "suite", "keep", "timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag --%s should be registered", name)
	}
}
