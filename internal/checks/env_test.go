package checks

import (
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mongocheck/internal/config"
	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// newTestEnv builds an Env on default settings with no Docker client.
// The helpers under test here never touch the daemon.
func newTestEnv(t *testing.T) *Env {
	t.Helper()
	settings, err := config.Load("")
	require.NoError(t, err)
	return NewEnv(nil, settings, DefaultParams(), "0b5fcb41-9c39-4746-8a03-21fd3f0ba68f", zerolog.Nop(), 0)
}

// TestEnv_NextHostPort verifies sequential port hand-out from the
// configured base when no explicit start port is given.
func TestEnv_NextHostPort(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, 28017, env.NextHostPort())
	assert.Equal(t, 28018, env.NextHostPort())
	assert.Equal(t, 28019, env.NextHostPort())
}

// TestEnv_StartPort verifies an Env continues hand-out from the start
// port it was given and reports the cursor for the next Env to pick up.
// The runner relies on this so checks within one run never share a port.
func TestEnv_StartPort(t *testing.T) {
	settings, err := config.Load("")
	require.NoError(t, err)

	env := NewEnv(nil, settings, DefaultParams(), "run-1", zerolog.Nop(), 28020)
	assert.Equal(t, 28020, env.NextHostPort())
	assert.Equal(t, 28021, env.NextHostPort())
	assert.Equal(t, 28022, env.PortCursor())

	next := NewEnv(nil, settings, DefaultParams(), "run-1", zerolog.Nop(), env.PortCursor())
	assert.Equal(t, 28022, next.NextHostPort(),
		"a follow-up Env must not reissue ports the previous one handed out")
}

// TestEnv_ResourceCount verifies networks count as held resources along
// with containers, so teardown runs even when a check created a network
// but never got a container up.
func TestEnv_ResourceCount(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, 0, env.ResourceCount())

	env.networks = append(env.networks, "mongocheck-replica-set-0b5fcb41")
	assert.Equal(t, 1, env.ResourceCount())
	assert.Equal(t, []string{"mongocheck-replica-set-0b5fcb41"}, env.Networks())

	env.launched = append(env.launched, "c0ffee")
	assert.Equal(t, 2, env.ResourceCount())
}

// TestReadinessTimeout verifies readiness exhaustion carries its exit
// code through further wrapping, so callers can tell it apart from
// assertion failures.
func TestReadinessTimeout(t *testing.T) {
	base := errors.New("connection refused")
	err := fmt.Errorf("while waiting: %w", readinessTimeout("mongocheck-server-ready-0b5fcb41", base))

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitReadinessTimeout, cliErr.Code)
	assert.ErrorIs(t, err, base)
}

// TestShortID verifies run IDs are trimmed for container names and short
// inputs pass through unchanged.
func TestShortID(t *testing.T) {
	assert.Equal(t, "0b5fcb41", shortID("0b5fcb41-9c39-4746-8a03-21fd3f0ba68f"))
	assert.Equal(t, "abc", shortID("abc"))
}

// TestInstance_Target verifies target construction carries the settings'
// connect timeout and the instance's published port.
func TestInstance_Target(t *testing.T) {
	env := newTestEnv(t)
	inst := &Instance{env: env, HostPort: 28017}

	anon := inst.Target("", "", "")
	assert.Equal(t, "127.0.0.1", anon.Host)
	assert.Equal(t, 28017, anon.Port)
	assert.Empty(t, anon.Username)
	assert.Equal(t, env.Settings.Mongo.ConnectTimeout, anon.Timeout)

	authed := inst.Target("checkuser", "checkpass", "checkdb")
	assert.Equal(t, "checkuser", authed.Username)
	assert.Equal(t, "checkdb", authed.AuthDB)
}
