package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies a load with no file and no environment
// produces the built-in defaults.
func TestLoad_Defaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongocheck/mongodb:latest", settings.Image)
	assert.Equal(t, "README.md", settings.DocsPath)
	assert.Equal(t, 28017, settings.HostPortBase)
	assert.False(t, settings.KeepContainers)
	assert.Equal(t, 30, settings.Readiness.Attempts)
	assert.Equal(t, 2*time.Second, settings.Readiness.Interval)
	assert.Equal(t, 5*time.Second, settings.Mongo.ConnectTimeout)
	assert.Equal(t, "rs0", settings.Mongo.ReplicaSetName)
}

// TestLoad_EnvOverride verifies MONGOCHECK_* environment variables win
// over defaults, including nested keys.
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MONGOCHECK_IMAGE", "myrepo/mongodb:4.0")
	t.Setenv("MONGOCHECK_READINESS_ATTEMPTS", "7")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "myrepo/mongodb:4.0", settings.Image)
	assert.Equal(t, 7, settings.Readiness.Attempts)
}

// TestLoad_File verifies values from a mongocheck.yaml file, with
// environment still taking precedence over the file.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mongocheck.yaml")
	content := `image: filerepo/mongodb:3.6
host_port_base: 31000
readiness:
  attempts: 12
  interval: 500ms
mongo:
  replica_set_name: testset
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "filerepo/mongodb:3.6", settings.Image)
	assert.Equal(t, 31000, settings.HostPortBase)
	assert.Equal(t, 12, settings.Readiness.Attempts)
	assert.Equal(t, 500*time.Millisecond, settings.Readiness.Interval)
	assert.Equal(t, "testset", settings.Mongo.ReplicaSetName)

	// Untouched keys keep their defaults.
	assert.Equal(t, "README.md", settings.DocsPath)
}

// TestLoad_MissingFile verifies an explicitly named but absent config
// file is an error rather than a silent fallback to defaults.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
