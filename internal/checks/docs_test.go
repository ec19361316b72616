package checks

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mongocheck/internal/image"
)

// TestMissingMarkers verifies the substring matcher reports exactly the
// absent markers, in marker order.
func TestMissingMarkers(t *testing.T) {
	content := "docs mention MONGODB_USERNAME and /var/lib/mongodb"
	markers := []string{"MONGODB_USERNAME", "MONGODB_PASSWORD", "/var/lib/mongodb", "27017"}

	missing := MissingMarkers(content, markers)
	assert.Equal(t, []string{"MONGODB_PASSWORD", "27017"}, missing)
}

// TestMissingMarkers_Complete verifies a complete document yields nothing.
func TestMissingMarkers_Complete(t *testing.T) {
	content := "MONGODB_USERNAME plus 27017"
	assert.Empty(t, MissingMarkers(content, []string{"MONGODB_USERNAME", "27017"}))
}

// TestRequiredMarkers verifies the marker list is derived from the image
// contract: every env var, both filesystem paths, and the port.
func TestRequiredMarkers(t *testing.T) {
	markers := RequiredMarkers()

	for _, envVar := range image.EnvVars() {
		assert.Contains(t, markers, envVar)
	}
	assert.Contains(t, markers, image.DataDir)
	assert.Contains(t, markers, image.ConfigFile)
	assert.Contains(t, markers, "27017")
}

// TestRepositoryReadmeIsComplete runs the docs assertion against this
// repository's own README, so a doc regression fails the unit tests too,
// not just a live `mongocheck verify`.
func TestRepositoryReadmeIsComplete(t *testing.T) {
	raw, err := os.ReadFile("../../README.md")
	require.NoError(t, err, "repository README must exist")

	missing := MissingMarkers(string(raw), RequiredMarkers())
	assert.Empty(t, missing, "README is missing required content markers")
}
