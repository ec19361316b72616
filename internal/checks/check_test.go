package checks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// TestAll_NamesAreValid verifies every registered check has a unique name
// that satisfies the model's naming rules and a non-empty description.
func TestAll_NamesAreValid(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range All() {
		assert.NoError(t, model.ValidateCheckName(c.Name()))
		assert.NotEmpty(t, c.Description(), "check %q needs a description", c.Name())
		assert.False(t, seen[c.Name()], "duplicate check name %q", c.Name())
		seen[c.Name()] = true
	}
}

// TestSelect_Empty verifies an empty selection returns the full registry.
func TestSelect_Empty(t *testing.T) {
	selected, err := Select(nil)
	require.NoError(t, err)
	assert.Len(t, selected, len(All()))
}

// TestSelect_Subset verifies selection preserves registry execution order
// regardless of the order names were given in.
func TestSelect_Subset(t *testing.T) {
	selected, err := Select([]string{"replica-set", "docs"})
	require.NoError(t, err)

	require.Len(t, selected, 2)
	assert.Equal(t, "docs", selected[0].Name(), "docs runs before replica-set in registry order")
	assert.Equal(t, "replica-set", selected[1].Name())
}

// TestSelect_Unknown verifies unknown names fail with the dedicated exit
// code and a message listing the valid choices.
func TestSelect_Unknown(t *testing.T) {
	_, err := Select([]string{"docs", "no-such-check"})
	require.Error(t, err)

	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok, "expected a CLIError")
	assert.Equal(t, model.ExitUnknownCheck, cliErr.Code)
	assert.Contains(t, cliErr.Message, "no-such-check")
	assert.Contains(t, cliErr.Message, "user-auth", "error should list valid check names")
}
