package docker

import (
	"errors"
	"fmt"
	"testing"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// TestClassifyCreateError verifies create failures map onto the exit-code
// taxonomy: a missing image gets its own code (the user fixes the image,
// not the daemon), everything else points at the daemon.
func TestClassifyCreateError(t *testing.T) {
	t.Run("image not found", func(t *testing.T) {
		cause := fmt.Errorf("No such image: myrepo/mongodb:4.0: %w", cerrdefs.ErrNotFound)
		err := classifyCreateError(cause, "myrepo/mongodb:4.0", "mongocheck-server-ready-0b5fcb41")

		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitImageNotFound, cliErr.Code)
		assert.Contains(t, cliErr.Message, "myrepo/mongodb:4.0")
		assert.ErrorIs(t, err, cerrdefs.ErrNotFound)
	})

	t.Run("daemon error", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := classifyCreateError(cause, "myrepo/mongodb:4.0", "mongocheck-server-ready-0b5fcb41")

		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitDockerNotRunning, cliErr.Code)
	})
}
