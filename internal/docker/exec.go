package docker

import (
	"bytes"
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// ExecResult carries the captured output of one exec session.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ExecCapture runs a command inside a running container and captures its
// stdout, stderr, and exit code. The config-file check uses this to read
// the mongod configuration the image's entrypoint rendered.
//
// The command runs without a TTY so that stdout and stderr stay separate
// streams in the multiplexed attach protocol.
func ExecCapture(ctx context.Context, cli *Client, containerID string, cmd []string) (*ExecResult, error) {
	created, err := cli.Inner().ContainerExecCreate(ctx, containerID, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create exec session in container %q", containerID),
			err,
		)
	}

	// Attach starts the exec and hijacks the connection for its output.
	attach, err := cli.Inner().ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to attach to exec session in container %q", containerID),
			err,
		)
	}
	defer attach.Close()

	// Demultiplex the combined stream into stdout and stderr buffers.
	// StdCopy blocks until the exec'd process closes its output, which
	// for short commands like `cat` means until it exits.
	var stdout, stderr bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdout, &stderr, attach.Reader); err != nil {
		return nil, fmt.Errorf("failed to read exec output: %w", err)
	}

	inspect, err := cli.Inner().ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect exec session: %w", err)
	}

	return &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: inspect.ExitCode,
	}, nil
}
