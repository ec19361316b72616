// container.go implements container lifecycle operations for the harness.
// Every container is created detached, labeled for discovery, and removed
// unconditionally at the end of the run unless the user asked to keep it.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"

	"github.com/mmr-tortoise/mongocheck/internal/image"
	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// RunSpec describes one container to launch from the image under test.
type RunSpec struct {
	// Name is the container name. Callers derive it from the check name
	// plus a run-unique suffix so repeated runs never collide.
	Name string

	// CheckName and RunID feed the mongocheck.* labels.
	CheckName string
	RunID     string

	// Env holds the image contract environment variables for this
	// container (MONGODB_USERNAME, MONGODB_ADMIN_PASSWORD, ...).
	Env map[string]string

	// HostPort, when non-zero, publishes the mongod port (27017/tcp) on
	// 127.0.0.1:HostPort so the harness can connect from the host.
	HostPort int

	// NetworkName, when non-empty, attaches the container to that
	// user-defined network with NetworkAlias as its DNS name. Used by the
	// replica-set check so members can reach each other by stable names.
	NetworkName  string
	NetworkAlias string

	// Cmd overrides the image command, if needed. Usually empty — the
	// image's own entrypoint is the thing under test.
	Cmd []string
}

// RunDetached creates and starts a container per the spec and returns its
// ID. If the start fails the created container is removed before the error
// is returned, so a failed launch never leaks a "created" container.
func RunDetached(ctx context.Context, cli *Client, imageRef string, spec RunSpec) (string, error) {
	// Flatten the env map into Docker's KEY=VALUE form.
	env := make([]string, 0, len(spec.Env))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}

	mongoPort := nat.Port(fmt.Sprintf("%d/tcp", image.Port))

	cfg := &container.Config{
		Image:  imageRef,
		Env:    env,
		Labels: BuildLabels(spec.RunID, spec.CheckName),
	}
	if len(spec.Cmd) > 0 {
		cfg.Cmd = spec.Cmd
	}

	hostCfg := &container.HostConfig{}
	if spec.HostPort > 0 {
		cfg.ExposedPorts = nat.PortSet{mongoPort: struct{}{}}
		// Bind to loopback only. The harness connects from the same host,
		// and test instances with well-known passwords must not be
		// reachable from the network.
		hostCfg.PortBindings = nat.PortMap{
			mongoPort: []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: strconv.Itoa(spec.HostPort)},
			},
		}
	}

	var netCfg *network.NetworkingConfig
	if spec.NetworkName != "" {
		netCfg = &network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.NetworkName: {Aliases: []string{spec.NetworkAlias}},
			},
		}
	}

	created, err := cli.Inner().ContainerCreate(ctx, cfg, hostCfg, netCfg, nil, spec.Name)
	if err != nil {
		return "", classifyCreateError(err, imageRef, spec.Name)
	}

	if err := cli.Inner().ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		// Best-effort cleanup of the half-launched container.
		_ = cli.Inner().ContainerRemove(ctx, created.ID, container.RemoveOptions{Force: true})
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", spec.Name),
			err,
		)
	}

	return created.ID, nil
}

// classifyCreateError maps a ContainerCreate failure onto the exit-code
// taxonomy. Creating from an image that was never pulled or built is the
// one failure the user fixes on the image side rather than the daemon
// side, so it gets its own code.
func classifyCreateError(err error, imageRef, name string) error {
	if client.IsErrNotFound(err) {
		return model.WrapCLIError(
			model.ExitImageNotFound,
			fmt.Sprintf("image %q not found — build or pull it before verifying", imageRef),
			err,
		)
	}
	return model.WrapCLIError(
		model.ExitDockerNotRunning,
		fmt.Sprintf("failed to create container %q from image %q", name, imageRef),
		err,
	)
}

// LogTail fetches the last n lines of a container's combined output.
// It is used purely for failure diagnostics, so errors degrade to an
// explanatory placeholder rather than failing the caller.
func LogTail(ctx context.Context, cli *Client, containerID string, n int) string {
	rc, err := cli.Inner().ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       strconv.Itoa(n),
	})
	if err != nil {
		return fmt.Sprintf("(could not fetch container logs: %v)", err)
	}
	defer func() { _ = rc.Close() }()

	// Container output is multiplexed when the container has no TTY;
	// stdcopy demultiplexes the stream into plain text.
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, rc); err != nil {
		return fmt.Sprintf("(could not read container logs: %v)", err)
	}
	return strings.TrimSpace(buf.String())
}

// StopContainer stops a running container by its ID. A nil timeout uses
// Docker's default (10 seconds of SIGTERM grace before SIGKILL).
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	if err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by its ID. When force is true,
// Docker kills the container first, which is what teardown wants.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         force,
		RemoveVolumes: true,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}

// ListManaged queries the daemon for all containers carrying the
// mongocheck management label, including stopped ones. This is the
// discovery path for `mongocheck prune`.
func ListManaged(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	// Filter server-side rather than listing everything and filtering in Go.
	filterArgs := filters.NewArgs(filters.Arg("label", ManagedFilter()))

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}
	return result, nil
}

// TeardownRun force-removes every container and network created by the
// given run. Errors are collected rather than aborting, so one stuck
// container does not strand the rest.
func TeardownRun(ctx context.Context, cli *Client, runID string) error {
	filterArgs := filters.NewArgs(filters.Arg("label", RunFilter(runID)))

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list run containers for teardown",
			err,
		)
	}

	var errs []string
	for _, c := range containers {
		removeErr := cli.Inner().ContainerRemove(ctx, c.ID, container.RemoveOptions{
			Force:         true,
			RemoveVolumes: true,
		})
		if removeErr != nil {
			errs = append(errs, fmt.Sprintf("container %s: %v", c.ID[:12], removeErr))
		}
	}

	// Networks must go after their containers are gone.
	if err := removeNetworksByFilter(ctx, cli, filterArgs); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("teardown incomplete: %s", strings.Join(errs, "; "))
	}
	return nil
}

// containerToInfo converts a Docker API container summary to our domain
// model ContainerInfo. This is a pure mapping function with no side effects.
func containerToInfo(c container.Summary) model.ContainerInfo {
	// Docker returns names with a leading "/" that we strip for readability.
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		CheckName:     c.Labels[LabelCheck],
		Status:        c.State,
		Labels:        c.Labels,
	}
}
