package docker

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"

	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// CreateNetwork creates a user-defined bridge network carrying the run's
// labels. The replica-set check uses one so its members can resolve each
// other by container alias, which plain bridge networking does not offer.
func CreateNetwork(ctx context.Context, cli *Client, name, runID, checkName string) (string, error) {
	resp, err := cli.Inner().NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: BuildLabels(runID, checkName),
	})
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to create network %q", name),
			err,
		)
	}
	return resp.ID, nil
}

// RemoveNetwork removes a network by ID or name.
func RemoveNetwork(ctx context.Context, cli *Client, networkID string) error {
	if err := cli.Inner().NetworkRemove(ctx, networkID); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove network %q", networkID),
			err,
		)
	}
	return nil
}

// removeNetworksByFilter removes all networks matching the given label
// filter, collecting per-network errors into one.
func removeNetworksByFilter(ctx context.Context, cli *Client, filterArgs filters.Args) error {
	networks, err := cli.Inner().NetworkList(ctx, network.ListOptions{Filters: filterArgs})
	if err != nil {
		return fmt.Errorf("failed to list networks: %w", err)
	}

	var errs []string
	for _, n := range networks {
		if removeErr := cli.Inner().NetworkRemove(ctx, n.ID); removeErr != nil {
			errs = append(errs, fmt.Sprintf("network %s: %v", n.Name, removeErr))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// PruneManaged removes every mongocheck-labeled container and network on
// the host, regardless of which run created them. This backs the
// `mongocheck prune` command for cleaning up after interrupted runs.
func PruneManaged(ctx context.Context, cli *Client) (removed int, err error) {
	containers, err := ListManaged(ctx, cli)
	if err != nil {
		return 0, err
	}

	var errs []string
	for _, c := range containers {
		if removeErr := RemoveContainer(ctx, cli, c.ContainerID, true); removeErr != nil {
			errs = append(errs, removeErr.Error())
			continue
		}
		removed++
	}

	filterArgs := filters.NewArgs(filters.Arg("label", ManagedFilter()))
	if netErr := removeNetworksByFilter(ctx, cli, filterArgs); netErr != nil {
		errs = append(errs, netErr.Error())
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("prune incomplete: %s", strings.Join(errs, "; "))
	}
	return removed, nil
}
