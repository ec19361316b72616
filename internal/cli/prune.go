package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mongocheck/internal/docker"
	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// NewPruneCommand creates the "prune" cobra command. Prune removes every
// mongocheck-labeled container and network on the host — the escape hatch
// for runs that were interrupted before their own teardown, or that were
// run with --keep.
func NewPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove leftover containers and networks from previous runs",
		Long: `Remove every container and network labeled by mongocheck, regardless of
which run created it. Only resources carrying the mongocheck.managed-by
label are touched; nothing else on the host is affected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrune(cmd.Context())
		},
	}
}

// runPrune connects to Docker and removes all managed resources.
func runPrune(ctx context.Context) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	removed, err := docker.PruneManaged(ctx, cli)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "prune failed", err)
	}

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(map[string]int{"removedContainers": removed}, "", "  ")
		fmt.Println(string(data))
	} else {
		fmt.Printf("Removed %d container(s)\n", removed)
	}
	return nil
}
