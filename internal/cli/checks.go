package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mongocheck/internal/checks"
)

// NewChecksCommand creates the "checks" cobra command, which lists the
// registered checks and their descriptions without running anything.
func NewChecksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the available verification checks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printChecks()
			return nil
		},
	}
}

// printChecks outputs the check registry in text or JSON format.
func printChecks() {
	all := checks.All()

	if IsJSONOutput() {
		type checkJSON struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}
		list := make([]checkJSON, 0, len(all))
		for _, c := range all {
			list = append(list, checkJSON{Name: c.Name(), Description: c.Description()})
		}
		data, _ := json.MarshalIndent(list, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, c := range all {
		fmt.Printf("  %-22s %s\n", c.Name(), c.Description())
	}
}
