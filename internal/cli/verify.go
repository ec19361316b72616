// verify.go implements the "mongocheck verify" command — the primary
// operation of the harness.
//
// Orchestration steps:
//  1. Load settings (defaults → file → environment → flags)
//  2. Load the suite file, if given, and merge its parameter overrides
//  3. Connect to Docker and verify the daemon is up
//  4. Run the selected checks sequentially, tearing down after each
//  5. Output per-check results and a summary (text or JSON)
//  6. Exit non-zero if any check failed
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/mongocheck/internal/checks"
	"github.com/mmr-tortoise/mongocheck/internal/config"
	"github.com/mmr-tortoise/mongocheck/internal/docker"
	"github.com/mmr-tortoise/mongocheck/internal/logging"
	"github.com/mmr-tortoise/mongocheck/internal/model"
	"github.com/mmr-tortoise/mongocheck/internal/suite"
)

// verifyFlags holds the flag values for the verify command.
// These are bound to cobra flags in NewVerifyCommand.
type verifyFlags struct {
	image     string        // --image: image reference override
	only      []string      // --only: subset of checks to run
	suitePath string        // --suite: JSONC suite file
	keep      bool          // --keep: skip container teardown
	timeout   time.Duration // --timeout: per-container readiness budget
}

// NewVerifyCommand creates the "verify" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewVerifyCommand() *cobra.Command {
	flags := &verifyFlags{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the verification checks against the image",
		Long: `Run the verification checks against the MongoDB container image.

Each check launches one or more containers from the image, waits for them to
become ready, asserts on observable behavior, and cleans up after itself.
Checks run sequentially; a failing check does not stop the rest, but any
failure makes the command exit non-zero.

Examples:
  mongocheck verify
  mongocheck verify --image myrepo/mongodb:4.0
  mongocheck verify --only user-auth --only replica-set
  mongocheck verify --suite nightly.jsonc --keep`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.image, "image", "", "Image reference to verify (default from settings)")
	cmd.Flags().StringSliceVar(&flags.only, "only", nil, "Run only the named checks (repeatable)")
	cmd.Flags().StringVar(&flags.suitePath, "suite", "", "Path to a JSONC suite file")
	cmd.Flags().BoolVar(&flags.keep, "keep", false, "Keep containers after the run for inspection")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "Readiness budget per container, e.g. 90s (default from settings)")

	return cmd
}

// runVerify is the main orchestration function for the verify command.
func runVerify(ctx context.Context, flags *verifyFlags) error {
	log := logging.Get()

	// Step 1: settings. Flags win over environment and file values.
	settings, err := config.Load(configPath)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to load settings", err)
	}
	if flags.image != "" {
		settings.Image = flags.image
	}
	if flags.keep {
		settings.KeepContainers = true
	}
	if flags.timeout > 0 {
		applyTimeout(settings, flags.timeout)
	}

	// Step 2: suite file and check selection. --only wins over the suite
	// file's check list; parameters always come from the suite file.
	params := checks.DefaultParams()
	names := flags.only
	if flags.suitePath != "" {
		s, loadErr := suite.Load(flags.suitePath)
		if loadErr != nil {
			return loadErr
		}
		params = s.MergeParams(params)
		if len(names) == 0 {
			names = s.Checks
		}
	}
	// Validate --only names before touching Docker.
	if _, err := checks.Select(names); err != nil {
		return err
	}

	// Step 3: Docker connectivity.
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	// Step 4: run.
	runner := &suite.Runner{
		Docker:   cli,
		Settings: settings,
		Params:   params,
		Log:      log,
	}
	result, err := runner.Run(ctx, names)
	if err != nil {
		return err
	}

	// Step 5: output.
	printVerifyResult(result)

	// Step 6: exit code. Any failed check fails the invocation.
	if result.Failed() {
		_, failed, _ := result.Counts()
		return model.NewCLIError(model.ExitCheckFailed,
			fmt.Sprintf("%d check(s) failed", failed))
	}
	return nil
}

// applyTimeout converts the --timeout duration into a readiness attempt
// budget at the settings' poll interval. Polling stays fixed-interval;
// the flag only changes how many attempts fit in the budget, never less
// than one.
func applyTimeout(settings *config.Settings, timeout time.Duration) {
	attempts := int(timeout / settings.Readiness.Interval)
	if attempts < 1 {
		attempts = 1
	}
	settings.Readiness.Attempts = attempts
}

// printVerifyResult outputs the run results in text or JSON format.
func printVerifyResult(result *model.SuiteResult) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Verified image %q\n\n", result.Image)
	for _, res := range result.Results {
		switch res.Status {
		case model.StatusSkipped:
			fmt.Printf("  %-22s skipped\n", res.Name)
		case model.StatusPassed:
			fmt.Printf("  %-22s passed   (%s)\n", res.Name, res.Duration.Round(10*time.Millisecond))
		case model.StatusFailed:
			fmt.Printf("  %-22s FAILED   (%s)\n", res.Name, res.Duration.Round(10*time.Millisecond))
			// Indent the multi-line diagnostic detail under the check.
			for _, line := range strings.Split(res.Detail, "\n") {
				fmt.Printf("      %s\n", line)
			}
		}
	}

	passed, failed, skipped := result.Counts()
	fmt.Printf("\n%d passed, %d failed, %d skipped\n", passed, failed, skipped)
}
