package suite

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/mongocheck/internal/checks"
	"github.com/mmr-tortoise/mongocheck/internal/config"
	"github.com/mmr-tortoise/mongocheck/internal/docker"
	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// teardownTimeout bounds cleanup after each check. Teardown must run even
// when the check's own context has been cancelled, so it gets a fresh
// context with this budget instead of inheriting the check's.
const teardownTimeout = 60 * time.Second

// Runner executes checks sequentially and owns the teardown of whatever
// they launch. Execution is strictly one check at a time: each check runs
// to completion and is cleaned up before the next begins.
type Runner struct {
	Docker   *docker.Client
	Settings *config.Settings
	Params   checks.Params
	Log      zerolog.Logger

	// nextPort is the host-port cursor threaded from check to check, so a
	// later check never binds a port an earlier one used. Under --keep the
	// earlier containers are still running and still hold their binds.
	nextPort int
}

// Run executes the named checks (all registered checks when names is
// empty) and returns the aggregated result. Checks are independent: a
// failure is recorded and the run continues with the next check.
//
// Every check gets a fresh Env sharing one run ID, and the containers and
// networks it launched are force-removed after it finishes — pass or
// fail — unless Settings.KeepContainers is set.
func (r *Runner) Run(ctx context.Context, names []string) (*model.SuiteResult, error) {
	selected, err := checks.Select(names)
	if err != nil {
		return nil, err
	}
	selectedSet := make(map[string]bool, len(selected))
	for _, c := range selected {
		selectedSet[c.Name()] = true
	}

	runID := uuid.NewString()
	r.nextPort = r.Settings.HostPortBase
	result := &model.SuiteResult{
		Image:     r.Settings.Image,
		StartedAt: time.Now().UTC(),
	}

	r.Log.Info().
		Str("image", r.Settings.Image).
		Str("run", runID).
		Int("checks", len(selected)).
		Msg("verification run starting")

	for _, chk := range checks.All() {
		if !selectedSet[chk.Name()] {
			result.Results = append(result.Results, model.CheckResult{
				Name:   chk.Name(),
				Status: model.StatusSkipped,
			})
			continue
		}

		res, runErr := r.runOne(ctx, chk, runID)
		result.Results = append(result.Results, res)
		if runErr != nil {
			// Only unusable-setup failures escalate here; ordinary check
			// failures are recorded and the run continues.
			return nil, runErr
		}
	}

	passed, failed, skipped := result.Counts()
	r.Log.Info().
		Int("passed", passed).
		Int("failed", failed).
		Int("skipped", skipped).
		Msg("verification run finished")

	return result, nil
}

// runOne executes a single check and unconditionally tears down its
// resources afterwards. The returned error is nil for ordinary check
// failures (those land in the result); it is non-nil only when the image
// itself is missing, which would fail every remaining check the same way
// and so aborts the run.
func (r *Runner) runOne(ctx context.Context, chk checks.Check, runID string) (model.CheckResult, error) {
	r.Log.Info().Str("check", chk.Name()).Msg("running")
	start := time.Now()

	env := checks.NewEnv(r.Docker, r.Settings, r.Params, runID, r.Log, r.nextPort)
	checkErr := chk.Run(ctx, env)
	r.nextPort = env.PortCursor()

	r.teardown(runID, env.ResourceCount())

	res := model.CheckResult{
		Name:     chk.Name(),
		Duration: time.Since(start),
	}
	if checkErr != nil {
		res.Status = model.StatusFailed
		res.Detail = checkErr.Error()
		r.Log.Error().Str("check", chk.Name()).Dur("took", res.Duration).Msg("failed")

		var cliErr *model.CLIError
		if errors.As(checkErr, &cliErr) && cliErr.Code == model.ExitImageNotFound {
			return res, cliErr
		}
	} else {
		res.Status = model.StatusPassed
		r.Log.Info().Str("check", chk.Name()).Dur("took", res.Duration).Msg("passed")
	}
	return res, nil
}

// teardown removes everything the run has launched so far. It uses a
// fresh context so cleanup still happens when the run was cancelled.
// resources counts containers plus networks: a check that created a
// network but never got a container running still has something to
// remove.
func (r *Runner) teardown(runID string, resources int) {
	if r.Settings.KeepContainers {
		if resources > 0 {
			r.Log.Info().Int("resources", resources).Msg("keeping containers (--keep)")
		}
		return
	}
	if resources == 0 {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(context.Background(), teardownTimeout)
	defer cancel()

	if err := docker.TeardownRun(cleanupCtx, r.Docker, runID); err != nil {
		// Teardown problems must not mask the check result; they are
		// logged and left for `mongocheck prune`.
		r.Log.Warn().Err(err).Msg("teardown incomplete — run `mongocheck prune` to clean up")
	}
}
