package suite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/mongocheck/internal/checks"
	"github.com/mmr-tortoise/mongocheck/internal/config"
	"github.com/mmr-tortoise/mongocheck/internal/model"
)

// newDocsOnlyRunner builds a Runner whose settings point the docs check
// at the given documentation file. Selecting only the docs check keeps
// the runner off the Docker daemon entirely, which lets these tests
// exercise sequencing, skip handling, and result aggregation hermetically.
func newDocsOnlyRunner(t *testing.T, docsContent string) *Runner {
	t.Helper()

	docsPath := filepath.Join(t.TempDir(), "README.md")
	require.NoError(t, os.WriteFile(docsPath, []byte(docsContent), 0o644))

	settings, err := config.Load("")
	require.NoError(t, err)
	settings.DocsPath = docsPath

	return &Runner{
		Settings: settings,
		Params:   checks.DefaultParams(),
		Log:      zerolog.Nop(),
	}
}

// completeDocs renders a document containing every required marker.
func completeDocs() string {
	return strings.Join(checks.RequiredMarkers(), "\n")
}

// TestRunner_DocsPass verifies a passing check is recorded as passed and
// all unselected checks as skipped, in registry order.
func TestRunner_DocsPass(t *testing.T) {
	r := newDocsOnlyRunner(t, completeDocs())

	result, err := r.Run(context.Background(), []string{"docs"})
	require.NoError(t, err)

	require.Len(t, result.Results, len(checks.All()),
		"every registered check appears in the result")
	assert.False(t, result.Failed())

	byName := make(map[string]model.CheckResult)
	for _, res := range result.Results {
		byName[res.Name] = res
	}
	assert.Equal(t, model.StatusPassed, byName["docs"].Status)
	assert.Equal(t, model.StatusSkipped, byName["replica-set"].Status)
	assert.Equal(t, model.StatusSkipped, byName["user-auth"].Status)
}

// TestRunner_DocsFail verifies a failing check is recorded with
// diagnostic detail and fails the run without aborting it.
func TestRunner_DocsFail(t *testing.T) {
	r := newDocsOnlyRunner(t, "this manual documents nothing")

	result, err := r.Run(context.Background(), []string{"docs"})
	require.NoError(t, err, "a check failure is a result, not a runner error")

	assert.True(t, result.Failed())
	passed, failed, skipped := result.Counts()
	assert.Equal(t, 0, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, len(checks.All())-1, skipped)

	for _, res := range result.Results {
		if res.Name == "docs" {
			assert.Equal(t, model.StatusFailed, res.Status)
			assert.Contains(t, res.Detail, "MONGODB_USERNAME",
				"failure detail should name the missing markers")
		}
	}
}

// fakeCheck stands in for a Docker-backed check so runner behavior can
// be exercised without a daemon. run receives the check's Env.
type fakeCheck struct {
	name string
	run  func(env *checks.Env) error
}

func (f *fakeCheck) Name() string        { return f.name }
func (f *fakeCheck) Description() string { return "test double" }
func (f *fakeCheck) Run(_ context.Context, env *checks.Env) error {
	return f.run(env)
}

// TestRunner_MissingImageAborts verifies a missing-image failure stops
// the run and surfaces its own exit code, since every remaining check
// would fail the same way.
func TestRunner_MissingImageAborts(t *testing.T) {
	r := newDocsOnlyRunner(t, completeDocs())

	notFound := model.WrapCLIError(model.ExitImageNotFound, `image "myrepo/mongodb:4.0" not found`, nil)
	chk := &fakeCheck{name: "launch-fails", run: func(_ *checks.Env) error {
		return fmt.Errorf("launching instance: %w", notFound)
	}}

	res, err := r.runOne(context.Background(), chk, "run-1")
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitImageNotFound, cliErr.Code)
	assert.Equal(t, model.StatusFailed, res.Status,
		"the aborting check is still recorded as failed")
}

// TestRunner_OrdinaryFailureDoesNotAbort verifies an assertion failure
// is recorded in the result without stopping the run.
func TestRunner_OrdinaryFailureDoesNotAbort(t *testing.T) {
	r := newDocsOnlyRunner(t, completeDocs())

	chk := &fakeCheck{name: "assertion-fails", run: func(_ *checks.Env) error {
		return errors.New("unexpected privilege grant")
	}}

	res, err := r.runOne(context.Background(), chk, "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, res.Status)
	assert.Contains(t, res.Detail, "unexpected privilege grant")
}

// TestRunner_PortCursorCarries verifies consecutive checks in one run
// never share a host port: the second check's Env continues where the
// first one stopped handing ports out.
func TestRunner_PortCursorCarries(t *testing.T) {
	r := newDocsOnlyRunner(t, completeDocs())
	r.nextPort = r.Settings.HostPortBase

	var got []int
	eatTwo := &fakeCheck{name: "eats-ports", run: func(env *checks.Env) error {
		got = append(got, env.NextHostPort(), env.NextHostPort())
		return nil
	}}

	_, err := r.runOne(context.Background(), eatTwo, "run-1")
	require.NoError(t, err)
	_, err = r.runOne(context.Background(), eatTwo, "run-1")
	require.NoError(t, err)

	base := r.Settings.HostPortBase
	assert.Equal(t, []int{base, base + 1, base + 2, base + 3}, got)
	assert.Equal(t, base+4, r.nextPort)
}

// TestRunner_UnknownCheck verifies selection errors surface before any
// check runs.
func TestRunner_UnknownCheck(t *testing.T) {
	r := newDocsOnlyRunner(t, completeDocs())

	_, err := r.Run(context.Background(), []string{"bogus"})
	require.Error(t, err)

	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok)
	assert.Equal(t, model.ExitUnknownCheck, cliErr.Code)
}
