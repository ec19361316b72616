package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseCheckStatus verifies string-to-status conversion, including
// case folding and rejection of unknown values.
func TestParseCheckStatus(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    CheckStatus
		wantErr bool
	}{
		{name: "passed", input: "passed", want: StatusPassed},
		{name: "failed uppercase", input: "FAILED", want: StatusFailed},
		{name: "skipped mixed case", input: "Skipped", want: StatusSkipped},
		{name: "unknown value", input: "exploded", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCheckStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

// TestSuiteResult_Failed verifies that a run is failed iff at least one
// check result is failed; skipped checks don't count.
func TestSuiteResult_Failed(t *testing.T) {
	result := &SuiteResult{
		Results: []CheckResult{
			{Name: "docs", Status: StatusPassed},
			{Name: "user-auth", Status: StatusSkipped},
		},
	}
	assert.False(t, result.Failed(), "passed + skipped should not fail the run")

	result.Results = append(result.Results, CheckResult{Name: "replica-set", Status: StatusFailed})
	assert.True(t, result.Failed())
}

// TestSuiteResult_Counts verifies the summary tally.
func TestSuiteResult_Counts(t *testing.T) {
	result := &SuiteResult{
		Results: []CheckResult{
			{Status: StatusPassed},
			{Status: StatusPassed},
			{Status: StatusFailed},
			{Status: StatusSkipped},
		},
	}

	passed, failed, skipped := result.Counts()
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, skipped)
}

// TestValidateCheckName verifies the check-name rules: lowercase
// alphanumerics and hyphens, alphanumeric at both ends.
func TestValidateCheckName(t *testing.T) {
	valid := []string{"docs", "user-auth", "replica-set", "a", "x1"}
	for _, name := range valid {
		assert.NoError(t, ValidateCheckName(name), "expected %q to be valid", name)
	}

	invalid := []string{"", "-docs", "docs-", "User-Auth", "user_auth", "user auth"}
	for _, name := range invalid {
		assert.Error(t, ValidateCheckName(name), "expected %q to be invalid", name)
	}
}

// TestCLIError verifies that CLIError carries its exit code, formats with
// and without an underlying error, and unwraps for errors.Is.
func TestCLIError(t *testing.T) {
	underlying := errors.New("socket not found")
	err := WrapCLIError(ExitDockerNotRunning, "Docker unavailable", underlying)

	assert.Equal(t, ExitDockerNotRunning, err.Code)
	assert.Equal(t, "Docker unavailable: socket not found", err.Error())
	assert.True(t, errors.Is(err, underlying), "CLIError should unwrap to the underlying error")

	bare := NewCLIError(ExitCheckFailed, "2 check(s) failed")
	assert.Equal(t, "2 check(s) failed", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
