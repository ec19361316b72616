// Package model defines the domain types for the mongocheck CLI.
//
// All entities in this package describe one verification run against the
// MongoDB container image: which checks ran, what they observed, and how
// the run should be reported to the caller.
//
// Key design decision: every container and network launched by a run is
// tagged with Docker labels (see internal/docker), so the only state that
// survives a run is whatever the Docker daemon itself tracks. These types
// are reconstructed fresh on every invocation.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CheckStatus represents the outcome of a single check.
// A check moves through exactly one transition per run:
//
//	[Registered] → Passed | Failed | Skipped
type CheckStatus string

const (
	// StatusPassed indicates every assertion in the check held.
	StatusPassed CheckStatus = "passed"

	// StatusFailed indicates at least one assertion did not hold, or the
	// check could not bring its containers up within the readiness budget.
	StatusFailed CheckStatus = "failed"

	// StatusSkipped indicates the check was excluded by the suite file
	// or the --only flag and never ran.
	StatusSkipped CheckStatus = "skipped"
)

// String returns the string representation of CheckStatus.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (s CheckStatus) String() string {
	return string(s)
}

// IsValid checks whether the CheckStatus value is one of the
// predefined valid states.
func (s CheckStatus) IsValid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// ParseCheckStatus converts a string to a CheckStatus.
// Returns an error if the string does not match any valid status.
func ParseCheckStatus(s string) (CheckStatus, error) {
	status := CheckStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid check status: %q (valid: passed, failed, skipped)", s)
	}
	return status, nil
}

// CheckResult records the outcome of one check within a verification run.
type CheckResult struct {
	// Name is the registered identifier of the check (e.g., "user-auth").
	Name string `json:"name"`

	// Status is the outcome of the check.
	Status CheckStatus `json:"status"`

	// Detail is free-text diagnostic output. For failures this carries the
	// assertion mismatch and, where available, the tail of the container
	// log so the user can see what the image actually did.
	Detail string `json:"detail,omitempty"`

	// Duration is the wall-clock time the check took, including container
	// startup and readiness polling.
	Duration time.Duration `json:"duration"`
}

// SuiteResult aggregates the results of all checks in one run.
type SuiteResult struct {
	// Image is the image reference that was verified.
	Image string `json:"image"`

	// Results holds one entry per registered check, in execution order.
	Results []CheckResult `json:"results"`

	// StartedAt is the timestamp at which the run began.
	StartedAt time.Time `json:"startedAt"`
}

// Failed reports whether any check in the run failed.
func (r *SuiteResult) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Counts returns the number of passed, failed, and skipped checks.
func (r *SuiteResult) Counts() (passed, failed, skipped int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// ContainerInfo holds runtime information about a Docker container
// launched by the harness. This data is fetched dynamically from the
// Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier (SHA-256 hash prefix).
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// CheckName is the check this container was launched for, taken from
	// the mongocheck.check label.
	CheckName string `json:"checkName,omitempty"`

	// Status is the Docker container status (e.g., "running", "exited", "created").
	Status string `json:"status"`

	// Labels is the full set of Docker labels on the container.
	// Includes mongocheck management labels (mongocheck.* prefix).
	Labels map[string]string `json:"labels,omitempty"`
}

// checkNameRegex validates check names: lowercase alphanumeric + hyphens,
// must start and end with alphanumeric. The same rule applies to container
// name prefixes derived from check names.
var checkNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*[a-z0-9]$|^[a-z0-9]$`)

// ValidateCheckName checks if the given name is a valid check identifier.
// Valid names contain only lowercase alphanumeric characters and hyphens,
// and must start/end with an alphanumeric character.
func ValidateCheckName(name string) error {
	if name == "" {
		return fmt.Errorf("check name must not be empty")
	}
	if !checkNameRegex.MatchString(name) {
		return fmt.Errorf("invalid check name %q: must contain only lowercase alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitCheckFailed indicates at least one verification check failed.
	ExitCheckFailed ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitImageNotFound indicates the image under test could not be found
	// locally or pulled.
	ExitImageNotFound ExitCode = 4

	// ExitReadinessTimeout indicates a container did not become ready
	// within the configured polling budget.
	ExitReadinessTimeout ExitCode = 5

	// ExitBadSuiteFile indicates the suite file could not be read or parsed.
	ExitBadSuiteFile ExitCode = 6

	// ExitUnknownCheck indicates a check name given on the command line or
	// in the suite file does not match any registered check.
	ExitUnknownCheck ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
