package docker

import (
	"time"
)

// Label key constants define the Docker label keys applied to every
// container and network the harness launches. Labels are the only way a
// later invocation (or `mongocheck prune`) can tell harness resources
// apart from unrelated containers on the same host.
//
// All keys share the "mongocheck." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all mongocheck labels.
	LabelPrefix = "mongocheck."

	// LabelManagedBy identifies resources created by mongocheck.
	// Key: "mongocheck.managed-by", Value: always "mongocheck".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelCheck stores the name of the check a container was launched for.
	// Key: "mongocheck.check", Value: check name (e.g., "replica-set").
	LabelCheck = LabelPrefix + "check"

	// LabelRunID stores the unique identifier of the verification run, so
	// concurrent or leftover runs can be distinguished.
	// Key: "mongocheck.run-id", Value: UUID string.
	LabelRunID = LabelPrefix + "run-id"

	// LabelCreatedAt stores the ISO-8601 timestamp of resource creation.
	// Key: "mongocheck.created-at", Value: RFC3339 formatted timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "mongocheck"

// BuildLabels constructs the label map applied to a container or network
// launched for the given check within the given run.
func BuildLabels(runID, checkName string) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelCheck:     checkName,
		LabelRunID:     runID,
		// RFC3339 in UTC for consistency regardless of the host timezone.
		LabelCreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// ManagedFilter returns the label selector that matches every resource
// created by any mongocheck run. Used by teardown and prune.
func ManagedFilter() string {
	return LabelManagedBy + "=" + ManagedByValue
}

// RunFilter returns the label selector that matches resources created by
// one specific run.
func RunFilter(runID string) string {
	return LabelRunID + "=" + runID
}
