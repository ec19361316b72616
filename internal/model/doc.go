// Package model defines the domain types and value objects for the
// mongocheck CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (CheckResult, SuiteResult, ContainerInfo, etc.) are transient
// representations of one verification run — nothing in this package is
// persisted between invocations.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
