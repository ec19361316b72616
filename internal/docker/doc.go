// Package docker provides Docker Engine API wrappers for launching and
// tearing down instances of the MongoDB image under test.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Container creation with published ports, environment variables, and
//     mongocheck.* labels for later discovery
//   - Exec sessions inside running containers (used to read the rendered
//     mongod configuration file)
//   - User-defined bridge networks for the replica-set check
//   - Label-filtered teardown of everything a run launched
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
