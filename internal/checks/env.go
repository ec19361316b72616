package checks

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/mongocheck/internal/config"
	"github.com/mmr-tortoise/mongocheck/internal/docker"
	"github.com/mmr-tortoise/mongocheck/internal/model"
	"github.com/mmr-tortoise/mongocheck/internal/mongoc"
	"github.com/mmr-tortoise/mongocheck/internal/readiness"
)

// Params are the credential and configuration values the checks feed into
// the image contract environment variables. The defaults are throwaway
// test values; a suite file can override them.
type Params struct {
	// Username, Password, and Database configure the non-admin user the
	// image provisions when the corresponding env vars are set.
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`

	// AdminPassword is the root password for checks that enable auth.
	AdminPassword string `json:"adminPassword"`

	// OplogSizeMB is the oplog size asserted by the config-file check.
	OplogSizeMB int `json:"oplogSizeMb"`
}

// DefaultParams returns the built-in parameter values.
func DefaultParams() Params {
	return Params{
		Username:      "checkuser",
		Password:      "checkpass",
		Database:      "checkdb",
		AdminPassword: "checkadminpass",
		OplogSizeMB:   128,
	}
}

// Env is the shared context a check runs in: the Docker client, settings,
// run identity, and helpers for launching instances of the image.
//
// Env is owned by the suite runner. Checks record the containers and
// networks they launch via the launch helpers; the runner tears all of
// them down when the check finishes, pass or fail.
type Env struct {
	Docker   *docker.Client
	Settings *config.Settings
	Params   Params
	RunID    string
	Log      zerolog.Logger

	// nextPort is the next host port to hand out, incremented per
	// launched container.
	nextPort int

	// launched tracks container IDs in launch order, newest last.
	launched []string

	// networks tracks created network names, so teardown knows the check
	// holds resources even when no container ever launched.
	networks []string
}

// NewEnv prepares a run environment for one check execution. startPort is
// where host-port hand-out begins; the suite runner threads the cursor
// from check to check so ports are never reissued within one run (which
// matters under --keep, where earlier containers still hold their binds).
// A non-positive startPort falls back to Settings.HostPortBase.
func NewEnv(cli *docker.Client, settings *config.Settings, params Params, runID string, log zerolog.Logger, startPort int) *Env {
	if startPort <= 0 {
		startPort = settings.HostPortBase
	}
	return &Env{
		Docker:   cli,
		Settings: settings,
		Params:   params,
		RunID:    runID,
		Log:      log,
		nextPort: startPort,
	}
}

// Launched returns the IDs of every container launched so far.
func (e *Env) Launched() []string {
	return e.launched
}

// Networks returns the names of every network created so far.
func (e *Env) Networks() []string {
	return e.networks
}

// ResourceCount is the number of Docker resources (containers plus
// networks) the check holds. The runner tears down whenever this is
// non-zero — a created network counts even if every launch after it
// failed.
func (e *Env) ResourceCount() int {
	return len(e.launched) + len(e.networks)
}

// PortCursor returns the next host port that would be handed out. The
// runner reads it after a check so the following check's Env continues
// from here instead of restarting at the base.
func (e *Env) PortCursor() int {
	return e.nextPort
}

// NextHostPort hands out host ports sequentially from the configured base.
// Sequential assignment is enough here: runs are sequential, ports live
// only for one check, and the base is user-configurable when it collides
// with something on the host.
func (e *Env) NextHostPort() int {
	p := e.nextPort
	e.nextPort++
	return p
}

// Launch starts one instance of the image under test and returns a handle
// for addressing it. The instance name combines the check name and a
// short run ID suffix so repeated runs never collide.
func (e *Env) Launch(ctx context.Context, checkName string, envVars map[string]string) (*Instance, error) {
	return e.launch(ctx, checkName, envVars, "", "")
}

// LaunchOnNetwork starts an instance attached to a user-defined network
// under the given alias, additionally publishing its port on the host so
// the harness itself can reach it.
func (e *Env) LaunchOnNetwork(ctx context.Context, checkName string, envVars map[string]string, networkName, alias string) (*Instance, error) {
	return e.launch(ctx, checkName, envVars, networkName, alias)
}

func (e *Env) launch(ctx context.Context, checkName string, envVars map[string]string, networkName, alias string) (*Instance, error) {
	hostPort := e.NextHostPort()

	name := fmt.Sprintf("mongocheck-%s-%s", checkName, shortID(e.RunID))
	if alias != "" {
		name = fmt.Sprintf("mongocheck-%s-%s-%s", checkName, alias, shortID(e.RunID))
	}

	id, err := docker.RunDetached(ctx, e.Docker, e.Settings.Image, docker.RunSpec{
		Name:         name,
		CheckName:    checkName,
		RunID:        e.RunID,
		Env:          envVars,
		HostPort:     hostPort,
		NetworkName:  networkName,
		NetworkAlias: alias,
	})
	if err != nil {
		return nil, err
	}
	e.launched = append(e.launched, id)

	e.Log.Debug().
		Str("check", checkName).
		Str("container", name).
		Int("hostPort", hostPort).
		Msg("container launched")

	return &Instance{env: e, ID: id, Name: name, HostPort: hostPort, Alias: alias}, nil
}

// CreateNetwork creates a run-labeled bridge network for the check and
// records it, so the runner tears it down even if no container after it
// ever starts.
func (e *Env) CreateNetwork(ctx context.Context, checkName string) (string, error) {
	name := fmt.Sprintf("mongocheck-%s-%s", checkName, shortID(e.RunID))
	if _, err := docker.CreateNetwork(ctx, e.Docker, name, e.RunID, checkName); err != nil {
		return "", err
	}
	e.networks = append(e.networks, name)
	return name, nil
}

// shortID trims a run UUID down to the first hex group, which is unique
// enough for container naming within one host.
func shortID(runID string) string {
	if len(runID) > 8 {
		return runID[:8]
	}
	return runID
}

// Instance is a handle to one launched container.
type Instance struct {
	env *Env

	// ID is the Docker container ID.
	ID string

	// Name is the Docker container name.
	Name string

	// HostPort is the 127.0.0.1 port the mongod port is published on.
	HostPort int

	// Alias is the in-network DNS alias, when launched on a network.
	Alias string
}

// Target builds a connection target for the instance, optionally with
// credentials. Empty username means an unauthenticated connection.
func (i *Instance) Target(username, password, authDB string) mongoc.Target {
	return mongoc.Target{
		Host:     "127.0.0.1",
		Port:     i.HostPort,
		Username: username,
		Password: password,
		AuthDB:   authDB,
		Timeout:  i.env.Settings.Mongo.ConnectTimeout,
	}
}

// WaitReady polls the instance with unauthenticated pings until it
// accepts connections or the configured budget is exhausted. The ping
// command is permitted pre-auth, so this works for instances started
// with authentication enabled too.
//
// On timeout the error includes the tail of the container log, which is
// usually where the entrypoint explains what went wrong.
func (i *Instance) WaitReady(ctx context.Context) error {
	waiter := readiness.NewWaiter(
		i.env.Settings.Readiness.Attempts,
		i.env.Settings.Readiness.Interval,
	)

	target := i.Target("", "", "")
	err := waiter.Wait(ctx, func(ctx context.Context) error {
		return mongoc.Ping(ctx, target)
	})
	if err != nil {
		return i.Diagnose(ctx, readinessTimeout(i.Name, err))
	}
	return nil
}

// readinessTimeout classifies a readiness budget exhaustion so callers
// can tell it apart from assertion failures via errors.As.
func readinessTimeout(name string, err error) error {
	return model.WrapCLIError(model.ExitReadinessTimeout,
		fmt.Sprintf("container %s never became ready", name), err)
}

// Diagnose wraps a check failure with the instance's recent log output.
func (i *Instance) Diagnose(ctx context.Context, err error) error {
	tail := docker.LogTail(ctx, i.env.Docker, i.ID, 25)
	if tail == "" {
		return err
	}
	return fmt.Errorf("%w\n--- log tail of %s ---\n%s", err, i.Name, tail)
}
