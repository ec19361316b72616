package checks

import (
	"context"
	"fmt"

	"github.com/mmr-tortoise/mongocheck/internal/image"
	"github.com/mmr-tortoise/mongocheck/internal/mongoc"
	"github.com/mmr-tortoise/mongocheck/internal/readiness"
)

// replicaSetMembers is the member count the convergence check uses.
// Three members is the smallest configuration that can elect a primary
// while tolerating a member failure, and matches the documentation's
// replica-set example.
const replicaSetMembers = 3

// replicaSetCheck asserts the image's clustering story: three containers
// started with the same MONGODB_REPLICA_SET_NAME on one network, once
// initiated, converge to exactly one PRIMARY and two SECONDARY members.
//
// The harness does not implement any replication logic — it only feeds
// the initiate command addresses and polls replSetGetStatus until the
// set reports the expected shape or the budget runs out.
type replicaSetCheck struct{}

func (c *replicaSetCheck) Name() string { return "replica-set" }

func (c *replicaSetCheck) Description() string {
	return "three same-named members converge to one primary and two secondaries"
}

func (c *replicaSetCheck) Run(ctx context.Context, env *Env) error {
	setName := env.Settings.Mongo.ReplicaSetName

	// Members need a shared network so they can reach each other by the
	// stable aliases used in the replica set configuration.
	networkName, err := env.CreateNetwork(ctx, c.Name())
	if err != nil {
		return err
	}

	// Launch all members, then wait on them. Launching first lets the
	// slower members boot while the first one is being polled.
	members := make([]*Instance, 0, replicaSetMembers)
	memberAddrs := make([]string, 0, replicaSetMembers)
	for i := 0; i < replicaSetMembers; i++ {
		alias := fmt.Sprintf("mongo-%d", i)
		inst, launchErr := env.LaunchOnNetwork(ctx, c.Name(), map[string]string{
			image.EnvReplicaSetName: setName,
		}, networkName, alias)
		if launchErr != nil {
			return launchErr
		}
		members = append(members, inst)
		memberAddrs = append(memberAddrs, fmt.Sprintf("%s:%d", alias, image.Port))
	}

	for _, inst := range members {
		if err := inst.WaitReady(ctx); err != nil {
			return err
		}
	}

	// Initiate through the first member. Addresses are the in-network
	// aliases: members talk to each other through the bridge network, not
	// through the host-published ports the harness uses.
	seed, err := mongoc.Connect(ctx, members[0].Target("", "", ""))
	if err != nil {
		return members[0].Diagnose(ctx, err)
	}
	defer func() { _ = seed.Disconnect(context.Background()) }()

	if err := mongoc.Initiate(ctx, seed, setName, memberAddrs); err != nil {
		return members[0].Diagnose(ctx, err)
	}
	env.Log.Debug().Str("set", setName).Strs("members", memberAddrs).Msg("replica set initiated")

	// Poll until the set settles. Elections routinely take a handful of
	// seconds, so this reuses the same fixed-interval budget as container
	// readiness.
	waiter := readiness.NewWaiter(
		env.Settings.Readiness.Attempts,
		env.Settings.Readiness.Interval,
	)

	var lastStatus *mongoc.ReplSetStatus
	err = waiter.Wait(ctx, func(ctx context.Context) error {
		status, statusErr := mongoc.Status(ctx, seed)
		if statusErr != nil {
			return statusErr
		}
		lastStatus = status
		if status.Set != setName {
			return fmt.Errorf("set reports name %q, want %q", status.Set, setName)
		}
		if !status.Converged(replicaSetMembers - 1) {
			return fmt.Errorf("set not converged: %s", status.Describe())
		}
		return nil
	})
	if err != nil {
		detail := "no status received"
		if lastStatus != nil {
			detail = lastStatus.Describe()
		}
		return members[0].Diagnose(ctx, fmt.Errorf("replica set %q did not converge (last seen: %s): %w", setName, detail, err))
	}

	env.Log.Debug().Str("members", lastStatus.Describe()).Msg("replica set converged")
	return nil
}
