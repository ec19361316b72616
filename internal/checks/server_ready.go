package checks

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mmr-tortoise/mongocheck/internal/mongoc"
)

// serverReadyCheck asserts the baseline property of the image: a container
// started with no environment variables at all comes up, accepts a
// connection, and answers a ping within the readiness budget.
type serverReadyCheck struct{}

func (c *serverReadyCheck) Name() string { return "server-ready" }

func (c *serverReadyCheck) Description() string {
	return "a plain container starts and accepts unauthenticated connections"
}

func (c *serverReadyCheck) Run(ctx context.Context, env *Env) error {
	inst, err := env.Launch(ctx, c.Name(), nil)
	if err != nil {
		return err
	}

	if err := inst.WaitReady(ctx); err != nil {
		return err
	}

	// Readiness already proved ping works; additionally confirm a normal
	// command round trip so a server stuck between "accepting TCP" and
	// "serving commands" does not slip through.
	client, err := mongoc.Connect(ctx, inst.Target("", "", ""))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	reply, err := mongoc.RunCommand(ctx, client, "admin", bson.D{{Key: "buildInfo", Value: 1}})
	if err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("buildInfo command failed: %w", err))
	}
	if _, ok := reply["version"]; !ok {
		return fmt.Errorf("buildInfo reply carried no server version: %v", reply)
	}

	env.Log.Debug().Interface("version", reply["version"]).Msg("server answered buildInfo")
	return nil
}
