package checks

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/mmr-tortoise/mongocheck/internal/image"
	"github.com/mmr-tortoise/mongocheck/internal/mongoc"
)

// userPrivilegesCheck asserts the scope of the provisioned user's grant:
// readWrite on their own database, nothing anywhere else. A user with an
// accidental global role would pass the plain login check, so this check
// probes both sides of the boundary.
type userPrivilegesCheck struct{}

func (c *userPrivilegesCheck) Name() string { return "user-privileges" }

func (c *userPrivilegesCheck) Description() string {
	return "the provisioned user has readWrite on its database and nothing beyond"
}

func (c *userPrivilegesCheck) Run(ctx context.Context, env *Env) error {
	p := env.Params

	inst, err := env.Launch(ctx, c.Name(), map[string]string{
		image.EnvUsername:      p.Username,
		image.EnvPassword:      p.Password,
		image.EnvDatabase:      p.Database,
		image.EnvAdminPassword: p.AdminPassword,
	})
	if err != nil {
		return err
	}
	if err := inst.WaitReady(ctx); err != nil {
		return err
	}

	// Inside the boundary: full round trip on the user's own database.
	user, err := mongoc.Connect(ctx, inst.Target(p.Username, p.Password, p.Database))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = user.Disconnect(context.Background()) }()

	if err := mongoc.InsertRoundTrip(ctx, user, p.Database, "probe"); err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("user %q lacks readWrite on %q: %w", p.Username, p.Database, err))
	}

	// Outside the boundary: the same session must be denied writes to a
	// database the user was never granted.
	if err := mongoc.InsertRoundTrip(ctx, user, "unrelated", "probe"); err == nil {
		return fmt.Errorf("user %q could write to database %q outside its grant", p.Username, "unrelated")
	}

	// Cross-check the grant through the server's own books: usersInfo as
	// root must list exactly the readWrite role on the user's database.
	root, err := mongoc.Connect(ctx, inst.Target(image.AdminUser, p.AdminPassword, image.AdminDatabase))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = root.Disconnect(context.Background()) }()

	reply, err := mongoc.RunCommand(ctx, root, p.Database, bson.D{{Key: "usersInfo", Value: p.Username}})
	if err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("usersInfo for %q failed: %w", p.Username, err))
	}
	if err := assertReadWriteRole(reply, p.Username, p.Database); err != nil {
		return err
	}

	return nil
}

// assertReadWriteRole walks a usersInfo reply and verifies the named user
// exists and holds readWrite on the expected database. The reply shape is
// users[] → roles[] → {role, db}; anything missing is a contract breach.
func assertReadWriteRole(reply bson.M, username, database string) error {
	users, ok := reply["users"].(bson.A)
	if !ok || len(users) == 0 {
		return fmt.Errorf("usersInfo listed no user named %q in database %q", username, database)
	}

	for _, u := range users {
		doc, ok := u.(bson.M)
		if !ok || doc["user"] != username {
			continue
		}
		roles, ok := doc["roles"].(bson.A)
		if !ok {
			return fmt.Errorf("user %q has no roles array in usersInfo reply", username)
		}
		for _, r := range roles {
			role, ok := r.(bson.M)
			if !ok {
				continue
			}
			if role["role"] == "readWrite" && role["db"] == database {
				return nil
			}
		}
		return fmt.Errorf("user %q exists but holds no readWrite role on %q (roles: %v)", username, database, roles)
	}

	return fmt.Errorf("usersInfo reply did not contain user %q", username)
}
