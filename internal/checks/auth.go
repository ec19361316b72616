// auth.go implements the authentication checks: admin login, non-admin
// user login, and the combination of both. These are the properties the
// image's entrypoint is most likely to get wrong, because user creation
// and auth enablement interact (the entrypoint has to provision users
// before locking the server down).
package checks

import (
	"context"
	"fmt"

	"github.com/mmr-tortoise/mongocheck/internal/image"
	"github.com/mmr-tortoise/mongocheck/internal/mongoc"
)

// adminAuthCheck asserts that setting MONGODB_ADMIN_PASSWORD both grants
// root a login and actually locks the server down for everyone else.
type adminAuthCheck struct{}

func (c *adminAuthCheck) Name() string { return "admin-auth" }

func (c *adminAuthCheck) Description() string {
	return "MONGODB_ADMIN_PASSWORD grants root login and rejects unauthenticated writes"
}

func (c *adminAuthCheck) Run(ctx context.Context, env *Env) error {
	inst, err := env.Launch(ctx, c.Name(), map[string]string{
		image.EnvAdminPassword: env.Params.AdminPassword,
	})
	if err != nil {
		return err
	}
	if err := inst.WaitReady(ctx); err != nil {
		return err
	}

	// Positive: root can log in against the admin database and run a
	// privileged round trip.
	root, err := mongoc.Connect(ctx, inst.Target(image.AdminUser, env.Params.AdminPassword, image.AdminDatabase))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = root.Disconnect(context.Background()) }()

	if err := mongoc.InsertRoundTrip(ctx, root, "admincheck", "probe"); err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("root login did not grant write access: %w", err))
	}

	// Negative: with auth enabled, an unauthenticated client must be
	// denied the same write.
	anon, err := mongoc.Connect(ctx, inst.Target("", "", ""))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = anon.Disconnect(context.Background()) }()

	if err := mongoc.InsertRoundTrip(ctx, anon, "admincheck", "probe"); err == nil {
		return fmt.Errorf("unauthenticated write succeeded even though %s was set — authentication is not enabled", image.EnvAdminPassword)
	}

	return nil
}

// userAuthCheck asserts that the username/password/database triple
// provisions a user who can log in to that database.
type userAuthCheck struct{}

func (c *userAuthCheck) Name() string { return "user-auth" }

func (c *userAuthCheck) Description() string {
	return "MONGODB_USERNAME/PASSWORD/DATABASE provision a user who can log in"
}

func (c *userAuthCheck) Run(ctx context.Context, env *Env) error {
	inst, err := env.Launch(ctx, c.Name(), map[string]string{
		image.EnvUsername: env.Params.Username,
		image.EnvPassword: env.Params.Password,
		image.EnvDatabase: env.Params.Database,
	})
	if err != nil {
		return err
	}
	if err := inst.WaitReady(ctx); err != nil {
		return err
	}

	return loginAsUser(ctx, inst, env.Params)
}

// userAuthWithAdminCheck asserts that provisioning a non-admin user and an
// admin password in the same container still grants the non-admin user a
// login. Entrypoints that create the user after enabling auth (or vice
// versa in the wrong order) fail exactly this combination.
type userAuthWithAdminCheck struct{}

func (c *userAuthWithAdminCheck) Name() string { return "user-auth-with-admin" }

func (c *userAuthWithAdminCheck) Description() string {
	return "a non-admin user still gets login when an admin password is also set"
}

func (c *userAuthWithAdminCheck) Run(ctx context.Context, env *Env) error {
	inst, err := env.Launch(ctx, c.Name(), map[string]string{
		image.EnvUsername:      env.Params.Username,
		image.EnvPassword:      env.Params.Password,
		image.EnvDatabase:      env.Params.Database,
		image.EnvAdminPassword: env.Params.AdminPassword,
	})
	if err != nil {
		return err
	}
	if err := inst.WaitReady(ctx); err != nil {
		return err
	}

	if err := loginAsUser(ctx, inst, env.Params); err != nil {
		return err
	}

	// The admin password must not have been dropped on the floor either.
	root, err := mongoc.Connect(ctx, inst.Target(image.AdminUser, env.Params.AdminPassword, image.AdminDatabase))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = root.Disconnect(context.Background()) }()

	if err := mongoc.InsertRoundTrip(ctx, root, "admincheck", "probe"); err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("root login broke when a non-admin user was also provisioned: %w", err))
	}
	return nil
}

// loginAsUser connects with the provisioned user's credentials against
// their own database and proves the login with a write/read round trip.
func loginAsUser(ctx context.Context, inst *Instance, p Params) error {
	user, err := mongoc.Connect(ctx, inst.Target(p.Username, p.Password, p.Database))
	if err != nil {
		return inst.Diagnose(ctx, err)
	}
	defer func() { _ = user.Disconnect(context.Background()) }()

	if err := mongoc.InsertRoundTrip(ctx, user, p.Database, "probe"); err != nil {
		return inst.Diagnose(ctx, fmt.Errorf("user %q could not use database %q: %w", p.Username, p.Database, err))
	}
	return nil
}
