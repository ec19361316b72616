// Package image freezes the externally-defined contract of the MongoDB
// container image under test: the environment variables it accepts, the
// port it listens on, and the filesystem paths it exposes.
//
// Nothing here is implemented by mongocheck — the image's entrypoint script
// owns all of this behavior. The constants exist so that every check (and
// the docs check's marker list) spells the contract identically.
package image

// Environment variables accepted by the image's entrypoint. Setting a
// variable at container creation changes how the entrypoint provisions
// the mongod instance before it starts accepting connections.
const (
	// EnvUsername creates a non-admin user at first start.
	// Requires EnvPassword and EnvDatabase to also be set.
	EnvUsername = "MONGODB_USERNAME"

	// EnvPassword is the password for the user named by EnvUsername.
	EnvPassword = "MONGODB_PASSWORD"

	// EnvDatabase is the database the EnvUsername user is created in and
	// granted readWrite on.
	EnvDatabase = "MONGODB_DATABASE"

	// EnvAdminPassword enables authentication and sets the password of the
	// "root" user in the admin database.
	EnvAdminPassword = "MONGODB_ADMIN_PASSWORD"

	// EnvReplicaSetName makes the instance start as a member of the named
	// replica set. The set still has to be initiated by a client.
	EnvReplicaSetName = "MONGODB_REPLICA_SET_NAME"

	// EnvOplogSize sets the replication oplog size in megabytes. The value
	// is written into the mongod configuration file by the entrypoint.
	EnvOplogSize = "MONGODB_OPLOG_SIZE"

	// EnvExtraFlags passes additional command-line flags verbatim to mongod.
	EnvExtraFlags = "MONGODB_EXTRA_FLAGS"
)

const (
	// Port is the mongod listen port inside the container.
	Port = 27017

	// AdminUser is the fixed name of the superuser the entrypoint creates
	// when EnvAdminPassword is set.
	AdminUser = "root"

	// AdminDatabase is the authentication database of AdminUser.
	AdminDatabase = "admin"

	// DataDir is the volume mount point for database files.
	DataDir = "/var/lib/mongodb"

	// ConfigFile is the mongod configuration file the entrypoint renders.
	// Its contents are a YAML document in mongod's own config format.
	ConfigFile = "/etc/mongod.conf"
)

// EnvVars lists every environment variable of the contract in the order
// the documentation presents them. The docs check walks this list.
func EnvVars() []string {
	return []string{
		EnvUsername,
		EnvPassword,
		EnvDatabase,
		EnvAdminPassword,
		EnvReplicaSetName,
		EnvOplogSize,
		EnvExtraFlags,
	}
}
