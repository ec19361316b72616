package mongoc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Target describes one connection to a mongod instance launched by the
// harness. Zero-value credential fields mean "connect unauthenticated".
type Target struct {
	// Host and Port locate the server from the harness's point of view
	// (usually 127.0.0.1 and a published host port).
	Host string
	Port int

	// Username, Password, and AuthDB select the credential to present.
	// All three must be set together, or none.
	Username string
	Password string
	AuthDB   string

	// Timeout bounds connection establishment, server selection, and each
	// individual probe operation.
	Timeout time.Duration
}

// URI renders the target as a MongoDB connection string. Credentials are
// included only when a username is set.
func (t Target) URI() string {
	if t.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%d/?authSource=%s",
			t.Username, t.Password, t.Host, t.Port, t.AuthDB)
	}
	return fmt.Sprintf("mongodb://%s:%d/", t.Host, t.Port)
}

// Connect establishes a client session against the target. The connection
// is direct (no topology discovery) because each check addresses one
// specific instance — during replica-set bring-up the instance would not
// be selectable through normal discovery before the set is initiated.
//
// Callers own the returned client and must Disconnect it.
func Connect(ctx context.Context, t Target) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(t.URI()).
		SetDirect(true).
		SetConnectTimeout(t.Timeout).
		SetServerSelectionTimeout(t.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", t.Host, t.Port, err)
	}
	return client, nil
}

// Ping verifies the target answers a ping within the target's timeout.
// This is the readiness probe used while waiting for a container to come up.
func Ping(ctx context.Context, t Target) error {
	pingCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	client, err := Connect(pingCtx, t)
	if err != nil {
		return err
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping %s:%d failed: %w", t.Host, t.Port, err)
	}
	return nil
}

// RunCommand runs a database command against the given database and
// decodes the reply into a bson.M.
func RunCommand(ctx context.Context, client *mongo.Client, database string, cmd interface{}) (bson.M, error) {
	var reply bson.M
	err := client.Database(database).RunCommand(ctx, cmd).Decode(&reply)
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// InsertRoundTrip inserts a document into the given collection and reads
// it back by its marker field. This is the positive half of the privilege
// check: a user with readWrite on the database must complete it.
func InsertRoundTrip(ctx context.Context, client *mongo.Client, database, collection string) error {
	coll := client.Database(database).Collection(collection)

	marker := fmt.Sprintf("mongocheck-%d", time.Now().UnixNano())
	doc := bson.D{{Key: "marker", Value: marker}, {Key: "at", Value: time.Now().UTC()}}

	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s.%s failed: %w", database, collection, err)
	}

	var found bson.M
	err := coll.FindOne(ctx, bson.D{{Key: "marker", Value: marker}}).Decode(&found)
	if err != nil {
		return fmt.Errorf("readback from %s.%s failed: %w", database, collection, err)
	}
	return nil
}
