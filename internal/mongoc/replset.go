package mongoc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Replica set member states as reported by replSetGetStatus. Only the two
// states the convergence check cares about are named; everything else
// (STARTUP, RECOVERING, ARBITER, ...) counts as "other".
const (
	statePrimary   = 1
	stateSecondary = 2
)

// Member is one entry of a replSetGetStatus reply.
type Member struct {
	// Name is the member's host:port as known inside the set.
	Name string `bson:"name"`

	// State is the numeric member state code.
	State int32 `bson:"state"`

	// StateStr is the human-readable state ("PRIMARY", "SECONDARY", ...).
	StateStr string `bson:"stateStr"`
}

// ReplSetStatus is the subset of the replSetGetStatus reply the harness
// inspects. Unknown fields are ignored by the BSON decoder.
type ReplSetStatus struct {
	Set     string   `bson:"set"`
	MyState int32    `bson:"myState"`
	Members []Member `bson:"members"`
}

// Initiate runs replSetInitiate with an explicit member configuration.
// Member addresses must be resolvable from inside the set (the harness
// passes container network aliases, not host-published addresses).
func Initiate(ctx context.Context, client *mongo.Client, setName string, memberAddrs []string) error {
	members := make(bson.A, 0, len(memberAddrs))
	for i, addr := range memberAddrs {
		members = append(members, bson.D{
			{Key: "_id", Value: i},
			{Key: "host", Value: addr},
		})
	}

	cmd := bson.D{
		{Key: "replSetInitiate", Value: bson.D{
			{Key: "_id", Value: setName},
			{Key: "members", Value: members},
		}},
	}

	err := client.Database("admin").RunCommand(ctx, cmd).Err()
	if err != nil {
		return fmt.Errorf("replSetInitiate of %q failed: %w", setName, err)
	}
	return nil
}

// Status fetches and decodes replSetGetStatus from the given client.
func Status(ctx context.Context, client *mongo.Client) (*ReplSetStatus, error) {
	var status ReplSetStatus
	cmd := bson.D{{Key: "replSetGetStatus", Value: 1}}
	if err := client.Database("admin").RunCommand(ctx, cmd).Decode(&status); err != nil {
		return nil, fmt.Errorf("replSetGetStatus failed: %w", err)
	}
	return &status, nil
}

// CountStates tallies the member states of a status reply.
func (s *ReplSetStatus) CountStates() (primaries, secondaries, other int) {
	for _, m := range s.Members {
		switch m.State {
		case statePrimary:
			primaries++
		case stateSecondary:
			secondaries++
		default:
			other++
		}
	}
	return primaries, secondaries, other
}

// Converged reports whether the set has settled into the expected shape:
// exactly one primary and the given number of secondaries, with no member
// in any other state.
func (s *ReplSetStatus) Converged(wantSecondaries int) bool {
	primaries, secondaries, other := s.CountStates()
	return primaries == 1 && secondaries == wantSecondaries && other == 0
}

// Describe renders the member states for diagnostics, e.g.
// "mongo-0:27017=PRIMARY mongo-1:27017=SECONDARY".
func (s *ReplSetStatus) Describe() string {
	out := ""
	for i, m := range s.Members {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%s=%s", m.Name, m.StateStr)
	}
	return out
}
