// Package mongoc wraps the official MongoDB Go driver with the handful of
// probe operations the checks need: connecting with or without credentials,
// pinging, running admin commands, and a write/read round trip.
//
// The package asserts nothing itself — it only reports what the server
// under test said, and the checks decide whether that is acceptable.
package mongoc
