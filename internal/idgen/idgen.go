// Package idgen generates default ids for definitions and execution
// frames when a caller does not supply one of their own, replacing the
// teacher's monotonic execution counter with random uuids so ids stay
// unique across separately-booted runtimes (useful once ids are
// logged/correlated across process restarts).
package idgen

import "github.com/google/uuid"

// New returns a fresh random identifier, formatted as a uuid string.
func New() string {
	return uuid.New().String()
}

// Prefixed returns New() prefixed by prefix and a dash, for ids that want
// to carry their kind at a glance (e.g. "exec-<uuid>").
func Prefixed(prefix string) string {
	return prefix + "-" + New()
}
