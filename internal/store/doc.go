// Package store persists selection decisions to a local SQLite audit log.
//
// The engine itself never touches the store - binding must work with no
// filesystem at all. The store exists for the audit surface: `autoalloc
// check --record` appends the decision the process actually made, and
// fingerprint comparison across records detects configuration drift between
// runs (build flags changed, machine changed, policy changed).
//
// One row per audited decision, append-only. Records are content-addressed
// by the canonical fingerprint of their decision fields, so two rows with
// equal fingerprints are the same decision regardless of when they were
// recorded.
package store
