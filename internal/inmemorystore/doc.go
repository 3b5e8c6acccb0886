// Package inmemorystore provides an ephemeral, thread-safe, in-memory table of
// values keyed by string id.
//
// # Purpose
//
// The relay keeps one entry per connected participant. Entries are added on
// connect and removed on disconnect, while the fan-out path reads the whole
// table for every applied event.
//
// # Concurrency Model
//
// The store uses sync.Map because the access pattern matches what it is built
// for:
//   - **Independent Keys:** Each participant entry is written once and deleted once
//   - **Read-Heavy:** Every event reads the table, joins and leaves are rare
//
// Iteration results are sorted by id so that fan-out order is deterministic.
//
// Nothing is persisted; a restarted relay starts with an empty table.
package inmemorystore
