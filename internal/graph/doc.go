// Package graph provides the in-memory diagram model shared by the relay and
// by every participant: a table of shape nodes and a table of directed links.
//
// # Why Graph Package Exists
//
// Both sides of the synchronization engine need the exact same mutation
// semantics, otherwise replicas drift apart. The relay applies inbound events
// to its authoritative copy and each participant applies the same events to
// its local copy. Keeping the tables and their rules in one package means
// convergence only depends on event order, never on which side applied it.
//
// # Tolerant Operations
//
// The event stream may carry redundant or out-of-order events: an update for
// a node that a concurrent participant already deleted, or a link whose
// endpoint vanished before the link arrived. None of these are errors:
//
//   - Updates and deletes addressing an unknown id are no-ops and report false.
//   - CreateLink with a missing endpoint is dropped; no half-formed link is
//     stored.
//   - DeleteNode never cascades. Links referencing the node stay in the link
//     table and dangle until someone deletes them.
//
// # Identifiers
//
// Node and link ids live in two independent tables, so a node and a link may
// share an id. Objects created without an id receive one from the graph's
// IDGenerator, which prefixes a per-connection identifier to a strictly
// increasing millisecond timestamp.
//
// # Snapshots
//
// Snapshot and Restore move the whole graph in and out as a plain value with a
// stable JSON encoding. Restore swaps both tables under the write lock, so
// readers never observe a half-restored graph.
//
// # Thread-Safety
//
// All Graph methods are safe for concurrent use. Mutation order is the
// caller's business: the relay funnels every event through one goroutine.
package graph
