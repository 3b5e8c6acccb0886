// Package dag answers reachability questions over a directed graph of nodes
// and links. Its main use is vetoing a link while a participant is still
// drawing it: a new link origin -> destination closes a cycle exactly when a
// path destination -> origin already exists.
//
// The package only reads. It works against the small Adjacency interface, so
// it can be run on a participant's local replica or on the relay's
// authoritative copy without either depending on this package.
package dag
