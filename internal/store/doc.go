// Package store holds the single source of truth of an editing session: roster,
// room schema, placement index, forbidden seats, constraint list with its batch
// markers, selection and table offsets.
//
// A Store is not safe for concurrent use; the editor serializes access to it.
// Every component receives the same *Store by reference.
package store
