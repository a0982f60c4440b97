// Package room implements the seat model of a classroom: seat validity, table
// enumeration, the maximum Manhattan span used to bound distance rules, and the
// reconciliation that keeps placements, forbidden seats and seat-bound rules
// consistent with the schema after every schema edit.
//
// All functions are pure; callers own the state they pass in.
package room
