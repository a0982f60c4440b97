// Package assignment implements the seat-click state machine of the editor:
// selecting students and seats, placing, swapping and pinning students,
// unassigning, banning seats, resetting to pinned placements and automatic fill.
//
// The engine mutates a shared *store.Store and is not safe for concurrent use;
// the editor serializes calls.
package assignment
