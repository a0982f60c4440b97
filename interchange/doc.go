// Package interchange encodes and decodes the "plandeclasse-export" JSON
// document used to save, share and restore a seating plan.
//
// Batch markers are written after the constraint entries so older readers keep
// working. On decode markers are rebuilt from the batch ids of the entries, and
// objective summaries are ignored.
package interchange
