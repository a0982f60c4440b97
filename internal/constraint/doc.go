// Package constraint manages placement rules created from a selection of
// students.
//
// Rules created together form a batch: every expanded entry carries the same
// batch id and the batch is summarized by one marker whose count always equals
// the number of entries sharing its id. Batches can be edited in place, keeping
// their id, or deleted as a whole. Seat-bound rules (forbid_seat, exact_seat)
// are never batched and are deleted one at a time together with their side
// effect on the plan.
package constraint
