// Package layout computes the on-screen geometry of a room and moves tables.
//
// Tables are laid out left to right within a row and top to bottom across rows,
// each row centered under a fixed-width board. Holes reserve width without
// producing a table. A table may carry a persisted offset; while it is being
// moved with the keyboard it also carries a draft offset that is only merged
// when the moved table overlaps no other table.
package layout
