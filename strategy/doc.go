// Package strategy provides built-in fill strategies used by the editor's
// automatic fill to seat students who have no placement yet.
//
// The package includes two strategies:
//
//   - Sequential: fills free seats front to back, left to right, in roster order
//   - Scatter: spreads students over the room with an xxh3 seat ring, stable for a given seed
//
// # Strategy Selection Guide
//
// Sequential:
//   - Use for a quick, predictable first draft
//   - Leaves the back of the room empty when there are more seats than students
//
// Scatter:
//   - Use to spread students over the whole room
//   - Same room, roster and seed always give the same result
//
// Strategies never see constraints: the editor only offers them seats that are
// valid, not forbidden and not occupied, and never moves pinned students.
// Custom strategies can be implemented by satisfying the types.FillStrategy interface.
package strategy
