// Package types provides core type definitions and interfaces for the seatplan library.
//
// This package contains shared types that are used across multiple packages in the
// seatplan library. By keeping these types in a separate package, the internal
// components (room model, assignment engine, constraint manager, layout engine and
// solve orchestrator) can depend on them without importing the root package.
//
// Key types:
//   - Student: one roster entry
//   - Schema: rows of tables and holes describing the room
//   - SeatKey / TableKey: canonical seat and table identities
//   - Constraint / BatchMarker / Objective: placement rules and their UI-only companions
//   - Selection / Offset / Draft: interactive editing state
//   - SolveJob / JobStatus: solver job lifecycle
//   - Logger, MetricsCollector, Hooks, Clock: ambient collaborators
package types
