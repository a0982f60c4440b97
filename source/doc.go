// Package source provides built-in roster source implementations.
//
// Roster sources hand the editor a structured student list. The package
// includes:
//
//   - Static: Fixed list of students
//
// Custom sources (CSV uploads, school information system exports) can be
// implemented by satisfying the types.RosterSource interface.
package source
