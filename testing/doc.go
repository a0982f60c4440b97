// Package testing provides test utilities for the seatplan library.
//
// This package offers an in-process solver and export service for integration
// testing, a fake clock for driving solve polling deterministically, and a test
// logger. It follows Go's convention of providing testing utilities in a
// dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - NewFakeSolver: Scriptable HTTP solver/export service on httptest
//   - NewFakeClock: Clock whose Sleep advances time instantly
//   - NewTestLogger: Logger writing to t.Logf that records entries for assertions
//
// Example usage:
//
//	import (
//	    "testing"
//	    seatplantest "github.com/arloliu/seatplan/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    fs := seatplantest.NewFakeSolver(t)
//	    fs.Script(types.StatusReport{Status: types.SolverSuccess})
//	    be, _ := backend.NewHTTP(fs.URL())
//	    // Use be as the solver backend
//	}
package testing
