// Package solve builds solver payloads and runs solve jobs.
//
// At most one job runs at a time. A job submits the payload, then polls the
// solver with a delay that grows up to a cap and never shrinks, until the
// solver reports a terminal status, the time budget plus a fixed grace period
// elapses, a transport error occurs, or the job is canceled. A successful
// result is handed to an apply callback that replaces the placements as a
// whole. Every exit path goes through one finalizer that releases the
// single-flight guard, the pending timer and the request context.
package solve
