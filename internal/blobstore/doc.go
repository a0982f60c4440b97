// Package blobstore keeps rendered plan artifacts for a short time so they can
// be downloaded through an opaque token.
//
// Each artifact is stored under "pc:{token}:{format}" and its public file name
// under "pc:{token}:{format}:name". Two implementations exist:
//
//   - Redis: shared between service replicas, expiry handled by the server
//   - Memory: single process fallback and tests, expiry checked on read
package blobstore
