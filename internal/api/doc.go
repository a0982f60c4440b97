// Package api exposes editor sessions over HTTP.
//
// Each session owns one seatplan.Editor. Routes live under /v1/sessions/:id and
// map one to one onto Editor operations; mutations answer with the new View and
// an ETag holding the plan fingerprint. Rendered artifacts are kept for a short
// time in a blobstore.Store and served through signed download links.
package api
