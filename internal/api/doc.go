// Package api implements the read-only HTTP API over the snapshot store.
//
// New(store) returns an http.Handler that serves:
//
//	GET /               liveness probe, always {"status": "ok"}
//	GET /api/hot-list   current snapshot: retrieved_at_utc, item_count, data
//
// All endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for non-GET methods and 404 for unknown paths
//   - Never trigger a refresh; they only read the last published snapshot
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
