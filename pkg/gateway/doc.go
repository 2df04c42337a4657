// Package gateway exposes the dispatch core over HTTP: the submission
// endpoint, the status query and the dependency health probe.
//
// The transport layer stays deliberately thin. All correctness lives behind
// the dispatch.Dispatcher; handlers only translate between HTTP and the
// domain:
//
//	POST /api/v1/notifications      202 {id, status:"queued"}
//	                                 200 when deduplicated by idempotency key
//	                                 400 on validation errors
//	                                 503 when the store or broker is down
//	GET  /api/v1/notifications/{id} 200 record | 404
//	GET  /health                     200 | 503 with per-dependency detail
//
// A submission response never reflects delivery outcome; callers poll the
// status endpoint for that.
package gateway
