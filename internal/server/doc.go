// Package server provides HTTP routing, middleware and the JSON API behind `taskx serve`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /api/tasks"),
// so a path may be registered once per method and other methods get 405.
//
// # API
//
// [API] implements [Handler] and serves the dashboard endpoints:
//
//	GET  /api/health
//	GET  /api/tasks?status=pending&search=text
//	POST /api/tasks
//	POST /api/tasks/{id}/complete
//	GET  /api/stats
//	GET  /api/achievements
//	GET  /api/analytics
//
// Errors are JSON objects ({"error": "..."}); sentinel errors from the shared package map to status codes
// (not found 404, invalid input 400, anything else 500).
//
// # Middleware
//
// [Logging] writes one structured line per request, [RateLimit] answers 429 once the token bucket is empty
// and [Recover] turns handler panics into 500 responses.
package server
