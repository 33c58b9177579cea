// Package http implements confgate's HTTP handlers. Handlers stay thin: they
// parse the request, call a service and render the result with chi/render.
// Failures go through errors.ErrorHandler so every error body is an RFC 7807
// problem document.
//
// Routes, as mounted by the application router:
//
//	GET /api                     "Hello"
//	GET /api/health              liveness summary
//	GET /api/health/live         runtime details
//	GET /api/health/ready        503 problem until the required keys resolve
//	GET /api/version             build and runtime information
//	GET /api/config/schema       schema description, ?format=json|yaml
//	GET /api/config/schema/{key} one key's description
//	GET /api/config/status       per-key resolution state, never values
//
// No handler ever writes a configuration value. The schema endpoint only
// shows rule defaults, and the status endpoint reports states and reasons.
package http
