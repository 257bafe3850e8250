// Package api implements the debug HTTP endpoints of crowdplay.
//
// New(board) returns an http.Handler that serves:
//
//	GET /healthz         — liveness and process uptime
//	GET /api/v1/status   — current live.Status; 503 while stale
//
// All endpoints respond with Content-Type: application/json and return 405
// for non-GET methods. No external HTTP framework is used.
package api
