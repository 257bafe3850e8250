// Package live exposes the bot's current state to observers.
//
// Status is the JSON snapshot the session pushes after every window
// rotation. Board holds the latest Status (readers treat one older than the
// TTL as stale). Hub broadcasts the board's contents to WebSocket clients
// on a fixed interval, with an immediate snapshot on connect.
//
// Message format sent to clients:
//
//	{
//	  "event": "status",
//	  "data":  { /* same schema as GET /api/v1/status */ }
//	}
//
// The upgrader accepts all origins; apply CORS restrictions at the reverse
// proxy level. The WebSocket endpoint is mounted at /ws/live by main.
package live
