// Package api provides the HTTP REST API for puzzle sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session {id, puzzle_set, size, blank, labels, start}
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Side by side summary (?sessionIds=a,b or ?configName=classic)
//   - GET /api/sessions/{id} - Session info
//   - DELETE /api/sessions/{id} - Delete a session
//   - GET /api/sessions/{id}/state - Board state
//
// Gameplay:
//   - POST /api/sessions/{id}/tap {row, col}
//   - POST /api/sessions/{id}/drag {row, col, dx, dy, frames}
//   - POST /api/sessions/{id}/pointer {type, device, id, x, y, t}
//   - POST /api/sessions/{id}/start, /stop, /shuffle
//   - POST /api/sessions/{id}/configure {size, blank, labels, tap_duration_ms, tap_distance, force}
//   - POST /api/sessions/{id}/puzzle {puzzle_set | next | random, force}
//
// Catalog:
//   - GET /api/configs - List puzzle sets
//   - GET /api/configs/{name} - One puzzle set
//   - POST /api/configs - Save a puzzle set
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - Upgrade to the live websocket feed
//
// Tap and drag answer with a MoveResult once the tiles have come to rest;
// pointer events are queued and play out on the server clock. Every change
// is also pushed to the session's websocket clients.
//
// Error Handling:
//
// Errors are returned as {"error": "..."}. Unknown sessions and puzzle sets
// give 404, invalid boards and requests 400, and changes refused during a
// round 409.
package api
