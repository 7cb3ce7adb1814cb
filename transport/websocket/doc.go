// Package websocket provides the live transport for puzzle sessions.
//
// Architecture:
//
// A central Hub owns every connection. Each client has a read pump that
// feeds pointer events into its session and a write pump that drains the
// client's send buffer. The hub's Run loop is the only goroutine that
// touches the client map for registration and fan-out.
//
// Message Protocol:
//
//   - Incoming: one service.PointerEvent per message,
//     {"type":"down","device":"mouse","id":0,"x":120,"y":80,"t":1500}
//   - Outgoing: Message values. "connected" carries the client id and
//     whether it controls the session, "state_update" follows REST changes,
//     "frame" carries each rendered tick, and "impact" and "solved" carry
//     engine events. A websocket frame may hold several messages separated
//     by newlines.
//
// Control:
//
// A client becomes the input source of its session's buffer when it
// connects. The newest client wins and older ones get a "control" message
// and keep watching. Closing the socket releases any press still open at
// its last position.
//
// Usage:
//
//	hub := websocket.NewHub().WithBackend(gameService)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, mux.Vars(r)["sessionId"])
//	})
package websocket
