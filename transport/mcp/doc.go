// Package mcp provides a Model Context Protocol front end for the sliding
// picture puzzle.
//
// The Client is thin: every tool call becomes a request against the REST
// API, so an agent and a browser watching the same session see the same
// board.
//
// MCP Tools:
//
//   - create_session, list_sessions, get_session: session management
//   - board_state: the board as a grid of tile numbers plus the legal taps
//   - tap_tile: slide a tile and its neighbours toward the gap
//   - drag_tile: a scripted drag, settled on release
//   - start_game, stop_game, shuffle: round control
//   - configure_board: size, blank corner and labels
//   - list_puzzle_sets, next_puzzle: picture selection
//   - game_instructions: rules and strategy
//
// Board Notation:
//
// Tiles are numbered by their home cell in reading order starting at 1 and
// the gap is drawn as underscores. Rows and columns are zero based.
//
// Transport Modes:
//
//	// Stdio
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP
//	http.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
//		response := client.GetMCPServer().HandleMessage(r.Context(), body)
//		json.NewEncoder(w).Encode(response)
//	})
package mcp
