package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Sliding Picture Puzzle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Sliding Picture Puzzle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
A picture is cut into an N x N grid of tiles with one corner tile missing.
Slide tiles into the gap until every tile is back home.

AVAILABLE TOOLS:
- create_session: Create a puzzle session (size, blank corner, picture)
- list_sessions / get_session: Inspect sessions
- board_state: Show the board as a grid of tile numbers
- tap_tile: Slide a tile (and the tiles between it and the gap) toward the gap
- drag_tile: Drag a tile by a distance, like a finger would
- start_game / stop_game / shuffle: Round control
- configure_board: Change size, blank corner or labels
- list_puzzle_sets / next_puzzle: Pick a picture
- game_instructions: Rules and strategy

NOTE: The 'intent' parameter on tap_tile/drag_tile serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func intentProp() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new puzzle session. Without a round the board starts solved; pass start=true to shuffle and start timing.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"puzzle_set": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle set to use (optional, see list_puzzle_sets)",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Tiles per side, 2 to 9 (default 4)",
				},
				"blank": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right"},
					"description": "Corner whose tile is missing",
				},
				"labels": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"none", "phone", "keypad"},
					"description": "Tile numbering",
				},
				"start": map[string]interface{}{
					"type":        "boolean",
					"description": "Shuffle and start a round right away",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active puzzle sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the board as a grid of tile numbers, the gap, the tiles that can move and the round status",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "tap_tile",
		Description: "Tap the tile at (row, col). If it is in the gap's row or column, it and every tile between it and the gap slide one cell toward the gap.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the tile (0-based, top row is 0)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the tile (0-based, left column is 0)",
				},
				"intent": intentProp(),
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleTapTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "drag_tile",
		Description: "Press on the tile at (row, col), drag it by (dx, dy) board units over a number of frames and let go. Tiles in the way are pushed; on release each tile settles on the nearest cell.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the tile (0-based)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the tile (0-based)",
				},
				"dx": map[string]interface{}{
					"type":        "number",
					"description": "Horizontal drag distance, positive is right",
				},
				"dy": map[string]interface{}{
					"type":        "number",
					"description": "Vertical drag distance, positive is down",
				},
				"frames": map[string]interface{}{
					"type":        "integer",
					"description": "Frames the drag takes (default 20, 60 frames per second)",
				},
				"intent": intentProp(),
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDragTile)

	for _, op := range []struct{ name, path, desc string }{
		{"start_game", "start", "Shuffle the board and start a timed round"},
		{"stop_game", "stop", "Stop the current round without solving it"},
		{"shuffle", "shuffle", "Shuffle the board without starting a round"},
	} {
		c.mcpServer.AddTool(mcp.Tool{
			Name:        op.name,
			Description: op.desc,
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]interface{}{
					"session_id": sessionProp(),
				},
				Required: []string{"session_id"},
			},
		}, c.roundHandler(op.path))
	}

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "configure_board",
		Description: "Change the board. Anything beyond the labels rebuilds it, which needs force=true during a round.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Tiles per side, 2 to 9",
				},
				"blank": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"top-left", "top-right", "bottom-left", "bottom-right"},
					"description": "Corner whose tile is missing",
				},
				"labels": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"none", "phone", "keypad"},
					"description": "Tile numbering",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "End a running round if needed",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleConfigureBoard)

	// Catalog
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_puzzle_sets",
		Description: "List available puzzle sets (pictures)",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPuzzleSets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "next_puzzle",
		Description: "Switch the session to another picture: a named set, the next solvable one, or a random one. Next and random start a new round",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProp(),
				"puzzle_set": map[string]interface{}{
					"type":        "string",
					"description": "Puzzle set to switch to (optional)",
				},
				"random": map[string]interface{}{
					"type":        "boolean",
					"description": "Pick a random solvable set instead of the next one",
				},
				"force": map[string]interface{}{
					"type":        "boolean",
					"description": "End a running round if needed",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleNextPuzzle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// arguments returns the call arguments, never nil.
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument.
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)

	var body service.CreateSessionRequest
	body.PuzzleSet, _ = args["puzzle_set"].(string)
	body.Size, _ = intArg(args, "size")
	body.Blank, _ = args["blank"].(string)
	body.Labels, _ = args["labels"].(string)
	body.Start, _ = args["start"].(bool)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nPuzzle set: %s\n", session.ID, session.ConfigName)
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = fmt.Sprintf(", %dx%d, %s", s.GameState.Size, s.GameState.Size, roundStatus(s.GameState))
		}
		result += fmt.Sprintf("- %s (Puzzle: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleTapTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	row, okRow := intArg(args, "row")
	col, okCol := intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_, _ = args["intent"].(string)

	var result service.MoveResult
	body := map[string]int{"row": row, "col": col}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/tap"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

func (c *Client) handleDragTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	var body service.DragRequest
	var okRow, okCol bool
	body.Row, okRow = intArg(args, "row")
	body.Col, okCol = intArg(args, "col")
	if !okRow || !okCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}
	body.DX, _ = args["dx"].(float64)
	body.DY, _ = args["dy"].(float64)
	body.Frames, _ = intArg(args, "frames")

	var result service.MoveResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/drag"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(&result)), nil
}

// roundHandler proxies the body-less round controls.
func (c *Client) roundHandler(op string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, errResult := requireSession(arguments(request))
		if errResult != nil {
			return errResult, nil
		}

		var response struct {
			Message string            `json:"message"`
			State   *engine.GameState `json:"state"`
		}
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/"+op), nil, &response); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
	}
}

func (c *Client) handleConfigureBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	var body service.ConfigureRequest
	body.Size, _ = intArg(args, "size")
	body.Blank, _ = args["blank"].(string)
	body.Labels, _ = args["labels"].(string)
	body.Force, _ = args["force"].(bool)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/configure"), body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleListPuzzleSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Puzzle Sets:\n\n"
	for _, config := range configs {
		solvable := "solvable"
		if !config.Solvable {
			solvable = "UNSOLVABLE (shuffled into the wrong parity on purpose)"
		}
		result += fmt.Sprintf("• %s - %s\n  %s\n", config.ConfigID, config.Title, solvable)
		if config.Story != "" {
			result += fmt.Sprintf("  %s\n", config.Story)
		}
		result += "\n"
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleNextPuzzle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	var body service.PuzzleRequest
	body.PuzzleSet, _ = args["puzzle_set"].(string)
	body.Random, _ = args["random"].(bool)
	body.Force, _ = args["force"].(bool)
	if body.PuzzleSet == "" && !body.Random {
		body.Next = true
	}

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/puzzle"), body, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Sliding Picture Puzzle - Complete Instructions

GAME OBJECTIVE:
A picture is cut into an N x N grid of square tiles. The tile of one corner
is missing, leaving a gap. Slide tiles until the picture is whole again.

BOARD NOTATION (board_state):
• Rows count from 0 at the top, columns from 0 at the left
• Each tile shows its number: tile k belongs at row (k-1) / N, column (k-1) % N
• The gap is shown as __
• A board is solved when the numbers read 1, 2, 3, ... in order with the gap
  in the blank corner

MOVES:
• tap_tile(row, col): the tile must share a row or column with the gap. It
  and every tile between it and the gap slide one cell toward the gap, so
  the gap ends up where you tapped
• drag_tile(row, col, dx, dy): a physical drag. A tile moves only along the
  gap's row or column and pushes the tiles in front of it. On release each
  tile settles on the nearest cell. A short, quick drag counts as a tap
• Tapping a tile that is not in line with the gap does nothing

ROUNDS:
• start_game shuffles and starts the timer
• The round ends by itself when the board is solved; the result shows the
  time and the number of moves
• stop_game ends the round early
• Some puzzle sets are deliberately unsolvable: their shuffle lands in the
  wrong parity and no sequence of moves can solve them

STRATEGY:
• Solve the top row first, then the left column, shrinking the puzzle to an
  (N-1) x (N-1) board each time
• Place the last two tiles of a row together: park one tile at the corner,
  bring the other beneath it, then rotate both into place
• Finish with the final 2 x 2 block by cycling the three tiles around the gap
• Watch the "Movable tiles" line in board_state: those are your legal taps

Good luck putting the picture back together!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nPuzzle set: %s\nCreated: %s\nLast accessed: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.GameState != nil {
		result += "\n" + formatGameState(session.GameState)
	}
	return result
}

func roundStatus(state *engine.GameState) string {
	switch {
	case state.Playing:
		return fmt.Sprintf("playing %s", formatElapsed(state.ElapsedMS))
	case state.Solved:
		return "solved"
	}
	return "not playing"
}

func formatElapsed(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Truncate(100 * time.Millisecond).String()
}

// formatGameState renders the board as numbers, one row per line.
func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Board %dx%d (blank corner: %s, puzzle: %s)\n\n", state.Size, state.Size, state.Blank, state.PuzzleSet)
	b.WriteString(formatBoard(state))
	b.WriteString("\n")

	if movable := movableTiles(state); len(movable) > 0 {
		fmt.Fprintf(&b, "Movable tiles: %s\n", strings.Join(movable, " "))
	}
	fmt.Fprintf(&b, "Moves: %d\n", state.Moves)
	fmt.Fprintf(&b, "Round: %s\n", roundStatus(state))
	if !state.Solvable {
		b.WriteString("⚠️  This arrangement cannot be solved\n")
	}
	if state.Solved {
		b.WriteString("🎉 SOLVED!\n")
	}
	if c := state.Completion; c != nil {
		fmt.Fprintf(&b, "Last round: %d moves in %s\n", c.Moves, formatElapsed(c.ElapsedMS))
	}
	return b.String()
}

// formatBoard writes one line per row. Tiles show their number (home index
// plus one) and the gap shows as __.
func formatBoard(state *engine.GameState) string {
	n := state.Size
	if n <= 0 || len(state.Cells) != n*n {
		return "(empty board)\n"
	}
	width := len(fmt.Sprint(n * n))
	if width < 2 {
		width = 2
	}

	var b strings.Builder
	for row := 0; row < n; row++ {
		cells := make([]string, n)
		for col := 0; col < n; col++ {
			tag := state.Cells[row*n+col]
			if tag == state.BlankTag {
				cells[col] = strings.Repeat("_", width)
			} else {
				cells[col] = fmt.Sprintf("%*d", width, tag+1)
			}
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteString("\n")
	}
	return b.String()
}

// blankCell locates the gap.
func blankCell(state *engine.GameState) (row, col int, ok bool) {
	for i, tag := range state.Cells {
		if tag == state.BlankTag {
			return i / state.Size, i % state.Size, true
		}
	}
	return 0, 0, false
}

// movableTiles lists the cells in line with the gap as (row,col).
func movableTiles(state *engine.GameState) []string {
	br, bc, ok := blankCell(state)
	if !ok {
		return nil
	}
	var out []string
	for row := 0; row < state.Size; row++ {
		for col := 0; col < state.Size; col++ {
			if (row == br) != (col == bc) {
				out = append(out, fmt.Sprintf("(%d,%d)", row, col))
			}
		}
	}
	return out
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	switch {
	case result.Success && result.Changed:
		b.WriteString("✓ Move successful")
	case result.Success:
		b.WriteString("✓ Tiles returned to their cells")
	default:
		b.WriteString("✗ Move failed")
	}
	if result.Message != "" {
		fmt.Fprintf(&b, ": %s", result.Message)
	}
	b.WriteString("\n")

	for _, ev := range result.Events {
		switch ev.Type {
		case service.EventSolved:
			if ev.Completion != nil {
				fmt.Fprintf(&b, "🎉 Solved in %d moves, %s\n", ev.Completion.Moves, formatElapsed(ev.Completion.ElapsedMS))
			}
		case service.EventImpact:
			if ev.Impact != nil {
				fmt.Fprintf(&b, "• Tile %d hit at speed %.1f\n", ev.Impact.Tag+1, ev.Impact.Speed)
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}
