package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

// nearlySolved is a 3x3 board one move from solved: tile 8 sits in the
// bottom-right corner and the gap is at (2,1).
func nearlySolved() *engine.GameState {
	return &engine.GameState{
		Size:      3,
		Blank:     engine.BottomRight,
		BlankTag:  8,
		Cells:     []int{0, 1, 2, 3, 4, 5, 6, 8, 7},
		Solvable:  true,
		Playing:   true,
		ElapsedMS: 12500,
		Moves:     7,
		PuzzleSet: "mountain",
	}
}

func textOf(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func call(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL + "/")

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]int{"sum": body["a"] + body["b"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var result map[string]int
	err := client.apiCall(context.Background(), "POST", "/api", map[string]int{"a": 2, "b": 3}, &result)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if result["sum"] != 5 {
		t.Errorf("Expected sum 5, got %d", result["sum"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "GET", "/api", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 500 response")
	}

	if !strings.Contains(err.Error(), "API error") {
		t.Errorf("Expected 'API error' in error message, got: %v", err)
	}
}

func TestClient_apiCall_ErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "a round is in progress"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall(context.Background(), "POST", "/api", nil, nil)
	if err == nil || err.Error() != "a round is in progress" {
		t.Errorf("Expected server error message, got: %v", err)
	}
}

func TestClient_createSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}

		var req service.CreateSessionRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Size != 3 || req.Blank != "bottom-right" || !req.Start {
			t.Errorf("Unexpected request: %+v", req)
		}

		resp := service.SessionInfo{
			ID:         "test-session-123",
			ConfigName: "mountain",
			GameState:  nearlySolved(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), call("create_session", map[string]interface{}{
		"size":  float64(3),
		"blank": "bottom-right",
		"start": true,
	}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := textOf(t, result)
	if !strings.Contains(text, "test-session-123") {
		t.Errorf("Expected session ID in result, got: %s", text)
	}
	if !strings.Contains(text, "Board 3x3") {
		t.Errorf("Expected board in result, got: %s", text)
	}
}

func TestClient_listSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"count": 2,
			"sessions": []service.SessionInfo{
				{ID: "alpha", ConfigName: "mountain", CreatedAt: time.Now(), GameState: nearlySolved()},
				{ID: "beta", ConfigName: "harbor", CreatedAt: time.Now()},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListSessions(context.Background(), call("list_sessions", nil))
	if err != nil {
		t.Fatalf("listSessions failed: %v", err)
	}

	text := textOf(t, result)
	for _, want := range []string{"Active Sessions (2)", "alpha", "3x3, playing", "beta"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_requiresSessionID(t *testing.T) {
	client := NewClient("http://localhost:8080")
	ctx := context.Background()

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"get_session":     client.handleGetSession,
		"board_state":     client.handleBoardState,
		"tap_tile":        client.handleTapTile,
		"drag_tile":       client.handleDragTile,
		"configure_board": client.handleConfigureBoard,
		"next_puzzle":     client.handleNextPuzzle,
		"start_game":      client.roundHandler("start"),
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(ctx, call(name, map[string]interface{}{}))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !result.IsError {
				t.Error("Expected an error result")
			}
			if !strings.Contains(textOf(t, result), "session_id is required") {
				t.Errorf("Unexpected message: %s", textOf(t, result))
			}
		})
	}
}

func TestClient_tapTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s1/tap" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["row"] != 2 || body["col"] != 2 {
			t.Errorf("Unexpected body %v", body)
		}

		state := nearlySolved()
		state.Cells = []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
		state.Solved = true
		state.Playing = false
		state.Moves = 8
		state.Completion = &engine.Completion{ElapsedMS: 13000, Moves: 8}
		json.NewEncoder(w).Encode(service.MoveResult{
			Success:   true,
			Changed:   true,
			GameState: state,
			Events: []service.GameEvent{
				{Type: service.EventSolved, Completion: state.Completion},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleTapTile(context.Background(), call("tap_tile", map[string]interface{}{
		"session_id": "s1",
		"row":        float64(2),
		"col":        float64(2),
		"intent":     "slide tile 8 home",
	}))
	if err != nil {
		t.Fatalf("tapTile failed: %v", err)
	}

	text := textOf(t, result)
	for _, want := range []string{"✓ Move successful", "Solved in 8 moves", "SOLVED!"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestClient_tapTile_MissingCoordinates(t *testing.T) {
	client := NewClient("http://localhost:8080")
	result, err := client.handleTapTile(context.Background(), call("tap_tile", map[string]interface{}{
		"session_id": "s1",
		"row":        float64(1),
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected an error result without col")
	}
}

func TestClient_dragTile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.DragRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Row != 2 || req.Col != 0 || req.DX != 160 || req.DY != 0 || req.Frames != 30 {
			t.Errorf("Unexpected drag: %+v", req)
		}
		json.NewEncoder(w).Encode(service.MoveResult{
			Success:   true,
			Changed:   true,
			GameState: nearlySolved(),
			Events: []service.GameEvent{
				{Type: service.EventImpact, Impact: &engine.Impact{Tag: 6, Speed: 4.5}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleDragTile(context.Background(), call("drag_tile", map[string]interface{}{
		"session_id": "s1",
		"row":        float64(2),
		"col":        float64(0),
		"dx":         float64(160),
		"frames":     float64(30),
	}))
	if err != nil {
		t.Fatalf("dragTile failed: %v", err)
	}

	if text := textOf(t, result); !strings.Contains(text, "Tile 7 hit at speed 4.5") {
		t.Errorf("Expected impact in result, got: %s", text)
	}
}

func TestClient_roundControls(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Round started",
			"state":   nearlySolved(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	for _, op := range []string{"start", "stop", "shuffle"} {
		result, err := client.roundHandler(op)(context.Background(), call(op, map[string]interface{}{"session_id": "s1"}))
		if err != nil {
			t.Fatalf("%s failed: %v", op, err)
		}
		if result.IsError {
			t.Errorf("%s returned error: %s", op, textOf(t, result))
		}
	}

	want := []string{"/api/sessions/s1/start", "/api/sessions/s1/stop", "/api/sessions/s1/shuffle"}
	if strings.Join(paths, ",") != strings.Join(want, ",") {
		t.Errorf("Expected paths %v, got %v", want, paths)
	}
}

func TestClient_configureBoard_Conflict(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.ConfigureRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Size != 5 || req.Force {
			t.Errorf("Unexpected configure: %+v", req)
		}
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "game in progress"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleConfigureBoard(context.Background(), call("configure_board", map[string]interface{}{
		"session_id": "s1",
		"size":       float64(5),
	}))
	if err != nil {
		t.Fatalf("configureBoard failed: %v", err)
	}
	if !result.IsError || !strings.Contains(textOf(t, result), "game in progress") {
		t.Errorf("Expected conflict error, got: %s", textOf(t, result))
	}
}

func TestClient_nextPuzzle_DefaultsToNext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req service.PuzzleRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Next || req.Random || req.PuzzleSet != "" {
			t.Errorf("Unexpected puzzle request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "Puzzle set harbor",
			"state":   nearlySolved(),
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleNextPuzzle(context.Background(), call("next_puzzle", map[string]interface{}{"session_id": "s1"}))
	if err != nil {
		t.Fatalf("nextPuzzle failed: %v", err)
	}
	if !strings.Contains(textOf(t, result), "Puzzle set harbor") {
		t.Errorf("Unexpected result: %s", textOf(t, result))
	}
}

func TestClient_listPuzzleSets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/configs" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]service.ConfigInfo{
			{ConfigID: "mountain", Title: "Mountain Lake", Solvable: true},
			{ConfigID: "trick", Title: "Trick Shot", Story: "Sam Loyd would approve."},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListPuzzleSets(context.Background(), call("list_puzzle_sets", nil))
	if err != nil {
		t.Fatalf("listPuzzleSets failed: %v", err)
	}

	text := textOf(t, result)
	for _, want := range []string{"mountain - Mountain Lake", "trick - Trick Shot", "UNSOLVABLE", "Sam Loyd"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in result, got: %s", want, text)
		}
	}
}

func TestFormatBoard(t *testing.T) {
	got := formatBoard(nearlySolved())
	want := " 1  2  3\n 4  5  6\n 7 __  8\n"
	if got != want {
		t.Errorf("Expected board:\n%s\ngot:\n%s", want, got)
	}
}

func TestFormatBoard_Empty(t *testing.T) {
	if got := formatBoard(&engine.GameState{Size: 3}); got != "(empty board)\n" {
		t.Errorf("Unexpected board: %q", got)
	}
}

func TestMovableTiles(t *testing.T) {
	got := movableTiles(nearlySolved())
	want := []string{"(0,1)", "(1,1)", "(2,0)", "(2,2)"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFormatGameState(t *testing.T) {
	text := formatGameState(nearlySolved())

	expected := []string{
		"Board 3x3 (blank corner: bottom-right, puzzle: mountain)",
		"Movable tiles: (0,1) (1,1) (2,0) (2,2)",
		"Moves: 7",
		"Round: playing 12.5s",
	}
	for _, want := range expected {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in state, got: %s", want, text)
		}
	}
	if strings.Contains(text, "SOLVED") {
		t.Error("Unsolved board reported as solved")
	}
}

func TestFormatGameState_Unsolvable(t *testing.T) {
	state := nearlySolved()
	state.Solvable = false
	state.Playing = false

	text := formatGameState(state)
	if !strings.Contains(text, "cannot be solved") {
		t.Errorf("Expected unsolvable warning, got: %s", text)
	}
	if !strings.Contains(text, "Round: not playing") {
		t.Errorf("Expected idle round, got: %s", text)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if formatGameState(nil) != "No state available" {
		t.Error("Expected placeholder for nil state")
	}
}

func TestFormatMoveResult_Failed(t *testing.T) {
	text := formatMoveResult(&service.MoveResult{
		Success:   false,
		Message:   "tile is not in line with the gap",
		GameState: nearlySolved(),
	})

	if !strings.Contains(text, "✗ Move failed: tile is not in line with the gap") {
		t.Errorf("Expected failure line, got: %s", text)
	}
}

func TestFormatMoveResult_Unchanged(t *testing.T) {
	text := formatMoveResult(&service.MoveResult{Success: true, GameState: nearlySolved()})
	if !strings.Contains(text, "returned to their cells") {
		t.Errorf("Expected no-change line, got: %s", text)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), call("game_instructions", nil))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := textOf(t, result)
	expectedContent := []string{
		"Sliding Picture Puzzle - Complete Instructions",
		"GAME OBJECTIVE:",
		"BOARD NOTATION (board_state):",
		"MOVES:",
		"ROUNDS:",
		"STRATEGY:",
		"Good luck putting the picture back together!",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions, got: %s", content, text)
		}
	}
}
