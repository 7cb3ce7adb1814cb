package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/wricardo/mcp-training/slidepuzzle/game/config"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
	"github.com/wricardo/mcp-training/slidepuzzle/game/session"
	"github.com/wricardo/mcp-training/slidepuzzle/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.GameService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service: gameService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	// Unified sessions for multi-session view (must be before {id} pattern)
	api.HandleFunc("/sessions/unified", s.handleUnifiedSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")
	api.HandleFunc("/sessions/{id}/state", s.handleGetGameState).Methods("GET")

	// Gameplay
	api.HandleFunc("/sessions/{id}/tap", s.handleTap).Methods("POST")
	api.HandleFunc("/sessions/{id}/drag", s.handleDrag).Methods("POST")
	api.HandleFunc("/sessions/{id}/pointer", s.handlePointer).Methods("POST")
	api.HandleFunc("/sessions/{id}/start", s.roundHandler("Round started", s.service.Start)).Methods("POST")
	api.HandleFunc("/sessions/{id}/stop", s.roundHandler("Round stopped", s.service.Stop)).Methods("POST")
	api.HandleFunc("/sessions/{id}/shuffle", s.roundHandler("Board shuffled", s.service.Shuffle)).Methods("POST")
	api.HandleFunc("/sessions/{id}/configure", s.handleConfigure).Methods("POST")
	api.HandleFunc("/sessions/{id}/puzzle", s.handlePuzzle).Methods("POST")

	// Catalog
	api.HandleFunc("/configs", s.handleListConfigs).Methods("GET")
	api.HandleFunc("/configs", s.handleCreateConfig).Methods("POST")
	api.HandleFunc("/configs/{name}", s.handleGetConfig).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError picks the status code from the error chain.
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, config.ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrGameInProgress),
		errors.Is(err, session.ErrSessionAlreadyExists),
		errors.Is(err, service.ErrTileHeld):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidBoard),
		errors.Is(err, engine.ErrInvalidPermutation),
		errors.Is(err, engine.ErrInvalidPuzzleSet),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, session.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidMove),
		errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// decodeBody decodes an optional JSON body into v.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// broadcastState pushes a state to websocket watchers.
func (s *Server) broadcastState(sessionID string, state *engine.GameState) {
	if s.hub != nil && state != nil {
		s.hub.BroadcastToSession(sessionID, state)
	}
}

// broadcastResult pushes a move result and its events.
func (s *Server) broadcastResult(sessionID string, result *service.MoveResult) {
	if s.hub == nil || result == nil {
		return
	}
	s.hub.BroadcastToSession(sessionID, result.GameState)
	for _, ev := range result.Events {
		s.hub.BroadcastEvent(sessionID, ev.Type, ev)
	}
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		service.CreateSessionRequest
		ConfigID string `json:"config_id,omitempty"` // Alias for puzzle_set
	}

	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PuzzleSet == "" {
		req.PuzzleSet = req.ConfigID
	}

	info, err := s.service.CreateSession(r.Context(), req.CreateSessionRequest)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, info)
}

// sessionKeys are the orderings accepted by ?sort= on the session list.
var sessionKeys = map[string]func(a, b *service.SessionInfo) bool{
	"accessed": func(a, b *service.SessionInfo) bool { return a.LastAccessedAt.Before(b.LastAccessedAt) },
	"created":  func(a, b *service.SessionInfo) bool { return a.CreatedAt.Before(b.CreatedAt) },
	"moves":    func(a, b *service.SessionInfo) bool { return movesOf(a) < movesOf(b) },
	"elapsed":  func(a, b *service.SessionInfo) bool { return elapsedOf(a) < elapsedOf(b) },
}

func movesOf(info *service.SessionInfo) int {
	if info.GameState == nil {
		return 0
	}
	return info.GameState.Moves
}

func elapsedOf(info *service.SessionInfo) int64 {
	if info.GameState == nil {
		return 0
	}
	return info.GameState.ElapsedMS
}

// handleListSessions lists sessions, newest access first unless
// ?sort=accessed|created|moves|elapsed and ?order=asc|desc say otherwise.
// ?limit=N trims the page; total always counts every session.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	query := r.URL.Query()
	sortBy, order := query.Get("sort"), query.Get("order")
	less, ok := sessionKeys[sortBy]
	if !ok {
		sortBy, less = "accessed", sessionKeys["accessed"]
	}
	if order != "asc" {
		order = "desc"
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		if order == "asc" {
			return less(sessions[i], sessions[j])
		}
		return less(sessions[j], sessions[i])
	})

	if l, err := strconv.Atoi(query.Get("limit")); err == nil && l > 0 && l < len(sessions) {
		sessions = sessions[:l]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	info, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

func (s *Server) handleGetGameState(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	state, err := s.service.GetGameState(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Gameplay Handlers

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req struct {
		Row *int `json:"row"`
		Col *int `json:"col"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Row == nil || req.Col == nil {
		respondError(w, http.StatusBadRequest, "row and col are required")
		return
	}

	result, err := s.service.Tap(r.Context(), sessionID, *req.Row, *req.Col)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastResult(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDrag(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.DragRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.Drag(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastResult(sessionID, result)
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var ev service.PointerEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.Pointer(r.Context(), sessionID, ev); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "Pointer event queued",
	})
}

// roundHandler serves the body-less round controls.
func (s *Server) roundHandler(message string, op func(ctx context.Context, sessionID string) (*engine.GameState, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["id"]

		state, err := op(r.Context(), sessionID)
		if err != nil {
			respondServiceError(w, err)
			return
		}

		s.broadcastState(sessionID, state)
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"message": message,
			"state":   state,
		})
	}
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.ConfigureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.Configure(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(sessionID, state)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Board configured",
		"state":   state,
	})
}

func (s *Server) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req service.PuzzleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := s.service.ChangePuzzle(r.Context(), sessionID, req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	s.broadcastState(sessionID, state)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Puzzle set %s", state.PuzzleSet),
		"state":   state,
	})
}

// Configuration Handlers

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.service.ListConfigs(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, configs)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configName := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	set, err := s.service.LoadConfig(r.Context(), configName)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, set)
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var set engine.PuzzleSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if set.Name == "" {
		respondError(w, http.StatusBadRequest, "Config name is required")
		return
	}

	if err := s.service.SaveConfig(r.Context(), set.Name, &set); err != nil {
		respondError(w, statusFor(err), fmt.Sprintf("Failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":   "Configuration saved successfully",
		"config_id": set.Name,
	})
}

// handleUnifiedSessions compares several sessions side by side, selected by
// ?sessionIds=a,b or ?configName=classic. Entries are ranked: solved
// sessions first by fastest last round then fewest moves, then the rest by
// how close their board is to solved.
func (s *Server) handleUnifiedSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.selectSessions(r)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return ranksBefore(sessions[i], sessions[j])
	})

	configName := ""
	if len(sessions) > 0 {
		configName = sessions[0].ConfigName
	}

	solved := 0
	entries := make([]map[string]interface{}, 0, len(sessions))
	for i, info := range sessions {
		entry := map[string]interface{}{
			"rank":          i + 1,
			"session_id":    info.ID,
			"config_name":   info.ConfigName,
			"game_state":    info.GameState,
			"created_at":    info.CreatedAt,
			"last_accessed": info.LastAccessedAt,
		}
		if st := info.GameState; st != nil {
			if st.Solved {
				solved++
			}
			entry["misplaced"] = engine.MisplacedTiles(st.Cells, st.BlankTag)
			if st.Completion != nil {
				entry["completion"] = st.Completion
			}
		}
		entries = append(entries, entry)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"config_name": configName,
		"solved":      solved,
		"sessions":    entries,
	})
}

func (s *Server) selectSessions(r *http.Request) ([]*service.SessionInfo, error) {
	query := r.URL.Query()

	if ids := query.Get("sessionIds"); ids != "" {
		var out []*service.SessionInfo
		for _, id := range strings.Split(ids, ",") {
			if id = strings.TrimSpace(id); id == "" {
				continue
			}
			if info, err := s.service.GetSession(r.Context(), id); err == nil {
				out = append(out, info)
			}
		}
		return out, nil
	}

	all, err := s.service.ListSessions(r.Context())
	if err != nil {
		return nil, err
	}
	name := query.Get("configName")
	out := make([]*service.SessionInfo, 0, len(all))
	for _, info := range all {
		if name == "" || info.ConfigName == name {
			out = append(out, info)
		}
	}
	return out, nil
}

func ranksBefore(a, b *service.SessionInfo) bool {
	sa, sb := a.GameState, b.GameState
	switch {
	case sa == nil || sb == nil:
		return sb == nil && sa != nil
	case sa.Solved != sb.Solved:
		return sa.Solved
	case sa.Solved:
		ca, cb := sa.Completion, sb.Completion
		if ca == nil || cb == nil {
			return cb == nil && ca != nil
		}
		if ca.ElapsedMS != cb.ElapsedMS {
			return ca.ElapsedMS < cb.ElapsedMS
		}
		return ca.Moves < cb.Moves
	}
	return engine.MisplacedTiles(sa.Cells, sa.BlankTag) < engine.MisplacedTiles(sb.Cells, sb.BlankTag)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}
	if s.hub == nil {
		http.Error(w, "websocket disabled", http.StatusServiceUnavailable)
		return
	}

	if _, err := s.service.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	log.Printf("[WS] upgrade session=%s remote=%s", sessionID, r.RemoteAddr)
	s.hub.ServeWS(w, r, sessionID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
