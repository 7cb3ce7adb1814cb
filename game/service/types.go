package service

import (
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// Event types carried by GameEvent and websocket messages.
const (
	EventImpact    = "impact"
	EventSolved    = "solved"
	EventMove      = "move"
	EventStart     = "start"
	EventStop      = "stop"
	EventShuffle   = "shuffle"
	EventConfigure = "configure"
	EventPuzzle    = "puzzle"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	BoardConfig    engine.BoardConfig `json:"board_config"`
	PuzzleSet      engine.PuzzleSet   `json:"puzzle_set"`
}

// CreateSessionRequest selects the picture and board for a new session.
// Zero fields fall back to the defaults.
type CreateSessionRequest struct {
	ID        string `json:"id,omitempty"`
	PuzzleSet string `json:"puzzle_set,omitempty"`
	Size      int    `json:"size,omitempty"`
	Blank     string `json:"blank,omitempty"`
	Labels    string `json:"labels,omitempty"`
	Start     bool   `json:"start,omitempty"`
}

// DragRequest describes a scripted drag: press on the tile at (Row, Col),
// move by (DX, DY) model units over Frames ticks and release.
type DragRequest struct {
	Row    int     `json:"row"`
	Col    int     `json:"col"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Frames int     `json:"frames,omitempty"`
}

// PointerEvent is one raw mouse or touch event in view units.
type PointerEvent struct {
	Type   string  `json:"type"`             // "down", "move", "up"
	Device string  `json:"device,omitempty"` // "mouse" (default) or "touch"
	ID     int     `json:"id"`               // button or touch id
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	TimeMS int64   `json:"t,omitempty"` // event time; zero uses the session clock
}

// ConfigureRequest changes the board. Zero fields keep the current value.
type ConfigureRequest struct {
	Size          int     `json:"size,omitempty"`
	Blank         string  `json:"blank,omitempty"`
	Labels        string  `json:"labels,omitempty"`
	TapDurationMS int64   `json:"tap_duration_ms,omitempty"`
	TapDistance   float64 `json:"tap_distance,omitempty"`
	Force         bool    `json:"force,omitempty"`
}

// PuzzleRequest switches the picture, by name or by walking the catalog.
type PuzzleRequest struct {
	PuzzleSet string `json:"puzzle_set,omitempty"`
	Next      bool   `json:"next,omitempty"`
	Random    bool   `json:"random,omitempty"`
	Force     bool   `json:"force,omitempty"`
}

// MoveResult contains the result of a tap or drag
type MoveResult struct {
	Success   bool              `json:"success"`
	Changed   bool              `json:"changed"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Frames    int               `json:"frames"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// GameEvent represents something that happened during play
type GameEvent struct {
	Type       string             `json:"type"`
	Message    string             `json:"message,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	Impact     *engine.Impact     `json:"impact,omitempty"`
	Completion *engine.Completion `json:"completion,omitempty"`
}

// Frame is what one session produced during an Advance: a fresh state when
// the session still wanted rendering, plus any events.
type Frame struct {
	SessionID string            `json:"session_id"`
	State     *engine.GameState `json:"state,omitempty"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// ConfigInfo provides information about a puzzle set
type ConfigInfo struct {
	Filename string  `json:"filename"`
	ConfigID string  `json:"config_id"` // The identifier to use for session creation
	Title    string  `json:"title"`
	Image    string  `json:"img"`
	Story    string  `json:"story,omitempty"`
	Size     float64 `json:"size"`
	Solvable bool    `json:"solvable"`
}
