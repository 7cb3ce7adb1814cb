package service

import (
	"context"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
)

// GameService defines all puzzle operations shared by the REST, MCP and
// websocket transports.
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Tap(ctx context.Context, sessionID string, row, col int) (*MoveResult, error)
	Drag(ctx context.Context, sessionID string, req DragRequest) (*MoveResult, error)
	Pointer(ctx context.Context, sessionID string, ev PointerEvent) error
	Start(ctx context.Context, sessionID string) (*engine.GameState, error)
	Stop(ctx context.Context, sessionID string) (*engine.GameState, error)
	Shuffle(ctx context.Context, sessionID string) (*engine.GameState, error)
	Configure(ctx context.Context, sessionID string, req ConfigureRequest) (*engine.GameState, error)
	ChangePuzzle(ctx context.Context, sessionID string, req PuzzleRequest) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	Input(ctx context.Context, sessionID string) (*input.Buffer, error)

	// Frame driver
	Advance(now time.Duration) []Frame
	Now() time.Duration

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.PuzzleSet, error)
	SaveConfig(ctx context.Context, configName string, set *engine.PuzzleSet) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, cfg engine.BoardConfig, set *engine.PuzzleSet) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, cfg engine.BoardConfig, set *engine.PuzzleSet) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles puzzle-set loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.PuzzleSet, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.PuzzleSet
	SaveConfig(name string, set *engine.PuzzleSet) error
	Next(current string) (*engine.PuzzleSet, error)
	Random(current string) (*engine.PuzzleSet, error)
}

// maxPendingEvents bounds the events kept for a session nobody is draining.
const maxPendingEvents = 64

// Session represents an active puzzle: its game, the loop that feeds it and
// the events produced since the last drain. Everything that touches Game or
// Loop must hold the session lock.
type Session struct {
	ID             string
	Game           *engine.Game
	Loop           *engine.Loop
	CreatedAt      time.Time
	LastAccessedAt time.Time

	mu     sync.Mutex
	events []GameEvent
}

// NewSession wraps g in a session and subscribes to its impact and
// completion callbacks.
func NewSession(id string, g *engine.Game) *Session {
	s := &Session{
		ID:             id,
		Game:           g,
		Loop:           engine.NewLoop(g),
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	g.OnImpact(func(im engine.Impact) {
		s.record(GameEvent{Type: EventImpact, Impact: &im})
	})
	g.OnComplete(func(c engine.Completion) {
		s.record(GameEvent{Type: EventSolved, Completion: &c})
	})
	return s
}

// Lock takes the session lock.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock.
func (s *Session) Unlock() { s.mu.Unlock() }

// record is called from inside a tick, so the lock is already held.
func (s *Session) record(ev GameEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	if len(s.events) >= maxPendingEvents {
		s.events = s.events[1:]
	}
	s.events = append(s.events, ev)
}

// drainEvents returns and forgets pending events. Caller holds the lock.
func (s *Session) drainEvents() []GameEvent {
	ev := s.events
	s.events = nil
	return ev
}

// PuzzleName returns the name of the picture the session is playing.
func (s *Session) PuzzleName() string {
	return s.Game.PuzzleSet().Name
}

// Snapshot is the part of a session worth persisting.
type Snapshot struct {
	ID             string
	PuzzleSet      string
	Board          engine.BoardConfig
	Cells          []int
	Moves          int
	Playing        bool
	Completion     *engine.Completion
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Snapshot copies the persistent state under the session lock.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:             s.ID,
		PuzzleSet:      s.Game.PuzzleSet().Name,
		Board:          s.Game.Config(),
		Cells:          s.Game.Board().Cells(),
		Moves:          s.Game.Moves(),
		Playing:        s.Game.Playing(),
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt,
	}
	if c, ok := s.Game.LastCompletion(); ok {
		snap.Completion = &c
	}
	return snap
}

// Touch records an access under the session lock.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastAccessedAt = time.Now()
	s.mu.Unlock()
}
