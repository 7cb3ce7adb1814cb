package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/clock"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
)

var (
	ErrInvalidMove    = errors.New("invalid move")
	ErrTileHeld       = errors.New("a tile is already being dragged")
	ErrInvalidRequest = errors.New("invalid request")
)

const (
	// DefaultDragFrames spreads a scripted drag over enough ticks that it is
	// never mistaken for a tap.
	DefaultDragFrames = 20
	MaxDragFrames     = 600

	// scriptedButton is the mouse button used by scripted gestures.
	scriptedButton = 0
	// maxGlideFrames bounds the wait for tiles to come to rest.
	maxGlideFrames = 10 * clock.DefaultFPS
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex

	frame time.Duration
	// now is the last time seen by Advance, so rounds started from the API
	// share the server clock.
	now atomic.Int64
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		frame:    time.Second / clock.DefaultFPS,
	}
}

// sessionNow is the time a session should use for a new event. Caller holds
// the session lock.
func (s *gameServiceImpl) sessionNow(sess *Session) time.Duration {
	return max(sess.Game.Now(), time.Duration(s.now.Load()))
}

// lookup fetches a session and records the access.
func (s *gameServiceImpl) lookup(ctx context.Context, sessionID string) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// withSession runs fn under the session lock.
func (s *gameServiceImpl) withSession(ctx context.Context, sessionID string, fn func(sess *Session) error) (*Session, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sess.Lock()
	defer sess.Unlock()
	return sess, fn(sess)
}

// stateOf snapshots a session. Caller holds the session lock.
func stateOf(sess *Session) *engine.GameState {
	st := sess.Game.State()
	return &st
}

func (s *gameServiceImpl) info(sess *Session) *SessionInfo {
	sess.Lock()
	defer sess.Unlock()
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.PuzzleName(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      stateOf(sess),
		BoardConfig:    sess.Game.Config(),
		PuzzleSet:      sess.Game.PuzzleSet(),
	}
}

// CreateSession creates a new puzzle session
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set, err := s.resolveSet(req.PuzzleSet)
	if err != nil {
		return nil, err
	}

	cfg := engine.DefaultBoardConfig()
	if req.Size != 0 {
		cfg.Size = req.Size
	}
	if req.Blank != "" {
		if cfg.Blank, err = engine.ParseCorner(req.Blank); err != nil {
			return nil, err
		}
	}
	if req.Labels != "" {
		cfg.Labels = engine.LabelMode(req.Labels)
	}

	s.mu.Lock()
	sess, err := s.sessions.Create(req.ID, cfg, set)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if req.Start {
		sess.Lock()
		sess.Game.Start(s.sessionNow(sess))
		sess.record(GameEvent{Type: EventStart, Message: "Round started"})
		sess.Unlock()
	}

	log.Printf("[SESSION] created %s puzzle=%s size=%d blank=%s", sess.ID, set.Name, cfg.Size, cfg.Blank)
	return s.info(sess), nil
}

// resolveSet loads a named set or the default, listing the choices when the
// name is unknown.
func (s *gameServiceImpl) resolveSet(name string) (*engine.PuzzleSet, error) {
	if name == "" {
		return s.configs.GetDefault(), nil
	}
	set, err := s.configs.LoadConfig(name)
	if err == nil {
		return set, nil
	}
	if strings.Contains(err.Error(), "configuration not found") {
		if available, listErr := s.configs.ListConfigs(); listErr == nil && len(available) > 0 {
			ids := make([]string, 0, len(available))
			for _, c := range available {
				ids = append(ids, c.ConfigID)
			}
			return nil, fmt.Errorf("puzzle set '%s' not found. Available sets: %v: %w", name, ids, err)
		}
		return nil, fmt.Errorf("puzzle set '%s' not found. Use /api/configs to list available sets: %w", name, err)
	}
	return nil, fmt.Errorf("failed to load puzzle set %s: %w", name, err)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	sessions := s.sessions.List()
	s.mu.RUnlock()

	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess))
	}
	return result, nil
}

// DeleteSession removes a session. Any press still open on its input is
// released first.
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		sess.Loop.Input.Disconnect()
	}
	return s.sessions.Delete(sessionID)
}

// Tap presses and releases on the tile at (row, col), then lets the line
// glide to rest.
func (s *gameServiceImpl) Tap(ctx context.Context, sessionID string, row, col int) (*MoveResult, error) {
	var result *MoveResult
	sess, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		g := sess.Game
		if err := checkCell(g, row, col); err != nil {
			return err
		}
		if !g.Board().CanSlide(row, col) {
			result = &MoveResult{
				GameState: stateOf(sess),
				Message:   fmt.Sprintf("tile at (%d,%d) is not in line with the blank", row, col),
			}
			return nil
		}
		x, y := cellCenter(g.Config(), row, col)
		result = s.script(sess, []point{{x, y}})
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[TAP] session=%s cell=(%d,%d) success=%v changed=%v moves=%d",
		sessionID, row, col, result.Success, result.Changed, result.GameState.Moves)
	if result.Changed {
		s.save(sess)
	}
	return result, nil
}

// Drag presses on the tile at (Row, Col), moves the pointer by (DX, DY) in
// even steps over Frames ticks and releases.
func (s *gameServiceImpl) Drag(ctx context.Context, sessionID string, req DragRequest) (*MoveResult, error) {
	frames := req.Frames
	if frames == 0 {
		frames = DefaultDragFrames
	}
	if frames < 1 || frames > MaxDragFrames {
		return nil, fmt.Errorf("%w: frames must be between 1 and %d", ErrInvalidRequest, MaxDragFrames)
	}

	var result *MoveResult
	sess, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		g := sess.Game
		if err := checkCell(g, req.Row, req.Col); err != nil {
			return err
		}
		if !g.Board().CanSlide(req.Row, req.Col) {
			result = &MoveResult{
				GameState: stateOf(sess),
				Message:   fmt.Sprintf("tile at (%d,%d) is not in line with the blank", req.Row, req.Col),
			}
			return nil
		}
		x, y := cellCenter(g.Config(), req.Row, req.Col)
		path := make([]point, 0, frames+1)
		path = append(path, point{x, y})
		for i := 1; i <= frames; i++ {
			f := float64(i) / float64(frames)
			path = append(path, point{x + req.DX*f, y + req.DY*f})
		}
		result = s.script(sess, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[DRAG] session=%s cell=(%d,%d) d=(%.1f,%.1f) frames=%d changed=%v moves=%d",
		sessionID, req.Row, req.Col, req.DX, req.DY, frames, result.Changed, result.GameState.Moves)
	if result.Changed {
		s.save(sess)
	}
	return result, nil
}

type point struct{ x, y float64 }

// script plays a gesture through a private input buffer on a manual clock.
// The press lands on path[0], the pointer visits one further point per tick
// and the release happens at the last point. Tiles are then given time to glide and
// finally settled. Caller holds the session lock.
func (s *gameServiceImpl) script(sess *Session, path []point) *MoveResult {
	g := sess.Game
	if g.Grab().Holding() {
		return &MoveResult{GameState: stateOf(sess), Message: ErrTileHeld.Error()}
	}

	buf := input.NewBuffer(g)
	loop := &engine.Loop{Game: g, Input: buf}
	clk := clock.NewManual(loop, s.sessionNow(sess))
	before := g.Moves()

	start := path[0]
	buf.MouseDown(scriptedButton, start.x, start.y, clk.Now())
	for _, p := range path[1:] {
		buf.MouseMove(p.x, p.y)
		clk.Step(s.frame)
	}
	end := path[len(path)-1]
	buf.MouseUp(scriptedButton, end.x, end.y, clk.Now())

	frames := 0
	for {
		clk.Step(s.frame)
		frames++
		if !g.Moving() || frames >= maxGlideFrames {
			break
		}
	}
	g.Settle()
	// one more tick so a solve is noticed while the round is still open
	clk.Step(s.frame)
	frames += len(path)

	return &MoveResult{
		Success:   true,
		Changed:   g.Moves() != before,
		GameState: stateOf(sess),
		Message:   moveMessage(g, before),
		Frames:    frames,
		Events:    sess.drainEvents(),
	}
}

func moveMessage(g *engine.Game, before int) string {
	switch {
	case g.Moves() == before:
		return "tiles returned to their cells"
	case g.Solved():
		return "solved"
	default:
		return fmt.Sprintf("moved, %d moves so far", g.Moves())
	}
}

func checkCell(g *engine.Game, row, col int) error {
	n := g.Board().Size()
	if row < 0 || row >= n || col < 0 || col >= n {
		return fmt.Errorf("%w: cell (%d,%d) is outside the %dx%d board", ErrInvalidMove, row, col, n, n)
	}
	return nil
}

// cellCenter returns the model point in the middle of a cell.
func cellCenter(cfg engine.BoardConfig, row, col int) (float64, float64) {
	edge := cfg.TileSize()
	return cfg.Left + (float64(col)+0.5)*edge, cfg.Top + (float64(row)+0.5)*edge
}

// Pointer feeds one raw event into the session's input buffer. It takes
// effect on the next Advance.
func (s *gameServiceImpl) Pointer(ctx context.Context, sessionID string, ev PointerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	sess, err := s.sessions.Get(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("session not found: %w", err)
	}

	t := time.Duration(ev.TimeMS) * time.Millisecond
	if ev.TimeMS == 0 {
		sess.Lock()
		t = s.sessionNow(sess)
		sess.Unlock()
	}
	return ApplyPointer(sess.Loop.Input, ev, t)
}

// ApplyPointer translates ev into Sink calls.
func ApplyPointer(sink input.Sink, ev PointerEvent, t time.Duration) error {
	touch := false
	switch ev.Device {
	case "", "mouse":
	case "touch":
		touch = true
	default:
		return fmt.Errorf("%w: unknown device %q", ErrInvalidRequest, ev.Device)
	}

	switch ev.Type {
	case "down":
		if touch {
			sink.TouchStart(ev.ID, ev.X, ev.Y, t)
		} else {
			sink.MouseDown(ev.ID, ev.X, ev.Y, t)
		}
	case "move":
		if touch {
			sink.TouchMove(ev.ID, ev.X, ev.Y)
		} else {
			sink.MouseMove(ev.X, ev.Y)
		}
	case "up":
		if touch {
			sink.TouchEnd(ev.ID, ev.X, ev.Y, t)
		} else {
			sink.MouseUp(ev.ID, ev.X, ev.Y, t)
		}
	default:
		return fmt.Errorf("%w: unknown pointer event %q", ErrInvalidRequest, ev.Type)
	}
	return nil
}

// Start shuffles and starts a round
func (s *gameServiceImpl) Start(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	sess, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		sess.Game.Start(s.sessionNow(sess))
		sess.record(GameEvent{Type: EventStart, Message: "Round started"})
		state = stateOf(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SHUFFLE] session=%s start solvable=%v", sessionID, state.Solvable)
	s.save(sess)
	return state, nil
}

// Stop ends the round without completing it
func (s *gameServiceImpl) Stop(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	_, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		sess.Game.Stop(s.sessionNow(sess))
		sess.record(GameEvent{Type: EventStop, Message: "Round stopped"})
		state = stateOf(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

// Shuffle scrambles the board and ends any round
func (s *gameServiceImpl) Shuffle(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	sess, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		sess.Game.Shuffle()
		sess.record(GameEvent{Type: EventShuffle, Message: "Board shuffled"})
		state = stateOf(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[SHUFFLE] session=%s solvable=%v", sessionID, state.Solvable)
	s.save(sess)
	return state, nil
}

// Configure changes the board. Anything beyond the labels rebuilds it,
// which needs Force during a round.
func (s *gameServiceImpl) Configure(ctx context.Context, sessionID string, req ConfigureRequest) (*engine.GameState, error) {
	var state *engine.GameState
	sess, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		cfg := sess.Game.Config()
		if req.Size != 0 {
			cfg.Size = req.Size
		}
		if req.Blank != "" {
			corner, err := engine.ParseCorner(req.Blank)
			if err != nil {
				return err
			}
			cfg.Blank = corner
		}
		if req.Labels != "" {
			cfg.Labels = engine.LabelMode(req.Labels)
		}
		if req.TapDurationMS != 0 {
			cfg.TapDuration = time.Duration(req.TapDurationMS) * time.Millisecond
		}
		if req.TapDistance != 0 {
			cfg.TapDistance = req.TapDistance
		}
		if err := sess.Game.Configure(cfg, req.Force); err != nil {
			return err
		}
		sess.record(GameEvent{Type: EventConfigure, Message: fmt.Sprintf("Board %dx%d, blank %s, labels %s", cfg.Size, cfg.Size, cfg.Blank, cfg.Labels)})
		state = stateOf(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.save(sess)
	return state, nil
}

// ChangePuzzle switches the picture by name, to the next solvable set or to
// a random one. Next and random also start a round on the new picture.
func (s *gameServiceImpl) ChangePuzzle(ctx context.Context, sessionID string, req PuzzleRequest) (*engine.GameState, error) {
	var state *engine.GameState
	sess, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		current := sess.PuzzleName()
		var set *engine.PuzzleSet
		var err error
		switch {
		case req.PuzzleSet != "":
			set, err = s.resolveSet(req.PuzzleSet)
		case req.Next:
			set, err = s.configs.Next(current)
		case req.Random:
			set, err = s.configs.Random(current)
		default:
			return fmt.Errorf("%w: give puzzle_set, next or random", ErrInvalidRequest)
		}
		if err != nil {
			return err
		}
		if err := sess.Game.SetPuzzleSet(*set, req.Force); err != nil {
			return err
		}
		sess.record(GameEvent{Type: EventPuzzle, Message: fmt.Sprintf("Puzzle %s", set.Title)})
		if req.PuzzleSet == "" {
			sess.Game.Start(s.sessionNow(sess))
			sess.record(GameEvent{Type: EventStart, Message: "Round started"})
		}
		state = stateOf(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[PUZZLE] session=%s puzzle=%s", sessionID, state.PuzzleSet)
	s.save(sess)
	return state, nil
}

// GetGameState returns the current state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state *engine.GameState
	_, err := s.withSession(ctx, sessionID, func(sess *Session) error {
		state = stateOf(sess)
		return nil
	})
	return state, err
}

// Input returns the buffer that live pointer sources should connect to.
func (s *gameServiceImpl) Input(ctx context.Context, sessionID string) (*input.Buffer, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Loop.Input, nil
}

// Advance ticks every session once at now. A session contributes a frame
// when it still wanted rendering or produced events.
func (s *gameServiceImpl) Advance(now time.Duration) []Frame {
	if int64(now) > s.now.Load() {
		s.now.Store(int64(now))
	}

	s.mu.RLock()
	sessions := s.sessions.List()
	s.mu.RUnlock()

	var frames []Frame
	for _, sess := range sessions {
		sess.Lock()
		moves := sess.Game.Moves()
		sess.Loop.Update(max(now, sess.Game.Now()))
		moved := sess.Game.Moves() != moves
		render := sess.Game.ConsumeRender()
		events := sess.drainEvents()
		var state *engine.GameState
		if render || len(events) > 0 {
			state = stateOf(sess)
		}
		sess.Unlock()

		solved := false
		for _, ev := range events {
			if ev.Type == EventSolved {
				solved = true
				log.Printf("[SOLVED] session=%s moves=%d elapsed=%dms", sess.ID, ev.Completion.Moves, ev.Completion.ElapsedMS)
			}
		}
		if moved || solved {
			s.save(sess)
		}
		if state != nil {
			frames = append(frames, Frame{SessionID: sess.ID, State: state, Events: events})
		}
	}
	return frames
}

// Now returns the latest time passed to Advance.
func (s *gameServiceImpl) Now() time.Duration {
	return time.Duration(s.now.Load())
}

// save persists a session after a structural change. The session lock must
// not be held.
func (s *gameServiceImpl) save(sess *Session) {
	if err := s.sessions.Save(sess.ID); err != nil {
		log.Printf("Warning: failed to save session %s: %v", sess.ID, err)
	}
}

// ListConfigs returns available puzzle sets
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific puzzle set
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.PuzzleSet, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a puzzle set to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, set *engine.PuzzleSet) error {
	return s.configs.SaveConfig(configName, set)
}
