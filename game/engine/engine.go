package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
)

// ErrGameInProgress is returned when a setting change would end a round the
// caller did not ask to end.
var ErrGameInProgress = errors.New("game in progress")

// Engine provides the main interface for game operations
type Engine interface {
	input.Listener

	// Frame loop
	Update(now time.Duration, p input.Pointer)
	ConsumeRender() bool

	// Round control
	Start(now time.Duration)
	Stop(now time.Duration)
	Shuffle()

	// Configuration
	Config() BoardConfig
	Configure(cfg BoardConfig, force bool) error
	PuzzleSet() PuzzleSet
	SetPuzzleSet(set PuzzleSet, force bool) error

	// State
	State() GameState
	Restore(cells []int, moves int) error
	Settle()
}

// Game owns the model, the tiles and the drag. It is not safe for
// concurrent use: every call must come from the goroutine that ticks it.
type Game struct {
	cfg    BoardConfig
	puzzle PuzzleSet

	board    *Board
	tiles    []*Tile
	shuffler *Shuffler

	grab     Grab
	grabID   int
	grabFrom input.Device

	timer      Timer
	playing    bool
	moves      int
	renderLife int
	now        time.Duration
	completion *Completion

	completeHandlers []func(Completion)
	impactHandlers   []func(Impact)
}

var _ Engine = (*Game)(nil)

// NewGame builds a solved board for cfg cut from set. src seeds the shuffle;
// nil uses the clock.
func NewGame(cfg BoardConfig, set PuzzleSet, src rand.Source) (*Game, error) {
	if err := ValidateBoardConfig(cfg); err != nil {
		return nil, err
	}
	if err := ValidatePuzzleSet(set); err != nil {
		return nil, err
	}
	g := &Game{
		cfg:        cfg,
		puzzle:     set,
		shuffler:   NewShuffler(src),
		renderLife: 1,
	}
	g.rebuild()
	return g, nil
}

// NewGameWithDefaults returns a game on the default board and picture.
func NewGameWithDefaults() *Game {
	g, err := NewGame(DefaultBoardConfig(), DefaultPuzzleSet(), nil)
	if err != nil {
		panic(fmt.Sprintf("engine: default game: %v", err))
	}
	return g
}

// rebuild recreates the model and every tile from cfg and puzzle.
func (g *Game) rebuild() {
	board, err := NewBoard(g.cfg.Size, g.cfg.Blank)
	if err != nil {
		// cfg was validated by every caller
		panic(err)
	}
	g.board = board
	g.grab.clear()

	n := board.size
	edge := g.cfg.TileSize()
	bounds := g.cfg.Bounds()
	g.tiles = make([]*Tile, board.Len())
	for tag := range g.tiles {
		row, col := tag/n, tag%n
		x, y := cellOrigin(row, col, bounds, n)
		g.tiles[tag] = NewTile(tag, g.puzzle.SourceRect(row, col, n), x, y, edge)
	}
	g.assignLabels()
	g.initTilePositions()
	g.moves = 0
}

// assignLabels numbers the tiles. It never touches the model.
func (g *Game) assignLabels() {
	n := g.board.size
	for tag, t := range g.tiles {
		if g.cfg.Labels == LabelsNone {
			t.label = ""
			continue
		}
		row, col := tag/n, tag%n
		if g.cfg.Labels == LabelsKeypad {
			row = n - row - 1
		}
		t.label = strconv.Itoa(row*n + col + 1)
	}
}

// initTilePositions puts every tile on the cell the model says it is in.
func (g *Game) initTilePositions() {
	n := g.board.size
	bounds := g.cfg.Bounds()
	for i, tag := range g.board.cells {
		x, y := cellOrigin(i/n, i%n, bounds, n)
		g.tiles[tag].Place(x, y)
	}
	g.renderLife = max(g.renderLife, 1)
}

// lineTiles returns the tiles of one row or column in model order,
// blank included.
func (g *Game) lineTiles(axis Axis, index int) []*Tile {
	tags := g.board.Line(axis, index)
	out := make([]*Tile, len(tags))
	for i, tag := range tags {
		out[i] = g.tiles[tag]
	}
	return out
}

// lineIndex picks the row or column that contains (row, col) along axis.
func (g *Game) lineIndex(axis Axis, row, col int) int {
	if axis == AxisHorizontal {
		return row
	}
	return col
}

// glideLine sends every tile of a row or column toward its model cell.
func (g *Game) glideLine(axis Axis, index int) {
	n := g.board.size
	bounds := g.cfg.Bounds()
	start, step := g.board.lineStart(axis, index)
	for i := 0; i < n; i++ {
		cell := start + step*i
		tag := g.board.cells[cell]
		if tag == g.board.blankTag {
			continue
		}
		x, y := cellOrigin(cell/n, cell%n, bounds, n)
		g.tiles[tag].SetDestination(x, y)
	}
}

func (g *Game) Config() BoardConfig { return g.cfg }
func (g *Game) PuzzleSet() PuzzleSet { return g.puzzle }
func (g *Game) Board() *Board { return g.board }
func (g *Game) Playing() bool { return g.playing }
func (g *Game) Solved() bool { return g.board.IsSolved() }
func (g *Game) Moves() int { return g.moves }
func (g *Game) Now() time.Duration { return g.now }
func (g *Game) Grab() *Grab { return &g.grab }

// Tile returns the tile with the given tag, or nil.
func (g *Game) Tile(tag int) *Tile {
	if tag < 0 || tag >= len(g.tiles) {
		return nil
	}
	return g.tiles[tag]
}

// Elapsed returns the time of the current or last round.
func (g *Game) Elapsed() time.Duration { return g.timer.Elapsed() }

// Configure applies cfg. A label-only change relabels in place; anything
// else ends the round and rebuilds the board, which fails with
// ErrGameInProgress during a round unless force is set.
func (g *Game) Configure(cfg BoardConfig, force bool) error {
	if err := ValidateBoardConfig(cfg); err != nil {
		return err
	}
	labelsOnly := g.cfg
	labelsOnly.Labels = cfg.Labels
	if labelsOnly == cfg {
		g.cfg = cfg
		g.assignLabels()
		g.renderLife = max(g.renderLife, 1)
		return nil
	}
	if g.playing && !force {
		return fmt.Errorf("board config: %w", ErrGameInProgress)
	}
	g.end(g.now)
	g.timer.Reset()
	g.cfg = cfg
	g.rebuild()
	return nil
}

// SetLabels changes the tile numbering without touching the round.
func (g *Game) SetLabels(mode LabelMode) error {
	cfg := g.cfg
	cfg.Labels = mode
	return g.Configure(cfg, false)
}

// SetPuzzleSet switches the picture. The tiles are re-cut, so the board is
// rebuilt like any other configuration change.
func (g *Game) SetPuzzleSet(set PuzzleSet, force bool) error {
	if err := ValidatePuzzleSet(set); err != nil {
		return err
	}
	if g.playing && !force {
		return fmt.Errorf("puzzle set: %w", ErrGameInProgress)
	}
	g.end(g.now)
	g.timer.Reset()
	g.puzzle = set
	g.rebuild()
	return nil
}

// Shuffle ends any round and scrambles the board into the puzzle set's
// solvability class.
func (g *Game) Shuffle() {
	g.end(g.now)
	g.grab.clear()
	g.shuffler.Shuffle(g.board, g.puzzle.Solvable)
	g.initTilePositions()
	g.moves = 0
}

// Start ends any round, shuffles and starts timing at now.
func (g *Game) Start(now time.Duration) {
	g.now = now
	g.Shuffle()
	g.playing = true
	g.completion = nil
	g.timer.Start(now)
	g.renderLife = 1
}

// Stop ends the round at now without completing it.
func (g *Game) Stop(now time.Duration) {
	g.end(now)
}

func (g *Game) end(now time.Duration) {
	g.playing = false
	g.timer.End(now)
}

// Restore replaces the model, e.g. from a saved session. Tiles jump to
// their cells and no round is running afterwards.
func (g *Game) Restore(cells []int, moves int) error {
	if err := g.board.SetCells(cells); err != nil {
		return err
	}
	g.end(g.now)
	g.grab.clear()
	g.initTilePositions()
	g.moves = moves
	return nil
}

// LastCompletion returns the last solved round, if any.
func (g *Game) LastCompletion() (Completion, bool) {
	if g.completion == nil {
		return Completion{}, false
	}
	return *g.completion, true
}

// RestoreCompletion brings back a solved round recorded before a reload.
// Completion handlers are not run.
func (g *Game) RestoreCompletion(c Completion) {
	g.completion = &c
}

// Settle finishes every glide at once.
func (g *Game) Settle() {
	for _, t := range g.tiles {
		if t.tag != g.board.blankTag {
			t.Settle()
		}
	}
}

// OnComplete registers fn to run when a round is solved.
func (g *Game) OnComplete(fn func(Completion)) {
	g.completeHandlers = append(g.completeHandlers, fn)
}

// OnImpact registers fn to run when a tile lands hard.
func (g *Game) OnImpact(fn func(Impact)) {
	g.impactHandlers = append(g.impactHandlers, fn)
}

func (g *Game) emitImpact(im Impact) {
	for _, fn := range g.impactHandlers {
		fn(im)
	}
}

func (g *Game) complete(now time.Duration) {
	g.end(now)
	c := Completion{ElapsedMS: g.timer.Elapsed().Milliseconds(), Moves: g.moves}
	g.completion = &c
	for _, fn := range g.completeHandlers {
		fn(c)
	}
}

// AcceptCoordinate reports whether a press at (x, y) may grab a tile: it
// must land on the board, in line with the blank but not on it.
func (g *Game) AcceptCoordinate(x, y float64) bool {
	bounds := g.cfg.Bounds()
	if !bounds.Contains(x, y) {
		return false
	}
	row, col := cellAt(x, y, bounds, g.board.size)
	return g.board.CanSlide(row, col)
}

// DispatchStart grabs the tile under the press if it may move. Only a
// primary press grabs, since tracking follows the primary pointer.
func (g *Game) DispatchStart(m input.Message) {
	if !m.Primary || g.grab.Holding() || !g.AcceptCoordinate(m.StartX, m.StartY) {
		return
	}
	row, col := cellAt(m.StartX, m.StartY, g.cfg.Bounds(), g.board.size)
	g.grabID, g.grabFrom = m.ID, m.Device
	g.beginGrab(m.StartX, m.StartY, row, col)
}

// DispatchEnd releases the held tile when the release belongs to the press
// that grabbed it.
func (g *Game) DispatchEnd(m input.Message) {
	if !g.grab.Holding() || m.ID != g.grabID || m.Device != g.grabFrom {
		return
	}
	if g.releaseGrab(m) {
		g.moves++
	}
}

// Update advances the simulation by one tick. It must run after the input
// buffer has dispatched this frame's messages.
func (g *Game) Update(now time.Duration, p input.Pointer) {
	g.now = now
	if g.playing {
		if g.board.IsSolved() {
			g.complete(now)
		} else {
			g.timer.Update(now)
		}
	}

	if g.grab.Holding() && p.Valid {
		g.trackGrab(p)
		g.renderLife++
	}

	bounds := g.cfg.Bounds()
	for _, t := range g.tiles {
		if t.tag != g.board.blankTag {
			t.Step(bounds, g.emitImpact)
		}
	}
}

// RenderLife returns the number of frames still worth drawing.
func (g *Game) RenderLife() int { return g.renderLife }

// ConsumeRender reports whether this frame should be drawn and spends one
// frame of render life if so.
func (g *Game) ConsumeRender() bool {
	if g.renderLife <= 0 {
		return false
	}
	g.renderLife--
	return true
}

// Moving reports whether any tile is still gliding or held.
func (g *Game) Moving() bool {
	if g.grab.Holding() {
		return true
	}
	for _, t := range g.tiles {
		if t.tag != g.board.blankTag && t.Moving() {
			return true
		}
	}
	return false
}

// State returns a snapshot for renderers and API clients.
func (g *Game) State() GameState {
	held := -1
	if g.grab.Holding() {
		held = g.grab.held.tag
	}
	tiles := make([]TileView, 0, len(g.tiles)-1)
	for _, t := range g.tiles {
		if t.tag == g.board.blankTag {
			continue
		}
		tiles = append(tiles, TileView{
			Tag:    t.tag,
			Label:  t.label,
			Rect:   t.Rect(),
			Source: t.source,
			Moving: t.Moving(),
		})
	}
	var completion *Completion
	if g.completion != nil {
		c := *g.completion
		completion = &c
	}
	return GameState{
		Size:       g.board.size,
		Blank:      g.cfg.Blank,
		BlankTag:   g.board.blankTag,
		Labels:     g.cfg.Labels,
		Cells:      g.board.Cells(),
		Tiles:      tiles,
		Board:      g.cfg.Bounds(),
		Solved:     g.board.IsSolved(),
		Solvable:   g.board.IsSolvable(),
		Playing:    g.playing,
		ElapsedMS:  g.timer.Elapsed().Milliseconds(),
		Held:       held,
		Axis:       g.grab.axis,
		PuzzleSet:  g.puzzle.Name,
		Moves:      g.moves,
		Image:      g.puzzle.Image,
		Completion: completion,
	}
}
