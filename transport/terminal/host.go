package terminal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mcp-training/slidepuzzle/game/clock"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
)

const (
	// Rows kept free under the board for the status lines.
	statusRows = 3

	// Queued key presses before the poller blocks.
	keyBuffer = 32
)

// Catalog hands out puzzle sets for the "next puzzle" key.
type Catalog interface {
	Next(current string) (*engine.PuzzleSet, error)
}

// Options configures a Host.
type Options struct {
	Catalog Catalog
	FPS     int
	Sound   bool
}

// Host plays one local game in a terminal. The poll goroutine feeds mouse
// events into the loop's input buffer and queues keys; everything else runs
// on the clock goroutine.
type Host struct {
	screen  tcell.Screen
	loop    *engine.Loop
	catalog Catalog
	clock   *clock.Clock
	sound   *clicker

	mu   sync.Mutex
	sink input.Sink

	keys   chan *tcell.EventKey
	resize chan struct{}
	cancel context.CancelFunc
	start  time.Time

	layout  layout
	pressed bool
	status  string
	pending rune
	dirty   bool
}

// New prepares a host on screen for game. screen must already be
// initialized.
func New(screen tcell.Screen, game *engine.Game, opts Options) *Host {
	h := &Host{
		screen:  screen,
		loop:    engine.NewLoop(game),
		catalog: opts.Catalog,
		clock:   clock.New(opts.FPS),
		keys:    make(chan *tcell.EventKey, keyBuffer),
		resize:  make(chan struct{}, 1),
		start:   time.Now(),
		dirty:   true,
	}
	h.loop.Input.Connect(h, nil, 1)
	h.loop.OnRender = func(*engine.Game) { h.draw() }

	if opts.Sound {
		sound, err := newClicker()
		if err != nil {
			log.Printf("[TUI] sound disabled: %v", err)
		} else {
			h.sound = sound
		}
	}

	game.OnImpact(func(im engine.Impact) {
		if h.sound != nil {
			h.sound.Click(im.Speed)
		}
	})
	game.OnComplete(func(c engine.Completion) {
		log.Printf("[SOLVED] %d moves in %s", c.Moves, time.Duration(c.ElapsedMS)*time.Millisecond)
		h.status = fmt.Sprintf("Solved in %s with %d moves!", formatElapsed(c.ElapsedMS), c.Moves)
		if h.sound != nil {
			h.sound.Chime()
		}
	})

	h.relayout()
	return h
}

// Attach implements input.Source.
func (h *Host) Attach(s input.Sink) {
	h.mu.Lock()
	h.sink = s
	h.mu.Unlock()
}

// Detach implements input.Source.
func (h *Host) Detach() {
	h.mu.Lock()
	h.sink = nil
	h.mu.Unlock()
}

// Run polls the screen and ticks the game until ctx is done or the player
// quits.
func (h *Host) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	h.cancel = cancel

	h.start = time.Now()
	go h.poll(ctx)

	err := h.clock.Run(ctx, h)
	h.loop.Input.Disconnect()
	if h.sound != nil {
		h.sound.Close()
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *Host) poll(ctx context.Context) {
	for ctx.Err() == nil {
		ev := h.screen.PollEvent()
		if ev == nil {
			return
		}
		h.handleEvent(ev)
	}
}

// handleEvent runs on the poll goroutine.
func (h *Host) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		x, y := ev.Position()
		h.handleMouse(x, y, ev.Buttons()&tcell.Button1 != 0, h.elapsed())
	case *tcell.EventKey:
		select {
		case h.keys <- ev:
		default:
		}
	case *tcell.EventResize:
		select {
		case h.resize <- struct{}{}:
		default:
		}
	}
}

// handleMouse turns tcell's button state into press, move and release
// events in model units.
func (h *Host) handleMouse(x, y int, down bool, t time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sink == nil {
		return
	}

	mx, my := h.layout.toModel(x, y)
	switch {
	case down && !h.pressed:
		h.pressed = true
		h.sink.MouseDown(0, mx, my, t)
	case down:
		h.sink.MouseMove(mx, my)
	case h.pressed:
		h.pressed = false
		h.sink.MouseUp(0, mx, my, t)
	default:
		h.sink.MouseMove(mx, my)
	}
}

func (h *Host) elapsed() time.Duration {
	return time.Since(h.start)
}

// Update implements clock.Frame.
func (h *Host) Update(now time.Duration) {
drain:
	for {
		select {
		case <-h.resize:
			h.screen.Sync()
			h.relayout()
			h.dirty = true
		case ev := <-h.keys:
			h.handleKey(ev, now)
		default:
			break drain
		}
	}
	h.loop.Update(now)
}

// Render implements clock.Frame. The board is redrawn while the game has
// render life left, and once after any key or resize.
func (h *Host) Render() {
	if h.dirty {
		h.dirty = false
		h.draw()
		return
	}
	h.loop.Render()
}

func (h *Host) game() *engine.Game {
	return h.loop.Game
}

// handleKey applies a keyboard command. Commands that would end a running
// round must be pressed twice.
func (h *Host) handleKey(ev *tcell.EventKey, now time.Duration) {
	h.dirty = true

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		h.quit()
		return
	case tcell.KeyRune:
	default:
		return
	}

	key := ev.Rune()
	force := h.pending == key
	h.pending = 0

	g := h.game()
	var err error
	switch key {
	case 'q':
		h.quit()
		return
	case 's':
		g.Start(now)
		h.status = "Round started"
	case 'x':
		g.Stop(now)
		h.status = "Round stopped"
	case 'n':
		err = h.nextPuzzle(force, now)
	case '+', '=':
		err = h.resizeBoard(g.Config().Size+1, force)
	case '-', '_':
		err = h.resizeBoard(g.Config().Size-1, force)
	case 'c':
		cfg := g.Config()
		cfg.Blank = nextCorner(cfg.Blank)
		if err = g.Configure(cfg, force); err == nil {
			h.status = fmt.Sprintf("Blank corner: %s", cfg.Blank)
		}
	case 'l':
		mode := nextLabels(g.Config().Labels)
		if err = g.SetLabels(mode); err == nil {
			h.status = fmt.Sprintf("Labels: %s", mode)
		}
	default:
		return
	}

	switch {
	case errors.Is(err, engine.ErrGameInProgress):
		h.pending = key
		h.status = fmt.Sprintf("A round is in progress. Press %q again to end it.", key)
	case err != nil:
		h.status = err.Error()
	}
	h.relayout()
}

func (h *Host) quit() {
	if h.cancel != nil {
		h.cancel()
	}
}

// nextPuzzle switches to the next picture and starts a round on it.
func (h *Host) nextPuzzle(force bool, now time.Duration) error {
	if h.catalog == nil {
		return errors.New("no puzzle catalog")
	}
	g := h.game()
	set, err := h.catalog.Next(g.PuzzleSet().Name)
	if err != nil {
		return err
	}
	if err := g.SetPuzzleSet(*set, force); err != nil {
		return err
	}
	g.Start(now)
	log.Printf("[PUZZLE] switched to %s", set.Name)
	h.status = fmt.Sprintf("Puzzle: %s", set.Title)
	return nil
}

func (h *Host) resizeBoard(size int, force bool) error {
	cfg := h.game().Config()
	cfg.Size = size
	if err := h.game().Configure(cfg, force); err != nil {
		return err
	}
	h.status = fmt.Sprintf("Board: %dx%d", size, size)
	return nil
}

func (h *Host) relayout() {
	w, hh := h.screen.Size()
	l := newLayout(w, hh-statusRows, h.game().Config())
	h.mu.Lock()
	h.layout = l
	h.mu.Unlock()
}

func nextCorner(c engine.Corner) engine.Corner {
	for i, k := range engine.Corners {
		if k == c {
			return engine.Corners[(i+1)%len(engine.Corners)]
		}
	}
	return engine.Corners[0]
}

func nextLabels(m engine.LabelMode) engine.LabelMode {
	switch m {
	case engine.LabelsNone:
		return engine.LabelsPhone
	case engine.LabelsPhone:
		return engine.LabelsKeypad
	default:
		return engine.LabelsNone
	}
}

func formatElapsed(ms int64) string {
	return (time.Duration(ms) * time.Millisecond).Truncate(100 * time.Millisecond).String()
}
