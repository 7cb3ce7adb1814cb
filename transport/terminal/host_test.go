package terminal

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

type sinkCall struct {
	kind string
	x, y float64
}

type fakeSink struct{ calls []sinkCall }

func (f *fakeSink) MouseDown(button int, x, y float64, t time.Duration) {
	f.calls = append(f.calls, sinkCall{"down", x, y})
}
func (f *fakeSink) MouseMove(x, y float64) { f.calls = append(f.calls, sinkCall{"move", x, y}) }
func (f *fakeSink) MouseUp(button int, x, y float64, t time.Duration) {
	f.calls = append(f.calls, sinkCall{"up", x, y})
}
func (f *fakeSink) TouchStart(id int, x, y float64, t time.Duration) {}
func (f *fakeSink) TouchMove(id int, x, y float64)                   {}
func (f *fakeSink) TouchEnd(id int, x, y float64, t time.Duration)   {}

type fakeCatalog struct{ set engine.PuzzleSet }

func (c fakeCatalog) Next(current string) (*engine.PuzzleSet, error) {
	set := c.set
	return &set, nil
}

func newTestHost(t *testing.T) *Host {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 24)
	t.Cleanup(screen.Fini)

	other := engine.DefaultPuzzleSet()
	other.Name = "harbor"
	other.Title = "Harbor at Dusk"

	return New(screen, engine.NewGameWithDefaults(), Options{Catalog: fakeCatalog{set: other}})
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestLayout_FitsBoard(t *testing.T) {
	cfg := engine.DefaultBoardConfig()
	cfg.Size = 4
	l := newLayout(80, 21, cfg)

	assert.Equal(t, 5, l.cellH)
	assert.Equal(t, 10, l.cellW)
	assert.Equal(t, 20, l.originX)
	assert.Equal(t, 0, l.originY)
	assert.Equal(t, 40, l.width())
	assert.Equal(t, 20, l.height())
}

func TestLayout_RoundTrip(t *testing.T) {
	cfg := engine.DefaultBoardConfig()
	cfg.Size = 4
	l := newLayout(80, 21, cfg)

	x, y := l.toModel(20, 0)
	assert.InDelta(t, cfg.Left+6, x, 1e-9)
	assert.InDelta(t, cfg.Top+12, y, 1e-9)

	tile := cfg.TileSize()
	sx, sy := l.toScreen(engine.Rect{X: cfg.Left + tile, Y: cfg.Top + 2*tile, Size: tile})
	assert.Equal(t, 30, sx)
	assert.Equal(t, 10, sy)
}

func TestLayout_TinyScreen(t *testing.T) {
	cfg := engine.DefaultBoardConfig()
	cfg.Size = 9
	l := newLayout(10, 3, cfg)
	assert.Equal(t, 1, l.cellH)
	assert.Equal(t, 2, l.cellW)
	assert.Equal(t, 0, l.originX)
}

func TestHost_MouseStateBecomesEvents(t *testing.T) {
	h := newTestHost(t)
	sink := &fakeSink{}
	h.Attach(sink)

	h.handleMouse(25, 2, false, 0)
	h.handleMouse(25, 2, true, 10*time.Millisecond)
	h.handleMouse(30, 2, true, 20*time.Millisecond)
	h.handleMouse(30, 2, false, 30*time.Millisecond)

	kinds := make([]string, len(sink.calls))
	for i, c := range sink.calls {
		kinds[i] = c.kind
	}
	assert.Equal(t, []string{"move", "down", "move", "up"}, kinds)
	assert.Greater(t, sink.calls[2].x, sink.calls[1].x)
}

func TestHost_DetachedSinkIgnoresMouse(t *testing.T) {
	h := newTestHost(t)
	sink := &fakeSink{}
	h.Attach(sink)
	h.Detach()

	h.handleMouse(25, 2, true, 0)
	assert.Empty(t, sink.calls)
}

func TestHost_KeysDrivenOnTick(t *testing.T) {
	h := newTestHost(t)

	h.keys <- key('s')
	h.Update(time.Second)

	assert.True(t, h.game().Playing())
	assert.Equal(t, "Round started", h.status)

	h.keys <- key('x')
	h.Update(2 * time.Second)
	assert.False(t, h.game().Playing())
}

func TestHost_RebuildDuringRoundNeedsSecondPress(t *testing.T) {
	h := newTestHost(t)
	size := h.game().Config().Size

	h.handleKey(key('s'), time.Second)
	require.True(t, h.game().Playing())

	h.handleKey(key('+'), time.Second)
	assert.Equal(t, size, h.game().Config().Size)
	assert.True(t, h.game().Playing())
	assert.Contains(t, h.status, "again")

	h.handleKey(key('+'), time.Second)
	assert.Equal(t, size+1, h.game().Config().Size)
	assert.False(t, h.game().Playing())
}

func TestHost_OtherKeyClearsPending(t *testing.T) {
	h := newTestHost(t)
	size := h.game().Config().Size
	h.handleKey(key('s'), time.Second)

	h.handleKey(key('+'), time.Second)
	h.handleKey(key('l'), time.Second)
	h.handleKey(key('+'), time.Second)

	assert.Equal(t, size, h.game().Config().Size)
	assert.True(t, h.game().Playing(), "label change keeps the round")
}

func TestHost_CornerLabelsAndPuzzle(t *testing.T) {
	h := newTestHost(t)

	h.handleKey(key('c'), 0)
	assert.Equal(t, engine.TopLeft, h.game().Config().Blank)

	h.handleKey(key('l'), 0)
	assert.Equal(t, engine.LabelsKeypad, h.game().Config().Labels)

	h.handleKey(key('n'), 0)
	assert.Equal(t, "harbor", h.game().PuzzleSet().Name)
	assert.Equal(t, "Puzzle: Harbor at Dusk", h.status)
	assert.True(t, h.game().Playing(), "a new picture starts a round")
}

func TestHost_SizeOutOfRange(t *testing.T) {
	h := newTestHost(t)
	cfg := h.game().Config()
	cfg.Size = 2
	require.NoError(t, h.game().Configure(cfg, false))

	h.handleKey(key('-'), 0)
	assert.Equal(t, 2, h.game().Config().Size)
	assert.NotEmpty(t, h.status)
}

func TestHost_DrawShowsLabels(t *testing.T) {
	h := newTestHost(t)
	h.draw()

	state := h.game().State()
	var first engine.TileView
	for _, tile := range state.Tiles {
		if tile.Tag == 0 {
			first = tile
		}
	}
	require.Equal(t, "1", first.Label)

	x, y := h.layout.toScreen(first.Rect)
	lx := x + (h.layout.cellW-1)/2
	ly := y + (h.layout.cellH-1)/2
	r, _, _, _ := h.screen.GetContent(lx, ly)
	assert.Equal(t, '1', r)
}

func TestNextCornerAndLabels(t *testing.T) {
	assert.Equal(t, engine.TopRight, nextCorner(engine.TopLeft))
	assert.Equal(t, engine.TopLeft, nextCorner(engine.BottomRight))
	assert.Equal(t, engine.TopLeft, nextCorner("bogus"))

	assert.Equal(t, engine.LabelsPhone, nextLabels(engine.LabelsNone))
	assert.Equal(t, engine.LabelsKeypad, nextLabels(engine.LabelsPhone))
	assert.Equal(t, engine.LabelsNone, nextLabels(engine.LabelsKeypad))
}

func TestStatusLine(t *testing.T) {
	state := engine.GameState{PuzzleSet: "mountain", Size: 4, Moves: 3, Playing: true, ElapsedMS: 1500, Solvable: true}
	assert.Equal(t, "mountain  4x4  moves 3  playing 1.5s", statusLine(state))

	state.Playing = false
	state.Solvable = false
	assert.Contains(t, statusLine(state), "(unsolvable)")
}
