package terminal

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

const helpLine = "drag or click tiles | s start  x stop  n next  +/- size  c corner  l labels  q quit"

var (
	boardStyle  = tcell.StyleDefault.Background(tcell.NewRGBColor(24, 24, 32))
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	helpStyle   = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// tileColor shades a tile by its home cell so a solved board reads as a
// smooth gradient.
func tileColor(tag, size int) tcell.Color {
	row, col := tag/size, tag%size
	span := int32(max(size-1, 1))
	r := 70 + 150*int32(col)/span
	g := 70 + 150*int32(row)/span
	return tcell.NewRGBColor(r, g, 170)
}

func (h *Host) draw() {
	s := h.screen
	s.Clear()

	state := h.game().State()
	l := h.layout

	fill(s, l.originX, l.originY, l.width(), l.height(), boardStyle)
	for _, t := range state.Tiles {
		h.drawTile(t, state)
	}

	_, height := s.Size()
	y := height - statusRows
	drawText(s, 0, y, statusStyle, statusLine(state))
	drawText(s, 0, y+1, statusStyle, h.status)
	drawText(s, 0, y+2, helpStyle, helpLine)

	s.Show()
}

func (h *Host) drawTile(t engine.TileView, state engine.GameState) {
	l := h.layout
	x, y := l.toScreen(t.Rect)

	color := tileColor(t.Tag, state.Size)
	style := tcell.StyleDefault.Background(color).Foreground(tcell.ColorBlack)
	if t.Tag == state.Held {
		style = style.Reverse(true)
	}

	fill(h.screen, x, y, l.cellW, l.cellH, style)
	if l.cellH > 1 {
		// bottom row underlined so stacked tiles stay apart
		fill(h.screen, x, y+l.cellH-1, l.cellW, 1, style.Underline(true))
	}

	if t.Label != "" {
		lx := x + (l.cellW-len(t.Label))/2
		ly := y + (l.cellH-1)/2
		drawText(h.screen, lx, ly, style.Bold(true), t.Label)
	}
}

func statusLine(state engine.GameState) string {
	round := "not playing"
	switch {
	case state.Playing:
		round = "playing " + formatElapsed(state.ElapsedMS)
	case state.Solved && state.Completion != nil:
		round = "solved in " + formatElapsed(state.Completion.ElapsedMS)
	case state.Solved:
		round = "solved"
	}
	line := fmt.Sprintf("%s  %dx%d  moves %d  %s", state.PuzzleSet, state.Size, state.Size, state.Moves, round)
	if !state.Solvable {
		line += "  (unsolvable)"
	}
	return line
}

func fill(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.SetContent(col, row, ' ', nil, style)
		}
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
