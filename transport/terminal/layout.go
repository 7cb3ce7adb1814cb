package terminal

import (
	"math"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// layout maps the model board onto character cells. A tile is twice as
// wide as it is tall so it looks roughly square in most fonts.
type layout struct {
	cfg              engine.BoardConfig
	originX, originY int
	cellW, cellH     int
}

func newLayout(width, height int, cfg engine.BoardConfig) layout {
	n := cfg.Size
	if n < 1 {
		n = 1
	}
	cellH := height / n
	if w := width / (2 * n); w < cellH {
		cellH = w
	}
	if cellH < 1 {
		cellH = 1
	}
	cellW := 2 * cellH

	return layout{
		cfg:     cfg,
		originX: max((width-n*cellW)/2, 0),
		originY: max((height-n*cellH)/2, 0),
		cellW:   cellW,
		cellH:   cellH,
	}
}

// unitsX is the model width of one column.
func (l layout) unitsX() float64 {
	return l.cfg.Length / float64(l.cfg.Size*l.cellW)
}

// unitsY is the model height of one row.
func (l layout) unitsY() float64 {
	return l.cfg.Length / float64(l.cfg.Size*l.cellH)
}

// toModel returns the model point at the centre of screen cell (x, y).
func (l layout) toModel(x, y int) (float64, float64) {
	mx := l.cfg.Left + (float64(x-l.originX)+0.5)*l.unitsX()
	my := l.cfg.Top + (float64(y-l.originY)+0.5)*l.unitsY()
	return mx, my
}

// toScreen returns the top-left screen cell of a model rect.
func (l layout) toScreen(r engine.Rect) (x, y int) {
	x = l.originX + int(math.Round((r.X-l.cfg.Left)/l.unitsX()))
	y = l.originY + int(math.Round((r.Y-l.cfg.Top)/l.unitsY()))
	return x, y
}

// width and height of the whole board in screen cells.
func (l layout) width() int  { return l.cfg.Size * l.cellW }
func (l layout) height() int { return l.cfg.Size * l.cellH }
