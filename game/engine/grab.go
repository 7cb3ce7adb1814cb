package engine

import (
	"math"

	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
)

// Grab is the state of one drag: the held tile, the line it may slide along
// and the pointer offset inside the tile.
type Grab struct {
	held     *Tile
	row, col int
	axis     Axis
	view     AxisView
	concern  []*Tile
	offX     float64
	offY     float64
}

// Holding reports whether a tile is held.
func (g *Grab) Holding() bool { return g.held != nil }

// Held returns the held tile or nil.
func (g *Grab) Held() *Tile { return g.held }

// Axis returns the axis of the current drag.
func (g *Grab) Axis() Axis { return g.axis }

// Cell returns the model cell the held tile was grabbed from.
func (g *Grab) Cell() (row, col int) { return g.row, g.col }

func (g *Grab) clear() {
	*g = Grab{}
}

// beginGrab picks up the tile at (row, col). The caller has already checked
// that the cell shares exactly one of its row and column with the blank.
func (g *Game) beginGrab(x, y float64, row, col int) {
	br, _ := g.board.BlankRowCol()
	grab := &g.grab
	grab.row, grab.col = row, col
	if row == br {
		grab.axis = AxisHorizontal
		grab.concern = g.lineTiles(AxisHorizontal, row)
	} else {
		grab.axis = AxisVertical
		grab.concern = g.lineTiles(AxisVertical, col)
	}
	grab.view = ViewOf(grab.axis)
	grab.held = g.tiles[g.board.At(row, col)]

	for _, t := range g.tiles {
		if t.tag != g.board.blankTag {
			t.Settle()
		}
	}
	grab.offX = x - grab.held.x
	grab.offY = y - grab.held.y
}

// trackGrab steers the held tile toward the pointer and pushes what it hits.
func (g *Game) trackGrab(p input.Pointer) {
	grab := &g.grab
	if p.HasPrev {
		v := grab.view
		target := v.Of(p.X, p.Y) - v.Of(grab.offX, grab.offY)
		v.SetVel(grab.held, target-v.Get(grab.held))
	}
	g.resolveCollision()
}

// willHit reports whether a, moving by its velocity, would overlap b.
func willHit(v AxisView, a, b *Tile) bool {
	ap, av := v.Get(a), v.Vel(a)
	aLo := math.Min(ap, ap+av)
	aHi := math.Max(ap, ap+av) + a.size

	bp, bv := v.Get(b), v.Vel(b)
	bLo := math.Min(bp, bp+bv)
	bHi := math.Max(bp, bp+bv) + b.size

	return aLo < bHi && bLo < aHi
}

// resolveCollision propagates the held tile's motion to the tiles in front
// of it and then stacks everything against the wall it is heading for.
func (g *Game) resolveCollision() {
	grab := &g.grab
	v := grab.view
	s := int(sign(v.Vel(grab.held)))
	if s == 0 {
		return
	}
	n := len(grab.concern)
	blank := g.board.blankTag
	fs := float64(s)

	start := v.Index(grab.row, grab.col)
	for a := start; a >= 0 && a < n; a += s {
		ta := grab.concern[a]
		if ta.tag == blank {
			continue
		}
		for b := a + s; b >= 0 && b < n; b += s {
			tb := grab.concern[b]
			if tb.tag == blank {
				continue
			}
			if willHit(v, ta, tb) {
				v.Set(tb, v.Get(ta)+v.Vel(ta)+tb.size*fs)
			}
		}
	}

	bounds := g.cfg.Bounds()
	limit := v.Start(bounds)
	first, last := 0, n
	if s > 0 {
		limit = v.End(bounds) - grab.held.size
		first, last = n-1, -1
	}
	for i := first; i != last; i -= s {
		t := grab.concern[i]
		if t.tag == blank {
			continue
		}
		if (v.Get(t)+v.Vel(t)-limit)*fs > 0 {
			v.Set(t, limit)
			v.SetVel(t, 0)
			limit -= t.size * fs
		}
	}
}

// releaseGrab commits the drag or tap into the model. It reports whether
// the permutation changed.
func (g *Game) releaseGrab(m input.Message) bool {
	grab := &g.grab
	defer grab.clear()

	v := grab.view
	dist := v.Of(m.EndX-m.StartX, m.EndY-m.StartY)
	tap := m.Duration() < g.cfg.TapDuration && math.Abs(dist) < g.cfg.TapDistance

	before := g.board.Cells()
	if tap {
		g.commitTap()
	} else {
		g.commitDrag()
	}
	g.renderLife = ReleaseRenderLife

	after := g.board.cells
	for i := range before {
		if before[i] != after[i] {
			return true
		}
	}
	return false
}

// commitTap rotates the line so the blank lands where the tapped tile was.
// The model changes first and the tiles glide after it.
func (g *Game) commitTap() {
	grab := &g.grab
	if _, err := g.board.Slide(grab.row, grab.col); err != nil {
		return
	}
	g.glideLine(grab.axis, g.lineIndex(grab.axis, grab.row, grab.col))
}

// commitDrag reads where the tiles ended up and writes that into the model.
// Tiles left alone keep the slot under their center; the held tile competes
// for the slot nearest to where it is heading and pushes whatever sits there
// one slot further along. The order of the tiles along the line never
// changes, only where the blank sits.
func (g *Game) commitDrag() {
	grab := &g.grab
	v := grab.view
	n := g.board.size
	bounds := g.cfg.Bounds()
	blank := g.board.blankTag

	target, dir := g.heldSlot()

	// tiles never pass each other, so concern order is also physical order
	var order []*Tile
	var at []int
	for _, t := range grab.concern {
		switch {
		case t.tag == blank:
			continue
		case t == grab.held:
			at = append(at, target)
		default:
			row, col := t.whereami(bounds, n)
			at = append(at, v.Index(row, col))
		}
		order = append(order, t)
	}
	if dir < 0 {
		spreadDown(at)
		spreadUp(at, n)
	} else {
		spreadUp(at, n)
		spreadDown(at)
	}

	tags := make([]int, n)
	for i := range tags {
		tags[i] = blank
	}
	for i, t := range order {
		tags[at[i]] = t.tag
	}
	line := g.lineIndex(grab.axis, grab.row, grab.col)
	g.board.setLine(grab.axis, line, tags)
	g.glideLine(grab.axis, line)
}

// spreadUp makes slots strictly increasing by pushing later entries forward,
// then pulls the tail back inside n slots.
func spreadUp(at []int, n int) {
	for i := 1; i < len(at); i++ {
		at[i] = max(at[i], at[i-1]+1)
	}
	for i := len(at) - 1; i >= 0; i-- {
		limit := n - 1 - (len(at) - 1 - i)
		at[i] = min(at[i], limit)
	}
}

// spreadDown makes slots strictly increasing by pushing earlier entries
// back, then pushes the head forward to stay at or above zero.
func spreadDown(at []int) {
	for i := len(at) - 2; i >= 0; i-- {
		at[i] = min(at[i], at[i+1]-1)
	}
	for i := range at {
		at[i] = max(at[i], i)
	}
}

// heldSlot returns the cell nearest to the held tile's projected position
// and the direction it travels in. Ties go toward the direction of travel.
func (g *Game) heldSlot() (slot, dir int) {
	grab := &g.grab
	v := grab.view
	bounds := g.cfg.Bounds()
	n := g.board.size

	vel := v.Vel(grab.held)
	dir = int(sign(vel))
	f := (v.Get(grab.held) + vel - v.Start(bounds)) / grab.held.size
	if dir < 0 {
		slot = int(math.Ceil(f - 0.5))
	} else {
		slot = int(math.Floor(f + 0.5))
	}
	return clampIndex(slot, n), dir
}
