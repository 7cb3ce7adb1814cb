package engine

import "math"

// Tile is one movable piece of the picture. Tiles never change identity;
// only their position, velocity and glide destination move.
type Tile struct {
	tag    int
	label  string
	source Rect

	x, y float64
	size float64

	velX, velY float64

	destX, destY       float64
	hasDestX, hasDestY bool
}

// NewTile places a tile with edge size at (x, y).
func NewTile(tag int, source Rect, x, y, size float64) *Tile {
	return &Tile{tag: tag, source: source, x: x, y: y, size: size}
}

func (t *Tile) Tag() int { return t.tag }
func (t *Tile) Label() string { return t.label }
func (t *Tile) Source() Rect { return t.source }
func (t *Tile) Size() float64 { return t.size }
func (t *Tile) Position() (float64, float64) {
	return t.x, t.y
}
func (t *Tile) Velocity() (float64, float64) {
	return t.velX, t.velY
}

// Rect returns the tile's current square.
func (t *Tile) Rect() Rect {
	return Rect{X: t.x, Y: t.y, Size: t.size}
}

// Destination returns the pending glide target, if any.
func (t *Tile) Destination() (x, y float64, ok bool) {
	if !t.hasDestX && !t.hasDestY {
		return t.x, t.y, false
	}
	x, y = t.x, t.y
	if t.hasDestX {
		x = t.destX
	}
	if t.hasDestY {
		y = t.destY
	}
	return x, y, true
}

// SetDestination starts a glide toward (x, y).
func (t *Tile) SetDestination(x, y float64) {
	t.destX, t.destY = x, y
	t.hasDestX, t.hasDestY = true, true
}

// Place teleports the tile and clears any motion.
func (t *Tile) Place(x, y float64) {
	t.x, t.y = x, y
	t.velX, t.velY = 0, 0
	t.hasDestX, t.hasDestY = false, false
}

// Moving reports whether the tile is gliding or carries velocity.
func (t *Tile) Moving() bool {
	return t.hasDestX || t.hasDestY || t.velX != 0 || t.velY != 0
}

// Settle jumps to any pending destination and stops on that axis.
func (t *Tile) Settle() {
	if t.hasDestX {
		t.x = t.destX
		t.hasDestX = false
		t.velX = 0
	}
	if t.hasDestY {
		t.y = t.destY
		t.hasDestY = false
		t.velY = 0
	}
}

// Step advances the tile by one tick inside bounds. onImpact may be nil.
// A glide snaps once the remaining distance is within one step; the impact
// carries the glide speed of that last step.
func (t *Tile) Step(bounds Rect, onImpact func(Impact)) {
	step := t.size / GlideDivisor
	if t.hasDestX {
		dist := t.destX - t.x
		vel := glideVelocity(step, dist, t.velX)
		if math.Abs(dist) <= step || math.Abs(dist) < SnapEpsilon {
			t.x = t.destX
			t.hasDestX = false
			t.impact(AxisHorizontal, vel, onImpact)
			t.velX = 0
		} else {
			t.velX = vel
		}
	}
	if t.hasDestY {
		dist := t.destY - t.y
		vel := glideVelocity(step, dist, t.velY)
		if math.Abs(dist) <= step || math.Abs(dist) < SnapEpsilon {
			t.y = t.destY
			t.hasDestY = false
			t.impact(AxisVertical, vel, onImpact)
			t.velY = 0
		} else {
			t.velY = vel
		}
	}

	t.x += t.velX
	t.y += t.velY

	if t.x < bounds.X {
		t.x = bounds.X
		t.velX = 0
	} else if t.x+t.size > bounds.Right() {
		t.x = bounds.Right() - t.size
		t.velX = 0
	}
	if t.y < bounds.Y {
		t.y = bounds.Y
		t.velY = 0
	} else if t.y+t.size > bounds.Bottom() {
		t.y = bounds.Bottom() - t.size
		t.velY = 0
	}
}

// glideVelocity points step toward dist. A tile already on its destination
// keeps the direction it arrived with.
func glideVelocity(step, dist, current float64) float64 {
	if dist == 0 {
		return step * sign(current)
	}
	return step * sign(dist)
}

func (t *Tile) impact(axis Axis, vel float64, onImpact func(Impact)) {
	if onImpact == nil || math.Abs(vel) < ImpactSpeed {
		return
	}
	x, y := t.x, t.y
	dir := int(sign(vel))
	// the spark sits on the leading edge
	if dir > 0 {
		if axis == AxisHorizontal {
			x += t.size
		} else {
			y += t.size
		}
	}
	onImpact(Impact{Tag: t.tag, Axis: axis, Direction: dir, X: x, Y: y, Speed: math.Abs(vel)})
}

// whereami returns the cell under the tile's center, preferring the glide
// destination over the current position.
func (t *Tile) whereami(bounds Rect, n int) (row, col int) {
	x, y, _ := t.Destination()
	return cellAt(x+t.size/2, y+t.size/2, bounds, n)
}

// cellAt quantizes a point into a row and column, clamped to the board.
func cellAt(x, y float64, bounds Rect, n int) (row, col int) {
	d := bounds.Size / float64(n)
	row = clampIndex(int(math.Floor((y-bounds.Y)/d)), n)
	col = clampIndex(int(math.Floor((x-bounds.X)/d)), n)
	return row, col
}

// cellOrigin returns the top-left of a cell.
func cellOrigin(row, col int, bounds Rect, n int) (float64, float64) {
	d := bounds.Size / float64(n)
	return bounds.X + float64(col)*d, bounds.Y + float64(row)*d
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
