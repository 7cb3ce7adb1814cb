package engine

// AxisView reads and writes one coordinate of a tile. A drag picks its view
// once at grab time so the collision code never branches on the axis.
type AxisView struct {
	axis Axis
}

// ViewOf returns the view for axis. AxisNone behaves like horizontal.
func ViewOf(axis Axis) AxisView {
	return AxisView{axis: axis}
}

func (v AxisView) vertical() bool { return v.axis == AxisVertical }

// Get returns the tile position on the axis.
func (v AxisView) Get(t *Tile) float64 {
	if v.vertical() {
		return t.y
	}
	return t.x
}

// Set moves the tile on the axis.
func (v AxisView) Set(t *Tile, p float64) {
	if v.vertical() {
		t.y = p
		return
	}
	t.x = p
}

// Vel returns the tile velocity on the axis.
func (v AxisView) Vel(t *Tile) float64 {
	if v.vertical() {
		return t.velY
	}
	return t.velX
}

// SetVel changes the tile velocity on the axis.
func (v AxisView) SetVel(t *Tile, vel float64) {
	if v.vertical() {
		t.velY = vel
		return
	}
	t.velX = vel
}

// Of picks the axis component of a point or displacement.
func (v AxisView) Of(x, y float64) float64 {
	if v.vertical() {
		return y
	}
	return x
}

// Start is the left or top edge of r.
func (v AxisView) Start(r Rect) float64 {
	return v.Of(r.X, r.Y)
}

// End is the right or bottom edge of r.
func (v AxisView) End(r Rect) float64 {
	return v.Of(r.Right(), r.Bottom())
}

// Index picks the position along the line: the column for a row, the row
// for a column.
func (v AxisView) Index(row, col int) int {
	if v.vertical() {
		return row
	}
	return col
}
