package input

// CoordinateState holds a raw register and the position seen by the current
// and the previous frame. Previous means the previous tick, not the previous
// event.
type CoordinateState struct {
	inX, inY     float64
	curX, curY   float64
	prevX, prevY float64

	hasIn, hasCur, hasPrev bool
}

// Input stores a raw coordinate. The last write before a pulse wins.
func (c *CoordinateState) Input(x, y float64) {
	c.inX, c.inY = x, y
	c.hasIn = true
}

// Shim forces the current coordinate, used when a press lands so the frame
// that dispatches it sees the press point.
func (c *CoordinateState) Shim(x, y float64) {
	c.curX, c.curY = x, y
	c.hasCur = true
}

// Pulse moves current into previous and raw into current.
func (c *CoordinateState) Pulse() {
	c.prevX, c.prevY = c.curX, c.curY
	c.hasPrev = c.hasCur
	if c.hasIn {
		c.curX, c.curY = c.inX, c.inY
		c.hasCur = true
	}
}

// Raw returns the last input.
func (c *CoordinateState) Raw() (x, y float64, ok bool) {
	return c.inX, c.inY, c.hasIn
}

// Pointer returns a snapshot of the frame positions.
func (c *CoordinateState) Pointer(dev Device) Pointer {
	return Pointer{
		X:       c.curX,
		Y:       c.curY,
		PrevX:   c.prevX,
		PrevY:   c.prevY,
		Valid:   c.hasCur,
		HasPrev: c.hasPrev,
		Device:  dev,
	}
}

// Pointer is a frame-stable view of the primary coordinate.
type Pointer struct {
	X, Y         float64
	PrevX, PrevY float64
	// Valid is false until the stream has seen any coordinate.
	Valid bool
	// HasPrev is false on the first frame of a stream.
	HasPrev bool
	Device  Device
}

// Move returns the displacement since the previous frame.
func (p Pointer) Move() (dx, dy float64) {
	if !p.Valid || !p.HasPrev {
		return 0, 0
	}
	return p.X - p.PrevX, p.Y - p.PrevY
}
