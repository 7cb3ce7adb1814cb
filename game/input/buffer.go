package input

import (
	"sort"
	"sync"
	"time"
)

// Buffer is the rendezvous between event producers and the tick goroutine.
// All Sink methods are safe for concurrent use. Update must only be called
// from the goroutine that owns the listener.
type Buffer struct {
	mu sync.Mutex

	listener Listener
	source   Source
	scale    float64
	detector Detector

	mouse   CoordinateState
	buttons map[int]*Message

	touches    map[int]*CoordinateState
	touchEnds  map[int]*Message
	primary    int
	hasPrimary bool

	queue    []Message
	lastTime time.Duration
}

// NewBuffer returns a buffer dispatching to l. l may be nil and set later
// through Connect.
func NewBuffer(l Listener) *Buffer {
	return &Buffer{
		listener:  l,
		scale:     1,
		buttons:   make(map[int]*Message),
		touches:   make(map[int]*CoordinateState),
		touchEnds: make(map[int]*Message),
	}
}

// Connect attaches src so that it feeds this buffer. Every coordinate is
// multiplied by scale before it is stored. Any previous source is
// disconnected first. Messages still queued are dispatched to l. A nil l
// keeps the current listener and a scale <= 0 keeps the current factor.
func (b *Buffer) Connect(src Source, l Listener, scale float64) {
	b.Disconnect()

	b.mu.Lock()
	if l != nil {
		b.listener = l
	}
	if scale > 0 {
		b.scale = scale
	}
	b.source = src
	b.mu.Unlock()

	if src != nil {
		src.Attach(b)
	}
}

// Disconnect detaches the current source. Presses that are still open are
// completed at their last known point and queued, so the next Update
// delivers them as ordinary releases.
func (b *Buffer) Disconnect() {
	b.mu.Lock()
	src := b.source
	b.source = nil
	b.releaseAllLocked()
	b.detector.Reset()
	b.mu.Unlock()

	if src != nil {
		src.Detach()
	}
}

// Drop disconnects src if it is still the current source. It reports
// whether it did.
func (b *Buffer) Drop(src Source) bool {
	b.mu.Lock()
	if src == nil || b.source != src {
		b.mu.Unlock()
		return false
	}
	b.source = nil
	b.releaseAllLocked()
	b.detector.Reset()
	b.mu.Unlock()

	src.Detach()
	return true
}

func (b *Buffer) releaseAllLocked() {
	buttons := make([]int, 0, len(b.buttons))
	for id := range b.buttons {
		buttons = append(buttons, id)
	}
	sort.Ints(buttons)
	x, y, ok := b.mouse.Raw()
	for _, id := range buttons {
		m := b.buttons[id]
		if !ok {
			x, y = m.StartX, m.StartY
		}
		b.complete(m, x, y, b.lastTime)
		delete(b.buttons, id)
	}

	touches := make([]int, 0, len(b.touchEnds))
	for id := range b.touchEnds {
		touches = append(touches, id)
	}
	sort.Ints(touches)
	for _, id := range touches {
		m := b.touchEnds[id]
		tx, ty := m.StartX, m.StartY
		if s, ok := b.touches[id]; ok {
			if rx, ry, ok := s.Raw(); ok {
				tx, ty = rx, ry
			}
		}
		b.complete(m, tx, ty, b.lastTime)
		delete(b.touchEnds, id)
	}
	clear(b.touches)
	b.hasPrimary = false
}

func (b *Buffer) complete(m *Message, x, y float64, t time.Duration) {
	m.EndX, m.EndY = x, y
	m.EndTime = t
	if m.EndTime < m.StartTime {
		m.EndTime = m.StartTime
	}
	b.queue = append(b.queue, *m)
}

func (b *Buffer) stamp(t time.Duration) {
	if t > b.lastTime {
		b.lastTime = t
	}
}

// Scale returns the view to model factor.
func (b *Buffer) Scale() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scale
}

// Mode returns the detected device.
func (b *Buffer) Mode() Device {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.detector.Mode()
}

// Pending returns the number of queued messages.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Pressed reports whether any button or touch is down.
func (b *Buffer) Pressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buttons) > 0 || len(b.touchEnds) > 0
}

// Update dispatches every queued message in arrival order, then pulses all
// coordinate states and returns the primary pointer for this frame.
func (b *Buffer) Update() Pointer {
	b.mu.Lock()
	queue := b.queue
	b.queue = nil
	l := b.listener
	b.mu.Unlock()

	if l != nil {
		for _, m := range queue {
			if m.Kind == Start {
				l.DispatchStart(m)
			} else {
				l.DispatchEnd(m)
			}
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.mouse.Pulse()
	for _, s := range b.touches {
		s.Pulse()
	}
	return b.primaryLocked()
}

// Peek returns the primary pointer without pulsing.
func (b *Buffer) Peek() Pointer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.primaryLocked()
}

func (b *Buffer) primaryLocked() Pointer {
	if b.detector.Mode() == DeviceTouch {
		if !b.hasPrimary {
			return Pointer{Device: DeviceTouch}
		}
		return b.touches[b.primary].Pointer(DeviceTouch)
	}
	return b.mouse.Pointer(DeviceMouse)
}

func (b *Buffer) MouseDown(button int, x, y float64, t time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.detector.Observe(DeviceMouse) {
		return
	}
	x, y = x*b.scale, y*b.scale
	b.stamp(t)

	b.mouse.Shim(x, y)
	b.mouse.Input(x, y)

	m := Message{Kind: Start, Device: DeviceMouse, ID: button, Primary: true, StartX: x, StartY: y, StartTime: t}
	b.queue = append(b.queue, m)
	end := m
	end.Kind = End
	b.buttons[button] = &end
}

func (b *Buffer) MouseMove(x, y float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.detector.Allows(DeviceMouse) {
		return
	}
	b.mouse.Input(x*b.scale, y*b.scale)
}

func (b *Buffer) MouseUp(button int, x, y float64, t time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.buttons[button]
	if !ok {
		return
	}
	delete(b.buttons, button)
	x, y = x*b.scale, y*b.scale
	b.stamp(t)
	b.complete(m, x, y, t)
	b.mouse.Input(x, y)
}

func (b *Buffer) TouchStart(id int, x, y float64, t time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.detector.Observe(DeviceTouch) {
		return
	}
	x, y = x*b.scale, y*b.scale
	b.stamp(t)

	s := &CoordinateState{}
	s.Input(x, y)
	s.Shim(x, y)
	b.touches[id] = s
	if !b.hasPrimary {
		b.primary = id
		b.hasPrimary = true
	}

	m := Message{Kind: Start, Device: DeviceTouch, ID: id, Primary: b.primary == id, StartX: x, StartY: y, StartTime: t}
	b.queue = append(b.queue, m)
	end := m
	end.Kind = End
	b.touchEnds[id] = &end
}

func (b *Buffer) TouchMove(id int, x, y float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.touches[id]; ok {
		s.Input(x*b.scale, y*b.scale)
	}
}

func (b *Buffer) TouchEnd(id int, x, y float64, t time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.touches[id]
	if !ok {
		return
	}
	x, y = x*b.scale, y*b.scale
	b.stamp(t)
	if m, ok := b.touchEnds[id]; ok {
		b.complete(m, x, y, t)
		delete(b.touchEnds, id)
	}
	s.Input(x, y)
	delete(b.touches, id)

	if b.hasPrimary && b.primary == id {
		b.electLocked()
	}
}

// electLocked hands the primary role to the lowest remaining touch id.
func (b *Buffer) electLocked() {
	b.hasPrimary = false
	for id := range b.touches {
		if !b.hasPrimary || id < b.primary {
			b.primary = id
			b.hasPrimary = true
		}
	}
}

// Primary returns the id of the primary touch.
func (b *Buffer) Primary() (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.primary, b.hasPrimary
}
