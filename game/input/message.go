package input

import "time"

// Kind tells a press from a release.
type Kind int

const (
	Start Kind = iota
	End
)

func (k Kind) String() string {
	if k == End {
		return "end"
	}
	return "start"
}

// Device is the kind of hardware a message came from.
type Device int

const (
	DeviceUnknown Device = iota
	DeviceMouse
	DeviceTouch
)

func (d Device) String() string {
	switch d {
	case DeviceMouse:
		return "mouse"
	case DeviceTouch:
		return "touch"
	default:
		return "unknown"
	}
}

// Message is one press or release. A release carries the start fields of its
// press so the listener can classify the gesture without keeping history.
type Message struct {
	Kind   Kind
	Device Device
	// ID is the mouse button or the touch identifier.
	ID int
	// Primary is set when the press may drive a drag: every mouse button,
	// and the touch that was primary when it landed.
	Primary bool

	StartX, StartY float64
	StartTime      time.Duration

	EndX, EndY float64
	EndTime    time.Duration
}

// Duration returns how long the press lasted. Zero for start messages.
func (m Message) Duration() time.Duration {
	if m.Kind != End {
		return 0
	}
	return m.EndTime - m.StartTime
}

// Listener consumes messages during Buffer.Update.
type Listener interface {
	DispatchStart(m Message)
	DispatchEnd(m Message)
}

// Sink receives raw events from a Source. Coordinates are in view units and
// t is the host's monotonic timestamp.
type Sink interface {
	MouseDown(button int, x, y float64, t time.Duration)
	MouseMove(x, y float64)
	MouseUp(button int, x, y float64, t time.Duration)
	TouchStart(id int, x, y float64, t time.Duration)
	TouchMove(id int, x, y float64)
	TouchEnd(id int, x, y float64, t time.Duration)
}

// Source is anything that can feed a Sink: a window, a socket, a test.
type Source interface {
	Attach(s Sink)
	Detach()
}
