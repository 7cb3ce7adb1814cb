package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	buf      *Buffer
	messages []Message
	// pointer seen through Peek while each message was dispatched
	during []Pointer
}

func (r *recorder) DispatchStart(m Message) { r.record(m) }
func (r *recorder) DispatchEnd(m Message)   { r.record(m) }

func (r *recorder) record(m Message) {
	r.messages = append(r.messages, m)
	if r.buf != nil {
		r.during = append(r.during, r.buf.Peek())
	}
}

type fakeSource struct {
	sink     Sink
	detached int
}

func (f *fakeSource) Attach(s Sink) { f.sink = s }
func (f *fakeSource) Detach() {
	f.sink = nil
	f.detached++
}

func newRecorded() (*Buffer, *recorder) {
	r := &recorder{}
	b := NewBuffer(r)
	r.buf = b
	return b, r
}

func TestBuffer_DownUpDispatchedInOneUpdate(t *testing.T) {
	b, r := newRecorded()

	b.MouseMove(10, 10)
	b.Update()
	b.Update()

	b.MouseDown(0, 50, 60, 100*time.Millisecond)
	b.MouseUp(0, 52, 61, 180*time.Millisecond)
	require.Equal(t, 2, b.Pending())

	p := b.Update()

	require.Len(t, r.messages, 2)
	assert.Equal(t, Start, r.messages[0].Kind)
	assert.Equal(t, End, r.messages[1].Kind)
	assert.Equal(t, 80*time.Millisecond, r.messages[1].Duration())
	assert.Equal(t, 50.0, r.messages[1].StartX)
	assert.Equal(t, 52.0, r.messages[1].EndX)

	// previous still holds the pre-press frame while messages are dispatched
	require.Len(t, r.during, 2)
	assert.Equal(t, 10.0, r.during[0].PrevX)
	assert.Equal(t, 10.0, r.during[0].PrevY)

	// after the pulse previous is the press point and current the release point
	assert.Equal(t, 50.0, p.PrevX)
	assert.Equal(t, 60.0, p.PrevY)
	assert.Equal(t, 52.0, p.X)
	assert.Equal(t, 61.0, p.Y)
	assert.Equal(t, 0, b.Pending())
}

func TestBuffer_MovesCollapseToLastWrite(t *testing.T) {
	b, _ := newRecorded()

	b.MouseMove(1, 1)
	b.MouseMove(2, 2)
	b.MouseMove(3, 4)
	p := b.Update()
	assert.True(t, p.Valid)
	assert.False(t, p.HasPrev)
	assert.Equal(t, 3.0, p.X)
	assert.Equal(t, 4.0, p.Y)

	b.MouseMove(7, 9)
	p = b.Update()
	dx, dy := p.Move()
	assert.Equal(t, 4.0, dx)
	assert.Equal(t, 5.0, dy)
}

func TestBuffer_FirstFrameHasNoPrevious(t *testing.T) {
	b, _ := newRecorded()
	p := b.Peek()
	assert.False(t, p.Valid)
	dx, dy := p.Move()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestBuffer_UpWithoutDownIsIgnored(t *testing.T) {
	b, r := newRecorded()
	b.MouseUp(0, 5, 5, time.Second)
	b.Update()
	assert.Empty(t, r.messages)
}

func TestBuffer_ButtonsAreIndependent(t *testing.T) {
	b, r := newRecorded()
	b.MouseDown(0, 1, 1, 0)
	b.MouseDown(2, 3, 3, time.Millisecond)
	b.MouseUp(2, 4, 4, 2*time.Millisecond)
	b.MouseUp(0, 5, 5, 3*time.Millisecond)
	b.Update()

	require.Len(t, r.messages, 4)
	assert.Equal(t, 2, r.messages[2].ID)
	assert.Equal(t, 3.0, r.messages[2].StartX)
	assert.Equal(t, 0, r.messages[3].ID)
	assert.Equal(t, 1.0, r.messages[3].StartX)
	assert.False(t, b.Pressed())
}

func TestBuffer_Scale(t *testing.T) {
	b, r := newRecorded()
	src := &fakeSource{}
	b.Connect(src, r, 2)
	require.NotNil(t, src.sink)

	src.sink.MouseDown(0, 10, 20, 0)
	p := b.Update()
	require.Len(t, r.messages, 1)
	assert.Equal(t, 20.0, r.messages[0].StartX)
	assert.Equal(t, 40.0, r.messages[0].StartY)
	assert.Equal(t, 20.0, p.X)
	assert.Equal(t, 2.0, b.Scale())
}

func TestBuffer_DisconnectReleasesOpenPresses(t *testing.T) {
	b, r := newRecorded()
	src := &fakeSource{}
	b.Connect(src, r, 1)

	src.sink.MouseDown(0, 10, 10, 50*time.Millisecond)
	src.sink.MouseMove(30, 10)
	b.Update()
	require.True(t, b.Pressed())

	b.Disconnect()
	assert.Equal(t, 1, src.detached)
	assert.Nil(t, src.sink)
	assert.False(t, b.Pressed())

	b.Update()
	require.Len(t, r.messages, 2)
	end := r.messages[1]
	assert.Equal(t, End, end.Kind)
	assert.Equal(t, 30.0, end.EndX)
	assert.Equal(t, 10.0, end.StartX)
	assert.Equal(t, 50*time.Millisecond, end.EndTime)
}

func TestBuffer_DropOnlyCurrentSource(t *testing.T) {
	b, r := newRecorded()
	first := &fakeSource{}
	second := &fakeSource{}
	b.Connect(first, r, 1)
	b.Connect(second, nil, 0)
	assert.Equal(t, 1, first.detached)
	assert.Equal(t, 1.0, b.Scale())

	assert.False(t, b.Drop(first))
	assert.Equal(t, 0, second.detached)

	second.sink.MouseDown(0, 5, 5, 0)
	b.Update()
	require.Len(t, r.messages, 1, "nil listener keeps the previous one")

	assert.True(t, b.Drop(second))
	assert.Equal(t, 1, second.detached)
	b.Update()
	require.Len(t, r.messages, 2)
	assert.Equal(t, End, r.messages[1].Kind)
}

func TestBuffer_DetectorFixesDevice(t *testing.T) {
	b, r := newRecorded()

	b.TouchStart(3, 10, 10, 0)
	assert.Equal(t, DeviceTouch, b.Mode())

	// a synthesized mouse press is dropped
	b.MouseDown(0, 10, 10, 0)
	b.MouseMove(99, 99)
	b.Update()
	require.Len(t, r.messages, 1)
	assert.Equal(t, DeviceTouch, r.messages[0].Device)

	b.Disconnect()
	assert.Equal(t, DeviceUnknown, b.Mode())
	b.Update()
	require.Len(t, r.messages, 2)
	assert.Equal(t, End, r.messages[1].Kind)

	b.MouseDown(0, 1, 1, time.Second)
	assert.Equal(t, DeviceMouse, b.Mode())
}

func TestBuffer_PrimaryFlag(t *testing.T) {
	b, r := newRecorded()
	b.TouchStart(3, 10, 10, 0)
	b.TouchStart(1, 20, 20, 0)
	b.Update()
	require.Len(t, r.messages, 2)
	assert.True(t, r.messages[0].Primary)
	assert.False(t, r.messages[1].Primary)

	m, mr := newRecorded()
	m.MouseDown(2, 5, 5, 0)
	m.Update()
	require.Len(t, mr.messages, 1)
	assert.True(t, mr.messages[0].Primary)
}

func TestBuffer_TouchPrimarySuccession(t *testing.T) {
	b, r := newRecorded()

	b.TouchStart(7, 10, 10, 0)
	b.TouchStart(4, 20, 20, 0)
	b.TouchStart(9, 30, 30, 0)
	id, ok := b.Primary()
	require.True(t, ok)
	assert.Equal(t, 7, id)

	p := b.Update()
	assert.Equal(t, 10.0, p.X)

	b.TouchMove(4, 21, 22)
	b.TouchEnd(7, 11, 11, time.Millisecond)
	id, ok = b.Primary()
	require.True(t, ok)
	assert.Equal(t, 4, id)

	p = b.Update()
	assert.Equal(t, 21.0, p.X)
	assert.Equal(t, 22.0, p.Y)
	assert.Equal(t, 20.0, p.PrevX)
	assert.Len(t, r.messages, 4)

	b.TouchEnd(4, 0, 0, 2*time.Millisecond)
	b.TouchEnd(9, 0, 0, 2*time.Millisecond)
	_, ok = b.Primary()
	assert.False(t, ok)
	p = b.Update()
	assert.False(t, p.Valid)
	assert.Equal(t, DeviceTouch, p.Device)
}

func TestBuffer_TouchMoveForUnknownIDIsIgnored(t *testing.T) {
	b, _ := newRecorded()
	b.TouchStart(1, 5, 5, 0)
	b.TouchMove(2, 50, 50)
	p := b.Update()
	assert.Equal(t, 5.0, p.X)
}

func TestBuffer_ConcurrentProducers(t *testing.T) {
	b, r := newRecorded()
	done := make(chan struct{})
	for i := 0; i < 4; i++ {
		go func(button int) {
			for j := 0; j < 100; j++ {
				b.MouseMove(float64(j), float64(j))
			}
			b.MouseDown(button, 1, 1, 0)
			b.MouseUp(button, 2, 2, time.Millisecond)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 4; i++ {
		<-done
	}
	b.Update()
	assert.Len(t, r.messages, 8)
}

func TestDetector(t *testing.T) {
	var d Detector
	assert.True(t, d.Allows(DeviceTouch))
	assert.True(t, d.Observe(DeviceMouse))
	assert.False(t, d.Observe(DeviceTouch))
	assert.False(t, d.Allows(DeviceTouch))
	d.Reset()
	assert.True(t, d.Observe(DeviceTouch))
	assert.Equal(t, "touch", d.Mode().String())
}
