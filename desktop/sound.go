package main

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

const sampleRate = 44100

// clicker plays the impact click and the completion chime through
// ebiten's audio context.
type clicker struct {
	ctx *audio.Context
}

func newClicker() (*clicker, error) {
	return &clicker{ctx: audio.NewContext(sampleRate)}, nil
}

// Click plays a short tick whose pitch and volume follow the landing speed.
func (c *clicker) Click(speed float64) {
	speed = math.Min(math.Max(speed, 0), 20)
	c.play(tone(600+speed*30, 25*time.Millisecond, 0.2+speed/40))
}

// Chime plays the solved sound.
func (c *clicker) Chime() {
	pcm := append(tone(880, 120*time.Millisecond, 0.5), tone(1320, 180*time.Millisecond, 0.4)...)
	c.play(pcm)
}

func (c *clicker) play(pcm []byte) {
	c.ctx.NewPlayerFromBytes(pcm).Play()
}

// tone renders d of a sine at freq as 16-bit little-endian stereo PCM,
// fading out linearly to avoid a pop at the end.
func tone(freq float64, d time.Duration, volume float64) []byte {
	n := int(d.Seconds() * sampleRate)
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		fade := 1 - float64(i)/float64(n)
		v := int16(volume * fade * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
		binary.LittleEndian.PutUint16(out[4*i:], uint16(v))
		binary.LittleEndian.PutUint16(out[4*i+2:], uint16(v))
	}
	return out
}
