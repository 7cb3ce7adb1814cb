package terminal

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// clicker plays the impact click and the completion chime.
type clicker struct{}

func newClicker() (*clicker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &clicker{}, nil
}

// Click plays a short tick whose pitch and volume follow the landing speed.
func (c *clicker) Click(speed float64) {
	speed = math.Min(math.Max(speed, 0), 20)
	if t := tone(600+speed*30, 25*time.Millisecond, speed/10-2); t != nil {
		speaker.Play(t)
	}
}

// Chime plays the solved sound.
func (c *clicker) Chime() {
	low := tone(880, 120*time.Millisecond, 0)
	high := tone(1320, 180*time.Millisecond, -0.5)
	if low != nil && high != nil {
		speaker.Play(beep.Seq(low, high))
	}
}

// tone returns d of a sine at freq, or nil if freq is out of range.
func tone(freq float64, d time.Duration, volume float64) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return nil
	}
	return &effects.Volume{
		Streamer: beep.Take(sampleRate.N(d), sine),
		Base:     2,
		Volume:   volume,
	}
}

func (c *clicker) Close() {
	speaker.Close()
}
