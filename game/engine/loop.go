package engine

import (
	"time"

	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
)

// Loop binds a Game to the input buffer that feeds it, so a clock can drive
// both as one frame.
type Loop struct {
	Game  *Game
	Input *input.Buffer

	// OnRender runs on frames with render life left.
	OnRender func(g *Game)
}

// NewLoop returns a loop whose buffer dispatches to g.
func NewLoop(g *Game) *Loop {
	return &Loop{Game: g, Input: input.NewBuffer(g)}
}

// Update dispatches queued input, then ticks the game with this frame's
// pointer.
func (l *Loop) Update(now time.Duration) {
	p := l.Input.Update()
	l.Game.Update(now, p)
}

// Render calls OnRender when the game still wants frames.
func (l *Loop) Render() {
	if l.Game.ConsumeRender() && l.OnRender != nil {
		l.OnRender(l.Game)
	}
}
