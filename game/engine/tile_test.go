package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBounds = Rect{X: 0, Y: 0, Size: 300}

func TestTile_GlideAndSnap(t *testing.T) {
	tile := NewTile(1, Rect{}, 200, 0, 60)
	tile.SetDestination(100, 0)

	var impacts []Impact
	steps := 0
	for tile.Moving() && steps < 100 {
		tile.Step(testBounds, func(im Impact) { impacts = append(impacts, im) })
		steps++
	}
	x, y := tile.Position()
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 0.0, y)
	// 60/6 = 10 per tick over 100 units, snapping on the tenth
	assert.Equal(t, 10, steps)

	require.Len(t, impacts, 1)
	assert.Equal(t, AxisHorizontal, impacts[0].Axis)
	assert.Equal(t, -1, impacts[0].Direction)
	assert.Equal(t, 100.0, impacts[0].X)
	assert.Equal(t, 10.0, impacts[0].Speed)
}

func TestTile_SlowSnapHasNoImpact(t *testing.T) {
	// size 12 gives a glide speed of 2, under the impact threshold
	tile := NewTile(0, Rect{}, 0, 0, 12)
	tile.SetDestination(0, 24)
	var impacts int
	for i := 0; i < 50; i++ {
		tile.Step(testBounds, func(Impact) { impacts++ })
	}
	_, y := tile.Position()
	assert.Equal(t, 24.0, y)
	assert.Zero(t, impacts)
	assert.False(t, tile.Moving())
}

func TestTile_ImpactOnLeadingEdge(t *testing.T) {
	tile := NewTile(4, Rect{}, 0, 0, 60)
	tile.SetDestination(0, 120)
	var got Impact
	for tile.Moving() {
		tile.Step(testBounds, func(im Impact) { got = im })
	}
	assert.Equal(t, AxisVertical, got.Axis)
	assert.Equal(t, 1, got.Direction)
	assert.Equal(t, 180.0, got.Y)
	assert.Equal(t, 4, got.Tag)
}

func TestTile_WholeStepGlideImpacts(t *testing.T) {
	// 480/4 cells with a 20 unit step: every glide ends on a whole step
	tile := NewTile(2, Rect{}, 240, 0, 120)
	tile.SetDestination(120, 0)
	var impacts []Impact
	for i := 0; i < 30 && tile.Moving(); i++ {
		tile.Step(Rect{Size: 480}, func(im Impact) { impacts = append(impacts, im) })
	}
	require.Len(t, impacts, 1)
	assert.Equal(t, -1, impacts[0].Direction)
	assert.Equal(t, 20.0, impacts[0].Speed)
	x, _ := tile.Position()
	assert.Equal(t, 120.0, x)
}

func TestTile_SettleIsIdempotent(t *testing.T) {
	tile := NewTile(0, Rect{}, 0, 0, 100)
	tile.SetDestination(200, 100)
	tile.Settle()
	x, y := tile.Position()
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 100.0, y)
	assert.False(t, tile.Moving())

	tile.Settle()
	x2, y2 := tile.Position()
	assert.Equal(t, x, x2)
	assert.Equal(t, y, y2)

	// no destination: nothing happens, velocity is kept
	tile.velX = 5
	tile.Settle()
	vx, _ := tile.Velocity()
	assert.Equal(t, 5.0, vx)
}

func TestTile_ClampedToBoard(t *testing.T) {
	tile := NewTile(0, Rect{}, 180, 10, 100)
	tile.velX = 50
	tile.velY = -40
	tile.Step(testBounds, nil)
	x, y := tile.Position()
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 0.0, y)
	vx, vy := tile.Velocity()
	assert.Zero(t, vx)
	assert.Zero(t, vy)
}

func TestTile_Whereami(t *testing.T) {
	tile := NewTile(0, Rect{}, 140, 0, 100)
	row, col := tile.whereami(testBounds, 3)
	assert.Equal(t, 0, row)
	assert.Equal(t, 1, col)

	// the destination wins over the position
	tile.SetDestination(200, 200)
	row, col = tile.whereami(testBounds, 3)
	assert.Equal(t, 2, row)
	assert.Equal(t, 2, col)
}

func TestCellAtClamps(t *testing.T) {
	row, col := cellAt(-5, 1000, testBounds, 3)
	assert.Equal(t, 2, row)
	assert.Equal(t, 0, col)
}
