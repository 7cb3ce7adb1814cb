package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer(t *testing.T) {
	var tm Timer
	assert.Zero(t, tm.Elapsed())

	tm.Start(time.Second)
	tm.Update(3 * time.Second)
	assert.True(t, tm.Running())
	assert.Equal(t, 2*time.Second, tm.Elapsed())

	tm.End(4 * time.Second)
	assert.False(t, tm.Running())
	assert.Equal(t, 3*time.Second, tm.Elapsed())

	// ended timers ignore updates and further ends
	tm.Update(10 * time.Second)
	tm.End(10 * time.Second)
	assert.Equal(t, 3*time.Second, tm.Elapsed())

	tm.Reset()
	assert.Zero(t, tm.Elapsed())
}
