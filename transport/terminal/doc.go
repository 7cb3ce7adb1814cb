// Package terminal hosts a local puzzle in a terminal using tcell.
//
// The host is an input.Source for the game's buffer: mouse button state from
// tcell is turned into press, move and release events and converted from
// character cells into board units. A clock.Clock ticks the game; keys are
// queued by the poller and applied on the tick so the game is only touched
// from one goroutine.
//
// Keys:
//
//	s start   x stop   n next puzzle   +/- size
//	c blank corner   l labels   q quit
//
// Keys that rebuild the board during a round have to be pressed twice.
package terminal
