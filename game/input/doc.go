// Package input buffers pointer events between the goroutines that produce
// them and the single goroutine that ticks the simulation.
//
// Producers (a window system, a websocket reader, a terminal poller) call the
// Sink methods at any time. Moves overwrite a raw coordinate register; presses
// and releases become queued messages. Once per frame the owner calls
// Buffer.Update, which dispatches the queue in order to the Listener and then
// pulses every coordinate state so that the simulation sees a position that
// is stable for the whole frame.
//
// Mouse and touch are handled with the same message shape. A Detector fixes
// the device on the first press. Touch keeps one coordinate stream per touch
// id and elects a primary; when the primary lifts, the remaining touch with
// the lowest id takes over.
package input
