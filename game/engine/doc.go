// Package engine simulates an N×N sliding picture puzzle.
//
// The engine keeps two views of the board in step. Board is the permutation
// model: cells[row*size+col] is the tag of the tile in that cell, and one tag
// is the blank. Tile is the view: a square with a position, a velocity and an
// optional glide destination. A tap changes the model first and lets the
// tiles glide after it; a drag moves the tiles first and commits whatever
// arrangement they end up in.
//
// Core Types:
//
// Game implements Engine and input.Listener. Grab is the state of one drag,
// AxisView hides whether the drag is horizontal or vertical, Shuffler
// scrambles a board without changing its solvability class and Timer measures
// a round. Loop binds a Game to the input.Buffer that feeds it.
//
// Usage:
//
//	g, err := engine.NewGame(engine.DefaultBoardConfig(), engine.DefaultPuzzleSet(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	loop := engine.NewLoop(g)
//	g.Start(0)
//
//	// producers feed loop.Input from any goroutine
//	loop.Input.MouseDown(0, 100, 100, 0)
//
//	// the owner ticks once per frame
//	loop.Update(16 * time.Millisecond)
//	state := g.State()
//
// Solvability:
//
// A board is solvable when inversions (ignoring the blank) plus, on even
// sizes, the blank's row plus one is even. Tap and drag only ever rotate a
// line toward the blank, so play never changes the class a shuffle picked.
package engine
