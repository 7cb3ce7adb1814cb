package engine

import "fmt"

// CanSlide reports whether the tile at (row, col) shares exactly one of its
// row and column with the blank.
func (b *Board) CanSlide(row, col int) bool {
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return false
	}
	br, bc := b.BlankRowCol()
	return (br == row) != (bc == col)
}

// Slide moves the blank to (row, col), shifting every tile between them one
// cell toward where the blank was. It returns the axis of the slide.
func (b *Board) Slide(row, col int) (Axis, error) {
	if !b.CanSlide(row, col) {
		return AxisNone, fmt.Errorf("%w: cell (%d,%d) is not in line with the blank", ErrInvalidBoard, row, col)
	}
	br, _ := b.BlankRowCol()
	axis, line, at := AxisVertical, col, row
	if row == br {
		axis, line, at = AxisHorizontal, row, col
	}
	tags := b.Line(axis, line)
	moveElement(tags, indexOf(tags, b.blankTag), at)
	b.setLine(axis, line, tags)
	return axis, nil
}

// SlideMoves lists every cell that can be slid right now.
func (b *Board) SlideMoves() [][2]int {
	br, bc := b.BlankRowCol()
	moves := make([][2]int, 0, 2*(b.size-1))
	for c := 0; c < b.size; c++ {
		if c != bc {
			moves = append(moves, [2]int{br, c})
		}
	}
	for r := 0; r < b.size; r++ {
		if r != br {
			moves = append(moves, [2]int{r, bc})
		}
	}
	return moves
}

// moveElement moves s[from] to index to, shifting the elements between.
func moveElement(s []int, from, to int) {
	if from == to {
		return
	}
	x := s[from]
	if from < to {
		copy(s[from:to], s[from+1:to+1])
	} else {
		copy(s[to+1:from+1], s[to:from])
	}
	s[to] = x
}

func indexOf(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
