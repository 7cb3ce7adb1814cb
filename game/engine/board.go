package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBoard       = errors.New("invalid board")
	ErrInvalidPermutation = errors.New("invalid permutation")
)

// Board is the permutation model: cells[row*size+col] holds the tag of the
// tile sitting in that cell. The blank is just another tag.
type Board struct {
	size     int
	blankTag int
	cells    []int
}

// BlankTagFor returns the tag that is empty for the given size and corner.
func BlankTagFor(size int, corner Corner) int {
	tag := 0
	if corner.bottom() {
		tag += size * (size - 1)
	}
	if corner.right() {
		tag += size - 1
	}
	return tag
}

// NewBoard returns a solved board.
func NewBoard(size int, corner Corner) (*Board, error) {
	if size < MinBoardSize || size > MaxBoardSize {
		return nil, fmt.Errorf("%w: size must be between %d and %d, got %d", ErrInvalidBoard, MinBoardSize, MaxBoardSize, size)
	}
	if !corner.Valid() {
		return nil, fmt.Errorf("%w: unknown blank corner %q", ErrInvalidBoard, corner)
	}
	b := &Board{
		size:     size,
		blankTag: BlankTagFor(size, corner),
		cells:    make([]int, size*size),
	}
	b.Reset()
	return b, nil
}

// Reset puts every tile back to its home cell.
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = i
	}
}

func (b *Board) Size() int { return b.size }
func (b *Board) BlankTag() int { return b.blankTag }
func (b *Board) Len() int { return len(b.cells) }

// Cells returns a copy of the permutation.
func (b *Board) Cells() []int {
	out := make([]int, len(b.cells))
	copy(out, b.cells)
	return out
}

// SetCells replaces the permutation after checking it.
func (b *Board) SetCells(cells []int) error {
	if err := ValidatePermutation(cells, b.size); err != nil {
		return err
	}
	copy(b.cells, cells)
	return nil
}

// At returns the tag at (row, col).
func (b *Board) At(row, col int) int {
	return b.cells[row*b.size+col]
}

// IndexOf returns the flattened cell holding tag, or -1.
func (b *Board) IndexOf(tag int) int {
	for i, v := range b.cells {
		if v == tag {
			return i
		}
	}
	return -1
}

// BlankRowCol returns the current cell of the blank.
func (b *Board) BlankRowCol() (int, int) {
	i := b.IndexOf(b.blankTag)
	return i / b.size, i % b.size
}

// IsSolved reports whether every tag sits in its home cell.
func (b *Board) IsSolved() bool {
	for i, v := range b.cells {
		if v != i {
			return false
		}
	}
	return true
}

// IsSolvable reports whether the current arrangement can reach the solved one.
func (b *Board) IsSolvable() bool {
	return IsSolvable(b.cells, b.blankTag)
}

// lineStart returns the first flattened index and stride of row or column
// index along axis.
func (b *Board) lineStart(axis Axis, index int) (start, step int) {
	if axis == AxisHorizontal {
		return index * b.size, 1
	}
	return index, b.size
}

// Line returns the tags of one row (horizontal) or column (vertical).
func (b *Board) Line(axis Axis, index int) []int {
	start, step := b.lineStart(axis, index)
	out := make([]int, b.size)
	for i := range out {
		out[i] = b.cells[start+step*i]
	}
	return out
}

// setLine writes tags back into a row or column.
func (b *Board) setLine(axis Axis, index int, tags []int) {
	start, step := b.lineStart(axis, index)
	for i, tag := range tags {
		b.cells[start+step*i] = tag
	}
}

// Inversions counts pairs i<j with cells[i] > cells[j], ignoring the blank.
func Inversions(cells []int, blankTag int) int {
	n := 0
	for i := 0; i < len(cells); i++ {
		if cells[i] == blankTag {
			continue
		}
		for j := i + 1; j < len(cells); j++ {
			if cells[j] == blankTag {
				continue
			}
			if cells[i] > cells[j] {
				n++
			}
		}
	}
	return n
}

// IsSolvable applies the sliding puzzle parity law to a square permutation.
// On even boards the blank's row distance from its home row counts too;
// for a bottom-corner blank that is blankRow+1 modulo 2.
func IsSolvable(cells []int, blankTag int) bool {
	size := isqrt(len(cells))
	blankRow := 0
	for i, v := range cells {
		if v == blankTag {
			blankRow = i / size
			break
		}
	}
	parity := Inversions(cells, blankTag)
	if size%2 == 0 {
		parity += blankRow + blankTag/size
	}
	return parity%2 == 0
}

// ValidatePermutation checks that cells holds each of 0..size*size-1 once.
func ValidatePermutation(cells []int, size int) error {
	if len(cells) != size*size {
		return fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidPermutation, size*size, len(cells))
	}
	seen := make([]bool, len(cells))
	for i, v := range cells {
		if v < 0 || v >= len(cells) {
			return fmt.Errorf("%w: cell %d holds out-of-range tag %d", ErrInvalidPermutation, i, v)
		}
		if seen[v] {
			return fmt.Errorf("%w: tag %d appears twice", ErrInvalidPermutation, v)
		}
		seen[v] = true
	}
	return nil
}

func isqrt(n int) int {
	r := 0
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
