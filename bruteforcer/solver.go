package main

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrBudgetExceeded is returned when the search expands more nodes than
// allowed without reaching the goal.
var ErrBudgetExceeded = errors.New("search budget exceeded")

// Solver searches for a sequence of taps that solves a board. Each tap
// slides one tile next to the gap into it, so the answer is a list of the
// cells to tap in order.
type Solver struct {
	size     int
	blankTag byte

	// Weight scales the heuristic. 1 is plain A* and finds a shortest
	// solution; larger values trade length for speed.
	Weight float64

	// MaxNodes bounds the number of expanded states.
	MaxNodes int

	// Expanded is the number of states expanded by the last Solve.
	Expanded int
}

// NewSolver returns a solver for size x size boards whose blank tile has
// tag blankTag.
func NewSolver(size, blankTag int) *Solver {
	return &Solver{
		size:     size,
		blankTag: byte(blankTag),
		Weight:   1,
		MaxNodes: 2_000_000,
	}
}

type node struct {
	cells  []byte
	blank  int
	g      int
	f      float64
	parent *node
	tapped int // cell tapped to reach this node, -1 at the root
	index  int
}

type frontier []*node

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f == q[j].f {
		return q[i].g > q[j].g
	}
	return q[i].f < q[j].f
}
func (q frontier) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *frontier) Push(x any) {
	n := x.(*node)
	n.index = len(*q)
	*q = append(*q, n)
}
func (q *frontier) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}

// Solve returns the cells to tap, in order, to turn cells into the solved
// arrangement.
func (s *Solver) Solve(cells []int) ([]int, error) {
	n := s.size
	if len(cells) != n*n {
		return nil, fmt.Errorf("expected %d cells, got %d", n*n, len(cells))
	}

	start := make([]byte, len(cells))
	blank := -1
	for i, tag := range cells {
		if tag < 0 || tag >= len(cells) {
			return nil, fmt.Errorf("tag %d out of range", tag)
		}
		start[i] = byte(tag)
		if byte(tag) == s.blankTag {
			blank = i
		}
	}
	if blank < 0 {
		return nil, fmt.Errorf("blank tag %d not on the board", s.blankTag)
	}
	if !Solvable(cells, n, int(s.blankTag)) {
		return nil, errors.New("board is not solvable")
	}

	s.Expanded = 0
	root := &node{cells: start, blank: blank, tapped: -1}
	root.f = s.Weight * float64(s.heuristic(start))

	open := &frontier{root}
	best := map[string]int{string(start): 0}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*node)
		if g, ok := best[string(cur.cells)]; ok && g < cur.g {
			continue
		}
		if s.solved(cur.cells) {
			return path(cur), nil
		}

		s.Expanded++
		if s.MaxNodes > 0 && s.Expanded > s.MaxNodes {
			return nil, fmt.Errorf("%w after %d nodes", ErrBudgetExceeded, s.MaxNodes)
		}

		for _, next := range s.neighbours(cur.blank) {
			if cur.parent != nil && next == cur.parent.blank {
				continue
			}
			cells := make([]byte, len(cur.cells))
			copy(cells, cur.cells)
			cells[cur.blank], cells[next] = cells[next], cells[cur.blank]

			key := string(cells)
			g := cur.g + 1
			if old, ok := best[key]; ok && old <= g {
				continue
			}
			best[key] = g

			heap.Push(open, &node{
				cells:  cells,
				blank:  next,
				g:      g,
				f:      float64(g) + s.Weight*float64(s.heuristic(cells)),
				parent: cur,
				tapped: next,
			})
		}
	}
	return nil, errors.New("no solution found")
}

func path(n *node) []int {
	var taps []int
	for ; n.parent != nil; n = n.parent {
		taps = append(taps, n.tapped)
	}
	for i, j := 0, len(taps)-1; i < j; i, j = i+1, j-1 {
		taps[i], taps[j] = taps[j], taps[i]
	}
	return taps
}

func (s *Solver) solved(cells []byte) bool {
	for i, tag := range cells {
		if int(tag) != i {
			return false
		}
	}
	return true
}

// neighbours lists the cells orthogonally next to i.
func (s *Solver) neighbours(i int) []int {
	n := s.size
	row, col := i/n, i%n
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, i-n)
	}
	if row < n-1 {
		out = append(out, i+n)
	}
	if col > 0 {
		out = append(out, i-1)
	}
	if col < n-1 {
		out = append(out, i+1)
	}
	return out
}

// heuristic is Manhattan distance plus linear conflict. Both ignore the
// blank and never overestimate.
func (s *Solver) heuristic(cells []byte) int {
	n := s.size
	h := 0
	for i, tag := range cells {
		if tag == s.blankTag {
			continue
		}
		h += abs(i/n-int(tag)/n) + abs(i%n-int(tag)%n)
	}
	return h + s.linearConflict(cells)
}

// linearConflict adds two moves for every tile that has to leave its goal
// line to let another tile in the same line pass. The number of such tiles
// is the line length minus its longest increasing run of goal positions.
func (s *Solver) linearConflict(cells []byte) int {
	n := s.size
	extra := 0
	goals := make([]int, 0, n)
	for line := 0; line < n; line++ {
		goals = goals[:0]
		for col := 0; col < n; col++ {
			tag := cells[line*n+col]
			if tag != s.blankTag && int(tag)/n == line {
				goals = append(goals, int(tag)%n)
			}
		}
		extra += 2 * (len(goals) - longestIncreasing(goals))

		goals = goals[:0]
		for row := 0; row < n; row++ {
			tag := cells[row*n+line]
			if tag != s.blankTag && int(tag)%n == line {
				goals = append(goals, int(tag)/n)
			}
		}
		extra += 2 * (len(goals) - longestIncreasing(goals))
	}
	return extra
}

func longestIncreasing(xs []int) int {
	var tails []int
	for _, x := range xs {
		i := 0
		for i < len(tails) && tails[i] < x {
			i++
		}
		if i == len(tails) {
			tails = append(tails, x)
		} else {
			tails[i] = x
		}
	}
	return len(tails)
}

// Solvable applies the parity rule: the permutation parity must match the
// parity of the blank's taxicab distance from its home cell.
func Solvable(cells []int, size, blankTag int) bool {
	inversions := 0
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			if cells[i] > cells[j] {
				inversions++
			}
		}
	}
	blank := -1
	for i, tag := range cells {
		if tag == blankTag {
			blank = i
		}
	}
	if blank < 0 {
		return false
	}
	dist := abs(blank/size-blankTag/size) + abs(blank%size-blankTag%size)
	return inversions%2 == dist%2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
