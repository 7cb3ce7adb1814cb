package main

import (
	"errors"
	"testing"
)

// apply replays taps on cells the way the server does for adjacent tiles.
func apply(t *testing.T, cells []int, size, blankTag int, taps []int) []int {
	t.Helper()
	out := append([]int(nil), cells...)
	for _, tap := range taps {
		blank := -1
		for i, tag := range out {
			if tag == blankTag {
				blank = i
			}
		}
		d := abs(tap/size-blank/size) + abs(tap%size-blank%size)
		if d != 1 {
			t.Fatalf("tap %d is not next to the blank at %d", tap, blank)
		}
		out[tap], out[blank] = out[blank], out[tap]
	}
	return out
}

func isIdentity(cells []int) bool {
	for i, tag := range cells {
		if tag != i {
			return false
		}
	}
	return true
}

func TestSolver_AlreadySolved(t *testing.T) {
	s := NewSolver(3, 8)
	taps, err := s.Solve([]int{0, 1, 2, 3, 4, 5, 6, 7, 8})
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(taps) != 0 {
		t.Errorf("Expected no taps, got %v", taps)
	}
}

func TestSolver_OneMove(t *testing.T) {
	s := NewSolver(3, 8)
	cells := []int{0, 1, 2, 3, 4, 5, 6, 8, 7}
	taps, err := s.Solve(cells)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(taps) != 1 || taps[0] != 8 {
		t.Errorf("Expected a single tap on cell 8, got %v", taps)
	}
}

func TestSolver_Optimal3x3(t *testing.T) {
	// Known 3x3 position 20 moves from solved with the blank at bottom-right.
	cells := []int{7, 2, 4, 5, 8, 6, 3, 1, 0}
	if !Solvable(cells, 3, 8) {
		cells[0], cells[1] = cells[1], cells[0]
	}

	s := NewSolver(3, 8)
	taps, err := s.Solve(cells)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if got := apply(t, cells, 3, 8, taps); !isIdentity(got) {
		t.Errorf("Taps %v leave %v", taps, got)
	}
}

func TestSolver_OtherCorner(t *testing.T) {
	// blank at top-left: tag 0
	cells := []int{1, 0, 2, 3}
	s := NewSolver(2, 0)
	taps, err := s.Solve(cells)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if got := apply(t, cells, 2, 0, taps); !isIdentity(got) {
		t.Errorf("Taps %v leave %v", taps, got)
	}
}

func TestSolver_WeightedFourByFour(t *testing.T) {
	cells := []int{
		1, 2, 3, 7,
		0, 5, 6, 11,
		4, 9, 10, 15,
		8, 12, 13, 14,
	}
	if !Solvable(cells, 4, 15) {
		t.Fatal("fixture should be solvable")
	}

	s := NewSolver(4, 15)
	s.Weight = 2
	taps, err := s.Solve(cells)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if got := apply(t, cells, 4, 15, taps); !isIdentity(got) {
		t.Errorf("Taps %v leave %v", taps, got)
	}
}

func TestSolver_Unsolvable(t *testing.T) {
	s := NewSolver(3, 8)
	_, err := s.Solve([]int{1, 0, 2, 3, 4, 5, 6, 7, 8})
	if err == nil {
		t.Error("Expected error for unsolvable board")
	}
}

func TestSolver_Budget(t *testing.T) {
	cells := []int{8, 7, 6, 5, 4, 3, 2, 1, 0}
	if !Solvable(cells, 3, 8) {
		cells[0], cells[1] = cells[1], cells[0]
	}
	s := NewSolver(3, 8)
	s.MaxNodes = 5

	_, err := s.Solve(cells)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Errorf("Expected budget error, got %v", err)
	}
}

func TestHeuristic_LinearConflict(t *testing.T) {
	s := NewSolver(3, 8)

	// tiles 0 and 1 swapped in their own row: Manhattan 2, conflict 2
	if h := s.heuristic([]byte{1, 0, 2, 3, 4, 5, 6, 7, 8}); h != 4 {
		t.Errorf("Expected heuristic 4, got %d", h)
	}
	if h := s.heuristic([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8}); h != 0 {
		t.Errorf("Expected heuristic 0 on solved board, got %d", h)
	}
}

func TestSolvable(t *testing.T) {
	if !Solvable([]int{0, 1, 2, 3, 4, 5, 6, 7, 8}, 3, 8) {
		t.Error("identity should be solvable")
	}
	if Solvable([]int{1, 0, 2, 3, 4, 5, 6, 7, 8}, 3, 8) {
		t.Error("one swap should not be solvable")
	}
	if !Solvable([]int{0, 1, 2, 3, 4, 5, 6, 8, 7}, 3, 8) {
		t.Error("one slide away should be solvable")
	}
}
