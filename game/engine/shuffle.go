package engine

import (
	"math/rand/v2"
	"time"
)

// Shuffler randomizes a board while pinning its solvability class.
type Shuffler struct {
	rng *rand.Rand
}

// NewShuffler returns a shuffler drawing from src. A nil src seeds from the clock.
func NewShuffler(src rand.Source) *Shuffler {
	if src == nil {
		seed := uint64(time.Now().UnixNano())
		src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	}
	return &Shuffler{rng: rand.New(src)}
}

// Shuffle permutes b until it matches the solvable class and is not solved.
func (s *Shuffler) Shuffle(b *Board, solvable bool) {
	cells := b.cells
	for {
		s.rng.Shuffle(len(cells), func(i, j int) {
			cells[i], cells[j] = cells[j], cells[i]
		})
		if IsSolvable(cells, b.blankTag) != solvable {
			// one transposition of real tiles flips the class
			a := s.realCell(cells, b.blankTag)
			c := s.realCell(cells, b.blankTag)
			for c == a {
				c = s.realCell(cells, b.blankTag)
			}
			cells[a], cells[c] = cells[c], cells[a]
		}
		if !b.IsSolved() {
			return
		}
	}
}

// realCell picks a random cell not holding the blank.
func (s *Shuffler) realCell(cells []int, blankTag int) int {
	for {
		i := s.rng.IntN(len(cells))
		if cells[i] != blankTag {
			return i
		}
	}
}
