package engine

// ManhattanDistance sums how far every non-blank tile is from its home cell.
func ManhattanDistance(cells []int, blankTag int) int {
	size := isqrt(len(cells))
	total := 0
	for i, tag := range cells {
		if tag == blankTag {
			continue
		}
		total += abs(i/size-tag/size) + abs(i%size-tag%size)
	}
	return total
}

// MisplacedTiles counts non-blank tiles away from home.
func MisplacedTiles(cells []int, blankTag int) int {
	n := 0
	for i, tag := range cells {
		if tag != blankTag && tag != i {
			n++
		}
	}
	return n
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
