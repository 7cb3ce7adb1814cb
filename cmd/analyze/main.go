// Command analyze prints quick, human-readable statistics about the puzzle
// sets in a config directory. For each set and board size it reports the
// tile edge in source pixels and samples the shuffler: how often the shuffled
// board lands in the set's solvability class, and how scrambled it is
// (inversions and total Manhattan distance of the tiles from home).
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/mcp-training/slidepuzzle/game/config"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

// SizeStats summarizes the shuffles sampled for one board size.
type SizeStats struct {
	Size          int
	TileEdge      float64
	Samples       int
	ClassMatches  int
	MeanInversion float64
	MeanDistance  float64
	MeanMisplaced float64
	MinDistance   int
	MaxDistance   int
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "Print shuffle statistics for puzzle sets",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing puzzle sets"},
			&cli.IntFlag{Name: "samples", Value: 1000, Usage: "Shuffles per board size"},
			&cli.IntFlag{Name: "min-size", Value: 3, Usage: "Smallest board size"},
			&cli.IntFlag{Name: "max-size", Value: 5, Usage: "Largest board size"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Random seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), cmd.Int("samples"),
				cmd.Int("min-size"), cmd.Int("max-size"), uint64(cmd.Int("seed")))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, dir string, samples, minSize, maxSize int, seed uint64) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}
	infos, err := manager.ListConfigs()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		return fmt.Errorf("no puzzle sets in %s", dir)
	}

	minSize = max(minSize, engine.MinBoardSize)
	maxSize = min(maxSize, engine.MaxBoardSize)

	shuffler := engine.NewShuffler(rand.NewPCG(seed, seed+1))
	for _, info := range infos {
		set, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			fmt.Fprintf(w, "\n=== %s ===\nError loading: %v\n", info.Filename, err)
			continue
		}

		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", info.Filename)
		fmt.Fprintf(w, "Title: %s\n", set.Title)
		fmt.Fprintf(w, "Picture: %s, crop %.0f,%.0f size %.0f\n", set.Image, set.Left, set.Top, set.Size)
		fmt.Fprintf(w, "Solvable: %v\n", set.Solvable)

		for size := minSize; size <= maxSize; size++ {
			stats, err := analyzeSize(shuffler, set, size, samples)
			if err != nil {
				return err
			}
			printStats(w, stats)
		}
	}
	return nil
}

// analyzeSize shuffles a size x size board samples times in the set's class.
func analyzeSize(s *engine.Shuffler, set *engine.PuzzleSet, size, samples int) (SizeStats, error) {
	stats := SizeStats{
		Size:        size,
		TileEdge:    set.Size / float64(size),
		Samples:     samples,
		MinDistance: -1,
	}

	board, err := engine.NewBoard(size, engine.BottomRight)
	if err != nil {
		return stats, err
	}

	var inversions, distance, misplaced int
	for i := 0; i < samples; i++ {
		s.Shuffle(board, set.Solvable)
		cells := board.Cells()

		if engine.IsSolvable(cells, board.BlankTag()) == set.Solvable {
			stats.ClassMatches++
		}
		inversions += engine.Inversions(cells, board.BlankTag())

		misplaced += engine.MisplacedTiles(cells, board.BlankTag())
		d := engine.ManhattanDistance(cells, board.BlankTag())
		distance += d
		if stats.MinDistance < 0 || d < stats.MinDistance {
			stats.MinDistance = d
		}
		stats.MaxDistance = max(stats.MaxDistance, d)
	}

	if samples > 0 {
		stats.MeanInversion = float64(inversions) / float64(samples)
		stats.MeanDistance = float64(distance) / float64(samples)
		stats.MeanMisplaced = float64(misplaced) / float64(samples)
	}
	return stats, nil
}

func printStats(w io.Writer, s SizeStats) {
	fmt.Fprintf(w, "  %dx%d: tile %.1fpx", s.Size, s.Size, s.TileEdge)
	if s.Samples == 0 {
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, ", inversions %.1f, misplaced %.1f, distance %.1f (min %d, max %d)\n",
		s.MeanInversion, s.MeanMisplaced, s.MeanDistance, s.MinDistance, s.MaxDistance)
	if s.ClassMatches != s.Samples {
		fmt.Fprintf(w, "  ⚠️  WARNING: %d/%d shuffles left the solvability class\n", s.Samples-s.ClassMatches, s.Samples)
	}
}
