package main

import (
	"bytes"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
)

func TestAnalyzeSize(t *testing.T) {
	s := engine.NewShuffler(rand.NewPCG(3, 4))

	for _, solvable := range []bool{true, false} {
		set := &engine.PuzzleSet{Title: "T", Image: "t.png", Size: 480, Solvable: solvable}
		stats, err := analyzeSize(s, set, 4, 200)
		if err != nil {
			t.Fatalf("analyzeSize failed: %v", err)
		}
		if stats.ClassMatches != 200 {
			t.Errorf("solvable=%v: expected every shuffle in class, got %d/200", solvable, stats.ClassMatches)
		}
		if stats.TileEdge != 120 {
			t.Errorf("Expected tile edge 120, got %g", stats.TileEdge)
		}
		if stats.MinDistance < 1 {
			t.Errorf("Expected no solved shuffles, min distance %d", stats.MinDistance)
		}
		if stats.MeanMisplaced <= 0 || stats.MeanMisplaced > 15 {
			t.Errorf("Mean misplaced %g out of range", stats.MeanMisplaced)
		}
		if stats.MeanDistance < float64(stats.MinDistance) || stats.MeanDistance > float64(stats.MaxDistance) {
			t.Errorf("Mean %g outside [%d, %d]", stats.MeanDistance, stats.MinDistance, stats.MaxDistance)
		}
	}
}

func TestAnalyzeSize_InvalidSize(t *testing.T) {
	s := engine.NewShuffler(rand.NewPCG(1, 1))
	set := &engine.PuzzleSet{Title: "T", Image: "t.png", Size: 100, Solvable: true}
	if _, err := analyzeSize(s, set, 1, 10); err == nil {
		t.Error("Expected error for size 1")
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	sets := map[string]string{
		"classic.json": `{"title": "Classic", "img": "classic.png", "size": 480, "solvable": true}`,
		"screw.json":   `{"title": "Screw", "img": "screw.png", "size": 512, "solvable": false}`,
		"broken.json":  `{"title": "Broken"`,
	}
	for name, content := range sets {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	var out bytes.Buffer
	if err := run(&out, dir, 50, 2, 3, 42); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	report := out.String()
	for _, want := range []string{"Analyzing classic.json", "Analyzing screw.json", "2x2: tile 240.0px", "3x3: tile 160.0px"} {
		if !strings.Contains(report, want) {
			t.Errorf("Expected report to contain %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "broken.json") {
		t.Error("Expected unparsable set to be skipped")
	}
	if strings.Contains(report, "WARNING") {
		t.Errorf("Expected every shuffle to stay in class:\n%s", report)
	}
}

func TestRun_MissingDir(t *testing.T) {
	var out bytes.Buffer
	if err := run(&out, filepath.Join(t.TempDir(), "missing"), 10, 3, 3, 1); err == nil {
		t.Error("Expected error for missing config directory")
	}
}
