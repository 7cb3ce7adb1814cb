package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPuzzleSet marks a picture descriptor that cannot be sliced.
var ErrInvalidPuzzleSet = errors.New("invalid puzzle set")

// ValidateBoardConfig checks a board configuration before any rebuild.
func ValidateBoardConfig(cfg BoardConfig) error {
	if cfg.Size < MinBoardSize || cfg.Size > MaxBoardSize {
		return fmt.Errorf("board config: %w: size must be between %d and %d, got %d", ErrInvalidBoard, MinBoardSize, MaxBoardSize, cfg.Size)
	}
	if !cfg.Blank.Valid() {
		return fmt.Errorf("board config: %w: unknown blank corner %q", ErrInvalidBoard, cfg.Blank)
	}
	if !cfg.Labels.Valid() {
		return fmt.Errorf("board config: %w: unknown label mode %q", ErrInvalidBoard, cfg.Labels)
	}
	if cfg.Length <= 0 {
		return fmt.Errorf("board config: %w: length must be positive, got %g", ErrInvalidBoard, cfg.Length)
	}
	if cfg.TapDuration < 0 {
		return fmt.Errorf("board config: %w: tap duration cannot be negative", ErrInvalidBoard)
	}
	if cfg.TapDistance < 0 {
		return fmt.Errorf("board config: %w: tap distance cannot be negative", ErrInvalidBoard)
	}
	return nil
}

// WithDefaults fills zero fields that have an obvious default. Size is
// left alone so that a missing size still fails validation.
func (c BoardConfig) WithDefaults() BoardConfig {
	d := DefaultBoardConfig()
	if c.Blank == "" {
		c.Blank = d.Blank
	}
	if c.Labels == "" {
		c.Labels = d.Labels
	}
	if c.Length == 0 {
		c.Left, c.Top, c.Length = d.Left, d.Top, d.Length
	}
	if c.TapDuration == 0 {
		c.TapDuration = d.TapDuration
	}
	if c.TapDistance == 0 {
		c.TapDistance = d.TapDistance
	}
	return c
}

// ValidatePuzzleSet checks a picture descriptor.
func ValidatePuzzleSet(set PuzzleSet) error {
	if strings.TrimSpace(set.Title) == "" {
		return fmt.Errorf("puzzle set: %w: title is required", ErrInvalidPuzzleSet)
	}
	if strings.TrimSpace(set.Image) == "" {
		return fmt.Errorf("puzzle set: %w: img is required", ErrInvalidPuzzleSet)
	}
	if set.Size <= 0 {
		return fmt.Errorf("puzzle set: %w: size must be positive, got %g", ErrInvalidPuzzleSet, set.Size)
	}
	if set.Left < 0 || set.Top < 0 {
		return fmt.Errorf("puzzle set: %w: left and top cannot be negative", ErrInvalidPuzzleSet)
	}
	return nil
}

// DefaultPuzzleSet is used when no catalog is available.
func DefaultPuzzleSet() PuzzleSet {
	return PuzzleSet{
		Name:     "classic",
		Title:    "Classic",
		Image:    "classic.png",
		Story:    "Slide the tiles back into order.",
		Left:     0,
		Top:      0,
		Size:     DefaultBoardLength,
		Solvable: true,
	}
}

// ParsePuzzleSet decodes and validates a descriptor. name fills an empty
// Name field.
func ParsePuzzleSet(data []byte, name string) (*PuzzleSet, error) {
	var set PuzzleSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse puzzle set '%s': %w", name, err)
	}
	if set.Name == "" {
		set.Name = name
	}
	if err := ValidatePuzzleSet(set); err != nil {
		return nil, fmt.Errorf("invalid puzzle set '%s': %w", name, err)
	}
	return &set, nil
}

// LoadPuzzleSet reads a descriptor from a JSON file. The file name without
// extension becomes the set's name when it has none.
func LoadPuzzleSet(path string) (*PuzzleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read puzzle set file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParsePuzzleSet(data, name)
}

// LoadPuzzleSetByName looks for <name>.json in the usual config directories.
func LoadPuzzleSetByName(name string) (*PuzzleSet, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	for _, dir := range []string{"configs", "../configs", "../../configs"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadPuzzleSet(path)
		}
	}
	return nil, fmt.Errorf("puzzle set '%s' not found", strings.TrimSuffix(name, ".json"))
}
