package engine

import (
	"fmt"
	"strings"
	"time"
)

const (
	// Board limits
	MinBoardSize     = 2
	MaxBoardSize     = 9
	DefaultBoardSize = 4

	// Default board geometry in model units
	DefaultBoardLeft   = 20.0
	DefaultBoardTop    = 20.0
	DefaultBoardLength = 480.0

	// Tile glide tuning
	GlideDivisor = 6.0
	SnapEpsilon  = 0.1
	ImpactSpeed  = 3.0

	// Tap classification defaults
	DefaultTapDuration = 300 * time.Millisecond
	DefaultTapDistance = 31.0

	// Frames to keep rendering after a release
	ReleaseRenderLife = 120
)

// Axis is the direction a grabbed tile may travel.
type Axis int

const (
	AxisNone Axis = iota
	AxisHorizontal
	AxisVertical
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return "none"
	}
}

// MarshalText lets Axis appear as a word in JSON payloads.
func (a Axis) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses the word form produced by MarshalText.
func (a *Axis) UnmarshalText(b []byte) error {
	switch string(b) {
	case "horizontal", "h":
		*a = AxisHorizontal
	case "vertical", "v":
		*a = AxisVertical
	case "none", "":
		*a = AxisNone
	default:
		return fmt.Errorf("unknown axis %q", string(b))
	}
	return nil
}

// Corner selects the cell that is empty in the solved arrangement.
type Corner string

const (
	TopLeft     Corner = "top-left"
	TopRight    Corner = "top-right"
	BottomLeft  Corner = "bottom-left"
	BottomRight Corner = "bottom-right"
)

// Corners lists the valid blank corners in cycling order.
var Corners = []Corner{TopLeft, TopRight, BottomLeft, BottomRight}

// ParseCorner accepts the canonical names plus short forms like "br".
func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top-left", "tl", "topleft":
		return TopLeft, nil
	case "top-right", "tr", "topright":
		return TopRight, nil
	case "bottom-left", "bl", "bottomleft":
		return BottomLeft, nil
	case "bottom-right", "br", "bottomright", "":
		return BottomRight, nil
	}
	return "", fmt.Errorf("%w: unknown blank corner %q", ErrInvalidBoard, s)
}

func (c Corner) bottom() bool { return c == BottomLeft || c == BottomRight }
func (c Corner) right() bool { return c == TopRight || c == BottomRight }

// Valid reports whether c names one of the four corners.
func (c Corner) Valid() bool {
	for _, k := range Corners {
		if k == c {
			return true
		}
	}
	return false
}

// LabelMode controls the numbers drawn on tiles.
type LabelMode string

const (
	LabelsNone   LabelMode = "none"
	LabelsPhone  LabelMode = "phone"  // 1 2 3 on the top row
	LabelsKeypad LabelMode = "keypad" // 1 2 3 on the bottom row
)

// Valid reports whether m is a known label mode.
func (m LabelMode) Valid() bool {
	return m == LabelsNone || m == LabelsPhone || m == LabelsKeypad
}

// Rect is an axis-aligned square in model or source-image units.
type Rect struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.Size }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Size }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// PuzzleSet describes a picture and the square region sliced into tiles.
type PuzzleSet struct {
	Name     string  `json:"name,omitempty"`
	Title    string  `json:"title"`
	Image    string  `json:"img"`
	Story    string  `json:"story,omitempty"`
	Left     float64 `json:"left"`
	Top      float64 `json:"top"`
	Size     float64 `json:"size"`
	Solvable bool    `json:"solvable"`
}

// SourceRect returns the picture region of the tile at (row, col) when the
// set is divided into divideBy x divideBy tiles.
func (p PuzzleSet) SourceRect(row, col, divideBy int) Rect {
	d := p.Size / float64(divideBy)
	return Rect{X: p.Left + float64(col)*d, Y: p.Top + float64(row)*d, Size: d}
}

// BoardConfig is everything that forces a full model rebuild when changed.
type BoardConfig struct {
	Size        int           `json:"size"`
	Blank       Corner        `json:"blank"`
	Labels      LabelMode     `json:"labels"`
	Left        float64       `json:"left"`
	Top         float64       `json:"top"`
	Length      float64       `json:"length"`
	TapDuration time.Duration `json:"tap_duration"`
	TapDistance float64       `json:"tap_distance"`
}

// DefaultBoardConfig returns the configuration used when none is given.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Size:        DefaultBoardSize,
		Blank:       BottomRight,
		Labels:      LabelsPhone,
		Left:        DefaultBoardLeft,
		Top:         DefaultBoardTop,
		Length:      DefaultBoardLength,
		TapDuration: DefaultTapDuration,
		TapDistance: DefaultTapDistance,
	}
}

// Bounds returns the board square.
func (c BoardConfig) Bounds() Rect {
	return Rect{X: c.Left, Y: c.Top, Size: c.Length}
}

// TileSize returns the edge of one cell.
func (c BoardConfig) TileSize() float64 {
	return c.Length / float64(c.Size)
}

// Impact is emitted when a gliding tile lands fast enough to be heard.
type Impact struct {
	Tag       int     `json:"tag"`
	Axis      Axis    `json:"axis"`
	Direction int     `json:"direction"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Speed     float64 `json:"speed"`
}

// TileView is the renderer-facing snapshot of one tile.
type TileView struct {
	Tag    int    `json:"tag"`
	Label  string `json:"label,omitempty"`
	Rect   Rect   `json:"rect"`
	Source Rect   `json:"source"`
	Moving bool   `json:"moving,omitempty"`
}

// GameState is a snapshot of everything a renderer or API client needs.
type GameState struct {
	Size       int         `json:"size"`
	Blank      Corner      `json:"blank"`
	BlankTag   int         `json:"blank_tag"`
	Labels     LabelMode   `json:"labels"`
	Cells      []int       `json:"cells"`
	Tiles      []TileView  `json:"tiles"`
	Board      Rect        `json:"board"`
	Solved     bool        `json:"solved"`
	Solvable   bool        `json:"solvable"`
	Playing    bool        `json:"playing"`
	ElapsedMS  int64       `json:"elapsed_ms"`
	Held       int         `json:"held"`
	Axis       Axis        `json:"axis"`
	PuzzleSet  string      `json:"puzzle_set"`
	Moves      int         `json:"moves"`
	Image      string      `json:"img,omitempty"`
	Completion *Completion `json:"completion,omitempty"`
}

// Completion records the last solved round.
type Completion struct {
	ElapsedMS int64 `json:"elapsed_ms"`
	Moves     int   `json:"moves"`
}
