package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"
)

type GameState struct {
	Size      int    `json:"size"`
	BlankTag  int    `json:"blank_tag"`
	Cells     []int  `json:"cells"`
	Solved    bool   `json:"solved"`
	Solvable  bool   `json:"solvable"`
	Playing   bool   `json:"playing"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Moves     int    `json:"moves"`
	PuzzleSet string `json:"puzzle_set"`
}

type SessionResponse struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

type CreateRequest struct {
	PuzzleSet string `json:"puzzle_set,omitempty"`
	Size      int    `json:"size,omitempty"`
	Blank     string `json:"blank,omitempty"`
}

type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) sessionURL(suffix string) string {
	return fmt.Sprintf("%s/api/sessions/%s%s", c.baseURL, url.PathEscape(c.sessionID), suffix)
}

// post sends body as JSON and decodes the reply into out.
func (c *Client) post(u string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	resp, err := c.client.Post(u, "application/json", reader)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s - %s", resp.Status, bytes.TrimSpace(data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *Client) CreateSession(req CreateRequest) (*GameState, error) {
	var session SessionResponse
	if err := c.post(c.baseURL+"/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.GameState, nil
}

func (c *Client) GetState() (*GameState, error) {
	resp, err := c.client.Get(c.sessionURL("/state"))
	if err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get state: %s", resp.Status)
	}

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	return &state, nil
}

type RoundResponse struct {
	Message string     `json:"message"`
	State   *GameState `json:"state"`
}

// Start shuffles the board and starts a timed round.
func (c *Client) Start() (*GameState, error) {
	var resp RoundResponse
	if err := c.post(c.sessionURL("/start"), nil, &resp); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}
	return resp.State, nil
}

type MoveResponse struct {
	Success   bool       `json:"success"`
	Changed   bool       `json:"changed"`
	GameState *GameState `json:"game_state"`
	Message   string     `json:"message"`
}

func (c *Client) Tap(row, col int) (*GameState, error) {
	var resp MoveResponse
	if err := c.post(c.sessionURL("/tap"), map[string]int{"row": row, "col": col}, &resp); err != nil {
		return nil, fmt.Errorf("tap (%d,%d): %w", row, col, err)
	}
	if !resp.Success || !resp.Changed {
		return resp.GameState, fmt.Errorf("tap (%d,%d) did not move: %s", row, col, resp.Message)
	}
	return resp.GameState, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	puzzleSet := flag.String("puzzle", "", "Puzzle set for a new session")
	size := flag.Int("size", 3, "Board size for a new session")
	blank := flag.String("blank", "", "Blank corner for a new session")
	continueSession := flag.String("continue", "", "Solve an existing session by ID instead of creating one")
	noStart := flag.Bool("no-start", false, "Solve the board as it is instead of starting a new round")
	weight := flag.Float64("weight", 0, "Heuristic weight (0 = 1 for 3x3 and smaller, 2 otherwise)")
	maxNodes := flag.Int("max-nodes", 2_000_000, "Maximum states to expand")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between taps in milliseconds (0 = no delay)")
	flag.Parse()

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	var state *GameState
	var err error

	if *continueSession != "" {
		client.sessionID = *continueSession
		log.Printf("🔄 Using session: %s", client.sessionID)
	} else {
		if _, err := client.CreateSession(CreateRequest{PuzzleSet: *puzzleSet, Size: *size, Blank: *blank}); err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
		log.Printf("✨ Session created: %s", client.sessionID)
	}

	if *noStart {
		state, err = client.GetState()
	} else {
		state, err = client.Start()
	}
	if err != nil {
		log.Fatalf("Failed to get board: %v", err)
	}

	log.Printf("Board %dx%d, puzzle %s, cells %v", state.Size, state.Size, state.PuzzleSet, state.Cells)
	if state.Solved {
		log.Printf("Board is already solved")
		return
	}
	if !state.Solvable {
		log.Printf("❌ Board is in the unsolvable class, nothing to search")
		os.Exit(1)
	}

	solver := NewSolver(state.Size, state.BlankTag)
	solver.MaxNodes = *maxNodes
	solver.Weight = *weight
	if solver.Weight <= 0 {
		solver.Weight = 1
		if state.Size > 3 {
			solver.Weight = 2
		}
	}

	began := time.Now()
	taps, err := solver.Solve(state.Cells)
	if err != nil {
		log.Fatalf("❌ Search failed: %v (expanded %d)", err, solver.Expanded)
	}
	log.Printf("Found %d taps in %s (expanded %d states, weight %.1f)",
		len(taps), time.Since(began).Round(time.Millisecond), solver.Expanded, solver.Weight)

	for i, cell := range taps {
		row, col := cell/state.Size, cell%state.Size
		if *verbose {
			log.Printf("Tap %d/%d: (%d,%d)", i+1, len(taps), row, col)
		}

		next, err := client.Tap(row, col)
		if err != nil {
			log.Fatalf("Tap %d failed: %v", i+1, err)
		}
		state = next

		if *delayMs > 0 {
			time.Sleep(time.Duration(*delayMs) * time.Millisecond)
		}
	}

	if !state.Solved {
		log.Printf("\n❌ Replayed every tap but the board is not solved: %v", state.Cells)
		os.Exit(1)
	}
	log.Printf("\n🎉 SOLVED in %d moves, %s", state.Moves, time.Duration(state.ElapsedMS)*time.Millisecond)
	log.Printf("Session: %s", client.sessionID)
}
