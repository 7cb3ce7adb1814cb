package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	screenWidth  = 520
	screenHeight = 600
	statusTop    = 520
	tileGap      = 2
	bannerTime   = 3 * time.Second
)

var (
	backgroundColor = color.RGBA{24, 24, 32, 255}
	boardColor      = color.RGBA{40, 40, 52, 255}
	heldColor       = color.RGBA{255, 255, 255, 255}
)

// Rect mirrors the server's model rect.
type Rect struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

type TileView struct {
	Tag    int    `json:"tag"`
	Label  string `json:"label,omitempty"`
	Rect   Rect   `json:"rect"`
	Moving bool   `json:"moving,omitempty"`
}

type Completion struct {
	ElapsedMS int64 `json:"elapsed_ms"`
	Moves     int   `json:"moves"`
}

type GameState struct {
	Size       int         `json:"size"`
	Blank      string      `json:"blank"`
	Tiles      []TileView  `json:"tiles"`
	Board      Rect        `json:"board"`
	Solved     bool        `json:"solved"`
	Solvable   bool        `json:"solvable"`
	Playing    bool        `json:"playing"`
	ElapsedMS  int64       `json:"elapsed_ms"`
	Held       int         `json:"held"`
	PuzzleSet  string      `json:"puzzle_set"`
	Moves      int         `json:"moves"`
	Completion *Completion `json:"completion,omitempty"`
}

type Impact struct {
	Tag   int     `json:"tag"`
	Speed float64 `json:"speed"`
}

type EventData struct {
	Type       string      `json:"type"`
	Impact     *Impact     `json:"impact,omitempty"`
	Completion *Completion `json:"completion,omitempty"`
	// control messages
	ClientID   string `json:"client_id,omitempty"`
	Controller *bool  `json:"controller,omitempty"`
}

// WSMessage is one message from the hub.
type WSMessage struct {
	SessionID string          `json:"session_id"`
	GameState *GameState      `json:"game_state,omitempty"`
	Event     string          `json:"event,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// PointerEvent is what the hub reads from us.
type PointerEvent struct {
	Type   string  `json:"type"`
	Device string  `json:"device,omitempty"`
	ID     int     `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type SessionData struct {
	ID         string     `json:"id"`
	ConfigName string     `json:"config_name"`
	GameState  *GameState `json:"game_state"`
}

// Game is the ebiten client for one session.
type Game struct {
	baseURL   string
	sessionID string
	conn      *websocket.Conn
	outbox    chan PointerEvent
	sound     *clicker

	stateMutex sync.Mutex
	state      *GameState
	controller bool
	banner     string
	bannerAt   time.Time

	mouseDown bool
	lastX     int
	lastY     int
	touches   []ebiten.TouchID
	message   string
}

func NewGame(baseURL, sessionID string) *Game {
	return &Game{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  sessionID,
		outbox:     make(chan PointerEvent, 64),
		controller: true,
	}
}

// createSession asks the server for a fresh session.
func (g *Game) createSession(size int, puzzle string) error {
	body, _ := json.Marshal(map[string]interface{}{"size": size, "puzzle_set": puzzle})
	resp, err := http.Post(g.baseURL+"/api/sessions", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create session failed: %s", resp.Status)
	}

	var session SessionData
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return err
	}
	g.sessionID = session.ID
	g.setState(session.GameState)
	log.Printf("Session created: %s (%s)", session.ID, session.ConfigName)
	return nil
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState() error {
	resp, err := http.Get(fmt.Sprintf("%s/api/sessions/%s/state", g.baseURL, url.PathEscape(g.sessionID)))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch state failed: %s", resp.Status)
	}

	var state GameState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return err
	}
	g.setState(&state)
	return nil
}

func (g *Game) connectWebSocket() error {
	base, err := url.Parse(g.baseURL)
	if err != nil {
		return err
	}
	scheme := "ws"
	if base.Scheme == "https" {
		scheme = "wss"
	}

	wsURL := url.URL{Scheme: scheme, Host: base.Host, Path: "/ws"}
	q := wsURL.Query()
	q.Set("session", g.sessionID)
	wsURL.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}

	g.conn = conn
	log.Printf("WebSocket connected for session %s", g.sessionID)
	go g.listenWebSocket()
	go g.writeWebSocket()
	return nil
}

// listenWebSocket applies frames and events from the hub. A websocket
// message may hold several hub messages separated by newlines.
func (g *Game) listenWebSocket() {
	defer g.conn.Close()

	for {
		_, data, err := g.conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error: %v", err)
			g.setMessage("Disconnected from server")
			return
		}

		for _, line := range bytes.Split(data, []byte{'\n'}) {
			if len(bytes.TrimSpace(line)) == 0 {
				continue
			}
			var msg WSMessage
			if err := json.Unmarshal(line, &msg); err != nil {
				log.Printf("WebSocket JSON parse error: %v", err)
				continue
			}
			g.handleMessage(msg)
		}
	}
}

func (g *Game) handleMessage(msg WSMessage) {
	if msg.GameState != nil {
		g.setState(msg.GameState)
	}
	if len(msg.Data) == 0 {
		return
	}
	if msg.Event == "error" {
		var text string
		if json.Unmarshal(msg.Data, &text) == nil {
			g.setMessage(text)
		}
		return
	}

	var data EventData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return
	}

	switch msg.Event {
	case "impact":
		if data.Impact != nil && g.sound != nil {
			g.sound.Click(data.Impact.Speed)
		}
	case "solved":
		if c := data.Completion; c != nil {
			g.setBanner(fmt.Sprintf("Solved in %.1fs with %d moves!", float64(c.ElapsedMS)/1000, c.Moves))
		}
		if g.sound != nil {
			g.sound.Chime()
		}
	case "connected", "control":
		if data.Controller != nil {
			g.stateMutex.Lock()
			g.controller = *data.Controller
			g.stateMutex.Unlock()
		}
	}
}

// writeWebSocket is the only writer on the connection.
func (g *Game) writeWebSocket() {
	for ev := range g.outbox {
		if err := g.conn.WriteJSON(ev); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
}

func (g *Game) send(ev PointerEvent) {
	select {
	case g.outbox <- ev:
	default:
		log.Printf("Dropping pointer event %s, outbox full", ev.Type)
	}
}

func (g *Game) setState(state *GameState) {
	if state == nil {
		return
	}
	g.stateMutex.Lock()
	g.state = state
	g.stateMutex.Unlock()
}

func (g *Game) setBanner(text string) {
	g.stateMutex.Lock()
	g.banner = text
	g.bannerAt = time.Now()
	g.stateMutex.Unlock()
}

func (g *Game) setMessage(text string) {
	g.stateMutex.Lock()
	g.message = text
	g.stateMutex.Unlock()
}

// sendAction posts a round or puzzle command.
func (g *Game) sendAction(action string, payload interface{}) {
	body, _ := json.Marshal(payload)
	u := fmt.Sprintf("%s/api/sessions/%s/%s", g.baseURL, url.PathEscape(g.sessionID), action)
	go func() {
		resp, err := http.Post(u, "application/json", bytes.NewReader(body))
		if err != nil {
			g.setMessage(err.Error())
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			var errResp map[string]string
			json.NewDecoder(resp.Body).Decode(&errResp)
			g.setMessage(fmt.Sprintf("%s: %s", action, errResp["error"]))
			return
		}
		g.setMessage("")
	}()
}

// Update forwards pointer input and handles keys.
func (g *Game) Update() error {
	g.updateMouse()
	g.updateTouches()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.sendAction("start", nil)
	case inpututil.IsKeyJustPressed(ebiten.KeyX):
		g.sendAction("stop", nil)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.sendAction("shuffle", nil)
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.sendAction("puzzle", map[string]bool{"next": true, "force": true})
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.resize(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.resize(-1)
	}
	return nil
}

func (g *Game) resize(delta int) {
	g.stateMutex.Lock()
	size := 0
	if g.state != nil {
		size = g.state.Size + delta
	}
	g.stateMutex.Unlock()
	if size >= 2 {
		g.sendAction("configure", map[string]interface{}{"size": size, "force": true})
	}
}

func (g *Game) updateMouse() {
	x, y := ebiten.CursorPosition()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.mouseDown = true
		g.send(PointerEvent{Type: "down", Device: "mouse", X: float64(x), Y: float64(y)})
	} else if g.mouseDown && (x != g.lastX || y != g.lastY) {
		g.send(PointerEvent{Type: "move", Device: "mouse", X: float64(x), Y: float64(y)})
	}
	if g.mouseDown && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.mouseDown = false
		g.send(PointerEvent{Type: "up", Device: "mouse", X: float64(x), Y: float64(y)})
	}
	g.lastX, g.lastY = x, y
}

func (g *Game) updateTouches() {
	g.touches = inpututil.AppendJustPressedTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		x, y := ebiten.TouchPosition(id)
		g.send(PointerEvent{Type: "down", Device: "touch", ID: int(id), X: float64(x), Y: float64(y)})
	}

	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		if inpututil.TouchPressDuration(id) <= 1 {
			continue
		}
		x, y := ebiten.TouchPosition(id)
		px, py := inpututil.TouchPositionInPreviousTick(id)
		if x != px || y != py {
			g.send(PointerEvent{Type: "move", Device: "touch", ID: int(id), X: float64(x), Y: float64(y)})
		}
	}

	g.touches = inpututil.AppendJustReleasedTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		x, y := inpututil.TouchPositionInPreviousTick(id)
		g.send(PointerEvent{Type: "up", Device: "touch", ID: int(id), X: float64(x), Y: float64(y)})
	}
}

// tileColor shades a tile by its home cell.
func tileColor(tag, size int) color.RGBA {
	row, col := tag/size, tag%size
	span := max(size-1, 1)
	return color.RGBA{
		R: uint8(70 + 150*col/span),
		G: uint8(70 + 150*row/span),
		B: 170,
		A: 255,
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	g.stateMutex.Lock()
	state := g.state
	controller := g.controller
	banner := g.banner
	if time.Since(g.bannerAt) > bannerTime {
		banner = ""
	}
	message := g.message
	g.stateMutex.Unlock()

	if state == nil {
		ebitenutil.DebugPrintAt(screen, "Waiting for the server...", 20, 20)
		return
	}

	b := state.Board
	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.Size), float32(b.Size), boardColor, false)

	for _, t := range state.Tiles {
		r := t.Rect
		x, y := float32(r.X)+tileGap, float32(r.Y)+tileGap
		size := float32(r.Size) - 2*tileGap
		vector.DrawFilledRect(screen, x, y, size, size, tileColor(t.Tag, state.Size), false)
		if t.Tag == state.Held {
			vector.StrokeRect(screen, x, y, size, size, 3, heldColor, false)
		}
		if t.Label != "" {
			ebitenutil.DebugPrintAt(screen, t.Label, int(r.X+r.Size/2)-3*len(t.Label), int(r.Y+r.Size/2)-8)
		}
	}

	round := "not playing"
	switch {
	case state.Playing:
		round = fmt.Sprintf("playing %.1fs", float64(state.ElapsedMS)/1000)
	case state.Solved:
		round = "solved"
	}
	status := fmt.Sprintf("%s  %dx%d  moves %d  %s", state.PuzzleSet, state.Size, state.Size, state.Moves, round)
	if !state.Solvable {
		status += "  (unsolvable)"
	}
	if !controller {
		status += "  [watching]"
	}
	ebitenutil.DebugPrintAt(screen, status, 20, statusTop+8)
	ebitenutil.DebugPrintAt(screen, "S start  X stop  R shuffle  N next  +/- size", 20, statusTop+28)
	if banner != "" {
		ebitenutil.DebugPrintAt(screen, banner, 20, statusTop+48)
	} else if message != "" {
		ebitenutil.DebugPrintAt(screen, message, 20, statusTop+48)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	sessionID := flag.String("session", "", "Join an existing session instead of creating one")
	size := flag.Int("size", 4, "Board size for a new session")
	puzzle := flag.String("puzzle", "", "Puzzle set for a new session")
	sound := flag.Bool("sound", true, "Play click sounds")
	flag.Parse()

	game := NewGame(*serverURL, *sessionID)

	if *sessionID == "" {
		if err := game.createSession(*size, *puzzle); err != nil {
			log.Fatalf("Failed to create session: %v", err)
		}
	} else if err := game.fetchGameState(); err != nil {
		log.Fatalf("Failed to load session %s: %v", *sessionID, err)
	}

	if *sound {
		clicker, err := newClicker()
		if err != nil {
			// Non-fatal, game can run without sound
			log.Printf("Audio initialization failed: %v", err)
		} else {
			game.sound = clicker
		}
	}

	if err := game.connectWebSocket(); err != nil {
		log.Fatalf("Failed to connect WebSocket: %v", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Sliding Picture Puzzle")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
