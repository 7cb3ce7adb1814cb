package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wricardo/mcp-training/slidepuzzle/game/engine"
	"github.com/wricardo/mcp-training/slidepuzzle/game/input"
	"github.com/wricardo/mcp-training/slidepuzzle/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Frames queued for the hub before the tick blocks.
	broadcastBuffer = 256
)

// Events sent only by the hub.
const (
	EventConnected   = "connected"
	EventStateUpdate = "state_update"
	EventFrame       = "frame"
	EventControl     = "control"
	EventError       = "error"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one outbound websocket message.
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      interface{}       `json:"data,omitempty"`

	// to limits delivery to one client.
	to *Client
}

// ControlInfo tells a client whether its pointer stream drives the session.
type ControlInfo struct {
	ClientID   string `json:"client_id"`
	Controller bool   `json:"controller"`
}

// Backend is the part of the game service the hub needs.
type Backend interface {
	Input(ctx context.Context, sessionID string) (*input.Buffer, error)
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	Now() time.Duration
}

// Client is one websocket connection. Clients send pointer events as JSON
// service.PointerEvent values and receive Messages. The most recent client
// of a session is its controller; older clients only watch.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	id        string

	mu      sync.Mutex
	sink    input.Sink
	buffer  *input.Buffer
	closing bool
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients by session ID
	sessions map[string]map[*Client]bool
	mu       sync.RWMutex

	// Outbound messages
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	backend Backend
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// WithBackend lets clients drive sessions of b. Without a backend the hub
// only broadcasts.
func (h *Hub) WithBackend(b Backend) *Hub {
	h.backend = b
	return h
}

// Run starts the hub's event loop. It returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS handles WebSocket requests from clients
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, 256),
		sessionID: sessionID,
		id:        uuid.NewString(),
	}

	h.greet(r.Context(), client)
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// greet queues the welcome message and the current state, then makes the
// client the controller of its session. Nothing else can write to send yet.
func (h *Hub) greet(ctx context.Context, client *Client) {
	controller := false
	var state *engine.GameState
	if h.backend != nil {
		if buf, err := h.backend.Input(ctx, client.sessionID); err == nil {
			client.mu.Lock()
			client.buffer = buf
			client.mu.Unlock()
			buf.Connect(client, nil, 0)
			controller = true
		} else {
			log.Printf("[WS] session=%s no input: %v", client.sessionID, err)
		}
		state, _ = h.backend.GetGameState(ctx, client.sessionID)
	}

	client.queue(&Message{
		SessionID: client.sessionID,
		Event:     EventConnected,
		Data:      ControlInfo{ClientID: client.id, Controller: controller},
	})
	if state != nil {
		client.queue(&Message{SessionID: client.sessionID, GameState: state, Event: EventStateUpdate})
	}
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.broadcast <- &Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	}
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.broadcast <- &Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}
}

// BroadcastFrame forwards one tick of a session: its state, then each event.
func (h *Hub) BroadcastFrame(frame service.Frame) {
	if frame.State != nil {
		h.broadcast <- &Message{SessionID: frame.SessionID, GameState: frame.State, Event: EventFrame}
	}
	for _, ev := range frame.Events {
		h.BroadcastEvent(frame.SessionID, ev.Type, ev)
	}
}

// ClientCount returns the number of clients watching a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// sendTo queues a message for a single client.
func (h *Hub) sendTo(client *Client, event string, data interface{}) {
	h.broadcast <- &Message{SessionID: client.sessionID, Event: event, Data: data, to: client}
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.Printf("[WS] client %s registered for session %s (total clients: %d)",
		client.id, client.sessionID, len(h.sessions[client.sessionID]))
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.Printf("[WS] client %s unregistered from session %s (remaining clients: %d)",
		client.id, client.sessionID, len(clients))
}

// broadcastMessage sends a message to all clients in a session
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.sessions[message.SessionID]
	if !ok {
		return
	}
	for client := range clients {
		if message.to != nil && client != message.to {
			continue
		}
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.removeLocked(client)
		}
	}
}

// queue writes directly to the send buffer. Only safe before registration.
func (c *Client) queue(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal WebSocket message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Attach makes c the pointer source of its session.
func (c *Client) Attach(s input.Sink) {
	c.mu.Lock()
	c.sink = s
	c.mu.Unlock()
}

// Detach is called when another client takes over or c goes away.
func (c *Client) Detach() {
	c.mu.Lock()
	had := c.sink != nil
	c.sink = nil
	closing := c.closing
	c.mu.Unlock()

	if had && !closing {
		c.hub.sendTo(c, EventControl, ControlInfo{ClientID: c.id, Controller: false})
	}
}

// handle applies one inbound pointer event.
func (c *Client) handle(raw []byte) {
	var ev service.PointerEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		c.hub.sendTo(c, EventError, "malformed pointer event")
		return
	}

	c.mu.Lock()
	sink := c.sink
	c.mu.Unlock()
	if sink == nil {
		c.hub.sendTo(c, EventError, "not the controller of this session")
		return
	}

	t := time.Duration(ev.TimeMS) * time.Millisecond
	if ev.TimeMS == 0 && c.hub.backend != nil {
		t = c.hub.backend.Now()
	}
	if err := service.ApplyPointer(sink, ev, t); err != nil {
		c.hub.sendTo(c, EventError, err.Error())
	}
}

// release hands the session back: open presses end where they were.
func (c *Client) release() {
	c.mu.Lock()
	c.closing = true
	buf := c.buffer
	c.mu.Unlock()
	if buf != nil {
		buf.Drop(c)
	}
}

// readPump pumps pointer events from the WebSocket connection into the
// session's input buffer.
func (c *Client) readPump() {
	defer func() {
		c.release()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
		c.handle(raw)
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
