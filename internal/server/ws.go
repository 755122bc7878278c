package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/repcount/internal/tracker"
)

// writeWait bounds how long a slow client may block a broadcast.
const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// EventsHandler pushes repetition events to WebSocket clients.
type EventsHandler struct {
	clients map[*websocket.Conn]*sync.Mutex
	mu      sync.RWMutex
}

type eventsMessage struct {
	Events    []tracker.Event `json:"events"`
	Timestamp int64           `json:"timestamp"`
}

// NewEventsHandler creates an EventsHandler with no clients.
func NewEventsHandler() *EventsHandler {
	return &EventsHandler{
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Broadcast sends events to every connected client. Empty batches are dropped.
func (h *EventsHandler) Broadcast(events []tracker.Event) {
	if len(events) == 0 {
		return
	}

	msg, err := json.Marshal(eventsMessage{
		Events:    events,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		log.Printf("encode events: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn, writeMu := range h.clients {
		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("websocket write error: %v", err)
		}
		writeMu.Unlock()
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *EventsHandler) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn := range h.clients {
		conn.Close()
	}
}
