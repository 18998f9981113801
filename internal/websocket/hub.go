// Package websocket fans live event batches out to connected dashboard
// clients. Clients are pure sinks: they receive pushed batches and a
// welcome message, nothing is buffered or replayed for late joiners.
package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jmoreau/aeos-dashboard/internal/domain"
	"github.com/jmoreau/aeos-dashboard/internal/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from arbitrary origins
	},
}

// statusMessage is sent once to every client on connect.
type statusMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// eventsMessage carries one classified batch.
type eventsMessage struct {
	Type   string         `json:"type"`
	Events []domain.Event `json:"events"`
}

const welcomeText = "Connecté au Dashboard AEOS"

// Hub manages the subscriber registry and broadcasts event batches to
// every connected client. All membership changes go through the Run
// loop, so one batch is fully delivered before the next is accepted.
type Hub struct {
	clients    map[*client]struct{}
	mu         sync.RWMutex
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	logger     *slog.Logger
}

type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub with no clients.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
	}
}

// Run starts the hub's event loop. Should be called as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.ConnectedClients.Set(float64(total))
			h.logger.Info("client connected", "client_id", c.id, "total_clients", total)

			// Welcome ack carries no event payload; batches published
			// before this point are never replayed.
			if welcome, err := json.Marshal(statusMessage{Type: "status", Message: welcomeText}); err == nil {
				select {
				case c.send <- welcome:
				default:
				}
			}

		case c := <-h.unregister:
			h.removeClient(c)

		case message := <-h.broadcast:
			h.mu.RLock()
			recipients := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				recipients = append(recipients, c)
			}
			h.mu.RUnlock()

			for _, c := range recipients {
				select {
				case c.send <- message:
				default:
					// Slow client: evict rather than stall the feed.
					metrics.ClientsEvicted.Inc()
					h.logger.Warn("dropping slow client", "client_id", c.id)
					h.removeClient(c)
				}
			}
		}
	}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.ConnectedClients.Set(float64(total))
		h.logger.Info("client disconnected", "client_id", c.id, "total_clients", total)
	}
}

// PublishEvents broadcasts one classified batch to all connected
// clients as a "new_events" message. Best effort: if the hub cannot
// keep up the batch is dropped, never queued behind a stuck client.
func (h *Hub) PublishEvents(events []domain.Event) {
	data, err := json.Marshal(eventsMessage{Type: "new_events", Events: events})
	if err != nil {
		h.logger.Error("failed to marshal event batch", "error", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast channel full, dropping batch", "events", len(events))
	}
}

// HandleWebSocket upgrades the connection and registers the client.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump drains the connection so pings and close frames are
// processed; clients never send application data.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes queued messages and keepalive pings.
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
