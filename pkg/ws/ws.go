// Package ws hosts the server side of the realtime channel. Clients connect,
// send {"event":"join-admin"} to subscribe to the admin room, and receive
// {"event":"order-created","data":...} frames when new orders arrive.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ordersync/ordersync/pkg/logger"
)

const (
	// RoomAdmin receives order lifecycle broadcasts.
	RoomAdmin = "admin"

	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Frame is the JSON envelope on the wire in both directions.
type Frame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one websocket connection managed by a Hub.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]bool
}

// Hub tracks connected clients and their room memberships.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	upgrader websocket.Upgrader
}

// NewHub returns an empty hub. The upgrader accepts any origin; the reference
// backend fronts no credentials over the socket.
func NewHub() *Hub {
	return &Hub{
		clients: map[*Client]bool{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and runs the connection until it closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("ws: upgrade failed", "error", err)
		return
	}

	c := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		rooms: map[string]bool{},
	}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// Broadcast sends a frame to every client in the given room.
func (h *Hub) Broadcast(room, event string, data interface{}) {
	payload, err := json.Marshal(Frame{Event: event, Data: data})
	if err != nil {
		logger.Error("ws: marshal frame", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.rooms[room] {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// Slow consumer, drop the frame rather than block the hub.
		}
	}
}

// EmitOrderCreated broadcasts a new order to the admin room.
func (h *Hub) EmitOrderCreated(order interface{}) {
	h.Broadcast(RoomAdmin, "order-created", order)
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			logger.Warn("ws: bad frame", "error", err)
			continue
		}

		switch frame.Event {
		case "join-admin":
			c.hub.mu.Lock()
			c.rooms[RoomAdmin] = true
			c.hub.mu.Unlock()
		default:
			logger.Debug("ws: unhandled event", "event", frame.Event)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
