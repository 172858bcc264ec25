// Package realtime maintains the push-notification connection used by the
// admin surface to learn about new orders without polling.
//
// One physical connection per process is desirable, so the package exposes a
// lazily-initialized singleton behind Init/Get; consumers receive the
// *Channel by injection rather than importing shared mutable state. Calling
// Init repeatedly returns the same channel and never opens a second
// connection. Callers must tolerate an absent connection — Get may return
// nil before Init, and Conn may be nil after a drop — without crashing.
//
//	ch := realtime.Init(config.APIBaseURL())
//	if err := ch.JoinAdmin(); err != nil { ... }
//	ch.Bind(store) // store.AddOrder on every order-created push
package realtime

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/ordersync/ordersync/pkg/event"
	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/metrics"
	"github.com/ordersync/ordersync/pkg/orders"
)

// Event names on the wire and on the in-process bus.
const (
	EventOrderCreated = "order-created"
	eventJoinAdmin    = "join-admin"
)

// Frame is the wire shape of every realtime message, both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ErrNotConnected is returned by writes when no connection is established.
var ErrNotConnected = errors.New("realtime: not connected")

// Channel is a client connection to the backend's websocket endpoint.
type Channel struct {
	url string
	bus *event.Bus

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
}

var (
	initMu    sync.Mutex
	singleton *Channel
)

// Init returns the process-wide channel, constructing it on first call from
// the REST base address. The websocket endpoint is the base address with its
// /api suffix stripped, scheme switched to ws(s), path /ws.
func Init(apiBase string) *Channel {
	initMu.Lock()
	defer initMu.Unlock()
	if singleton == nil {
		singleton = New(Endpoint(apiBase))
	}
	return singleton
}

// Get returns the channel created by Init, or nil when Init has not run.
func Get() *Channel {
	initMu.Lock()
	defer initMu.Unlock()
	return singleton
}

// New constructs a non-singleton channel for the given websocket URL.
// Tests and embedders that manage their own lifecycle use this directly.
func New(wsURL string) *Channel {
	return &Channel{url: wsURL, bus: event.NewBus()}
}

// Endpoint derives the websocket URL from a REST base address.
func Endpoint(apiBase string) string {
	base := strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/api")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws"
}

// Connect establishes the connection if not already established; safe to
// call multiple times. A dropped connection is re-established by the next
// Connect call; there is no automatic redial loop.
func (c *Channel) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("realtime: dial %s: %w", c.url, err)
	}
	c.conn = conn

	go c.readLoop(conn)
	return nil
}

// Connected reports whether a connection is currently established.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// JoinAdmin ensures a connection exists and asks the server to route
// order-created notifications to this client.
func (c *Channel) JoinAdmin() error {
	if err := c.Connect(); err != nil {
		return err
	}
	return c.send(Frame{Event: eventJoinAdmin})
}

// OnOrderCreated subscribes to order-created pushes.
func (c *Channel) OnOrderCreated(fn func(orders.Order)) {
	c.bus.Subscribe(EventOrderCreated, func(payload interface{}) {
		if o, ok := payload.(orders.Order); ok {
			fn(o)
		}
	})
}

// Bind merges every order-created push into the store.
func (c *Channel) Bind(store *orders.Store) {
	c.OnOrderCreated(store.AddOrder)
}

// Close tears down the connection. The singleton is normally left running
// for the life of the process; Close exists for tests and shutdown paths.
func (c *Channel) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}

func (c *Channel) send(f Frame) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(f); err != nil {
		return fmt.Errorf("realtime: send %s: %w", f.Event, err)
	}
	return nil
}

// readLoop decodes frames until the connection drops, dispatching known
// events onto the bus. A read error clears the connection so a later
// Connect can re-establish it.
func (c *Channel) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		conn.Close()
	}()

	for {
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("realtime: connection lost", "error", err)
			}
			return
		}

		metrics.RealtimeEvents.WithLabelValues(f.Event).Inc()

		switch f.Event {
		case EventOrderCreated:
			var o orders.Order
			if err := json.Unmarshal(f.Data, &o); err != nil {
				logger.Warn("realtime: bad order payload", "error", err)
				continue
			}
			c.bus.Publish(EventOrderCreated, o)
		default:
			// Unknown events are ignored; the protocol is open-ended.
		}
	}
}
