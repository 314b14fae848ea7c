package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/NomadCrew/nomad-weather/internal/presentation"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// ErrHubClosed is returned by Register after Shutdown.
var ErrHubClosed = errors.New("websocket hub is shut down")

// SnapshotSource is the observer side of the screen controller.
type SnapshotSource interface {
	Subscribe() (string, <-chan screen.Snapshot, func())
}

// Hub manages the WebSocket connections watching the screen. Every
// connection observes the same controller and receives the rendered view
// after each state change.
type Hub struct {
	log           *zap.SugaredLogger
	source        SnapshotSource
	connections   map[string]*Connection // connection ID -> connection
	mu            sync.RWMutex
	closed        bool
	shutdownOnce  sync.Once
	pingInterval  time.Duration
	writeTimeout  time.Duration
	actionTimeout time.Duration
}

// Connection is one WebSocket client.
type Connection struct {
	ID          string
	Conn        *websocket.Conn
	ObserverID  string
	unsubscribe func()
	// sendCh holds at most one pending view; a newer view replaces it.
	sendCh chan presentation.View
	mu     sync.Mutex
	closed bool
}

// HubConfig contains configuration options for the Hub.
type HubConfig struct {
	PingInterval  time.Duration
	WriteTimeout  time.Duration
	ActionTimeout time.Duration
}

// DefaultHubConfig returns the default Hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval:  30 * time.Second,
		WriteTimeout:  10 * time.Second,
		ActionTimeout: 30 * time.Second,
	}
}

// NewHub creates a new WebSocket hub.
func NewHub(source SnapshotSource, cfg ...HubConfig) *Hub {
	config := DefaultHubConfig()
	if len(cfg) > 0 {
		config = cfg[0]
	}

	return &Hub{
		log:           logger.GetLogger().Named("websocket_hub"),
		source:        source,
		connections:   make(map[string]*Connection),
		pingInterval:  config.PingInterval,
		writeTimeout:  config.WriteTimeout,
		actionTimeout: config.ActionTimeout,
	}
}

// Register adds a connection and subscribes it to screen changes. The
// current view is queued immediately.
func (h *Hub) Register(conn *websocket.Conn) (*Connection, error) {
	connection := &Connection{
		ID:     uuid.New().String(),
		Conn:   conn,
		sendCh: make(chan presentation.View, 1),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.connections[connection.ID] = connection
	h.mu.Unlock()

	observerID, snapshots, unsubscribe := h.source.Subscribe()
	connection.mu.Lock()
	connection.ObserverID = observerID
	connection.unsubscribe = unsubscribe
	connection.mu.Unlock()

	go h.forward(connection, snapshots)

	h.log.Infow("WebSocket connection registered",
		"connectionID", connection.ID,
		"observerID", observerID)

	return connection, nil
}

// forward renders snapshots into the connection's send slot until the
// subscription ends.
func (h *Hub) forward(conn *Connection, snapshots <-chan screen.Snapshot) {
	for snap := range snapshots {
		conn.push(presentation.Render(snap))
	}
}

func (c *Connection) push(view presentation.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case <-c.sendCh:
	default:
	}
	c.sendCh <- view
}

// Unregister removes a connection.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	conn, ok := h.connections[connectionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.connections, connectionID)
	h.mu.Unlock()

	h.closeConnection(conn, "unregistered")
}

// closeConnection closes a connection and cleans up resources.
func (h *Hub) closeConnection(conn *Connection, reason string) {
	conn.mu.Lock()
	if conn.closed {
		conn.mu.Unlock()
		return
	}
	conn.closed = true
	unsubscribe := conn.unsubscribe
	conn.unsubscribe = nil
	close(conn.sendCh)
	conn.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if conn.Conn != nil {
		_ = conn.Conn.Close(websocket.StatusNormalClosure, reason)
	}

	h.log.Infow("WebSocket connection closed",
		"connectionID", conn.ID,
		"reason", reason)
}

// GetConnection returns a connection by ID.
func (h *Hub) GetConnection(connectionID string) (*Connection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.connections[connectionID]
	return conn, ok
}

// GetConnectionCount returns the number of active connections.
func (h *Hub) GetConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Shutdown closes every connection and rejects new ones.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.shutdownOnce.Do(func() {
		h.mu.Lock()
		h.closed = true
		connections := make([]*Connection, 0, len(h.connections))
		for _, conn := range h.connections {
			connections = append(connections, conn)
		}
		h.connections = make(map[string]*Connection)
		h.mu.Unlock()

		for _, conn := range connections {
			h.closeConnection(conn, "server shutdown")
		}
	})

	h.log.Info("WebSocket hub shutdown complete")
	return nil
}

// SendChannel returns the channel of views to write to the client.
func (c *Connection) SendChannel() <-chan presentation.View {
	return c.sendCh
}

// IsClosed returns whether the connection is closed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
