package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NomadCrew/nomad-weather/config"
	apperrors "github.com/NomadCrew/nomad-weather/errors"
	"github.com/NomadCrew/nomad-weather/internal/screen"
	"github.com/NomadCrew/nomad-weather/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// ScreenActions are the user interactions a client can send over the socket.
type ScreenActions interface {
	Search(ctx context.Context, city string) (screen.Snapshot, error)
	Refresh(ctx context.Context) (screen.Snapshot, error)
	Retry(ctx context.Context) (screen.Snapshot, error)
	ToggleUnit() screen.Snapshot
}

// Handler handles WebSocket connections.
type Handler struct {
	log            *zap.SugaredLogger
	hub            *Hub
	actions        ScreenActions
	allowedOrigins []string
	isDevelopment  bool
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, serverCfg *config.ServerConfig, actions ScreenActions) *Handler {
	return &Handler{
		log:            logger.GetLogger().Named("websocket_handler"),
		hub:            hub,
		actions:        actions,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

// getAcceptOptions allows every origin in development and only the
// configured ones otherwise.
func (h *Handler) getAcceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}

	if h.isDevelopment {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.allowedOrigins
	}

	return opts
}

// ClientMessage represents a message from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message to the client.
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Message types exchanged with the client.
const (
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
	MessageTypeSearch     = "search"
	MessageTypeRefresh    = "refresh"
	MessageTypeRetry      = "retry"
	MessageTypeToggleUnit = "toggle_unit"
	MessageTypeView       = "view"
	MessageTypeConnected  = "connected"
	MessageTypeError      = "error"
)

// HandleWebSocket upgrades the request and streams screen views until the
// client goes away.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, h.getAcceptOptions())
	if err != nil {
		h.log.Errorw("Failed to accept WebSocket connection", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	connection, err := h.hub.Register(conn)
	if err != nil {
		h.log.Errorw("Failed to register WebSocket connection", "error", err)
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.Unregister(connection.ID)

	if err := h.sendMessage(ctx, conn, ServerMessage{
		Type:    MessageTypeConnected,
		Payload: map[string]string{"connectionId": connection.ID},
	}); err != nil {
		h.log.Errorw("Failed to send connected message",
			"connectionID", connection.ID,
			"error", err)
		return
	}

	errCh := make(chan error, 3)
	go func() { errCh <- h.readLoop(ctx, conn, connection.ID) }()
	go func() { errCh <- h.writeLoop(ctx, conn, connection) }()
	go func() { errCh <- h.pingLoop(ctx, conn) }()

	err = <-errCh
	if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		h.log.Debugw("WebSocket connection ended",
			"connectionID", connection.ID,
			"error", err)
	}
}

// readLoop handles incoming messages from the client.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, connectionID string) error {
	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return err
		}
		h.handleClientMessage(ctx, conn, connectionID, msg)
	}
}

// writeLoop sends rendered views to the client.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, connection *Connection) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case view, ok := <-connection.SendChannel():
			if !ok {
				return nil
			}
			if err := h.sendMessage(ctx, conn, ServerMessage{Type: MessageTypeView, Payload: view}); err != nil {
				return err
			}
		}
	}
}

// pingLoop sends periodic pings to keep the connection alive.
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(h.hub.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.hub.writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

// handleClientMessage runs screen actions off the read loop. Their results
// reach the client through the subscription; only rejected actions are
// answered directly.
func (h *Handler) handleClientMessage(ctx context.Context, conn *websocket.Conn, connectionID string, msg ClientMessage) {
	switch msg.Type {
	case MessageTypePing:
		_ = h.sendMessage(ctx, conn, ServerMessage{Type: MessageTypePong})

	case MessageTypeSearch:
		var payload struct {
			City string `json:"city"`
		}
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				_ = h.sendMessage(ctx, conn, ServerMessage{
					Type:  MessageTypeError,
					Error: "Invalid search request: city required",
				})
				return
			}
		}
		h.runAction(ctx, conn, connectionID, msg.Type, func(actx context.Context) error {
			_, err := h.actions.Search(actx, payload.City)
			return err
		})

	case MessageTypeRefresh:
		h.runAction(ctx, conn, connectionID, msg.Type, func(actx context.Context) error {
			_, err := h.actions.Refresh(actx)
			return err
		})

	case MessageTypeRetry:
		h.runAction(ctx, conn, connectionID, msg.Type, func(actx context.Context) error {
			_, err := h.actions.Retry(actx)
			return err
		})

	case MessageTypeToggleUnit:
		h.actions.ToggleUnit()

	default:
		h.log.Debugw("Unknown message type from client",
			"connectionID", connectionID,
			"type", msg.Type)
	}
}

func (h *Handler) runAction(ctx context.Context, conn *websocket.Conn, connectionID, action string, fn func(context.Context) error) {
	go func() {
		actx, cancel := context.WithTimeout(ctx, h.hub.actionTimeout)
		defer cancel()

		err := fn(actx)
		if err == nil || ctx.Err() != nil {
			return
		}
		h.log.Debugw("Screen action rejected",
			"connectionID", connectionID,
			"action", action,
			"error", err)
		_ = h.sendMessage(ctx, conn, ServerMessage{
			Type:    MessageTypeError,
			Payload: map[string]string{"action": action, "type": string(apperrors.TypeOf(err))},
			Error:   err.Error(),
		})
	}()
}

// sendMessage sends a message to the client.
func (h *Handler) sendMessage(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	writeCtx, cancel := context.WithTimeout(ctx, h.hub.writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
