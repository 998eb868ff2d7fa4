package handler

import (
	"context"
	"encoding/json"

	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/openride/dispatch/internal/pkg/constants"
	"github.com/openride/dispatch/internal/pkg/logger"
	"github.com/openride/dispatch/internal/pkg/models"
	"github.com/openride/dispatch/services/dispatch"
)

// WebSocketManager is the connection registry the handler works against
type WebSocketManager interface {
	HandleConnection(c echo.Context, handleClient func(*models.WebSocketClient, *ws.Conn) error) error
	AddClient(client *models.WebSocketClient)
	RemoveClient(userID string)
	SendMessage(conn *ws.Conn, event string, data interface{}) error
	SendErrorMessage(conn *ws.Conn, code string, message string) error
}

// WebSocketHandler serves real-time client connections.
// Offers and counterpart locations are pushed to clients; clients may
// push heartbeats and their own location samples over the same
// connection.
type WebSocketHandler struct {
	dispatchUC dispatch.DispatchUC
	manager    WebSocketManager
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(dispatchUC dispatch.DispatchUC, manager WebSocketManager) *WebSocketHandler {
	return &WebSocketHandler{
		dispatchUC: dispatchUC,
		manager:    manager,
	}
}

// HandleWebSocket authenticates, registers and serves a client connection
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	return h.manager.HandleConnection(c, h.handleClient)
}

func (h *WebSocketHandler) handleClient(client *models.WebSocketClient, conn *ws.Conn) error {
	client.Conn = conn
	h.manager.AddClient(client)
	defer h.manager.RemoveClient(client.UserID)

	logger.Info("WebSocket client connected",
		logger.String("user_id", client.UserID),
		logger.String("role", client.Role))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			// Client disconnected
			return nil
		}

		var msg models.WSMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			if sendErr := h.manager.SendErrorMessage(conn, "invalid_message", "Message must be JSON"); sendErr != nil {
				return nil
			}
			continue
		}

		h.handleMessage(client, conn, msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *models.WebSocketClient, conn *ws.Conn, msg models.WSMessage) {
	ctx := context.Background()

	switch msg.Event {
	case constants.EventPing:
		if err := h.manager.SendMessage(conn, constants.EventPong, nil); err != nil {
			logger.Debug("Failed to answer ping", logger.Err(err))
		}

	case constants.EventLocationUpdate:
		var sample models.LocationSample
		if err := json.Unmarshal(msg.Data, &sample); err != nil {
			h.sendError(conn, "invalid_location", "Malformed location sample")
			return
		}
		if _, err := h.dispatchUC.UpdateLocation(ctx, client.Role, client.UserID, &sample); err != nil {
			h.sendError(conn, "location_rejected", err.Error())
		}

	default:
		h.sendError(conn, "unknown_event", "Unsupported event: "+msg.Event)
	}
}

func (h *WebSocketHandler) sendError(conn *ws.Conn, code, message string) {
	if err := h.manager.SendErrorMessage(conn, code, message); err != nil {
		logger.Debug("Failed to send websocket error", logger.Err(err))
	}
}
