package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"support-bot/services"
)

// WebSocketMessage is a message sent by a dashboard listener
type WebSocketMessage struct {
	Type      string   `json:"type"`
	Message   string   `json:"message,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// WebSocketHandler streams live exchanges to the dashboard and lets admins
// try questions against the matcher
type WebSocketHandler struct {
	manager *services.WebSocketManager
	chat    *services.ChatService
}

func NewWebSocketHandler(manager *services.WebSocketManager, chat *services.ChatService) *WebSocketHandler {
	return &WebSocketHandler{manager: manager, chat: chat}
}

// WebSocketUpgrade upgrades HTTP connection to WebSocket
func WebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handle serves one dashboard connection
func (h *WebSocketHandler) Handle(c *websocket.Conn) {
	userID, _ := c.Locals("user_id").(string)
	email, _ := c.Locals("email").(string)

	conn := &services.WebSocketConnection{
		ID:     uuid.NewString(),
		Conn:   c,
		UserID: userID,
		Email:  email,
		Send:   make(chan []byte, 256),
	}

	h.manager.RegisterConnection(conn)
	defer h.manager.UnregisterConnection(conn.ID)

	h.sendJSON(conn.ID, map[string]interface{}{
		"type":          "connected",
		"connection_id": conn.ID,
	})

	go writePump(conn)
	h.readPump(conn)
}

// writePump sends queued messages and keeps the connection alive with pings
func writePump(conn *services.WebSocketConnection) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				slog.Error("Failed to write WebSocket message", "error", err)
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) readPump(conn *services.WebSocketConnection) {
	conn.Conn.SetReadLimit(64 * 1024)
	conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket read error", "error", err)
			}
			return
		}
		conn.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var msg WebSocketMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendJSON(conn.ID, map[string]string{"type": "error", "error": "invalid message"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.sendJSON(conn.ID, map[string]string{"type": "pong"})

		case "try":
			threshold, err := resolveThreshold(h.chat.Threshold(), msg.Threshold)
			if err != nil {
				h.sendJSON(conn.ID, map[string]string{"type": "error", "error": err.Error()})
				continue
			}
			h.sendJSON(conn.ID, map[string]interface{}{
				"type":     "try_result",
				"question": msg.Message,
				"match":    h.chat.Match(msg.Message, threshold),
				"fallback": h.chat.Fallback(msg.Message),
			})

		default:
			slog.Warn("Unknown WebSocket message type", "type", msg.Type, "connectionID", conn.ID)
		}
	}
}

func (h *WebSocketHandler) sendJSON(connectionID string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal WebSocket message", "error", err)
		return
	}
	if err := h.manager.SendToConnection(connectionID, data); err != nil {
		slog.Warn("Failed to queue WebSocket message", "error", err, "connectionID", connectionID)
	}
}
