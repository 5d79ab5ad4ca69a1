package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// WebSocket errors
var (
	ErrConnectionNotFound   = errors.New("connection not found")
	ErrConnectionBufferFull = errors.New("connection buffer full")
)

// Event types pushed to dashboard listeners
const (
	EventExchange  = "exchange"
	EventFAQReload = "faq_reload"
)

// WebSocketManager fans dashboard events out to every connected listener
type WebSocketManager struct {
	connections map[string]*WebSocketConnection
	mu          sync.RWMutex
	broadcast   chan MessagePayload
}

// WebSocketConnection is one dashboard listener
type WebSocketConnection struct {
	ID     string
	Conn   *websocket.Conn
	UserID string
	Email  string
	Send   chan []byte
}

// MessagePayload is the JSON envelope sent to listeners
type MessagePayload struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// NewWebSocketManager creates a manager and starts its broadcast loop
func NewWebSocketManager() *WebSocketManager {
	m := &WebSocketManager{
		connections: make(map[string]*WebSocketConnection),
		broadcast:   make(chan MessagePayload, 100),
	}
	go m.handleBroadcast()
	return m
}

// RegisterConnection registers a new WebSocket connection
func (m *WebSocketManager) RegisterConnection(conn *WebSocketConnection) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.connections[conn.ID] = conn

	slog.Info("WebSocket connection registered",
		"connectionID", conn.ID,
		"userID", conn.UserID,
		"totalConnections", len(m.connections))
}

// UnregisterConnection removes a WebSocket connection
func (m *WebSocketManager) UnregisterConnection(connectionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conn, exists := m.connections[connectionID]; exists {
		close(conn.Send)
		delete(m.connections, connectionID)

		slog.Info("WebSocket connection unregistered",
			"connectionID", connectionID,
			"remainingConnections", len(m.connections))
	}
}

// Broadcast queues an event for every listener. It never blocks the caller;
// when the queue is full the event is dropped.
func (m *WebSocketManager) Broadcast(eventType string, data interface{}) {
	payload := MessagePayload{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	select {
	case m.broadcast <- payload:
	default:
		slog.Warn("WebSocket broadcast queue full, dropping event", "type", eventType)
	}
}

func (m *WebSocketManager) handleBroadcast() {
	for payload := range m.broadcast {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			slog.Error("Failed to marshal WebSocket message", "error", err)
			continue
		}

		m.mu.RLock()
		for _, conn := range m.connections {
			select {
			case conn.Send <- jsonData:
			default:
				slog.Warn("WebSocket connection buffer full",
					"connectionID", conn.ID,
					"userID", conn.UserID)
			}
		}
		m.mu.RUnlock()
	}
}

// SendToConnection sends a message to a specific connection
func (m *WebSocketManager) SendToConnection(connectionID string, data []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conn, exists := m.connections[connectionID]
	if !exists {
		return ErrConnectionNotFound
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrConnectionBufferFull
	}
}

// ConnectionCount returns the number of active listeners
func (m *WebSocketManager) ConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}
