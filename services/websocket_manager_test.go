package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketManager_BroadcastReachesListeners(t *testing.T) {
	m := NewWebSocketManager()

	conn := &WebSocketConnection{ID: "c1", UserID: "u1", Send: make(chan []byte, 4)}
	m.RegisterConnection(conn)
	defer m.UnregisterConnection("c1")
	require.Equal(t, 1, m.ConnectionCount())

	m.Broadcast(EventFAQReload, map[string]int{"categories": 3})

	select {
	case raw := <-conn.Send:
		var payload MessagePayload
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, EventFAQReload, payload.Type)
		assert.Equal(t, map[string]interface{}{"categories": float64(3)}, payload.Data)
	case <-time.After(time.Second):
		t.Fatal("expected broadcast")
	}
}

func TestWebSocketManager_SendToConnection(t *testing.T) {
	m := NewWebSocketManager()

	assert.ErrorIs(t, m.SendToConnection("missing", []byte("x")), ErrConnectionNotFound)

	conn := &WebSocketConnection{ID: "c1", Send: make(chan []byte, 1)}
	m.RegisterConnection(conn)

	require.NoError(t, m.SendToConnection("c1", []byte("a")))
	assert.ErrorIs(t, m.SendToConnection("c1", []byte("b")), ErrConnectionBufferFull)

	m.UnregisterConnection("c1")
	assert.Equal(t, 0, m.ConnectionCount())
}
