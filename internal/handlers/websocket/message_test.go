package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commiegod/commoners-auction/pkg/errors"
	"github.com/commiegod/commoners-auction/pkg/types"
)

func TestParseMessage(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"type":"bid","data":"{\"auction_id\":1,\"amount\":420000000}"}`))
	require.NoError(t, err)
	assert.Equal(t, "bid", msg.Type)

	_, err = ParseMessage([]byte(`not json`))
	assert.Error(t, err)
}

func TestHandleUnknownMessageType(t *testing.T) {
	h := NewAuctionWebSocketHandler(nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.handleAuctions(w, r, types.User{ID: "tester", Email: "tester@example.com", Role: "user"})
	}))
	defer server.Close()

	url := "ws" + server.URL[len("http"):]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err, "Failed to connect to WebSocket server")
	defer ws.Close()

	err = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"teleport","data":""}`))
	require.NoError(t, err)

	_, received, err := ws.ReadMessage()
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(received, &payload))
	assert.Equal(t, "error", payload["type"])
	assert.Equal(t, float64(errors.ErrUnknownMessageType), payload["code"])
}

func TestHandleBadMessageFormat(t *testing.T) {
	h := NewAuctionWebSocketHandler(nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.handleAuctions(w, r, types.User{ID: "tester", Email: "tester@example.com", Role: "user"})
	}))
	defer server.Close()

	url := "ws" + server.URL[len("http"):]
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer ws.Close()

	err = ws.WriteMessage(websocket.TextMessage, []byte(`garbage`))
	require.NoError(t, err)

	_, received, err := ws.ReadMessage()
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(received, &payload))
	assert.Equal(t, float64(errors.ErrBadMessageFormat), payload["code"])
}
