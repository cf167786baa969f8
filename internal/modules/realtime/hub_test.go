package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(hub, nil).RegisterRoutes(r.Group(""))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/inventory" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(v))
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DeliversToSubscribers(t *testing.T) {
	hub := NewHub("node-a", nil)
	srv := newServer(t, hub)

	follower := dial(t, srv, "?inventory_id=7")
	other := dial(t, srv, "?inventory_id=8")
	waitForClients(t, hub, 2)

	hub.InventoryChanged(context.Background(), 7, "issuance.created", map[string]any{"qty": "3"})

	var ev Event
	readJSON(t, follower, &ev)
	assert.Equal(t, EventInventoryChanged, ev.Type)
	assert.Equal(t, int64(7), ev.InventoryID)
	assert.Equal(t, "issuance.created", ev.Reason)
	assert.Equal(t, "node-a", ev.Origin)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(150*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "client following another row receives nothing")
}

func TestHub_SubscribeMessages(t *testing.T) {
	hub := NewHub("node-a", nil)
	srv := newServer(t, hub)

	conn := dial(t, srv, "")
	waitForClients(t, hub, 1)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "subscribe", InventoryIDs: []int64{3}}))
	var ack serverMessage
	readJSON(t, conn, &ack)
	assert.Equal(t, "subscribed", ack.Type)

	assert.Equal(t, 1, hub.Broadcast(Event{Type: EventInventoryChanged, InventoryID: 3}))
	var ev Event
	readJSON(t, conn, &ev)
	assert.Equal(t, int64(3), ev.InventoryID)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "unsubscribe", InventoryIDs: []int64{3}}))
	readJSON(t, conn, &ack)
	assert.Equal(t, "unsubscribed", ack.Type)
	assert.Equal(t, 0, hub.Broadcast(Event{Type: EventInventoryChanged, InventoryID: 3}))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{nope")))
	readJSON(t, conn, &ack)
	assert.Equal(t, "INVALID_JSON", ack.Code)

	require.NoError(t, conn.WriteJSON(ClientMessage{Type: "ping"}))
	readJSON(t, conn, &ack)
	assert.Equal(t, "pong", ack.Type)
}

func TestHub_InvalidQuery(t *testing.T) {
	hub := NewHub("node-a", nil)
	srv := newServer(t, hub)

	resp, err := http.Get(srv.URL + "/ws/inventory?inventory_id=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHub_RelaySkipsOwnEvents(t *testing.T) {
	hub := NewHub("node-a", nil)

	own, err := json.Marshal(Event{Type: EventInventoryChanged, InventoryID: 1, Origin: "node-a"})
	require.NoError(t, err)
	remote, err := json.Marshal(Event{Type: EventInventoryChanged, InventoryID: 1, Origin: "node-b"})
	require.NoError(t, err)

	assert.False(t, hub.relay(string(own)))
	assert.True(t, hub.relay(string(remote)))
	assert.False(t, hub.relay("not json"))
}

type recorder struct{ ids []int64 }

func (r *recorder) InventoryChanged(_ context.Context, id int64, _ string, _ any) {
	r.ids = append(r.ids, id)
}

func TestMultiNotifier(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	MultiNotifier{a, nil, b}.InventoryChanged(context.Background(), 5, "receipt.updated", nil)
	assert.Equal(t, []int64{5}, a.ids)
	assert.Equal(t, []int64{5}, b.ids)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://ops.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws/inventory", nil)
	assert.True(t, check(req), "non-browser clients send no origin")

	req.Header.Set("Origin", "https://ops.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
