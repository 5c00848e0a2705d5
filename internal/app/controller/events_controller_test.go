package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	ws "github.com/ikkim/shopgenie-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEventsControllerTest(t *testing.T) (*engine.Engine, *ws.Hub, string) {
	e := setupTestEngine(t)
	hub := ws.NewHub(func() interface{} { return e.State() })
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	unsubscribe := e.Subscribe(func(evt engine.Event) {
		_ = hub.Publish("event", evt)
	})
	t.Cleanup(unsubscribe)

	ctrl := NewEventsController(hub, []string{"http://shop.test"})
	router := newTestRouter()
	router.GET("/ws", ctrl.Stream)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return e, hub, "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
}

func TestEventsController_StreamsStateChanges(t *testing.T) {
	e, hub, url := setupEventsControllerTest(t)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err = e.ToggleWishlist(context.Background(), "5")
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string       `json:"type"`
		Payload engine.Event `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "wishlist", string(msg.Payload.Store))
	require.Len(t, msg.Payload.State.Wishlist, 1)
	assert.Equal(t, "5", msg.Payload.State.Wishlist[0].ID)
}

func TestEventsController_RejectsForeignOrigin(t *testing.T) {
	_, _, url := setupEventsControllerTest(t)

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://shop.test")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	conn.Close()
}
