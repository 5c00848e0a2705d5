package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHubTest(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(func() interface{} {
		return map[string]int{"cart_lines": 2}
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient("test-client", hub, &Conn{conn})
		if err := hub.Register(client); err != nil {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump()
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	return hub, conn
}

func readServerMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_PublishReachesClients(t *testing.T) {
	hub, conn := setupHubTest(t)

	require.NoError(t, hub.Publish("event", map[string]string{"store": "cart"}))

	msg := readServerMessage(t, conn)
	assert.Equal(t, "event", msg["type"])
	assert.Equal(t, "cart", msg["payload"].(map[string]interface{})["store"])
}

func TestHub_SyncRepliesWithState(t *testing.T) {
	_, conn := setupHubTest(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"sync"}`)))

	msg := readServerMessage(t, conn)
	assert.Equal(t, "state", msg["type"])
	assert.Equal(t, float64(2), msg["payload"].(map[string]interface{})["cart_lines"])
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, conn := setupHubTest(t)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_IgnoresGarbage(t *testing.T) {
	hub, conn := setupHubTest(t)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, hub.Publish("event", "after"))

	msg := readServerMessage(t, conn)
	assert.Equal(t, "after", msg["payload"])
}

func TestHub_RejectsRegistrationAfterStop(t *testing.T) {
	hub := NewHub(func() interface{} { return nil })
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	early := NewClient("early", hub, nil)
	require.NoError(t, hub.Register(early))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped

	_, open := <-early.Send
	assert.False(t, open, "registered client must be closed on stop")

	late := NewClient("late", hub, nil)
	assert.ErrorIs(t, hub.Register(late), ErrHubStopped)
	assert.Zero(t, hub.ClientCount())

	// unregistering after stop must not block
	done := make(chan struct{})
	go func() {
		hub.Unregister(late)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after stop")
	}
}

func TestHub_ClosesClientsQueuedDuringStop(t *testing.T) {
	hub := NewHub(func() interface{} { return nil })
	queued := NewClient("queued", hub, nil)
	require.NoError(t, hub.Register(queued))

	// The client is closed whether Run accepts it first or shutdown drains it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hub.Run(ctx)

	_, open := <-queued.Send
	assert.False(t, open)
	assert.ErrorIs(t, hub.Register(NewClient("after", hub, nil)), ErrHubStopped)
}
