package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/ikkim/shopgenie-backend/pkg/logger"
)

const (
	// Rate limiting: messages accepted from one client per second
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

// ErrHubStopped is returned when registering with a hub that has shut down.
var ErrHubStopped = errors.New("websocket hub stopped")

// ClientMessage is a request from a connected client.
type ClientMessage struct {
	Type string `json:"type"` // "sync" asks for the current state
}

// ServerMessage is everything the hub pushes to clients.
type ServerMessage struct {
	Type    string      `json:"type"` // "state" or "event"
	Payload interface{} `json:"payload"`
}

// Client is one websocket connection.
type Client struct {
	ID            string
	Hub           *Hub
	Conn          *Conn
	Send          chan []byte
	MessageCount  int
	LastResetTime time.Time
	RateMu        sync.Mutex
}

func NewClient(id string, hub *Hub, conn *Conn) *Client {
	return &Client{
		ID:   id,
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, sendBufferSize),
	}
}

// Hub fans engine events out to every connected client.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	// snapshot answers "sync" requests
	snapshot func() interface{}

	// stopping is closed when Run begins shutting down; stopped is set under
	// mu once every client, queued ones included, has been closed.
	stopping chan struct{}
	stopped  bool

	mu sync.RWMutex
}

func NewHub(snapshot func() interface{}) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan []byte, 1024),
		snapshot:   snapshot,
		stopping:   make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if h.clients[client] {
				delete(h.clients, client)
				close(client.Send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"client_id": client.ID,
				"clients":   total,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow consumer, clean up asynchronously
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"client_id": client.ID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues a message for every client. Messages are dropped when the
// broadcast queue is full; state is resent on the next change anyway.
func (h *Hub) Publish(msgType string, payload interface{}) error {
	data, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return err
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"type": msgType,
		})
	}
	return nil
}

// shutdown closes every registered client and every client still waiting in
// the register queue. Later registrations are refused.
func (h *Hub) shutdown() {
	close(h.stopping)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.stopped = true
	for client := range h.clients {
		close(client.Send)
		delete(h.clients, client)
	}
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		default:
			logger.Info("WebSocket hub stopped", nil)
			return
		}
	}
}

// Register queues a client for the hub. It returns ErrHubStopped once Run has
// returned, and the caller keeps ownership of the connection.
func (h *Hub) Register(client *Client) error {
	// the read lock keeps shutdown from draining the queue mid-send
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.stopped {
		return ErrHubStopped
	}
	select {
	case h.register <- client:
		return nil
	case <-h.stopping:
		return ErrHubStopped
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stopping:
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage answers a client request. Clients sending more than
// maxMessagesPerSecond are ignored for the rest of that second.
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.RateMu.Lock()
	now := time.Now()
	if now.Sub(client.LastResetTime) >= time.Second {
		client.MessageCount = 0
		client.LastResetTime = now
	}
	client.MessageCount++
	count := client.MessageCount
	client.RateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"client_id": client.ID,
			"count":     count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"client_id": client.ID,
			"error":     err.Error(),
		})
		return
	}

	if msg.Type == "sync" && h.snapshot != nil {
		h.sendTo(client, "state", h.snapshot())
	}
}

func (h *Hub) sendTo(client *Client, msgType string, payload interface{}) {
	data, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		logger.Error("Failed to marshal message", err, nil)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.Send <- data:
	default:
		logger.Warn("Client send buffer full, reply dropped", map[string]interface{}{
			"client_id": client.ID,
		})
	}
}
