package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ikkim/shopgenie-backend/internal/middleware"
	ws "github.com/ikkim/shopgenie-backend/internal/websocket"
)

type EventsController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewEventsController accepts websocket connections from the allowed origins.
// Requests without an Origin header (non-browser clients) are accepted.
func NewEventsController(hub *ws.Hub, allowedOrigins []string) *EventsController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &EventsController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin] || allowed["*"]
			},
		},
	}
}

// Stream upgrades to a websocket that receives every state change
// GET /ws
func (ctrl *EventsController) Stream(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, nil)
		return
	}

	client := ws.NewClient(uuid.NewString(), ctrl.hub, &ws.Conn{Conn: conn})
	if err := ctrl.hub.Register(client); err != nil {
		log.Warn("Rejecting WebSocket client", map[string]interface{}{
			"error": err.Error(),
		})
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
