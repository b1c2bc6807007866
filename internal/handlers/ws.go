package handlers

import (
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/security"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/services"
)

// WSHandler upgrades HTTP requests to game sessions.
type WSHandler struct {
	coordinator *services.Coordinator
	metrics     *services.Metrics
	origins     *security.OriginValidator
}

func NewWSHandler(coordinator *services.Coordinator, metrics *services.Metrics, origins *security.OriginValidator) *WSHandler {
	return &WSHandler{
		coordinator: coordinator,
		metrics:     metrics,
		origins:     origins,
	}
}

// HandleWebSocket accepts a connection and starts its pumps. The session
// stays anonymous until its first join message; the room code in the URL is
// informational only (the join payload is authoritative).
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.origins.GetAcceptOptions())
	if err != nil {
		log.Printf("❌ WebSocket accept failed: %v", err)
		return
	}

	h.metrics.IncrementConnections()
	client := services.NewClient(conn, h.coordinator)
	client.Start()
}
