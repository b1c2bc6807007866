package services

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/config"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
)

// Sender is the transport half of a session: anything that can push an
// encoded frame to one client. The websocket Client implements it; tests
// substitute an in-memory recorder.
type Sender interface {
	Send(data []byte) bool
}

// Session is one client connection's coordinator-facing handle: the sender
// plus the identity it acquired at join time.
type Session struct {
	mu       sync.Mutex
	sender   Sender
	roomCode string
	playerID string
}

func NewSession(sender Sender) *Session {
	return &Session{sender: sender}
}

// SetIdentity binds the session to a room and player after a successful join.
func (s *Session) SetIdentity(roomCode, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomCode = roomCode
	s.playerID = playerID
}

// Identity returns the room and player the session is bound to, empty
// strings before join.
func (s *Session) Identity() (roomCode, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode, s.playerID
}

// Send marshals and delivers a message to this session only.
func (s *Session) Send(msg *models.WSMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("❌ Error marshaling message: %v", err)
		return false
	}
	return s.SendRaw(data)
}

// SendRaw delivers an already-encoded frame.
func (s *Session) SendRaw(data []byte) bool {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()
	if sender == nil {
		return false
	}
	return sender.Send(data)
}

type Registration struct {
	RoomCode string
	Session  *Session
}

type BroadcastMessage struct {
	RoomCode string
	Message  *models.WSMessage
}

// Hub fans one authoritative event sequence out to every session in a room.
// Registrations and broadcasts flow through channels into the single Run
// loop, so all members observe events in the same order.
type Hub struct {
	rooms map[string]map[*Session]bool

	broadcast  chan *BroadcastMessage
	register   chan *Registration
	unregister chan *Registration

	metrics *Metrics
	mu      sync.RWMutex
}

func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Session]bool),
		broadcast:  make(chan *BroadcastMessage, config.HubBroadcastBufferSize),
		register:   make(chan *Registration),
		unregister: make(chan *Registration),
		metrics:    metrics,
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case reg := <-h.register:
			h.registerSession(reg)

		case reg := <-h.unregister:
			h.unregisterSession(reg)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) registerSession(reg *Registration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[reg.RoomCode] == nil {
		h.rooms[reg.RoomCode] = make(map[*Session]bool)
	}
	h.rooms[reg.RoomCode][reg.Session] = true

	log.Printf("✓ Session registered: room=%s (connections in room: %d)",
		reg.RoomCode, len(h.rooms[reg.RoomCode]))
}

func (h *Hub) unregisterSession(reg *Registration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessions, ok := h.rooms[reg.RoomCode]; ok {
		if _, exists := sessions[reg.Session]; exists {
			delete(sessions, reg.Session)
			if len(sessions) == 0 {
				delete(h.rooms, reg.RoomCode)
			}
		}
	}
}

func (h *Hub) broadcastToRoom(msg *BroadcastMessage) {
	h.mu.RLock()
	sessions := make([]*Session, 0, len(h.rooms[msg.RoomCode]))
	for s := range h.rooms[msg.RoomCode] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	if len(sessions) == 0 {
		return
	}

	data, err := json.Marshal(msg.Message)
	if err != nil {
		log.Printf("❌ Error marshaling broadcast: %v", err)
		return
	}

	for _, s := range sessions {
		if s.SendRaw(data) {
			if h.metrics != nil {
				h.metrics.IncrementMessagesSent()
			}
		} else if h.metrics != nil {
			h.metrics.IncrementBroadcastErrors()
		}
	}
}

// BroadcastToRoom queues a message for fan-out to every session in a room.
func (h *Hub) BroadcastToRoom(roomCode string, message *models.WSMessage) {
	h.broadcast <- &BroadcastMessage{RoomCode: roomCode, Message: message}
}

// Register adds a session to a room's fan-out set.
func (h *Hub) Register(roomCode string, s *Session) {
	h.register <- &Registration{RoomCode: roomCode, Session: s}
}

// Unregister removes a session from a room's fan-out set.
func (h *Hub) Unregister(roomCode string, s *Session) {
	h.unregister <- &Registration{RoomCode: roomCode, Session: s}
}
