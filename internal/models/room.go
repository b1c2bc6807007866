package models

import (
	"sync"
	"time"
)

// Room is a persistent (multi-game) grouping of players sharing a room code.
// Mu guards the roster, GameState and activity fields; the separate move
// guard serializes move submissions (see TryBeginMove). Both locks live on
// the Room itself so their lifetime is the room's lifetime.
type Room struct {
	Code         string
	ID           string
	HostID       string
	GameMode     GameMode
	MaxPlayers   int
	Players      map[string]*Player
	Order        []string // insertion order, drives turn rotation
	Game         *GameState
	RematchVotes map[string]bool
	LastActivity time.Time

	Mu     sync.RWMutex
	moveMu sync.Mutex
}

func NewRoom(code, id string, mode GameMode, maxPlayers int) *Room {
	return &Room{
		Code:         code,
		ID:           id,
		GameMode:     mode,
		MaxPlayers:   maxPlayers,
		Players:      make(map[string]*Player),
		Order:        make([]string, 0),
		RematchVotes: make(map[string]bool),
		LastActivity: time.Now(),
	}
}

// TryBeginMove attempts to acquire the room's exclusive move guard without
// blocking. A false return means another move is in flight and the caller
// must reject, not queue.
func (r *Room) TryBeginMove() bool {
	return r.moveMu.TryLock()
}

// EndMove releases the move guard.
func (r *Room) EndMove() {
	r.moveMu.Unlock()
}

// Touch updates the staleness timestamp. Caller holds Mu.
func (r *Room) Touch() {
	r.LastActivity = time.Now()
}

// AddPlayer appends a player to the roster, granting host rights to the
// first joiner. Caller holds Mu.
func (r *Room) AddPlayer(p *Player) {
	if len(r.Order) == 0 {
		p.IsHost = true
		r.HostID = p.ID
	}
	r.Players[p.ID] = p
	r.Order = append(r.Order, p.ID)
}

// RemovePlayer deletes a player from the roster, cancelling any abandonment
// timer and transferring host rights to the earliest remaining member.
// Caller holds Mu.
func (r *Room) RemovePlayer(id string) *Player {
	p, ok := r.Players[id]
	if !ok {
		return nil
	}
	p.CancelAbandonTimer()
	delete(r.Players, id)
	delete(r.RematchVotes, id)
	for i, pid := range r.Order {
		if pid == id {
			r.Order = append(r.Order[:i], r.Order[i+1:]...)
			break
		}
	}
	if r.HostID == id && len(r.Order) > 0 {
		r.HostID = r.Order[0]
		r.Players[r.HostID].IsHost = true
	}
	return p
}

// NextPlayerAfter returns the roster member following id in insertion
// order, wrapping around. Caller holds Mu.
func (r *Room) NextPlayerAfter(id string) string {
	if len(r.Order) == 0 {
		return ""
	}
	for i, pid := range r.Order {
		if pid == id {
			return r.Order[(i+1)%len(r.Order)]
		}
	}
	return r.Order[0]
}

// ConnectedCount counts roster members whose liveness flag is set.
// Caller holds Mu.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Roster returns players in insertion order. Caller holds Mu.
func (r *Room) Roster() []*Player {
	out := make([]*Player, 0, len(r.Order))
	for _, id := range r.Order {
		out = append(out, r.Players[id])
	}
	return out
}

// Scores projects every roster member's cached score. Caller holds Mu.
func (r *Room) Scores() map[string]int {
	scores := make(map[string]int, len(r.Players))
	for id, p := range r.Players {
		scores[id] = p.Score
	}
	return scores
}
