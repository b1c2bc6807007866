package models

import (
	"sync"
	"time"
)

// PlayerColors is the assignment palette, indexed by join order.
var PlayerColors = []string{
	"#e74c3c", // red
	"#3498db", // blue
	"#2ecc71", // green
	"#f1c40f", // yellow
	"#9b59b6", // purple
	"#e67e22", // orange
}

// Player is a roster member. Score is a cached projection of the squares
// completed by the player and is recomputed after every confirmed move.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Connected bool      `json:"connected"`
	IsHost    bool      `json:"isHost"`
	Score     int       `json:"score"`
	JoinedAt  time.Time `json:"joinedAt"`

	// The abandonment timer lives on the record so removal of the record
	// always cancels it; no shared timer map to leak across rooms.
	timerMu      sync.Mutex
	abandonTimer *time.Timer
}

func NewPlayer(id, name, color string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Color:     color,
		Connected: true,
		JoinedAt:  time.Now(),
	}
}

// SetAbandonTimer installs the timer, replacing (and stopping) any prior one.
func (p *Player) SetAbandonTimer(t *time.Timer) {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.abandonTimer != nil {
		p.abandonTimer.Stop()
	}
	p.abandonTimer = t
}

// CancelAbandonTimer stops any pending timer. Returns true if one was armed.
func (p *Player) CancelAbandonTimer() bool {
	p.timerMu.Lock()
	defer p.timerMu.Unlock()
	if p.abandonTimer == nil {
		return false
	}
	stopped := p.abandonTimer.Stop()
	p.abandonTimer = nil
	return stopped
}
