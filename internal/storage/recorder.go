// Package storage abstracts the external persistence service that records
// finished games and lifetime player statistics. Recording is best effort:
// a failure is logged and swallowed, it never re-opens a finished game or
// blocks gameplay.
package storage

import (
	"context"
	"log"
	"time"
)

// MoveRecord is one confirmed move in history order.
type MoveRecord struct {
	EdgeID   string `json:"edgeId"`
	PlayerID string `json:"playerId"`
}

// GameSummary is everything persisted for one finished game.
type GameSummary struct {
	RoomCode   string         `json:"roomCode"`
	RoomID     string         `json:"roomId"`
	Rows       int            `json:"rows"`
	Cols       int            `json:"cols"`
	WinnerID   string         `json:"winnerId,omitempty"`
	IsDraw     bool           `json:"isDraw"`
	Reason     string         `json:"reason"`
	Scores     map[string]int `json:"scores"`
	Moves      []MoveRecord   `json:"moves"`
	StartedAt  time.Time      `json:"startedAt"`
	FinishedAt time.Time      `json:"finishedAt"`
}

// Recorder is invoked once per finished game.
type Recorder interface {
	RecordGame(ctx context.Context, summary *GameSummary) error
}

// LogRecorder is the local fallback: it only logs the summary. It stands in
// wherever the real persistence service is absent.
type LogRecorder struct{}

func NewLogRecorder() *LogRecorder {
	return &LogRecorder{}
}

func (r *LogRecorder) RecordGame(_ context.Context, s *GameSummary) error {
	log.Printf("✓ Game finished: room=%s winner=%s draw=%v reason=%s moves=%d",
		s.RoomCode, s.WinnerID, s.IsDraw, s.Reason, len(s.Moves))
	return nil
}
