package models

import (
	"time"
)

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// GameMode selects the board size for a room's games.
type GameMode string

const (
	ModeClassic GameMode = "classic" // 6x6 dots, 25 squares
	ModeQuick   GameMode = "quick"   // 4x4 dots, 9 squares
)

// GridSize returns the dot-grid dimensions for the mode. Unknown modes fall
// back to classic.
func (m GameMode) GridSize() (rows, cols int) {
	switch m {
	case ModeQuick:
		return 4, 4
	default:
		return 6, 6
	}
}

// GameState is one playthrough's mutable state. A room replaces its
// GameState wholesale on rematch rather than mutating it in place.
type GameState struct {
	Status        GameStatus       `json:"status"`
	Rows          int              `json:"rows"`
	Cols          int              `json:"cols"`
	Dots          map[int]*Dot     `json:"dots"`
	Lines         map[string]*Line `json:"lines"`
	Squares       []*Square        `json:"squares"`
	MoveHistory   []*Line          `json:"moveHistory"`
	CurrentTurnID string           `json:"currentTurnId,omitempty"`
	MoveCount     int              `json:"moveCount"`
	StartedAt     time.Time        `json:"startedAt,omitempty"`
}

// NewGameState generates a fresh board in the waiting state.
func NewGameState(rows, cols int) (*GameState, error) {
	dots, squares, err := GenerateBoard(rows, cols)
	if err != nil {
		return nil, err
	}
	return &GameState{
		Status:      StatusWaiting,
		Rows:        rows,
		Cols:        cols,
		Dots:        dots,
		Squares:     squares,
		Lines:       make(map[string]*Line),
		MoveHistory: make([]*Line, 0),
	}, nil
}

// Connected reports whether the two dots are already joined by a line.
func (g *GameState) Connected(a, b int) bool {
	d, ok := g.Dots[a]
	return ok && d.Connections[b]
}

// CompleteSquareCount counts completed squares, the source of truth every
// score projection is checked against.
func (g *GameState) CompleteSquareCount() int {
	n := 0
	for _, s := range g.Squares {
		if s.IsComplete {
			n++
		}
	}
	return n
}

// MoveEffect describes the outcome of one confirmed move.
type MoveEffect struct {
	Line             *Line
	CompletedSquares []*Square
	NextPlayerID     string
	Scores           map[string]int
	GameOver         bool
	WinnerID         string
	IsDraw           bool
}
