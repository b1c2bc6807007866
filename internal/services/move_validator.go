package services

import (
	"fmt"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
)

// MoveValidator decides the legality of a proposed move against the current
// game state. It is a pure function of its inputs: no side effects, so it is
// independently testable against the full adjacency/duplicate matrix.
type MoveValidator struct{}

func NewMoveValidator() *MoveValidator {
	return &MoveValidator{}
}

// Validate runs the legality checks in order and returns the first failing
// reason as a *models.GameError, or nil when the move is legal.
//
// Order: game must be playing; it must be the requester's turn; both dots
// must be in range and distinct; the dots must not already be connected;
// the dots must be grid-adjacent.
func (v *MoveValidator) Validate(g *models.GameState, dotA, dotB int, playerID string) error {
	if g == nil || g.Status != models.StatusPlaying {
		return models.NewGameError(models.ErrGameNotActive, "game is not in progress")
	}

	if g.CurrentTurnID != playerID {
		return models.NewGameError(models.ErrNotYourTurn, "it is not your turn")
	}

	if dotA == dotB || !models.InRange(dotA, g.Rows, g.Cols) || !models.InRange(dotB, g.Rows, g.Cols) {
		return models.NewGameError(models.ErrInvalidDots,
			fmt.Sprintf("dots %d and %d are not a valid pair for a %dx%d grid", dotA, dotB, g.Rows, g.Cols))
	}

	if g.Connected(dotA, dotB) {
		return models.NewGameError(models.ErrAlreadyConnected,
			fmt.Sprintf("dots %d and %d are already connected", dotA, dotB))
	}

	if !models.Adjacent(dotA, dotB, g.Rows, g.Cols) {
		return models.NewGameError(models.ErrNotAdjacent,
			fmt.Sprintf("dots %d and %d are not adjacent", dotA, dotB))
	}

	return nil
}
