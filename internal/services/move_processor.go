package services

import (
	"time"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
)

// MoveProcessor applies an already-validated move to a room's game state:
// connectivity, square completion, scores, next turn and game over. It never
// touches the registry; the caller holds the room's locks.
type MoveProcessor struct{}

func NewMoveProcessor() *MoveProcessor {
	return &MoveProcessor{}
}

// Apply mutates the game state for the move and returns its effect.
func (p *MoveProcessor) Apply(room *models.Room, dotA, dotB int, playerID string) *models.MoveEffect {
	g := room.Game
	player := room.Players[playerID]

	pair := models.NewDotPair(dotA, dotB)
	line := &models.Line{
		ID:       models.EdgeID(dotA, dotB),
		DotA:     pair.A,
		DotB:     pair.B,
		PlayerID: playerID,
		Color:    player.Color,
	}

	g.Lines[line.ID] = line
	g.Dots[pair.A].Connections[pair.B] = true
	g.Dots[pair.B].Connections[pair.A] = true
	g.MoveHistory = append(g.MoveHistory, line)
	g.MoveCount++

	// A single edge bounds at most two squares, the cells on either side of
	// it; the precomputed bounding-pair tables make that a membership check.
	completed := make([]*models.Square, 0, 2)
	for _, sq := range g.Squares {
		if sq.IsComplete {
			continue
		}
		if sq.MarkEdge(pair) && sq.AllDrawn() {
			sq.IsComplete = true
			sq.CompletedBy = playerID
			sq.Color = player.Color
			completed = append(completed, sq)
		}
	}

	// Full recount from the square set rather than an incremental delta, so
	// scores cannot drift from their source of truth. Squares completed by a
	// player who has since left the roster stay on the board but no longer
	// score: the map covers current members only, so a departed id can never
	// win the game.
	scores := make(map[string]int, len(room.Players))
	for id := range room.Players {
		scores[id] = 0
	}
	for _, sq := range g.Squares {
		if !sq.IsComplete {
			continue
		}
		if _, member := scores[sq.CompletedBy]; member {
			scores[sq.CompletedBy]++
		}
	}
	for id, pl := range room.Players {
		pl.Score = scores[id]
	}

	effect := &models.MoveEffect{
		Line:             line,
		CompletedSquares: completed,
		Scores:           scores,
		GameOver:         g.CompleteSquareCount() == len(g.Squares),
	}

	if effect.GameOver {
		g.Status = models.StatusFinished
		effect.WinnerID, effect.IsDraw = winnerByScore(scores)
	} else if len(completed) > 0 {
		// Completing any number of squares grants exactly one extra turn.
		effect.NextPlayerID = playerID
	} else {
		effect.NextPlayerID = room.NextPlayerAfter(playerID)
	}
	g.CurrentTurnID = effect.NextPlayerID

	room.LastActivity = time.Now()
	return effect
}

// winnerByScore picks the highest scorer, reporting a draw when the top
// score is shared.
func winnerByScore(scores map[string]int) (winnerID string, isDraw bool) {
	best := -1
	for id, s := range scores {
		switch {
		case s > best:
			best = s
			winnerID = id
			isDraw = false
		case s == best:
			isDraw = true
		}
	}
	if isDraw {
		return "", true
	}
	return winnerID, false
}
