package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/services"
)

func newPlayingGame(t *testing.T, rows, cols int, turnID string) *models.GameState {
	t.Helper()
	g, err := models.NewGameState(rows, cols)
	require.NoError(t, err)
	g.Status = models.StatusPlaying
	g.CurrentTurnID = turnID
	return g
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	ge, ok := err.(*models.GameError)
	require.True(t, ok, "expected *models.GameError, got %T", err)
	return ge.Code
}

func TestMoveValidator_Validate(t *testing.T) {
	v := services.NewMoveValidator()

	t.Run("game must be playing", func(t *testing.T) {
		g, err := models.NewGameState(3, 3)
		require.NoError(t, err)
		g.CurrentTurnID = "alice"

		assert.Equal(t, models.ErrGameNotActive, errCode(t, v.Validate(g, 0, 1, "alice")))

		assert.Equal(t, models.ErrGameNotActive, errCode(t, v.Validate(nil, 0, 1, "alice")))

		g.Status = models.StatusFinished
		assert.Equal(t, models.ErrGameNotActive, errCode(t, v.Validate(g, 0, 1, "alice")))
	})

	t.Run("turn is checked before dot legality", func(t *testing.T) {
		g := newPlayingGame(t, 3, 3, "alice")
		// Illegal dots AND wrong player: turn must be the reported reason.
		assert.Equal(t, models.ErrNotYourTurn, errCode(t, v.Validate(g, -1, 99, "bob")))
	})

	t.Run("dot range and distinctness", func(t *testing.T) {
		g := newPlayingGame(t, 3, 3, "alice")

		tests := []struct {
			name       string
			dotA, dotB int
		}{
			{"negative dot", -1, 0},
			{"dot beyond grid", 0, 9},
			{"both out of range", -5, 100},
			{"same dot", 4, 4},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				assert.Equal(t, models.ErrInvalidDots, errCode(t, v.Validate(g, tt.dotA, tt.dotB, "alice")))
			})
		}
	})

	t.Run("duplicate edge is rejected before adjacency of fresh pairs", func(t *testing.T) {
		g := newPlayingGame(t, 3, 3, "alice")
		g.Dots[0].Connections[1] = true
		g.Dots[1].Connections[0] = true

		assert.Equal(t, models.ErrAlreadyConnected, errCode(t, v.Validate(g, 0, 1, "alice")))
		assert.Equal(t, models.ErrAlreadyConnected, errCode(t, v.Validate(g, 1, 0, "alice")),
			"duplicate detection is orientation independent")
	})

	t.Run("full adjacency matrix", func(t *testing.T) {
		// Property: accepted iff distinct, in range, unconnected, adjacent.
		const rows, cols = 3, 4
		g := newPlayingGame(t, rows, cols, "alice")

		for a := 0; a < rows*cols; a++ {
			for b := 0; b < rows*cols; b++ {
				err := v.Validate(g, a, b, "alice")
				if models.Adjacent(a, b, rows, cols) {
					assert.NoErrorf(t, err, "dots %d,%d should be legal", a, b)
				} else {
					assert.Errorf(t, err, "dots %d,%d should be rejected", a, b)
				}
			}
		}
	})

	t.Run("corner and edge cells", func(t *testing.T) {
		g := newPlayingGame(t, 3, 3, "alice")

		tests := []struct {
			dotA, dotB int
			legal      bool
		}{
			{0, 1, true},  // top-left corner, right
			{0, 3, true},  // top-left corner, down
			{2, 5, true},  // top-right corner, down
			{8, 7, true},  // bottom-right corner, left
			{2, 3, false}, // row wrap
			{0, 4, false}, // diagonal
			{6, 4, false}, // diagonal
		}
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%d-%d", tt.dotA, tt.dotB), func(t *testing.T) {
				err := v.Validate(g, tt.dotA, tt.dotB, "alice")
				if tt.legal {
					assert.NoError(t, err)
				} else {
					assert.Equal(t, models.ErrNotAdjacent, errCode(t, err))
				}
			})
		}
	})

	t.Run("has no side effects", func(t *testing.T) {
		g := newPlayingGame(t, 2, 2, "alice")
		_ = v.Validate(g, 0, 1, "alice")

		assert.Empty(t, g.Dots[0].Connections)
		assert.Empty(t, g.Lines)
		assert.Zero(t, g.MoveCount)
	})
}
