// Package mirror is the client-side shadow of a room's drawn edges. A
// player's own move is applied locally before the server round-trip, tagged
// provisional, then either upgraded to confirmed by the authoritative
// broadcast or rolled back on rejection. The mirror is single-threaded with
// respect to its own event stream.
package mirror

import (
	"github.com/Louislam09/dots-and-boxes-game-sub000/internal/models"
)

// Edge is a mirrored line plus its confirmation state.
type Edge struct {
	ID        string
	DotA      int
	DotB      int
	PlayerID  string
	Color     string
	Confirmed bool
}

// Mirror keeps its own edge collection separate from the authoritative one.
// Connectivity is derived state: it always equals the union of the stored
// edges, which is what makes rollback a simple rebuild.
type Mirror struct {
	rows, cols   int
	edges        map[string]*Edge
	connectivity map[int]map[int]bool
}

// New creates an empty mirror for a rows x cols dot grid.
func New(rows, cols int) *Mirror {
	return &Mirror{
		rows:         rows,
		cols:         cols,
		edges:        make(map[string]*Edge),
		connectivity: make(map[int]map[int]bool),
	}
}

// Predict validates the local player's move with the same rule the server
// uses and, if legal, inserts a provisional edge so the move cannot be
// re-attempted while the submission is in flight. Returns the provisional
// edge, or the same rejection the server would produce.
func (m *Mirror) Predict(dotA, dotB int, playerID, color string) (*Edge, error) {
	if dotA == dotB || !models.InRange(dotA, m.rows, m.cols) || !models.InRange(dotB, m.rows, m.cols) {
		return nil, models.NewGameError(models.ErrInvalidDots, "invalid dot pair")
	}
	if m.Connected(dotA, dotB) {
		return nil, models.NewGameError(models.ErrAlreadyConnected, "dots already connected")
	}
	if !models.Adjacent(dotA, dotB, m.rows, m.cols) {
		return nil, models.NewGameError(models.ErrNotAdjacent, "dots are not adjacent")
	}

	e := m.insert(dotA, dotB, playerID, color, false)
	return e, nil
}

// Confirm applies an authoritative move broadcast. If the edge id already
// exists (our own prediction coming back) it is upgraded in place rather
// than duplicated; moves by other players are inserted as confirmed.
func (m *Mirror) Confirm(dotA, dotB int, playerID, color string) *Edge {
	id := models.EdgeID(dotA, dotB)
	if e, ok := m.edges[id]; ok {
		e.Confirmed = true
		e.PlayerID = playerID
		e.Color = color
		return e
	}
	return m.insert(dotA, dotB, playerID, color, true)
}

// RejectPending discards every provisional edge and reverts connectivity to
// the last authoritative state. Called when the coordinator rejects a
// submission (e.g. a concurrent conflicting move was processed first).
func (m *Mirror) RejectPending() int {
	dropped := 0
	for id, e := range m.edges {
		if !e.Confirmed {
			delete(m.edges, id)
			dropped++
		}
	}
	if dropped > 0 {
		m.rebuildConnectivity()
	}
	return dropped
}

// SyncAuthoritative replaces the whole mirror with a server snapshot
// (used on rejoin).
func (m *Mirror) SyncAuthoritative(rows, cols int, lines []*models.Line) {
	m.rows = rows
	m.cols = cols
	m.edges = make(map[string]*Edge, len(lines))
	for _, l := range lines {
		m.insert(l.DotA, l.DotB, l.PlayerID, l.Color, true)
	}
	m.rebuildConnectivity()
}

// Connected reports whether the two dots are joined in the local view,
// provisional edges included.
func (m *Mirror) Connected(a, b int) bool {
	return m.connectivity[a][b]
}

// Edge returns the mirrored edge for a dot pair, if present.
func (m *Mirror) Edge(dotA, dotB int) (*Edge, bool) {
	e, ok := m.edges[models.EdgeID(dotA, dotB)]
	return e, ok
}

// Len returns the number of mirrored edges.
func (m *Mirror) Len() int {
	return len(m.edges)
}

// PendingCount returns the number of provisional (unconfirmed) edges.
func (m *Mirror) PendingCount() int {
	n := 0
	for _, e := range m.edges {
		if !e.Confirmed {
			n++
		}
	}
	return n
}

func (m *Mirror) insert(dotA, dotB int, playerID, color string, confirmed bool) *Edge {
	pair := models.NewDotPair(dotA, dotB)
	e := &Edge{
		ID:        models.EdgeID(dotA, dotB),
		DotA:      pair.A,
		DotB:      pair.B,
		PlayerID:  playerID,
		Color:     color,
		Confirmed: confirmed,
	}
	m.edges[e.ID] = e
	m.connect(pair.A, pair.B)
	return e
}

func (m *Mirror) connect(a, b int) {
	if m.connectivity[a] == nil {
		m.connectivity[a] = make(map[int]bool)
	}
	if m.connectivity[b] == nil {
		m.connectivity[b] = make(map[int]bool)
	}
	m.connectivity[a][b] = true
	m.connectivity[b][a] = true
}

func (m *Mirror) rebuildConnectivity() {
	m.connectivity = make(map[int]map[int]bool)
	for _, e := range m.edges {
		m.connect(e.DotA, e.DotB)
	}
}
