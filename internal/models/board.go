package models

import (
	"fmt"
	"strconv"
)

// Dot is a lattice vertex. Connections holds the ids of dots joined to it
// by a drawn line; it only ever grows within a game.
type Dot struct {
	ID          int          `json:"id"`
	Row         int          `json:"row"`
	Col         int          `json:"col"`
	Connections map[int]bool `json:"connections"`
}

// Line is a drawn edge between two adjacent dots. DotA/DotB are normalized
// so DotA < DotB; a line is created once and never mutated.
type Line struct {
	ID       string `json:"id"`
	DotA     int    `json:"dotA"`
	DotB     int    `json:"dotB"`
	PlayerID string `json:"playerId"`
	Color    string `json:"color"`
}

// DotPair is an unordered dot pair normalized to A < B.
type DotPair struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewDotPair normalizes two dot ids into a canonical pair.
func NewDotPair(a, b int) DotPair {
	if a > b {
		a, b = b, a
	}
	return DotPair{A: a, B: b}
}

// EdgeID returns the canonical "min-max" identifier both endpoints agree on.
func EdgeID(a, b int) string {
	p := NewDotPair(a, b)
	return strconv.Itoa(p.A) + "-" + strconv.Itoa(p.B)
}

// Square is a unit cell identified by its top-left dot. Bounds holds the
// four bounding dot pairs (top, right, bottom, left), computed once at
// generation so edge matching is a membership check rather than ad-hoc
// arithmetic at move time.
type Square struct {
	ID           int        `json:"id"`
	TopLeftDotID int        `json:"topLeftDotId"`
	Bounds       [4]DotPair `json:"bounds"`
	Drawn        [4]bool    `json:"drawn"`
	IsComplete   bool       `json:"isComplete"`
	CompletedBy  string     `json:"completedBy,omitempty"`
	Color        string     `json:"color,omitempty"`
}

// MarkEdge records the given edge as drawn if it is one of the square's
// bounding pairs. Returns true if a flag changed.
func (s *Square) MarkEdge(p DotPair) bool {
	for i, b := range s.Bounds {
		if b == p {
			if s.Drawn[i] {
				return false
			}
			s.Drawn[i] = true
			return true
		}
	}
	return false
}

// AllDrawn reports whether all four bounding edges are present.
func (s *Square) AllDrawn() bool {
	return s.Drawn[0] && s.Drawn[1] && s.Drawn[2] && s.Drawn[3]
}

// InRange reports whether id is a valid dot id for the grid.
func InRange(id, rows, cols int) bool {
	return id >= 0 && id < rows*cols
}

// Adjacent reports whether two dots are grid neighbours: same row and
// columns differ by one, or same column and rows differ by one. Diagonals
// are never adjacent. Both callers of the rule (server validation and the
// client mirror) go through this one function.
func Adjacent(a, b, rows, cols int) bool {
	if !InRange(a, rows, cols) || !InRange(b, rows, cols) || a == b {
		return false
	}
	rowA, colA := a/cols, a%cols
	rowB, colB := b/cols, b%cols
	if rowA == rowB {
		return colA-colB == 1 || colB-colA == 1
	}
	if colA == colB {
		return rowA-rowB == 1 || rowB-rowA == 1
	}
	return false
}

// GenerateBoard builds the static lattice for a rows x cols dot grid:
// rows*cols dots in row-major id order and (rows-1)*(cols-1) squares in
// enumeration order. Deterministic and side-effect free; called at game
// start and on every rematch reset.
func GenerateBoard(rows, cols int) (map[int]*Dot, []*Square, error) {
	if rows < 2 || cols < 2 {
		return nil, nil, fmt.Errorf("grid must be at least 2x2 dots, got %dx%d", rows, cols)
	}

	dots := make(map[int]*Dot, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			id := r*cols + c
			dots[id] = &Dot{
				ID:          id,
				Row:         r,
				Col:         c,
				Connections: make(map[int]bool),
			}
		}
	}

	squares := make([]*Square, 0, (rows-1)*(cols-1))
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			tl := r*cols + c
			squares = append(squares, &Square{
				ID:           len(squares),
				TopLeftDotID: tl,
				Bounds: [4]DotPair{
					NewDotPair(tl, tl+1),           // top
					NewDotPair(tl+1, tl+cols+1),    // right
					NewDotPair(tl+cols, tl+cols+1), // bottom
					NewDotPair(tl, tl+cols),        // left
				},
			})
		}
	}

	return dots, squares, nil
}
