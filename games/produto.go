package games

import (
	"encoding/json"
	"errors"
	"sort"
)

const produtoRadius = 4

// ProdutoColor is a piece color on the hex board. Placements are not
// restricted to the mover's own color.
type ProdutoColor string

const (
	ProdutoBlack ProdutoColor = "black"
	ProdutoWhite ProdutoColor = "white"
)

// HexCoord is an axial coordinate on the hex board.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

var hexDirections = [6]HexCoord{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, -1}, {-1, 1},
}

func hexOnBoard(c HexCoord) bool {
	abs := func(v int) int {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(c.Q) <= produtoRadius && abs(c.R) <= produtoRadius && abs(c.Q+c.R) <= produtoRadius
}

// produtoCellCount is the number of cells of a radius-4 hex board.
const produtoCellCount = 61

// ProdutoState is a Produto position. The board fills completely over the
// course of a game: one placement on the first move, two on every move
// after that.
type ProdutoState struct {
	pieces    map[HexCoord]ProdutoColor
	moveCount int
	toMove    Role
}

func (*ProdutoState) gameID() string { return ProdutoID }

// ProdutoPlacement puts one piece of the given color on an empty cell.
type ProdutoPlacement struct {
	Coord HexCoord     `json:"coord"`
	Color ProdutoColor `json:"color"`
}

type ProdutoMove struct {
	Placements []ProdutoPlacement `json:"placements"`
}

type produtoStateJSON struct {
	Pieces    []ProdutoPlacement `json:"pieces"`
	MoveCount int                `json:"moveCount"`
	ToMove    Role               `json:"toMove"`
}

type ProdutoEngine struct{}

func (ProdutoEngine) ID() string { return ProdutoID }

func (ProdutoEngine) InitialState(starting Role) State {
	if starting == RoleNone {
		starting = RoleP1
	}
	return &ProdutoState{pieces: map[HexCoord]ProdutoColor{}, toMove: starting}
}

func (ProdutoEngine) ParseMove(data json.RawMessage) (Move, error) {
	var mv ProdutoMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, err
	}
	return mv, nil
}

func (s *ProdutoState) requiredPlacements() int {
	if s.moveCount == 0 {
		return 1
	}
	return 2
}

func (e ProdutoEngine) Validate(st State, mv Move, role Role) bool {
	s, ok := st.(*ProdutoState)
	if !ok {
		return false
	}
	m, ok := mv.(ProdutoMove)
	if !ok {
		return false
	}
	if e.Terminal(st) || role != s.toMove {
		return false
	}
	if len(m.Placements) != s.requiredPlacements() {
		return false
	}
	seen := make(map[HexCoord]bool, len(m.Placements))
	for _, p := range m.Placements {
		if p.Color != ProdutoBlack && p.Color != ProdutoWhite {
			return false
		}
		if !hexOnBoard(p.Coord) {
			return false
		}
		if _, occupied := s.pieces[p.Coord]; occupied {
			return false
		}
		if seen[p.Coord] {
			return false
		}
		seen[p.Coord] = true
	}
	return true
}

func (e ProdutoEngine) Apply(st State, mv Move, role Role) (State, error) {
	if !e.Validate(st, mv, role) {
		return nil, errors.New("illegal placement set")
	}
	s := st.(*ProdutoState)
	m := mv.(ProdutoMove)
	next := &ProdutoState{
		pieces:    make(map[HexCoord]ProdutoColor, len(s.pieces)+len(m.Placements)),
		moveCount: s.moveCount + 1,
		toMove:    role.Other(),
	}
	for c, col := range s.pieces {
		next.pieces[c] = col
	}
	for _, p := range m.Placements {
		next.pieces[p.Coord] = p.Color
	}
	return next, nil
}

func (ProdutoEngine) Terminal(st State) bool {
	return len(st.(*ProdutoState).pieces) == produtoCellCount
}

// ProdutoScore is the product of the two largest connected groups of the
// color; a color with fewer than two groups scores zero.
func ProdutoScore(st State, color ProdutoColor) int {
	s := st.(*ProdutoState)
	visited := make(map[HexCoord]bool, len(s.pieces))
	var sizes []int
	for c, col := range s.pieces {
		if col != color || visited[c] {
			continue
		}
		size := 0
		stack := []HexCoord{c}
		visited[c] = true
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			size++
			for _, d := range hexDirections {
				n := HexCoord{cur.Q + d.Q, cur.R + d.R}
				if visited[n] || s.pieces[n] != color {
					continue
				}
				visited[n] = true
				stack = append(stack, n)
			}
		}
		sizes = append(sizes, size)
	}
	if len(sizes) < 2 {
		return 0
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	return sizes[0] * sizes[1]
}

// ProdutoPieceCount counts placed pieces of the color.
func ProdutoPieceCount(st State, color ProdutoColor) int {
	n := 0
	for _, col := range st.(*ProdutoState).pieces {
		if col == color {
			n++
		}
	}
	return n
}

func (e ProdutoEngine) Winner(st State) Outcome {
	if !e.Terminal(st) {
		return OutcomeNone
	}
	black := ProdutoScore(st, ProdutoBlack)
	white := ProdutoScore(st, ProdutoWhite)
	if black > white {
		return OutcomeP1
	}
	if white > black {
		return OutcomeP2
	}
	blackCount := ProdutoPieceCount(st, ProdutoBlack)
	whiteCount := ProdutoPieceCount(st, ProdutoWhite)
	if blackCount < whiteCount {
		return OutcomeP1
	}
	if whiteCount < blackCount {
		return OutcomeP2
	}
	return OutcomeDraw
}

func (ProdutoEngine) Turn(st State) Role {
	return st.(*ProdutoState).toMove
}

func (s *ProdutoState) emptyCells() []HexCoord {
	var empty []HexCoord
	for q := -produtoRadius; q <= produtoRadius; q++ {
		for r := -produtoRadius; r <= produtoRadius; r++ {
			c := HexCoord{q, r}
			if !hexOnBoard(c) {
				continue
			}
			if _, occupied := s.pieces[c]; !occupied {
				empty = append(empty, c)
			}
		}
	}
	return empty
}

func (e ProdutoEngine) Enumerate(st State, role Role) []Move {
	s := st.(*ProdutoState)
	empty := s.emptyCells()
	colors := [2]ProdutoColor{ProdutoBlack, ProdutoWhite}
	var moves []Move
	if s.requiredPlacements() == 1 {
		for _, c := range empty {
			for _, col := range colors {
				moves = append(moves, ProdutoMove{Placements: []ProdutoPlacement{{Coord: c, Color: col}}})
			}
		}
		return moves
	}
	for i := 0; i < len(empty); i++ {
		for j := i + 1; j < len(empty); j++ {
			for _, c1 := range colors {
				for _, c2 := range colors {
					moves = append(moves, ProdutoMove{Placements: []ProdutoPlacement{
						{Coord: empty[i], Color: c1},
						{Coord: empty[j], Color: c2},
					}})
				}
			}
		}
	}
	return moves
}

func (ProdutoEngine) Serialize(st State) interface{} {
	s := st.(*ProdutoState)
	out := produtoStateJSON{
		Pieces:    make([]ProdutoPlacement, 0, len(s.pieces)),
		MoveCount: s.moveCount,
		ToMove:    s.toMove,
	}
	for c, col := range s.pieces {
		out.Pieces = append(out.Pieces, ProdutoPlacement{Coord: c, Color: col})
	}
	sort.Slice(out.Pieces, func(i, j int) bool {
		if out.Pieces[i].Coord.Q != out.Pieces[j].Coord.Q {
			return out.Pieces[i].Coord.Q < out.Pieces[j].Coord.Q
		}
		return out.Pieces[i].Coord.R < out.Pieces[j].Coord.R
	})
	return out
}

func (ProdutoEngine) Deserialize(data json.RawMessage) (State, error) {
	var raw produtoStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	s := &ProdutoState{
		pieces:    make(map[HexCoord]ProdutoColor, len(raw.Pieces)),
		moveCount: raw.MoveCount,
		toMove:    raw.ToMove,
	}
	for _, p := range raw.Pieces {
		s.pieces[p.Coord] = p.Color
	}
	return s, nil
}
