package games

import (
	"encoding/json"
	"errors"
)

const dominorioSize = 8

const (
	domEmpty int8 = iota
	domP1
	domP2
)

// DominorioState is the board of a Dominório game. p1 places vertical
// dominoes, p2 horizontal ones; the player left without a placement loses.
type DominorioState struct {
	Board  [dominorioSize][dominorioSize]int8 `json:"board"`
	ToMove Role                               `json:"toMove"`
}

func (DominorioState) gameID() string { return DominorioID }

// DominorioMove covers two adjacent cells in the mover's orientation.
type DominorioMove struct {
	Row1 int `json:"row1"`
	Col1 int `json:"col1"`
	Row2 int `json:"row2"`
	Col2 int `json:"col2"`
}

type DominorioEngine struct{}

func (DominorioEngine) ID() string { return DominorioID }

func (DominorioEngine) InitialState(starting Role) State {
	if starting == RoleNone {
		starting = RoleP1
	}
	return &DominorioState{ToMove: starting}
}

func (DominorioEngine) ParseMove(data json.RawMessage) (Move, error) {
	var mv DominorioMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, err
	}
	return mv, nil
}

func dominorioInBounds(r, c int) bool {
	return r >= 0 && r < dominorioSize && c >= 0 && c < dominorioSize
}

func (s *DominorioState) placementLegal(m DominorioMove, role Role) bool {
	if !dominorioInBounds(m.Row1, m.Col1) || !dominorioInBounds(m.Row2, m.Col2) {
		return false
	}
	if role == RoleP1 {
		// Vertical: same column, adjacent rows.
		if m.Col1 != m.Col2 {
			return false
		}
		if m.Row1-m.Row2 != 1 && m.Row2-m.Row1 != 1 {
			return false
		}
	} else {
		if m.Row1 != m.Row2 {
			return false
		}
		if m.Col1-m.Col2 != 1 && m.Col2-m.Col1 != 1 {
			return false
		}
	}
	return s.Board[m.Row1][m.Col1] == domEmpty && s.Board[m.Row2][m.Col2] == domEmpty
}

func (e DominorioEngine) Validate(st State, mv Move, role Role) bool {
	s, ok := st.(*DominorioState)
	if !ok {
		return false
	}
	m, ok := mv.(DominorioMove)
	if !ok {
		return false
	}
	if e.Terminal(st) || role != s.ToMove {
		return false
	}
	return s.placementLegal(m, role)
}

func (e DominorioEngine) Apply(st State, mv Move, role Role) (State, error) {
	if !e.Validate(st, mv, role) {
		return nil, errors.New("illegal placement")
	}
	s := st.(*DominorioState)
	m := mv.(DominorioMove)
	next := *s
	piece := domP1
	if role == RoleP2 {
		piece = domP2
	}
	next.Board[m.Row1][m.Col1] = piece
	next.Board[m.Row2][m.Col2] = piece
	next.ToMove = role.Other()
	return &next, nil
}

func (e DominorioEngine) Terminal(st State) bool {
	s := st.(*DominorioState)
	return len(e.Enumerate(st, s.ToMove)) == 0
}

func (e DominorioEngine) Winner(st State) Outcome {
	if !e.Terminal(st) {
		return OutcomeNone
	}
	s := st.(*DominorioState)
	// The blocked player loses.
	return RoleOutcome(s.ToMove.Other())
}

func (DominorioEngine) Turn(st State) Role {
	return st.(*DominorioState).ToMove
}

func (DominorioEngine) Enumerate(st State, role Role) []Move {
	s := st.(*DominorioState)
	var moves []Move
	if role == RoleP1 {
		for r := 0; r < dominorioSize-1; r++ {
			for c := 0; c < dominorioSize; c++ {
				if s.Board[r][c] == domEmpty && s.Board[r+1][c] == domEmpty {
					moves = append(moves, DominorioMove{Row1: r, Col1: c, Row2: r + 1, Col2: c})
				}
			}
		}
		return moves
	}
	for r := 0; r < dominorioSize; r++ {
		for c := 0; c < dominorioSize-1; c++ {
			if s.Board[r][c] == domEmpty && s.Board[r][c+1] == domEmpty {
				moves = append(moves, DominorioMove{Row1: r, Col1: c, Row2: r, Col2: c + 1})
			}
		}
	}
	return moves
}

func (DominorioEngine) Serialize(st State) interface{} {
	return st.(*DominorioState)
}

func (DominorioEngine) Deserialize(data json.RawMessage) (State, error) {
	var s DominorioState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
