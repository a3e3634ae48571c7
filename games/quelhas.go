package games

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

const quelhasSize = 10

// QuelhasState is the board of a Quelhas game. Pieces are unattributed
// once placed; what matters is the orientation each player is allowed to
// play. p1 plays vertical segments and p2 horizontal ones until a swap,
// which flips the mapping. Quelhas is misère: the player who makes the
// last placement loses.
type QuelhasState struct {
	Board     [quelhasSize][quelhasSize]bool `json:"board"`
	MoveCount int                            `json:"moveCount"`
	Swapped   bool                           `json:"swapped"`
	ToMove    Role                           `json:"toMove"`
}

func (QuelhasState) gameID() string { return QuelhasID }

// QuelhasMove is either a contiguous segment of at least two cells or,
// on move two only, a swap declaration by p2.
type QuelhasMove struct {
	Cells []Cell `json:"cells,omitempty"`
	Swap  bool   `json:"swap,omitempty"`
}

type QuelhasEngine struct{}

func (QuelhasEngine) ID() string { return QuelhasID }

func (QuelhasEngine) InitialState(starting Role) State {
	if starting == RoleNone {
		starting = RoleP1
	}
	return &QuelhasState{ToMove: starting}
}

func (QuelhasEngine) ParseMove(data json.RawMessage) (Move, error) {
	var mv QuelhasMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, err
	}
	return mv, nil
}

// verticalRole reports which role currently plays vertical segments.
func (s *QuelhasState) verticalRole() Role {
	if s.Swapped {
		return RoleP2
	}
	return RoleP1
}

func (s *QuelhasState) swapAvailable(role Role) bool {
	return s.MoveCount == 1 && role == RoleP2 && !s.Swapped
}

func (s *QuelhasState) segmentLegal(cells []Cell, role Role) bool {
	if len(cells) < 2 {
		return false
	}
	vertical := role == s.verticalRole()
	seen := make(map[Cell]bool, len(cells))
	lines := make([]int, 0, len(cells))
	for _, c := range cells {
		if c.Row < 0 || c.Row >= quelhasSize || c.Col < 0 || c.Col >= quelhasSize {
			return false
		}
		if s.Board[c.Row][c.Col] {
			return false
		}
		if seen[c] {
			return false
		}
		seen[c] = true
		if vertical {
			if c.Col != cells[0].Col {
				return false
			}
			lines = append(lines, c.Row)
		} else {
			if c.Row != cells[0].Row {
				return false
			}
			lines = append(lines, c.Col)
		}
	}
	sort.Ints(lines)
	for i := 1; i < len(lines); i++ {
		if lines[i] != lines[i-1]+1 {
			return false
		}
	}
	return true
}

func (e QuelhasEngine) Validate(st State, mv Move, role Role) bool {
	s, ok := st.(*QuelhasState)
	if !ok {
		return false
	}
	m, ok := mv.(QuelhasMove)
	if !ok {
		return false
	}
	if e.Terminal(st) || role != s.ToMove {
		return false
	}
	if m.Swap {
		return len(m.Cells) == 0 && s.swapAvailable(role)
	}
	return s.segmentLegal(m.Cells, role)
}

func (e QuelhasEngine) Apply(st State, mv Move, role Role) (State, error) {
	if !e.Validate(st, mv, role) {
		return nil, errors.New("illegal segment")
	}
	s := st.(*QuelhasState)
	m := mv.(QuelhasMove)
	next := *s
	if m.Swap {
		next.Swapped = true
	} else {
		for _, c := range m.Cells {
			next.Board[c.Row][c.Col] = true
		}
	}
	next.MoveCount++
	next.ToMove = role.Other()
	return &next, nil
}

func (e QuelhasEngine) Terminal(st State) bool {
	s := st.(*QuelhasState)
	return len(e.Enumerate(st, s.ToMove)) == 0
}

func (e QuelhasEngine) Winner(st State) Outcome {
	if !e.Terminal(st) {
		return OutcomeNone
	}
	s := st.(*QuelhasState)
	// Misère: the last mover loses, so the blocked player wins.
	return RoleOutcome(s.ToMove)
}

func (QuelhasEngine) Turn(st State) Role {
	return st.(*QuelhasState).ToMove
}

func (QuelhasEngine) Enumerate(st State, role Role) []Move {
	s := st.(*QuelhasState)
	vertical := role == s.verticalRole()
	seen := make(map[string]bool)
	var moves []Move
	addRun := func(line, start, end int) {
		// Every contiguous sub-segment of length >= 2 within [start, end).
		for a := start; a < end-1; a++ {
			for b := a + 1; b < end; b++ {
				cells := make([]Cell, 0, b-a+1)
				for i := a; i <= b; i++ {
					if vertical {
						cells = append(cells, Cell{Row: i, Col: line})
					} else {
						cells = append(cells, Cell{Row: line, Col: i})
					}
				}
				key := fmt.Sprint(cells)
				if seen[key] {
					continue
				}
				seen[key] = true
				moves = append(moves, QuelhasMove{Cells: cells})
			}
		}
	}
	for line := 0; line < quelhasSize; line++ {
		runStart := -1
		for i := 0; i <= quelhasSize; i++ {
			filled := i == quelhasSize
			if !filled {
				if vertical {
					filled = s.Board[i][line]
				} else {
					filled = s.Board[line][i]
				}
			}
			if filled {
				if runStart >= 0 {
					addRun(line, runStart, i)
					runStart = -1
				}
			} else if runStart < 0 {
				runStart = i
			}
		}
	}
	if s.swapAvailable(role) {
		moves = append(moves, QuelhasMove{Swap: true})
	}
	return moves
}

func (QuelhasEngine) Serialize(st State) interface{} {
	return st.(*QuelhasState)
}

func (QuelhasEngine) Deserialize(data json.RawMessage) (State, error) {
	var s QuelhasState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
