package games

import (
	"encoding/json"
	"errors"
)

const nexSize = 11

const (
	nexEmpty int8 = iota
	nexBlack
	nexWhite
	nexNeutral
)

// Nex move kinds.
const (
	NexPlace   = "place"
	NexConvert = "convert"
	NexSwap    = "swap"
)

// NexState is an 11x11 Nex position. The square grid carries a hex
// neighborhood; black connects the top and bottom rows, white the left
// and right columns. p1 plays black unless a swap reversed the mapping.
type NexState struct {
	Board     [nexSize][nexSize]int8 `json:"board"`
	MoveCount int                    `json:"moveCount"`
	Swapped   bool                   `json:"swapped"`
	ToMove    Role                   `json:"toMove"`
}

func (NexState) gameID() string { return NexID }

// NexMove is one of place (own piece + neutral piece), convert (two
// neutrals to own color, one own piece to neutral), or the move-two swap.
type NexMove struct {
	Type              string `json:"type"`
	OwnPiece          *Cell  `json:"ownPiece,omitempty"`
	NeutralPiece      *Cell  `json:"neutralPiece,omitempty"`
	NeutralsToConvert []Cell `json:"neutralsToConvert,omitempty"`
	OwnToNeutral      *Cell  `json:"ownToNeutral,omitempty"`
}

var nexDirs = [6][2]int{{-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}}

type NexEngine struct{}

func (NexEngine) ID() string { return NexID }

func (NexEngine) InitialState(starting Role) State {
	if starting == RoleNone {
		starting = RoleP1
	}
	return &NexState{ToMove: starting}
}

func (NexEngine) ParseMove(data json.RawMessage) (Move, error) {
	var mv NexMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, err
	}
	return mv, nil
}

// NexPlaysBlack reports whether the role currently plays black, i.e.
// connects the top and bottom rows.
func NexPlaysBlack(st State, role Role) bool {
	s := st.(*NexState)
	black := role == RoleP1
	if s.Swapped {
		black = !black
	}
	return black
}

func nexColorOf(st State, role Role) int8 {
	if NexPlaysBlack(st, role) {
		return nexBlack
	}
	return nexWhite
}

func nexRoleOf(s *NexState, color int8) Role {
	black := color == nexBlack
	if s.Swapped {
		black = !black
	}
	if black {
		return RoleP1
	}
	return RoleP2
}

func nexInBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < nexSize && c.Col >= 0 && c.Col < nexSize
}

func (e NexEngine) Validate(st State, mv Move, role Role) bool {
	s, ok := st.(*NexState)
	if !ok {
		return false
	}
	m, ok := mv.(NexMove)
	if !ok {
		return false
	}
	if e.Terminal(st) || role != s.ToMove {
		return false
	}
	own := nexColorOf(st, role)
	switch m.Type {
	case NexPlace:
		if m.OwnPiece == nil || m.NeutralPiece == nil {
			return false
		}
		if *m.OwnPiece == *m.NeutralPiece {
			return false
		}
		if !nexInBounds(*m.OwnPiece) || !nexInBounds(*m.NeutralPiece) {
			return false
		}
		return s.Board[m.OwnPiece.Row][m.OwnPiece.Col] == nexEmpty &&
			s.Board[m.NeutralPiece.Row][m.NeutralPiece.Col] == nexEmpty
	case NexConvert:
		if len(m.NeutralsToConvert) != 2 || m.OwnToNeutral == nil {
			return false
		}
		if m.NeutralsToConvert[0] == m.NeutralsToConvert[1] {
			return false
		}
		for _, c := range m.NeutralsToConvert {
			if !nexInBounds(c) || s.Board[c.Row][c.Col] != nexNeutral {
				return false
			}
		}
		return nexInBounds(*m.OwnToNeutral) && s.Board[m.OwnToNeutral.Row][m.OwnToNeutral.Col] == own
	case NexSwap:
		return s.MoveCount == 1 && role == RoleP2 && !s.Swapped
	}
	return false
}

func (e NexEngine) Apply(st State, mv Move, role Role) (State, error) {
	if !e.Validate(st, mv, role) {
		return nil, errors.New("illegal nex move")
	}
	s := st.(*NexState)
	m := mv.(NexMove)
	next := *s
	own := nexColorOf(st, role)
	switch m.Type {
	case NexPlace:
		next.Board[m.OwnPiece.Row][m.OwnPiece.Col] = own
		next.Board[m.NeutralPiece.Row][m.NeutralPiece.Col] = nexNeutral
	case NexConvert:
		for _, c := range m.NeutralsToConvert {
			next.Board[c.Row][c.Col] = own
		}
		next.Board[m.OwnToNeutral.Row][m.OwnToNeutral.Col] = nexNeutral
	case NexSwap:
		next.Swapped = true
	}
	next.MoveCount++
	next.ToMove = role.Other()
	return &next, nil
}

// nexConnected reports whether the color links its two target edges:
// top to bottom rows for black, left to right columns for white.
func nexConnected(s *NexState, color int8) bool {
	var visited [nexSize][nexSize]bool
	var stack []Cell
	if color == nexBlack {
		for c := 0; c < nexSize; c++ {
			if s.Board[0][c] == color {
				visited[0][c] = true
				stack = append(stack, Cell{Row: 0, Col: c})
			}
		}
	} else {
		for r := 0; r < nexSize; r++ {
			if s.Board[r][0] == color {
				visited[r][0] = true
				stack = append(stack, Cell{Row: r, Col: 0})
			}
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if color == nexBlack && cur.Row == nexSize-1 {
			return true
		}
		if color == nexWhite && cur.Col == nexSize-1 {
			return true
		}
		for _, d := range nexDirs {
			n := Cell{Row: cur.Row + d[0], Col: cur.Col + d[1]}
			if !nexInBounds(n) || visited[n.Row][n.Col] || s.Board[n.Row][n.Col] != color {
				continue
			}
			visited[n.Row][n.Col] = true
			stack = append(stack, n)
		}
	}
	return false
}

func (NexEngine) Terminal(st State) bool {
	s := st.(*NexState)
	return nexConnected(s, nexBlack) || nexConnected(s, nexWhite)
}

func (NexEngine) Winner(st State) Outcome {
	s := st.(*NexState)
	if nexConnected(s, nexBlack) {
		return RoleOutcome(nexRoleOf(s, nexBlack))
	}
	if nexConnected(s, nexWhite) {
		return RoleOutcome(nexRoleOf(s, nexWhite))
	}
	return OutcomeNone
}

func (NexEngine) Turn(st State) Role {
	return st.(*NexState).ToMove
}

func (e NexEngine) Enumerate(st State, role Role) []Move {
	s := st.(*NexState)
	var empties, neutrals, owns []Cell
	own := nexColorOf(st, role)
	for r := 0; r < nexSize; r++ {
		for c := 0; c < nexSize; c++ {
			switch s.Board[r][c] {
			case nexEmpty:
				empties = append(empties, Cell{Row: r, Col: c})
			case nexNeutral:
				neutrals = append(neutrals, Cell{Row: r, Col: c})
			case own:
				owns = append(owns, Cell{Row: r, Col: c})
			}
		}
	}
	var moves []Move
	for i := range empties {
		for j := range empties {
			if i == j {
				continue
			}
			op, np := empties[i], empties[j]
			moves = append(moves, NexMove{Type: NexPlace, OwnPiece: &op, NeutralPiece: &np})
		}
	}
	for i := 0; i < len(neutrals); i++ {
		for j := i + 1; j < len(neutrals); j++ {
			for k := range owns {
				oc := owns[k]
				moves = append(moves, NexMove{
					Type:              NexConvert,
					NeutralsToConvert: []Cell{neutrals[i], neutrals[j]},
					OwnToNeutral:      &oc,
				})
			}
		}
	}
	if s.MoveCount == 1 && role == RoleP2 && !s.Swapped {
		moves = append(moves, NexMove{Type: NexSwap})
	}
	return moves
}

func (NexEngine) Serialize(st State) interface{} {
	return st.(*NexState)
}

func (NexEngine) Deserialize(data json.RawMessage) (State, error) {
	var s NexState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
