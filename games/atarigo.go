package games

import (
	"encoding/json"
	"errors"
)

const atariGoSize = 9

const (
	agEmpty int8 = iota
	agBlack
	agWhite
)

// AtariGoState is a 9x9 capture-go position: the first player to capture
// any stone wins. Two consecutive passes end the game as a draw. There is
// no ko rule.
type AtariGoState struct {
	Board         [atariGoSize][atariGoSize]int8 `json:"board"`
	ToMove        Role                           `json:"toMove"`
	BlackCaptures int                            `json:"blackCaptures"`
	WhiteCaptures int                            `json:"whiteCaptures"`
	Passes        int                            `json:"passes"`
}

func (AtariGoState) gameID() string { return AtariGoID }

// AtariGoMove is a stone placement, or a pass when Pass is set.
type AtariGoMove struct {
	Row  int  `json:"row"`
	Col  int  `json:"col"`
	Pass bool `json:"pass,omitempty"`
}

type AtariGoEngine struct{}

func (AtariGoEngine) ID() string { return AtariGoID }

func (AtariGoEngine) InitialState(starting Role) State {
	if starting == RoleNone {
		starting = RoleP1
	}
	return &AtariGoState{ToMove: starting}
}

func (AtariGoEngine) ParseMove(data json.RawMessage) (Move, error) {
	var mv AtariGoMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, err
	}
	return mv, nil
}

func atariGoStone(role Role) int8 {
	if role == RoleP1 {
		return agBlack
	}
	return agWhite
}

func atariGoInBounds(r, c int) bool {
	return r >= 0 && r < atariGoSize && c >= 0 && c < atariGoSize
}

var atariGoDirs = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// group collects the maximal same-colored group containing (r, c) and its
// liberty count.
func atariGoGroup(board *[atariGoSize][atariGoSize]int8, r, c int) (stones [][2]int, liberties int) {
	color := board[r][c]
	var visited [atariGoSize][atariGoSize]bool
	var libSeen [atariGoSize][atariGoSize]bool
	stack := [][2]int{{r, c}}
	visited[r][c] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stones = append(stones, cur)
		for _, d := range atariGoDirs {
			nr, nc := cur[0]+d[0], cur[1]+d[1]
			if !atariGoInBounds(nr, nc) {
				continue
			}
			switch board[nr][nc] {
			case agEmpty:
				if !libSeen[nr][nc] {
					libSeen[nr][nc] = true
					liberties++
				}
			case color:
				if !visited[nr][nc] {
					visited[nr][nc] = true
					stack = append(stack, [2]int{nr, nc})
				}
			}
		}
	}
	return stones, liberties
}

// resolvePlacement simulates placing a stone: it returns the board after
// removals and the number of opposing stones captured, or ok=false when
// the placement is suicidal without capturing.
func (s *AtariGoState) resolvePlacement(r, c int, role Role) (board [atariGoSize][atariGoSize]int8, captured int, ok bool) {
	board = s.Board
	stone := atariGoStone(role)
	opponent := agWhite
	if stone == agWhite {
		opponent = agBlack
	}
	board[r][c] = stone
	for _, d := range atariGoDirs {
		nr, nc := r+d[0], c+d[1]
		if !atariGoInBounds(nr, nc) || board[nr][nc] != opponent {
			continue
		}
		stones, libs := atariGoGroup(&board, nr, nc)
		if libs == 0 {
			for _, st := range stones {
				board[st[0]][st[1]] = agEmpty
			}
			captured += len(stones)
		}
	}
	if captured > 0 {
		return board, captured, true
	}
	_, ownLibs := atariGoGroup(&board, r, c)
	if ownLibs == 0 {
		return board, 0, false
	}
	return board, 0, true
}

func (e AtariGoEngine) Validate(st State, mv Move, role Role) bool {
	s, ok := st.(*AtariGoState)
	if !ok {
		return false
	}
	m, ok := mv.(AtariGoMove)
	if !ok {
		return false
	}
	if e.Terminal(st) || role != s.ToMove {
		return false
	}
	if m.Pass {
		return true
	}
	if !atariGoInBounds(m.Row, m.Col) || s.Board[m.Row][m.Col] != agEmpty {
		return false
	}
	_, _, legal := s.resolvePlacement(m.Row, m.Col, role)
	return legal
}

func (e AtariGoEngine) Apply(st State, mv Move, role Role) (State, error) {
	if !e.Validate(st, mv, role) {
		return nil, errors.New("illegal stone placement")
	}
	s := st.(*AtariGoState)
	m := mv.(AtariGoMove)
	next := *s
	if m.Pass {
		next.Passes++
	} else {
		board, captured, _ := s.resolvePlacement(m.Row, m.Col, role)
		next.Board = board
		next.Passes = 0
		if role == RoleP1 {
			next.BlackCaptures += captured
		} else {
			next.WhiteCaptures += captured
		}
	}
	next.ToMove = role.Other()
	return &next, nil
}

func (AtariGoEngine) Terminal(st State) bool {
	s := st.(*AtariGoState)
	return s.BlackCaptures > 0 || s.WhiteCaptures > 0 || s.Passes >= 2
}

func (e AtariGoEngine) Winner(st State) Outcome {
	s := st.(*AtariGoState)
	if s.BlackCaptures > 0 {
		return OutcomeP1
	}
	if s.WhiteCaptures > 0 {
		return OutcomeP2
	}
	if s.Passes >= 2 {
		return OutcomeDraw
	}
	return OutcomeNone
}

func (AtariGoEngine) Turn(st State) Role {
	return st.(*AtariGoState).ToMove
}

func (e AtariGoEngine) Enumerate(st State, role Role) []Move {
	s := st.(*AtariGoState)
	var moves []Move
	for r := 0; r < atariGoSize; r++ {
		for c := 0; c < atariGoSize; c++ {
			if s.Board[r][c] != agEmpty {
				continue
			}
			if _, _, legal := s.resolvePlacement(r, c, role); legal {
				moves = append(moves, AtariGoMove{Row: r, Col: c})
			}
		}
	}
	moves = append(moves, AtariGoMove{Pass: true})
	return moves
}

// AtariGoAtariGroups counts the role's groups left with exactly one
// liberty.
func AtariGoAtariGroups(st State, role Role) int {
	s := st.(*AtariGoState)
	color := atariGoStone(role)
	var visited [atariGoSize][atariGoSize]bool
	count := 0
	for r := 0; r < atariGoSize; r++ {
		for c := 0; c < atariGoSize; c++ {
			if s.Board[r][c] != color || visited[r][c] {
				continue
			}
			stones, libs := atariGoGroup(&s.Board, r, c)
			for _, st := range stones {
				visited[st[0]][st[1]] = true
			}
			if libs == 1 {
				count++
			}
		}
	}
	return count
}

func (AtariGoEngine) Serialize(st State) interface{} {
	return st.(*AtariGoState)
}

func (AtariGoEngine) Deserialize(data json.RawMessage) (State, error) {
	var s AtariGoState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
