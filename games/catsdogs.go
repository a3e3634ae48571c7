package games

import (
	"encoding/json"
	"errors"
)

const (
	catsDogsSize     = 8
	catsDogsPieceCap = 28
)

const (
	cdEmpty int8 = iota
	cdCat
	cdDog
)

// GatosCaesState is the board position of a Gatos & Cães game. Cats belong
// to p1, dogs to p2. The first cat must be placed inside the central 2x2
// zone, the first dog outside it; no piece may be placed orthogonally
// adjacent to the opposite species. The player who makes the last legal
// placement wins.
type GatosCaesState struct {
	Board     [catsDogsSize][catsDogsSize]int8 `json:"board"`
	CatPlaced bool                             `json:"catPlaced"`
	DogPlaced bool                             `json:"dogPlaced"`
	CatCount  int                              `json:"catCount"`
	DogCount  int                              `json:"dogCount"`
	ToMove    Role                             `json:"toMove"`
}

func (GatosCaesState) gameID() string { return GatosCaesID }

// GatosCaesMove places a single piece of the mover's species.
type GatosCaesMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type GatosCaesEngine struct{}

func (GatosCaesEngine) ID() string { return GatosCaesID }

func (GatosCaesEngine) InitialState(starting Role) State {
	if starting == RoleNone {
		starting = RoleP1
	}
	return &GatosCaesState{ToMove: starting}
}

func (GatosCaesEngine) ParseMove(data json.RawMessage) (Move, error) {
	var mv GatosCaesMove
	if err := json.Unmarshal(data, &mv); err != nil {
		return nil, err
	}
	return mv, nil
}

func catsDogsInCentralZone(r, c int) bool {
	return r >= 3 && r <= 4 && c >= 3 && c <= 4
}

func catsDogsSpecies(role Role) int8 {
	if role == RoleP1 {
		return cdCat
	}
	return cdDog
}

func (s *GatosCaesState) placementLegal(r, c int, role Role) bool {
	if r < 0 || r >= catsDogsSize || c < 0 || c >= catsDogsSize {
		return false
	}
	if s.Board[r][c] != cdEmpty {
		return false
	}
	species := catsDogsSpecies(role)
	if species == cdCat {
		if s.CatCount >= catsDogsPieceCap {
			return false
		}
		if !s.CatPlaced && !catsDogsInCentralZone(r, c) {
			return false
		}
	} else {
		if s.DogCount >= catsDogsPieceCap {
			return false
		}
		if !s.DogPlaced && catsDogsInCentralZone(r, c) {
			return false
		}
	}
	other := cdDog
	if species == cdDog {
		other = cdCat
	}
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nr, nc := r+d[0], c+d[1]
		if nr < 0 || nr >= catsDogsSize || nc < 0 || nc >= catsDogsSize {
			continue
		}
		if s.Board[nr][nc] == other {
			return false
		}
	}
	return true
}

func (e GatosCaesEngine) Validate(st State, mv Move, role Role) bool {
	s, ok := st.(*GatosCaesState)
	if !ok {
		return false
	}
	m, ok := mv.(GatosCaesMove)
	if !ok {
		return false
	}
	if e.Terminal(st) || role != s.ToMove {
		return false
	}
	return s.placementLegal(m.Row, m.Col, role)
}

func (e GatosCaesEngine) Apply(st State, mv Move, role Role) (State, error) {
	if !e.Validate(st, mv, role) {
		return nil, errors.New("illegal placement")
	}
	s := st.(*GatosCaesState)
	m := mv.(GatosCaesMove)
	next := *s
	next.Board[m.Row][m.Col] = catsDogsSpecies(role)
	if role == RoleP1 {
		next.CatPlaced = true
		next.CatCount++
	} else {
		next.DogPlaced = true
		next.DogCount++
	}
	next.ToMove = role.Other()
	return &next, nil
}

func (e GatosCaesEngine) Terminal(st State) bool {
	s := st.(*GatosCaesState)
	return len(e.Enumerate(st, s.ToMove)) == 0
}

func (e GatosCaesEngine) Winner(st State) Outcome {
	if !e.Terminal(st) {
		return OutcomeNone
	}
	s := st.(*GatosCaesState)
	// Last mover wins: the player to move has no placement left.
	return RoleOutcome(s.ToMove.Other())
}

func (GatosCaesEngine) Turn(st State) Role {
	return st.(*GatosCaesState).ToMove
}

func (GatosCaesEngine) Enumerate(st State, role Role) []Move {
	s := st.(*GatosCaesState)
	var moves []Move
	for r := 0; r < catsDogsSize; r++ {
		for c := 0; c < catsDogsSize; c++ {
			if s.placementLegal(r, c, role) {
				moves = append(moves, GatosCaesMove{Row: r, Col: c})
			}
		}
	}
	return moves
}

func (GatosCaesEngine) Serialize(st State) interface{} {
	return st.(*GatosCaesState)
}

func (GatosCaesEngine) Deserialize(data json.RawMessage) (State, error) {
	var s GatosCaesState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
