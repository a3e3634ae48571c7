package games

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNexPlace(t *testing.T) {
	e := NexEngine{}
	s := e.InitialState(RoleP1)

	own := Cell{Row: 5, Col: 5}
	neutral := Cell{Row: 0, Col: 0}
	mv := NexMove{Type: NexPlace, OwnPiece: &own, NeutralPiece: &neutral}
	require.True(t, e.Validate(s, mv, RoleP1))

	s, err := e.Apply(s, mv, RoleP1)
	require.NoError(t, err)
	st := s.(*NexState)
	assert.Equal(t, int8(nexBlack), st.Board[5][5])
	assert.Equal(t, int8(nexNeutral), st.Board[0][0])
	assert.Equal(t, RoleP2, e.Turn(s))

	// Both cells must be distinct and empty.
	same := NexMove{Type: NexPlace, OwnPiece: &own, NeutralPiece: &own}
	assert.False(t, e.Validate(s, same, RoleP2))
	onto := Cell{Row: 5, Col: 5}
	free := Cell{Row: 1, Col: 1}
	assert.False(t, e.Validate(s, NexMove{Type: NexPlace, OwnPiece: &onto, NeutralPiece: &free}, RoleP2))
}

func TestNexConvert(t *testing.T) {
	e := NexEngine{}
	s := &NexState{MoveCount: 4, ToMove: RoleP1}
	s.Board[2][2] = nexNeutral
	s.Board[3][3] = nexNeutral
	s.Board[4][4] = nexBlack

	ownCell := Cell{Row: 4, Col: 4}
	mv := NexMove{
		Type:              NexConvert,
		NeutralsToConvert: []Cell{{2, 2}, {3, 3}},
		OwnToNeutral:      &ownCell,
	}
	require.True(t, e.Validate(s, mv, RoleP1))
	next, err := e.Apply(s, mv, RoleP1)
	require.NoError(t, err)
	st := next.(*NexState)
	assert.Equal(t, int8(nexBlack), st.Board[2][2])
	assert.Equal(t, int8(nexBlack), st.Board[3][3])
	assert.Equal(t, int8(nexNeutral), st.Board[4][4])

	// Converting a white stone's cell is illegal for p1.
	s.Board[4][4] = nexWhite
	assert.False(t, e.Validate(s, mv, RoleP1))
}

func TestNexSwapOnlyOnMoveTwo(t *testing.T) {
	e := NexEngine{}
	s := e.InitialState(RoleP1)
	swap := NexMove{Type: NexSwap}

	assert.False(t, e.Validate(s, swap, RoleP1))

	own := Cell{Row: 5, Col: 5}
	neutral := Cell{Row: 0, Col: 0}
	s, err := e.Apply(s, NexMove{Type: NexPlace, OwnPiece: &own, NeutralPiece: &neutral}, RoleP1)
	require.NoError(t, err)

	require.True(t, e.Validate(s, swap, RoleP2))
	s, err = e.Apply(s, swap, RoleP2)
	require.NoError(t, err)
	st := s.(*NexState)
	assert.True(t, st.Swapped)
	assert.Equal(t, RoleP1, e.Turn(s))
	// After the swap p1 plays white.
	assert.False(t, NexPlaysBlack(s, RoleP1))
	assert.True(t, NexPlaysBlack(s, RoleP2))

	// And never again.
	assert.False(t, e.Validate(s, swap, RoleP2))
}

func TestNexConnectionWin(t *testing.T) {
	e := NexEngine{}
	s := &NexState{MoveCount: 20, ToMove: RoleP2}
	// A straight black column from top to bottom.
	for r := 0; r < nexSize; r++ {
		s.Board[r][3] = nexBlack
	}
	assert.True(t, e.Terminal(s))
	assert.Equal(t, OutcomeP1, e.Winner(s))

	// With the mapping swapped, the same path wins for p2.
	s.Swapped = true
	assert.Equal(t, OutcomeP2, e.Winner(s))
}

func TestNexHexNeighborhoodConnection(t *testing.T) {
	e := NexEngine{}
	s := &NexState{MoveCount: 20, ToMove: RoleP2}
	// A diagonal staircase using the (r+1, c-1) hex step.
	col := nexSize - 1
	for r := 0; r < nexSize; r++ {
		s.Board[r][col] = nexBlack
		col--
		if col < 0 {
			col = 0
		}
	}
	assert.True(t, e.Terminal(s))
}

func TestNexWhiteConnection(t *testing.T) {
	e := NexEngine{}
	s := &NexState{MoveCount: 20, ToMove: RoleP1}
	for c := 0; c < nexSize; c++ {
		s.Board[7][c] = nexWhite
	}
	assert.True(t, e.Terminal(s))
	assert.Equal(t, OutcomeP2, e.Winner(s))
}

func TestNexRoundTrip(t *testing.T) {
	e := NexEngine{}
	s := e.InitialState(RoleP1)
	own := Cell{Row: 5, Col: 5}
	neutral := Cell{Row: 2, Col: 8}
	s, err := e.Apply(s, NexMove{Type: NexPlace, OwnPiece: &own, NeutralPiece: &neutral}, RoleP1)
	require.NoError(t, err)

	data, err := json.Marshal(e.Serialize(s))
	require.NoError(t, err)
	restored, err := e.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, s, restored)
}
