package games

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDominorioOrientation(t *testing.T) {
	e := DominorioEngine{}
	s := e.InitialState(RoleP1)

	// p1 plays vertical only.
	assert.True(t, e.Validate(s, DominorioMove{Row1: 0, Col1: 0, Row2: 1, Col2: 0}, RoleP1))
	assert.False(t, e.Validate(s, DominorioMove{Row1: 0, Col1: 0, Row2: 0, Col2: 1}, RoleP1))

	s, err := e.Apply(s, DominorioMove{Row1: 0, Col1: 0, Row2: 1, Col2: 0}, RoleP1)
	require.NoError(t, err)

	// p2 plays horizontal only; occupied cells are rejected.
	assert.True(t, e.Validate(s, DominorioMove{Row1: 0, Col1: 1, Row2: 0, Col2: 2}, RoleP2))
	assert.False(t, e.Validate(s, DominorioMove{Row1: 2, Col1: 0, Row2: 3, Col2: 0}, RoleP2))
	assert.False(t, e.Validate(s, DominorioMove{Row1: 0, Col1: 0, Row2: 0, Col2: 1}, RoleP2))

	// Non-adjacent cells are rejected.
	assert.False(t, e.Validate(s, DominorioMove{Row1: 5, Col1: 0, Row2: 5, Col2: 2}, RoleP2))
}

func TestDominorioInitialMobility(t *testing.T) {
	e := DominorioEngine{}
	s := e.InitialState(RoleP1)
	assert.Len(t, e.Enumerate(s, RoleP1), 56)
	assert.Len(t, e.Enumerate(s, RoleP2), 56)
}

func TestDominorioBlockedPlayerLoses(t *testing.T) {
	e := DominorioEngine{}
	// Fill everything except a single horizontal pair: the vertical
	// player to move is stuck and loses.
	s := &DominorioState{ToMove: RoleP1}
	for r := 0; r < dominorioSize; r++ {
		for c := 0; c < dominorioSize; c++ {
			s.Board[r][c] = domP1
		}
	}
	s.Board[4][4] = domEmpty
	s.Board[4][5] = domEmpty

	require.Empty(t, e.Enumerate(s, RoleP1))
	assert.NotEmpty(t, e.Enumerate(s, RoleP2))
	assert.True(t, e.Terminal(s))
	assert.Equal(t, OutcomeP2, e.Winner(s))
}

func TestDominorioAppliedMovesDoNotMutatePriorState(t *testing.T) {
	e := DominorioEngine{}
	s0 := e.InitialState(RoleP1)
	s1, err := e.Apply(s0, DominorioMove{Row1: 0, Col1: 0, Row2: 1, Col2: 0}, RoleP1)
	require.NoError(t, err)

	assert.Equal(t, int8(domEmpty), s0.(*DominorioState).Board[0][0])
	assert.Equal(t, int8(domP1), s1.(*DominorioState).Board[0][0])
}

func TestDominorioRoundTrip(t *testing.T) {
	e := DominorioEngine{}
	s := e.InitialState(RoleP1)
	s, err := e.Apply(s, DominorioMove{Row1: 2, Col1: 3, Row2: 3, Col2: 3}, RoleP1)
	require.NoError(t, err)

	data, err := json.Marshal(e.Serialize(s))
	require.NoError(t, err)
	restored, err := e.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, s, restored)
}
