package games

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtariGoCornerCapture(t *testing.T) {
	e := AtariGoEngine{}
	s := e.InitialState(RoleP1)

	s, err := e.Apply(s, AtariGoMove{Row: 1, Col: 0}, RoleP1)
	require.NoError(t, err)
	s, err = e.Apply(s, AtariGoMove{Row: 0, Col: 0}, RoleP2)
	require.NoError(t, err)
	s, err = e.Apply(s, AtariGoMove{Row: 0, Col: 1}, RoleP1)
	require.NoError(t, err)

	st := s.(*AtariGoState)
	assert.Equal(t, 1, st.BlackCaptures)
	assert.Equal(t, int8(agEmpty), st.Board[0][0])
	assert.True(t, e.Terminal(s))
	assert.Equal(t, OutcomeP1, e.Winner(s))
}

func TestAtariGoSuicideRejected(t *testing.T) {
	e := AtariGoEngine{}
	// White surrounds the corner point; black playing into it captures
	// nothing and has no liberties.
	s := &AtariGoState{ToMove: RoleP1}
	s.Board[0][1] = agWhite
	s.Board[1][0] = agWhite
	s.Board[1][1] = agWhite

	assert.False(t, e.Validate(s, AtariGoMove{Row: 0, Col: 0}, RoleP1))
}

func TestAtariGoCaptureBeatsSuicide(t *testing.T) {
	e := AtariGoEngine{}
	// The same point is legal when the placement takes the adjacent
	// white group's last liberty.
	s := &AtariGoState{ToMove: RoleP1}
	s.Board[0][1] = agWhite
	s.Board[0][2] = agBlack
	s.Board[1][1] = agBlack
	s.Board[1][0] = agBlack

	require.True(t, e.Validate(s, AtariGoMove{Row: 0, Col: 0}, RoleP1))
	next, err := e.Apply(s, AtariGoMove{Row: 0, Col: 0}, RoleP1)
	require.NoError(t, err)
	st := next.(*AtariGoState)
	assert.Equal(t, 1, st.BlackCaptures)
	assert.Equal(t, int8(agEmpty), st.Board[0][1])
	assert.Equal(t, OutcomeP1, e.Winner(next))
}

func TestAtariGoDoublePassDraw(t *testing.T) {
	e := AtariGoEngine{}
	s := e.InitialState(RoleP1)

	s, err := e.Apply(s, AtariGoMove{Pass: true}, RoleP1)
	require.NoError(t, err)
	assert.False(t, e.Terminal(s))
	s, err = e.Apply(s, AtariGoMove{Pass: true}, RoleP2)
	require.NoError(t, err)

	assert.True(t, e.Terminal(s))
	assert.Equal(t, OutcomeDraw, e.Winner(s))
}

func TestAtariGoPassResetsOnPlacement(t *testing.T) {
	e := AtariGoEngine{}
	s := e.InitialState(RoleP1)

	s, err := e.Apply(s, AtariGoMove{Pass: true}, RoleP1)
	require.NoError(t, err)
	s, err = e.Apply(s, AtariGoMove{Row: 4, Col: 4}, RoleP2)
	require.NoError(t, err)
	s, err = e.Apply(s, AtariGoMove{Pass: true}, RoleP1)
	require.NoError(t, err)

	assert.False(t, e.Terminal(s))
}

func TestAtariGoAtariGroups(t *testing.T) {
	s := &AtariGoState{ToMove: RoleP1}
	// A white corner stone with one liberty left.
	s.Board[0][0] = agWhite
	s.Board[0][1] = agBlack

	assert.Equal(t, 1, AtariGoAtariGroups(s, RoleP2))
	assert.Equal(t, 0, AtariGoAtariGroups(s, RoleP1))
}

func TestAtariGoRoundTrip(t *testing.T) {
	e := AtariGoEngine{}
	s := e.InitialState(RoleP1)
	s, err := e.Apply(s, AtariGoMove{Row: 2, Col: 2}, RoleP1)
	require.NoError(t, err)
	s, err = e.Apply(s, AtariGoMove{Row: 6, Col: 6}, RoleP2)
	require.NoError(t, err)

	data, err := json.Marshal(e.Serialize(s))
	require.NoError(t, err)
	restored, err := e.Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, s, restored)
}
