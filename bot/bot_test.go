package bot

import (
	"testing"

	"github.com/Dosada05/game-arena/games"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicLevelReproducibleWithFixedSeed(t *testing.T) {
	engine, _ := games.ByID(games.DominorioID)
	state := engine.InitialState(games.RoleP1)

	first := New(42)
	second := New(42)
	for i := 0; i < 10; i++ {
		mv1, ok1 := first.ChooseMove(games.DominorioID, state, games.RoleP1, LevelBasic)
		mv2, ok2 := second.ChooseMove(games.DominorioID, state, games.RoleP1, LevelBasic)
		require.True(t, ok1)
		require.True(t, ok2)
		assert.Equal(t, mv1, mv2)
	}
}

func TestChooseMoveReturnsLegalMoves(t *testing.T) {
	policy := New(7)
	for _, gameID := range games.IDs() {
		engine, ok := games.ByID(gameID)
		require.True(t, ok)
		state := engine.InitialState(games.RoleP1)
		for _, level := range []Level{LevelBasic, LevelAdvanced} {
			mv, ok := policy.ChooseMove(gameID, state, games.RoleP1, level)
			require.True(t, ok, "game %s level %s", gameID, level)
			assert.True(t, engine.Validate(state, mv, games.RoleP1), "game %s level %s", gameID, level)
		}
	}
}

func TestAdvancedAtariGoTakesImmediateCapture(t *testing.T) {
	engine, _ := games.ByID(games.AtariGoID)
	state := engine.InitialState(games.RoleP1)

	// Black surrounds a white corner stone except one liberty.
	moves := [][2]interface{}{
		{games.AtariGoMove{Row: 1, Col: 0}, games.RoleP1},
		{games.AtariGoMove{Row: 0, Col: 0}, games.RoleP2},
		{games.AtariGoMove{Row: 5, Col: 5}, games.RoleP1},
		{games.AtariGoMove{Row: 8, Col: 8}, games.RoleP2},
	}
	for _, step := range moves {
		var err error
		state, err = engine.Apply(state, step[0], step[1].(games.Role))
		require.NoError(t, err)
	}

	policy := New(1)
	mv, ok := policy.ChooseMove(games.AtariGoID, state, games.RoleP1, LevelAdvanced)
	require.True(t, ok)
	assert.Equal(t, games.AtariGoMove{Row: 0, Col: 1}, mv)
}

func TestAdvancedNexPrefersCenterColumnForBlack(t *testing.T) {
	engine, _ := games.ByID(games.NexID)
	state := engine.InitialState(games.RoleP1)

	policy := New(3)
	mv, ok := policy.ChooseMove(games.NexID, state, games.RoleP1, LevelAdvanced)
	require.True(t, ok)
	place, isPlace := mv.(games.NexMove)
	require.True(t, isPlace)
	require.Equal(t, games.NexPlace, place.Type)
	assert.Equal(t, 5, place.OwnPiece.Col)
}

func TestParseLevel(t *testing.T) {
	lvl, ok := ParseLevel("basic")
	assert.True(t, ok)
	assert.Equal(t, LevelBasic, lvl)
	_, ok = ParseLevel("expert")
	assert.False(t, ok)
}
