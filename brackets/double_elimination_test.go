package brackets

import (
	"fmt"
	"testing"

	"github.com/Dosada05/game-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("player-%d", i+1)
	}
	return ids
}

func generate(t *testing.T, n int) *Bracket {
	t.Helper()
	g := NewDoubleEliminationGenerator()
	b, err := g.GenerateBracket(GenerateBracketParams{
		TournamentID: "t1",
		PlayerIDs:    playerIDs(n),
		BestOf:       3,
	})
	require.NoError(t, err)
	return b
}

func TestGenerateBracketRejectsTooFewPlayers(t *testing.T) {
	g := NewDoubleEliminationGenerator()
	_, err := g.GenerateBracket(GenerateBracketParams{PlayerIDs: playerIDs(1)})
	assert.Error(t, err)
}

func TestBracketShapeTwoPlayers(t *testing.T) {
	b := generate(t, 2)
	require.Len(t, b.WinnersMatches, 1)
	assert.Empty(t, b.LosersMatches)
	require.NotNil(t, b.GrandFinal)
	require.NotNil(t, b.GrandFinalReset)

	final := b.WinnersMatches[0]
	assert.Equal(t, b.GrandFinal.ID, final.AdvanceWinnerTo)
	assert.Equal(t, b.GrandFinal.ID, final.AdvanceLoserTo)
	assert.True(t, final.HasBothPlayers())
}

func TestBracketShapeFourPlayers(t *testing.T) {
	b := generate(t, 4)
	// Winners: 2 + 1; losers: one pairing round and one drop-in round.
	assert.Len(t, b.WinnersMatches, 3)
	assert.Len(t, b.LosersMatches, 2)

	wr1 := b.WinnersMatches[:2]
	wrFinal := b.WinnersMatches[2]
	lb1, lb2 := b.LosersMatches[0], b.LosersMatches[1]

	for _, m := range wr1 {
		assert.Equal(t, wrFinal.ID, m.AdvanceWinnerTo)
		assert.Equal(t, lb1.ID, m.AdvanceLoserTo)
		assert.True(t, m.HasBothPlayers())
	}
	assert.Equal(t, lb2.ID, lb1.AdvanceWinnerTo)
	assert.Equal(t, lb2.ID, wrFinal.AdvanceLoserTo)
	assert.Equal(t, b.GrandFinal.ID, wrFinal.AdvanceWinnerTo)
	assert.Equal(t, b.GrandFinal.ID, lb2.AdvanceWinnerTo)
	assert.True(t, b.GrandFinal.IsGrandFinal)
	assert.True(t, b.GrandFinalReset.IsGrandFinalReset)
}

func TestBracketShapeEightPlayers(t *testing.T) {
	b := generate(t, 8)
	// Winners: 4 + 2 + 1. Losers: 2, 2, 1, 1.
	assert.Len(t, b.WinnersMatches, 7)
	assert.Len(t, b.LosersMatches, 6)

	perRound := map[int]int{}
	for _, m := range b.LosersMatches {
		assert.Equal(t, models.BracketLosers, m.Bracket)
		perRound[m.Round]++
	}
	assert.Equal(t, map[int]int{1: 2, 2: 2, 3: 1, 4: 1}, perRound)
}

func TestBracketByesLeaveSlotsEmpty(t *testing.T) {
	b := generate(t, 5)
	assert.Len(t, b.WinnersMatches, 7)

	var filled, half, empty int
	for _, m := range b.WinnersMatches {
		if m.Round != 1 {
			continue
		}
		switch m.PlayerCount() {
		case 2:
			filled++
		case 1:
			half++
		case 0:
			empty++
		}
	}
	assert.Equal(t, 2, filled)
	assert.Equal(t, 1, half)
	assert.Equal(t, 1, empty)
}

// Every non-final match advances its winner somewhere, and the link
// target always exists.
func TestBracketLinkIntegrity(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6, 7, 8, 9, 16} {
		b := generate(t, n)
		index := map[string]*models.Match{}
		all := append(append([]*models.Match{}, b.WinnersMatches...), b.LosersMatches...)
		all = append(all, b.GrandFinal, b.GrandFinalReset)
		for _, m := range all {
			index[m.ID] = m
		}
		gfArrivals := 0
		for _, m := range all {
			if m.AdvanceWinnerTo != "" {
				require.Contains(t, index, m.AdvanceWinnerTo, "n=%d match=%s", n, m.Code)
				if m.AdvanceWinnerTo == b.GrandFinal.ID {
					gfArrivals++
				}
			}
			if m.AdvanceLoserTo != "" {
				require.Contains(t, index, m.AdvanceLoserTo, "n=%d match=%s", n, m.Code)
				if m.AdvanceLoserTo == b.GrandFinal.ID {
					gfArrivals++
				}
			}
			if !m.IsGrandFinal && !m.IsGrandFinalReset {
				assert.NotEmpty(t, m.AdvanceWinnerTo, "n=%d match=%s", n, m.Code)
			}
		}
		assert.Equal(t, 2, gfArrivals, "n=%d", n)
	}
}
