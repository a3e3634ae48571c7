package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/game-arena/models"
	"github.com/google/uuid"
)

// GenerateBracketParams carries everything a generator needs. PlayerIDs
// are already shuffled by the caller; slots beyond the player count stay
// empty and resolve as byes.
type GenerateBracketParams struct {
	TournamentID string
	PlayerIDs    []string
	BestOf       int
}

type BracketGenerator interface {
	GenerateBracket(params GenerateBracketParams) (*Bracket, error)
	GetName() string
}

// Bracket is the full constructed match set of one tournament.
type Bracket struct {
	WinnersMatches  []*models.Match
	LosersMatches   []*models.Match
	GrandFinal      *models.Match
	GrandFinalReset *models.Match
}

type DoubleEliminationGenerator struct{}

func NewDoubleEliminationGenerator() BracketGenerator {
	return &DoubleEliminationGenerator{}
}

func (g *DoubleEliminationGenerator) GetName() string {
	return "DoubleElimination"
}

func newMatch(code string, round int, side models.BracketSide, bestOf int) *models.Match {
	return &models.Match{
		ID:      uuid.NewString(),
		Code:    code,
		Round:   round,
		Bracket: side,
		BestOf:  bestOf,
		Phase:   models.MatchWaiting,
	}
}

// GenerateBracket lays out a double-elimination bracket: a full winners
// tree over the next power of two, a losers bracket of 2*(R-1) rounds
// alternating drop-in and elimination pairings, and an eagerly built
// grand final plus reset. Links are match ids via AdvanceWinnerTo and
// AdvanceLoserTo; byes are resolved later by arrival accounting.
func (g *DoubleEliminationGenerator) GenerateBracket(params GenerateBracketParams) (*Bracket, error) {
	n := len(params.PlayerIDs)
	if n < 2 {
		return nil, errors.New("not enough players to generate a double elimination bracket (minimum 2)")
	}
	bestOf := params.BestOf
	if bestOf <= 0 {
		bestOf = 3
	}

	size := 1
	rounds := 0
	for size < n {
		size <<= 1
		rounds++
	}
	if rounds == 0 {
		size, rounds = 2, 1
	}

	b := &Bracket{}

	// Winners bracket, round by round.
	winnersByRound := make([][]*models.Match, rounds+1)
	for r := 1; r <= rounds; r++ {
		count := size >> uint(r)
		winnersByRound[r] = make([]*models.Match, count)
		for i := 0; i < count; i++ {
			m := newMatch(fmt.Sprintf("W%dM%d", r, i+1), r, models.BracketWinners, bestOf)
			winnersByRound[r][i] = m
			b.WinnersMatches = append(b.WinnersMatches, m)
		}
	}
	for i, pid := range params.PlayerIDs {
		winnersByRound[1][i/2].AssignPlayer(pid)
	}
	for r := 1; r < rounds; r++ {
		for i, m := range winnersByRound[r] {
			m.AdvanceWinnerTo = winnersByRound[r+1][i/2].ID
		}
	}

	// Losers bracket: rounds 2m-1 and 2m each hold size/2^(m+1) matches.
	// Odd rounds pair survivors (round one pairs winners-round-one
	// losers); even rounds drop in the losers of winners round m+1.
	losersByRound := make([][]*models.Match, 2*(rounds-1)+1)
	for m := 1; m <= rounds-1; m++ {
		count := size >> uint(m+1)
		for _, lr := range []int{2*m - 1, 2 * m} {
			losersByRound[lr] = make([]*models.Match, count)
			for i := 0; i < count; i++ {
				lm := newMatch(fmt.Sprintf("L%dM%d", lr, i+1), lr, models.BracketLosers, bestOf)
				losersByRound[lr][i] = lm
				b.LosersMatches = append(b.LosersMatches, lm)
			}
		}
	}
	for m := 1; m <= rounds-1; m++ {
		if m == 1 {
			for i, wm := range winnersByRound[1] {
				wm.AdvanceLoserTo = losersByRound[1][i/2].ID
			}
		} else {
			for i, lm := range losersByRound[2*m-2] {
				lm.AdvanceWinnerTo = losersByRound[2*m-1][i/2].ID
			}
		}
		for i, lm := range losersByRound[2*m-1] {
			lm.AdvanceWinnerTo = losersByRound[2*m][i].ID
		}
		for i, wm := range winnersByRound[m+1] {
			wm.AdvanceLoserTo = losersByRound[2*m][i].ID
		}
	}

	// Grand final: winners champion versus losers champion. The reset is
	// built eagerly and only populated if the losers side takes the
	// grand final.
	gf := newMatch("GF", rounds+1, models.BracketWinners, bestOf)
	gf.IsGrandFinal = true
	reset := newMatch("GFR", rounds+2, models.BracketWinners, bestOf)
	reset.IsGrandFinalReset = true

	winnersFinal := winnersByRound[rounds][0]
	winnersFinal.AdvanceWinnerTo = gf.ID
	if rounds == 1 {
		// Two players: the single loser is the losers champion.
		winnersFinal.AdvanceLoserTo = gf.ID
	} else {
		losersFinal := losersByRound[2*(rounds-1)][0]
		losersFinal.AdvanceWinnerTo = gf.ID
	}

	b.GrandFinal = gf
	b.GrandFinalReset = reset
	return b, nil
}
