package services

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Dosada05/game-arena/brackets"
	"github.com/Dosada05/game-arena/games"
	"github.com/Dosada05/game-arena/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServices(t *testing.T) (*TournamentService, *MatchService, *SessionManager) {
	t.Helper()
	logger := testLogger()
	sessions := NewSessionManager(logger)
	tournaments := NewTournamentService(brackets.NewDoubleEliminationGenerator(), sessions, logger)
	return tournaments, NewMatchService(logger), sessions
}

func registeredTournament(t *testing.T, svc *TournamentService, gameID string, names ...string) *models.Tournament {
	t.Helper()
	tournament, err := svc.Create(gameID, "test")
	require.NoError(t, err)
	for _, name := range names {
		_, _, err := svc.AddPlayer(tournament, name, "", "")
		require.NoError(t, err)
	}
	return tournament
}

// playMatch finishes a waiting match 2-0 in favor of the given player
// and resolves the bracket fallout.
func playMatch(t *testing.T, tournaments *TournamentService, matches *MatchService, tournament *models.Tournament, m *models.Match, winnerID string) *Advancement {
	t.Helper()
	require.NoError(t, matches.Start(m))
	res := matches.RecordGameResult(m, winnerID)
	require.False(t, res.MatchFinished)
	res = matches.RecordGameResult(m, winnerID)
	require.True(t, res.MatchFinished)
	return tournaments.ResolveFinishedMatch(tournament, m)
}

func TestCreateEnforcesOneActiveTournamentPerGame(t *testing.T) {
	svc, _, _ := newTestServices(t)
	_, err := svc.Create(games.DominorioID, "")
	require.NoError(t, err)
	_, err = svc.Create(games.DominorioID, "")
	assert.ErrorIs(t, err, ErrGameConflict)

	_, err = svc.Create("chess", "")
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestAddPlayerAndReconnect(t *testing.T) {
	svc, _, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.QuelhasID, "alice")

	var alice *models.Player
	for _, p := range tournament.Players {
		alice = p
	}
	require.NotNil(t, alice)

	alice.Online = false
	again, reconnected, err := svc.AddPlayer(tournament, "alice", "", alice.ID)
	require.NoError(t, err)
	assert.True(t, reconnected)
	assert.True(t, again.Online)
	assert.Equal(t, alice.ID, again.ID)

	// Registration closes once the tournament runs.
	_, _, err = svc.AddPlayer(tournament, "late", "", "")
	require.NoError(t, err)
	_, err = svc.Start(tournament)
	require.NoError(t, err)
	_, _, err = svc.AddPlayer(tournament, "too-late", "", "")
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestAddBotsOnlyDuringRegistration(t *testing.T) {
	svc, _, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.NexID, "alice", "bob")

	bots, err := svc.AddBots(tournament, 2)
	require.NoError(t, err)
	require.Len(t, bots, 2)
	for _, b := range bots {
		assert.True(t, b.IsBot)
		assert.True(t, b.Online)
	}

	_, err = svc.Start(tournament)
	require.NoError(t, err)
	_, err = svc.AddBots(tournament, 1)
	assert.ErrorIs(t, err, ErrRegistrationClosed)
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	svc, _, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.ProdutoID, "alone")
	_, err := svc.Start(tournament)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)
}

func TestStartResolvesRoundOneByes(t *testing.T) {
	svc, _, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.AtariGoID, "a", "b", "c")
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	assert.Equal(t, models.TournamentRunning, tournament.Phase)
	require.Len(t, tournament.WinnersMatches, 3)

	var byeMatch, fullMatch *models.Match
	for _, m := range tournament.WinnersMatches {
		if m.Round != 1 {
			continue
		}
		if m.PlayerCount() == 1 {
			byeMatch = m
		} else {
			fullMatch = m
		}
	}
	require.NotNil(t, byeMatch)
	require.NotNil(t, fullMatch)

	// The bye resolved at construction: winner set, no loser, and the
	// player already advanced into the winners final.
	assert.Equal(t, models.MatchFinished, byeMatch.Phase)
	assert.NotEmpty(t, byeMatch.WinnerID)
	assert.Empty(t, byeMatch.LoserID)
	final := tournament.MatchByID(byeMatch.AdvanceWinnerTo)
	require.NotNil(t, final)
	assert.True(t, final.HasPlayer(byeMatch.WinnerID))

	ready := svc.MatchesReadyToStart(tournament)
	require.Len(t, ready, 1)
	assert.Equal(t, fullMatch.ID, ready[0].ID)
}

func TestWinnerAppearsInExactlyOneLaterSlot(t *testing.T) {
	svc, matches, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.GatosCaesID, "a", "b", "c", "d")
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	m := svc.MatchesReadyToStart(tournament)[0]
	winner := m.P1ID
	loser := m.P2ID
	playMatch(t, svc, matches, tournament, m, winner)

	var winnerSlots, loserSlots int
	for _, other := range tournament.AllMatches() {
		if other.ID == m.ID {
			continue
		}
		if other.HasPlayer(winner) {
			winnerSlots++
		}
		if other.HasPlayer(loser) {
			loserSlots++
		}
	}
	assert.Equal(t, 1, winnerSlots)
	assert.Equal(t, 1, loserSlots)
}

// driveToGrandFinal plays a four-player bracket down to the grand
// final, always advancing the p1 seat, and returns the grand final.
func driveToGrandFinal(t *testing.T, svc *TournamentService, matches *MatchService, tournament *models.Tournament) *models.Match {
	t.Helper()
	for {
		ready := svc.MatchesReadyToStart(tournament)
		require.NotEmpty(t, ready, "bracket stalled before the grand final")
		m := ready[0]
		if m.IsGrandFinal {
			return m
		}
		playMatch(t, svc, matches, tournament, m, m.P1ID)
	}
}

func TestGrandFinalWinnersSideWinEndsTournament(t *testing.T) {
	svc, matches, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.DominorioID, "a", "b", "c", "d")
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	gf := driveToGrandFinal(t, svc, matches, tournament)
	require.True(t, gf.HasBothPlayers())

	// Slot one of the grand final is the winners-bracket champion.
	adv := playMatch(t, svc, matches, tournament, gf, gf.P1ID)
	assert.True(t, adv.TournamentFinished)
	assert.Equal(t, gf.WinnerID, tournament.ChampionID)
	assert.Equal(t, models.TournamentFinished, tournament.Phase)
	assert.Nil(t, tournament.GrandFinalReset)
}

func TestGrandFinalResetWhenLosersSideWins(t *testing.T) {
	svc, matches, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.DominorioID, "a", "b", "c", "d")
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	gf := driveToGrandFinal(t, svc, matches, tournament)
	winnersSide, losersSide := gf.P1ID, gf.P2ID

	adv := playMatch(t, svc, matches, tournament, gf, losersSide)
	require.False(t, adv.TournamentFinished)
	assert.True(t, adv.ResetActivated)
	assert.Empty(t, tournament.ChampionID)

	reset := tournament.GrandFinalReset
	require.NotNil(t, reset)
	assert.Equal(t, winnersSide, reset.P1ID)
	assert.Equal(t, losersSide, reset.P2ID)

	adv = playMatch(t, svc, matches, tournament, reset, losersSide)
	assert.True(t, adv.TournamentFinished)
	assert.Equal(t, losersSide, tournament.ChampionID)
	assert.Equal(t, models.TournamentFinished, tournament.Phase)
}

func TestStandingsRankChampionFirst(t *testing.T) {
	svc, matches, _ := newTestServices(t)
	tournament := registeredTournament(t, svc, games.DominorioID, "a", "b", "c", "d")
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	gf := driveToGrandFinal(t, svc, matches, tournament)
	playMatch(t, svc, matches, tournament, gf, gf.P1ID)

	standings := svc.Standings(tournament)
	require.Len(t, standings, 4)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, tournament.ChampionID, standings[0].PlayerID)
	assert.Equal(t, gf.LoserID, standings[1].PlayerID)
}

func TestTotalMatchesPlayedBound(t *testing.T) {
	svc, matches, _ := newTestServices(t)
	names := make([]string, 6)
	for i := range names {
		names[i] = fmt.Sprintf("p%d", i+1)
	}
	tournament := registeredTournament(t, svc, games.DominorioID, names...)
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	for tournament.Phase == models.TournamentRunning {
		ready := svc.MatchesReadyToStart(tournament)
		require.NotEmpty(t, ready)
		m := ready[0]
		playMatch(t, svc, matches, tournament, m, m.P2ID)
	}

	played := 0
	for _, m := range tournament.AllMatches() {
		if m.Phase == models.MatchFinished && m.HasBothPlayers() {
			played++
		}
	}
	// At most 2n-2 plus one reset.
	assert.LessOrEqual(t, played, 2*6-2+1)
	assert.NotEmpty(t, tournament.ChampionID)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	svc, matches, sessions := newTestServices(t)
	tournament := registeredTournament(t, svc, games.DominorioID, "a", "b", "c", "d")
	_, err := svc.Start(tournament)
	require.NoError(t, err)

	m := svc.MatchesReadyToStart(tournament)[0]
	require.NoError(t, matches.Start(m))
	_, err = sessions.Create(tournament.ID, m.ID, 1, tournament.GameID, m.StartingRole)
	require.NoError(t, err)
	_, err = sessions.SubmitMove(m.ID, m.P1ID, games.RoleP1, json.RawMessage(`{"row1":0,"col1":0,"row2":1,"col2":0}`))
	require.NoError(t, err)

	snap, err := svc.Snapshot(tournament)
	require.NoError(t, err)
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	// Restore into a completely fresh service pair.
	freshSvc, _, freshSessions := newTestServices(t)
	var decoded TournamentSnapshot
	require.NoError(t, json.Unmarshal(data, &decoded))
	restored, err := freshSvc.Restore(&decoded)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, restored.ID)
	assert.Equal(t, len(tournament.Players), len(restored.Players))
	assert.Equal(t, len(tournament.WinnersMatches), len(restored.WinnersMatches))
	assert.Equal(t, len(tournament.LosersMatches), len(restored.LosersMatches))

	session, ok := freshSessions.Active(m.ID)
	require.True(t, ok)
	require.Len(t, session.Moves, 1)
	engine, _ := games.ByID(games.DominorioID)
	assert.Equal(t, games.RoleP2, engine.Turn(session.State))
}
