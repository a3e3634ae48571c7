package services

import (
	"log/slog"

	"github.com/Dosada05/game-arena/games"
	"github.com/Dosada05/game-arena/models"
)

// GameResult reports the state of a match after a game result lands.
type GameResult struct {
	MatchFinished bool
	NextGame      int
	NextStarting  games.Role
}

// MatchService orchestrates the best-of-three lifecycle of a match.
// Tournament-level serialization is the caller's responsibility.
type MatchService struct {
	logger *slog.Logger
}

func NewMatchService(logger *slog.Logger) *MatchService {
	return &MatchService{logger: logger}
}

// Start transitions a waiting, fully seated match into play. Game one
// always starts with p1.
func (s *MatchService) Start(m *models.Match) error {
	if m.Phase != models.MatchWaiting {
		return ErrMatchNotWaiting
	}
	if !m.HasBothPlayers() {
		return ErrMatchMissingSlots
	}
	m.Phase = models.MatchPlaying
	m.CurrentGame = 1
	m.StartingRole = games.RoleP1
	s.logger.Info("match started",
		slog.String("match_id", m.ID),
		slog.String("code", m.Code))
	return nil
}

// startingRoleFor alternates per game regardless of results: odd games
// start with p1, even games with p2.
func startingRoleFor(gameNumber int) games.Role {
	if gameNumber%2 == 1 {
		return games.RoleP1
	}
	return games.RoleP2
}

// RecordGameResult applies one game outcome. An empty winnerID is a
// draw: it consumes the game number without scoring.
func (s *MatchService) RecordGameResult(m *models.Match, winnerID string) GameResult {
	switch winnerID {
	case m.P1ID:
		if winnerID != "" {
			m.P1Wins++
		}
	case m.P2ID:
		if winnerID != "" {
			m.P2Wins++
		}
	}

	needed := m.WinsNeeded()
	if m.P1Wins >= needed || m.P2Wins >= needed {
		m.Phase = models.MatchFinished
		if m.P1Wins >= needed {
			m.WinnerID, m.LoserID = m.P1ID, m.P2ID
		} else {
			m.WinnerID, m.LoserID = m.P2ID, m.P1ID
		}
		m.StartingRole = games.RoleNone
		s.logger.Info("match finished",
			slog.String("match_id", m.ID),
			slog.String("winner_id", m.WinnerID),
			slog.Int("p1_wins", m.P1Wins),
			slog.Int("p2_wins", m.P2Wins))
		return GameResult{MatchFinished: true}
	}

	m.CurrentGame++
	m.StartingRole = startingRoleFor(m.CurrentGame)
	return GameResult{NextGame: m.CurrentGame, NextStarting: m.StartingRole}
}
