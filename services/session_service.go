package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/game-arena/games"
	"github.com/Dosada05/game-arena/models"
	"github.com/google/uuid"
)

// MaxSessionMoves bounds pathological bot-versus-bot loops. A session
// hitting the cap is closed as a draw.
const MaxSessionMoves = 1000

// MoveResult reports the effect of an accepted move.
type MoveResult struct {
	GameOver bool
	Winner   games.Outcome
	State    games.State
	TurnRole games.Role
}

// SessionManager owns game sessions keyed by match. At most one session
// per match is active (non-finished) at any time.
type SessionManager struct {
	mu      sync.RWMutex
	byMatch map[string]*models.GameSession
	logger  *slog.Logger
}

func NewSessionManager(logger *slog.Logger) *SessionManager {
	return &SessionManager{
		byMatch: make(map[string]*models.GameSession),
		logger:  logger,
	}
}

// Create opens the session for the given game number of a match,
// replacing any finished predecessor.
func (m *SessionManager) Create(tournamentID, matchID string, gameNumber int, gameID string, starting games.Role) (*models.GameSession, error) {
	engine, ok := games.ByID(gameID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, exists := m.byMatch[matchID]; exists && !prev.Finished {
		return nil, fmt.Errorf("match %s already has an active session", matchID)
	}

	state := engine.InitialState(starting)
	session := &models.GameSession{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		MatchID:      matchID,
		GameNumber:   gameNumber,
		GameID:       gameID,
		State:        state,
		TurnRole:     engine.Turn(state),
		CreatedAt:    time.Now().UTC(),
	}
	m.byMatch[matchID] = session
	m.logger.Info("game session created",
		slog.String("session_id", session.ID),
		slog.String("match_id", matchID),
		slog.String("game_id", gameID),
		slog.Int("game_number", gameNumber))
	return session, nil
}

// Active returns the non-finished session of a match, if any.
func (m *SessionManager) Active(matchID string) (*models.GameSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byMatch[matchID]
	if !ok || s.Finished {
		return nil, false
	}
	return s, true
}

// Current returns the latest session of a match regardless of state.
func (m *SessionManager) Current(matchID string) (*models.GameSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byMatch[matchID]
	return s, ok
}

// Drop removes the session of a match.
func (m *SessionManager) Drop(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byMatch, matchID)
}

// Restore installs a session rebuilt from a snapshot.
func (m *SessionManager) Restore(session *models.GameSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byMatch[session.MatchID] = session
}

// SubmitMove validates and applies a move on the match's active session.
// The raw payload is recorded verbatim in the move log.
func (m *SessionManager) SubmitMove(matchID, playerID string, role games.Role, raw json.RawMessage) (*MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.byMatch[matchID]
	if !ok {
		return nil, ErrNoActiveGame
	}
	if session.Finished {
		return nil, ErrGameFinished
	}
	engine, ok := games.ByID(session.GameID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, session.GameID)
	}
	if role != session.TurnRole {
		return nil, ErrNotYourTurn
	}
	mv, err := engine.ParseMove(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}
	if !engine.Validate(session.State, mv, role) {
		return nil, ErrInvalidMove
	}
	next, err := engine.Apply(session.State, mv, role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMove, err)
	}

	session.State = next
	session.TurnRole = engine.Turn(next)
	session.Moves = append(session.Moves, models.MoveRecord{
		PlayerID:  playerID,
		Move:      append(json.RawMessage(nil), raw...),
		Timestamp: time.Now().UTC(),
	})

	result := &MoveResult{State: next, TurnRole: session.TurnRole}
	switch {
	case engine.Terminal(next):
		m.finishLocked(session, engine.Winner(next))
		result.GameOver = true
		result.Winner = session.Winner
	case len(session.Moves) >= MaxSessionMoves:
		m.logger.Warn("session move cap reached, closing as draw",
			slog.String("session_id", session.ID),
			slog.String("match_id", matchID))
		m.finishLocked(session, games.OutcomeDraw)
		result.GameOver = true
		result.Winner = games.OutcomeDraw
	}
	return result, nil
}

func (m *SessionManager) finishLocked(session *models.GameSession, winner games.Outcome) {
	now := time.Now().UTC()
	session.Finished = true
	session.Winner = winner
	session.FinishedAt = &now
}

// SerializeState renders the session state in its external form.
func (m *SessionManager) SerializeState(session *models.GameSession) interface{} {
	engine, ok := games.ByID(session.GameID)
	if !ok {
		return nil
	}
	return engine.Serialize(session.State)
}
