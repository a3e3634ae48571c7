package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/game-arena/brackets"
	"github.com/Dosada05/game-arena/games"
	"github.com/Dosada05/game-arena/models"
	"github.com/Dosada05/game-arena/protocol"
	"github.com/google/uuid"
)

// Advancement is the fallout of a finished match: players knocked out,
// whether the grand-final reset was activated, and possibly a champion.
type Advancement struct {
	ChampionID         string
	TournamentFinished bool
	Eliminated         []string
	ResetActivated     bool
}

// TournamentService owns all tournaments and their brackets. Mutations
// of a single tournament must be serialized by its lock (LockFor);
// the registry itself has its own lock.
type TournamentService struct {
	mu          sync.RWMutex
	tournaments map[string]*models.Tournament
	locks       map[string]*sync.Mutex

	generator brackets.BracketGenerator
	sessions  *SessionManager

	rngMu sync.Mutex
	rng   *rand.Rand

	logger *slog.Logger
}

func NewTournamentService(generator brackets.BracketGenerator, sessions *SessionManager, logger *slog.Logger) *TournamentService {
	return &TournamentService{
		tournaments: make(map[string]*models.Tournament),
		locks:       make(map[string]*sync.Mutex),
		generator:   generator,
		sessions:    sessions,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:      logger,
	}
}

// LockFor hands out the serialization lock of a tournament.
func (s *TournamentService) LockFor(tournamentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mu, ok := s.locks[tournamentID]; ok {
		return mu
	}
	mu := &sync.Mutex{}
	s.locks[tournamentID] = mu
	return mu
}

func (s *TournamentService) Get(tournamentID string) (*models.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[tournamentID]
	if !ok {
		return nil, ErrTournamentNotFound
	}
	return t, nil
}

func (s *TournamentService) List() []*models.Tournament {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Create opens a tournament in registration. At most one active
// tournament may exist per game.
func (s *TournamentService) Create(gameID, label string) (*models.Tournament, error) {
	if _, ok := games.ByID(gameID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeForGameLocked(gameID) != nil {
		return nil, ErrGameConflict
	}
	return s.createLocked(gameID, label), nil
}

// FindOrCreateForGame resolves the active tournament of a game,
// creating one in registration when none exists.
func (s *TournamentService) FindOrCreateForGame(gameID string) (*models.Tournament, error) {
	if _, ok := games.ByID(gameID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, gameID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.activeForGameLocked(gameID); t != nil {
		return t, nil
	}
	return s.createLocked(gameID, ""), nil
}

func (s *TournamentService) activeForGameLocked(gameID string) *models.Tournament {
	for _, t := range s.tournaments {
		if t.GameID == gameID && t.Phase != models.TournamentFinished {
			return t
		}
	}
	return nil
}

func (s *TournamentService) createLocked(gameID, label string) *models.Tournament {
	t := &models.Tournament{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Label:     label,
		Phase:     models.TournamentRegistration,
		Players:   make(map[string]*models.Player),
		CreatedAt: time.Now().UTC(),
	}
	s.tournaments[t.ID] = t
	s.logger.Info("tournament created",
		slog.String("tournament_id", t.ID),
		slog.String("game_id", gameID))
	return t
}

// AddPlayer registers a player, or marks an existing one online again
// when existingID matches (reconnection). Caller holds the tournament
// lock.
func (s *TournamentService) AddPlayer(t *models.Tournament, name, class, existingID string) (*models.Player, bool, error) {
	if existingID != "" {
		if p := t.Player(existingID); p != nil {
			p.Online = true
			return p, true, nil
		}
	}
	if t.Phase != models.TournamentRegistration {
		return nil, false, ErrRegistrationClosed
	}
	p := &models.Player{
		ID:     uuid.NewString(),
		Name:   name,
		Class:  class,
		Online: true,
	}
	t.Players[p.ID] = p
	return p, false, nil
}

// AddBots inserts n synthetic players. Only legal during registration.
func (s *TournamentService) AddBots(t *models.Tournament, n int) ([]*models.Player, error) {
	if t.Phase != models.TournamentRegistration {
		return nil, ErrRegistrationClosed
	}
	existing := 0
	for _, p := range t.Players {
		if p.IsBot {
			existing++
		}
	}
	bots := make([]*models.Player, 0, n)
	for i := 0; i < n; i++ {
		p := &models.Player{
			ID:     uuid.NewString(),
			Name:   fmt.Sprintf("Bot %d", existing+i+1),
			Online: true,
			IsBot:  true,
		}
		t.Players[p.ID] = p
		bots = append(bots, p)
	}
	return bots, nil
}

// SetOnline toggles a player's presence flag. It never forfeits.
func (s *TournamentService) SetOnline(t *models.Tournament, playerID string, online bool) error {
	p := t.Player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.IsBot {
		return nil
	}
	p.Online = online
	return nil
}

// Start freezes registration, shuffles the field, builds the double
// elimination bracket, and resolves construction-time byes. Caller
// holds the tournament lock.
func (s *TournamentService) Start(t *models.Tournament) (*Advancement, error) {
	if t.Phase == models.TournamentRunning {
		return nil, ErrAlreadyRunning
	}
	if t.Phase != models.TournamentRegistration {
		return nil, ErrRegistrationClosed
	}
	if len(t.Players) < 2 {
		return nil, ErrNotEnoughPlayers
	}

	ids := make([]string, 0, len(t.Players))
	for id := range t.Players {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	s.rngMu.Lock()
	s.rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	s.rngMu.Unlock()

	bracket, err := s.generator.GenerateBracket(brackets.GenerateBracketParams{
		TournamentID: t.ID,
		PlayerIDs:    ids,
		BestOf:       3,
	})
	if err != nil {
		return nil, fmt.Errorf("bracket generation failed: %w", err)
	}

	t.WinnersMatches = bracket.WinnersMatches
	t.LosersMatches = bracket.LosersMatches
	t.GrandFinal = bracket.GrandFinal
	t.GrandFinalReset = bracket.GrandFinalReset
	t.RebuildMatchIndex()

	for _, m := range t.AllMatches() {
		if m.AdvanceWinnerTo != "" {
			t.MatchByID(m.AdvanceWinnerTo).ExpectedArrivals++
		}
		if m.AdvanceLoserTo != "" {
			t.MatchByID(m.AdvanceLoserTo).ExpectedArrivals++
		}
	}

	now := time.Now().UTC()
	t.Phase = models.TournamentRunning
	t.StartedAt = &now

	// Construction-time byes: round-one matches missing an opponent
	// resolve immediately and cascade through the bracket.
	adv := &Advancement{}
	for _, m := range t.WinnersMatches {
		s.checkAutoFinish(t, m, adv)
	}

	s.logger.Info("tournament started",
		slog.String("tournament_id", t.ID),
		slog.Int("players", len(t.Players)),
		slog.Int("winners_matches", len(t.WinnersMatches)),
		slog.Int("losers_matches", len(t.LosersMatches)))
	return adv, nil
}

// MatchesReadyToStart lists waiting matches with both slots filled.
func (s *TournamentService) MatchesReadyToStart(t *models.Tournament) []*models.Match {
	var out []*models.Match
	for _, m := range t.AllMatches() {
		if m.Phase == models.MatchWaiting && m.HasBothPlayers() {
			out = append(out, m)
		}
	}
	return out
}

// ResolveFinishedMatch propagates a finished match through the bracket:
// winner and loser advancement, bye cascades, grand-final and reset
// semantics, champion detection. Caller holds the tournament lock.
func (s *TournamentService) ResolveFinishedMatch(t *models.Tournament, m *models.Match) *Advancement {
	adv := &Advancement{}
	s.resolve(t, m, adv)
	return adv
}

func (s *TournamentService) resolve(t *models.Tournament, m *models.Match, adv *Advancement) {
	if m.IsGrandFinal {
		s.resolveGrandFinal(t, m, adv)
		return
	}
	if m.IsGrandFinalReset {
		s.crownChampion(t, m.WinnerID, m.LoserID, adv)
		return
	}

	if m.AdvanceWinnerTo != "" {
		target := t.MatchByID(m.AdvanceWinnerTo)
		if m.WinnerID != "" {
			target.AssignPlayer(m.WinnerID)
		}
		target.ExpectedArrivals--
		s.checkAutoFinish(t, target, adv)
	}

	if m.AdvanceLoserTo != "" {
		target := t.MatchByID(m.AdvanceLoserTo)
		if m.LoserID != "" {
			target.AssignPlayer(m.LoserID)
		}
		target.ExpectedArrivals--
		s.checkAutoFinish(t, target, adv)
	} else if m.LoserID != "" {
		t.EliminationOrder = append(t.EliminationOrder, m.LoserID)
		adv.Eliminated = append(adv.Eliminated, m.LoserID)
	}
}

// checkAutoFinish resolves a waiting match whose remaining arrivals are
// exhausted: one player is a bye, zero players is a dead slot chain.
func (s *TournamentService) checkAutoFinish(t *models.Tournament, m *models.Match, adv *Advancement) {
	if m.Phase != models.MatchWaiting || m.IsGrandFinalReset || m.ExpectedArrivals > 0 {
		return
	}
	switch m.PlayerCount() {
	case 2:
		return
	case 1:
		m.Phase = models.MatchFinished
		if m.P1ID != "" {
			m.WinnerID = m.P1ID
		} else {
			m.WinnerID = m.P2ID
		}
		s.logger.Debug("bye resolved",
			slog.String("match_id", m.ID),
			slog.String("code", m.Code),
			slog.String("winner_id", m.WinnerID))
	case 0:
		m.Phase = models.MatchFinished
	}
	s.resolve(t, m, adv)
}

func (s *TournamentService) resolveGrandFinal(t *models.Tournament, m *models.Match, adv *Advancement) {
	// Slot one is the winners-bracket champion: the winners final always
	// finishes before the losers final can.
	if m.WinnerID == m.P1ID {
		t.GrandFinalReset = nil
		t.RebuildMatchIndex()
		s.crownChampion(t, m.WinnerID, m.LoserID, adv)
		return
	}
	reset := t.GrandFinalReset
	reset.P1ID = m.P1ID
	reset.P2ID = m.P2ID
	adv.ResetActivated = true
	s.logger.Info("grand final reset activated",
		slog.String("tournament_id", t.ID),
		slog.String("match_id", reset.ID))
}

func (s *TournamentService) crownChampion(t *models.Tournament, championID, loserID string, adv *Advancement) {
	if loserID != "" {
		t.EliminationOrder = append(t.EliminationOrder, loserID)
		adv.Eliminated = append(adv.Eliminated, loserID)
	}
	now := time.Now().UTC()
	t.ChampionID = championID
	t.Phase = models.TournamentFinished
	t.FinishedAt = &now
	adv.ChampionID = championID
	adv.TournamentFinished = true
	s.logger.Info("champion crowned",
		slog.String("tournament_id", t.ID),
		slog.String("champion_id", championID))
}

// Finish forces a tournament closed without crowning a champion.
func (s *TournamentService) Finish(t *models.Tournament) {
	if t.Phase == models.TournamentFinished {
		return
	}
	now := time.Now().UTC()
	t.Phase = models.TournamentFinished
	t.FinishedAt = &now
}

// Standings ranks players by elimination order: the champion first, the
// most recently eliminated next.
func (s *TournamentService) Standings(t *models.Tournament) []protocol.Standing {
	var out []protocol.Standing
	rank := 1
	if t.ChampionID != "" {
		out = append(out, protocol.Standing{Rank: rank, PlayerID: t.ChampionID, PlayerName: t.PlayerName(t.ChampionID)})
		rank++
	}
	for i := len(t.EliminationOrder) - 1; i >= 0; i-- {
		id := t.EliminationOrder[i]
		out = append(out, protocol.Standing{Rank: rank, PlayerID: id, PlayerName: t.PlayerName(id)})
		rank++
	}
	return out
}

// SessionSnapshot pairs a session with its engine state in external
// form.
type SessionSnapshot struct {
	Session *models.GameSession `json:"session"`
	State   json.RawMessage     `json:"state"`
}

// TournamentSnapshot is the full exportable state of a tournament,
// players map included. Import of an export is a faithful round trip.
type TournamentSnapshot struct {
	Tournament *models.Tournament `json:"tournament"`
	Sessions   []SessionSnapshot  `json:"sessions"`
}

// Snapshot exports a tournament and the sessions of its matches. Caller
// holds the tournament lock.
func (s *TournamentService) Snapshot(t *models.Tournament) (*TournamentSnapshot, error) {
	snap := &TournamentSnapshot{Tournament: t}
	for _, m := range t.AllMatches() {
		session, ok := s.sessions.Current(m.ID)
		if !ok {
			continue
		}
		engine, ok := games.ByID(session.GameID)
		if !ok {
			continue
		}
		stateJSON, err := json.Marshal(engine.Serialize(session.State))
		if err != nil {
			return nil, fmt.Errorf("serialize session %s: %w", session.ID, err)
		}
		snap.Sessions = append(snap.Sessions, SessionSnapshot{Session: session, State: stateJSON})
	}
	return snap, nil
}

// Restore installs a snapshot as a live tournament, replacing any
// previous tournament with the same id.
func (s *TournamentService) Restore(snap *TournamentSnapshot) (*models.Tournament, error) {
	t := snap.Tournament
	if t == nil || t.ID == "" {
		return nil, fmt.Errorf("snapshot has no tournament")
	}
	if t.Players == nil {
		t.Players = make(map[string]*models.Player)
	}
	t.RebuildMatchIndex()
	for _, ss := range snap.Sessions {
		if ss.Session == nil {
			return nil, fmt.Errorf("snapshot contains a session without a body")
		}
		engine, ok := games.ByID(ss.Session.GameID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGame, ss.Session.GameID)
		}
		state, err := engine.Deserialize(ss.State)
		if err != nil {
			return nil, fmt.Errorf("deserialize session %s: %w", ss.Session.ID, err)
		}
		ss.Session.State = state
		s.sessions.Restore(ss.Session)
	}
	s.mu.Lock()
	s.tournaments[t.ID] = t
	s.mu.Unlock()
	s.logger.Info("tournament restored", slog.String("tournament_id", t.ID))
	return t, nil
}
