package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/game-arena/bot"
	"github.com/Dosada05/game-arena/games"
	"github.com/Dosada05/game-arena/models"
	"github.com/Dosada05/game-arena/protocol"
)

// Sender pushes one outbound frame to a client. Implementations must
// not block; a frame to a congested peer may be dropped.
type Sender interface {
	SendJSON(v interface{}) error
}

type CoordinatorOptions struct {
	BotMoveDelay   time.Duration
	InterGamePause time.Duration
	BotLevel       bot.Level
	AutoReady      bool
}

type connState struct {
	sender       Sender
	playerID     string
	tournamentID string
}

// Coordinator dispatches inbound client commands to the tournament,
// match and session services, drives bots, and fans state out to the
// connected players. All mutations of a tournament happen under its
// lock from the tournament service.
type Coordinator struct {
	tournaments *TournamentService
	matches     *MatchService
	sessions    *SessionManager
	bots        *bot.Policy
	opts        CoordinatorOptions
	logger      *slog.Logger

	connMu      sync.Mutex
	conns       map[string]*connState
	playerConns map[string]string
}

func NewCoordinator(
	tournaments *TournamentService,
	matches *MatchService,
	sessions *SessionManager,
	bots *bot.Policy,
	opts CoordinatorOptions,
	logger *slog.Logger,
) *Coordinator {
	if opts.BotLevel == "" {
		opts.BotLevel = bot.LevelAdvanced
	}
	return &Coordinator{
		tournaments: tournaments,
		matches:     matches,
		sessions:    sessions,
		bots:        bots,
		opts:        opts,
		logger:      logger,
		conns:       make(map[string]*connState),
		playerConns: make(map[string]string),
	}
}

// Register attaches a fresh connection before any join.
func (c *Coordinator) Register(connID string, sender Sender) {
	c.connMu.Lock()
	c.conns[connID] = &connState{sender: sender}
	c.connMu.Unlock()
}

// Unregister handles a dropped connection: the player is marked offline
// but stays in the tournament.
func (c *Coordinator) Unregister(connID string) {
	c.connMu.Lock()
	cs, ok := c.conns[connID]
	delete(c.conns, connID)
	if ok && cs.playerID != "" && c.playerConns[cs.playerID] == connID {
		delete(c.playerConns, cs.playerID)
	}
	c.connMu.Unlock()
	if !ok || cs.playerID == "" {
		return
	}
	c.markOffline(cs.tournamentID, cs.playerID, "disconnected")
}

func (c *Coordinator) markOffline(tournamentID, playerID, reason string) {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()
	if err := c.tournaments.SetOnline(t, playerID, false); err != nil {
		return
	}
	c.logger.Info("player offline",
		slog.String("tournament_id", t.ID),
		slog.String("player_id", playerID),
		slog.String("reason", reason))
	c.broadcast(t, protocol.NewInfo(fmt.Sprintf("%s %s", t.PlayerName(playerID), reason)))
	c.broadcastState(t)
}

// HandleMessage decodes one inbound frame and dispatches it. Protocol
// errors never mutate state.
func (c *Coordinator) HandleMessage(connID string, data []byte) {
	msgType, err := protocol.ParseEnvelope(data)
	if err != nil {
		c.sendTo(connID, protocol.NewError(protocol.CodeParseError, "malformed message"))
		return
	}
	switch msgType {
	case protocol.TypeJoinTournament:
		var msg protocol.JoinTournament
		if err := json.Unmarshal(data, &msg); err != nil || msg.GameID == "" || (msg.PlayerName == "" && msg.PlayerID == "") {
			c.sendTo(connID, protocol.NewError(protocol.CodeParseError, "join_tournament requires gameId and playerName"))
			return
		}
		c.handleJoin(connID, msg)
	case protocol.TypeReadyForMatch:
		var msg protocol.ReadyForMatch
		if err := json.Unmarshal(data, &msg); err != nil || msg.MatchID == "" {
			c.sendTo(connID, protocol.NewError(protocol.CodeParseError, "ready_for_match requires matchId"))
			return
		}
		c.handleReady(connID, msg.MatchID)
	case protocol.TypeSubmitMove:
		var msg protocol.SubmitMove
		if err := json.Unmarshal(data, &msg); err != nil || msg.MatchID == "" || len(msg.Move) == 0 {
			c.sendTo(connID, protocol.NewError(protocol.CodeParseError, "submit_move requires matchId and move"))
			return
		}
		c.handleSubmitMove(connID, msg)
	case protocol.TypeLeaveTournament:
		c.handleLeave(connID)
	default:
		c.sendTo(connID, protocol.NewError(protocol.CodeUnknownMessage, fmt.Sprintf("unknown message type %q", msgType)))
	}
}

func (c *Coordinator) handleJoin(connID string, msg protocol.JoinTournament) {
	if _, ok := games.ByID(msg.GameID); !ok {
		c.sendTo(connID, protocol.NewError(protocol.CodeJoinFailed, fmt.Sprintf("unknown game %q", msg.GameID)))
		return
	}
	t, err := c.tournaments.FindOrCreateForGame(msg.GameID)
	if err != nil {
		c.sendTo(connID, protocol.NewError(WireCode(err), err.Error()))
		return
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()

	player, reconnected, err := c.tournaments.AddPlayer(t, msg.PlayerName, msg.ClassID, msg.PlayerID)
	if err != nil {
		c.sendTo(connID, protocol.NewError(WireCode(err), err.Error()))
		return
	}

	c.connMu.Lock()
	if cs, ok := c.conns[connID]; ok {
		cs.playerID = player.ID
		cs.tournamentID = t.ID
	} else {
		c.conns[connID] = &connState{playerID: player.ID, tournamentID: t.ID}
	}
	c.playerConns[player.ID] = connID
	c.connMu.Unlock()

	c.logger.Info("player joined",
		slog.String("tournament_id", t.ID),
		slog.String("player_id", player.ID),
		slog.String("name", player.Name),
		slog.Bool("reconnected", reconnected))

	c.sendTo(connID, protocol.Welcome{
		Type:         protocol.TypeWelcome,
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		TournamentID: t.ID,
		GameID:       t.GameID,
		Reconnected:  reconnected,
	})
	c.broadcastState(t)

	if reconnected {
		c.broadcast(t, protocol.NewInfo(fmt.Sprintf("%s reconnected", player.Name)))
		// Bring the returning player back up to speed on a running game.
		if m := t.ActiveMatchOf(player.ID); m != nil && m.Phase == models.MatchPlaying {
			if session, ok := c.sessions.Active(m.ID); ok {
				c.sendTo(connID, protocol.GameStateUpdate{
					Type:       protocol.TypeGameStateUpdate,
					MatchID:    m.ID,
					GameNumber: session.GameNumber,
					State:      c.sessions.SerializeState(session),
					YourTurn:   m.PlayerForRole(session.TurnRole) == player.ID,
					TurnRole:   string(session.TurnRole),
				})
			}
		}
	}
}

func (c *Coordinator) handleReady(connID, matchID string) {
	t, playerID, ok := c.resolveConn(connID)
	if !ok {
		c.sendTo(connID, protocol.NewError(protocol.CodeNotInTournament, "join a tournament first"))
		return
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()

	if t.Phase != models.TournamentRunning {
		c.sendTo(connID, protocol.NewError(WireCode(ErrTournamentNotRunning), ErrTournamentNotRunning.Error()))
		return
	}
	m := t.MatchByID(matchID)
	if m == nil {
		c.sendTo(connID, protocol.NewError(protocol.CodeMatchNotFound, "match not found"))
		return
	}
	if !m.HasPlayer(playerID) {
		c.sendTo(connID, protocol.NewError(protocol.CodeNotInMatch, "you are not in this match"))
		return
	}
	if m.Phase != models.MatchWaiting {
		c.sendTo(connID, protocol.NewError(protocol.CodeMatchNotFound, "match is not waiting to start"))
		return
	}
	m.SetReady(playerID)
	c.maybeStartMatch(t, m)
}

func (c *Coordinator) handleSubmitMove(connID string, msg protocol.SubmitMove) {
	t, playerID, ok := c.resolveConn(connID)
	if !ok {
		c.sendTo(connID, protocol.NewError(protocol.CodeNotInTournament, "join a tournament first"))
		return
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()

	if t.Phase != models.TournamentRunning {
		c.sendTo(connID, protocol.NewError(WireCode(ErrTournamentNotRunning), ErrTournamentNotRunning.Error()))
		return
	}
	m := t.MatchByID(msg.MatchID)
	if m == nil {
		c.sendTo(connID, protocol.NewError(protocol.CodeMatchNotFound, "match not found"))
		return
	}
	if !m.HasPlayer(playerID) {
		c.sendTo(connID, protocol.NewError(protocol.CodeNotInMatch, "you are not in this match"))
		return
	}
	session, ok := c.sessions.Active(m.ID)
	if !ok {
		c.sendTo(connID, protocol.NewError(protocol.CodeNoActiveGame, "no active game"))
		return
	}
	if msg.GameNumber != 0 && msg.GameNumber != session.GameNumber {
		c.sendTo(connID, protocol.NewError(WireCode(ErrWrongGameNum), ErrWrongGameNum.Error()))
		return
	}

	role := m.RoleOf(playerID)
	result, err := c.sessions.SubmitMove(m.ID, playerID, role, msg.Move)
	if err != nil {
		c.sendTo(connID, protocol.NewError(WireCode(err), err.Error()))
		return
	}
	c.afterMove(t, m, session, result, msg.Move, playerID)
}

func (c *Coordinator) handleLeave(connID string) {
	c.connMu.Lock()
	cs, ok := c.conns[connID]
	var playerID, tournamentID string
	if ok && cs.playerID != "" {
		playerID, tournamentID = cs.playerID, cs.tournamentID
		if c.playerConns[playerID] == connID {
			delete(c.playerConns, playerID)
		}
		cs.playerID = ""
		cs.tournamentID = ""
	}
	c.connMu.Unlock()
	if playerID == "" {
		c.sendTo(connID, protocol.NewError(protocol.CodeNotInTournament, "not in a tournament"))
		return
	}
	c.markOffline(tournamentID, playerID, "left the tournament")
}

// afterMove fans out the new state and continues the pipeline: bot
// scheduling mid-game, the finish cascade on a terminal position.
func (c *Coordinator) afterMove(t *models.Tournament, m *models.Match, session *models.GameSession, result *MoveResult, lastMove json.RawMessage, movedBy string) {
	state := c.sessions.SerializeState(session)
	for _, pid := range []string{m.P1ID, m.P2ID} {
		c.sendToPlayer(pid, protocol.GameStateUpdate{
			Type:       protocol.TypeGameStateUpdate,
			MatchID:    m.ID,
			GameNumber: session.GameNumber,
			State:      state,
			YourTurn:   !result.GameOver && m.PlayerForRole(result.TurnRole) == pid,
			TurnRole:   string(result.TurnRole),
			LastMove:   lastMove,
			LastMoveBy: movedBy,
		})
	}
	if result.GameOver {
		c.finishGame(t, m, session, result)
		return
	}
	c.scheduleBot(t, m, session)
}

func (c *Coordinator) finishGame(t *models.Tournament, m *models.Match, session *models.GameSession, result *MoveResult) {
	winnerID := ""
	switch result.Winner {
	case games.OutcomeP1:
		winnerID = m.P1ID
	case games.OutcomeP2:
		winnerID = m.P2ID
	}
	gameNumber := session.GameNumber
	res := c.matches.RecordGameResult(m, winnerID)

	finalState := c.sessions.SerializeState(session)
	end := protocol.GameEnd{
		Type:       protocol.TypeGameEnd,
		MatchID:    m.ID,
		GameNumber: gameNumber,
		WinnerID:   winnerID,
		IsDraw:     result.Winner == games.OutcomeDraw,
		FinalState: finalState,
		MatchScore: protocol.MatchScore{P1Wins: m.P1Wins, P2Wins: m.P2Wins},
	}
	if winnerID != "" {
		end.WinnerRole = string(result.Winner)
	}
	for _, pid := range []string{m.P1ID, m.P2ID} {
		c.sendToPlayer(pid, end)
	}

	if res.MatchFinished {
		c.handleMatchFinished(t, m)
		return
	}

	// Short breather between games of a match, then the next session.
	matchID, tournamentID, nextGame := m.ID, t.ID, res.NextGame
	time.AfterFunc(c.opts.InterGamePause, func() {
		c.startNextGame(tournamentID, matchID, nextGame)
	})
}

func (c *Coordinator) startNextGame(tournamentID, matchID string, gameNumber int) {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()

	m := t.MatchByID(matchID)
	if m == nil || m.Phase != models.MatchPlaying || t.Phase != models.TournamentRunning {
		return
	}
	if m.CurrentGame != gameNumber {
		return
	}
	if _, active := c.sessions.Active(m.ID); active {
		return
	}
	c.openSession(t, m)
}

func (c *Coordinator) openSession(t *models.Tournament, m *models.Match) {
	session, err := c.sessions.Create(t.ID, m.ID, m.CurrentGame, t.GameID, m.StartingRole)
	if err != nil {
		c.logger.Error("failed to create game session",
			slog.String("match_id", m.ID), slog.Any("error", err))
		return
	}
	state := c.sessions.SerializeState(session)
	for _, role := range []games.Role{games.RoleP1, games.RoleP2} {
		pid := m.PlayerForRole(role)
		c.sendToPlayer(pid, protocol.GameStart{
			Type:         protocol.TypeGameStart,
			MatchID:      m.ID,
			GameNumber:   session.GameNumber,
			GameID:       session.GameID,
			YourRole:     string(role),
			StartingRole: string(m.StartingRole),
			State:        state,
		})
	}
	c.scheduleBot(t, m, session)
}

func (c *Coordinator) handleMatchFinished(t *models.Tournament, m *models.Match) {
	c.sessions.Drop(m.ID)
	adv := c.tournaments.ResolveFinishedMatch(t, m)

	eliminated := make(map[string]bool, len(adv.Eliminated))
	for _, pid := range adv.Eliminated {
		eliminated[pid] = true
	}
	for _, pid := range []string{m.P1ID, m.P2ID} {
		if pid == "" {
			continue
		}
		msg := protocol.MatchEnd{
			Type:                     protocol.TypeMatchEnd,
			MatchID:                  m.ID,
			WinnerID:                 m.WinnerID,
			WinnerName:               t.PlayerName(m.WinnerID),
			FinalScore:               protocol.MatchScore{P1Wins: m.P1Wins, P2Wins: m.P2Wins},
			YouWon:                   pid == m.WinnerID,
			EliminatedFromTournament: eliminated[pid],
		}
		if next := t.ActiveMatchOf(pid); next != nil {
			msg.NextMatchID = next.ID
		}
		c.sendToPlayer(pid, msg)
	}

	if adv.TournamentFinished {
		c.broadcast(t, protocol.TournamentEnd{
			Type:           protocol.TypeTournamentEnd,
			ChampionID:     t.ChampionID,
			ChampionName:   t.PlayerName(t.ChampionID),
			FinalStandings: c.tournaments.Standings(t),
		})
		c.broadcastState(t)
		return
	}

	c.broadcastState(t)
	for _, ready := range c.tournaments.MatchesReadyToStart(t) {
		c.announceMatch(t, ready)
	}
}

// announceMatch notifies both seats of a freshly filled pairing and
// applies auto-readiness (bots always, humans when configured).
func (c *Coordinator) announceMatch(t *models.Tournament, m *models.Match) {
	if !m.Announced {
		m.Announced = true
		for _, pid := range []string{m.P1ID, m.P2ID} {
			c.sendToPlayer(pid, protocol.MatchAssigned{
				Type:         protocol.TypeMatchAssigned,
				MatchID:      m.ID,
				Round:        m.Round,
				Bracket:      string(m.Bracket),
				Code:         m.Code,
				OpponentID:   m.OpponentOf(pid),
				OpponentName: t.PlayerName(m.OpponentOf(pid)),
			})
		}
	}
	for _, pid := range []string{m.P1ID, m.P2ID} {
		if p := t.Player(pid); p != nil && (p.IsBot || c.opts.AutoReady) {
			m.SetReady(pid)
		}
	}
	c.maybeStartMatch(t, m)
}

func (c *Coordinator) maybeStartMatch(t *models.Tournament, m *models.Match) {
	if m.Phase != models.MatchWaiting || !m.HasBothPlayers() || !m.BothReady() {
		return
	}
	if err := c.matches.Start(m); err != nil {
		c.logger.Error("failed to start match", slog.String("match_id", m.ID), slog.Any("error", err))
		return
	}
	c.broadcastState(t)
	c.openSession(t, m)
}

func (c *Coordinator) scheduleBot(t *models.Tournament, m *models.Match, session *models.GameSession) {
	if session.Finished {
		return
	}
	pid := m.PlayerForRole(session.TurnRole)
	p := t.Player(pid)
	if p == nil || !p.IsBot {
		return
	}
	tournamentID, matchID, sessionID := t.ID, m.ID, session.ID
	time.AfterFunc(c.opts.BotMoveDelay, func() {
		c.performBotMove(tournamentID, matchID, sessionID)
	})
}

func (c *Coordinator) performBotMove(tournamentID, matchID, sessionID string) {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()

	if t.Phase != models.TournamentRunning {
		return
	}
	m := t.MatchByID(matchID)
	if m == nil || m.Phase != models.MatchPlaying {
		return
	}
	session, ok := c.sessions.Active(matchID)
	if !ok || session.ID != sessionID {
		return
	}
	role := session.TurnRole
	pid := m.PlayerForRole(role)
	p := t.Player(pid)
	if p == nil || !p.IsBot {
		return
	}

	mv, ok := c.bots.ChooseMove(session.GameID, session.State, role, c.opts.BotLevel)
	if !ok {
		c.logger.Warn("bot found no legal move",
			slog.String("match_id", matchID), slog.String("game_id", session.GameID))
		return
	}
	raw, err := json.Marshal(mv)
	if err != nil {
		c.logger.Error("bot move marshal failed", slog.Any("error", err))
		return
	}
	result, err := c.sessions.SubmitMove(matchID, pid, role, raw)
	if err != nil {
		c.logger.Warn("bot move rejected",
			slog.String("match_id", matchID), slog.Any("error", err))
		return
	}
	c.afterMove(t, m, session, result, raw, pid)
}

// --- admin surface ---

// CreateTournament opens a tournament, optionally pre-seeding bots.
func (c *Coordinator) CreateTournament(gameID, label string, botCount int) (*models.Tournament, error) {
	t, err := c.tournaments.Create(gameID, label)
	if err != nil {
		return nil, err
	}
	if botCount > 0 {
		mu := c.tournaments.LockFor(t.ID)
		mu.Lock()
		_, err = c.tournaments.AddBots(t, botCount)
		mu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (c *Coordinator) AddBots(tournamentID string, n int) error {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return err
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()
	if _, err := c.tournaments.AddBots(t, n); err != nil {
		return err
	}
	c.broadcastState(t)
	return nil
}

// StartTournament builds the bracket and kicks off every startable
// match.
func (c *Coordinator) StartTournament(tournamentID string) error {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return err
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()

	adv, err := c.tournaments.Start(t)
	if err != nil {
		return err
	}
	c.broadcastState(t)
	if adv.TournamentFinished {
		c.broadcast(t, protocol.TournamentEnd{
			Type:           protocol.TypeTournamentEnd,
			ChampionID:     t.ChampionID,
			ChampionName:   t.PlayerName(t.ChampionID),
			FinalStandings: c.tournaments.Standings(t),
		})
		return nil
	}
	for _, ready := range c.tournaments.MatchesReadyToStart(t) {
		c.announceMatch(t, ready)
	}
	return nil
}

func (c *Coordinator) FinishTournament(tournamentID string) error {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return err
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()
	c.tournaments.Finish(t)
	c.broadcast(t, protocol.NewInfo("tournament closed by an operator"))
	c.broadcastState(t)
	return nil
}

func (c *Coordinator) ListTournaments() []*models.Tournament {
	return c.tournaments.List()
}

func (c *Coordinator) Export(tournamentID string) (*TournamentSnapshot, error) {
	t, err := c.tournaments.Get(tournamentID)
	if err != nil {
		return nil, err
	}
	mu := c.tournaments.LockFor(t.ID)
	mu.Lock()
	defer mu.Unlock()
	return c.tournaments.Snapshot(t)
}

func (c *Coordinator) Import(snap *TournamentSnapshot) (*models.Tournament, error) {
	if snap == nil || snap.Tournament == nil {
		return nil, fmt.Errorf("empty snapshot")
	}
	mu := c.tournaments.LockFor(snap.Tournament.ID)
	mu.Lock()
	defer mu.Unlock()
	return c.tournaments.Restore(snap)
}

// --- outbound plumbing ---

func (c *Coordinator) resolveConn(connID string) (*models.Tournament, string, bool) {
	c.connMu.Lock()
	cs, ok := c.conns[connID]
	c.connMu.Unlock()
	if !ok || cs.playerID == "" {
		return nil, "", false
	}
	t, err := c.tournaments.Get(cs.tournamentID)
	if err != nil {
		return nil, "", false
	}
	return t, cs.playerID, true
}

func (c *Coordinator) sendTo(connID string, v interface{}) {
	c.connMu.Lock()
	cs, ok := c.conns[connID]
	c.connMu.Unlock()
	if !ok || cs.sender == nil {
		return
	}
	if err := cs.sender.SendJSON(v); err != nil {
		c.logger.Debug("send failed", slog.String("conn_id", connID), slog.Any("error", err))
	}
}

func (c *Coordinator) sendToPlayer(playerID string, v interface{}) {
	if playerID == "" {
		return
	}
	c.connMu.Lock()
	connID, ok := c.playerConns[playerID]
	var sender Sender
	if ok {
		if cs, exists := c.conns[connID]; exists {
			sender = cs.sender
		}
	}
	c.connMu.Unlock()
	if sender == nil {
		return
	}
	if err := sender.SendJSON(v); err != nil {
		c.logger.Debug("send failed", slog.String("player_id", playerID), slog.Any("error", err))
	}
}

// broadcast fans a frame out to every connected player of a tournament.
func (c *Coordinator) broadcast(t *models.Tournament, v interface{}) {
	for pid := range t.Players {
		c.sendToPlayer(pid, v)
	}
}

func (c *Coordinator) broadcastState(t *models.Tournament) {
	c.broadcast(t, protocol.TournamentStateUpdate{
		Type:       protocol.TypeTournamentStateUpdate,
		Tournament: t,
	})
}
