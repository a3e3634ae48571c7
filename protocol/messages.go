package protocol

import (
	"encoding/json"
	"errors"
)

// Client-to-core message types.
const (
	TypeJoinTournament  = "join_tournament"
	TypeReadyForMatch   = "ready_for_match"
	TypeSubmitMove      = "submit_move"
	TypeLeaveTournament = "leave_tournament"
)

// Core-to-client message types.
const (
	TypeWelcome               = "welcome"
	TypeTournamentStateUpdate = "tournament_state_update"
	TypeMatchAssigned         = "match_assigned"
	TypeGameStart             = "game_start"
	TypeGameStateUpdate       = "game_state_update"
	TypeGameEnd               = "game_end"
	TypeMatchEnd              = "match_end"
	TypeTournamentEnd         = "tournament_end"
	TypeError                 = "error"
	TypeInfo                  = "info"
)

// Canonical error codes.
const (
	CodeJoinFailed      = "JOIN_FAILED"
	CodeNotInTournament = "NOT_IN_TOURNAMENT"
	CodeMatchNotFound   = "MATCH_NOT_FOUND"
	CodeNotInMatch      = "NOT_IN_MATCH"
	CodeNoActiveGame    = "NO_ACTIVE_GAME"
	CodeInvalidMove     = "INVALID_MOVE"
	CodeParseError      = "PARSE_ERROR"
	CodeUnknownMessage  = "UNKNOWN_MESSAGE"
)

// Envelope carries the discriminating type of an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

var ErrMissingType = errors.New("message has no type field")

// ParseEnvelope extracts the frame type without consuming the payload.
func ParseEnvelope(data []byte) (string, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	if env.Type == "" {
		return "", ErrMissingType
	}
	return env.Type, nil
}

type JoinTournament struct {
	GameID     string `json:"gameId"`
	PlayerName string `json:"playerName"`
	ClassID    string `json:"classId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
}

type ReadyForMatch struct {
	MatchID string `json:"matchId"`
}

type SubmitMove struct {
	MatchID    string          `json:"matchId"`
	GameNumber int             `json:"gameNumber"`
	Move       json.RawMessage `json:"move"`
}

type Welcome struct {
	Type         string `json:"type"`
	PlayerID     string `json:"playerId"`
	PlayerName   string `json:"playerName"`
	TournamentID string `json:"tournamentId"`
	GameID       string `json:"gameId"`
	Reconnected  bool   `json:"reconnected,omitempty"`
}

type TournamentStateUpdate struct {
	Type       string      `json:"type"`
	Tournament interface{} `json:"tournament"`
}

type MatchAssigned struct {
	Type         string `json:"type"`
	MatchID      string `json:"matchId"`
	Round        int    `json:"round"`
	Bracket      string `json:"bracket"`
	Code         string `json:"code"`
	OpponentID   string `json:"opponentId"`
	OpponentName string `json:"opponentName"`
}

type GameStart struct {
	Type         string      `json:"type"`
	MatchID      string      `json:"matchId"`
	GameNumber   int         `json:"gameNumber"`
	GameID       string      `json:"gameId"`
	YourRole     string      `json:"yourRole"`
	StartingRole string      `json:"startingRole"`
	State        interface{} `json:"state"`
}

type GameStateUpdate struct {
	Type       string          `json:"type"`
	MatchID    string          `json:"matchId"`
	GameNumber int             `json:"gameNumber"`
	State      interface{}     `json:"state"`
	YourTurn   bool            `json:"yourTurn"`
	TurnRole   string          `json:"turnRole"`
	LastMove   json.RawMessage `json:"lastMove,omitempty"`
	LastMoveBy string          `json:"lastMoveBy,omitempty"`
}

type MatchScore struct {
	P1Wins int `json:"p1Wins"`
	P2Wins int `json:"p2Wins"`
}

type GameEnd struct {
	Type       string      `json:"type"`
	MatchID    string      `json:"matchId"`
	GameNumber int         `json:"gameNumber"`
	WinnerID   string      `json:"winnerId,omitempty"`
	WinnerRole string      `json:"winnerRole,omitempty"`
	IsDraw     bool        `json:"isDraw"`
	FinalState interface{} `json:"finalState"`
	MatchScore MatchScore  `json:"matchScore"`
}

type MatchEnd struct {
	Type                     string     `json:"type"`
	MatchID                  string     `json:"matchId"`
	WinnerID                 string     `json:"winnerId"`
	WinnerName               string     `json:"winnerName"`
	FinalScore               MatchScore `json:"finalScore"`
	YouWon                   bool       `json:"youWon"`
	EliminatedFromTournament bool       `json:"eliminatedFromTournament"`
	NextMatchID              string     `json:"nextMatchId,omitempty"`
}

type Standing struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
}

type TournamentEnd struct {
	Type           string     `json:"type"`
	ChampionID     string     `json:"championId"`
	ChampionName   string     `json:"championName"`
	FinalStandings []Standing `json:"finalStandings"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Info struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(code, message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Code: code, Message: message}
}

func NewInfo(message string) Info {
	return Info{Type: TypeInfo, Message: message}
}
