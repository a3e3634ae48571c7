package services

import (
	"errors"

	"github.com/Dosada05/game-arena/protocol"
)

// Shared errors across services, mapped onto canonical wire codes.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrNotInTournament    = errors.New("player is not in this tournament")
	ErrNotInMatch         = errors.New("player is not in this match")
	ErrNoActiveGame       = errors.New("no active game for this match")

	ErrRegistrationClosed   = errors.New("tournament registration is closed")
	ErrTournamentNotRunning = errors.New("tournament is not running")
	ErrAlreadyRunning       = errors.New("tournament has already started")
	ErrNotEnoughPlayers     = errors.New("not enough players to start")
	ErrUnknownGame          = errors.New("unknown game id")
	ErrGameConflict         = errors.New("an active tournament already exists for this game")

	ErrMatchNotWaiting   = errors.New("match is not waiting to start")
	ErrMatchMissingSlots = errors.New("match does not have both players")

	ErrInvalidMove  = errors.New("invalid move")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrGameFinished = errors.New("game already finished")
	ErrWrongGameNum = errors.New("game number does not match the active game")
)

// WireCode maps a service error to its canonical protocol code.
func WireCode(err error) string {
	switch {
	case errors.Is(err, ErrTournamentNotFound), errors.Is(err, ErrNotInTournament),
		errors.Is(err, ErrPlayerNotFound), errors.Is(err, ErrTournamentNotRunning):
		return protocol.CodeNotInTournament
	case errors.Is(err, ErrMatchNotFound), errors.Is(err, ErrMatchNotWaiting),
		errors.Is(err, ErrMatchMissingSlots):
		return protocol.CodeMatchNotFound
	case errors.Is(err, ErrNotInMatch):
		return protocol.CodeNotInMatch
	case errors.Is(err, ErrNoActiveGame), errors.Is(err, ErrWrongGameNum):
		return protocol.CodeNoActiveGame
	case errors.Is(err, ErrInvalidMove), errors.Is(err, ErrNotYourTurn), errors.Is(err, ErrGameFinished):
		return protocol.CodeInvalidMove
	case errors.Is(err, ErrRegistrationClosed), errors.Is(err, ErrUnknownGame),
		errors.Is(err, ErrGameConflict):
		return protocol.CodeJoinFailed
	}
	return protocol.CodeParseError
}
