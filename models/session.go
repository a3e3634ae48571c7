package models

import (
	"encoding/json"
	"time"

	"github.com/Dosada05/game-arena/games"
)

// MoveRecord is one accepted move as it arrived on the wire.
type MoveRecord struct {
	PlayerID  string          `json:"playerId"`
	Move      json.RawMessage `json:"move"`
	Timestamp time.Time       `json:"timestamp"`
}

// GameSession is a single playing of a game inside a match. Exactly one
// session per match is non-finished at any time; after Finished latches,
// no further moves append.
type GameSession struct {
	ID           string `json:"id"`
	TournamentID string `json:"tournamentId"`
	MatchID      string `json:"matchId"`
	GameNumber   int    `json:"gameNumber"`
	GameID       string `json:"gameId"`

	State    games.State   `json:"-"`
	TurnRole games.Role    `json:"turnRole"`
	Finished bool          `json:"finished"`
	Winner   games.Outcome `json:"winner,omitempty"`

	Moves []MoveRecord `json:"moves"`

	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}
