package models

import (
	"github.com/Dosada05/game-arena/games"
)

type BracketSide string

const (
	BracketWinners BracketSide = "winners"
	BracketLosers  BracketSide = "losers"
)

type MatchPhase string

const (
	MatchWaiting  MatchPhase = "waiting"
	MatchPlaying  MatchPhase = "playing"
	MatchFinished MatchPhase = "finished"
)

// Match is one best-of-three pairing in a bracket. Advancement targets
// are match ids, never pointers; lookups go through the tournament's
// match index.
type Match struct {
	ID      string      `json:"id"`
	Code    string      `json:"code"`
	Round   int         `json:"round"`
	Bracket BracketSide `json:"bracket"`

	P1ID string `json:"p1Id,omitempty"`
	P2ID string `json:"p2Id,omitempty"`

	P1Wins       int        `json:"p1Wins"`
	P2Wins       int        `json:"p2Wins"`
	BestOf       int        `json:"bestOf"`
	CurrentGame  int        `json:"currentGame"`
	StartingRole games.Role `json:"startingRole,omitempty"`

	Phase    MatchPhase `json:"phase"`
	WinnerID string     `json:"winnerId,omitempty"`
	LoserID  string     `json:"loserId,omitempty"`

	AdvanceWinnerTo string `json:"advanceWinnerTo,omitempty"`
	AdvanceLoserTo  string `json:"advanceLoserTo,omitempty"`

	IsGrandFinal      bool `json:"isGrandFinal,omitempty"`
	IsGrandFinalReset bool `json:"isGrandFinalReset,omitempty"`

	// ExpectedArrivals counts players still due to arrive from feeder
	// matches. A waiting match with zero arrivals left and an open slot
	// resolves as a bye.
	ExpectedArrivals int `json:"expectedArrivals"`

	ReadyP1 bool `json:"readyP1,omitempty"`
	ReadyP2 bool `json:"readyP2,omitempty"`

	// Announced tracks whether match_assigned went out for this pairing.
	Announced bool `json:"announced,omitempty"`
}

func (m *Match) HasBothPlayers() bool {
	return m.P1ID != "" && m.P2ID != ""
}

func (m *Match) HasPlayer(playerID string) bool {
	return playerID != "" && (m.P1ID == playerID || m.P2ID == playerID)
}

// RoleOf reports the seat the player occupies in this match.
func (m *Match) RoleOf(playerID string) games.Role {
	switch {
	case playerID == "":
		return games.RoleNone
	case m.P1ID == playerID:
		return games.RoleP1
	case m.P2ID == playerID:
		return games.RoleP2
	}
	return games.RoleNone
}

// PlayerForRole resolves a seat back to a player id.
func (m *Match) PlayerForRole(role games.Role) string {
	switch role {
	case games.RoleP1:
		return m.P1ID
	case games.RoleP2:
		return m.P2ID
	}
	return ""
}

func (m *Match) OpponentOf(playerID string) string {
	switch playerID {
	case m.P1ID:
		return m.P2ID
	case m.P2ID:
		return m.P1ID
	}
	return ""
}

// AssignPlayer fills slots left to right.
func (m *Match) AssignPlayer(playerID string) {
	if m.P1ID == "" {
		m.P1ID = playerID
		return
	}
	m.P2ID = playerID
}

func (m *Match) PlayerCount() int {
	n := 0
	if m.P1ID != "" {
		n++
	}
	if m.P2ID != "" {
		n++
	}
	return n
}

func (m *Match) SetReady(playerID string) {
	switch playerID {
	case m.P1ID:
		m.ReadyP1 = true
	case m.P2ID:
		m.ReadyP2 = true
	}
}

func (m *Match) BothReady() bool {
	return m.ReadyP1 && m.ReadyP2
}

// WinsNeeded is the best-of threshold.
func (m *Match) WinsNeeded() int {
	return m.BestOf/2 + 1
}
