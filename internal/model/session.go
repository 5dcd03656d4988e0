package model

import (
	"strings"
	"time"
)

// SessionCode is the 6-character code players use to join a session
type SessionCode string

// Normalize returns the code as stored: trimmed and upper-cased
func (c SessionCode) Normalize() SessionCode {
	return SessionCode(strings.ToUpper(strings.TrimSpace(string(c))))
}

// SessionID uniquely identifies a session
type SessionID string

// SessionStatus represents the current phase of a multiplayer session
type SessionStatus string

const (
	SessionStatusWaiting  SessionStatus = "waiting"  // Accepting players
	SessionStatusActive   SessionStatus = "active"   // Players submitting statements in turn
	SessionStatusVoting   SessionStatus = "voting"   // Non-turn-holders guessing the lie
	SessionStatusFinished SessionStatus = "finished" // All turns consumed
)

// MaxSessionPlayers is the capacity of a session
const MaxSessionPlayers = 8

// MinSessionPlayers is the number of players needed to start
const MinSessionPlayers = 2

// SubmittedStatements are the three free-text statements a player submitted for their turn
type SubmittedStatements struct {
	Texts     [StatementCount]string `json:"statements"`
	LieIndex  int                    `json:"lieIndex"`
	Submitted bool                   `json:"submitted"`
}

// SessionPlayer is a player's state within one session
type SessionPlayer struct {
	ID            PlayerID             `json:"id"`
	Name          string               `json:"name"`
	IsHost        bool                 `json:"isHost"`
	IsCurrentTurn bool                 `json:"isCurrentTurn"`
	Statements    *SubmittedStatements `json:"statements"` // nil until submitted this round
	Votes         []Vote               `json:"votes"`
	Score         int                  `json:"score"`
}

// VoteForRound returns the player's vote in the given round counter, or nil
func (p *SessionPlayer) VoteForRound(round int) *Vote {
	for i := range p.Votes {
		if p.Votes[i].Round == round {
			return &p.Votes[i]
		}
	}
	return nil
}

// Session is a multiplayer game joined by code
type Session struct {
	ID                 SessionID       `json:"id"`
	Code               SessionCode     `json:"code"`
	Status             SessionStatus   `json:"status"`
	HostID             PlayerID        `json:"hostId"`
	Players            []SessionPlayer `json:"players"`
	CurrentPlayerIndex int             `json:"currentPlayerIndex"`
	CurrentRound       int             `json:"currentRound"`
	MaxRounds          int             `json:"maxRounds"`
	RoundResults       []RoundResult   `json:"roundResults"`
	CreatedAt          time.Time       `json:"createdAt"`
	StartedAt          *time.Time      `json:"startedAt,omitempty"`
	FinishedAt         *time.Time      `json:"finishedAt,omitempty"`
}

// GetPlayer returns the player with the given ID, or nil if not found
func (s *Session) GetPlayer(id PlayerID) *SessionPlayer {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// GetHost returns the host player, or nil if none
func (s *Session) GetHost() *SessionPlayer {
	for i := range s.Players {
		if s.Players[i].IsHost {
			return &s.Players[i]
		}
	}
	return nil
}

// CurrentPlayer returns the turn-holder, or nil before the session starts
func (s *Session) CurrentPlayer() *SessionPlayer {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.CurrentPlayerIndex]
}

// IsFull returns true if no more players can join
func (s *Session) IsFull() bool {
	return len(s.Players) >= MaxSessionPlayers
}

// IsComplete returns true once every turn has been played
func (s *Session) IsComplete() bool {
	return s.MaxRounds > 0 && s.CurrentRound >= s.MaxRounds
}

// SetTurn makes the player at idx the only turn-holder
func (s *Session) SetTurn(idx int) {
	for i := range s.Players {
		s.Players[i].IsCurrentTurn = i == idx
	}
	s.CurrentPlayerIndex = idx
}
