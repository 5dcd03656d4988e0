package model

import "time"

// MaxHistoryEntries is the number of finished sessions kept in history
const MaxHistoryEntries = 50

// RoundResult is the immutable record of one completed session turn
type RoundResult struct {
	Round           int                    `json:"round"`
	PlayerID        PlayerID               `json:"playerId"`
	PlayerName      string                 `json:"playerName"`
	Statements      [StatementCount]string `json:"statements"`
	LieIndex        int                    `json:"lieIndex"`
	CorrectVotes    int                    `json:"correctVotes"`
	TotalVotes      int                    `json:"totalVotes"`
	PlayerScore     int                    `json:"playerScore"` // Turn-holder's score after the turn
	DifficultyBonus int                    `json:"difficultyBonus"`
}

// HistoryPlayer is a player's final score in a history entry
type HistoryPlayer struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameHistoryEntry is the immutable summary of a finished session
type GameHistoryEntry struct {
	GameID      SessionID       `json:"gameId"`
	Code        SessionCode     `json:"gameCode"`
	Players     []HistoryPlayer `json:"players"`
	Winner      string          `json:"winner"`
	WinnerScore int             `json:"winnerScore"`
	TotalRounds int             `json:"totalRounds"`
	FinishedAt  time.Time       `json:"finishedAt"`
}

// RoundTally is the on-demand vote breakdown of a single-subject round
type RoundTally struct {
	RoundID      RoundID             `json:"roundId"`
	Counts       [StatementCount]int `json:"counts"`
	TotalVotes   int                 `json:"totalVotes"`
	CorrectVotes int                 `json:"correctVotes"`
	LieIndex     int                 `json:"lieIndex"`
}
