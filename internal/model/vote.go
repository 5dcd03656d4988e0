package model

import "time"

// Vote is one participant's guess at which statement is the lie
type Vote struct {
	VoterID        PlayerID  `json:"voterId"`
	StatementIndex int       `json:"statementIndex"` // 0-indexed
	Round          int       `json:"round"`          // Session round counter; 0 for single-subject rounds
	Timestamp      time.Time `json:"timestamp"`
}
