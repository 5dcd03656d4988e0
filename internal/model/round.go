package model

import (
	"strconv"
	"time"
)

// RoundID uniquely identifies a single-subject game round
type RoundID string

// RoundStatus represents the lifecycle phase of a round
type RoundStatus string

const (
	RoundStatusDraft    RoundStatus = "draft"    // Authored, not yet playable
	RoundStatusActive   RoundStatus = "active"   // Published and accepting votes
	RoundStatusFinished RoundStatus = "finished" // Closed, terminal
)

// DefaultProfileField is stored when an optional profile field is left blank
const DefaultProfileField = "Not specified"

// MaxPictureSize is the largest accepted picture, in bytes
const MaxPictureSize = 5 * 1024 * 1024

// Picture is metadata about the subject's uploaded picture
type Picture struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	Type         string `json:"type"`
	LastModified int64  `json:"lastModified"` // Unix millis
}

// GameRound is an employee profile plus three statements, one of which is the lie
type GameRound struct {
	ID           RoundID                   `json:"id"`
	EmployeeName string                    `json:"employeeName"`
	Department   string                    `json:"department"`
	Introducer   string                    `json:"introducer"`
	Picture      *Picture                  `json:"picture,omitempty"`
	Statements   [StatementCount]Statement `json:"statements"`
	LieIndex     int                       `json:"lieIndex"` // NoLie until selected
	Status       RoundStatus               `json:"status"`
	Votes        []Vote                    `json:"votes"`
	CreatedAt    time.Time                 `json:"createdAt"`
	ActivatedAt  *time.Time                `json:"activatedAt,omitempty"`
	FinishedAt   *time.Time                `json:"finishedAt,omitempty"`
}

// IsLie returns true if the statement at idx is the round's lie
func (r *GameRound) IsLie(idx int) bool {
	return ValidStatementIndex(idx) && r.LieIndex == idx
}

// HasLie returns true if a lie has been selected
func (r *GameRound) HasLie() bool {
	return ValidStatementIndex(r.LieIndex)
}

// MissingFields lists the mandatory fields that block activation, in form order
func (r *GameRound) MissingFields() []string {
	var missing []string
	if r.EmployeeName == "" {
		missing = append(missing, "employee name")
	}
	for i, st := range r.Statements {
		if st.Title == "" {
			missing = append(missing, "statement "+strconv.Itoa(i+1)+" title")
		}
	}
	if !r.HasLie() {
		missing = append(missing, "lie selection")
	}
	return missing
}

// IsComplete returns true if the round can be activated
func (r *GameRound) IsComplete() bool {
	return len(r.MissingFields()) == 0
}

// FindVote returns the vote cast by voterID, or nil
func (r *GameRound) FindVote(voterID PlayerID) *Vote {
	for i := range r.Votes {
		if r.Votes[i].VoterID == voterID {
			return &r.Votes[i]
		}
	}
	return nil
}

// RoundCounts is the number of rounds in each status
type RoundCounts struct {
	Drafts   int `json:"drafts"`
	Active   int `json:"active"`
	Finished int `json:"finished"`
}

// Total returns the number of rounds across all statuses
func (c RoundCounts) Total() int {
	return c.Drafts + c.Active + c.Finished
}

// CountRounds tallies rounds by status
func CountRounds(rounds []GameRound) RoundCounts {
	var c RoundCounts
	for _, r := range rounds {
		switch r.Status {
		case RoundStatusDraft:
			c.Drafts++
		case RoundStatusActive:
			c.Active++
		case RoundStatusFinished:
			c.Finished++
		}
	}
	return c
}
