package model

import "time"

// PlayerID uniquely identifies a player or voter across the system
type PlayerID string

// PlayerProfile aggregates a player's results across sessions
type PlayerProfile struct {
	ID          PlayerID  `json:"id"`
	Name        string    `json:"name"`
	GamesPlayed int       `json:"gamesPlayed"`
	GamesWon    int       `json:"gamesWon"`
	TotalScore  int       `json:"totalScore"`
	BestScore   int       `json:"bestScore"`
	LastPlayed  time.Time `json:"lastPlayed"`
}

// NewPlayerProfile creates an empty profile for a newly joined player
func NewPlayerProfile(id PlayerID, name string, now time.Time) *PlayerProfile {
	return &PlayerProfile{
		ID:         id,
		Name:       name,
		LastPlayed: now,
	}
}

// RecordGame folds one finished session into the profile
func (p *PlayerProfile) RecordGame(score int, won bool, now time.Time) {
	p.GamesPlayed++
	p.TotalScore += score
	if score > p.BestScore {
		p.BestScore = score
	}
	p.LastPlayed = now
	if won {
		p.GamesWon++
	}
}
