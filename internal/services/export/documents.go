package export

import (
	"time"

	"github.com/mcoot/truthlie/internal/model"
)

// Suggested file names for each export
const (
	HistoryFileName = "game-history-export.json"
	StatsFileName   = "game-stats-export.json"
	DraftsFileName  = "game-drafts-export.json"
	fullFilePrefix  = "truth-lie-game-data-"
)

// FullFileName returns the dated file name of a full export
func FullFileName(at time.Time) string {
	return fullFilePrefix + at.Format(time.DateOnly) + ".json"
}

// StatementView renders a statement with its derived lie flag
type StatementView struct {
	model.Statement
	IsLie bool `json:"isLie"`
}

// RoundView is a round as exported, with isLie shown per statement
type RoundView struct {
	model.GameRound
	Statements [model.StatementCount]StatementView `json:"statements"`
}

// NewRoundView derives the per-statement lie flags from the round's lie index
func NewRoundView(r model.GameRound) RoundView {
	view := RoundView{GameRound: r}
	for i, st := range r.Statements {
		view.Statements[i] = StatementView{Statement: st, IsLie: r.IsLie(i)}
	}
	return view
}

func roundViews(rounds []model.GameRound, status model.RoundStatus) []RoundView {
	views := []RoundView{}
	for _, r := range rounds {
		if status == "" || r.Status == status {
			views = append(views, NewRoundView(r))
		}
	}
	return views
}

// Document is an export ready to be written, with a suggested file name
type Document struct {
	FileName string
	Body     any
}

// FullExport is every stored collection
type FullExport struct {
	Sessions   map[model.SessionCode]*model.Session    `json:"games"`
	Rounds     []RoundView                             `json:"gameRounds"`
	Players    map[model.PlayerID]*model.PlayerProfile `json:"players"`
	History    []model.GameHistoryEntry                `json:"gameHistory"`
	ExportDate time.Time                               `json:"exportDate"`
}

// HistoryExport is finished sessions plus finished rounds
type HistoryExport struct {
	History    []model.GameHistoryEntry `json:"gameHistory"`
	Rounds     []RoundView              `json:"gameRounds"`
	ExportDate time.Time                `json:"exportDate"`
}

// StatsExport summarizes round counts and profile count
type StatsExport struct {
	TotalGames    int       `json:"totalGames"`
	ActiveGames   int       `json:"activeGames"`
	DraftGames    int       `json:"draftGames"`
	FinishedGames int       `json:"finishedGames"`
	TotalPlayers  int       `json:"totalPlayers"`
	ExportDate    time.Time `json:"exportDate"`
}

// DraftsExport is every draft round
type DraftsExport struct {
	Drafts     []RoundView `json:"drafts"`
	ExportDate time.Time   `json:"exportDate"`
}
