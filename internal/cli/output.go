package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/services/admin"
	"github.com/mcoot/truthlie/internal/services/export"
	"github.com/mcoot/truthlie/internal/services/round"
	"github.com/mcoot/truthlie/internal/services/session"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	out    io.Writer
	errOut io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, out, errOut io.Writer) *Output {
	return &Output{format: format, out: out, errOut: errOut}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"kind":    string(model.KindOf(err)),
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(o.errOut, string(data))
	} else {
		fmt.Fprintf(o.errOut, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.out, string(data))
	} else {
		fmt.Fprintln(o.out, msg)
	}
}

// Notify shows a user-visible outcome on the error stream so results on
// the output stream stay parseable
func (o *Output) Notify(ctx context.Context, event model.Event) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{
			"event":   string(event.Type),
			"title":   event.Title,
			"message": event.Message,
		})
		fmt.Fprintln(o.errOut, string(data))
		return
	}
	fmt.Fprintf(o.errOut, "%s %s\n", event.Title, event.Message)
}

func (o *Output) printJSON(data any) {
	switch v := data.(type) {
	case *model.GameRound:
		data = export.NewRoundView(*v)
	case []model.GameRound:
		views := make([]export.RoundView, len(v))
		for i, r := range v {
			views[i] = export.NewRoundView(r)
		}
		data = views
	}
	enc := json.NewEncoder(o.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *model.GameRound:
		o.printRound(v)
	case []model.GameRound:
		o.printRounds(v)
	case model.RoundCounts:
		o.printCounts(v)
	case model.RoundTally:
		o.printTally(v)
	case round.Form:
		o.printForm(v)
	case *model.Session:
		o.printSession(v)
	case []*model.Session:
		o.printSessions(v)
	case *model.SessionPlayer:
		fmt.Fprintf(o.out, "Player: %s (%s)\n", v.Name, v.ID)
	case *session.VoteOutcome:
		o.printVoteOutcome(v)
	case []model.GameHistoryEntry:
		o.printHistory(v)
	case []model.PlayerProfile:
		o.printPlayers(v)
	case admin.Plan:
		fmt.Fprintf(o.out, "%s\nToken: %s\n", v.Description, v.Token)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printRound(r *model.GameRound) {
	fmt.Fprintf(o.out, "Round: %s\n", r.ID)
	fmt.Fprintf(o.out, "Status: %s\n", r.Status)
	fmt.Fprintf(o.out, "Employee: %s\n", r.EmployeeName)
	fmt.Fprintf(o.out, "Department: %s\n", r.Department)
	fmt.Fprintf(o.out, "Introducer: %s\n", r.Introducer)
	if r.Picture != nil {
		fmt.Fprintf(o.out, "Picture: %s (%d bytes)\n", r.Picture.Name, r.Picture.Size)
	}
	for i, st := range r.Statements {
		marker := ""
		if r.IsLie(i) {
			marker = " [lie]"
		}
		fmt.Fprintf(o.out, "  %d. %s%s\n", st.ID, st.Title, marker)
		if st.Content != "" {
			fmt.Fprintf(o.out, "     %s\n", st.Content)
		}
	}
	fmt.Fprintf(o.out, "Votes: %d\n", len(r.Votes))
}

func (o *Output) printRounds(rounds []model.GameRound) {
	if len(rounds) == 0 {
		fmt.Fprintln(o.out, "No rounds")
		return
	}
	for _, r := range rounds {
		fmt.Fprintf(o.out, "%s  %-8s  %s (%d votes)\n", r.ID, r.Status, r.EmployeeName, len(r.Votes))
	}
}

func (o *Output) printCounts(c model.RoundCounts) {
	fmt.Fprintf(o.out, "Drafts: %d\n", c.Drafts)
	fmt.Fprintf(o.out, "Active: %d\n", c.Active)
	fmt.Fprintf(o.out, "Finished: %d\n", c.Finished)
	fmt.Fprintf(o.out, "Total: %d\n", c.Total())
}

func (o *Output) printTally(t model.RoundTally) {
	fmt.Fprintf(o.out, "Round: %s\n", t.RoundID)
	for i, n := range t.Counts {
		marker := ""
		if i == t.LieIndex {
			marker = " [lie]"
		}
		fmt.Fprintf(o.out, "  Statement %d: %d votes%s\n", i+1, n, marker)
	}
	fmt.Fprintf(o.out, "Correct: %d of %d\n", t.CorrectVotes, t.TotalVotes)
}

func (o *Output) printForm(f round.Form) {
	fmt.Fprintf(o.out, "Employee: %s\n", f.EmployeeName)
	fmt.Fprintf(o.out, "Department: %s\n", f.Department)
	fmt.Fprintf(o.out, "Introducer: %s\n", f.Introducer)
	for i, st := range f.Statements {
		fmt.Fprintf(o.out, "  %d. %s\n", i+1, st.Title)
	}
	if f.Lie > 0 {
		fmt.Fprintf(o.out, "Lie: %d\n", f.Lie)
	} else {
		fmt.Fprintln(o.out, "Lie: not selected")
	}
}

func (o *Output) printSession(s *model.Session) {
	fmt.Fprintf(o.out, "Session: %s\n", s.Code)
	fmt.Fprintf(o.out, "Status: %s\n", s.Status)
	if s.MaxRounds > 0 {
		fmt.Fprintf(o.out, "Round: %d of %d\n", min(s.CurrentRound+1, s.MaxRounds), s.MaxRounds)
	}
	fmt.Fprintf(o.out, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		tags := []string{}
		if p.IsHost {
			tags = append(tags, "host")
		}
		if p.IsCurrentTurn {
			tags = append(tags, "turn")
		}
		if p.Statements != nil && p.Statements.Submitted {
			tags = append(tags, "submitted")
		}
		tagStr := ""
		if len(tags) > 0 {
			tagStr = " [" + strings.Join(tags, ", ") + "]"
		}
		fmt.Fprintf(o.out, "  - %s (%s): %d points%s\n", p.Name, p.ID, p.Score, tagStr)
	}
	if s.Status == model.SessionStatusVoting {
		if holder := s.CurrentPlayer(); holder != nil && holder.Statements != nil {
			fmt.Fprintf(o.out, "\nWhich of %s's statements is the lie?\n", holder.Name)
			for i, text := range holder.Statements.Texts {
				fmt.Fprintf(o.out, "  %d. %s\n", i+1, text)
			}
		}
	}
}

func (o *Output) printSessions(sessions []*model.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(o.out, "No open sessions")
		return
	}
	for _, s := range sessions {
		fmt.Fprintf(o.out, "%s  %d/%d players\n", s.Code, len(s.Players), model.MaxSessionPlayers)
	}
}

func (o *Output) printHistory(history []model.GameHistoryEntry) {
	if len(history) == 0 {
		fmt.Fprintln(o.out, "No finished games")
		return
	}
	for _, h := range history {
		fmt.Fprintf(o.out, "%s  Winner: %s (%d pts)  Players: %d  Rounds: %d  %s\n",
			h.Code, h.Winner, h.WinnerScore, len(h.Players), h.TotalRounds, h.FinishedAt.Format(time.DateOnly))
	}
}

func (o *Output) printPlayers(players []model.PlayerProfile) {
	if len(players) == 0 {
		fmt.Fprintln(o.out, "No players")
		return
	}
	for _, p := range players {
		fmt.Fprintf(o.out, "%s\n  Games: %d | Won: %d\n  Total Score: %d | Best: %d\n",
			p.Name, p.GamesPlayed, p.GamesWon, p.TotalScore, p.BestScore)
	}
}

func (o *Output) printVoteOutcome(v *session.VoteOutcome) {
	if !v.TurnComplete {
		fmt.Fprintln(o.out, "Vote recorded")
		return
	}
	if r := v.Result; r != nil {
		fmt.Fprintf(o.out, "Round %d complete: %s's lie was statement %d\n", r.Round+1, r.PlayerName, r.LieIndex+1)
		fmt.Fprintf(o.out, "Correct guesses: %d of %d (bonus %d)\n", r.CorrectVotes, r.TotalVotes, r.DifficultyBonus)
	}
	if h := v.History; h != nil {
		fmt.Fprintf(o.out, "\nGame over! Winner: %s with %d points\n", h.Winner, h.WinnerScore)
		for _, p := range h.Players {
			fmt.Fprintf(o.out, "  %s: %d points\n", p.Name, p.Score)
		}
	}
}
