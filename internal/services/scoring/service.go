package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/storage"
)

const (
	// CorrectGuessPoints is awarded to each voter who finds the lie
	CorrectGuessPoints = 10
	// MaxDifficultyBonus is awarded to the statement-giver when nobody finds the lie
	MaxDifficultyBonus = 10
	// BonusPenaltyPerCorrectVote is deducted from the bonus for each correct voter
	BonusPenaltyPerCorrectVote = 2
)

// TurnScore is the outcome of scanning one turn's votes
type TurnScore struct {
	CorrectVotes    int
	TotalVotes      int
	CorrectVoters   []model.PlayerID // In vote order
	DifficultyBonus int
}

// DifficultyBonus rewards the statement-giver for a lie few people found
func DifficultyBonus(correctVotes int) int {
	return max(0, MaxDifficultyBonus-correctVotes*BonusPenaltyPerCorrectVote)
}

// Service computes turn results and folds finished sessions into lifetime statistics
type Service struct {
	store  *storage.Store
	clock  clock.Clock
	sink   notify.Sink
	logger *slog.Logger
}

// New creates a new ScoringService
func New(store *storage.Store, clock clock.Clock, sink notify.Sink, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		sink:   sink,
		logger: logger,
	}
}

// ScoreTurn scans the votes against the lie. It holds no state, so the
// same votes always produce the same score.
func (s *Service) ScoreTurn(votes []model.Vote, lieIndex int) TurnScore {
	score := TurnScore{
		TotalVotes:    len(votes),
		CorrectVoters: []model.PlayerID{},
	}
	for _, v := range votes {
		if v.StatementIndex == lieIndex {
			score.CorrectVotes++
			score.CorrectVoters = append(score.CorrectVoters, v.VoterID)
		}
	}
	score.DifficultyBonus = DifficultyBonus(score.CorrectVotes)
	return score
}

// TallyRound breaks down a single-subject round's votes by statement
func (s *Service) TallyRound(round *model.GameRound) model.RoundTally {
	tally := model.RoundTally{
		RoundID:  round.ID,
		LieIndex: round.LieIndex,
	}
	for _, v := range round.Votes {
		if !model.ValidStatementIndex(v.StatementIndex) {
			continue
		}
		tally.Counts[v.StatementIndex]++
		tally.TotalVotes++
	}
	if round.HasLie() {
		tally.CorrectVotes = tally.Counts[round.LieIndex]
	}
	return tally
}

// ApplyTurn scores the turn-holder's statements against the given votes,
// awards points and appends the turn's RoundResult to the session
func (s *Service) ApplyTurn(session *model.Session, votes []model.Vote) (*model.RoundResult, error) {
	holder := session.CurrentPlayer()
	if holder == nil {
		return nil, model.ErrPlayerNotFound
	}
	if holder.Statements == nil || !holder.Statements.Submitted {
		return nil, fmt.Errorf("%w: %s has not submitted statements", model.ErrSessionNotVoting, holder.Name)
	}

	lieIndex := holder.Statements.LieIndex
	score := s.ScoreTurn(votes, lieIndex)

	for _, voterID := range score.CorrectVoters {
		if voter := session.GetPlayer(voterID); voter != nil {
			voter.Score += CorrectGuessPoints
		}
	}
	holder.Score += score.DifficultyBonus

	result := model.RoundResult{
		Round:           session.CurrentRound,
		PlayerID:        holder.ID,
		PlayerName:      holder.Name,
		Statements:      holder.Statements.Texts,
		LieIndex:        lieIndex,
		CorrectVotes:    score.CorrectVotes,
		TotalVotes:      score.TotalVotes,
		PlayerScore:     holder.Score,
		DifficultyBonus: score.DifficultyBonus,
	}
	session.RoundResults = append(session.RoundResults, result)

	s.logger.Info("turn scored",
		slog.String("session_code", string(session.Code)),
		slog.Int("round", result.Round),
		slog.String("player_id", string(holder.ID)),
		slog.Int("correct_votes", result.CorrectVotes),
		slog.Int("total_votes", result.TotalVotes),
		slog.Int("difficulty_bonus", result.DifficultyBonus),
	)

	return &result, nil
}

// DetermineWinner returns the player with the highest score. Ties go to
// the earliest player in join order. Returns nil for an empty list.
func (s *Service) DetermineWinner(players []model.SessionPlayer) *model.SessionPlayer {
	var winner *model.SessionPlayer
	for i := range players {
		if winner == nil || players[i].Score > winner.Score {
			winner = &players[i]
		}
	}
	return winner
}

// Settlement is a finished session's effect on profiles and history,
// computed but not yet persisted
type Settlement struct {
	Entry    model.GameHistoryEntry
	Profiles map[model.PlayerID]*model.PlayerProfile
	History  []model.GameHistoryEntry // Newest first, capped at MaxHistoryEntries
	WinnerID model.PlayerID
}

// Writes returns the blobs the settlement replaces
func (st *Settlement) Writes() []storage.Write {
	return []storage.Write{
		{Key: storage.KeyProfiles, Value: st.Profiles},
		{Key: storage.KeyHistory, Value: st.History},
	}
}

// Settle closes the session in memory and computes the updated profiles and
// history. Nothing is written; save the session together with Writes().
func (s *Service) Settle(ctx context.Context, session *model.Session) (*Settlement, error) {
	winner := s.DetermineWinner(session.Players)
	if winner == nil {
		return nil, model.ErrInsufficientPlayers
	}

	now := s.clock.Now()
	session.Status = model.SessionStatusFinished
	session.FinishedAt = &now
	for i := range session.Players {
		session.Players[i].IsCurrentTurn = false
	}

	profiles := s.store.Profiles(ctx)
	for _, p := range session.Players {
		profile, ok := profiles[p.ID]
		if !ok || profile == nil {
			s.logger.Warn("profile missing at session finish, recreating",
				slog.String("player_id", string(p.ID)),
			)
			profile = model.NewPlayerProfile(p.ID, p.Name, now)
			profiles[p.ID] = profile
		}
		profile.RecordGame(p.Score, p.ID == winner.ID, now)
	}

	entry := model.GameHistoryEntry{
		GameID:      session.ID,
		Code:        session.Code,
		Players:     make([]model.HistoryPlayer, len(session.Players)),
		Winner:      winner.Name,
		WinnerScore: winner.Score,
		TotalRounds: session.MaxRounds,
		FinishedAt:  now,
	}
	for i, p := range session.Players {
		entry.Players[i] = model.HistoryPlayer{Name: p.Name, Score: p.Score}
	}

	history := append([]model.GameHistoryEntry{entry}, s.store.History(ctx)...)
	if len(history) > model.MaxHistoryEntries {
		history = history[:model.MaxHistoryEntries]
	}

	return &Settlement{
		Entry:    entry,
		Profiles: profiles,
		History:  history,
		WinnerID: winner.ID,
	}, nil
}

// Announce reports a settlement once it has been persisted
func (s *Service) Announce(ctx context.Context, st *Settlement) {
	s.logger.Info("session finished",
		slog.String("session_code", string(st.Entry.Code)),
		slog.String("winner", st.Entry.Winner),
		slog.Int("winner_score", st.Entry.WinnerScore),
		slog.Int("total_rounds", st.Entry.TotalRounds),
	)
	s.sink.Notify(ctx, model.Event{
		Type:        model.EventSessionFinished,
		Timestamp:   st.Entry.FinishedAt,
		Title:       "Game Finished!",
		Message:     fmt.Sprintf("Congratulations to %s for winning with %d points!", st.Entry.Winner, st.Entry.WinnerScore),
		SessionCode: st.Entry.Code,
		PlayerID:    st.WinnerID,
	})
}

// FinishSession closes the session, updates every participant's profile and
// records the result in history. Extra writes (typically the session
// collection) are saved first, all or nothing.
func (s *Service) FinishSession(ctx context.Context, session *model.Session, extra ...storage.Write) (*model.GameHistoryEntry, error) {
	st, err := s.Settle(ctx, session)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveAll(ctx, append(extra, st.Writes()...)...); err != nil {
		return nil, err
	}
	s.Announce(ctx, st)
	return &st.Entry, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	ScoreTurn(votes []model.Vote, lieIndex int) TurnScore
	TallyRound(round *model.GameRound) model.RoundTally
	ApplyTurn(session *model.Session, votes []model.Vote) (*model.RoundResult, error)
	DetermineWinner(players []model.SessionPlayer) *model.SessionPlayer
	FinishSession(ctx context.Context, session *model.Session, extra ...storage.Write) (*model.GameHistoryEntry, error)
}

var _ ServiceInterface = (*Service)(nil)
