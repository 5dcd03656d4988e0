package voting

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/storage"
)

// Engine validates and records votes
type Engine struct {
	store  *storage.Store
	clock  clock.Clock
	sink   notify.Sink
	logger *slog.Logger
}

// New creates a new VotingEngine
func New(store *storage.Store, clock clock.Clock, sink notify.Sink, logger *slog.Logger) *Engine {
	return &Engine{
		store:  store,
		clock:  clock,
		sink:   sink,
		logger: logger,
	}
}

// Cast records a vote on the ballot and reports whether it completes the
// expected-voter set. A rejected vote leaves the ballot unchanged.
func (e *Engine) Cast(ballot Ballot, voterID model.PlayerID, statementIndex int) (bool, error) {
	if voterID == "" {
		return false, model.ErrEmptyVoterID
	}
	if !model.ValidStatementIndex(statementIndex) {
		return false, fmt.Errorf("%w: got %d", model.ErrInvalidStatementIndex, statementIndex)
	}
	if err := ballot.CanVote(voterID); err != nil {
		return false, err
	}

	ballot.Record(model.Vote{
		VoterID:        voterID,
		StatementIndex: statementIndex,
		Timestamp:      e.clock.Now(),
	})
	return ballot.Complete(), nil
}

// VoteOnRound casts a vote on an active single-subject round and persists it
func (e *Engine) VoteOnRound(ctx context.Context, roundID model.RoundID, voterID model.PlayerID, statementIndex int) error {
	rounds := e.store.Rounds(ctx)

	idx := -1
	for i := range rounds {
		if rounds[i].ID == roundID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return model.ErrRoundNotFound
	}
	round := &rounds[idx]
	if round.Status != model.RoundStatusActive {
		return model.ErrRoundNotActive
	}

	if _, err := e.Cast(NewRoundBallot(round), voterID, statementIndex); err != nil {
		return err
	}

	if err := e.store.SaveRounds(ctx, rounds); err != nil {
		e.logger.Error("failed to save vote",
			slog.String("round_id", string(roundID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	e.logger.Info("vote cast",
		slog.String("round_id", string(roundID)),
		slog.Int("total_votes", len(round.Votes)),
	)
	e.sink.Notify(ctx, model.Event{
		Type:      model.EventVoteCast,
		Timestamp: e.clock.Now(),
		Title:     "Vote Submitted!",
		Message:   fmt.Sprintf("Your guess for %s has been recorded.", round.EmployeeName),
		RoundID:   roundID,
		PlayerID:  voterID,
	})
	return nil
}

// Interface for dependency injection
type EngineInterface interface {
	Cast(ballot Ballot, voterID model.PlayerID, statementIndex int) (bool, error)
	VoteOnRound(ctx context.Context, roundID model.RoundID, voterID model.PlayerID, statementIndex int) error
}

var _ EngineInterface = (*Engine)(nil)
