package admin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/dependencies/random"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/round"
	"github.com/mcoot/truthlie/internal/storage"
)

// Action names a destructive operation
type Action string

const (
	ActionClearHistory Action = "clear-history"
	ActionEndAllRounds Action = "end-all-rounds"
)

// Actions lists every supported action
var Actions = []Action{ActionClearHistory, ActionEndAllRounds}

// PlanTTL is how long a plan can be committed after it is made
const PlanTTL = 5 * time.Minute

// Plan describes a pending destructive action awaiting consent
type Plan struct {
	Token       string    `json:"token"`
	Action      Action    `json:"action"`
	Description string    `json:"description"`
	Affected    int       `json:"affected"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Confirmer asks the user to consent to a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, description string) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface
type ConfirmFunc func(ctx context.Context, description string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, description string) (bool, error) {
	return f(ctx, description)
}

// Service runs destructive actions in two steps: Plan describes the
// action and returns a token, Commit runs it
type Service struct {
	store  *storage.Store
	rounds *round.Controller
	clock  clock.Clock
	random random.Random
	sink   notify.Sink
	logger *slog.Logger

	mu    sync.Mutex
	plans map[string]Plan
}

// New creates a new AdminService
func New(
	store *storage.Store,
	rounds *round.Controller,
	clock clock.Clock,
	random random.Random,
	sink notify.Sink,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:  store,
		rounds: rounds,
		clock:  clock,
		random: random,
		sink:   sink,
		logger: logger,
		plans:  make(map[string]Plan),
	}
}

// Plan describes what the action would do without doing it
func (s *Service) Plan(ctx context.Context, action Action) (Plan, error) {
	var plan Plan
	switch action {
	case ActionClearHistory:
		n := len(s.store.History(ctx))
		plan.Affected = n
		plan.Description = fmt.Sprintf("Clear all game history (%d entries)? This cannot be undone.", n)
	case ActionEndAllRounds:
		n := s.rounds.Counts(ctx).Active
		plan.Affected = n
		plan.Description = fmt.Sprintf("End all %d active game rounds?", n)
	default:
		return Plan{}, fmt.Errorf("%w: %q", model.ErrUnknownAction, action)
	}

	now := s.clock.Now()
	plan.Token = s.random.UUID()
	plan.Action = action
	plan.ExpiresAt = now.Add(PlanTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, p := range s.plans {
		if !now.Before(p.ExpiresAt) {
			delete(s.plans, token)
		}
	}
	s.plans[plan.Token] = plan

	s.logger.Info("destructive action planned",
		slog.String("action", string(action)),
		slog.Int("affected", plan.Affected),
	)
	return plan, nil
}

// take removes and returns the plan for token if it is still live
func (s *Service) take(token string) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.plans[token]
	if !ok {
		return Plan{}, model.ErrPlanNotFound
	}
	delete(s.plans, token)
	if !s.clock.Now().Before(plan.ExpiresAt) {
		return Plan{}, fmt.Errorf("%w: expired at %s", model.ErrPlanNotFound, plan.ExpiresAt.Format(time.RFC3339))
	}
	return plan, nil
}

// Commit runs a planned action. Each token can be committed once.
// Returns the number of records affected.
func (s *Service) Commit(ctx context.Context, token string) (int, error) {
	plan, err := s.take(token)
	if err != nil {
		return 0, err
	}

	var affected int
	switch plan.Action {
	case ActionClearHistory:
		affected, err = s.clearHistory(ctx)
	case ActionEndAllRounds:
		affected, err = s.rounds.EndAll(ctx)
	}
	if err != nil {
		s.logger.Error("destructive action failed",
			slog.String("action", string(plan.Action)),
			slog.String("error", err.Error()),
		)
		return 0, err
	}

	s.logger.Info("destructive action committed",
		slog.String("action", string(plan.Action)),
		slog.Int("affected", affected),
	)
	return affected, nil
}

// Discard drops a plan without running it
func (s *Service) Discard(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.plans, token)
}

// Run plans the action, asks for consent and commits if given.
// Returns false if the user declined.
func (s *Service) Run(ctx context.Context, action Action, confirmer Confirmer) (bool, int, error) {
	plan, err := s.Plan(ctx, action)
	if err != nil {
		return false, 0, err
	}

	ok, err := confirmer.Confirm(ctx, plan.Description)
	if err != nil || !ok {
		s.Discard(plan.Token)
		return false, 0, err
	}

	affected, err := s.Commit(ctx, plan.Token)
	if err != nil {
		return false, 0, err
	}
	return true, affected, nil
}

func (s *Service) clearHistory(ctx context.Context) (int, error) {
	n := len(s.store.History(ctx))
	if err := s.store.SaveHistory(ctx, []model.GameHistoryEntry{}); err != nil {
		return 0, err
	}
	s.sink.Notify(ctx, model.Event{
		Type:      model.EventHistoryCleared,
		Timestamp: s.clock.Now(),
		Title:     "History Cleared",
		Message:   "All game history has been cleared.",
	})
	return n, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Plan(ctx context.Context, action Action) (Plan, error)
	Commit(ctx context.Context, token string) (int, error)
	Discard(token string)
	Run(ctx context.Context, action Action, confirmer Confirmer) (bool, int, error)
}

var _ ServiceInterface = (*Service)(nil)
