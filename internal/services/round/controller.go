package round

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/dependencies/random"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/scoring"
	"github.com/mcoot/truthlie/internal/storage"
)

// IDPrefix is prepended to generated round ids
const IDPrefix = "round_"

// Controller manages the single-subject round lifecycle
type Controller struct {
	store   *storage.Store
	scoring *scoring.Service
	clock   clock.Clock
	random  random.Random
	sink    notify.Sink
	logger  *slog.Logger
}

// NewController creates a new RoundController
func NewController(
	store *storage.Store,
	scoringService *scoring.Service,
	clock clock.Clock,
	random random.Random,
	sink notify.Sink,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		store:   store,
		scoring: scoringService,
		clock:   clock,
		random:  random,
		sink:    sink,
		logger:  logger,
	}
}

func (c *Controller) newRound(f Form) model.GameRound {
	r := model.GameRound{
		ID:           model.RoundID(IDPrefix + c.random.UUID()),
		EmployeeName: f.EmployeeName,
		Department:   defaultIfBlank(f.Department),
		Introducer:   defaultIfBlank(f.Introducer),
		Picture:      f.Picture,
		LieIndex:     f.LieIndex(),
		Status:       model.RoundStatusDraft,
		Votes:        []model.Vote{},
		CreatedAt:    c.clock.Now(),
	}
	for i, st := range f.Statements {
		r.Statements[i] = model.Statement{ID: i + 1, Title: st.Title, Content: st.Content}
	}
	return r
}

func incompleteError(r *model.GameRound) error {
	return fmt.Errorf("%w: missing %s", model.ErrIncompleteRound, strings.Join(r.MissingFields(), ", "))
}

func findRound(rounds []model.GameRound, id model.RoundID) int {
	for i := range rounds {
		if rounds[i].ID == id {
			return i
		}
	}
	return -1
}

// SaveDraft stores the form as a new draft. Only the employee name is required.
func (c *Controller) SaveDraft(ctx context.Context, form Form) (*model.GameRound, error) {
	f, err := form.normalize()
	if err != nil {
		return nil, err
	}

	r := c.newRound(f)
	rounds := append(c.store.Rounds(ctx), r)
	if err := c.store.SaveRounds(ctx, rounds); err != nil {
		return nil, err
	}

	c.logger.Info("draft saved",
		slog.String("round_id", string(r.ID)),
		slog.String("employee_name", r.EmployeeName),
	)
	c.sink.Notify(ctx, model.Event{
		Type:      model.EventDraftSaved,
		Timestamp: c.clock.Now(),
		Title:     "Draft Saved!",
		Message:   fmt.Sprintf("Game round draft for %s has been saved.", r.EmployeeName),
		RoundID:   r.ID,
	})
	return &r, nil
}

// CreateActive stores the form as a new round that is immediately playable
func (c *Controller) CreateActive(ctx context.Context, form Form) (*model.GameRound, error) {
	f, err := form.normalize()
	if err != nil {
		return nil, err
	}

	r := c.newRound(f)
	if !r.IsComplete() {
		return nil, incompleteError(&r)
	}
	now := c.clock.Now()
	r.Status = model.RoundStatusActive
	r.ActivatedAt = &now

	rounds := append(c.store.Rounds(ctx), r)
	if err := c.store.SaveRounds(ctx, rounds); err != nil {
		return nil, err
	}

	c.logger.Info("round created active",
		slog.String("round_id", string(r.ID)),
		slog.String("employee_name", r.EmployeeName),
	)
	c.notifyActivated(ctx, &r)
	return &r, nil
}

// Submit reads a form from the provider and saves it as a draft, or as an
// active round when publish is set
func (c *Controller) Submit(ctx context.Context, provider FormProvider, publish bool) (*model.GameRound, error) {
	form, err := provider.RoundForm(ctx)
	if err != nil {
		return nil, err
	}
	if publish {
		return c.CreateActive(ctx, form)
	}
	return c.SaveDraft(ctx, form)
}

// Activate publishes a complete draft
func (c *Controller) Activate(ctx context.Context, id model.RoundID) (*model.GameRound, error) {
	rounds := c.store.Rounds(ctx)
	idx := findRound(rounds, id)
	if idx < 0 {
		return nil, model.ErrRoundNotFound
	}
	r := &rounds[idx]
	if r.Status != model.RoundStatusDraft {
		return nil, model.ErrRoundNotDraft
	}
	if !r.IsComplete() {
		return nil, incompleteError(r)
	}

	now := c.clock.Now()
	r.Status = model.RoundStatusActive
	r.ActivatedAt = &now

	if err := c.store.SaveRounds(ctx, rounds); err != nil {
		return nil, err
	}

	c.logger.Info("round activated", slog.String("round_id", string(id)))
	c.notifyActivated(ctx, r)
	return r, nil
}

func (c *Controller) notifyActivated(ctx context.Context, r *model.GameRound) {
	c.sink.Notify(ctx, model.Event{
		Type:      model.EventRoundActive,
		Timestamp: c.clock.Now(),
		Title:     "Game Round Activated!",
		Message:   fmt.Sprintf("Game round for %s is now active and ready for players!", r.EmployeeName),
		RoundID:   r.ID,
	})
}

// Finish closes an active round. Finished rounds stay finished.
func (c *Controller) Finish(ctx context.Context, id model.RoundID) (*model.GameRound, error) {
	rounds := c.store.Rounds(ctx)
	idx := findRound(rounds, id)
	if idx < 0 {
		return nil, model.ErrRoundNotFound
	}
	r := &rounds[idx]
	if r.Status != model.RoundStatusActive {
		return nil, model.ErrRoundNotActive
	}

	now := c.clock.Now()
	r.Status = model.RoundStatusFinished
	r.FinishedAt = &now

	if err := c.store.SaveRounds(ctx, rounds); err != nil {
		return nil, err
	}

	c.logger.Info("round finished",
		slog.String("round_id", string(id)),
		slog.Int("total_votes", len(r.Votes)),
	)
	c.sink.Notify(ctx, model.Event{
		Type:      model.EventRoundFinished,
		Timestamp: now,
		Title:     "Game Round Finished!",
		Message:   fmt.Sprintf("The game round for %s has ended.", r.EmployeeName),
		RoundID:   id,
	})
	return r, nil
}

// EndAll finishes every active round and persists once. Returns the number finished.
func (c *Controller) EndAll(ctx context.Context) (int, error) {
	rounds := c.store.Rounds(ctx)
	now := c.clock.Now()

	ended := 0
	for i := range rounds {
		if rounds[i].Status != model.RoundStatusActive {
			continue
		}
		rounds[i].Status = model.RoundStatusFinished
		rounds[i].FinishedAt = &now
		ended++
	}
	if ended == 0 {
		return 0, nil
	}

	if err := c.store.SaveRounds(ctx, rounds); err != nil {
		return 0, err
	}

	c.logger.Info("all active rounds ended", slog.Int("count", ended))
	c.sink.Notify(ctx, model.Event{
		Type:      model.EventRoundsEnded,
		Timestamp: now,
		Title:     "Rounds Ended",
		Message:   fmt.Sprintf("%d active game rounds have been finished.", ended),
	})
	return ended, nil
}

// EditDraft removes a draft and returns it so the form can be repopulated.
// Resubmitting the form creates a new draft.
func (c *Controller) EditDraft(ctx context.Context, id model.RoundID) (*model.GameRound, error) {
	rounds := c.store.Rounds(ctx)
	idx := findRound(rounds, id)
	if idx < 0 {
		return nil, model.ErrRoundNotFound
	}
	draft := rounds[idx]
	if draft.Status != model.RoundStatusDraft {
		return nil, model.ErrRoundNotDraft
	}

	rounds = append(rounds[:idx], rounds[idx+1:]...)
	if err := c.store.SaveRounds(ctx, rounds); err != nil {
		return nil, err
	}

	c.logger.Info("draft opened for editing", slog.String("round_id", string(id)))
	c.sink.Notify(ctx, model.Event{
		Type:      model.EventDraftEdited,
		Timestamp: c.clock.Now(),
		Title:     "Draft Loaded",
		Message:   fmt.Sprintf("Draft for %s loaded for editing.", draft.EmployeeName),
		RoundID:   id,
	})
	return &draft, nil
}

// Get retrieves a round by id
func (c *Controller) Get(ctx context.Context, id model.RoundID) (*model.GameRound, error) {
	rounds := c.store.Rounds(ctx)
	idx := findRound(rounds, id)
	if idx < 0 {
		return nil, model.ErrRoundNotFound
	}
	return &rounds[idx], nil
}

// List returns rounds in stored order, filtered by status unless status is empty
func (c *Controller) List(ctx context.Context, status model.RoundStatus) []model.GameRound {
	rounds := c.store.Rounds(ctx)
	if status == "" {
		return rounds
	}
	result := []model.GameRound{}
	for _, r := range rounds {
		if r.Status == status {
			result = append(result, r)
		}
	}
	return result
}

// Counts returns the number of rounds in each status
func (c *Controller) Counts(ctx context.Context) model.RoundCounts {
	return model.CountRounds(c.store.Rounds(ctx))
}

// Tally returns the vote breakdown of a round
func (c *Controller) Tally(ctx context.Context, id model.RoundID) (model.RoundTally, error) {
	r, err := c.Get(ctx, id)
	if err != nil {
		return model.RoundTally{}, err
	}
	return c.scoring.TallyRound(r), nil
}

// Interface for dependency injection
type ControllerInterface interface {
	SaveDraft(ctx context.Context, form Form) (*model.GameRound, error)
	CreateActive(ctx context.Context, form Form) (*model.GameRound, error)
	Submit(ctx context.Context, provider FormProvider, publish bool) (*model.GameRound, error)
	Activate(ctx context.Context, id model.RoundID) (*model.GameRound, error)
	Finish(ctx context.Context, id model.RoundID) (*model.GameRound, error)
	EndAll(ctx context.Context) (int, error)
	EditDraft(ctx context.Context, id model.RoundID) (*model.GameRound, error)
	Get(ctx context.Context, id model.RoundID) (*model.GameRound, error)
	List(ctx context.Context, status model.RoundStatus) []model.GameRound
	Counts(ctx context.Context) model.RoundCounts
	Tally(ctx context.Context, id model.RoundID) (model.RoundTally, error)
}

var _ ControllerInterface = (*Controller)(nil)
