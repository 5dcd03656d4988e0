package round

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/truthlie/internal/dependencies/mocks"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/scoring"
	"github.com/mcoot/truthlie/internal/storage"
	"github.com/mcoot/truthlie/internal/storage/memory"
	"github.com/mcoot/truthlie/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	store      *storage.Store
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	recorder   *notify.Recorder
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.store = storage.New(memory.New(), logger)
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.recorder = notify.NewRecorder()
	scoringService := scoring.New(s.store, s.clock, s.recorder, logger)
	s.controller = NewController(s.store, scoringService, s.clock, s.random, s.recorder, logger)
	s.ctx = context.Background()
}

func completeForm() Form {
	return Form{
		EmployeeName: "Alice",
		Department:   "Engineering",
		Introducer:   "Bob",
		Statements: [3]StatementInput{
			{Title: "I have climbed Kilimanjaro", Content: "In 2019"},
			{Title: "I speak four languages"},
			{Title: "I have a pet snake"},
		},
		Lie: 2,
	}
}

func (s *ControllerSuite) saveDraft(form Form) *model.GameRound {
	r, err := s.controller.SaveDraft(s.ctx, form)
	s.Require().NoError(err)
	return r
}

func (s *ControllerSuite) createActive() *model.GameRound {
	r, err := s.controller.CreateActive(s.ctx, completeForm())
	s.Require().NoError(err)
	return r
}

// SaveDraft tests

func (s *ControllerSuite) TestSaveDraftRequiresOnlyName() {
	s.random.QueueUUID("abc")
	form := NewForm()
	form.EmployeeName = "  Alice  "

	r, err := s.controller.SaveDraft(s.ctx, form)
	s.Require().NoError(err)

	s.Equal(model.RoundID("round_abc"), r.ID)
	s.Equal("Alice", r.EmployeeName)
	s.Equal(model.RoundStatusDraft, r.Status)
	s.Equal(model.NoLie, r.LieIndex)
	s.Equal(model.DefaultProfileField, r.Department)
	s.Equal(model.DefaultProfileField, r.Introducer)
	s.Equal(s.clock.Now(), r.CreatedAt)
	s.Nil(r.ActivatedAt)
	for i, st := range r.Statements {
		s.Equal(i+1, st.ID)
	}

	stored := s.store.Rounds(s.ctx)
	s.Require().Len(stored, 1)
	s.Equal(r.ID, stored[0].ID)
	s.Equal([]model.EventType{model.EventDraftSaved}, s.recorder.Types())
}

func (s *ControllerSuite) TestSaveDraftRejectsMissingName() {
	form := completeForm()
	form.EmployeeName = "   "

	_, err := s.controller.SaveDraft(s.ctx, form)
	s.ErrorIs(err, model.ErrMissingEmployeeName)
	s.Equal(model.KindValidation, model.KindOf(err))
	s.Empty(s.store.Rounds(s.ctx))
	s.Empty(s.recorder.Events())
}

func (s *ControllerSuite) TestSaveDraftRejectsLargePicture() {
	form := completeForm()
	form.Picture = &model.Picture{Name: "huge.png", Size: model.MaxPictureSize + 1, Type: "image/png"}

	_, err := s.controller.SaveDraft(s.ctx, form)
	s.ErrorIs(err, model.ErrPictureTooLarge)
	s.Empty(s.store.Rounds(s.ctx))
}

func (s *ControllerSuite) TestSaveDraftAcceptsPictureAtLimit() {
	form := completeForm()
	form.Picture = &model.Picture{Name: "ok.jpg", Size: model.MaxPictureSize, Type: "image/jpeg"}

	r := s.saveDraft(form)
	s.Require().NotNil(r.Picture)
	s.Equal("ok.jpg", r.Picture.Name)
}

func (s *ControllerSuite) TestSaveDraftRejectsOutOfRangeLie() {
	form := completeForm()
	form.Lie = 4

	_, err := s.controller.SaveDraft(s.ctx, form)
	s.ErrorIs(err, model.ErrInvalidStatementIndex)
}

func (s *ControllerSuite) TestSaveDraftTwiceCreatesTwoRecords() {
	s.saveDraft(completeForm())
	s.saveDraft(completeForm())

	s.Len(s.store.Rounds(s.ctx), 2)
}

// CreateActive tests

func (s *ControllerSuite) TestCreateActive() {
	r := s.createActive()

	s.Equal(model.RoundStatusActive, r.Status)
	s.Require().NotNil(r.ActivatedAt)
	s.Equal(s.clock.Now(), *r.ActivatedAt)
	s.True(r.IsLie(1))
	s.False(r.IsLie(0))
	s.Equal([]model.EventType{model.EventRoundActive}, s.recorder.Types())
}

func (s *ControllerSuite) TestCreateActiveRejectsIncomplete() {
	form := completeForm()
	form.Statements[2].Title = ""

	_, err := s.controller.CreateActive(s.ctx, form)
	s.ErrorIs(err, model.ErrIncompleteRound)
	s.Contains(err.Error(), "statement 3 title")
	s.Empty(s.store.Rounds(s.ctx))
}

func (s *ControllerSuite) TestFormWithoutLieSelectsNone() {
	form := Form{
		EmployeeName: "Alice",
		Statements: [3]StatementInput{
			{Title: "I have climbed Kilimanjaro"},
			{Title: "I speak four languages"},
			{Title: "I have a pet snake"},
		},
	}
	s.Equal(model.NoLie, form.LieIndex())

	_, err := s.controller.CreateActive(s.ctx, form)
	s.ErrorIs(err, model.ErrIncompleteRound)
	s.Contains(err.Error(), "lie selection")

	_, err = s.controller.Submit(s.ctx, StaticForm(form), true)
	s.ErrorIs(err, model.ErrIncompleteRound)
	s.Empty(s.store.Rounds(s.ctx))

	draft := s.saveDraft(form)
	s.Equal(model.NoLie, draft.LieIndex)
	s.Equal(0, FormFromRound(draft).Lie)
}

func (s *ControllerSuite) TestFormLieIsOneBased() {
	r := s.createActive()
	s.Equal(1, r.LieIndex)
	s.Equal(2, FormFromRound(r).Lie)
}

// Submit tests

func (s *ControllerSuite) TestSubmitFromProvider() {
	draft, err := s.controller.Submit(s.ctx, StaticForm(completeForm()), false)
	s.Require().NoError(err)
	s.Equal(model.RoundStatusDraft, draft.Status)

	active, err := s.controller.Submit(s.ctx, StaticForm(completeForm()), true)
	s.Require().NoError(err)
	s.Equal(model.RoundStatusActive, active.Status)
}

// Activate tests

func (s *ControllerSuite) TestActivateDraft() {
	draft := s.saveDraft(completeForm())
	s.clock.Advance(time.Minute)

	r, err := s.controller.Activate(s.ctx, draft.ID)
	s.Require().NoError(err)

	s.Equal(model.RoundStatusActive, r.Status)
	s.Equal(s.clock.Now(), *r.ActivatedAt)

	stored, _ := s.controller.Get(s.ctx, draft.ID)
	s.Equal(model.RoundStatusActive, stored.Status)
}

func (s *ControllerSuite) TestActivateMissingLieLeavesDraft() {
	form := completeForm()
	form.Lie = 0
	draft := s.saveDraft(form)

	_, err := s.controller.Activate(s.ctx, draft.ID)
	s.ErrorIs(err, model.ErrIncompleteRound)
	s.Equal(model.KindValidation, model.KindOf(err))
	s.Contains(err.Error(), "lie selection")

	stored, _ := s.controller.Get(s.ctx, draft.ID)
	s.Equal(model.RoundStatusDraft, stored.Status)
	s.Nil(stored.ActivatedAt)
}

func (s *ControllerSuite) TestActivateMissingTitle() {
	form := completeForm()
	form.Statements[0].Title = ""
	draft := s.saveDraft(form)

	_, err := s.controller.Activate(s.ctx, draft.ID)
	s.ErrorIs(err, model.ErrIncompleteRound)
	s.Contains(err.Error(), "statement 1 title")
}

func (s *ControllerSuite) TestActivateNonDraft() {
	r := s.createActive()

	_, err := s.controller.Activate(s.ctx, r.ID)
	s.ErrorIs(err, model.ErrRoundNotDraft)
	s.Equal(model.KindInvalidState, model.KindOf(err))
}

func (s *ControllerSuite) TestActivateUnknown() {
	_, err := s.controller.Activate(s.ctx, "round_missing")
	s.ErrorIs(err, model.ErrRoundNotFound)
}

func (s *ControllerSuite) TestActivatedRoundHasExactlyOneLie() {
	r := s.createActive()
	lies := 0
	for i := range r.Statements {
		if r.IsLie(i) {
			lies++
			s.Equal(r.LieIndex, i)
		}
	}
	s.Equal(1, lies)
}

// Finish tests

func (s *ControllerSuite) TestFinishActive() {
	r := s.createActive()
	s.clock.Advance(time.Hour)

	finished, err := s.controller.Finish(s.ctx, r.ID)
	s.Require().NoError(err)

	s.Equal(model.RoundStatusFinished, finished.Status)
	s.Equal(s.clock.Now(), *finished.FinishedAt)
}

func (s *ControllerSuite) TestFinishDraftFails() {
	draft := s.saveDraft(completeForm())

	_, err := s.controller.Finish(s.ctx, draft.ID)
	s.ErrorIs(err, model.ErrRoundNotActive)
}

func (s *ControllerSuite) TestNoTransitionLeavesFinished() {
	r := s.createActive()
	_, err := s.controller.Finish(s.ctx, r.ID)
	s.Require().NoError(err)

	_, err = s.controller.Finish(s.ctx, r.ID)
	s.ErrorIs(err, model.ErrRoundNotActive)
	_, err = s.controller.Activate(s.ctx, r.ID)
	s.ErrorIs(err, model.ErrRoundNotDraft)
	_, err = s.controller.EditDraft(s.ctx, r.ID)
	s.ErrorIs(err, model.ErrRoundNotDraft)

	stored, _ := s.controller.Get(s.ctx, r.ID)
	s.Equal(model.RoundStatusFinished, stored.Status)
}

// EndAll tests

func (s *ControllerSuite) TestEndAllFinishesOnlyActive() {
	draft := s.saveDraft(completeForm())
	a1 := s.createActive()
	a2 := s.createActive()
	done := s.createActive()
	_, _ = s.controller.Finish(s.ctx, done.ID)
	s.recorder.Drain()

	count, err := s.controller.EndAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	for _, id := range []model.RoundID{a1.ID, a2.ID, done.ID} {
		r, _ := s.controller.Get(s.ctx, id)
		s.Equal(model.RoundStatusFinished, r.Status)
	}
	r, _ := s.controller.Get(s.ctx, draft.ID)
	s.Equal(model.RoundStatusDraft, r.Status)
	s.Equal([]model.EventType{model.EventRoundsEnded}, s.recorder.Types())
}

func (s *ControllerSuite) TestEndAllWithNothingActive() {
	s.saveDraft(completeForm())
	s.recorder.Drain()

	count, err := s.controller.EndAll(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
	s.Empty(s.recorder.Events())
}

// EditDraft tests

func (s *ControllerSuite) TestEditDraftRemovesDraft() {
	form := completeForm()
	form.Department = ""
	draft := s.saveDraft(form)

	edited, err := s.controller.EditDraft(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(draft.ID, edited.ID)
	s.Empty(s.store.Rounds(s.ctx))

	repopulated := FormFromRound(edited)
	s.Equal("Alice", repopulated.EmployeeName)
	s.Equal("", repopulated.Department)
	s.Equal("Bob", repopulated.Introducer)
	s.Equal(2, repopulated.Lie)
	s.Equal("I speak four languages", repopulated.Statements[1].Title)

	resubmitted := s.saveDraft(repopulated)
	s.NotEqual(draft.ID, resubmitted.ID)
	s.Len(s.store.Rounds(s.ctx), 1)
}

func (s *ControllerSuite) TestEditDraftRejectsActive() {
	r := s.createActive()

	_, err := s.controller.EditDraft(s.ctx, r.ID)
	s.ErrorIs(err, model.ErrRoundNotDraft)
	s.Len(s.store.Rounds(s.ctx), 1)
}

// Query tests

func (s *ControllerSuite) TestListAndCounts() {
	s.saveDraft(completeForm())
	s.saveDraft(completeForm())
	active := s.createActive()
	done := s.createActive()
	_, _ = s.controller.Finish(s.ctx, done.ID)

	s.Len(s.controller.List(s.ctx, ""), 4)
	s.Len(s.controller.List(s.ctx, model.RoundStatusDraft), 2)
	actives := s.controller.List(s.ctx, model.RoundStatusActive)
	s.Require().Len(actives, 1)
	s.Equal(active.ID, actives[0].ID)

	counts := s.controller.Counts(s.ctx)
	s.Equal(model.RoundCounts{Drafts: 2, Active: 1, Finished: 1}, counts)
	s.Equal(4, counts.Total())
}

func (s *ControllerSuite) TestTally() {
	r := s.createActive()
	rounds := s.store.Rounds(s.ctx)
	rounds[0].Votes = []model.Vote{
		{VoterID: "v1", StatementIndex: 0},
		{VoterID: "v2", StatementIndex: 1},
		{VoterID: "v3", StatementIndex: 1},
	}
	s.Require().NoError(s.store.SaveRounds(s.ctx, rounds))

	tally, err := s.controller.Tally(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal([3]int{1, 2, 0}, tally.Counts)
	s.Equal(2, tally.CorrectVotes)
	s.Equal(3, tally.TotalVotes)
}

func (s *ControllerSuite) TestTallyUnknown() {
	_, err := s.controller.Tally(s.ctx, "nope")
	s.ErrorIs(err, model.ErrRoundNotFound)
}
