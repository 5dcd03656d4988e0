package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/admin"
	redisstorage "github.com/mcoot/truthlie/internal/storage/redis"
	"github.com/mcoot/truthlie/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// Test: Complete single-subject round from draft to finished tally
func (s *IntegrationSuite) TestSingleSubjectRoundFlow() {
	// Step 1: Save a draft without a lie, then fix it via edit
	form := SampleForm("Alice", model.NoLie)
	draft, err := s.app.RoundController.SaveDraft(s.ctx, form)
	s.Require().NoError(err)

	_, err = s.app.RoundController.Activate(s.ctx, draft.ID)
	s.Require().ErrorIs(err, model.ErrIncompleteRound)

	edited, err := s.app.RoundController.EditDraft(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal("Engineering", edited.Department)
	form.Lie = 2
	draft, err = s.app.RoundController.SaveDraft(s.ctx, form)
	s.Require().NoError(err)

	// Step 2: Publish
	active, err := s.app.RoundController.Activate(s.ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(model.RoundStatusActive, active.Status)

	// Step 3: Three voters guess A, B, B
	for i, idx := range []int{0, 1, 1} {
		err := s.app.VotingEngine.VoteOnRound(s.ctx, active.ID, model.PlayerID(fmt.Sprintf("voter-%d", i)), idx)
		s.Require().NoError(err)
	}
	err = s.app.VotingEngine.VoteOnRound(s.ctx, active.ID, "voter-0", 1)
	s.Require().ErrorIs(err, model.ErrAlreadyVoted)

	// Step 4: Tally and finish
	tally, err := s.app.RoundController.Tally(s.ctx, active.ID)
	s.Require().NoError(err)
	s.Equal(2, tally.CorrectVotes)
	s.Equal(3, tally.TotalVotes)
	s.Equal(6, s.app.ScoringService.ScoreTurn(s.app.Store.Rounds(s.ctx)[0].Votes, tally.LieIndex).DifficultyBonus)

	_, err = s.app.RoundController.Finish(s.ctx, active.ID)
	s.Require().NoError(err)
	s.Equal(model.RoundCounts{Finished: 1}, s.app.RoundController.Counts(s.ctx))
}

// Test: Complete multiplayer session from creation to history
func (s *IntegrationSuite) TestMultiplayerSessionFlow() {
	s.app.MockRandom.QueueString("PARTY1")
	s.app.MockRandom.QueueIntn(
		0, 2, 1, // Round 1: Cat's lie is at 1
		1, 0, 2, // Round 2: Cat's lie is at 2
		2, 2, 0, // Round 3: Cat's lie is at 0
	)

	// Step 1: Create and fill the session
	created, err := s.app.SessionController.Create(s.ctx, "Ana")
	s.Require().NoError(err)
	code := created.Code
	ben, err := s.app.SessionController.Join(s.ctx, code, "Ben")
	s.Require().NoError(err)
	cat, err := s.app.SessionController.Join(s.ctx, code, "Cat")
	s.Require().NoError(err)
	ids := []model.PlayerID{created.HostID, ben.ID, cat.ID}

	_, err = s.app.SessionController.Start(s.ctx, code, created.HostID)
	s.Require().NoError(err)

	// Step 2: Play three rounds; Ana always guesses 1, Ben always guesses 2
	var finished *model.GameHistoryEntry
	for r := 0; r < 3; r++ {
		for _, id := range ids {
			_, err := s.app.SessionController.SubmitStatements(s.ctx, code, id, [3]string{"one", "two", "three"})
			s.Require().NoError(err)
		}
		_, err := s.app.SessionController.SubmitVote(s.ctx, code, ids[0], 1)
		s.Require().NoError(err)
		result, err := s.app.SessionController.SubmitVote(s.ctx, code, ids[1], 2)
		s.Require().NoError(err)
		s.Require().True(result.TurnComplete)
		finished = result.History
	}

	// Ana: 10 (round 1). Ben: 10 (round 2). Cat: 8 + 8 + 10.
	s.Require().NotNil(finished)
	s.Equal("Cat", finished.Winner)
	s.Equal(26, finished.WinnerScore)
	s.Equal([]model.HistoryPlayer{{Name: "Ana", Score: 10}, {Name: "Ben", Score: 10}, {Name: "Cat", Score: 26}}, finished.Players)

	session, err := s.app.SessionController.Get(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.SessionStatusFinished, session.Status)
	s.Len(session.RoundResults, 3)

	profiles := s.app.Store.Profiles(s.ctx)
	s.Len(profiles, 3)
	s.Equal(1, profiles[cat.ID].GamesWon)
	s.Equal(26, profiles[cat.ID].BestScore)

	// Step 3: Export and clear history
	var buf bytes.Buffer
	s.Require().NoError(s.app.ExportService.Write(&buf, s.app.ExportService.Stats(s.ctx)))
	var stats map[string]any
	s.Require().NoError(json.Unmarshal(buf.Bytes(), &stats))
	s.Equal(float64(3), stats["totalPlayers"])

	done, affected, err := s.app.AdminService.Run(s.ctx, admin.ActionClearHistory, admin.ConfirmFunc(
		func(ctx context.Context, description string) (bool, error) { return true, nil },
	))
	s.Require().NoError(err)
	s.True(done)
	s.Equal(1, affected)
	s.Empty(s.app.Store.History(s.ctx))

	s.Contains(s.app.Recorder.Types(), model.EventSessionFinished)
	s.Contains(s.app.Recorder.Types(), model.EventHistoryCleared)
}

// Factory tests

func TestNewMemoryApp(t *testing.T) {
	app, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()

	if _, ok := app.Sink.(*notify.LogSink); !ok {
		t.Fatalf("expected default LogSink, got %T", app.Sink)
	}
}

func TestNewFileApp(t *testing.T) {
	fs := afero.NewMemMapFs()
	app, err := New(Config{StorageType: StorageTypeFile, Fs: fs, DataDir: "/data", Logger: testutil.NopLogger()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	if _, err := app.RoundController.SaveDraft(ctx, SampleForm("Alice", 0)); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	// A second app over the same directory sees the draft
	reopened, err := New(Config{StorageType: StorageTypeFile, Fs: fs, DataDir: "/data"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := reopened.RoundController.Counts(ctx).Drafts; got != 1 {
		t.Fatalf("expected 1 draft after reopen, got %d", got)
	}
}

func TestNewRedisApp(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer app.Close()

	if _, err := app.SessionController.Create(context.Background(), "Ana"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !mr.Exists("truthlie:rounds-by-code") {
		t.Fatal("expected sessions blob in redis")
	}
}

func TestNewRedisAppRequiresConfig(t *testing.T) {
	if _, err := New(Config{StorageType: StorageTypeRedis}); err == nil {
		t.Fatal("expected error without RedisConfig")
	}
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	if _, err := New(Config{StorageType: "postgres"}); err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}
