package factory

import (
	"time"

	"github.com/mcoot/truthlie/internal/dependencies/mocks"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/round"
	"github.com/mcoot/truthlie/internal/storage/memory"
	"github.com/mcoot/truthlie/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Recorder   *notify.Recorder
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	backend := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	recorder := notify.NewRecorder()

	app := newWithDependencies(backend, mockClock, mockRandom, recorder, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Recorder:   recorder,
	}
}

// SampleForm returns a round form for the named employee with the lie at
// lieIndex (model.NoLie for none)
func SampleForm(employee string, lieIndex int) round.Form {
	return round.Form{
		EmployeeName: employee,
		Department:   "Engineering",
		Introducer:   "HR",
		Statements: [model.StatementCount]round.StatementInput{
			{Title: "I have run a marathon", Content: "Berlin, 2018"},
			{Title: "I was born on a boat"},
			{Title: "I can solve a Rubik's cube"},
		},
		Lie: lieIndex + 1,
	}
}
