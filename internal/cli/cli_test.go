package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/truthlie/internal/factory"
	"github.com/mcoot/truthlie/internal/model"
)

type FormFlagsSuite struct {
	suite.Suite
	fs    afero.Fs
	cmd   *cobra.Command
	flags *formFlags
}

func TestFormFlagsSuite(t *testing.T) {
	suite.Run(t, new(FormFlagsSuite))
}

func (s *FormFlagsSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.cmd = &cobra.Command{Use: "test"}
	s.flags = &formFlags{}
	s.flags.register(s.cmd)
	s.flags.fs = s.fs
}

func (s *FormFlagsSuite) parse(args ...string) model.GameRound {
	s.Require().NoError(s.cmd.ParseFlags(args))
	form, err := s.flags.RoundForm(context.Background())
	s.Require().NoError(err)
	r := model.GameRound{
		EmployeeName: form.EmployeeName,
		Department:   form.Department,
		LieIndex:     form.LieIndex(),
		Picture:      form.Picture,
	}
	for i, st := range form.Statements {
		r.Statements[i] = model.Statement{ID: i + 1, Title: st.Title, Content: st.Content}
	}
	return r
}

func (s *FormFlagsSuite) TestFlagsFillForm() {
	r := s.parse("--name", "Ada", "--department", "Eng",
		"-s", "one", "-s", "two", "-s", "three", "--detail", "more", "--lie", "2")

	s.Equal("Ada", r.EmployeeName)
	s.Equal("Eng", r.Department)
	s.Equal("three", r.Statements[2].Title)
	s.Equal("more", r.Statements[0].Content)
	s.Equal(1, r.LieIndex)
}

func (s *FormFlagsSuite) TestNoLieByDefault() {
	r := s.parse("--name", "Ada")
	s.Equal(model.NoLie, r.LieIndex)

	s.SetupTest()
	r = s.parse("--name", "Ada", "--lie", "0")
	s.Equal(model.NoLie, r.LieIndex)
}

func (s *FormFlagsSuite) TestFlagsOverrideFormFile() {
	s.Require().NoError(afero.WriteFile(s.fs, "form.json", []byte(`{
		"employeeName": "Ada",
		"department": "Research",
		"statements": [{"title": "a"}, {"title": "b"}, {"title": "c"}],
		"lie": 1
	}`), 0o644))

	r := s.parse("--form", "form.json", "--department", "Ops", "-s", "x")

	s.Equal("Ada", r.EmployeeName)
	s.Equal("Ops", r.Department)
	s.Equal("x", r.Statements[0].Title)
	s.Equal("b", r.Statements[1].Title)
	s.Equal(0, r.LieIndex)
}

func (s *FormFlagsSuite) TestTooManyStatements() {
	s.Require().NoError(s.cmd.ParseFlags([]string{"-s", "1", "-s", "2", "-s", "3", "-s", "4"}))
	_, err := s.flags.RoundForm(context.Background())
	s.Error(err)
}

func (s *FormFlagsSuite) TestPictureMetadata() {
	s.Require().NoError(afero.WriteFile(s.fs, "/pics/ada.png", bytes.Repeat([]byte{1}, 2048), 0o644))
	modTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.fs.Chtimes("/pics/ada.png", modTime, modTime))

	r := s.parse("--name", "Ada", "--picture", "/pics/ada.png")

	s.Require().NotNil(r.Picture)
	s.Equal("ada.png", r.Picture.Name)
	s.Equal(int64(2048), r.Picture.Size)
	s.Equal("image/png", r.Picture.Type)
	s.Equal(modTime.UnixMilli(), r.Picture.LastModified)
}

func (s *FormFlagsSuite) TestMissingPicture() {
	s.Require().NoError(s.cmd.ParseFlags([]string{"--name", "Ada", "--picture", "/nope.png"}))
	_, err := s.flags.RoundForm(context.Background())
	s.Error(err)
}

func TestParseStatement(t *testing.T) {
	idx, err := parseStatement("3")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = parseStatement("three")
	assert.ErrorIs(t, err, model.ErrInvalidStatementIndex)
}

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		want      bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "full word", input: "YES\n", want: true},
		{name: "no", input: "n\n", want: false},
		{name: "empty", input: "", want: false},
		{name: "assume yes", input: "", assumeYes: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var prompt bytes.Buffer
			c := &promptConfirmer{in: strings.NewReader(tt.input), out: &prompt, assumeYes: tt.assumeYes}

			ok, err := c.Confirm(context.Background(), "Clear history")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if !tt.assumeYes {
				assert.Contains(t, prompt.String(), "Clear history [y/N]")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, c.validate())

	c.Output = "yaml"
	assert.Error(t, c.validate())

	c = DefaultConfig()
	c.Storage = factory.StorageTypeRedis
	c.RedisURL = ""
	assert.Error(t, c.validate())
}

func TestConfigFactoryConfig(t *testing.T) {
	c := DefaultConfig()
	c.Storage = factory.StorageTypeRedis
	c.RedisURL = "redis://cache:6379/1"
	c.RedisPrefix = "party:"

	fc := c.factoryConfig(nil)
	require.NotNil(t, fc.RedisConfig)
	assert.Equal(t, "redis://cache:6379/1", fc.RedisConfig.URL)
	assert.Equal(t, "party:", fc.RedisConfig.KeyPrefix)

	c.Storage = factory.StorageTypeMemory
	assert.Nil(t, c.factoryConfig(nil).RedisConfig)
}

func TestBindEnv(t *testing.T) {
	t.Setenv("TRUTHLIE_DATA_DIR", "/srv/truthlie")
	t.Setenv("TRUTHLIE_OUTPUT", "json")

	c := DefaultConfig()
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&c.DataDir, "data-dir", c.DataDir, "")
	cmd.Flags().StringVar(&c.Output, "output", c.Output, "")
	require.NoError(t, cmd.ParseFlags([]string{"--output", "text"}))

	bindEnv(cmd.Flags())

	assert.Equal(t, "/srv/truthlie", c.DataDir)
	// Explicit flags win over the environment
	assert.Equal(t, "text", c.Output)
}

func TestOutputNotifyUsesErrorStream(t *testing.T) {
	var stdout, stderr bytes.Buffer
	o := NewOutput("json", &stdout, &stderr)

	o.Notify(context.Background(), model.Event{Type: model.EventVoteCast, Title: "Vote Submitted!", Message: "Thanks"})

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), `"title":"Vote Submitted!"`)
}

func TestOutputPrintErrorIncludesKind(t *testing.T) {
	var stdout, stderr bytes.Buffer
	NewOutput("json", &stdout, &stderr).PrintError(model.ErrAlreadyVoted)
	assert.Contains(t, stderr.String(), `"kind":"duplicate_vote"`)

	stderr.Reset()
	NewOutput("text", &stdout, &stderr).PrintError(model.ErrAlreadyVoted)
	assert.True(t, strings.HasPrefix(stderr.String(), "Error: "))
}

func TestOutputTextRound(t *testing.T) {
	var stdout bytes.Buffer
	r := &model.GameRound{
		ID:           "round_1",
		EmployeeName: "Ada",
		Status:       model.RoundStatusActive,
		LieIndex:     1,
	}
	for i := range r.Statements {
		r.Statements[i] = model.Statement{ID: i + 1, Title: "s"}
	}

	NewOutput("text", &stdout, &stdout).Print(r)

	assert.Contains(t, stdout.String(), "Round: round_1")
	assert.Contains(t, stdout.String(), "2. s [lie]")
}

func TestOutputTextHistoryAndPlayers(t *testing.T) {
	var stdout bytes.Buffer
	o := NewOutput("text", &stdout, &stdout)

	o.Print([]model.GameHistoryEntry{})
	o.Print([]model.PlayerProfile{})
	assert.Equal(t, "No finished games\nNo players\n", stdout.String())

	stdout.Reset()
	o.Print([]model.GameHistoryEntry{{
		Code:        "ABC123",
		Winner:      "Ada",
		WinnerScore: 20,
		TotalRounds: 2,
		Players:     []model.HistoryPlayer{{Name: "Ada", Score: 20}, {Name: "Bob", Score: 16}},
		FinishedAt:  time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}})
	o.Print([]model.PlayerProfile{{Name: "Ada", GamesPlayed: 3, GamesWon: 2, TotalScore: 54, BestScore: 20}})

	assert.Contains(t, stdout.String(), "ABC123  Winner: Ada (20 pts)  Players: 2  Rounds: 2  2024-03-01")
	assert.Contains(t, stdout.String(), "Ada\n  Games: 3 | Won: 2\n  Total Score: 54 | Best: 20\n")
}
