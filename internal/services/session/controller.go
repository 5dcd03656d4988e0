package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/dependencies/random"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/scoring"
	"github.com/mcoot/truthlie/internal/services/voting"
	"github.com/mcoot/truthlie/internal/storage"
)

const (
	// CodeLength is the length of generated session codes
	CodeLength = 6
	// CodeAlphabet is the characters used in session codes
	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds the search for an unused code
	maxCodeAttempts = 32

	SessionIDPrefix = "game_"
	PlayerIDPrefix  = "player_"
)

// VoteOutcome reports what a vote did to the session
type VoteOutcome struct {
	Session      *model.Session          `json:"game"`
	TurnComplete bool                    `json:"turnComplete"`
	Result       *model.RoundResult      `json:"result,omitempty"`  // Set when the vote closed the turn
	History      *model.GameHistoryEntry `json:"history,omitempty"` // Set when the vote finished the session
}

// Controller sequences turns across the players of a session
type Controller struct {
	store   *storage.Store
	voting  *voting.Engine
	scoring *scoring.Service
	clock   clock.Clock
	random  random.Random
	sink    notify.Sink
	logger  *slog.Logger
}

// NewController creates a new SessionController
func NewController(
	store *storage.Store,
	votingEngine *voting.Engine,
	scoringService *scoring.Service,
	clock clock.Clock,
	random random.Random,
	sink notify.Sink,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		store:   store,
		voting:  votingEngine,
		scoring: scoringService,
		clock:   clock,
		random:  random,
		sink:    sink,
		logger:  logger,
	}
}

func (c *Controller) load(ctx context.Context, code model.SessionCode) (map[model.SessionCode]*model.Session, *model.Session, error) {
	sessions := c.store.Sessions(ctx)
	session, ok := sessions[code]
	if !ok || session == nil {
		return nil, nil, model.ErrSessionNotFound
	}
	return sessions, session, nil
}

func (c *Controller) newPlayer(name string, isHost bool) model.SessionPlayer {
	return model.SessionPlayer{
		ID:     model.PlayerID(PlayerIDPrefix + c.random.UUID()),
		Name:   name,
		IsHost: isHost,
		Votes:  []model.Vote{},
	}
}

// saveWithProfile persists the sessions together with a lifetime profile for
// the new player. Either both are written or neither.
func (c *Controller) saveWithProfile(ctx context.Context, sessions map[model.SessionCode]*model.Session, player model.SessionPlayer) error {
	profiles := c.store.Profiles(ctx)
	if profiles[player.ID] == nil {
		profiles[player.ID] = model.NewPlayerProfile(player.ID, player.Name, c.clock.Now())
	}
	return c.store.SaveAll(ctx,
		storage.Write{Key: storage.KeySessions, Value: sessions},
		storage.Write{Key: storage.KeyProfiles, Value: profiles},
	)
}

// Create opens a new session with the named player as host
func (c *Controller) Create(ctx context.Context, hostName string) (*model.Session, error) {
	hostName = strings.TrimSpace(hostName)
	if hostName == "" {
		return nil, model.ErrEmptyPlayerName
	}

	sessions := c.store.Sessions(ctx)

	// Generate unique session code
	var code model.SessionCode
	for attempt := 0; ; attempt++ {
		if attempt == maxCodeAttempts {
			return nil, fmt.Errorf("no unused session code after %d attempts", maxCodeAttempts)
		}
		code = model.SessionCode(c.random.String(CodeLength, CodeAlphabet))
		if _, exists := sessions[code]; code != "" && !exists {
			break
		}
	}

	host := c.newPlayer(hostName, true)
	session := &model.Session{
		ID:           model.SessionID(SessionIDPrefix + c.random.UUID()),
		Code:         code,
		Status:       model.SessionStatusWaiting,
		HostID:       host.ID,
		Players:      []model.SessionPlayer{host},
		RoundResults: []model.RoundResult{},
		CreatedAt:    c.clock.Now(),
	}
	sessions[code] = session

	if err := c.saveWithProfile(ctx, sessions, host); err != nil {
		return nil, err
	}

	c.logger.Info("session created",
		slog.String("session_code", string(code)),
		slog.String("host_id", string(host.ID)),
	)
	c.sink.Notify(ctx, model.Event{
		Type:        model.EventSessionCreated,
		Timestamp:   c.clock.Now(),
		Title:       "Game Created!",
		Message:     fmt.Sprintf("Share code %s with other players to join.", code),
		SessionCode: code,
		PlayerID:    host.ID,
	})
	return session, nil
}

// Join adds a named player to a waiting session
func (c *Controller) Join(ctx context.Context, code model.SessionCode, name string) (*model.SessionPlayer, error) {
	code = code.Normalize()
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrEmptyPlayerName
	}

	sessions, session, err := c.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusWaiting {
		return nil, model.ErrSessionNotWaiting
	}
	if session.IsFull() {
		return nil, fmt.Errorf("%w: %d players", model.ErrSessionFull, len(session.Players))
	}

	player := c.newPlayer(name, false)
	session.Players = append(session.Players, player)

	if err := c.saveWithProfile(ctx, sessions, player); err != nil {
		return nil, err
	}

	c.logger.Info("player joined session",
		slog.String("session_code", string(code)),
		slog.String("player_id", string(player.ID)),
		slog.Int("player_count", len(session.Players)),
	)
	c.sink.Notify(ctx, model.Event{
		Type:        model.EventPlayerJoined,
		Timestamp:   c.clock.Now(),
		Title:       "Joined Game!",
		Message:     fmt.Sprintf("%s joined game %s.", name, code),
		SessionCode: code,
		PlayerID:    player.ID,
	})
	return &player, nil
}

// Start begins play. Only the host may start, and at least two players are needed.
func (c *Controller) Start(ctx context.Context, code model.SessionCode, playerID model.PlayerID) (*model.Session, error) {
	code = code.Normalize()
	sessions, session, err := c.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusWaiting {
		return nil, model.ErrSessionNotWaiting
	}
	player := session.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if !player.IsHost {
		return nil, model.ErrNotHost
	}
	if len(session.Players) < model.MinSessionPlayers {
		return nil, fmt.Errorf("%w: need %d, have %d", model.ErrInsufficientPlayers, model.MinSessionPlayers, len(session.Players))
	}

	now := c.clock.Now()
	session.Status = model.SessionStatusActive
	session.MaxRounds = len(session.Players)
	session.CurrentRound = 0
	session.StartedAt = &now
	session.SetTurn(0)

	if err := c.store.SaveSessions(ctx, sessions); err != nil {
		return nil, err
	}

	c.logger.Info("session started",
		slog.String("session_code", string(code)),
		slog.Int("max_rounds", session.MaxRounds),
	)
	c.sink.Notify(ctx, model.Event{
		Type:        model.EventSessionStarted,
		Timestamp:   now,
		Title:       "Game Started!",
		Message:     fmt.Sprintf("%s goes first.", session.Players[0].Name),
		SessionCode: code,
		PlayerID:    session.Players[0].ID,
	})
	return session, nil
}

// SubmitStatements records the turn-holder's three statements. The lie
// position is drawn at random; the submitter does not choose it.
func (c *Controller) SubmitStatements(ctx context.Context, code model.SessionCode, playerID model.PlayerID, texts [model.StatementCount]string) (*model.Session, error) {
	code = code.Normalize()
	sessions, session, err := c.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusActive {
		return nil, model.ErrSessionNotActive
	}
	player := session.GetPlayer(playerID)
	if player == nil {
		return nil, model.ErrPlayerNotFound
	}
	if holder := session.CurrentPlayer(); holder == nil || holder.ID != playerID {
		return nil, model.ErrNotPlayerTurn
	}
	for i := range texts {
		texts[i] = strings.TrimSpace(texts[i])
		if texts[i] == "" {
			return nil, fmt.Errorf("%w: statement %d is empty", model.ErrEmptyStatement, i+1)
		}
	}

	player.Statements = &model.SubmittedStatements{
		Texts:     texts,
		LieIndex:  c.random.Intn(model.StatementCount),
		Submitted: true,
	}

	last := session.CurrentPlayerIndex == len(session.Players)-1
	if last {
		session.Status = model.SessionStatusVoting
	} else {
		session.SetTurn(session.CurrentPlayerIndex + 1)
	}

	if err := c.store.SaveSessions(ctx, sessions); err != nil {
		return nil, err
	}

	c.logger.Info("statements submitted",
		slog.String("session_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Int("round", session.CurrentRound),
	)
	now := c.clock.Now()
	c.sink.Notify(ctx, model.Event{
		Type:        model.EventStatementsSubmitted,
		Timestamp:   now,
		Title:       "Statements Submitted!",
		Message:     "Waiting for other players...",
		SessionCode: code,
		PlayerID:    playerID,
	})
	if last {
		c.sink.Notify(ctx, model.Event{
			Type:        model.EventVotingStarted,
			Timestamp:   now,
			Title:       "Voting Started",
			Message:     fmt.Sprintf("Which of %s's statements is the lie?", player.Name),
			SessionCode: code,
			PlayerID:    playerID,
		})
	}
	return session, nil
}

// SubmitVote casts a vote on the turn-holder's statements. The vote that
// closes the turn scores it, then either starts the next round or finishes
// the session.
func (c *Controller) SubmitVote(ctx context.Context, code model.SessionCode, playerID model.PlayerID, statementIndex int) (*VoteOutcome, error) {
	code = code.Normalize()
	sessions, session, err := c.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.Status != model.SessionStatusVoting {
		return nil, model.ErrSessionNotVoting
	}

	ballot := voting.NewTurnBallot(session)
	complete, err := c.voting.Cast(ballot, playerID, statementIndex)
	if err != nil {
		return nil, err
	}

	outcome := &VoteOutcome{Session: session, TurnComplete: complete}
	if complete {
		result, err := c.scoring.ApplyTurn(session, ballot.Votes())
		if err != nil {
			return nil, err
		}
		outcome.Result = result
		session.CurrentRound++

		if session.IsComplete() {
			// Session, profiles and history: all or nothing
			entry, err := c.scoring.FinishSession(ctx, session, storage.Write{Key: storage.KeySessions, Value: sessions})
			if err != nil {
				return nil, err
			}
			outcome.History = entry
		} else {
			c.nextRound(session)
		}
	}

	if outcome.History == nil {
		if err := c.store.SaveSessions(ctx, sessions); err != nil {
			return nil, err
		}
	}

	c.logger.Info("session vote cast",
		slog.String("session_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Bool("turn_complete", complete),
	)
	c.sink.Notify(ctx, model.Event{
		Type:        model.EventVoteCast,
		Timestamp:   c.clock.Now(),
		Title:       "Vote Submitted!",
		Message:     "Waiting for other players...",
		SessionCode: code,
		PlayerID:    playerID,
	})
	if outcome.Result != nil {
		c.sink.Notify(ctx, model.Event{
			Type:      model.EventTurnScored,
			Timestamp: c.clock.Now(),
			Title:     "Round Complete!",
			Message: fmt.Sprintf("The lie was statement %d. %d of %d players found it; %s earned a %d point bonus.",
				outcome.Result.LieIndex+1, outcome.Result.CorrectVotes, outcome.Result.TotalVotes,
				outcome.Result.PlayerName, outcome.Result.DifficultyBonus),
			SessionCode: code,
			PlayerID:    outcome.Result.PlayerID,
		})
	}
	return outcome, nil
}

// nextRound clears submitted statements and hands the turn back to the first player
func (c *Controller) nextRound(session *model.Session) {
	for i := range session.Players {
		session.Players[i].Statements = nil
	}
	session.SetTurn(0)
	session.Status = model.SessionStatusActive
}

// Get retrieves a session by code
func (c *Controller) Get(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	code = code.Normalize()
	_, session, err := c.load(ctx, code)
	return session, err
}

// ListOpen returns sessions still accepting players, oldest first
func (c *Controller) ListOpen(ctx context.Context) []*model.Session {
	open := []*model.Session{}
	for _, session := range c.store.Sessions(ctx) {
		if session != nil && session.Status == model.SessionStatusWaiting {
			open = append(open, session)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		if !open[i].CreatedAt.Equal(open[j].CreatedAt) {
			return open[i].CreatedAt.Before(open[j].CreatedAt)
		}
		return open[i].Code < open[j].Code
	})
	return open
}

// History returns up to limit finished-session summaries, newest first.
// A limit of zero or less returns all of them.
func (c *Controller) History(ctx context.Context, limit int) []model.GameHistoryEntry {
	history := c.store.History(ctx)
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

// Players returns every lifetime profile, highest total score first
func (c *Controller) Players(ctx context.Context) []model.PlayerProfile {
	players := []model.PlayerProfile{}
	for _, p := range c.store.Profiles(ctx) {
		players = append(players, *p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].TotalScore != players[j].TotalScore {
			return players[i].TotalScore > players[j].TotalScore
		}
		if players[i].Name != players[j].Name {
			return players[i].Name < players[j].Name
		}
		return players[i].ID < players[j].ID
	})
	return players
}

// Interface for dependency injection
type ControllerInterface interface {
	Create(ctx context.Context, hostName string) (*model.Session, error)
	Join(ctx context.Context, code model.SessionCode, name string) (*model.SessionPlayer, error)
	Start(ctx context.Context, code model.SessionCode, playerID model.PlayerID) (*model.Session, error)
	SubmitStatements(ctx context.Context, code model.SessionCode, playerID model.PlayerID, texts [model.StatementCount]string) (*model.Session, error)
	SubmitVote(ctx context.Context, code model.SessionCode, playerID model.PlayerID, statementIndex int) (*VoteOutcome, error)
	Get(ctx context.Context, code model.SessionCode) (*model.Session, error)
	ListOpen(ctx context.Context) []*model.Session
	History(ctx context.Context, limit int) []model.GameHistoryEntry
	Players(ctx context.Context) []model.PlayerProfile
}

var _ ControllerInterface = (*Controller)(nil)
