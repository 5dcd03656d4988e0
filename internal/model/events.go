package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Round events
	EventDraftSaved    EventType = "draft_saved"
	EventDraftEdited   EventType = "draft_edited"
	EventRoundActive   EventType = "round_activated"
	EventRoundFinished EventType = "round_finished"
	EventRoundsEnded   EventType = "rounds_ended"
	EventVoteCast      EventType = "vote_cast"

	// Session events
	EventSessionCreated      EventType = "session_created"
	EventPlayerJoined        EventType = "player_joined"
	EventSessionStarted      EventType = "session_started"
	EventStatementsSubmitted EventType = "statements_submitted"
	EventVotingStarted       EventType = "voting_started"
	EventTurnScored          EventType = "turn_scored"
	EventSessionFinished     EventType = "session_finished"

	// Admin events
	EventHistoryCleared EventType = "history_cleared"
)

// Event is a user-visible outcome handed to the notification sink
type Event struct {
	Type        EventType
	Timestamp   time.Time
	Title       string
	Message     string
	RoundID     RoundID     // Empty for session events
	SessionCode SessionCode // Empty for round events
	PlayerID    PlayerID    // The player who triggered or is affected
}
