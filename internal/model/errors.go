package model

import "errors"

// Kind classifies an error for the caller at the boundary
type Kind string

const (
	KindValidation    Kind = "validation"     // Missing or invalid mandatory field
	KindDuplicateVote Kind = "duplicate_vote" // Voter already voted on this subject
	KindTurn          Kind = "turn"           // Action attempted out of turn
	KindCapacity      Kind = "capacity"       // Session full
	KindInvalidState  Kind = "invalid_state"  // Action attempted in the wrong lifecycle state
	KindNotFound      Kind = "not_found"      // Referenced entity absent
)

// Error is a sentinel error tagged with its Kind
type Error struct {
	kind Kind
	msg  string
}

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.msg
}

// Kind returns the error's classification
func (e *Error) Kind() Kind {
	return e.kind
}

// KindOf returns the Kind of the first classified error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return ""
}

// Common errors used across the application
var (
	// Validation errors
	ErrMissingEmployeeName   = newError(KindValidation, "employee name is required")
	ErrIncompleteRound       = newError(KindValidation, "round is missing mandatory fields")
	ErrInvalidStatementIndex = newError(KindValidation, "statement index must be 0, 1 or 2")
	ErrEmptyStatement        = newError(KindValidation, "all three statements are required")
	ErrEmptyPlayerName       = newError(KindValidation, "player name is required")
	ErrEmptyVoterID          = newError(KindValidation, "voter id is required")
	ErrPictureTooLarge       = newError(KindValidation, "picture exceeds 5MB")
	ErrUnknownAction         = newError(KindValidation, "unknown action")

	// Vote errors
	ErrAlreadyVoted = newError(KindDuplicateVote, "voter has already voted")

	// Turn errors
	ErrNotPlayerTurn        = newError(KindTurn, "not this player's turn")
	ErrTurnHolderCannotVote = newError(KindTurn, "turn-holder cannot vote on their own statements")

	// Capacity errors
	ErrSessionFull = newError(KindCapacity, "session is full")

	// State errors
	ErrRoundNotDraft       = newError(KindInvalidState, "round is not a draft")
	ErrRoundNotActive      = newError(KindInvalidState, "round is not active")
	ErrSessionNotWaiting   = newError(KindInvalidState, "session has already started or finished")
	ErrSessionNotActive    = newError(KindInvalidState, "session is not accepting statements")
	ErrSessionNotVoting    = newError(KindInvalidState, "session is not voting")
	ErrNotHost             = newError(KindInvalidState, "player is not the host")
	ErrInsufficientPlayers = newError(KindInvalidState, "insufficient players to start session")

	// Lookup errors
	ErrRoundNotFound   = newError(KindNotFound, "round not found")
	ErrSessionNotFound = newError(KindNotFound, "session not found")
	ErrPlayerNotFound  = newError(KindNotFound, "player not found")
	ErrPlanNotFound    = newError(KindNotFound, "plan not found or expired")
)
