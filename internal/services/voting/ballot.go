package voting

import (
	"github.com/mcoot/truthlie/internal/model"
)

// Ballot is a subject that collects at most one vote per voter
type Ballot interface {
	// Votes returns the votes recorded for the subject
	Votes() []model.Vote

	// Record stores an accepted vote
	Record(vote model.Vote)

	// Complete returns true once every expected voter has voted
	Complete() bool

	// CanVote returns an error if the voter may not vote on this subject
	CanVote(voterID model.PlayerID) error
}

// RoundBallot collects anonymous votes on a single-subject round.
// It has no expected-voter set so it is never complete.
type RoundBallot struct {
	round *model.GameRound
}

// NewRoundBallot wraps a round for voting
func NewRoundBallot(round *model.GameRound) *RoundBallot {
	return &RoundBallot{round: round}
}

func (b *RoundBallot) Votes() []model.Vote {
	return b.round.Votes
}

func (b *RoundBallot) Record(vote model.Vote) {
	b.round.Votes = append(b.round.Votes, vote)
}

func (b *RoundBallot) Complete() bool {
	return false
}

func (b *RoundBallot) CanVote(voterID model.PlayerID) error {
	if b.round.FindVote(voterID) != nil {
		return model.ErrAlreadyVoted
	}
	return nil
}

// TurnBallot collects votes on the current turn of a session. Votes are
// kept on each voter's player record, scoped by the session round counter.
type TurnBallot struct {
	session *model.Session
}

// NewTurnBallot wraps the session's current turn for voting
func NewTurnBallot(session *model.Session) *TurnBallot {
	return &TurnBallot{session: session}
}

// Votes returns this turn's votes in player order
func (b *TurnBallot) Votes() []model.Vote {
	votes := []model.Vote{}
	for i := range b.session.Players {
		if v := b.session.Players[i].VoteForRound(b.session.CurrentRound); v != nil {
			votes = append(votes, *v)
		}
	}
	return votes
}

func (b *TurnBallot) Record(vote model.Vote) {
	vote.Round = b.session.CurrentRound
	player := b.session.GetPlayer(vote.VoterID)
	if player == nil {
		return
	}
	player.Votes = append(player.Votes, vote)
}

// Complete returns true when every player other than the turn-holder has voted
func (b *TurnBallot) Complete() bool {
	for i := range b.session.Players {
		if i == b.session.CurrentPlayerIndex {
			continue
		}
		if b.session.Players[i].VoteForRound(b.session.CurrentRound) == nil {
			return false
		}
	}
	return true
}

func (b *TurnBallot) CanVote(voterID model.PlayerID) error {
	player := b.session.GetPlayer(voterID)
	if player == nil {
		return model.ErrPlayerNotFound
	}
	if holder := b.session.CurrentPlayer(); holder != nil && holder.ID == voterID {
		return model.ErrTurnHolderCannotVote
	}
	if player.VoteForRound(b.session.CurrentRound) != nil {
		return model.ErrAlreadyVoted
	}
	return nil
}

var (
	_ Ballot = (*RoundBallot)(nil)
	_ Ballot = (*TurnBallot)(nil)
)
