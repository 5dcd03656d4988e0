package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/mcoot/truthlie/internal/model"
)

// Keys of the persisted blobs
const (
	KeySessions = "rounds-by-code"
	KeyProfiles = "player-profiles"
	KeyHistory  = "game-history"
	KeyRounds   = "game-rounds"
	KeyVoterID  = "voter-id"
)

// Store exposes typed access to the persisted collections.
// Nothing is written implicitly: callers save after each logical transaction.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a Store over the given backend
func New(backend Backend, logger *slog.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger,
	}
}

// Backend returns the underlying key-value backend
func (s *Store) Backend() Backend {
	return s.backend
}

// Load reads and decodes the value stored under key.
// A missing, unreadable or corrupt value yields def.
func Load[T any](ctx context.Context, s *Store, key string, def T) T {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.Warn("failed to read key, using default",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn("corrupt value, using default",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return def
	}
	return value
}

// Save encodes value and stores it under key
func Save[T any](ctx context.Context, s *Store, key string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.logger.Error("failed to save key",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// Write is one blob of a multi-key save
type Write struct {
	Key   string
	Value any
}

// prior is a blob's content before SaveAll overwrote it
type prior struct {
	key     string
	data    []byte
	existed bool
}

// SaveAll stores every write in order. If any write fails, the blobs already
// written are put back as they were, so the store is left unchanged.
func (s *Store) SaveAll(ctx context.Context, writes ...Write) error {
	done := make([]prior, 0, len(writes))
	for _, w := range writes {
		data, err := json.Marshal(w.Value)
		if err != nil {
			s.rollback(ctx, done)
			return err
		}
		old, err := s.backend.Get(ctx, w.Key)
		existed := err == nil
		if !existed && !errors.Is(err, ErrKeyNotFound) {
			s.rollback(ctx, done)
			return err
		}
		if err := s.backend.Set(ctx, w.Key, data); err != nil {
			s.logger.Error("failed to save key, rolling back",
				slog.String("key", w.Key),
				slog.Int("written", len(done)),
				slog.String("error", err.Error()),
			)
			s.rollback(ctx, done)
			return err
		}
		done = append(done, prior{key: w.Key, data: old, existed: existed})
	}
	return nil
}

func (s *Store) rollback(ctx context.Context, done []prior) {
	for i := len(done) - 1; i >= 0; i-- {
		p := done[i]
		var err error
		if p.existed {
			err = s.backend.Set(ctx, p.key, p.data)
		} else {
			err = s.backend.Delete(ctx, p.key)
		}
		if err != nil {
			s.logger.Error("failed to restore key",
				slog.String("key", p.key),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Rounds returns all single-subject rounds, in creation order
func (s *Store) Rounds(ctx context.Context) []model.GameRound {
	rounds := Load(ctx, s, KeyRounds, []model.GameRound{})
	if rounds == nil {
		return []model.GameRound{}
	}
	return rounds
}

// SaveRounds replaces the stored rounds
func (s *Store) SaveRounds(ctx context.Context, rounds []model.GameRound) error {
	return Save(ctx, s, KeyRounds, rounds)
}

// Sessions returns all sessions keyed by join code
func (s *Store) Sessions(ctx context.Context) map[model.SessionCode]*model.Session {
	sessions := Load(ctx, s, KeySessions, map[model.SessionCode]*model.Session{})
	if sessions == nil {
		return map[model.SessionCode]*model.Session{}
	}
	return sessions
}

// SaveSessions replaces the stored sessions
func (s *Store) SaveSessions(ctx context.Context, sessions map[model.SessionCode]*model.Session) error {
	return Save(ctx, s, KeySessions, sessions)
}

// Profiles returns all player profiles keyed by player ID
func (s *Store) Profiles(ctx context.Context) map[model.PlayerID]*model.PlayerProfile {
	profiles := Load(ctx, s, KeyProfiles, map[model.PlayerID]*model.PlayerProfile{})
	if profiles == nil {
		return map[model.PlayerID]*model.PlayerProfile{}
	}
	for id, p := range profiles {
		if p == nil {
			s.logger.Warn("dropping null profile", slog.String("player_id", string(id)))
			delete(profiles, id)
		}
	}
	return profiles
}

// SaveProfiles replaces the stored profiles
func (s *Store) SaveProfiles(ctx context.Context, profiles map[model.PlayerID]*model.PlayerProfile) error {
	return Save(ctx, s, KeyProfiles, profiles)
}

// History returns finished-session summaries, newest first
func (s *Store) History(ctx context.Context) []model.GameHistoryEntry {
	history := Load(ctx, s, KeyHistory, []model.GameHistoryEntry{})
	if history == nil {
		return []model.GameHistoryEntry{}
	}
	return history
}

// SaveHistory replaces the stored history
func (s *Store) SaveHistory(ctx context.Context, history []model.GameHistoryEntry) error {
	return Save(ctx, s, KeyHistory, history)
}

// VoterID returns this device's voter identifier, or "" if none has been issued
func (s *Store) VoterID(ctx context.Context) model.PlayerID {
	return Load(ctx, s, KeyVoterID, model.PlayerID(""))
}

// SaveVoterID stores this device's voter identifier
func (s *Store) SaveVoterID(ctx context.Context, id model.PlayerID) error {
	return Save(ctx, s, KeyVoterID, id)
}
