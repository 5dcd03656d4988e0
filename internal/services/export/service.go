package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/afero"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/model"
	"github.com/mcoot/truthlie/internal/storage"
)

// DefaultCardSize is the side length in pixels of a join card
const DefaultCardSize = 320

// Service assembles export documents from the store
type Service struct {
	store  *storage.Store
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a new ExportService
func New(store *storage.Store, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Full exports sessions, rounds, profiles and history
func (s *Service) Full(ctx context.Context) *Document {
	now := s.clock.Now()
	return &Document{
		FileName: FullFileName(now),
		Body: FullExport{
			Sessions:   s.store.Sessions(ctx),
			Rounds:     roundViews(s.store.Rounds(ctx), ""),
			Players:    s.store.Profiles(ctx),
			History:    s.store.History(ctx),
			ExportDate: now,
		},
	}
}

// History exports finished sessions and finished rounds
func (s *Service) History(ctx context.Context) *Document {
	return &Document{
		FileName: HistoryFileName,
		Body: HistoryExport{
			History:    s.store.History(ctx),
			Rounds:     roundViews(s.store.Rounds(ctx), model.RoundStatusFinished),
			ExportDate: s.clock.Now(),
		},
	}
}

// Stats exports round counts by status and the number of player profiles
func (s *Service) Stats(ctx context.Context) *Document {
	counts := model.CountRounds(s.store.Rounds(ctx))
	return &Document{
		FileName: StatsFileName,
		Body: StatsExport{
			TotalGames:    counts.Total(),
			ActiveGames:   counts.Active,
			DraftGames:    counts.Drafts,
			FinishedGames: counts.Finished,
			TotalPlayers:  len(s.store.Profiles(ctx)),
			ExportDate:    s.clock.Now(),
		},
	}
}

// Drafts exports every draft round
func (s *Service) Drafts(ctx context.Context) *Document {
	return &Document{
		FileName: DraftsFileName,
		Body: DraftsExport{
			Drafts:     roundViews(s.store.Rounds(ctx), model.RoundStatusDraft),
			ExportDate: s.clock.Now(),
		},
	}
}

// Write renders the document as indented JSON
func (s *Service) Write(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Body)
}

// Save writes the document into dir under its suggested file name and
// returns the path written
func (s *Service) Save(fs afero.Fs, dir string, doc *Document) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, doc.FileName)
	f, err := fs.Create(path)
	if err != nil {
		return "", err
	}
	if err := s.Write(f, doc); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	s.logger.Info("export written", slog.String("path", path))
	return path, nil
}

// JoinCard renders a PNG QR code of the session's join code
func (s *Service) JoinCard(ctx context.Context, code model.SessionCode, size int) ([]byte, error) {
	code = code.Normalize()
	if _, ok := s.store.Sessions(ctx)[code]; !ok {
		return nil, model.ErrSessionNotFound
	}
	if size <= 0 {
		size = DefaultCardSize
	}
	png, err := qrcode.Encode(string(code), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr generation failed: %w", err)
	}
	return png, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	Full(ctx context.Context) *Document
	History(ctx context.Context) *Document
	Stats(ctx context.Context) *Document
	Drafts(ctx context.Context) *Document
	Write(w io.Writer, doc *Document) error
	Save(fs afero.Fs, dir string, doc *Document) (string, error)
	JoinCard(ctx context.Context, code model.SessionCode, size int) ([]byte, error)
}

var _ ServiceInterface = (*Service)(nil)
