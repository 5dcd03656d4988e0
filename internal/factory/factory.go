package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/mcoot/truthlie/internal/dependencies/clock"
	"github.com/mcoot/truthlie/internal/dependencies/random"
	"github.com/mcoot/truthlie/internal/notify"
	"github.com/mcoot/truthlie/internal/services/admin"
	"github.com/mcoot/truthlie/internal/services/export"
	"github.com/mcoot/truthlie/internal/services/round"
	"github.com/mcoot/truthlie/internal/services/scoring"
	"github.com/mcoot/truthlie/internal/services/session"
	"github.com/mcoot/truthlie/internal/services/voting"
	"github.com/mcoot/truthlie/internal/storage"
	filestorage "github.com/mcoot/truthlie/internal/storage/file"
	"github.com/mcoot/truthlie/internal/storage/memory"
	redisstorage "github.com/mcoot/truthlie/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// DefaultDataDir is where the file backend keeps its blobs
const DefaultDataDir = ".truthlie"

// App contains all wired application components
type App struct {
	// Storage
	Backend storage.Backend
	Store   *storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Sink   notify.Sink

	// Services
	ScoringService    *scoring.Service
	VotingEngine      *voting.Engine
	RoundController   *round.Controller
	SessionController *session.Controller
	AdminService      *admin.Service
	ExportService     *export.Service

	closer io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// Sink receives user-visible outcomes (optional)
	// If nil, events are logged through Logger
	Sink notify.Sink
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// DataDir is the directory used by the file backend
	// If empty, defaults to DefaultDataDir
	DataDir string
	// Fs is the filesystem used by the file backend (optional)
	// If nil, the OS filesystem is used
	Fs afero.Fs
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	sink := cfg.Sink
	if sink == nil {
		sink = notify.NewLogSink(logger)
	}

	// Create storage based on type
	var backend storage.Backend
	var closer io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		backend = memory.New()
	case StorageTypeFile:
		fs := cfg.Fs
		if fs == nil {
			fs = afero.NewOsFs()
		}
		dir := cfg.DataDir
		if dir == "" {
			dir = DefaultDataDir
		}
		fileStore, err := filestorage.New(fs, dir)
		if err != nil {
			return nil, err
		}
		backend = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		backend = redisStore
		closer = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	logger.Info("storage ready", slog.String("type", storageType))

	app := newWithDependencies(backend, clock.New(), random.New(), sink, logger)
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(backend storage.Backend, clk clock.Clock, rnd random.Random, sink notify.Sink, logger *slog.Logger) *App {
	store := storage.New(backend, logger)

	// Create services
	scoringService := scoring.New(store, clk, sink, logger)
	votingEngine := voting.New(store, clk, sink, logger)
	roundController := round.NewController(store, scoringService, clk, rnd, sink, logger)
	sessionController := session.NewController(store, votingEngine, scoringService, clk, rnd, sink, logger)
	adminService := admin.New(store, roundController, clk, rnd, sink, logger)
	exportService := export.New(store, clk, logger)

	return &App{
		Backend:           backend,
		Store:             store,
		Clock:             clk,
		Random:            rnd,
		Sink:              sink,
		ScoringService:    scoringService,
		VotingEngine:      votingEngine,
		RoundController:   roundController,
		SessionController: sessionController,
		AdminService:      adminService,
		ExportService:     exportService,
	}
}

// Close releases the storage connection, if any
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
