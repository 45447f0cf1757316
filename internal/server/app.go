// Package server assembles the check-in service from configuration and
// serves it over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/wellness-checkin/internal/ai"
	"github.com/jimdaga/wellness-checkin/internal/areas"
	"github.com/jimdaga/wellness-checkin/internal/cache"
	"github.com/jimdaga/wellness-checkin/internal/checkins"
	"github.com/jimdaga/wellness-checkin/internal/config"
	"github.com/jimdaga/wellness-checkin/internal/database"
	"github.com/jimdaga/wellness-checkin/internal/directory"
	"github.com/jimdaga/wellness-checkin/internal/messages"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
	"github.com/jimdaga/wellness-checkin/internal/transcribe"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

// App holds every collaborator the HTTP layer needs
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Store     rowstore.Store
	Directory *directory.Directory
	Areas     *areas.Registry
	Checkins  *checkins.Service
	Messages  *messages.Thread

	closers []func() error
}

// NewApp builds the application from cfg
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.Store = store
	app.closers = append(app.closers, closeStore)

	if err := database.EnsureTables(ctx, store, logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to prepare tables: %w", err)
	}
	if cfg.StoreBackend == config.BackendMemory && !cfg.IsProduction() {
		// nothing persists, so the dev accounts are recreated on every start
		if err := database.SeedDevData(ctx, store, logger); err != nil {
			app.Close()
			return nil, err
		}
	}

	tableCache, err := app.openCache()
	if err != nil {
		app.Close()
		return nil, err
	}

	gen, err := NewGenerator(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	aiService, err := ai.NewService(gen, cfg.SentimentScaleMax, logger)
	if err != nil {
		app.Close()
		return nil, err
	}

	registry, err := areas.LoadFile(cfg.AreasFile)
	if err != nil {
		app.Close()
		return nil, err
	}

	stubTranscriber := cfg.TranscribeURL == ""
	if stubTranscriber {
		logger.Warn("TRANSCRIBE_URL not set, transcription runs in stub mode")
	}
	transcriber := transcribe.NewClient(cfg.TranscribeURL, cfg.TranscribeToken, stubTranscriber, logger)

	app.Areas = registry
	app.Directory = directory.New(store, tableCache, logger)
	app.Checkins = checkins.NewService(checkins.NewManager(store, cfg.HistoryLimit, logger), aiService, registry, transcriber, logger)
	app.Messages = messages.NewThread(store, logger)

	logger.Info("Application ready",
		"store", cfg.StoreBackend,
		"ai_provider", cfg.AIProvider,
		"areas", len(registry.List()),
	)
	return app, nil
}

// Close releases database and cache connections
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// OpenStore opens the row store selected by cfg.StoreBackend. The returned
// close function is never nil.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (rowstore.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StoreBackend {
	case config.BackendSheets:
		var opts []option.ClientOption
		if cfg.SheetsCredentials != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.SheetsCredentials))
		}
		store, err := rowstore.NewSheets(ctx, cfg.SpreadsheetID, opts...)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil

	case config.BackendDatabase:
		db, err := OpenDatabase(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return rowstore.NewDatabase(db), func() error { return database.Close(db) }, nil

	default:
		return rowstore.NewMemory(rowstore.TableUsers, rowstore.TableCheckins, rowstore.TableMessages), noop, nil
	}
}

func (a *App) openCache() (cache.TableCache, error) {
	cfg := a.Config
	if cfg.UserCacheTTL <= 0 {
		return cache.Nop{}, nil
	}
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.UserCacheTTL), nil
	}

	rc, err := cache.NewRedis(cfg.RedisURL, cfg.UserCacheTTL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, rc.Close)
	return rc, nil
}

// ErrSeedInProduction stops development accounts from reaching real data
var ErrSeedInProduction = errors.New("refusing to create development accounts in production")

// Migrate opens the configured store, which applies pending database
// migrations, and writes missing table headers
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return database.EnsureTables(ctx, store, logger)
}

// Seed writes table headers and the development accounts to the configured
// store. In production it needs force.
func Seed(ctx context.Context, cfg *config.Config, logger *slog.Logger, force bool) error {
	if cfg.IsProduction() && !force {
		return ErrSeedInProduction
	}

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return database.SeedDevData(ctx, store, logger)
}

// OpenDatabase connects and applies pending migrations
func OpenDatabase(databaseURL string, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Init(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.RunMigrations(db, logger); err != nil {
		database.Close(db)
		return nil, err
	}
	return db, nil
}

// NewGenerator picks the model client for cfg.AIProvider
func NewGenerator(ctx context.Context, cfg *config.Config) (ai.Generator, error) {
	switch cfg.AIProvider {
	case config.ProviderGemini:
		return ai.NewGemini(ctx, cfg.GoogleAPIKey, cfg.GeminiModel)
	case config.ProviderOpenAI:
		return ai.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	case config.ProviderStub:
		return ai.Stub{}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}
