// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/mrytune/internal/adapter/blobstore/disk"
	blobmemory "github.com/tejashwikalptaru/mrytune/internal/adapter/blobstore/memory"
	blobredis "github.com/tejashwikalptaru/mrytune/internal/adapter/blobstore/redis"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/fetch"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/repository/memory"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/transport/beep"
	"github.com/tejashwikalptaru/mrytune/internal/adapter/transport/mock"
	"github.com/tejashwikalptaru/mrytune/internal/logger"
	"github.com/tejashwikalptaru/mrytune/internal/ports"
	"github.com/tejashwikalptaru/mrytune/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the command line
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus  *eventbus.SyncEventBus
	store     ports.BlobStore
	fetcher   ports.Fetcher
	transport ports.Transport

	// Repositories
	likedRepo       ports.LikedRepository
	playlistRepo    ports.PlaylistRepository
	preferencesRepo ports.PreferencesRepository
	catalogRepo     ports.CatalogRepository

	// Services
	sessionService    *service.SessionService
	playlistService   *service.PlaylistService
	libraryService    *service.LibraryService
	preferenceService *service.PreferenceService

	shutdown bool
}

// NewApplication creates a new application with all dependencies wired.
func NewApplication(ctx context.Context, config Config) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	app := &Application{}

	// Step 1: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: config.LogFormat,
	})
	app.logger.Debug("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("blob_backend", config.BlobBackend),
		slog.String("transport", config.Transport))

	// Step 2: Create Fyne application (preference storage only)
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	busLogger := app.logger.With(slog.String("component", "eventbus"))
	app.eventBus.SetLogger(busLogger)
	if busLogger.Enabled(ctx, slog.LevelDebug) {
		app.eventBus.SubscribeAll(eventbus.Tracer(busLogger))
	}

	// Step 4: Create the fetcher and the blob store
	app.fetcher = fetch.New(fetch.Config{
		Timeout: config.FetchTimeout,
		Retries: config.FetchRetries,
	}, app.logger.With(slog.String("component", "fetch")))

	store, err := openBlobStore(ctx, config, app.logger.With(slog.String("component", "blobstore")))
	if err != nil {
		_ = app.eventBus.Close()
		return nil, fmt.Errorf("failed to open blob store: %w", err)
	}
	app.store = store

	// Step 5: Create the transport
	switch config.Transport {
	case TransportMock:
		t := mock.NewTransport(app.eventBus)
		t.SetLogger(app.logger.With(slog.String("transport", "mock")))
		app.transport = t
	default:
		app.transport = beep.NewTransport(app.eventBus, app.fetcher,
			app.logger.With(slog.String("transport", "beep")))
	}

	// Step 6: Create repositories
	prefs := app.fyneApp.Preferences()
	app.likedRepo = memory.NewLikedRepository(prefs)
	app.playlistRepo = memory.NewPlaylistRepository(prefs, app.logger)
	app.preferencesRepo = memory.NewPreferencesRepository(prefs)
	app.catalogRepo = memory.NewCatalogRepository(prefs)

	// Step 7: Create services (with dependency injection)
	app.sessionService = service.NewSessionService(
		app.logger.With(slog.String("service", "session")),
		app.eventBus,
		app.store,
		app.transport,
		app.fetcher,
		app.likedRepo,
		app.preferencesRepo,
		app.catalogRepo,
	)

	app.playlistService = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		app.sessionService,
		app.playlistRepo,
		app.eventBus,
	)

	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.fetcher,
		app.eventBus,
	)

	app.preferenceService = service.NewPreferenceService(
		app.logger.With(slog.String("service", "preference")),
		app.preferencesRepo,
		app.likedRepo,
		app.catalogRepo,
	)

	app.logger.Debug("all services initialized")
	return app, nil
}

func openBlobStore(ctx context.Context, config Config, log *slog.Logger) (ports.BlobStore, error) {
	switch config.BlobBackend {
	case BlobMemory:
		return blobmemory.New(), nil
	case BlobRedis:
		return blobredis.Open(ctx, config.RedisURL, log)
	default:
		return disk.New(config.BlobDir, log)
	}
}

// Session returns the playback session.
func (a *Application) Session() *service.SessionService { return a.sessionService }

// Playlists returns the playlist service.
func (a *Application) Playlists() *service.PlaylistService { return a.playlistService }

// Library returns the import service.
func (a *Application) Library() *service.LibraryService { return a.libraryService }

// Preferences returns the preference service.
func (a *Application) Preferences() *service.PreferenceService { return a.preferenceService }

// EventBus returns the application event bus.
func (a *Application) EventBus() ports.FilteringEventBus { return a.eventBus }

// Transport returns the audio transport.
func (a *Application) Transport() ports.Transport { return a.transport }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Shutdown gracefully shuts down the application. Calling it again is a no-op.
func (a *Application) Shutdown() error {
	if a.shutdown {
		return nil
	}
	a.shutdown = true
	a.logger.Debug("shutting down application")

	var errs []error

	// Shutdown services (in reverse order of creation)
	a.libraryService.Cancel()
	if err := a.sessionService.Shutdown(); err != nil {
		errs = append(errs, fmt.Errorf("session: %w", err))
	}
	if err := a.transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("transport: %w", err))
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("blob store: %w", err))
	}
	if err := a.eventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		a.logger.Warn("shutdown finished with errors", slog.Any("error", err))
	} else {
		a.logger.Debug("application shutdown complete")
	}
	return err
}
