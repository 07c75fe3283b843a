// Package app wires configuration, storage, services and transports into a
// running server.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nevroth/nevroth/internal/chat"
	"github.com/nevroth/nevroth/internal/config"
	"github.com/nevroth/nevroth/internal/habits"
	"github.com/nevroth/nevroth/internal/logging"
	"github.com/nevroth/nevroth/internal/store/sqlstore"
	"github.com/nevroth/nevroth/internal/ws"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   *sqlstore.SQLStore
	hub     *ws.Hub
	cleaner *chat.Cleaner
	handler http.Handler
	closers []io.Closer
}

func NewApp(cfg *config.Config) (*App, error) {
	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	store, err := sqlstore.New(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hub := ws.NewHub(logger.With("module", "ws"))
	secret := []byte(cfg.SecretKey)

	habitService := habits.NewService(store, habits.Options{
		RequiredHabits: cfg.RequiredHabits,
		EditWindow:     cfg.HabitEditWindow,
		Location:       loc,
	}, logger.With("module", "habits"))
	chatService := chat.NewService(store, hub, logger.With("module", "chat"))
	wsServer := ws.NewServer(hub, ws.NewAdmission(store, secret), cfg.SendBuffer, logger.With("module", "ws"))

	handler := NewRouter(RouterDeps{
		Store:     store,
		Habits:    habitService,
		Chats:     chatService,
		WS:        wsServer,
		SecretKey: secret,
		TokenTTL:  cfg.AccessTokenTTL,
		Logger:    logger,
	})

	return &App{
		config:  cfg,
		logger:  logger,
		store:   store,
		hub:     hub,
		cleaner: chat.NewCleaner(store, cfg.MessageRetention, cfg.CleanupInterval, logger.With("module", "cleanup")),
		handler: handler,
		closers: []io.Closer{store, logCloser},
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (app *App) Handler() http.Handler {
	return app.handler
}

// Run serves HTTP and runs the background workers until ctx is cancelled or
// one of them fails, then shuts everything down.
func (app *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              app.config.Addr,
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		app.logger.Info(gctx, "Starting HTTP server", "address", app.config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		app.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return app.hub.Run(gctx)
	})

	g.Go(func() error {
		return app.cleaner.Run(gctx)
	})

	return g.Wait()
}

// Close releases the store and the log file.
func (app *App) Close() error {
	var errs []error
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
