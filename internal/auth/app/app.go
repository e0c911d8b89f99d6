// Package app assembles the auth service: config, stores, services, HTTP.
package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/blightstone/blightstone/internal/auth/http"
	"github.com/blightstone/blightstone/internal/auth/mailer"
	"github.com/blightstone/blightstone/internal/auth/service"
	"github.com/blightstone/blightstone/internal/auth/session"
	"github.com/blightstone/blightstone/internal/auth/store"
	"github.com/blightstone/blightstone/internal/auth/store/drivers/postgres"
	"github.com/blightstone/blightstone/internal/auth/store/drivers/sqlite"
	"github.com/blightstone/blightstone/pkg/jwtx"
	"github.com/blightstone/blightstone/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db       store.Store
	signer   *jwtx.Signer
	sessions *session.Manager
	closeFns []func()

	authService         *service.AuthService
	inviteService       *service.InviteService
	resetService        *service.ResetService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "blightstone-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	signer, err := initSigner(cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.signer = signer

	if err := app.initSessions(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	for _, closeFn := range app.closeFns {
		closeFn()
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseURL)
	case "sqlite":
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseURL)
		db, err = sqlite.NewStore(dsn)
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database ready", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initSessions builds the session backend and cookie manager.
func (app *Application) initSessions() error {
	var backend session.Backend

	switch app.cfg.SessionBackend {
	case "redis":
		rb, err := session.NewRedisBackend(app.cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to initialize redis sessions: %w", err)
		}
		app.closeFns = append(app.closeFns, func() { _ = rb.Close() })
		backend = rb
	case "memory":
		mb := session.NewMemoryBackend()
		app.closeFns = append(app.closeFns, mb.Close)
		backend = mb
	default:
		return fmt.Errorf("unknown session backend %q", app.cfg.SessionBackend)
	}

	secret := app.cfg.SessionSecret
	if secret == "" {
		if app.cfg.Env != "dev" {
			return errors.New("SESSION_SECRET is required outside dev")
		}
		// Dev convenience: cookies won't survive a restart.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return err
		}
		secret = hex.EncodeToString(buf)
		app.logger.Warn("no session secret configured, using a random one")
	}

	hashKey, blockKey := sessionKeys(secret)
	app.sessions = session.NewManager(backend, hashKey, blockKey, app.cfg.Env == "prod")

	app.logger.Info("session store ready", "backend", app.cfg.SessionBackend)
	return nil
}

// initMailer picks the delivery provider.
func (app *Application) initMailer() mailer.Sender {
	if app.cfg.ResendAPIKey != "" {
		app.logger.Info("email delivery via resend", "from", app.cfg.EmailFrom)
		return mailer.NewResendSender(app.cfg.ResendAPIKey, app.cfg.EmailFrom)
	}
	return &mailer.LogSender{Log: app.logger}
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	sender := app.initMailer()

	app.authService = &service.AuthService{
		Store:      app.db,
		Signer:     app.signer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: service.DefaultRefreshTokenTTL,
	}

	app.inviteService = &service.InviteService{
		Store:   app.db,
		Auth:    app.authService,
		Mailer:  sender,
		BaseURL: app.cfg.AppBaseURL,
	}

	app.resetService = &service.ResetService{
		Store:   app.db,
		Mailer:  sender,
		BaseURL: app.cfg.AppBaseURL,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.sessions,
		app.signer,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.InviteService = app.inviteService
	router.ResetService = app.resetService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
