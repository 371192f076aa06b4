package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskflow/internal/api/ws"
	"github.com/phrazzld/taskflow/internal/clock"
	"github.com/phrazzld/taskflow/internal/config"
	"github.com/phrazzld/taskflow/internal/events"
	"github.com/phrazzld/taskflow/internal/platform/github"
	"github.com/phrazzld/taskflow/internal/platform/postgres"
	"github.com/phrazzld/taskflow/internal/service"
	"github.com/phrazzld/taskflow/internal/service/auth"
	"github.com/phrazzld/taskflow/internal/taskcache"
)

// application holds the server's long-lived components.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	broker   *events.Broker
	session  *service.Session
	github   *service.GitHubService
	jwt      auth.JWTService
	projects *postgres.PostgresProjectStore
	updates  *ws.Handler
}

// newApplication creates the stores, starts the update broker and builds
// the session and services on top of db. The broker is stopped again if a
// later step fails.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	if db == nil {
		return nil, errors.New("database cannot be nil")
	}

	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwt, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	tasks := postgres.NewPostgresTaskStore(db, logger)
	app.projects = postgres.NewPostgresProjectStore(db, logger)
	githubStore := postgres.NewPostgresGitHubStore(db, logger)

	app.broker = events.NewBroker(events.Config{
		WorkerCount: cfg.Events.WorkerCount,
		QueueSize:   cfg.Events.QueueSize,
	}, logger)
	app.broker.Start()

	app.session, err = service.NewSession(taskcache.Config{
		TTL:        cfg.Cache.TTL(),
		MaxEntries: cfg.Cache.MaxEntries,
	}, service.SessionDeps{
		DB:       db,
		Tasks:    tasks,
		Projects: app.projects,
		Updates:  app.broker,
		Clock:    clock.System(),
		Logger:   logger,
	})
	if err != nil {
		app.stopBroker()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	oauth := github.NewOAuth(github.OAuthConfig{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
		RedirectURL:  cfg.GitHub.RedirectURL,
	})
	client := github.NewClient(cfg.GitHub.APIURL, logger)
	app.github, err = service.NewGitHubService(githubStore, tasks, client, oauth, app.jwt, logger)
	if err != nil {
		app.session.Close()
		app.stopBroker()
		return nil, fmt.Errorf("failed to create github service: %w", err)
	}
	if !cfg.GitHub.Enabled() {
		logger.Warn("GitHub OAuth is not configured; linking and authorization are disabled")
	}

	app.updates = ws.NewHandler(app.broker, ws.Config{
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	logger.Info("application initialized successfully")
	return app, nil
}

// Run serves HTTP until ctx is canceled or the server fails, then shuts
// down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the session, the broker and the database in that order.
// ctx bounds how long the broker may take to drain.
func (app *application) cleanup(ctx context.Context) {
	if app.updates != nil {
		app.updates.CloseAll()
	}
	if app.session != nil {
		app.session.Close()
	}
	if app.broker != nil {
		if err := app.broker.Stop(ctx); err != nil {
			app.logger.Error("error stopping event broker", slog.String("error", err.Error()))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}

func (app *application) stopBroker() {
	ctx, cancel := context.WithTimeout(context.Background(), app.shutdownTimeout())
	defer cancel()
	_ = app.broker.Stop(ctx)
}
