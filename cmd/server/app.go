package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/PrateekJaiswal16/taskflow-api/internal/config"
	"github.com/PrateekJaiswal16/taskflow-api/internal/platform/objectstore"
	"github.com/PrateekJaiswal16/taskflow-api/internal/platform/postgres"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service"
	"github.com/PrateekJaiswal16/taskflow-api/internal/service/auth"
	"github.com/PrateekJaiswal16/taskflow-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	jwtService  auth.JWTService
	passwords   auth.PasswordManager
	attachments *service.AttachmentLifecycleManager
	taskService service.TaskService
	userService service.UserService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwords = auth.NewBcryptPasswords()

	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	blobStore, err := objectstore.NewS3Store(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	logger.Info("Object store initialized", "bucket", cfg.Storage.Bucket)

	app.attachments = service.NewAttachmentLifecycleManager(blobStore, logger)

	app.taskService, err = service.NewTaskService(
		app.taskStore,
		app.userStore,
		app.attachments,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	app.userService, err = service.NewUserService(
		app.userStore,
		app.passwords,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
