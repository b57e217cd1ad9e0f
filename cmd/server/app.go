package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookreviews-api/internal/config"
	"github.com/phrazzld/bookreviews-api/internal/platform/objectstore"
	"github.com/phrazzld/bookreviews-api/internal/platform/postgres"
	"github.com/phrazzld/bookreviews-api/internal/platform/tokens"
	"github.com/phrazzld/bookreviews-api/internal/redact"
	"github.com/phrazzld/bookreviews-api/internal/service"
	"github.com/phrazzld/bookreviews-api/internal/service/auth"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService auth.JWTService

	identity   service.IdentityService
	users      service.UserService
	books      service.BookService
	categories service.CategoryService
	reviews    service.ReviewService

	// staticDir is served under /static when uploads live on local disk.
	staticDir string

	closers []func() error
}

// dependencies are the infrastructure pieces the services are built on.
type dependencies struct {
	stores   store.Stores
	uow      store.UnitOfWork
	objects  objectstore.ObjectStore
	resets   store.ResetTokenStore
	notifier service.ResetNotifier
	hasher   auth.PasswordHasher
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	stores := store.Stores{
		Users:      postgres.NewPostgresUserStore(db, logger),
		Books:      postgres.NewPostgresBookStore(db, logger),
		Categories: postgres.NewPostgresCategoryStore(db, logger),
		Reviews:    postgres.NewPostgresReviewStore(db, logger),
	}

	deps := dependencies{
		stores:   stores,
		uow:      store.NewTxUnitOfWork(db, stores),
		notifier: service.NewLogResetNotifier(logger),
		hasher:   auth.NewBcryptHasher(cfg.Auth.BCryptCost),
	}

	var closers []func() error

	objects, staticDir, err := newObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}
	deps.objects = objects

	resets, closeResets, err := newResetTokenStore(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reset token store: %w", err)
	}
	deps.resets = resets
	if closeResets != nil {
		closers = append(closers, closeResets)
	}

	app, err := buildApplication(cfg, logger, deps)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, err
	}
	app.db = db
	app.staticDir = staticDir
	app.closers = closers

	logger.Info("Application initialized successfully")
	return app, nil
}

// buildApplication wires the services on top of deps.
func buildApplication(cfg *config.Config, logger *slog.Logger, deps dependencies) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes),
		slog.Int("reset_token_lifetime_minutes", cfg.Auth.ResetTokenLifetimeMinutes))

	identity, err := service.NewIdentityService(
		deps.stores.Users,
		deps.uow,
		deps.hasher,
		jwtService,
		deps.resets,
		deps.notifier,
		service.IdentityOptions{AllowAdminSignup: cfg.Auth.AllowAdminSignup},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	return &application{
		config:     cfg,
		logger:     logger,
		jwtService: jwtService,
		identity:   identity,
		users:      service.NewUserService(deps.stores.Users, deps.uow, deps.objects, logger),
		books:      service.NewBookService(deps.stores.Books, deps.stores.Reviews, deps.uow, deps.objects, logger),
		categories: service.NewCategoryService(deps.stores.Categories, deps.uow, logger),
		reviews:    service.NewReviewService(deps.stores.Reviews, deps.uow, nil, logger),
	}, nil
}

// newObjectStore selects the configured backend. For the local backend it
// also returns the directory to serve under /static.
func newObjectStore(
	ctx context.Context,
	cfg config.StorageConfig,
	logger *slog.Logger,
) (objectstore.ObjectStore, string, error) {
	switch cfg.Backend {
	case "minio":
		s, err := objectstore.NewMinioStore(ctx, cfg.MinIO, logger)
		if err != nil {
			return nil, "", fmt.Errorf("minio: %s", redact.Error(err))
		}
		logger.Info("Object storage initialized",
			slog.String("backend", "minio"),
			slog.String("bucket", cfg.MinIO.Bucket))
		return s, "", nil
	default:
		s, err := objectstore.NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL, logger)
		if err != nil {
			return nil, "", err
		}
		logger.Info("Object storage initialized", slog.String("backend", "local"))
		return s, s.Root(), nil
	}
}

// newResetTokenStore returns a Redis-backed store when an address is
// configured and an in-process store otherwise. The returned closer may be nil.
func newResetTokenStore(
	ctx context.Context,
	cfg config.RedisConfig,
	logger *slog.Logger,
) (store.ResetTokenStore, func() error, error) {
	if cfg.Addr == "" {
		logger.Warn("No redis address configured, reset tokens are kept in memory")
		return tokens.NewMemoryResetTokenStore(), nil, nil
	}

	s, err := tokens.NewRedisResetTokenStore(cfg.Addr, cfg.Password, cfg.DB, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, nil, fmt.Errorf("failed to ping redis: %s", redact.Error(err))
	}
	logger.Info("Reset token store initialized", slog.String("backend", "redis"))
	return s, s.Close, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	for _, c := range app.closers {
		if err := c(); err != nil {
			app.logger.Error("Error releasing resource", slog.String("error", redact.Error(err)))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", redact.Error(err)))
		}
	}

	app.logger.Info("Application shutdown completed")
}
