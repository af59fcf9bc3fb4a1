package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readinglog/internal/audit"
	"github.com/mrlokans/readinglog/internal/auth"
	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/crypto"
	"github.com/mrlokans/readinglog/internal/database"
	auditrepo "github.com/mrlokans/readinglog/internal/database/audit"
	"github.com/mrlokans/readinglog/internal/database/books"
	"github.com/mrlokans/readinglog/internal/database/users"
	http_controllers "github.com/mrlokans/readinglog/internal/http"
	"github.com/mrlokans/readinglog/internal/log"
	"github.com/mrlokans/readinglog/internal/parsers"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()), zap.Duration("timeout", timeout))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Background work stops before the listener so no new tasks are queued
	// against a closing database.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server exiting")
	return nil
}

// Run wires the application from cfg and serves it.
func Run(cfg *config.Config, version string) error {
	if err := log.Init(log.Options(cfg.Log)); err != nil {
		return err
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Info("Starting readinglog", zap.String("version", version))

	policy, err := parsers.ParseWhitespacePolicy(cfg.Books.WhitespacePolicy)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	defer auditService.Wait()

	// Audit cleanup goes through the task queue when it is enabled and runs
	// inline otherwise.
	var cleanupEnqueuer scheduler.AuditCleanupEnqueuer = tasks.InlineAuditCleanup{Cleaner: auditService}
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Error("Error closing task client", zap.Error(err))
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		defer taskCtxCancel()
		go taskClient.Start(taskCtx)
		cleanupEnqueuer = taskClient
	}

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(cleanupEnqueuer, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
	if err := cleanupScheduler.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start audit cleanup scheduler: %w", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Books:    bookRepo,
		Users:    userRepo,
		Database: db,
		Audit:    auditService,
		Options: http_controllers.BooksOptions{
			WhitespacePolicy: policy,
			UpsertOnUpdate:   cfg.Books.UpsertOnUpdate,
		},
		AuthConfig: cfg.Auth,
		Version:    version,
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Info("Authentication mode: local")

		sqlDB, err := db.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}

		sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Database.Driver, cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize session manager: %w", err)
		}

		csrfSecret, err := csrfKey(cfg.Auth)
		if err != nil {
			return err
		}

		authService := auth.NewService(userRepo, cfg.Auth)
		routerCfg.AuthService = authService
		routerCfg.SessionManager = sessionManager
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)
		routerCfg.CSRFSecret = csrfSecret
	} else {
		log.Info("Authentication mode: none (single user)")
	}

	router, err := http_controllers.NewRouter(routerCfg)
	if err != nil {
		return err
	}

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	return Serve(router, cfg, onShutdown)
}

// csrfKey derives the CSRF key from AUTH_SESSION_SECRET, or generates one
// that lasts until restart.
func csrfKey(cfg config.Auth) ([]byte, error) {
	if cfg.SessionSecret != "" {
		return crypto.KeyFromSecret(cfg.SessionSecret), nil
	}

	key, err := crypto.GenerateKeyBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Warn("Generated CSRF secret; set AUTH_SESSION_SECRET to keep forms valid across restarts")
	return key, nil
}
