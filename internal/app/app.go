package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photovault/internal/config"
	"photovault/internal/database"
	"photovault/internal/event"
	"photovault/internal/handler"
	"photovault/internal/middleware"
	"photovault/internal/repository"
	"photovault/internal/router"
	"photovault/internal/service"
	"photovault/internal/storage"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	objects, err := storage.NewMinioStore(context.Background(), storage.MinioConfig{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize object store: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	fileRepo := repository.NewFileRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	slog.Info("database ready")

	authService, err := service.NewAuthService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, userRepo, tokenRepo)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize auth service: %w", err)
	}
	authMiddleware := middleware.NewAuthMiddleware(authService)

	bus := event.NewBus()
	vaultService := service.NewVaultService(fileRepo, permissionRepo, objects, bus, cfg.PresignTTL, cfg.TrashRetention, cfg.MaxUploadSize)
	auditService := service.NewAuditService(auditRepo)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:  handler.NewAuthHandler(authService),
		Vault: handler.NewVaultHandler(vaultService),
		Media: handler.NewMediaHandler(vaultService),
		Audit: handler.NewAuditHandler(auditService),
	}, db.Health)

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	go auditService.Consume(backgroundCtx, bus)
	go vaultService.StartRetentionSweeper(backgroundCtx, cfg.SweepInterval)
	go cleanExpiredTokens(backgroundCtx, tokenRepo, cfg.SweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			backgroundCancel,
			db.Close,
		},
	}, nil
}

// cleanExpiredTokens drops dead refresh tokens on the same cadence as
// the retention sweep.
func cleanExpiredTokens(ctx context.Context, tokens *repository.TokenRepository, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := tokens.CleanExpired(ctx)
			if err != nil {
				slog.Error("refresh token cleanup failed", "error", err)
				continue
			}
			if removed > 0 {
				slog.Info("expired refresh tokens removed", "count", removed)
			}
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		for _, cleanup := range a.cleanupFuncs {
			cleanup()
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
