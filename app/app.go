// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-shop-api/config"
	"go-shop-api/db"
	"go-shop-api/handler"
	"go-shop-api/logger"
	"go-shop-api/repository"
	"go-shop-api/router"
	"go-shop-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

const tokenJanitorInterval = time.Hour

// Deps are the storage collaborators the HTTP stack is built on.
type Deps struct {
	Users    repository.IUserRepository
	Audit    repository.IAuditRepository
	Tokens   repository.TokenStore
	Products repository.IProductRepository
}

// NewHandler wires services, handlers and the router on top of deps.
func NewHandler(cfg *config.Config, deps Deps) (http.Handler, error) {
	authService, err := service.NewAuthService(deps.Users, deps.Tokens, service.Options{
		AccessSecret:        cfg.JWT.AccessSecret,
		RefreshSecret:       cfg.JWT.RefreshSecret,
		AccessTTL:           cfg.JWT.AccessTTL,
		RefreshTTL:          cfg.JWT.RefreshTTL,
		Issuer:              cfg.JWT.Issuer,
		BcryptCost:          cfg.Auth.BcryptCost,
		RotateRefreshTokens: cfg.Auth.RotateRefreshTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("creating auth service: %w", err)
	}
	trusted, err := handler.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parsing server.trusted_proxies: %w", err)
	}
	userService := service.NewUserService(deps.Users)
	auditService := service.NewAuditService(deps.Audit)
	productService := service.NewProductService(deps.Products, cfg.Products.ImageBaseURL)

	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(authService, userService, auditService, cfg.Auth.CookieSecure, cfg.JWT.RefreshTTL),
		Users:    handler.NewUserHandler(userService, auditService),
		Audit:    handler.NewAuditHandler(auditService),
		Products: handler.NewProductHandler(productService, auditService),
	}
	return router.NewRouter(handlers, authService, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: trusted,
	}), nil
}

func Run() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// The logger is not configured yet; logrus defaults still apply.
		logger.Log.Fatalf("Error loading configuration: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect(cfg)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath, db.ConnString(cfg)); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tokens, closeStore, err := openTokenStore(ctx, cfg, database)
	if err != nil {
		logger.Log.Fatalf("Error opening session store: %v", err)
	}
	defer closeStore()

	h, err := NewHandler(cfg, Deps{
		Users:    repository.NewUserRepository(database),
		Audit:    repository.NewAuditRepository(database),
		Tokens:   tokens,
		Products: repository.NewProductRepository(database),
	})
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	logger.Log.Info("Server exited properly")
}

// openTokenStore returns the configured active refresh-token set and a
// function that releases it.
func openTokenStore(ctx context.Context, cfg *config.Config, database *sql.DB) (repository.TokenStore, func(), error) {
	switch cfg.Auth.SessionStore {
	case config.SessionStoreRedis:
		client, err := db.ConnectRedis(cfg)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRedisTokenStore(client), func() { closeRedis(client) }, nil
	case config.SessionStorePostgres:
		store := repository.NewTokenRepository(database)
		go runTokenJanitor(ctx, store, tokenJanitorInterval)
		return store, func() {}, nil
	case config.SessionStoreMemory:
		logger.Log.Warn("Using in-memory session store; sessions will not survive a restart")
		return repository.NewMemoryTokenStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Auth.SessionStore)
	}
}

type expiredTokenDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// runTokenJanitor periodically removes expired rows from the Postgres
// session store until ctx is cancelled.
func runTokenJanitor(ctx context.Context, store expiredTokenDeleter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				logger.Log.WithError(err).Error("Failed to delete expired refresh tokens")
				continue
			}
			if n > 0 {
				logger.Log.Infof("Deleted %d expired refresh tokens", n)
			}
		}
	}
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		logger.Log.WithError(err).Warn("Error closing Redis client")
	}
}
