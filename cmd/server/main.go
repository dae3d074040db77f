package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/api"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/config"
	"github.com/yourname/sleepcycle/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	store, err := newStore(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		logger.Fatalf("invalid bcrypt configuration: %v", err)
	}

	var breach auth.BreachChecker
	if cfg.BreachCheckEnabled {
		breach = auth.NewPwnedClient(cfg.BreachUserAgent, logger)
	}
	policy := auth.NewStrengthPolicy(nil, breach, cfg.BreachFailClosed, logger)

	app := &api.Application{
		Log:      logger,
		Store:    store,
		Session:  auth.NewSessionService(cfg.JWTSecret, cfg.SessionTTL),
		Password: hasher,
		Policy:   policy,
		Limiter:  newLoginLimiter(cfg, logger),
		Cfg:      cfg,
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.SetupRouter(app),
	}

	go func() {
		logger.Infof("server listening on %s (storage=%s)", cfg.HTTPAddr, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if err := store.Close(); err != nil {
		logger.Errorf("storage shutdown: %v", err)
	}
}

func newStore(cfg *config.Config, logger internal.Logger) (storage.Store, error) {
	switch cfg.DBType {
	case "postgres":
		return storage.NewPostgresStore(cfg.DBDSN, "migrations", logger)
	default:
		dir := filepath.Dir(cfg.FileSleep)
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return storage.NewFileStore(cfg.FileUsers, cfg.FileSleep, logger)
	}
}

func newLoginLimiter(cfg *config.Config, logger internal.Logger) auth.LoginLimiter {
	if cfg.RateLimiter == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return auth.NewRedisLimiter(client, cfg.LoginRateLimit, cfg.LoginRateWindow, logger)
	}
	return auth.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
}
