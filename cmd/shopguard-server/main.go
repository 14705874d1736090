// Command shopguard-server runs the storefront auth service: Redis-backed
// session records, a Postgres user store, and the /api/auth HTTP surface.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	shopguard "github.com/calebrossi/shopguard"
	"github.com/calebrossi/shopguard/httpapi"
	"github.com/calebrossi/shopguard/internal/obs"
	"github.com/calebrossi/shopguard/password"
	"github.com/calebrossi/shopguard/transport"
	"github.com/calebrossi/shopguard/userstore/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (env vars override)")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := shopguard.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := obs.NewLogger(obs.LogConfig{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		App:    cfg.App.Name,
		Env:    cfg.App.Env,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.App.Env))

	// Session store client: connect once, fail fast if unreachable. Retry
	// policy (capped exponential backoff) belongs here, not in the engine.
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.Addr,
		Password:        cfg.Redis.Password,
		DB:              cfg.Redis.DB,
		DialTimeout:     cfg.Redis.DialTimeout,
		MaxRetries:      cfg.Redis.MaxRetries,
		MinRetryBackoff: cfg.Redis.MinRetryBackoff,
		MaxRetryBackoff: cfg.Redis.MaxRetryBackoff,
	})
	defer func() { _ = rdb.Close() }()

	if err := rdb.Ping(rootCtx).Err(); err != nil {
		logger.Fatal("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}

	users, err := postgres.New(rootCtx, cfg.Database)
	if err != nil {
		logger.Fatal("user store connect", zap.Error(err))
	}
	defer users.Close()

	engine, err := shopguard.New().
		WithConfig(*cfg).
		WithRedis(rdb).
		WithUserProvider(users).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Fatal("engine build", zap.Error(err))
	}

	hasher, err := password.NewArgon2(cfg.Password)
	if err != nil {
		logger.Fatal("argon2 init", zap.Error(err))
	}

	binder := transport.NewBinder(cfg.Cookies())
	handler := httpapi.NewHandler(engine, users, hasher, binder, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
