package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/appointment"
	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/db"
	"github.com/hackgods/appointment-booking/internal/flash"
	"github.com/hackgods/appointment-booking/internal/metrics"
	redisclient "github.com/hackgods/appointment-booking/internal/redis"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api-server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	logger.Info("api-server starting up",
		"env", cfg.Env,
		"http_port", cfg.HTTPPort,
		"store", cfg.StoreBackend,
		"flash", cfg.FlashEnabled,
		"version", version,
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		repo appointment.Repository
		deps []api.Dependency
	)

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		migrateCtx, cancelMigrate := context.WithTimeout(rootCtx, 30*time.Second)
		err := db.MigrateDSN(migrateCtx, cfg.PostgresDSN)
		cancelMigrate()
		if err != nil {
			return err
		}

		pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
		pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancelPg()
		if err != nil {
			return err
		}
		defer pgPool.Close()
		logger.Info("connected to Postgres")

		repo = appointment.NewPgRepository(pgPool)
		deps = append(deps, api.Dependency{Name: "postgres", Critical: true, Ping: pgPool.Ping})
	default:
		repo = appointment.NewMemoryRepository()
	}

	var (
		locker     appointment.Locker
		flashStore flash.Store
	)

	if cfg.RedisAddr != "" {
		redisCtx, cancelRedis := context.WithTimeout(rootCtx, 5*time.Second)
		rdb, err := redisclient.NewRedisClient(redisCtx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		cancelRedis()
		if err != nil {
			return err
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("error closing redis", "error", err)
			}
		}()
		logger.Info("connected to Redis", "addr", cfg.RedisAddr)

		locker = redisclient.NewSlotLocker(rdb, cfg.LockTTL)
		if cfg.FlashEnabled {
			flashStore = flash.NewRedisStore(rdb, cfg.FlashTTL)
		}
		deps = append(deps, api.Dependency{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	} else {
		locker = appointment.NewLocalLocker()
		if cfg.FlashEnabled {
			mem := flash.NewMemoryStore(cfg.FlashTTL)
			go mem.Run(rootCtx, time.Minute, logger)
			flashStore = mem
		}
	}

	metrics.Register()

	svc := appointment.NewService(repo, locker)

	router := api.NewRouter(api.RouterConfig{
		Service:      svc,
		Flash:        flashStore,
		Dependencies: deps,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
		MaxFormBytes: api.DefaultMaxFormBytes,
		Env:          cfg.Env,
		Version:      version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-rootCtx.Done():
	}

	logger.Info("shutting down api-server", "timeout", cfg.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("api-server stopped")
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
