package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/cache"
	"github.com/AccelByte/extend-runner-progression/pkg/client"
	"github.com/AccelByte/extend-runner-progression/pkg/common"
	"github.com/AccelByte/extend-runner-progression/pkg/config"
	"github.com/AccelByte/extend-runner-progression/pkg/db"
	"github.com/AccelByte/extend-runner-progression/pkg/events"
	"github.com/AccelByte/extend-runner-progression/pkg/handler"
	"github.com/AccelByte/extend-runner-progression/pkg/ingest"
	"github.com/AccelByte/extend-runner-progression/pkg/ledger"
	"github.com/AccelByte/extend-runner-progression/pkg/service"
	"github.com/AccelByte/extend-runner-progression/pkg/spawn"
	"github.com/AccelByte/extend-runner-progression/pkg/store"
	"github.com/AccelByte/extend-runner-progression/pkg/websocket"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadApp(*configPath)
	if err != nil {
		bootLogger.Warn("failed to load config file, using defaults", "error", err)
		cfg = config.DefaultAppConfig()
	}

	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func run(cfg *config.AppConfig, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := config.LoadCatalogOrDefault(cfg.Catalog.Path, logger)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	catalogCache := cache.NewInMemoryCatalogCache(catalog, cfg.Catalog.Path, logger)

	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	claims, closeLedger, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLedger()

	wsHub := websocket.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub initialized")

	bus := events.NewBus(logger)
	unsubscribe := bus.Subscribe(wsHub.HandleEvent)
	defer unsubscribe()

	clock := common.SystemClock()
	svc := service.NewProgressionService(service.Options{
		Store:   kv,
		Catalog: catalogCache,
		Ledger:  claims,
		Rewards: newRewardClient(cfg.Rewards, logger),
		Events:  bus,
		Clock:   clock,
		Logger:  logger,
		Retry: client.RetryPolicy{
			MaxAttempts: cfg.Rewards.MaxAttempts,
			BaseDelay:   cfg.Rewards.RetryDelay,
		},
		SessionIdleTTL: cfg.Sessions.IdleTTL,
	})
	go svc.RunEviction(ctx, cfg.Sessions.SweepInterval)

	seed := uint64(time.Now().UnixNano())
	validator := spawn.NewValidator(cfg.Spawn, rand.New(rand.NewPCG(seed, seed>>1|1)), clock, logger)

	var consumer *ingest.Consumer
	if cfg.Kafka.Enabled {
		logger.Info("initializing Kafka consumer",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
		)
		consumer, err = ingest.NewConsumer(&cfg.Kafka, svc, logger)
		if err != nil {
			logger.Warn("failed to create Kafka consumer, continuing without Kafka", "error", err)
		} else if err := consumer.Start(); err != nil {
			logger.Warn("failed to start Kafka consumer, continuing without Kafka", "error", err)
			consumer = nil
		}
	}

	httpHandler := handler.NewHandler(svc, validator, wsHub, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpHandler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error("HTTP server error", "error", err)
	}

	logger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop inputs first so no event arrives after the store is closed.
	if consumer != nil {
		if err := consumer.Stop(); err != nil {
			logger.Error("failed to stop Kafka consumer", "error", err)
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	}
	wsHub.Stop()

	logger.Info("server stopped")
	return nil
}

// openStore builds the snapshot store selected by cfg.Store.Backend. The
// returned func releases its connections.
func openStore(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (store.Store, func(), error) {
	var (
		kv      store.Store
		closeFn = func() {}
	)

	switch cfg.Store.Backend {
	case config.BackendRedis:
		logger.Info("connecting to Redis", "addr", cfg.Redis.Addr)
		rc, err := store.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		kv = store.NewRedisStore(rc, cfg.Redis.KeyTTL)
		closeFn = func() { _ = rc.Close() }

	case config.BackendPostgres:
		logger.Info("connecting to PostgreSQL", "host", cfg.Postgres.Host, "database", cfg.Postgres.Database)
		sqlDB, err := db.Connect(db.ConfigFromPostgres(&cfg.Postgres))
		if err != nil {
			return nil, nil, err
		}
		ps, err := store.NewPostgresStore(sqlDB, cfg.Store.Table)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		if err := ps.EnsureSchema(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, nil, err
		}
		kv = ps
		closeFn = func() { _ = sqlDB.Close() }

	default:
		kv = store.NewMemoryStore()
	}

	if cfg.Store.Async {
		async := store.NewAsyncStore(kv, cfg.Store.WriteTimeout, logger)
		inner := closeFn
		closeFn = func() {
			if err := async.Close(); err != nil {
				logger.Error("failed to drain store writes", "error", err)
			}
			inner()
		}
		kv = async
	}

	logger.Info("snapshot store ready", "backend", cfg.Store.Backend, "async", cfg.Store.Async)
	return kv, closeFn, nil
}

// openLedger builds the claim ledger selected by cfg.Ledger.Backend.
func openLedger(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (ledger.Ledger, func(), error) {
	if cfg.Ledger.Backend != config.BackendPostgres {
		return ledger.NewMemoryLedger(), func() {}, nil
	}

	pl, err := ledger.NewPostgresLedger(ctx, &cfg.Postgres, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := pl.RunMigrations(ctx); err != nil {
		pl.Close()
		return nil, nil, fmt.Errorf("running ledger migrations: %w", err)
	}
	return pl, pl.Close, nil
}

func newRewardClient(cfg config.RewardsConfig, logger *slog.Logger) client.RewardClient {
	if cfg.Mode == config.RewardModeHTTP {
		logger.Info("granting rewards through wallet service", "endpoint", cfg.Endpoint)
		return client.NewHTTPRewardClient(cfg.Endpoint, cfg.Timeout, logger)
	}
	return client.NewDevMockRewardClient()
}
