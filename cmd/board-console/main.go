package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/park285/board-console/internal/backend"
	appcfg "github.com/park285/board-console/internal/config"
	"github.com/park285/board-console/internal/journal"
	"github.com/park285/board-console/internal/msgcat"
	"github.com/park285/board-console/internal/obslog"
	"github.com/park285/board-console/internal/session"
	"github.com/park285/board-console/internal/web"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	messages, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("messages_init_error", zap.Error(err))
	}

	dialect, err := backend.ParseDialect(cfg.BackendDialect)
	if err != nil {
		logger.Fatal("backend_dialect_error", zap.Error(err))
	}
	client := backend.NewClient(cfg.BackendURL,
		backend.WithDialect(dialect),
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithMaxConnsPerHost(cfg.BackendMaxConns),
		backend.WithLogger(logger),
	)

	clock := clockwork.NewRealClock()
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session store: Redis when configured, process memory otherwise
	var store session.Store = session.NewMemoryStore(clock, cfg.SessionTTL)
	if cfg.RedisURL != "" {
		rdb, err := session.OpenRedis(rootCtx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis_init_error", zap.Error(err))
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	}

	var recorder journal.Recorder = journal.NewMemory(500)
	if cfg.DatabaseURL != "" {
		repo, err := journal.NewRepository(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("journal_init_error", zap.Error(err))
		}
		defer repo.Close()
		recorder = repo
	}

	hub := session.NewHub(session.HubOptions{
		Session: session.Options{
			Shell:        web.Shell(),
			Backend:      client,
			PollInterval: cfg.PollInterval,
			ReloadDelay:  cfg.ReloadDelay,
			Messages:     messages,
			Journal:      recorder,
			Logger:       logger,
		},
		Store:       store,
		Clock:       clock,
		IdleTimeout: cfg.SessionIdle,
		Logger:      logger,
	})
	go hub.Run(rootCtx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           web.NewServer(hub, client, web.WithLogger(logger)).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("console_listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("backend", cfg.BackendURL),
			zap.String("dialect", string(dialect)),
			zap.Bool("redis", cfg.RedisURL != ""),
			zap.Bool("database", cfg.DatabaseURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown_signal")
	case err := <-errCh:
		logger.Error("http_server_error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http_shutdown_error", zap.Error(err))
	}
	logger.Info("console_stopped")
}
