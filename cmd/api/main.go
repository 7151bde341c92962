package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/safar/go-shop/internal/config"
	"github.com/safar/go-shop/internal/database"
	"github.com/safar/go-shop/internal/logging"
	"github.com/safar/go-shop/internal/notify"
	"github.com/safar/go-shop/internal/session"
	"github.com/safar/go-shop/internal/store"
	"go.uber.org/zap"
)

const sessionPurgeInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	var sessions sessionBackend
	switch cfg.Session.Backend {
	case "memory":
		sessions = session.NewMemoryStore(cfg.Session.TTL)
	default:
		sessions = store.NewSessionStore(db, cfg.Session.TTL)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sender := notify.New(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, logger)
	if closer, ok := sender.(io.Closer); ok {
		defer closer.Close()
	}

	a := newApp(cfg, store.New(db), sessions, sender, reg, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.routes(reg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go purgeSessions(ctx, sessions, sessionPurgeInterval, logger)

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// sessionBackend is a session store that can drop its expired sessions.
type sessionBackend interface {
	session.Store
	Purge(ctx context.Context) (int64, error)
}

func purgeSessions(ctx context.Context, sessions sessionBackend, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.Purge(ctx)
			if err != nil {
				logger.Warn("purge sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("purged expired sessions", zap.Int64("count", n))
			}
		}
	}
}
