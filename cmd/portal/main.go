package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"editorial_ingest/internal/api"
	"editorial_ingest/internal/config"
	"editorial_ingest/internal/ingest"
	"editorial_ingest/internal/publisher"
	"editorial_ingest/internal/rss"
	"editorial_ingest/internal/scheduler"
	"editorial_ingest/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	articleStore := postgres.NewArticleStore(db)
	categoryStore := postgres.NewCategoryStore(db)
	auditStore := postgres.NewAuditStore(db)
	jobStore := postgres.NewJobStore(db)
	txManager := postgres.NewTransactionManager(db)

	committer := ingest.NewCommitter(
		articleStore,
		categoryStore,
		auditStore,
		txManager,
		rabbitMQ,
		ingest.SourceLookup(cfg.KnownSources),
		logger,
	)

	orchestrator := ingest.NewOrchestrator(
		jobStore,
		cfg.Ingest.PollInterval,
		cfg.Ingest.BatchTimeout,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	if cfg.RSS.Enabled {
		feedSource := rss.New(rss.Config{
			FeedURL:  cfg.RSS.FeedURL,
			Timeout:  cfg.RSS.Timeout,
			MaxItems: cfg.RSS.MaxItems,
		}, logger)

		feedIngestor := ingest.NewFeedIngestor(feedSource, cfg.RSS.SourceName, orchestrator, committer, logger)
		sched := scheduler.NewScheduler(feedIngestor, cfg.RSS.Interval, logger)

		go func() {
			if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scheduler error", "error", err)
			}
		}()
	}

	server := api.NewServer(orchestrator, committer, jobStore, auditStore, cfg.Ingest.AuditWindowDays, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: server.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting portal api", "addr", cfg.Server.Addr())

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
