package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/config"
	"github.com/efreitasn/matchcore/internal/engine"
	"github.com/efreitasn/matchcore/internal/feed"
	"github.com/efreitasn/matchcore/internal/handler"
	"github.com/efreitasn/matchcore/internal/logging"
	"github.com/efreitasn/matchcore/internal/service"
	"github.com/efreitasn/matchcore/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8081"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Trade history (in-memory, synchronous with matching).
	tradeStore := store.NewTradeStore()

	// Slow sinks sit behind the feed dispatcher's bounded queue so the
	// matching critical section never blocks on them.
	var sinks []engine.EventListener

	if cfg.JournalPath != "" {
		journal, err := store.OpenJournal(cfg.JournalPath, logger)
		if err != nil {
			logger.Fatal("failed to open trade journal", zap.Error(err))
		}
		defer func() { _ = journal.Close() }()
		sinks = append(sinks, journal)
		logger.Info("trade journal enabled", zap.String("path", cfg.JournalPath))
	}

	if cfg.KafkaEnabled() {
		publisher := feed.NewTradePublisher(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaTimeout, logger)
		defer func() { _ = publisher.Close() }()
		sinks = append(sinks, publisher)
		logger.Info("kafka trade publisher enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	}

	// The dispatcher decouples the matcher from the hub and the sinks;
	// its target list is completed before Run starts and before any
	// order is submitted.
	dispatcher := feed.NewDispatcher(cfg.FeedBuffer, logger, sinks...)
	matcher := engine.NewMatcher(engine.MultiListener{tradeStore, dispatcher})
	hub := feed.NewHub(matcher, tradeStore, cfg.FeedHistory, logger)
	dispatcher.AddTarget(hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Run(ctx)

	// Services and router.
	orderSvc := service.NewOrderService(matcher, logger)
	marketSvc := service.NewMarketDataService(matcher, tradeStore, cfg.StatsWindow)
	router := handler.NewRouter(orderSvc, marketSvc, hub.ServeWS, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	cancel()

	logger.Info("server stopped")
}
