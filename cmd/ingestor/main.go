package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/broker"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/config"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/consumer"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/feed"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/producer"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/sink"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/topics"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/version"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/warehouse"
)

func main() {
	configPath := flag.String("config", "configs/ingestor.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	runID := uuid.NewString()
	logger.Info("starting ingestor",
		"version", version.Version,
		"commit", version.Commit,
		"run_id", runID,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"stream", cfg.Stream.Name,
		"bucket", cfg.Sink.Bucket,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Provision the warehouse table before any data flows
	if cfg.Warehouse.Host != "" {
		if err := warehouse.Provision(ctx, cfg.Warehouse, logger); err != nil {
			logger.Error("failed to provision warehouse", "error", err)
			os.Exit(1)
		}
	}

	// One-shot symbol selection, passed by value to the producer
	selector := topics.NewSelector(
		cfg.Topics.URL,
		cfg.Topics.QuoteAsset,
		topics.WithLogger(logger),
		topics.WithTimeout(cfg.Topics.Timeout),
		topics.WithRetries(cfg.Topics.MaxRetries, cfg.Topics.RetryBackoff),
	)
	symbols, err := selector.TopSymbols(ctx, cfg.Topics.Limit)
	if err != nil {
		logger.Error("failed to select symbols", "error", err)
		os.Exit(1)
	}

	// Stream broker and object store clients
	kin, err := broker.NewKinesis(ctx, cfg.Stream.Region, cfg.Stream.Name, logger)
	if err != nil {
		logger.Error("failed to create kinesis client", "error", err)
		os.Exit(1)
	}

	store, err := sink.NewS3(ctx, cfg.Sink.Region, cfg.Sink.Bucket)
	if err != nil {
		logger.Error("failed to create s3 client", "error", err)
		os.Exit(1)
	}

	// Producer: one feed connection per selected symbol
	dial := func(symbol string) producer.Feed {
		clientCfg := feed.DefaultClientConfig()
		clientCfg.URL = feed.StreamURL(cfg.Feed.Endpoint, symbol, cfg.Feed.StreamType)
		return feed.NewClient(clientCfg, logger.With("symbol", symbol))
	}

	prod := producer.New(
		producer.Config{
			PartitionKey:     cfg.Stream.PartitionKey,
			PublishInterval:  cfg.Stream.PublishInterval,
			ReconnectBackoff: cfg.Stream.ReconnectBackoff,
		},
		symbols,
		dial,
		kin,
		logger,
	)

	// Consumer: drain the stream into parquet objects
	cons := consumer.New(
		consumer.Config{
			IteratorType: cfg.Consumer.IteratorType,
			PollLimit:    cfg.Consumer.PollLimit,
			PollInterval: cfg.Consumer.PollInterval,
			RetryBackoff: cfg.Consumer.RetryBackoff,
			MaxFailures:  cfg.Consumer.MaxFailures,
		},
		kin,
		store,
		sink.NewKeyBuilder(cfg.Sink.Project),
		logger,
	)

	// Health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(prod, cons),
	}
	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("ingestor running",
		"instance_id", cfg.Instance.ID,
		"symbols", len(symbols),
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Fork-join: producer and consumer run side by side; a consumer failure
	// cancels the producer loops through the shared context.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return prod.Run(gctx) })
	g.Go(func() error { return cons.Run(gctx) })

	err = g.Wait()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	if err != nil {
		logger.Error("ingestor stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("ingestor stopped")
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(prod *producer.Producer, cons *consumer.Consumer) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		pStats := prod.Stats()
		cStats := cons.Stats()

		health := struct {
			Status   string         `json:"status"`
			Producer producer.Stats `json:"producer"`
			Consumer consumer.Stats `json:"consumer"`
		}{
			Status:   "healthy",
			Producer: pStats,
			Consumer: cStats,
		}

		if pStats.Symbols == 0 {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
