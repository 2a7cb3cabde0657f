package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/noah-isme/backend-kasir/internal/app"
	"github.com/noah-isme/backend-kasir/internal/catalog"
	"github.com/noah-isme/backend-kasir/internal/config"
	"github.com/noah-isme/backend-kasir/internal/events"
	"github.com/noah-isme/backend-kasir/internal/history"
	"github.com/noah-isme/backend-kasir/internal/obs"
	"github.com/noah-isme/backend-kasir/internal/queue"
	"github.com/noah-isme/backend-kasir/internal/quote"
	"github.com/noah-isme/backend-kasir/internal/scan"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("env", cfg.AppEnv).Str("component", "worker").Logger()

	obs.MustRegisterDomainMetrics(envOrDefault("OBS_METRICS_NAMESPACE", "kasir"), nil)
	queue.MustRegister(nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := app.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	redisClient, err := app.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	catalogService, err := catalog.NewService(catalog.ServiceConfig{
		Store: catalog.Store{DB: pool},
		Cache: catalog.NewCache(redisClient, cfg.CatalogCacheTTL),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	historyStore := &history.Store{R: redisClient, Max: cfg.HistoryMaxEntries, TTL: cfg.HistoryTTL}
	bus := &events.Bus{
		Store:     events.PGStore{DB: pool},
		Notifiers: []events.Notifier{history.Recorder{Store: historyStore}},
	}
	quoteSvc := &quote.Service{
		Catalog: catalogService,
		Events:  bus,
		Logger:  logger,
		MaxQty:  cfg.QuoteMaxQty,
	}

	coordinator := scan.Coordinator{
		Source: scan.RedisSource{
			Client:  redisClient,
			Channel: cfg.ScanChannel,
			Logger:  logger,
		},
		Enqueuer: queue.Enqueuer{
			R:        redisClient,
			Prefix:   cfg.QueuePrefix,
			DedupTTL: cfg.ScanDedupTTL,
		},
		Attempts: cfg.QueueAttempts,
		Logger:   logger,
	}

	worker := queue.Worker{
		R:           redisClient,
		Prefix:      cfg.QueuePrefix,
		Kind:        scan.TaskKindLookup,
		Concurrency: envInt("QUEUE_CONCURRENCY", 4),
		RetryBase:   cfg.QueueRetry,
		Logger:      logger,
		Handler: func(ctx context.Context, t queue.Task) error {
			var payload scan.LookupPayload
			if err := json.Unmarshal(t.Payload, &payload); err != nil {
				logger.Warn().Err(err).Msg("drop undecodable lookup payload")
				return nil
			}
			// scans always price a single unit
			_, err := quoteSvc.Quote(ctx, payload.Barcode, 1, payload.Device)
			if errors.Is(err, catalog.ErrNotFound) {
				// the miss is already recorded, retrying cannot help
				return nil
			}
			return err
		},
	}

	errs := make(chan error, 2)
	go func() { errs <- coordinator.Run(ctx) }()
	go func() { errs <- worker.Run(ctx) }()

	logger.Info().Str("channel", cfg.ScanChannel).Msg("worker starting")
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			logger.Error().Err(err).Msg("worker loop exited")
			stop()
		}
	}
	logger.Info().Msg("worker stopped")
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}
