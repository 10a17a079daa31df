package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spacesedan/sentiboard/config"
	"github.com/spacesedan/sentiboard/internal/acquisition"
	"github.com/spacesedan/sentiboard/internal/aggregation"
	"github.com/spacesedan/sentiboard/internal/archive"
	"github.com/spacesedan/sentiboard/internal/clients"
	"github.com/spacesedan/sentiboard/internal/dashboard"
	"github.com/spacesedan/sentiboard/internal/db"
	"github.com/spacesedan/sentiboard/internal/logging"
	"github.com/spacesedan/sentiboard/internal/monitoring"
	"github.com/spacesedan/sentiboard/internal/sentiment"
	"github.com/spacesedan/sentiboard/internal/session"
)

func main() {
	config.LoadEnv(config.AppEnv(os.Getenv))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presets := aggregation.DefaultPresets()
	if cfg.SectorPresetsFile != "" {
		if presets, err = aggregation.LoadPresets(cfg.SectorPresetsFile); err != nil {
			slog.Error("Failed to load sector presets", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	labeler, err := sentiment.NewLabeler(cfg.Sentiment)
	if err != nil {
		slog.Error("Failed to create labeler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics := monitoring.NewMetrics()
	sessions := session.NewManager(cfg.Session.TTL)
	metrics.RegisterSessionGauge(sessions.Len)

	archiver, cleanup := buildArchiver(ctx, cfg, metrics)
	defer cleanup()

	opts := dashboard.Options{
		Labeler:        labeler,
		Sessions:       sessions,
		Presets:        presets,
		Archiver:       archiver,
		Metrics:        metrics,
		MaxUploadBytes: cfg.MaxUploadBytes,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		SecureCookies:  cfg.Env != "dev",
	}
	if cfg.Reddit.ClientID != "" && cfg.Reddit.ClientSecret != "" {
		reddit := clients.NewRedditClient(clients.RedditClientOptions{
			ClientID:        cfg.Reddit.ClientID,
			ClientSecret:    cfg.Reddit.ClientSecret,
			UserAgent:       cfg.Reddit.UserAgent,
			BreakerFailures: cfg.Reddit.BreakerFailures,
			BreakerCooldown: cfg.Reddit.BreakerCooldown,
		})
		opts.Fetcher = acquisition.NewFetcher(reddit, cfg.Reddit.FetchTimeout)
	} else {
		slog.Warn("Reddit credentials not set, only CSV uploads are available")
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           dashboard.NewServer(opts).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	go func() {
		slog.Info("Dashboard listening", slog.String("addr", cfg.HTTP.Addr), slog.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutdown signal received, shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
	slog.Info("Dashboard stopped")
}

// buildArchiver wires the optional archive sinks. A sink whose backend cannot
// be reached at startup is skipped; the dashboard runs without it.
func buildArchiver(ctx context.Context, cfg *config.Config, metrics *monitoring.Metrics) (*archive.Archiver, func()) {
	var sinks []archive.Sink
	var closers []func()

	if cfg.Archive.DynamoDBEnabled {
		client, err := clients.NewDynamoDBClient(ctx, cfg.AWS)
		if err != nil {
			slog.Warn("DynamoDB archive disabled", slog.String("error", err.Error()))
		} else {
			store := db.NewPostStore(client, cfg.Archive.DynamoDBTable, cfg.Archive.DedupeTTL)
			sinks = append(sinks, archive.NewDynamoDBSink(store))
		}
	}

	if cfg.Archive.KafkaEnabled {
		producer, err := clients.NewKafkaProducer(cfg.Kafka.Broker)
		if err != nil {
			slog.Warn("Kafka archive disabled", slog.String("error", err.Error()))
		} else {
			sinks = append(sinks, archive.NewKafkaSink(producer, cfg.Archive.KafkaTopic))
			closers = append(closers, producer.Close)
		}
	}

	var dedupe archive.Deduper
	if len(sinks) > 0 && cfg.Valkey.InitAddress != "" {
		vc, err := clients.NewValkeyClient(ctx, cfg.Valkey, cfg.Archive.DedupeTTL)
		if err != nil {
			slog.Warn("Archive dedupe disabled", slog.String("error", err.Error()))
		} else {
			dedupe = vc
			closers = append(closers, vc.Close)
		}
	}

	observe := func(sink string, err error) {
		metrics.ArchiveWrites.WithLabelValues(sink, monitoring.Result(err)).Inc()
	}

	return archive.NewArchiver(sinks, dedupe, cfg.Archive.Timeout, observe), func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
}
