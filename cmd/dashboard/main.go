// Command dashboard is the terminal client for the inventory API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/dashboard/internal/application/imports"
	"github.com/erp/dashboard/internal/infrastructure/api"
	"github.com/erp/dashboard/internal/infrastructure/auth"
	"github.com/erp/dashboard/internal/infrastructure/cache"
	"github.com/erp/dashboard/internal/infrastructure/config"
	"github.com/erp/dashboard/internal/infrastructure/logger"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/infrastructure/storage"
	"github.com/erp/dashboard/internal/infrastructure/telemetry"
	"github.com/erp/dashboard/internal/interfaces/cli"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a config file (default: config.toml in the search paths)")
	profile := fs.String("profile", "default", "session profile, lets several logins coexist in one store")
	metricsAddr := fs.String("metrics-addr", "", "serve client metrics on this address while the command runs")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return cli.ExitUsage
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration: "+err.Error())
		return cli.ExitError
	}

	logCfg := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		logCfg.Output = cfg.Log.Output
	}
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger: "+err.Error())
		return cli.ExitError
	}
	defer logger.Sync(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Error("Failed to initialize tracing", zap.Error(err))
		return cli.ExitError
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(sctx); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	store, err := cache.NewSessionStoreFactory(cfg.Session, cfg.Redis, cache.WithLogger(log)).CreateStore(*profile)
	if err != nil {
		log.Error("Failed to open session store", zap.Error(err))
		return cli.ExitError
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn("Error closing session store", zap.Error(err))
			}
		}()
	}

	session := auth.NewSession(auth.WithStore(store), auth.WithLogger(log))
	if _, err := session.Restore(ctx); err != nil {
		log.Warn("Stored session could not be restored", zap.Error(err))
	}
	unsubscribe := session.Subscribe(func(ev auth.Event) {
		if ev.Kind == auth.EventUnauthorized {
			log.Info("Session rejected by the API, login required")
		}
	})
	defer unsubscribe()

	rec := metrics.New(metrics.DefaultConfig())
	if *metricsAddr != "" {
		addr, err := rec.Start(*metricsAddr)
		if err != nil {
			log.Error("Failed to start metrics server", zap.Error(err))
			return cli.ExitError
		}
		log.Info("Serving metrics", zap.String("addr", addr.String()))
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = rec.Stop(sctx)
		}()
	}

	client, err := api.NewClient(api.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserAgent: cfg.API.UserAgent,
	}, session, api.WithLogger(log.Named("api")), api.WithMetrics(rec))
	if err != nil {
		log.Error("Failed to create API client", zap.Error(err))
		return cli.ExitError
	}

	opts := []cli.Option{
		cli.WithLogger(log),
		cli.WithMetrics(rec),
		cli.WithPollInterval(cfg.Polling.Interval),
		cli.WithListing(cfg.Listing.PageSize, cfg.Listing.SearchDebounce),
	}
	if cfg.Storage.Enabled {
		archive, err := newArchive(ctx, &cfg.Storage, log)
		if err != nil {
			log.Error("Failed to initialize workbook archive", zap.Error(err))
			return cli.ExitError
		}
		opts = append(opts, cli.WithArchive(archive))
	}

	return cli.New(client, opts...).Run(ctx, fs.Args())
}

func newArchive(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (imports.Archive, error) {
	archive, err := storage.NewS3Archive(ctx, cfg, storage.WithLogger(log.Named("archive")))
	if err != nil {
		return nil, err
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return archive, nil
}
