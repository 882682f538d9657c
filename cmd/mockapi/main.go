// Command mockapi serves a seeded inventory API for the dashboard.
// It answers every endpoint the dashboard consumes, backed by sqlite or Postgres.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/dashboard/internal/infrastructure/auth"
	"github.com/erp/dashboard/internal/infrastructure/config"
	"github.com/erp/dashboard/internal/infrastructure/logger"
	"github.com/erp/dashboard/internal/infrastructure/metrics"
	"github.com/erp/dashboard/internal/infrastructure/persistence"
	"github.com/erp/dashboard/internal/infrastructure/printing"
	"github.com/erp/dashboard/internal/infrastructure/telemetry"
	"github.com/erp/dashboard/internal/interfaces/http/middleware"
	"github.com/erp/dashboard/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: config.toml in the search paths)")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.ServerConfig()
	if cfg.Log.Level != "" {
		logCfg.Level = cfg.Log.Level
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer logger.Sync(log)

	mock := cfg.MockAPI
	log.Info("Starting inventory mock API",
		zap.String("env", cfg.App.Env),
		zap.String("port", mock.Port),
		zap.String("driver", mock.Driver),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName + "-mockapi",
		Environment:       cfg.App.Env,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	dbTracing := telemetry.NewDBTracing(telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && mock.DBTracing,
		LogFullSQL:         mock.DBTracingFullSQL,
		SlowQueryThreshold: mock.SlowQueryThreshold,
	}, log.Named("gorm"))
	db, err := persistence.NewDatabase(mock.Driver, mock.DSN,
		persistence.WithLogger(log.Named("gorm"), logger.MapGormLogLevel(cfg.Log.Level)),
		persistence.WithTracing(dbTracing))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	seed := persistence.DefaultSeedOptions()
	seed.Seed = uint64(mock.Seed)
	seed.Products = mock.SeedProducts
	seed.Sales = mock.SeedSales
	if err := persistence.Seed(context.Background(), db.DB, seed, log); err != nil {
		log.Fatal("Failed to seed database", zap.Error(err))
	}

	renderer, err := newRenderer(mock, log)
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	if renderer != nil {
		defer func() {
			if err := renderer.Close(); err != nil {
				log.Warn("Error closing PDF renderer", zap.Error(err))
			}
		}()
	}

	tokens := auth.NewTokenService(mock.JWTSecret, mock.TokenTTL, "mockapi")
	services := router.NewServices(db.DB, tokens, router.ServiceOptions{
		Logger:      log,
		PDFRenderer: renderer,
	})

	engineCfg := router.EngineConfig{
		Logger:         log,
		Tokens:         tokens,
		CORS:           middleware.CORSConfig{AllowOrigins: mock.CORSAllowOrigins},
		Tracing:        middleware.TracingConfig{Enabled: cfg.Telemetry.Enabled, ServiceName: cfg.Telemetry.ServiceName + "-mockapi"},
		DB:             db,
		MaxUploadBytes: mock.MaxUploadMB << 20,
		TrustedProxies: mock.TrustedProxies,
	}
	if mock.MetricsEnabled {
		engineCfg.Metrics = metrics.New(metrics.DefaultConfig())
	}
	if mock.RateLimit > 0 {
		engineCfg.RateLimiter = middleware.NewRateLimiter(mock.RateLimit, mock.RateBurst)
	}

	engine, err := router.NewEngine(engineCfg, services)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + mock.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), mock.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

// newRenderer returns the configured PDF renderer, or nil when PDF export is disabled
func newRenderer(cfg config.MockAPIConfig, log *zap.Logger) (printing.PDFRenderer, error) {
	switch cfg.PDFRenderer {
	case "chromedp":
		return printing.NewChromedpRenderer(printing.ChromedpConfig{
			RemoteURL: cfg.ChromeURL,
			NoSandbox: os.Geteuid() == 0,
			Logger:    log.Named("chromedp"),
		}), nil
	case "wkhtmltopdf":
		r, err := printing.NewWkhtmltopdfRenderer(printing.WkhtmltopdfConfig{
			BinaryPath: cfg.WkhtmltopdfPath,
			Logger:     log.Named("wkhtmltopdf"),
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, nil
	}
}
