package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultSlowQueryThreshold marks statements of the fake API as slow
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled            bool
	LogFullSQL         bool // keep query variables in db.statement (dev only)
	SlowQueryThreshold time.Duration
	TracerProvider     trace.TracerProvider // nil uses the global provider
}

// DBTracing registers otelgorm on a gorm DB and flags slow statements on its spans.
type DBTracing struct {
	cfg    DBTracingConfig
	logger *zap.Logger
}

// NewDBTracing creates the plugin. A non-positive threshold uses DefaultSlowQueryThreshold.
func NewDBTracing(cfg DBTracingConfig, logger *zap.Logger) *DBTracing {
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = DefaultSlowQueryThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracing{cfg: cfg, logger: logger}
}

type queryStartKey struct{}

type gormHook = func(*gorm.DB)

// registerTiming places before ahead of gorm's own callback and after between
// it and otelgorm's after hook, which ends the span
func registerTiming(db *gorm.DB, before, after gormHook) error {
	cb := db.Callback()
	steps := []struct {
		name string
		reg  func(string, gormHook) error
	}{
		{"create_before", cb.Create().Before("gorm:create").Register},
		{"create_after", cb.Create().After("gorm:create").Before("otel:after:create").Register},
		{"query_before", cb.Query().Before("gorm:query").Register},
		{"query_after", cb.Query().After("gorm:query").Before("otel:after:select").Register},
		{"update_before", cb.Update().Before("gorm:update").Register},
		{"update_after", cb.Update().After("gorm:update").Before("otel:after:update").Register},
		{"delete_before", cb.Delete().Before("gorm:delete").Register},
		{"delete_after", cb.Delete().After("gorm:delete").Before("otel:after:delete").Register},
		{"row_before", cb.Row().Before("gorm:row").Register},
		{"row_after", cb.Row().After("gorm:row").Before("otel:after:row").Register},
		{"raw_before", cb.Raw().Before("gorm:raw").Register},
		{"raw_after", cb.Raw().After("gorm:raw").Before("otel:after:raw").Register},
	}
	for _, st := range steps {
		fn := after
		if strings.HasSuffix(st.name, "_before") {
			fn = before
		}
		if err := st.reg("dashboard:timing_"+st.name, fn); err != nil {
			return err
		}
	}
	return nil
}

// Register installs otelgorm and the slow-statement callbacks. It is a no-op when disabled.
func (t *DBTracing) Register(db *gorm.DB) error {
	if !t.cfg.Enabled {
		t.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithoutMetrics()}
	if !t.cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if t.cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(t.cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	if err := registerTiming(db, markStart, t.flagSlow); err != nil {
		return err
	}

	t.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", t.cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", t.cfg.SlowQueryThreshold),
		zap.String("dialect", db.Dialector.Name()),
	)
	return nil
}

func markStart(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
}

func (t *DBTracing) flagSlow(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= t.cfg.SlowQueryThreshold {
		return
	}

	t.logger.Warn("Slow database statement",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
	)
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Bool("db.slow_query", true),
		attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
	)
	span.AddEvent("slow_query", trace.WithAttributes(
		attribute.Int64("threshold_ms", t.cfg.SlowQueryThreshold.Milliseconds()),
	))
}
