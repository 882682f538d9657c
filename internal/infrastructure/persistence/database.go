package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/dashboard/internal/infrastructure/logger"
	"github.com/erp/dashboard/internal/infrastructure/persistence/models"
	"github.com/erp/dashboard/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultDSN is a private in-memory database shared by all connections of one pool
const DefaultDSN = "file:mockapi?mode=memory&cache=shared&_busy_timeout=5000"

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

type databaseOptions struct {
	gorm    *gorm.Config
	tracing *telemetry.DBTracing
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

// WithLogger routes GORM logs through zap at the given level
func WithLogger(l *zap.Logger, level gormlogger.LogLevel) DatabaseOption {
	return func(o *databaseOptions) {
		o.gorm.Logger = logger.NewGormLogger(l, level)
	}
}

// WithTracing wraps every statement issued after migration in a span
func WithTracing(t *telemetry.DBTracing) DatabaseOption {
	return func(o *databaseOptions) {
		o.tracing = t
	}
}

// NewDatabase opens the database at dsn with the named driver and migrates every model.
// An empty driver means sqlite; an empty sqlite dsn means DefaultDSN.
func NewDatabase(driver, dsn string, opts ...DatabaseOption) (*Database, error) {
	dialector, err := openDialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	o := databaseOptions{gorm: &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	}}
	for _, opt := range opts {
		opt(&o)
	}

	db, err := gorm.Open(dialector, o.gorm)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if dialector.Name() == DriverSQLite {
		// sqlite allows one writer; a single connection also keeps a memory database alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if o.tracing != nil {
		if err := o.tracing.Register(db); err != nil {
			return nil, fmt.Errorf("failed to register database tracing: %w", err)
		}
	}
	return &Database{DB: db}, nil
}

func openDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "", DriverSQLite:
		if dsn == "" {
			dsn = DefaultDSN
		}
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres requires a dsn")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}
