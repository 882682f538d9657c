package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all dashboard configuration
type Config struct {
	App       AppConfig
	API       APIConfig
	Session   SessionConfig
	Redis     RedisConfig
	Storage   StorageConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	Polling   PollingConfig
	Listing   ListingConfig
	MockAPI   MockAPIConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// APIConfig describes the remote inventory API
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
	UserAgent string
}

// SessionConfig selects where the authenticated session is persisted
type SessionConfig struct {
	Store     string // memory, file, redis
	FilePath  string
	KeyPrefix string
	TTL       time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// StorageConfig configures the S3-compatible archive for uploaded workbooks
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	Prefix          string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
}

// PollingConfig controls background job polling
type PollingConfig struct {
	Interval time.Duration
}

// ListingConfig controls list screens
type ListingConfig struct {
	PageSize       int
	SearchDebounce time.Duration
}

// MockAPIConfig configures the fake inventory API server
type MockAPIConfig struct {
	Port             string
	Driver           string
	DSN              string
	JWTSecret        string
	TokenTTL         time.Duration
	Seed             int64
	SeedProducts     int
	SeedSales        int
	CORSAllowOrigins []string
	MetricsEnabled   bool
	RateLimit        float64 // requests per second per client IP, 0 disables limiting
	RateBurst        int
	MaxUploadMB      int64
	TrustedProxies   []string
	PDFRenderer      string // none, chromedp, wkhtmltopdf
	ChromeURL        string
	WkhtmltopdfPath  string
	ShutdownTimeout  time.Duration

	DBTracing          bool // spans for every gorm statement, needs telemetry.enabled
	DBTracingFullSQL   bool // keep query variables in the span statement
	SlowQueryThreshold time.Duration
}

var (
	sessionStores = []string{"memory", "file", "redis"}
	dbDrivers     = []string{"sqlite", "postgres"}
	pdfRenderers  = []string{"none", "chromedp", "wkhtmltopdf"}
	pageSizes     = []int{10, 20, 50, 100}
)

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DASHBOARD_ prefix (e.g., DASHBOARD_API_BASE_URL), including those from .env
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/erp-dashboard")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("DASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		API: APIConfig{
			BaseURL:   v.GetString("api.base_url"),
			Timeout:   v.GetDuration("api.timeout"),
			RateLimit: v.GetFloat64("api.rate_limit"),
			Burst:     v.GetInt("api.burst"),
			UserAgent: v.GetString("api.user_agent"),
		},
		Session: SessionConfig{
			Store:     v.GetString("session.store"),
			FilePath:  v.GetString("session.file_path"),
			KeyPrefix: v.GetString("session.key_prefix"),
			TTL:       v.GetDuration("session.ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			Prefix:          v.GetString("storage.prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
		},
		Polling: PollingConfig{
			Interval: v.GetDuration("polling.interval"),
		},
		Listing: ListingConfig{
			PageSize:       v.GetInt("listing.page_size"),
			SearchDebounce: v.GetDuration("listing.search_debounce"),
		},
		MockAPI: MockAPIConfig{
			Port:             v.GetString("mockapi.port"),
			Driver:           v.GetString("mockapi.driver"),
			DSN:              v.GetString("mockapi.dsn"),
			JWTSecret:        v.GetString("mockapi.jwt_secret"),
			TokenTTL:         v.GetDuration("mockapi.token_ttl"),
			Seed:             v.GetInt64("mockapi.seed"),
			SeedProducts:     v.GetInt("mockapi.seed_products"),
			SeedSales:        v.GetInt("mockapi.seed_sales"),
			CORSAllowOrigins: v.GetStringSlice("mockapi.cors_allow_origins"),
			MetricsEnabled:   v.GetBool("mockapi.metrics_enabled"),
			RateLimit:        v.GetFloat64("mockapi.rate_limit"),
			RateBurst:        v.GetInt("mockapi.rate_burst"),
			MaxUploadMB:      v.GetInt64("mockapi.max_upload_mb"),
			TrustedProxies:   v.GetStringSlice("mockapi.trusted_proxies"),
			PDFRenderer:      v.GetString("mockapi.pdf_renderer"),
			ChromeURL:        v.GetString("mockapi.chrome_url"),
			WkhtmltopdfPath:  v.GetString("mockapi.wkhtmltopdf_path"),
			ShutdownTimeout:  v.GetDuration("mockapi.shutdown_timeout"),

			DBTracing:          v.GetBool("mockapi.db_tracing"),
			DBTracingFullSQL:   v.GetBool("mockapi.db_tracing_full_sql"),
			SlowQueryThreshold: v.GetDuration("mockapi.slow_query_threshold"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "erp-dashboard"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:5194/api"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.Burst == 0 {
		cfg.API.Burst = 10
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "erp-dashboard/1.0"
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = "file"
	}
	if cfg.Session.KeyPrefix == "" {
		cfg.Session.KeyPrefix = "dashboard:session:"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 24 * time.Hour
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.Bucket == "" {
		cfg.Storage.Bucket = "dashboard-imports"
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "imports"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Polling.Interval == 0 {
		cfg.Polling.Interval = 2 * time.Second
	}
	if cfg.Listing.PageSize == 0 {
		cfg.Listing.PageSize = 20
	}
	if cfg.Listing.SearchDebounce == 0 {
		cfg.Listing.SearchDebounce = 500 * time.Millisecond
	}
	if cfg.MockAPI.SlowQueryThreshold == 0 {
		cfg.MockAPI.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.MockAPI.Port == "" {
		cfg.MockAPI.Port = "5194"
	}
	if cfg.MockAPI.Driver == "" {
		cfg.MockAPI.Driver = "sqlite"
	}
	if cfg.MockAPI.DSN == "" && cfg.MockAPI.Driver == "sqlite" {
		cfg.MockAPI.DSN = "file:mockapi?mode=memory&cache=shared&_busy_timeout=5000"
	}
	if cfg.MockAPI.JWTSecret == "" {
		cfg.MockAPI.JWTSecret = "dashboard-development-secret-change-me"
	}
	if cfg.MockAPI.TokenTTL == 0 {
		cfg.MockAPI.TokenTTL = 8 * time.Hour
	}
	if cfg.MockAPI.Seed == 0 {
		cfg.MockAPI.Seed = 42
	}
	if cfg.MockAPI.SeedProducts == 0 {
		cfg.MockAPI.SeedProducts = 60
	}
	if cfg.MockAPI.SeedSales == 0 {
		cfg.MockAPI.SeedSales = 45
	}
	if len(cfg.MockAPI.CORSAllowOrigins) == 0 {
		cfg.MockAPI.CORSAllowOrigins = []string{"*"}
	}
	if cfg.MockAPI.RateBurst == 0 {
		cfg.MockAPI.RateBurst = 20
	}
	if cfg.MockAPI.MaxUploadMB == 0 {
		cfg.MockAPI.MaxUploadMB = 10
	}
	if cfg.MockAPI.PDFRenderer == "" {
		cfg.MockAPI.PDFRenderer = "none"
	}
	if cfg.MockAPI.WkhtmltopdfPath == "" {
		cfg.MockAPI.WkhtmltopdfPath = "wkhtmltopdf"
	}
	if cfg.MockAPI.ShutdownTimeout == 0 {
		cfg.MockAPI.ShutdownTimeout = 15 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit cannot be negative")
	}
	if !slices.Contains(sessionStores, c.Session.Store) {
		return fmt.Errorf("session.store must be one of %v, got %q", sessionStores, c.Session.Store)
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Polling.Interval < 100*time.Millisecond {
		return fmt.Errorf("polling.interval must be at least 100ms, got %s", c.Polling.Interval)
	}
	if !slices.Contains(pageSizes, c.Listing.PageSize) {
		return fmt.Errorf("listing.page_size must be one of %v, got %d", pageSizes, c.Listing.PageSize)
	}

	if !slices.Contains(dbDrivers, c.MockAPI.Driver) {
		return fmt.Errorf("mockapi.driver must be one of %v, got %q", dbDrivers, c.MockAPI.Driver)
	}
	if c.MockAPI.DSN == "" {
		return fmt.Errorf("mockapi.dsn is required for the %s driver", c.MockAPI.Driver)
	}
	if !slices.Contains(pdfRenderers, c.MockAPI.PDFRenderer) {
		return fmt.Errorf("mockapi.pdf_renderer must be one of %v, got %q", pdfRenderers, c.MockAPI.PDFRenderer)
	}
	if c.MockAPI.RateLimit < 0 {
		return fmt.Errorf("mockapi.rate_limit cannot be negative")
	}
	if c.MockAPI.MaxUploadMB < 1 {
		return fmt.Errorf("mockapi.max_upload_mb must be positive, got %d", c.MockAPI.MaxUploadMB)
	}

	if c.App.Env == "production" {
		if len(c.MockAPI.JWTSecret) < 32 {
			return fmt.Errorf("mockapi.jwt_secret must be at least 32 characters in production")
		}
		if u.Scheme != "https" {
			return fmt.Errorf("api.base_url must use https in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}
