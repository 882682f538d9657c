package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp runs the test from an empty directory so no stray config.toml or .env is picked up
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		chdirTemp(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "erp-dashboard", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "http://localhost:5194/api", cfg.API.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.API.Timeout)
		assert.Equal(t, "file", cfg.Session.Store)
		assert.Equal(t, 2*time.Second, cfg.Polling.Interval)
		assert.Equal(t, 20, cfg.Listing.PageSize)
		assert.Equal(t, 500*time.Millisecond, cfg.Listing.SearchDebounce)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "erp-dashboard", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Storage.Enabled)
		assert.Equal(t, "5194", cfg.MockAPI.Port)
		assert.Equal(t, "none", cfg.MockAPI.PDFRenderer)
		assert.EqualValues(t, 10, cfg.MockAPI.MaxUploadMB)
		assert.Zero(t, cfg.MockAPI.RateLimit)
		assert.False(t, cfg.MockAPI.DBTracing)
		assert.Equal(t, 200*time.Millisecond, cfg.MockAPI.SlowQueryThreshold)
	})

	t.Run("loads values from environment variables with DASHBOARD prefix", func(t *testing.T) {
		chdirTemp(t)
		t.Setenv("DASHBOARD_API_BASE_URL", "https://inventory.example.com/api")
		t.Setenv("DASHBOARD_SESSION_STORE", "redis")
		t.Setenv("DASHBOARD_POLLING_INTERVAL", "5s")
		t.Setenv("DASHBOARD_LISTING_PAGE_SIZE", "50")
		t.Setenv("DASHBOARD_REDIS_PORT", "6380")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "https://inventory.example.com/api", cfg.API.BaseURL)
		assert.Equal(t, "redis", cfg.Session.Store)
		assert.Equal(t, 5*time.Second, cfg.Polling.Interval)
		assert.Equal(t, 50, cfg.Listing.PageSize)
		assert.Equal(t, 6380, cfg.Redis.Port)
	})

	t.Run("reads config.toml and .env", func(t *testing.T) {
		dir := chdirTemp(t)
		toml := "[api]\nbase_url = \"http://toml.local/api\"\nrate_limit = 5.0\n\n[listing]\npage_size = 10\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o600))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DASHBOARD_APP_NAME=from-dotenv\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("DASHBOARD_APP_NAME") })

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "http://toml.local/api", cfg.API.BaseURL)
		assert.Equal(t, 5.0, cfg.API.RateLimit)
		assert.Equal(t, 10, cfg.Listing.PageSize)
		assert.Equal(t, "from-dotenv", cfg.App.Name)
	})

	t.Run("explicit file must exist", func(t *testing.T) {
		dir := chdirTemp(t)
		_, err := LoadFile(filepath.Join(dir, "missing.toml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "relative base url", mutate: func(c *Config) { c.API.BaseURL = "/api" }, wantErr: "api.base_url"},
		{name: "unknown session store", mutate: func(c *Config) { c.Session.Store = "cookie" }, wantErr: "session.store"},
		{name: "page size outside options", mutate: func(c *Config) { c.Listing.PageSize = 25 }, wantErr: "listing.page_size"},
		{name: "polling too fast", mutate: func(c *Config) { c.Polling.Interval = time.Millisecond }, wantErr: "polling.interval"},
		{name: "sampling ratio out of range", mutate: func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, wantErr: "sampling_ratio"},
		{name: "negative rate limit", mutate: func(c *Config) { c.API.RateLimit = -1 }, wantErr: "rate_limit"},
		{name: "unknown pdf renderer", mutate: func(c *Config) { c.MockAPI.PDFRenderer = "prince" }, wantErr: "mockapi.pdf_renderer"},
		{name: "zero upload limit", mutate: func(c *Config) { c.MockAPI.MaxUploadMB = 0 }, wantErr: "max_upload_mb"},
		{name: "unknown db driver", mutate: func(c *Config) { c.MockAPI.Driver = "mysql" }, wantErr: "mockapi.driver"},
		{
			name: "postgres needs a dsn",
			mutate: func(c *Config) {
				c.MockAPI.Driver = "postgres"
				c.MockAPI.DSN = ""
			},
			wantErr: "mockapi.dsn",
		},
		{
			name: "production requires https",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.MockAPI.JWTSecret = "0123456789abcdef0123456789abcdef"
			},
			wantErr: "https",
		},
		{
			name: "production requires long secret",
			mutate: func(c *Config) {
				c.App.Env = "production"
				c.API.BaseURL = "https://api.example.com"
				c.MockAPI.JWTSecret = "short"
			},
			wantErr: "jwt_secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
