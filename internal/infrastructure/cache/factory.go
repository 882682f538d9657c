package cache

import (
	"fmt"

	"github.com/erp/dashboard/internal/infrastructure/auth"
	"github.com/erp/dashboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SessionStoreFactory creates session stores based on configuration
type SessionStoreFactory struct {
	sessionConfig         config.SessionConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SessionStoreFactoryOption is a functional option for configuring the factory
type SessionStoreFactoryOption func(*SessionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to in-memory store when Redis is unavailable.
// Default is true.
func WithInMemoryFallback(allow bool) SessionStoreFactoryOption {
	return func(f *SessionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSessionStoreFactory creates a new factory
func NewSessionStoreFactory(sessionCfg config.SessionConfig, redisCfg config.RedisConfig, opts ...SessionStoreFactoryOption) *SessionStoreFactory {
	f := &SessionStoreFactory{
		sessionConfig:         sessionCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore builds the store selected by session.store for the given profile
func (f *SessionStoreFactory) CreateStore(profile string) (auth.SessionStore, error) {
	switch f.sessionConfig.Store {
	case "memory":
		return NewInMemorySessionStore(), nil
	case "file":
		path := f.sessionConfig.FilePath
		if path == "" {
			var err error
			if path, err = DefaultSessionPath(); err != nil {
				return nil, err
			}
		}
		f.logger.Debug("using file session store", zap.String("path", path))
		return NewFileSessionStore(path), nil
	case "redis":
		return f.createRedisStore(profile)
	default:
		return nil, fmt.Errorf("unknown session store %q", f.sessionConfig.Store)
	}
}

func (f *SessionStoreFactory) createRedisStore(profile string) (auth.SessionStore, error) {
	store, err := NewRedisSessionStore(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.sessionConfig.KeyPrefix, profile, f.sessionConfig.TTL)
	if err == nil {
		f.logger.Info("using Redis session store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for sessions but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session store. "+
		"The login will not survive this process.",
		zap.Error(err),
	)
	return NewInMemorySessionStore(), nil
}
