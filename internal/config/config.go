package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Token    TokenConfig    `mapstructure:"token"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Grid     GridConfig     `mapstructure:"grid"`
	Auth     AuthConfig     `mapstructure:"auth"`
	API      APIConfig      `mapstructure:"api"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ProviderConfig defines the upstream fitness provider endpoints and
// application credentials.
type ProviderConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	AuthorizeURL string `mapstructure:"authorize_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Scope        string `mapstructure:"scope"`
	HTTPTimeout  string `mapstructure:"http_timeout"`
}

// TokenConfig defines token lifecycle behavior
type TokenConfig struct {
	// ExpiryLeeway treats a token as expired this long before its
	// provider-reported expiry, absorbing clock skew between us and the
	// provider.
	ExpiryLeeway string `mapstructure:"expiry_leeway"`
}

// SyncConfig defines sync scheduling and lookback behavior
type SyncConfig struct {
	Interval string `mapstructure:"interval"`
	// LookbackDays is the rolling activity window re-derived on every
	// sync. It is deliberately independent of grid.weeks.
	LookbackDays int `mapstructure:"lookback_days"`
}

// GridConfig defines the heatmap display window
type GridConfig struct {
	Weeks int `mapstructure:"weeks"`
}

// AuthConfig defines the local OAuth callback capture
type AuthConfig struct {
	CallbackPort int    `mapstructure:"callback_port"`
	BindAddress  string `mapstructure:"bind_address"`
}

// APIConfig defines the read-only widget API
type APIConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Port          int    `mapstructure:"port"`
	BindAddress   string `mapstructure:"bind_address"`
	GridCacheSize int    `mapstructure:"grid_cache_size"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig defines the Prometheus metrics endpoint
type MetricsConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Port        int    `mapstructure:"port"`
	BindAddress string `mapstructure:"bind_address"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("HEATSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Provider defaults
	v.SetDefault("provider.base_url", "https://www.strava.com")
	v.SetDefault("provider.authorize_url", "https://www.strava.com/oauth/authorize")
	v.SetDefault("provider.scope", "activity:read_all")
	v.SetDefault("provider.http_timeout", "30s")

	// Token defaults
	v.SetDefault("token.expiry_leeway", "60s")

	// Sync defaults
	v.SetDefault("sync.interval", "15m")
	v.SetDefault("sync.lookback_days", 91)

	// Grid defaults
	v.SetDefault("grid.weeks", 13)

	// Auth callback defaults
	v.SetDefault("auth.callback_port", 8723)
	v.SetDefault("auth.bind_address", "127.0.0.1")

	// API defaults
	v.SetDefault("api.enabled", true)
	v.SetDefault("api.port", 8724)
	v.SetDefault("api.bind_address", "127.0.0.1")
	v.SetDefault("api.grid_cache_size", 32)

	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "/var/lib/heatsync/heatsync.bolt")
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 5)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9724)
	v.SetDefault("metrics.bind_address", "127.0.0.1")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Provider.BaseURL == "" {
		return fmt.Errorf("provider base_url is required")
	}

	if cfg.Sync.LookbackDays <= 0 {
		return fmt.Errorf("sync lookback_days must be positive: %d", cfg.Sync.LookbackDays)
	}

	if cfg.Grid.Weeks <= 0 {
		return fmt.Errorf("grid weeks must be positive: %d", cfg.Grid.Weeks)
	}

	switch cfg.Storage.Type {
	case "", "bolt":
		cfg.Storage.Type = "bolt"
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required for bolt storage")
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("redis host is required for redis storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}

	if cfg.API.Enabled && (cfg.API.Port <= 0 || cfg.API.Port > 65535) {
		return fmt.Errorf("invalid API port: %d", cfg.API.Port)
	}
	if cfg.Metrics.Enabled && (cfg.Metrics.Port <= 0 || cfg.Metrics.Port > 65535) {
		return fmt.Errorf("invalid metrics port: %d", cfg.Metrics.Port)
	}
	if cfg.Auth.CallbackPort <= 0 || cfg.Auth.CallbackPort > 65535 {
		return fmt.Errorf("invalid callback port: %d", cfg.Auth.CallbackPort)
	}

	return nil
}
