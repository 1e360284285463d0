package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

/* Config is the process configuration, read from an optional .env file and the environment.
 * Per-driver settings live in the connections file, not here.
 */
type Config struct {
	Port     string `mapstructure:"PORT"`
	Debug    bool   `mapstructure:"DEBUG"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogJSON  bool   `mapstructure:"LOG_JSON"`

	WebhookPrefix         string `mapstructure:"WEBHOOK_PREFIX"`
	DefaultDriver         string `mapstructure:"AUTOMATION_DRIVER"`
	ConnectionsFile       string `mapstructure:"CONNECTIONS_FILE"`
	WebhookLoggingEnabled bool   `mapstructure:"WEBHOOK_LOGGING_ENABLED"`
	MaxBodyBytes          int64  `mapstructure:"MAX_BODY_BYTES"`

	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	SQLitePath    string `mapstructure:"SQLITE_PATH"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	RateLimitBackend  string `mapstructure:"RATE_LIMIT_BACKEND"`
	RateLimitInbound  bool   `mapstructure:"RATE_LIMIT_INBOUND"`
	RateLimitOutbound bool   `mapstructure:"RATE_LIMIT_OUTBOUND"`

	EventsRedisEnabled  bool   `mapstructure:"EVENTS_REDIS_ENABLED"`
	EventsChannelPrefix string `mapstructure:"EVENTS_CHANNEL_PREFIX"`

	QueueEnabled     bool `mapstructure:"QUEUE_ENABLED"`
	QueueMaxAttempts int  `mapstructure:"QUEUE_MAX_ATTEMPTS"`

	HTTPClientTimeout time.Duration `mapstructure:"HTTP_CLIENT_TIMEOUT"`
	MetricsEnabled    bool          `mapstructure:"METRICS_ENABLED"`
}

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

var defaults = map[string]any{
	"PORT":                    "8080",
	"DEBUG":                   false,
	"LOG_LEVEL":               "info",
	"LOG_JSON":                true,
	"WEBHOOK_PREFIX":          "webhooks",
	"AUTOMATION_DRIVER":       "slack",
	"CONNECTIONS_FILE":        "automation.yaml",
	"WEBHOOK_LOGGING_ENABLED": true,
	"MAX_BODY_BYTES":          int64(1 << 20),
	"STORAGE_DRIVER":          StorageSQLite,
	"SQLITE_PATH":             "automation.db",
	"DATABASE_URL":            "",
	"DB_MAX_CONNS":            10,
	"REDIS_ADDR":              "localhost:6379",
	"REDIS_PASSWORD":          "",
	"REDIS_DB":                0,
	"RATE_LIMIT_BACKEND":      "memory",
	"RATE_LIMIT_INBOUND":      false,
	"RATE_LIMIT_OUTBOUND":     true,
	"EVENTS_REDIS_ENABLED":    false,
	"EVENTS_CHANNEL_PREFIX":   "automation.webhook",
	"QUEUE_ENABLED":           false,
	"QUEUE_MAX_ATTEMPTS":      3,
	"HTTP_CLIENT_TIMEOUT":     "30s",
	"METRICS_ENABLED":         true,
}

func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads dir/.env when present; environment variables win over the file
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StorageRedis:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL cannot be empty when STORAGE_DRIVER is postgres")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be positive")
	}
	if c.QueueMaxAttempts <= 0 {
		return errors.New("QUEUE_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// UsesRedis reports whether any configured component needs a Redis client
func (c *Config) UsesRedis() bool {
	return c.StorageDriver == StorageRedis || c.RateLimitBackend == "redis" || c.EventsRedisEnabled || c.QueueEnabled
}
