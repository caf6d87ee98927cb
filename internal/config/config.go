package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Store     StoreConfig
	Scanner   ScannerConfig
	Outbox    OutboxConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

// StoreConfig identifies the store reminder messages are sent on behalf
// of. These values feed the message token table.
type StoreConfig struct {
	Name           string `mapstructure:"name"`
	URL            string `mapstructure:"url"`
	Email          string `mapstructure:"email"`
	CompanyName    string `mapstructure:"company_name"`
	CompanyAddress string `mapstructure:"company_address"`
	CompanyPhone   string `mapstructure:"company_phone"`
	CompanyVat     string `mapstructure:"company_vat"`
	TwitterURL     string `mapstructure:"twitter_url"`
	FacebookURL    string `mapstructure:"facebook_url"`
	YouTubeURL     string `mapstructure:"youtube_url"`
}

type ScannerConfig struct {
	Interval        time.Duration `mapstructure:"interval"`
	ProductCacheTTL time.Duration `mapstructure:"product_cache_ttl"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.timeoutSeconds", 30)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.expiry_hours", 24)
	viper.SetDefault("scanner.interval", time.Hour)
	viper.SetDefault("scanner.product_cache_ttl", 5*time.Minute)
	viper.SetDefault("outbox.batch_size", 100)
	viper.SetDefault("outbox.poll_interval", 5*time.Second)
	viper.SetDefault("outbox.retry_attempts", 3)
	viper.SetDefault("outbox.retry_delay", time.Second)
	viper.SetDefault("rate_limit.requests_per_second", 50.0)
	viper.SetDefault("rate_limit.burst", 100)
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// WorkerOverrides are environment knobs applied on top of the config file
// for the scan worker, keyed by the REMINDER_ prefix.
type WorkerOverrides struct {
	ScanInterval time.Duration `envconfig:"SCAN_INTERVAL"`
	HealthPort   int           `envconfig:"HEALTH_PORT" default:"8081"`
}

func LoadWorkerOverrides() (*WorkerOverrides, error) {
	var o WorkerOverrides
	if err := envconfig.Process("REMINDER", &o); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &o, nil
}
