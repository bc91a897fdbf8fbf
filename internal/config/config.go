package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Reco       RecoConfig       `mapstructure:"recommendation"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Feedback string `mapstructure:"feedback"`
	} `mapstructure:"topics"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CatalogConfig selects where items come from: a schema-validated
// products file or the catalog_items table.
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type RecoConfig struct {
	EngagedWeight  float64       `mapstructure:"engaged_weight"`
	TopK           int           `mapstructure:"top_k"`
	FallbackLimit  int           `mapstructure:"fallback_limit"`
	DefaultLimit   int           `mapstructure:"default_limit"`
	UserCacheTTL   time.Duration `mapstructure:"user_cache_ttl"`
	MatrixTTL      time.Duration `mapstructure:"matrix_ttl"`
	StoreTimeout   time.Duration `mapstructure:"store_timeout"`
	RebuildTimeout time.Duration `mapstructure:"rebuild_timeout"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Kafka defaults
	viper.SetDefault("kafka.topics.feedback", "reco.feedback")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Catalog defaults
	viper.SetDefault("catalog.source", "file")
	viper.SetDefault("catalog.path", "./data/products.json")

	// Recommendation defaults
	viper.SetDefault("recommendation.engaged_weight", 0.6)
	viper.SetDefault("recommendation.top_k", 10)
	viper.SetDefault("recommendation.fallback_limit", 5)
	viper.SetDefault("recommendation.default_limit", 5)
	viper.SetDefault("recommendation.user_cache_ttl", "24h")
	viper.SetDefault("recommendation.matrix_ttl", "1h")
	viper.SetDefault("recommendation.store_timeout", "5s")
	viper.SetDefault("recommendation.rebuild_timeout", "30s")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
