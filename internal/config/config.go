package config

import (
	"fmt"
	"slices"
	"time"

	pkgconfig "github.com/alageshkumardev-create/FitzdoPoc/pkg/config"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/database"
	"github.com/alageshkumardev-create/FitzdoPoc/pkg/tracing"
)

// ServiceName identifies the catalog service in logs, metrics and traces.
const ServiceName = "catalog"

// Product store backends.
const (
	StoreMemory        = "memory"
	StoreMongo         = "mongo"
	StorePostgres      = "postgres"
	StoreElasticsearch = "elasticsearch"
)

// Cart store backends.
const (
	CartStoreMemory = "memory"
	CartStoreRedis  = "redis"
)

var (
	productStores = []string{StoreMemory, StoreMongo, StorePostgres, StoreElasticsearch}
	cartStores    = []string{CartStoreMemory, CartStoreRedis}
)

// Config holds all configuration for the catalog service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"CATALOG_HTTP_PORT" envDefault:"8001"`
	RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	PprofCIDRs      []string      `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32,::1/128" envSeparator:","`

	// Per-client rate limiting; zero RPS disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	ProductCacheMaxAge time.Duration `env:"PRODUCT_CACHE_MAX_AGE" envDefault:"30s"`

	// Product store selection
	Store       string `env:"CATALOG_STORE" envDefault:"memory"`
	SeedOnStart bool   `env:"SEED_ON_START" envDefault:"false"`

	// MongoDB
	MongoURI        string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase   string `env:"MONGO_DATABASE" envDefault:"fitzdo"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"products"`
	MongoTextSearch bool   `env:"MONGO_TEXT_SEARCH" envDefault:"false"`

	// PostgreSQL
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"fitzdo"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"fitzdo"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"fitzdo"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	PostgresMaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`

	// Elasticsearch
	ElasticsearchURL      string `env:"ELASTICSEARCH_URL" envDefault:"http://localhost:9200"`
	ElasticsearchIndex    string `env:"ELASTICSEARCH_INDEX" envDefault:"fitzdo_products"`
	ElasticsearchUsername string `env:"ELASTICSEARCH_USERNAME" envDefault:""`
	ElasticsearchPassword string `env:"ELASTICSEARCH_PASSWORD" envDefault:""`

	// Cart
	CartStore string `env:"CART_STORE" envDefault:"memory"`
	CartTTL   int    `env:"CART_TTL_HOURS" envDefault:"168"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Queries slower than this are logged at warn. Zero disables.
	SlowQueryMS int `env:"LOG_SLOW_QUERY_MS" envDefault:"200"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithEnvironment(nil)
}

// LoadWithEnvironment reads configuration from environment instead of the
// process environment when it is non-nil.
func LoadWithEnvironment(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.LoadWithEnvironment(cfg, environment); err != nil {
		return nil, fmt.Errorf("load catalog config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains(productStores, c.Store) {
		return fmt.Errorf("CATALOG_STORE must be one of %v, got %q", productStores, c.Store)
	}
	if !slices.Contains(cartStores, c.CartStore) {
		return fmt.Errorf("CART_STORE must be one of %v, got %q", cartStores, c.CartStore)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("CART_TTL_HOURS must be positive, got %d", c.CartTTL)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %g", c.OTELSampleRate)
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %g", c.RateLimitRPS)
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be positive when rate limiting is enabled, got %d", c.RateLimitBurst)
	}
	if c.SlowQueryMS < 0 {
		return fmt.Errorf("LOG_SLOW_QUERY_MS must not be negative, got %d", c.SlowQueryMS)
	}
	return nil
}

// CartTTLDuration returns the cart expiry as a duration.
func (c *Config) CartTTLDuration() time.Duration {
	return time.Duration(c.CartTTL) * time.Hour
}

// SlowQueryThreshold returns the slow query logging threshold.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// Postgres returns the PostgreSQL pool configuration.
func (c *Config) Postgres() database.PostgresConfig {
	pg := database.DefaultPostgresConfig()
	pg.Host = c.PostgresHost
	pg.Port = c.PostgresPort
	pg.User = c.PostgresUser
	pg.Password = c.PostgresPassword
	pg.DBName = c.PostgresDB
	pg.SSLMode = c.PostgresSSLMode
	pg.MaxConns = c.PostgresMaxConns
	return pg
}

// Mongo returns the MongoDB client configuration.
func (c *Config) Mongo() database.MongoConfig {
	m := database.DefaultMongoConfig()
	m.URI = c.MongoURI
	m.Database = c.MongoDatabase
	return m
}

// Redis returns the Redis client configuration.
func (c *Config) Redis() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.RedisHost,
		Port:     c.RedisPort,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// Tracing returns the OpenTelemetry configuration.
func (c *Config) Tracing() tracing.Config {
	t := tracing.DefaultConfig(ServiceName)
	t.Environment = c.Environment
	t.OTLPEndpoint = c.OTELEndpoint
	t.SampleRate = c.OTELSampleRate
	t.Enabled = c.OTELEnabled
	return t
}
