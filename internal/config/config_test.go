package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.HTTPPort)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, CartStoreMemory, cfg.CartStore)
	assert.Equal(t, 168, cfg.CartTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.CartTTLDuration())
	assert.Equal(t, "products", cfg.MongoCollection)
	assert.Equal(t, "fitzdo_products", cfg.ElasticsearchIndex)
	assert.False(t, cfg.SeedOnStart)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"127.0.0.1/32", "::1/128"}, cfg.PprofCIDRs)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Zero(t, cfg.RateLimitRPS)
	assert.Equal(t, 20, cfg.RateLimitBurst)
	assert.Equal(t, 30*time.Second, cfg.ProductCacheMaxAge)
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("CATALOG_STORE", "postgres")
	t.Setenv("POSTGRES_HOST", "db.internal")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "db.internal", cfg.Postgres().Host)
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{"CATALOG_HTTP_PORT": "0"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_UnknownStore(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{"CATALOG_STORE": "sqlite"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CATALOG_STORE")
}

func TestLoad_UnknownCartStore(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{"CART_STORE": "memcached"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CART_STORE")
}

func TestLoad_InvalidOTELSampleRate(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{"OTEL_SAMPLE_RATE": "2.0"})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OTEL_SAMPLE_RATE must be between 0.0 and 1.0")
}

func TestLoad_InvalidCartTTL(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{"CART_TTL_HOURS": "0"})

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_MalformedValue(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{"SEED_ON_START": "maybe"})

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestConfig_DerivedConfigs(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{
		"MONGO_URI":          "mongodb://mongo:27017",
		"MONGO_DATABASE":     "shop",
		"REDIS_HOST":         "cache",
		"REDIS_PORT":         "6380",
		"OTEL_ENABLED":       "true",
		"OTEL_SAMPLE_RATE":   "0.25",
		"ENVIRONMENT":        "staging",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
		"KAFKA_ENABLED":      "true",
		"POSTGRES_MAX_CONNS": "25",
	})
	require.NoError(t, err)

	assert.Equal(t, "mongodb://mongo:27017", cfg.Mongo().URI)
	assert.Equal(t, "shop", cfg.Mongo().Database)
	assert.Equal(t, "cache:6380", cfg.Redis().Addr())
	assert.Equal(t, int32(25), cfg.Postgres().MaxConns)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)

	tr := cfg.Tracing()
	assert.True(t, tr.Enabled)
	assert.Equal(t, ServiceName, tr.ServiceName)
	assert.Equal(t, "staging", tr.Environment)
	assert.InDelta(t, 0.25, tr.SampleRate, 1e-9)
}

func TestLoad_RateLimitBurstRequiredWhenEnabled(t *testing.T) {
	cfg, err := LoadWithEnvironment(map[string]string{
		"RATE_LIMIT_RPS":   "5",
		"RATE_LIMIT_BURST": "0",
	})

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_BURST")
}
