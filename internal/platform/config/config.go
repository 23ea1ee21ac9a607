package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "afi/pkg/platform/strings"
)

// Config captures process level configuration.
type Config struct {
	Server    Server
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Ingest    IngestConfig
	Dashboard DashboardConfig
	LogLevel  string
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the PostgreSQL record store. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig configures the record cache. An empty URL selects the
// in-process cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures dataset-replaced notifications. No brokers disables them.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig configures operator tokens for the ingestion endpoints.
type AuthConfig struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
}

// IngestConfig shapes bulk replacement.
type IngestConfig struct {
	BatchSize  int
	WindowSize int
}

// DashboardConfig shapes the read path.
type DashboardConfig struct {
	CacheTTL     time.Duration
	MockFallback bool
}

// Defaults used when the environment is silent.
const (
	DefaultBatchSize  = 1000
	DefaultWindowSize = 5
	DefaultCacheTTL   = 5 * time.Minute
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envString("AFI_ADDR", ":8080"),
			RequestTimeout:  envDuration("AFI_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: envDuration("AFI_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envString("KAFKA_TOPIC", "afi.dataset.replaced"),
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			SigningKey: envString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     envString("JWT_ISSUER", "afi-dashboard"),
			TokenTTL:   envDuration("JWT_TOKEN_TTL", time.Hour),
		},
		Ingest: IngestConfig{
			BatchSize:  envInt("INGEST_BATCH_SIZE", DefaultBatchSize),
			WindowSize: envInt("INGEST_WINDOW", DefaultWindowSize),
		},
		Dashboard: DashboardConfig{
			CacheTTL:     envDuration("CACHE_TTL", DefaultCacheTTL),
			MockFallback: envBool("MOCK_FALLBACK", true),
		},
		LogLevel: envString("LOG_LEVEL", "info"),
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func envList(key string) []string {
	return pstrings.SplitList(os.Getenv(key), ",")
}
