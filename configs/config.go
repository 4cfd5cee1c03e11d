package configs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Breaker   BreakerConfig
	Content   ContentConfig
	JWT       JWTConfig
	Visitor   VisitorConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	TLSCertFile    string
	TLSKeyFile     string
	MigrationsPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	DSN      string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// KeyPrefix namespaces every cache key ("" keeps the bare key shapes).
	KeyPrefix string
	// OpTimeout bounds each cache round-trip; a timeout is handled like any store failure.
	OpTimeout time.Duration
	// Pool and timeout settings
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
}

// BreakerConfig tunes the circuit breaker in front of the cache store.
type BreakerConfig struct {
	MinRequests  uint32
	FailureRatio float64
	Interval     time.Duration
	OpenTimeout  time.Duration
	HalfOpenMax  uint32
}

// ContentConfig holds the ranking and related-posts tunables.
type ContentConfig struct {
	RelatedLimit  int
	MinSimilarity float64
	RelatedTTL    time.Duration
	PopularLimit  int
}

type JWTConfig struct {
	// Secret signs editor hook tokens (HS256).
	Secret string
	Issuer string
}

type VisitorConfig struct {
	// HashSalt is mixed into visitor hashes so they cannot be reversed to IP addresses.
	HashSalt string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

type RateLimitConfig struct {
	LikesPerWindow int
	Window         time.Duration
	KeyPrefix      string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnv("SERVER_PORT", "8080"),
			ReadTimeout:    getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:   getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:    getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:     getEnv("TLS_KEY_FILE", ""),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			DBName:          getEnv("DB_NAME", "blog"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			KeyPrefix:    getEnv("CACHE_KEY_PREFIX", ""),
			OpTimeout:    getDurationEnv("CACHE_OP_TIMEOUT", 500*time.Millisecond),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", time.Second),
			PoolTimeout:  getDurationEnv("REDIS_POOL_TIMEOUT", 2*time.Second),
			IdleTimeout:  getDurationEnv("REDIS_IDLE_TIMEOUT", 5*time.Minute),
		},
		Breaker: BreakerConfig{
			MinRequests:  uint32(getIntEnv("CACHE_BREAKER_MIN_REQUESTS", 10)),
			FailureRatio: getFloatEnv("CACHE_BREAKER_FAILURE_RATIO", 0.6),
			Interval:     getDurationEnv("CACHE_BREAKER_INTERVAL", time.Minute),
			OpenTimeout:  getDurationEnv("CACHE_BREAKER_OPEN_TIMEOUT", 30*time.Second),
			HalfOpenMax:  uint32(getIntEnv("CACHE_BREAKER_HALF_OPEN_MAX", 3)),
		},
		Content: ContentConfig{
			RelatedLimit:  getIntEnv("RELATED_POSTS_LIMIT", 3),
			MinSimilarity: getFloatEnv("RELATED_POSTS_MIN_SIMILARITY", 0.1),
			RelatedTTL:    getDurationEnv("RELATED_POSTS_CACHE_TTL", 24*time.Hour),
			PopularLimit:  getIntEnv("POPULAR_POSTS_LIMIT", 5),
		},
		JWT: JWTConfig{
			Secret: getEnvRequired("JWT_SECRET"),
			Issuer: getEnv("JWT_ISSUER", "blog-admin"),
		},
		Visitor: VisitorConfig{
			HashSalt: getEnv("VISITOR_HASH_SALT", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			LikesPerWindow: getIntEnv("LIKES_RATE_LIMIT", 30),
			Window:         getDurationEnv("LIKES_RATE_LIMIT_WINDOW", time.Minute),
			KeyPrefix:      getEnv("LIKES_RATE_LIMIT_KEY_PREFIX", "ratelimit:likes"),
		},
	}

	if cfg.Content.MinSimilarity < 0 || cfg.Content.MinSimilarity > 1 {
		return nil, fmt.Errorf("RELATED_POSTS_MIN_SIMILARITY must be within [0,1], got %v", cfg.Content.MinSimilarity)
	}

	// Build database DSN
	cfg.Database.DSN = fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.DBName,
		cfg.Database.SSLMode,
	)

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		panic(fmt.Sprintf("Required environment variable %s is not set", key))
	}
	return value
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
