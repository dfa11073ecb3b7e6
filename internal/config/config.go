package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultTokenExpireHours = 24
	minTokenExpireHours     = 1
	defaultBcryptCost       = 12
	minBcryptCost           = 10
)

// ErrMissingSecret is returned when no signing key material is configured.
// The process must not start serving without it.
var ErrMissingSecret = errors.New("AUTH_JWT_SECRET must be set")

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSHosts             []string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret        string
	TokenExpireHours int
	BcryptCost       int
	BasicAuthEnabled bool
	HashWorkers      int
}

// Load reads configuration from environment variables, applying defaults
// where possible. It fails when the JWT signing secret is absent: the
// service must never issue or verify tokens without real key material.
func Load() (*Config, error) {
	_ = godotenv.Load()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "auth-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSHosts:             splitHosts(os.Getenv("CORS_HOSTS")),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:        secret,
			TokenExpireHours: tokenExpireHours(),
			BcryptCost:       bcryptCost(),
			BasicAuthEnabled: getEnvAsBool("AUTH_BASIC_ENABLED", false),
			HashWorkers:      hashWorkers(),
		},
	}

	return cfg, nil
}

// tokenExpireHours resolves the token lifetime. Values below one hour are
// coerced to the one hour floor rather than accepted verbatim; absent or
// unparseable configuration falls back to 24 hours.
func tokenExpireHours() int {
	val := os.Getenv("AUTH_JWT_EXPIRE_HOURS")
	if val == "" {
		return defaultTokenExpireHours
	}
	hours, err := strconv.Atoi(val)
	if err != nil {
		return defaultTokenExpireHours
	}
	if hours < minTokenExpireHours {
		return minTokenExpireHours
	}
	return hours
}

// bcryptCost enforces a floor below which offline brute force becomes
// feasible at expected login rates.
func bcryptCost() int {
	cost := getEnvAsInt("AUTH_BCRYPT_COST", defaultBcryptCost)
	if cost < minBcryptCost {
		return minBcryptCost
	}
	return cost
}

func hashWorkers() int {
	workers := getEnvAsInt("AUTH_HASH_WORKERS", runtime.GOMAXPROCS(0))
	if workers < 1 {
		workers = 1
	}
	return workers
}

func splitHosts(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	hosts := make([]string, 0, len(parts))
	for _, part := range parts {
		if host := strings.TrimSpace(part); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the configured token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenExpireHours) * time.Hour
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
