package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// DefaultMaxReportBytes caps a downloaded report when no limit is configured.
const DefaultMaxReportBytes = 32 << 20

// Page template sources.
const (
	PagesEmbedded = "embedded"
	PagesHTTP     = "http"
)

// Config aggregates runtime configuration for the client and the dev server.
type Config struct {
	App          AppConfig
	API          APIConfig
	Store        StoreConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	Pages        PagesConfig
	Logger       LoggerConfig
	Notification NotificationConfig
	Downloads    DownloadsConfig
	DevServer    DevServerConfig
	Metrics      MetricsConfig
}

// AppConfig identifies the client build.
type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// APIConfig points the client at the remote API.
type APIConfig struct {
	BaseURL               string
	RequestTimeoutSeconds int
	MaxReportBytes        int64
}

// StoreConfig selects where the session token is persisted.
type StoreConfig struct {
	Backend   string
	FilePath  string
	KeyPrefix string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
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

// PagesConfig selects where page templates are fetched from.
type PagesConfig struct {
	Source  string
	BaseURL string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// NotificationConfig controls transient messages.
type NotificationConfig struct {
	TTLSeconds int
}

// DownloadsConfig controls where downloaded reports are written.
type DownloadsConfig struct {
	Dir string
}

// DevServerConfig configures the local stub of the remote API.
type DevServerConfig struct {
	Host                  string
	Port                  string
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	Addr string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := strings.ToLower(getEnv("TOKEN_STORE", StoreFile))
	switch backend {
	case StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		return nil, fmt.Errorf("invalid TOKEN_STORE %q", backend)
	}

	pagesSource := strings.ToLower(getEnv("PAGES_SOURCE", PagesEmbedded))
	if pagesSource != PagesEmbedded && pagesSource != PagesHTTP {
		return nil, fmt.Errorf("invalid PAGES_SOURCE %q", pagesSource)
	}

	apiBase := strings.TrimRight(getEnv("API_BASE_URL", "http://127.0.0.1:5000"), "/")

	cfg := &Config{
		App: AppConfig{
			Name:    getEnv("APP_NAME", "smart-hospital-client"),
			Env:     getEnv("APP_ENV", "development"),
			Version: getEnv("APP_VERSION", "dev"),
		},
		API: APIConfig{
			BaseURL:               apiBase,
			RequestTimeoutSeconds: getEnvAsInt("API_REQUEST_TIMEOUT_SECONDS", 30),
			MaxReportBytes:        int64(getEnvAsInt("API_MAX_REPORT_BYTES", DefaultMaxReportBytes)),
		},
		Store: StoreConfig{
			Backend:   backend,
			FilePath:  getEnv("TOKEN_STORE_PATH", defaultStorePath()),
			KeyPrefix: getEnv("TOKEN_STORE_KEY_PREFIX", "smart-hospital:"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 4)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Pages: PagesConfig{
			Source:  pagesSource,
			BaseURL: strings.TrimRight(getEnv("PAGES_BASE_URL", apiBase), "/"),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stderr"),
		},
		Notification: NotificationConfig{
			TTLSeconds: getEnvAsInt("NOTIFY_TTL_SECONDS", 3),
		},
		Downloads: DownloadsConfig{
			Dir: getEnv("DOWNLOAD_DIR", "."),
		},
		DevServer: DevServerConfig{
			Host:                  getEnv("DEV_SERVER_HOST", "127.0.0.1"),
			Port:                  getEnv("DEV_SERVER_PORT", "5000"),
			JWTSecret:             getEnv("DEV_SERVER_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("DEV_SERVER_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("DEV_SERVER_BCRYPT_COST", 10),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv("METRICS_ADDR"),
		},
	}

	return cfg, nil
}

// RequestTimeout returns the configured request timeout duration.
func (a APIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// MaxReportSize returns the largest report body the client accepts.
func (a APIConfig) MaxReportSize() int64 {
	if a.MaxReportBytes <= 0 {
		return DefaultMaxReportBytes
	}
	return a.MaxReportBytes
}

// TTL returns how long a notification stays visible.
func (n NotificationConfig) TTL() time.Duration {
	if n.TTLSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(n.TTLSeconds) * time.Second
}

// Addr returns the dev server bind address.
func (d DevServerConfig) Addr() string {
	return fmt.Sprintf("%s:%s", d.Host, d.Port)
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return filepath.Join(".", ".smart-hospital", "storage.json")
	}
	return filepath.Join(dir, "smart-hospital", "storage.json")
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
