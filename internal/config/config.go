// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Provider    ProviderConfig
	Search      SearchConfig
	Worker      WorkerConfig
	Exchange    ExchangeConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ReadTimeout    int
	WriteTimeout   int
	IdleTimeout    int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type JWTConfig struct {
	SecretKey string
}

// ProviderConfig configures the external product-search API.
type ProviderConfig struct {
	BaseURL      string
	APIKey       string
	MaxResults   int           // default cap per term
	RequestDelay time.Duration // fixed delay between consecutive lookups
	Timeout      time.Duration // per-request HTTP timeout
}

type SearchConfig struct {
	SyncThreshold   int           // term counts below this run in-process
	PollInterval    time.Duration // job status polling interval
	MaxTermsPerJob  int
	MaxSyncProducts int
	CacheTTL        time.Duration // 0 disables expiry
	CacheBackend    string        // "memory" or "redis"
}

type WorkerConfig struct {
	QueueName     string
	SweepInterval time.Duration // redelivery sweep for orphaned pending jobs
	JobTimeout    time.Duration // overall per-job deadline
}

type ExchangeConfig struct {
	ProviderCurrency  string
	ReportingCurrency string
	FixedRate         float64 // fallback when no DB rate exists
	RefreshInterval   time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			// Batch searches block while terms run; the write timeout has
			// to cover the slowest synchronous batch.
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 180),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AllowedOrigins: strings.Split(
				getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "sourcing"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		Provider: ProviderConfig{
			BaseURL:      getEnv("PROVIDER_BASE_URL", "https://api.cnsearch.example.com/v2"),
			APIKey:       getEnv("PROVIDER_API_KEY", ""),
			MaxResults:   getEnvAsInt("PROVIDER_MAX_RESULTS", 10),
			RequestDelay: getEnvAsDuration("PROVIDER_REQUEST_DELAY", time.Second),
			Timeout:      getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
		},
		Search: SearchConfig{
			SyncThreshold:   getEnvAsInt("SEARCH_SYNC_THRESHOLD", 5),
			PollInterval:    getEnvAsDuration("SEARCH_POLL_INTERVAL", 3*time.Second),
			MaxTermsPerJob:  getEnvAsInt("SEARCH_MAX_TERMS_PER_JOB", 50),
			MaxSyncProducts: getEnvAsInt("SEARCH_MAX_SYNC_PRODUCTS", 20),
			CacheTTL:        getEnvAsDuration("SEARCH_CACHE_TTL", time.Hour),
			CacheBackend:    getEnv("SEARCH_CACHE_BACKEND", "memory"),
		},
		Worker: WorkerConfig{
			QueueName:     getEnv("WORKER_QUEUE_NAME", "search_jobs"),
			SweepInterval: getEnvAsDuration("WORKER_SWEEP_INTERVAL", 30*time.Second),
			JobTimeout:    getEnvAsDuration("WORKER_JOB_TIMEOUT", 15*time.Minute),
		},
		Exchange: ExchangeConfig{
			ProviderCurrency:  getEnv("EXCHANGE_PROVIDER_CURRENCY", "CNY"),
			ReportingCurrency: getEnv("EXCHANGE_REPORTING_CURRENCY", "FCFA"),
			FixedRate:         getEnvAsFloat("EXCHANGE_FIXED_RATE", 90.0),
			RefreshInterval:   getEnvAsDuration("EXCHANGE_REFRESH_INTERVAL", 10*time.Minute),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Provider.APIKey == "" && c.Environment == "production" {
		return fmt.Errorf("provider API key is required in production")
	}

	if c.Search.SyncThreshold < 1 {
		return fmt.Errorf("search sync threshold must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
