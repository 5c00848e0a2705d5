package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	S3       S3Config
	Advice   AdviceConfig
	Shop     ShopConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type LogConfig struct {
	Level  string
	Format string
}

// StorageBackend selects where store snapshots are persisted.
type StorageBackend string

const (
	StorageMemory   StorageBackend = "memory"
	StorageFile     StorageBackend = "file"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
	StorageSQLite   StorageBackend = "sqlite"
	StorageS3       StorageBackend = "s3"
)

type StorageConfig struct {
	Backend       StorageBackend
	FilePath      string
	SQLitePath    string
	KeyPrefix     string
	FlushSchedule string // cron spec for retrying degraded writes, empty disables
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // optional, for S3-compatible services
}

// AdviceConfig configures the OpenAI-compatible text generation endpoint.
type AdviceConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type ShopConfig struct {
	FreeShippingThreshold decimal.Decimal
	ShippingFee           decimal.Decimal
	HistoryLimit          int
	CheckoutDelay         time.Duration
	CatalogFile           string // optional .xlsx workbook, built-in catalog when empty
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		Storage: StorageConfig{
			Backend:       StorageBackend(strings.ToLower(getEnv("STORAGE_BACKEND", string(StorageFile)))),
			FilePath:      getEnv("STORAGE_FILE_PATH", "./data/state.json"),
			SQLitePath:    getEnv("STORAGE_SQLITE_PATH", "./data/state.db"),
			KeyPrefix:     getEnv("STORAGE_KEY_PREFIX", "shopgenie"),
			FlushSchedule: getEnv("STORAGE_FLUSH_SCHEDULE", "@every 1m"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "shopgenie"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "shopgenie-state"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
		},
		Advice: AdviceConfig{
			APIKey:  getEnv("ADVICE_API_KEY", ""),
			Model:   getEnv("ADVICE_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("ADVICE_BASE_URL", "https://api.openai.com/v1"),
			Timeout: parseDuration(getEnv("ADVICE_TIMEOUT", "20s"), 20*time.Second),
		},
		Shop: ShopConfig{
			FreeShippingThreshold: parseDecimal(getEnv("SHOP_FREE_SHIPPING_THRESHOLD", "100"), decimal.NewFromInt(100)),
			ShippingFee:           parseDecimal(getEnv("SHOP_SHIPPING_FEE", "15"), decimal.NewFromInt(15)),
			HistoryLimit:          parseInt(getEnv("SHOP_HISTORY_LIMIT", "10"), 10),
			CheckoutDelay:         parseDuration(getEnv("SHOP_CHECKOUT_DELAY", "2s"), 2*time.Second),
			CatalogFile:           getEnv("CATALOG_FILE", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
		if config.Server.Environment == "development" {
			config.Log.Level = "debug"
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageFile, StorageRedis, StoragePostgres, StorageSQLite, StorageS3:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Shop.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be positive, got %d", c.Shop.HistoryLimit)
	}
	if c.Shop.ShippingFee.IsNegative() || c.Shop.FreeShippingThreshold.IsNegative() {
		return fmt.Errorf("shipping settings must not be negative")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseDecimal(s string, fallback decimal.Decimal) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Printf("Invalid amount %s, using default %s", s, fallback)
		return fallback
	}
	return d
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
