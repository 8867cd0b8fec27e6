package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Billing  BillingConfig
	Posting  PostingConfig
	Gateway  GatewayConfig
	AutoPay  AutoPayConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BillingConfig tunes the charge calculation surface.
type BillingConfig struct {
	DefaultRatePlan string
	SummaryCacheTTL time.Duration
}

// PostingConfig controls the scheduled monthly charge posting run.
type PostingConfig struct {
	Enabled       bool
	Schedule      string
	WorkerRetries int
	RetryDelay    time.Duration
}

// GatewayConfig points at the external payment gateway REST API.
type GatewayConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AutoPayConfig gates the automatic payment sweep.
type AutoPayConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Billing = BillingConfig{
		DefaultRatePlan: v.GetString("BILLING_DEFAULT_RATE_PLAN"),
		SummaryCacheTTL: parseDuration(v.GetString("BILLING_SUMMARY_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Posting = PostingConfig{
		Enabled:       v.GetBool("ENABLE_POSTING_SCHEDULE"),
		Schedule:      v.GetString("POSTING_SCHEDULE"),
		WorkerRetries: v.GetInt("POSTING_WORKER_RETRIES"),
		RetryDelay:    parseDuration(v.GetString("POSTING_RETRY_DELAY"), time.Minute),
	}

	cfg.Gateway = GatewayConfig{
		BaseURL: v.GetString("GATEWAY_BASE_URL"),
		APIKey:  v.GetString("GATEWAY_API_KEY"),
		Timeout: parseDuration(v.GetString("GATEWAY_TIMEOUT"), 30*time.Second),
	}

	cfg.AutoPay = AutoPayConfig{
		Enabled: v.GetBool("ENABLE_AUTOPAY"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "studiosync_billing")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BILLING_DEFAULT_RATE_PLAN", "Monthly")
	v.SetDefault("BILLING_SUMMARY_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_POSTING_SCHEDULE", false)
	// Daily sweep; each studio's configured post-charges day decides
	// whether the run actually posts that day.
	v.SetDefault("POSTING_SCHEDULE", "0 5 * * *")
	v.SetDefault("POSTING_WORKER_RETRIES", 3)
	v.SetDefault("POSTING_RETRY_DELAY", "1m")

	v.SetDefault("GATEWAY_BASE_URL", "https://api.payarc.net/v1")
	v.SetDefault("GATEWAY_API_KEY", "")
	v.SetDefault("GATEWAY_TIMEOUT", "30s")

	v.SetDefault("ENABLE_AUTOPAY", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
