// Package config reads process configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	RealtimeRedis = "redis"
	RealtimeAMQP  = "amqp"
	RealtimeNone  = "none"
)

type Config struct {
	AppEnv   string
	Port     int
	LogLevel string

	DatabaseURL   string
	DBMaxConns    int32
	RunMigrations bool

	JWTSecret string
	JWKSURL   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioUseSSL    bool
	ReceiptsBucket string

	RealtimeBackend string
	AMQPURL         string

	TaxRatePolicy        string
	DefaultGSTPercentage decimal.Decimal

	RateLimitPerMinute int
	ShutdownTimeout    time.Duration
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ReceiptsEnabled reports whether a MinIO endpoint is configured.
func (c *Config) ReceiptsEnabled() bool {
	return c.MinioEndpoint != ""
}

// Load reads a .env file when present and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to read .env file")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds and validates a Config from getenv. Every problem is reported at once.
func FromEnv(getenv func(string) string) (*Config, error) {
	var errs *multierror.Error
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}
	getInt := func(key string, def int) int {
		v := get(key, "")
		if v == "" {
			return def
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s must be an integer", key))
			return def
		}
		return n
	}
	getBool := func(key string) bool {
		v := get(key, "")
		if v == "" {
			return false
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s must be a boolean", key))
		}
		return b
	}

	cfg := &Config{
		AppEnv:             get("APP_ENV", "development"),
		Port:               getInt("PORT", 8080),
		LogLevel:           get("LOG_LEVEL", "info"),
		DatabaseURL:        get("DATABASE_URL", ""),
		DBMaxConns:         int32(getInt("DB_MAX_CONNS", 10)),
		RunMigrations:      getBool("RUN_MIGRATIONS"),
		JWTSecret:          get("JWT_SECRET", ""),
		JWKSURL:            get("JWKS_URL", ""),
		RedisAddr:          get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      get("REDIS_PASSWORD", ""),
		RedisDB:            getInt("REDIS_DB", 0),
		MinioEndpoint:      get("MINIO_ENDPOINT", ""),
		MinioAccessKey:     get("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     get("MINIO_SECRET_KEY", ""),
		MinioUseSSL:        getBool("MINIO_USE_SSL"),
		ReceiptsBucket:     get("RECEIPTS_BUCKET", "receipts"),
		RealtimeBackend:    strings.ToLower(get("REALTIME_BACKEND", RealtimeRedis)),
		AMQPURL:            get("AMQP_URL", ""),
		TaxRatePolicy:      strings.ToLower(get("TAX_RATE_POLICY", "current")),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 600),
		ShutdownTimeout:    time.Duration(getInt("SHUTDOWN_TIMEOUT_SECONDS", 15)) * time.Second,
	}

	gst, err := decimal.NewFromString(get("DEFAULT_GST_PERCENTAGE", "18"))
	if err != nil || gst.IsNegative() || gst.GreaterThan(decimal.NewFromInt(100)) {
		errs = multierror.Append(errs, fmt.Errorf("DEFAULT_GST_PERCENTAGE must be a number between 0 and 100"))
	}
	cfg.DefaultGSTPercentage = gst

	if cfg.DatabaseURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("DATABASE_URL is required"))
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = multierror.Append(errs, fmt.Errorf("PORT must be between 1 and 65535"))
	}
	if cfg.DBMaxConns <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("DB_MAX_CONNS must be positive"))
	}
	if cfg.JWTSecret == "" && cfg.JWKSURL == "" {
		errs = multierror.Append(errs, fmt.Errorf("one of JWT_SECRET or JWKS_URL is required"))
	}
	switch cfg.RealtimeBackend {
	case RealtimeRedis, RealtimeNone:
	case RealtimeAMQP:
		if cfg.AMQPURL == "" {
			errs = multierror.Append(errs, fmt.Errorf("AMQP_URL is required when REALTIME_BACKEND=amqp"))
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("REALTIME_BACKEND must be redis, amqp or none"))
	}
	if cfg.TaxRatePolicy != "current" && cfg.TaxRatePolicy != "snapshot" {
		errs = multierror.Append(errs, fmt.Errorf("TAX_RATE_POLICY must be current or snapshot"))
	}
	if cfg.ReceiptsEnabled() && (cfg.MinioAccessKey == "" || cfg.MinioSecretKey == "") {
		errs = multierror.Append(errs, fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required with MINIO_ENDPOINT"))
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("LOG_LEVEL %q is not a valid level", cfg.LogLevel))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cfg, nil
}
