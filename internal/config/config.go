package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Application run modes.
const (
	ModeConsole = "console"
	ModeHTTP    = "http"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	Redis     RedisConfig
	App       AppConfig
	RateLimit RateLimitConfig
	Logger    LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver          string `mapstructure:"DB_DRIVER"`
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	SQLitePath      string `mapstructure:"DB_SQLITE_PATH"`
	AutoMigrate     bool   `mapstructure:"DB_AUTO_MIGRATE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME"`  // seconds
	ConnMaxIdleTime int    `mapstructure:"DB_CONN_MAX_IDLE_TIME"` // seconds
}

// RedisConfig holds configuration for Redis, used by the user cache and the
// HTTP rate limiter
type RedisConfig struct {
	Host         string `mapstructure:"REDIS_HOST"`
	Port         string `mapstructure:"REDIS_PORT"`
	Password     string `mapstructure:"REDIS_PASSWORD"`
	DB           int    `mapstructure:"REDIS_DB"`
	MaxRetries   int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize     int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn  int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	CacheEnabled bool   `mapstructure:"CACHE_ENABLED"`
	CacheTTL     int    `mapstructure:"CACHE_TTL_SECONDS"`
}

// AppConfig holds configuration for the application front-ends
type AppConfig struct {
	Env                    string   `mapstructure:"APP_ENV"`
	Mode                   string   `mapstructure:"APP_MODE"`
	HTTPPort               string   `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int      `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	CORSAllowedOrigins     []string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// RateLimitConfig holds configuration for the HTTP rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_RPS"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	MaxSizeMB        int     `mapstructure:"LOG_MAX_SIZE_MB"`
	MaxBackups       int     `mapstructure:"LOG_MAX_BACKUPS"`
	MaxAgeDays       int     `mapstructure:"LOG_MAX_AGE_DAYS"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// Option overrides a setting after the file and environment are read.
type Option func(v *viper.Viper)

// WithMode forces APP_MODE. An empty mode leaves it unchanged.
func WithMode(mode string) Option {
	return func(v *viper.Viper) {
		if mode != "" {
			v.Set("APP_MODE", mode)
		}
	}
}

// LoadConfig reads configuration from path/app.env, overridden by environment
// variables and then by opts. A missing file is not an error.
func LoadConfig(path string, opts ...Option) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for _, opt := range opts {
		opt(v)
	}
	setDefaults(v)

	var config Config

	config.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASSWORD")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.SQLitePath = v.GetString("DB_SQLITE_PATH")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME")

	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.CacheEnabled = v.GetBool("CACHE_ENABLED")
	config.Redis.CacheTTL = v.GetInt("CACHE_TTL_SECONDS")

	config.App.Env = v.GetString("APP_ENV")
	config.App.Mode = strings.ToLower(v.GetString("APP_MODE"))
	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_RPS")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.MaxSizeMB = v.GetInt("LOG_MAX_SIZE_MB")
	config.Logger.MaxBackups = v.GetInt("LOG_MAX_BACKUPS")
	config.Logger.MaxAgeDays = v.GetInt("LOG_MAX_AGE_DAYS")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_MODE", ModeConsole)
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "user_management")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "users.db")
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL_SECONDS", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_RPS", 10.0)
	v.SetDefault("RATE_LIMIT_BURST", 20)

	// Logger defaults
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	// The console front-end owns stdout, so logs go to a rotated file there.
	if strings.ToLower(v.GetString("APP_MODE")) == ModeConsole {
		v.SetDefault("LOG_OUTPUT_PATH", "logs/user-management-service.log")
	} else {
		v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	}
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("SERVICE_NAME", "user-management-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error

	switch c.App.Mode {
	case ModeConsole, ModeHTTP:
	default:
		errs = append(errs, fmt.Errorf("APP_MODE must be %q or %q, got %q", ModeConsole, ModeHTTP, c.App.Mode))
	}

	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("DB_SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DB.Driver))
	}

	if c.DB.MaxOpenConns < 0 || c.DB.MaxIdleConns < 0 {
		errs = append(errs, errors.New("database pool sizes must not be negative"))
	}
	if c.App.Mode == ModeHTTP && c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required in http mode"))
	}
	if c.Redis.CacheEnabled && c.Redis.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must be positive when the cache is enabled"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.BurstCapacity <= 0) {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	return errors.Join(errs...)
}

// NeedsRedis reports whether any enabled feature requires a Redis connection.
func (c *Config) NeedsRedis() bool {
	return c.Redis.CacheEnabled || (c.App.Mode == ModeHTTP && c.RateLimit.Enabled)
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
