package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	// Application
	App AppConfig `mapstructure:"app"`

	// Storage selection
	Database DatabaseConfig `mapstructure:"database"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Rate limiting for client-facing endpoints
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type AppConfig struct {
	Port                   int           `mapstructure:"port"`
	Env                    string        `mapstructure:"env"`
	LogLevel               string        `mapstructure:"log_level"`
	AdminToken             string        `mapstructure:"admin_token"`
	SessionCleanupInterval time.Duration `mapstructure:"session_cleanup_interval"`
	CORSOrigins            []string      `mapstructure:"cors_origins"`
}

// IsDevelopment reports whether the app runs outside production.
func (c AppConfig) IsDevelopment() bool {
	return c.Env != "production"
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	Database          string `mapstructure:"database"`
	Port              int    `mapstructure:"port"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   string `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   string `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod string `mapstructure:"health_check_period"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis host was configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type NATSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Enabled reports whether a NATS host was configured.
func (c NATSConfig) Enabled() bool {
	return c.Host != ""
}

type PrometheusConfig struct {
	Port int `mapstructure:"port"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

func Load() (*Config, error) {
	_, cfg, err := load()
	return cfg, err
}

func load() (*viper.Viper, *Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	cfg, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return v, cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Database.Driver != DriverPostgres && cfg.Database.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return &cfg, nil
}

// Watch loads the configuration and re-reads it whenever the config file
// changes, handing every successfully decoded version to onChange.
// Decode failures during reload are passed to onError and the previous
// configuration stays in effect.
func Watch(onChange func(*Config), onError func(error)) (*Config, error) {
	v, cfg, err := load()
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return cfg, nil
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
			return
		}
		next, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(next)
	})
	v.WatchConfig()

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.env", "development")
	v.SetDefault("app.session_cleanup_interval", time.Minute)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.sqlite_path", "monetag.db")

	v.SetDefault("prometheus.port", 9090)

	v.SetDefault("rate_limit.max_requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)
}

func bindEnvVars(v *viper.Viper) {
	// Application
	v.BindEnv("app.port", "PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")
	v.BindEnv("app.admin_token", "ADMIN_TOKEN")
	v.BindEnv("app.session_cleanup_interval", "SESSION_CLEANUP_INTERVAL")
	v.BindEnv("app.cors_origins", "CORS_ORIGINS")

	// Storage
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.sqlite_path", "SQLITE_PATH")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")

	// Rate limiting
	v.BindEnv("rate_limit.max_requests", "RATE_LIMIT_MAX")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
}
