package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultDialTimeout = 5 * time.Second
	applicationName    = "monetag-tracker"
)

// poolSettings are the parsed pool limits shared by the pgx pool and GORM's
// database/sql pool. Zero values leave the driver default in place.
type poolSettings struct {
	maxConns          int32
	minConns          int32
	maxConnLifetime   time.Duration
	maxConnIdleTime   time.Duration
	healthCheckPeriod time.Duration
}

func parsePoolSettings(cfg config.PostgresConfig) (poolSettings, error) {
	s := poolSettings{maxConns: cfg.MaxConns, minConns: cfg.MinConns}

	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"max_conn_lifetime", cfg.MaxConnLifetime, &s.maxConnLifetime},
		{"max_conn_idle_time", cfg.MaxConnIdleTime, &s.maxConnIdleTime},
		{"health_check_period", cfg.HealthCheckPeriod, &s.healthCheckPeriod},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return s, fmt.Errorf("postgres: invalid %s %q: %w", d.name, d.raw, err)
		}
		*d.dst = v
	}
	return s, nil
}

// NewPool creates a pgx connection pool using the provided config and verifies connectivity.
func NewPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	settings, err := parsePoolSettings(cfg)
	if err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if settings.maxConns > 0 {
		poolCfg.MaxConns = settings.maxConns
	}
	if settings.minConns > 0 {
		poolCfg.MinConns = settings.minConns
	}
	if settings.maxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = settings.maxConnLifetime
	}
	if settings.maxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = settings.maxConnIdleTime
	}
	if settings.healthCheckPeriod > 0 {
		poolCfg.HealthCheckPeriod = settings.healthCheckPeriod
	}

	dialCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(dialCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}

	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return pool, nil
}

// ConnString renders cfg as a postgres:// URL, filling in local defaults.
func ConnString(cfg config.PostgresConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	} else if cfg.User != "" {
		u.User = url.User(cfg.User)
	}

	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("application_name", applicationName)
	u.RawQuery = q.Encode()

	return u.String()
}
