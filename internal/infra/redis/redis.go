package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPingTimeout = 5 * time.Second
	// Rate limiting and cache lookups sit on the request path; keep them short.
	commandTimeout = 500 * time.Millisecond
)

// NewClient builds a redis client using app config and verifies connectivity via PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(Options(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", rdb.Options().Addr, err)
	}

	return rdb, nil
}

// Options maps config onto client options, filling in local defaults.
func Options(cfg config.RedisConfig) *redis.Options {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 6379
	}

	return &redis.Options{
		Addr:         net.JoinHostPort(host, strconv.Itoa(port)),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  commandTimeout,
		WriteTimeout: commandTimeout,
	}
}
