package natsclient

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carlos20473736/monetag-tracker/config"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	defaultConnectTimeout = 5 * time.Second
	reconnectWait         = 2 * time.Second
	maxReconnects         = 30
)

// Connect creates a NATS connection (with JetStream available) using application config.
// Connection state changes are reported through logger.
func Connect(cfg config.NATSConfig, logger *zap.Logger) (*nats.Conn, nats.JetStreamContext, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Timeout(defaultConnectTimeout),
		nats.Name("monetag-tracker"),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	if cfg.User != "" {
		opts = append(opts, nats.UserInfo(cfg.User, cfg.Password))
	}

	conn, err := nats.Connect(buildURL(cfg), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("nats: connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("nats: init jetstream: %w", err)
	}

	return conn, js, nil
}

// StreamSpec describes a stream the application publishes to.
type StreamSpec struct {
	Name     string
	Subjects []string
	MaxBytes int64
	// Duplicates is the window in which repeated message ids are dropped.
	Duplicates time.Duration
}

// EnsureStream creates the stream described by desc unless it already exists.
func EnsureStream(js nats.JetStreamContext, desc StreamSpec) error {
	_, err := js.StreamInfo(desc.Name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("nats: stream info %s: %w", desc.Name, err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:       desc.Name,
		Subjects:   desc.Subjects,
		MaxBytes:   desc.MaxBytes,
		Duplicates: desc.Duplicates,
	})
	if err != nil {
		return fmt.Errorf("nats: add stream %s: %w", desc.Name, err)
	}
	return nil
}

func buildURL(cfg config.NATSConfig) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 4222
	}
	return fmt.Sprintf("nats://%s:%d", host, port)
}
