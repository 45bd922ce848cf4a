package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SessionCleaner periodically deletes expired ad sessions.
type SessionCleaner struct {
	logger   *zap.Logger
	sessions SessionService
	interval time.Duration
	stopChan chan struct{}
}

// NewSessionCleaner creates a cleaner that sweeps every interval.
func NewSessionCleaner(logger *zap.Logger, sessions SessionService, interval time.Duration) *SessionCleaner {
	return &SessionCleaner{
		logger:   logger,
		sessions: sessions,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (c *SessionCleaner) Start() {
	go c.run()
}

// Stop stops the periodic sweep.
func (c *SessionCleaner) Stop() {
	close(c.stopChan)
}

func (c *SessionCleaner) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopChan:
			c.logger.Info("session cleaner stopped")
			return
		}
	}
}

func (c *SessionCleaner) sweep() {
	removed, err := c.sessions.CleanupExpired(context.Background())
	if err != nil {
		c.logger.Error("failed to clean up expired sessions", zap.Error(err))
		return
	}

	if removed > 0 {
		c.logger.Info("removed expired sessions", zap.Int64("count", removed))
	}
}
