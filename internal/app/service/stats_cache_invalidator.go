package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const invalidatorBatchSize = 10

// StatsCacheInvalidator consumes recorded events from NATS JetStream and
// drops the cached global stats so dashboards see new events promptly.
type StatsCacheInvalidator struct {
	js     nats.JetStreamContext
	logger *zap.Logger
	stats  StatsService
}

// NewStatsCacheInvalidator creates a new recorded-event consumer.
func NewStatsCacheInvalidator(js nats.JetStreamContext, logger *zap.Logger, stats StatsService) *StatsCacheInvalidator {
	return &StatsCacheInvalidator{js: js, logger: logger, stats: stats}
}

// Start ensures the durable consumer exists and begins consuming until ctx
// is cancelled. The stream itself must already exist.
func (c *StatsCacheInvalidator) Start(ctx context.Context) error {
	_, err := c.js.ConsumerInfo(model.AdEventStreamName, model.AdEventConsumerName)
	if err != nil {
		_, err = c.js.AddConsumer(model.AdEventStreamName, &nats.ConsumerConfig{
			Durable:   model.AdEventConsumerName,
			AckPolicy: nats.AckExplicitPolicy,
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}
	}

	sub, err := c.js.PullSubscribe(model.AdEventStreamSubject, model.AdEventConsumerName)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	go func() {
		defer func() { _ = sub.Unsubscribe() }()
		c.consume(ctx, sub)
	}()
	return nil
}

// batchFetcher is the pull side of a JetStream subscription.
type batchFetcher interface {
	Fetch(batch int, opts ...nats.PullOpt) ([]*nats.Msg, error)
}

func (c *StatsCacheInvalidator) consume(ctx context.Context, sub batchFetcher) {
	for {
		if ctx.Err() != nil {
			c.logger.Info("stats cache invalidator stopped")
			return
		}

		msgs, err := sub.Fetch(invalidatorBatchSize, nats.MaxWait(5*time.Second))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			c.logger.Error("failed to fetch recorded events", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if len(msgs) == 0 {
			continue
		}

		for _, msg := range msgs {
			var event model.AdEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				c.logger.Error("failed to unmarshal recorded event", zap.Error(err))
				_ = msg.Term()
				continue
			}

			c.logger.Debug("recorded event received",
				zap.Uint("id", event.ID),
				zap.String("zone_id", event.ZoneID),
				zap.String("event_type", string(event.EventType)),
			)
			if err := msg.Ack(); err != nil {
				c.logger.Warn("failed to ack recorded event", zap.Uint("id", event.ID), zap.Error(err))
			}
		}

		// One invalidation covers the whole batch.
		c.stats.Invalidate(ctx)
	}
}
