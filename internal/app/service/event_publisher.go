package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/nats-io/nats.go"
)

// EventPublisher publishes recorded ad events to NATS JetStream.
type EventPublisher struct {
	js nats.JetStreamContext
}

// NewEventPublisher creates a new recorded-event publisher.
func NewEventPublisher(js nats.JetStreamContext) *EventPublisher {
	return &EventPublisher{js: js}
}

// Publish publishes a stored event to the stream. The event id doubles as
// the message id so a retried publish is deduplicated by the server.
func (p *EventPublisher) Publish(ctx context.Context, event *model.AdEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := nats.NewMsg(model.AdEventStreamSubject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, EventMessageID(event))

	_, err = p.js.PublishMsg(msg, nats.Context(ctx))
	return err
}

// EventMessageID is the JetStream message id used for a stored event.
func EventMessageID(event *model.AdEvent) string {
	return "adevent-" + strconv.FormatUint(uint64(event.ID), 10)
}
