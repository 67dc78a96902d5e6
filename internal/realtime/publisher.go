package realtime

import (
	"context"
	"fmt"

	"printhub/pkg/kafka"
	"printhub/pkg/logger"
	"printhub/pkg/middleware"
	"printhub/pkg/model"
)

// Publisher emits print-job change events after a write has been committed.
type Publisher interface {
	Publish(ctx context.Context, ev model.ChangeEvent) error
}

// EventType is the kafka event-type header for a change, e.g. print_jobs.UPDATE.
func EventType(ev model.ChangeEvent) string {
	return ev.Table + "." + string(ev.Type)
}

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		source:   source,
	}
}

// Publish keys messages by record id so every change to one job lands on the
// same partition in commit order.
func (p *KafkaPublisher) Publish(ctx context.Context, ev model.ChangeEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(ev.RecordID).
		WithJSON(ev).
		WithEventType(EventType(ev)).
		WithCorrelationID(middleware.RequestIDFrom(ctx)).
		WithSource(p.source).
		Build()
	if err != nil {
		return fmt.Errorf("build change event: %w", err)
	}
	return p.producer.Publish(ctx, msg)
}

// HubPublisher delivers events straight to local subscribers. Used when
// kafka is disabled and the writer and the stream live in one process.
type HubPublisher struct {
	hub *Hub
}

func NewHubPublisher(hub *Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, ev model.ChangeEvent) error {
	p.hub.Broadcast(ev)
	return nil
}

// MultiPublisher publishes to each target in order and returns the first error.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(ctx context.Context, ev model.ChangeEvent) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishAll publishes every event, logging failures. Writes are already
// committed at this point, so a lost event is recovered by the poll fallback.
func PublishAll(ctx context.Context, p Publisher, log *logger.Logger, events ...model.ChangeEvent) {
	if p == nil {
		return
	}
	for _, ev := range events {
		if err := p.Publish(ctx, ev); err != nil {
			log.Warn("failed to publish change event",
				"type", ev.Type,
				"record_id", ev.RecordID,
				"shop_owner_id", ev.ShopOwnerID,
				"error", err,
			)
		}
	}
}
